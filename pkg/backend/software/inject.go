// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-cryptoauth.
//
// go-cryptoauth is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package software

import (
	"sync"
	"sync/atomic"

	"github.com/jeremyhahn/go-cryptoauth/pkg/backend"
)

// instruments holds the test-facing instrumentation of the software backend:
// injected failures, per-operation call counters and the in-flight
// re-entrancy detector. It has its own lock so tests may inspect it from
// other goroutines while the session drives the backend.
type instruments struct {
	imu      sync.Mutex
	injected map[string][]backend.Status
	calls    map[string]int

	inFlight   atomic.Int32
	overlapped atomic.Bool
}

func (in *instruments) init() {
	in.injected = make(map[string][]backend.Status)
	in.calls = make(map[string]int)
}

// FailNext queues an injected failure for the named operation. Each queued
// status fails exactly one subsequent call, in FIFO order. Operation names
// match the command verbs: "wake", "random", "genkey", "sign", "verify",
// "read", "write", "lock", "counter", "counter_increment", "sha256",
// "get_public_key", "priv_write", "aes_encrypt", "aes_decrypt", "info",
// "serial_number", "read_config", "idle", "sleep".
func (in *instruments) FailNext(op string, st backend.Status) {
	in.imu.Lock()
	defer in.imu.Unlock()
	in.injected[op] = append(in.injected[op], st)
}

// FailWakes queues n consecutive wake failures, for exercising the session's
// bounded wake retry.
func (in *instruments) FailWakes(n int) {
	for i := 0; i < n; i++ {
		in.FailNext("wake", backend.StatusWakeFailed)
	}
}

// CallCount returns how many times the named operation was invoked.
func (in *instruments) CallCount(op string) int {
	in.imu.Lock()
	defer in.imu.Unlock()
	return in.calls[op]
}

// TotalCalls returns the number of command invocations across all
// operations, excluding power management ("wake", "idle", "sleep") and
// lifecycle verbs.
func (in *instruments) TotalCalls() int {
	in.imu.Lock()
	defer in.imu.Unlock()

	total := 0
	for op, n := range in.calls {
		switch op {
		case "wake", "idle", "sleep", "initialize", "close":
		default:
			total += n
		}
	}
	return total
}

// ResetCounters clears all call counters. Injected failures are unaffected.
func (in *instruments) ResetCounters() {
	in.imu.Lock()
	defer in.imu.Unlock()
	in.calls = make(map[string]int)
}

// Overlapped reports whether two commands were ever observed in flight at
// the same time, which would mean the caller violated the serialization
// contract.
func (in *instruments) Overlapped() bool {
	return in.overlapped.Load()
}

func (in *instruments) count(op string) {
	in.imu.Lock()
	defer in.imu.Unlock()
	in.calls[op]++
}

func (in *instruments) popInjected(op string) (backend.Status, bool) {
	in.imu.Lock()
	defer in.imu.Unlock()

	queue := in.injected[op]
	if len(queue) == 0 {
		return backend.StatusSuccess, false
	}
	st := queue[0]
	in.injected[op] = queue[1:]
	return st, true
}

func (in *instruments) enter() func() {
	if in.inFlight.Add(1) > 1 {
		in.overlapped.Store(true)
	}
	return func() {
		in.inFlight.Add(-1)
	}
}
