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

package atecc

import (
	"fmt"
	"sync"
	"time"

	"github.com/jeremyhahn/go-cryptoauth/pkg/backend"
	"github.com/jeremyhahn/go-cryptoauth/pkg/metrics"
	"github.com/jeremyhahn/go-cryptoauth/pkg/types"
)

// session serializes all bus access to one device. A single mutex covers
// the whole wake → execute → idle sequence; there is no cancellation of an
// in-flight command, the chip cannot abort one anyway.
type session struct {
	mu       sync.Mutex
	backend  backend.Backend
	retries  int
	interval time.Duration
	label    string
	released bool
}

func newSession(b backend.Backend, retries int, interval time.Duration) *session {
	return &session{
		backend:  b,
		retries:  retries,
		interval: interval,
		label:    b.Type().String(),
	}
}

// execute runs fn against an awake device. The device is idled on every
// exit path so the watchdog never kills a TempKey mid-sequence.
func (s *session) execute(fn func(b backend.Backend) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.released {
		return fmt.Errorf("%w: session released", types.ErrDeviceUnresponsive)
	}
	if err := s.wake(); err != nil {
		return err
	}
	defer func() {
		_ = s.backend.Idle()
	}()

	return fn(s.backend)
}

// wake brings the device out of idle or sleep with a bounded retry.
// Transient wake failures are the one failure class retried here; anything
// surviving the retry budget propagates as-is.
func (s *session) wake() error {
	var err error
	for attempt := 0; attempt < s.retries; attempt++ {
		if attempt > 0 {
			metrics.RecordWakeRetry(s.label)
			time.Sleep(s.interval)
		}
		if err = s.backend.Wake(); err == nil {
			return nil
		}
	}
	return fmt.Errorf("%w: wake failed after %d attempts: %v",
		types.ErrDeviceUnresponsive, s.retries, err)
}

// release puts the device to sleep and closes the backend. Terminal: the
// session is not reusable.
func (s *session) release() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.released {
		return nil
	}
	s.released = true
	_ = s.backend.Sleep()
	return s.backend.Close()
}

// Process-singleton discipline: the chip is a single-owner bus peripheral,
// so only one live Device is allowed per process.
var resourceManager = struct {
	sync.Mutex
	inUse bool
}{}

func acquireDevice() error {
	resourceManager.Lock()
	defer resourceManager.Unlock()
	if resourceManager.inUse {
		return fmt.Errorf("%w: a device is already acquired by this process",
			types.ErrInvalidParameter)
	}
	resourceManager.inUse = true
	return nil
}

func releaseDevice() {
	resourceManager.Lock()
	defer resourceManager.Unlock()
	resourceManager.inUse = false
}
