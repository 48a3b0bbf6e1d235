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

// Package software provides a deterministic in-memory emulation of an
// ATECC608A-class secure element. It implements backend.Backend entirely in
// process: slot contents, zone lock bytes and monotonic counters are held in
// memory, P-256 key generation and signing use crypto/ecdsa, and random
// bytes come from crypto/rand.
//
// The emulation enforces the same lock-state rules the silicon does: data
// zone writes require a locked configuration zone, key generation requires a
// locked configuration zone, signing requires a locked data zone, and writes
// to write-once slots fail once the data zone is locked.
//
// For negative-path and serialization testing the backend supports injected
// failures (FailNext), per-operation call counters (CallCount) and an
// in-flight re-entrancy detector (Overlapped).
package software
