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

// Package zone models the persistent configuration of a CryptoAuthentication
// device without touching hardware.
//
// The ATECC configuration zone is a fixed 128-byte block describing the
// device identity (serial number, revision), the lock state of the
// configuration and data zones, chip options, and the per-slot SlotConfig
// and KeyConfig bitfields that govern what each of the 16 data slots may be
// used for.
//
// ParseConfig decodes that block into a DeviceConfig. ValidateOperation then
// answers, purely and deterministically, whether a requested slot operation
// can ever succeed given the decoded configuration. Callers run this check
// before issuing any command so hardware time and bus bandwidth are never
// spent on requests that are guaranteed to fail.
//
// Everything in this package is pure computation over bytes; it is shared
// verbatim by the hardware and software backends.
package zone
