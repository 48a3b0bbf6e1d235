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

// Package atecc is the public command façade over an ATECC508A/608A-class
// secure element. A Device wraps one backend behind a serialized session:
// every operation validates against the cached zone/slot configuration
// first, then runs wake → command → idle under a single mutex, translating
// every failure into the closed error taxonomy in pkg/types.
//
// One live Device is allowed per process; Release frees the claim and closes
// the backend, after which all operations fail ErrDeviceUnresponsive.
package atecc
