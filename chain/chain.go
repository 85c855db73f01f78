// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

// names of the networks a marketplace database can belong to
const (
	Live    = "live"
	Testing = "testing"
	Local   = "local"
)

// Valid - check the name is one of the supported networks
func Valid(name string) bool {
	switch name {
	case Live, Testing, Local:
		return true
	default:
		return false
	}
}
