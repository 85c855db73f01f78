// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package market - the marketplace instruction handlers
//
// each exported handler is one instruction: it validates against the
// current committed state plus its own pending writes, applies every
// mutation through a single storage transaction and commits.  Either
// all of an instruction's writes become visible or none do.
//
// handlers are serialised by a package mutex so instruction execution
// is deterministic: the same sequence of instructions applied to the
// same database produces the same state
//
// authentication is assumed to have happened at the boundary; a
// handler receives an already verified signer identity and only ever
// compares it against recorded authorities
package market
