// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package storage - maintain the on-disk account store
//
// maintain separate pools of a number of elements in key->value form
//
// This maintains a LevelDB database split into a series of tables.
// Each table is defined by a prefix byte that is obtained from the
// prefix tag in the struct defining the available tables.
//
// Notes:
// 1. each separate pool has a single byte prefix (to spread the keys in LevelDB)
// 2. ++          = concatenation of byte data
// 3. address     = 32 byte SHA3-256 derived record address
// 4. identity    = key variant varint ++ 32 byte ed25519 public key
// 5. amount      = big endian uint64 (8 bytes)
//
// Global state:
//
//   G ++ address             - the marketplace singleton
//                              data: packed global state record
//
// Users:
//
//   U ++ address             - user records
//                              data: packed user record
//
// Datasets:
//
//   D ++ address             - dataset records
//                              data: packed dataset record
//   L ++ owner ++ address    - dataset-by-owner index
//                              data: dataset address
//
// Disputes:
//
//   X ++ address             - dispute records
//                              data: packed dispute record
//
// Reviews:
//
//   R ++ address             - review records
//                              data: packed review record
//
// Balances:
//
//   B ++ identity            - native-currency balances
//                              data: amount
//
// Testing:
//
//   Z ++ key                 - testing data
package storage
