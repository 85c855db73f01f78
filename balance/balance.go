// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package balance - per-identity marketplace credit
//
// balances are keyed by the packed identity and stored as 8 byte big
// endian unsigned integers; a missing record is a zero balance
//
// all mutations go through a storage transaction so a purchase debits
// and credits atomically with the rest of its record updates
package balance

import (
	"math"

	"github.com/bitmark-inc/datamarketd/fault"
	"github.com/bitmark-inc/datamarketd/identity"
	"github.com/bitmark-inc/datamarketd/storage"
)

// Balance - read an identity's committed balance
//
// queries never observe uncommitted transfers
func Balance(id *identity.Identity) uint64 {
	n, _ := storage.Pool.Balances.GetN(id.Bytes())
	return n
}

// Get - read a balance through the transaction view
func Get(trx storage.Transaction, id *identity.Identity) uint64 {
	n, _ := trx.GetN(storage.Pool.Balances, id.Bytes())
	return n
}

// Deposit - credit an identity inside a transaction
//
// host-facing: funds enter the marketplace only through this call
func Deposit(trx storage.Transaction, id *identity.Identity, amount uint64) error {
	if nil == trx {
		return fault.TransactionIsNil
	}

	current := Get(trx, id)
	if current > math.MaxUint64-amount {
		return fault.BalanceOverflow
	}

	trx.PutN(storage.Pool.Balances, id.Bytes(), current+amount)
	return nil
}

// Transfer - move credit between identities inside a transaction
//
// the total of the two balances is unchanged; fails without writing
// if the payer has insufficient funds or the payee would overflow
func Transfer(trx storage.Transaction, from *identity.Identity, to *identity.Identity, amount uint64) error {
	if nil == trx {
		return fault.TransactionIsNil
	}

	fromBalance := Get(trx, from)
	if fromBalance < amount {
		return fault.InsufficientFunds
	}

	// transfer to self is a no-op once funds are checked
	if from.Equal(to) {
		return nil
	}

	toBalance := Get(trx, to)
	if toBalance > math.MaxUint64-amount {
		return fault.BalanceOverflow
	}

	trx.PutN(storage.Pool.Balances, from.Bytes(), fromBalance-amount)
	trx.PutN(storage.Pool.Balances, to.Bytes(), toBalance+amount)
	return nil
}
