// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package market

import (
	"github.com/bitmark-inc/datamarketd/address"
	"github.com/bitmark-inc/datamarketd/balance"
	"github.com/bitmark-inc/datamarketd/fault"
	"github.com/bitmark-inc/datamarketd/identity"
	"github.com/bitmark-inc/datamarketd/record"
	"github.com/bitmark-inc/datamarketd/storage"
)

// CreateUser - register the signer as a marketplace participant
//
// one user record per identity; the username is fixed at creation
// and reputation starts at zero
func CreateUser(signer *identity.Identity, username string) (TxId, error) {
	if nil == signer {
		return TxId{}, fault.MissingSigner
	}

	globalData.Lock()
	defer globalData.Unlock()

	err := execute(func(trx storage.Transaction) error {
		// the marketplace must be initialised before anyone can join
		_, err := fetchGlobalState(trx)
		if nil != err {
			return err
		}

		userAddress, err := address.User(signer)
		if nil != err {
			return err
		}
		if trx.Has(storage.Pool.Users, userAddress.Bytes()) {
			return fault.UserAlreadyExists
		}
		return storeRecord(trx, storage.Pool.Users, userAddress, &record.User{
			Authority:  signer,
			Username:   username,
			Reputation: 0,
			IsBanned:   false,
			Bump:       userAddress.Bump(),
		})
	})
	if nil != err {
		return TxId{}, err
	}

	globalData.log.Infof("create user: %q authority: %s", username, signer)
	return transactionId(createUserInstruction, signer, []byte(username)), nil
}

// Deposit - credit the signer's balance
//
// the host environment settles real funds before calling this; the
// core only tracks the resulting credit
func Deposit(signer *identity.Identity, amount uint64) (TxId, error) {
	if nil == signer {
		return TxId{}, fault.MissingSigner
	}

	globalData.Lock()
	defer globalData.Unlock()

	err := execute(func(trx storage.Transaction) error {
		return balance.Deposit(trx, signer, amount)
	})
	if nil != err {
		return TxId{}, err
	}

	globalData.log.Infof("deposit: %s amount: %d", signer, amount)
	return transactionId(depositInstruction, signer, uint64Argument(amount)), nil
}
