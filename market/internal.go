// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package market

import (
	"github.com/bitmark-inc/datamarketd/address"
	"github.com/bitmark-inc/datamarketd/fault"
	"github.com/bitmark-inc/datamarketd/identity"
	"github.com/bitmark-inc/datamarketd/record"
	"github.com/bitmark-inc/datamarketd/storage"
)

// shared validation helpers
//
// all reads go through the transaction view so a handler sees its
// own pending writes

func fetchGlobalState(trx storage.Transaction) (*record.GlobalState, error) {
	packed := trx.Get(storage.Pool.GlobalState, address.GlobalState().Bytes())
	if nil == packed {
		return nil, fault.GlobalStateNotFound
	}
	return record.Packed(packed).UnpackGlobalState()
}

// requireAdministrator - only the recorded authority may proceed
func requireAdministrator(trx storage.Transaction, signer *identity.Identity) error {
	globalState, err := fetchGlobalState(trx)
	if nil != err {
		return err
	}
	if !globalState.Authority.Equal(signer) {
		return fault.NotAdministrator
	}
	return nil
}

func fetchUser(trx storage.Transaction, userAddress address.Address) (*record.User, error) {
	packed := trx.Get(storage.Pool.Users, userAddress.Bytes())
	if nil == packed {
		return nil, fault.UserNotFound
	}
	return record.Packed(packed).UnpackUser()
}

// fetchSignerUser - the signer's own user record
func fetchSignerUser(trx storage.Transaction, signer *identity.Identity) (*record.User, address.Address, error) {
	userAddress, err := address.User(signer)
	if nil != err {
		return nil, address.Address{}, err
	}
	user, err := fetchUser(trx, userAddress)
	if nil != err {
		return nil, address.Address{}, err
	}
	return user, userAddress, nil
}

// requireParticipant - the signer must be a registered, unbanned user
func requireParticipant(trx storage.Transaction, signer *identity.Identity) (*record.User, error) {
	user, _, err := fetchSignerUser(trx, signer)
	if nil != err {
		return nil, err
	}
	if user.IsBanned {
		return nil, fault.UserIsBanned
	}
	return user, nil
}

func fetchDataset(trx storage.Transaction, datasetAddress address.Address) (*record.Dataset, error) {
	packed := trx.Get(storage.Pool.Datasets, datasetAddress.Bytes())
	if nil == packed {
		return nil, fault.DatasetNotFound
	}
	return record.Packed(packed).UnpackDataset()
}

func fetchDispute(trx storage.Transaction, disputeAddress address.Address) (*record.Dispute, error) {
	packed := trx.Get(storage.Pool.Disputes, disputeAddress.Bytes())
	if nil == packed {
		return nil, fault.DisputeNotFound
	}
	return record.Packed(packed).UnpackDispute()
}

// storeRecord - pack and stage a record write
func storeRecord(trx storage.Transaction, pool *storage.PoolHandle, key address.Address, r record.Record) error {
	packed, err := r.Pack()
	if nil != err {
		return err
	}
	trx.Put(pool, key.Bytes(), packed)
	return nil
}
