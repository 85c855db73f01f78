// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package market

import (
	"math"
	"time"

	"github.com/bitmark-inc/datamarketd/address"
	"github.com/bitmark-inc/datamarketd/fault"
	"github.com/bitmark-inc/datamarketd/identity"
	"github.com/bitmark-inc/datamarketd/record"
	"github.com/bitmark-inc/datamarketd/storage"
)

// Initialize - create the global state singleton
//
// the signer becomes the admin authority; repeated initialisation is
// rejected so the authority can never be replaced
func Initialize(signer *identity.Identity) (TxId, error) {
	if nil == signer {
		return TxId{}, fault.MissingSigner
	}

	globalData.Lock()
	defer globalData.Unlock()

	err := execute(func(trx storage.Transaction) error {
		globalStateAddress := address.GlobalState()
		if trx.Has(storage.Pool.GlobalState, globalStateAddress.Bytes()) {
			return fault.AlreadyInitialised
		}
		return storeRecord(trx, storage.Pool.GlobalState, globalStateAddress, &record.GlobalState{
			Authority: signer,
			Bump:      globalStateAddress.Bump(),
		})
	})
	if nil != err {
		return TxId{}, err
	}

	globalData.log.Infof("initialize: authority: %s", signer)
	return transactionId(initializeInstruction, signer), nil
}

// ResolveDispute - record the admin verdict on a pending dispute
//
// result true upholds the challenger, false upholds the dataset
// owner; a dispute is resolved exactly once
func ResolveDispute(signer *identity.Identity, disputeAddress address.Address, result bool) (TxId, error) {
	if nil == signer {
		return TxId{}, fault.MissingSigner
	}

	globalData.Lock()
	defer globalData.Unlock()

	err := execute(func(trx storage.Transaction) error {
		err := requireAdministrator(trx, signer)
		if nil != err {
			return err
		}

		dispute, err := fetchDispute(trx, disputeAddress)
		if nil != err {
			return err
		}
		if record.DisputePending != dispute.Status {
			return fault.DisputeAlreadyResolved
		}

		dispute.Status = record.DisputeResolved
		dispute.Result = result
		dispute.Resolver = signer
		dispute.ResolvedAt = time.Now().Unix()
		return storeRecord(trx, storage.Pool.Disputes, disputeAddress, dispute)
	})
	if nil != err {
		return TxId{}, err
	}

	globalData.log.Infof("resolve dispute: %s result: %t", disputeAddress, result)
	return transactionId(resolveDisputeInstruction, signer, disputeAddress.Bytes(), boolArgument(result)), nil
}

// AdjustReputation - admin reputation delta with saturating arithmetic
func AdjustReputation(signer *identity.Identity, userAddress address.Address, delta int64) (TxId, error) {
	if nil == signer {
		return TxId{}, fault.MissingSigner
	}

	globalData.Lock()
	defer globalData.Unlock()

	err := execute(func(trx storage.Transaction) error {
		err := requireAdministrator(trx, signer)
		if nil != err {
			return err
		}

		user, err := fetchUser(trx, userAddress)
		if nil != err {
			return err
		}

		// clamp instead of wrapping
		switch {
		case delta > 0 && user.Reputation > math.MaxInt64-delta:
			user.Reputation = math.MaxInt64
		case delta < 0 && user.Reputation < math.MinInt64-delta:
			user.Reputation = math.MinInt64
		default:
			user.Reputation += delta
		}

		return storeRecord(trx, storage.Pool.Users, userAddress, user)
	})
	if nil != err {
		return TxId{}, err
	}

	globalData.log.Infof("adjust reputation: %s delta: %d", userAddress, delta)
	return transactionId(adjustReputationInstruction, signer, userAddress.Bytes(), int64Argument(delta)), nil
}

// BanUser - exclude a user from the marketplace
//
// idempotent: banning an already banned user succeeds
func BanUser(signer *identity.Identity, userAddress address.Address) (TxId, error) {
	return setBanned(signer, userAddress, true, banUserInstruction)
}

// UnbanUser - restore a banned user
//
// idempotent: unbanning a user in good standing succeeds
func UnbanUser(signer *identity.Identity, userAddress address.Address) (TxId, error) {
	return setBanned(signer, userAddress, false, unbanUserInstruction)
}

func setBanned(signer *identity.Identity, userAddress address.Address, banned bool, instruction uint64) (TxId, error) {
	if nil == signer {
		return TxId{}, fault.MissingSigner
	}

	globalData.Lock()
	defer globalData.Unlock()

	err := execute(func(trx storage.Transaction) error {
		err := requireAdministrator(trx, signer)
		if nil != err {
			return err
		}

		user, err := fetchUser(trx, userAddress)
		if nil != err {
			return err
		}

		user.IsBanned = banned
		return storeRecord(trx, storage.Pool.Users, userAddress, user)
	})
	if nil != err {
		return TxId{}, err
	}

	globalData.log.Infof("set banned: %s banned: %t", userAddress, banned)
	return transactionId(instruction, signer, userAddress.Bytes(), boolArgument(banned)), nil
}
