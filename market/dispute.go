// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package market

import (
	"time"

	"github.com/bitmark-inc/datamarketd/address"
	"github.com/bitmark-inc/datamarketd/fault"
	"github.com/bitmark-inc/datamarketd/identity"
	"github.com/bitmark-inc/datamarketd/record"
	"github.com/bitmark-inc/datamarketd/storage"
)

// FileDispute - open an arbitration case against a sold dataset
//
// only a completed sale can be disputed, so the listing must already
// be inactive; one dispute per (dataset, challenger)
func FileDispute(signer *identity.Identity, datasetAddress address.Address, reason string) (TxId, error) {
	if nil == signer {
		return TxId{}, fault.MissingSigner
	}

	globalData.Lock()
	defer globalData.Unlock()

	var disputeAddress address.Address
	err := execute(func(trx storage.Transaction) error {
		_, err := requireParticipant(trx, signer)
		if nil != err {
			return err
		}

		dataset, err := fetchDataset(trx, datasetAddress)
		if nil != err {
			return err
		}
		if dataset.Owner.Equal(signer) {
			return fault.SelfDispute
		}
		if dataset.IsActive {
			return fault.DatasetStillActive
		}

		disputeAddress, err = address.Dispute(datasetAddress, signer)
		if nil != err {
			return err
		}
		if trx.Has(storage.Pool.Disputes, disputeAddress.Bytes()) {
			return fault.DisputeAlreadyExists
		}

		return storeRecord(trx, storage.Pool.Disputes, disputeAddress, &record.Dispute{
			Dataset:    datasetAddress,
			Challenger: signer,
			Reason:     reason,
			CreatedAt:  time.Now().Unix(),
			Status:     record.DisputePending,
			Result:     false,
			Resolver:   nil,
			ResolvedAt: 0,
			Bump:       disputeAddress.Bump(),
		})
	})
	if nil != err {
		return TxId{}, err
	}

	globalData.log.Infof("file dispute: %s dataset: %s challenger: %s", disputeAddress, datasetAddress, signer)
	return transactionId(fileDisputeInstruction, signer, datasetAddress.Bytes(), []byte(reason)), nil
}
