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

// CreateReview - rate a purchased dataset
//
// only a completed sale can be reviewed, so the listing must already
// be inactive; one review per (dataset, reviewer)
func CreateReview(signer *identity.Identity, datasetAddress address.Address, rating uint8, comment string) (TxId, error) {
	if nil == signer {
		return TxId{}, fault.MissingSigner
	}

	globalData.Lock()
	defer globalData.Unlock()

	var reviewAddress address.Address
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
			return fault.SelfReview
		}
		if dataset.IsActive {
			return fault.DatasetStillActive
		}

		reviewAddress, err = address.Review(datasetAddress, signer)
		if nil != err {
			return err
		}
		if trx.Has(storage.Pool.Reviews, reviewAddress.Bytes()) {
			return fault.ReviewAlreadyExists
		}

		return storeRecord(trx, storage.Pool.Reviews, reviewAddress, &record.Review{
			Dataset:   datasetAddress,
			Reviewer:  signer,
			Rating:    rating,
			Comment:   comment,
			CreatedAt: time.Now().Unix(),
			Bump:      reviewAddress.Bump(),
		})
	})
	if nil != err {
		return TxId{}, err
	}

	globalData.log.Infof("create review: %s dataset: %s rating: %d", reviewAddress, datasetAddress, rating)
	return transactionId(createReviewInstruction, signer, datasetAddress.Bytes(), []byte{rating}, []byte(comment)), nil
}
