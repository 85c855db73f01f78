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

// CreateDataset - list a dataset for sale
//
// the content identifier is opaque to the core; the listing also
// feeds the owner index so an owner's datasets can be enumerated
func CreateDataset(signer *identity.Identity, ipfsHash string, price uint64) (TxId, error) {
	if nil == signer {
		return TxId{}, fault.MissingSigner
	}

	globalData.Lock()
	defer globalData.Unlock()

	var datasetAddress address.Address
	err := execute(func(trx storage.Transaction) error {
		_, err := requireParticipant(trx, signer)
		if nil != err {
			return err
		}

		datasetAddress, err = address.Dataset(signer, ipfsHash)
		if nil != err {
			return err
		}
		if trx.Has(storage.Pool.Datasets, datasetAddress.Bytes()) {
			return fault.DatasetAlreadyExists
		}

		err = storeRecord(trx, storage.Pool.Datasets, datasetAddress, &record.Dataset{
			Owner:    signer,
			Price:    price,
			IpfsHash: ipfsHash,
			IsActive: true,
			Bump:     datasetAddress.Bump(),
		})
		if nil != err {
			return err
		}

		// owner index: owner ++ dataset address → dataset address
		indexKey := append(signer.Bytes(), datasetAddress.Bytes()...)
		trx.Put(storage.Pool.OwnerIndex, indexKey, datasetAddress.Bytes())
		return nil
	})
	if nil != err {
		return TxId{}, err
	}

	globalData.log.Infof("create dataset: %s owner: %s price: %d", datasetAddress, signer, price)
	return transactionId(createDatasetInstruction, signer, []byte(ipfsHash), uint64Argument(price)), nil
}

// BuyDataset - purchase an active listing
//
// atomically moves the price from buyer to owner and deactivates the
// listing; the sum of the two balances is unchanged
func BuyDataset(signer *identity.Identity, datasetAddress address.Address) (TxId, error) {
	if nil == signer {
		return TxId{}, fault.MissingSigner
	}

	globalData.Lock()
	defer globalData.Unlock()

	err := execute(func(trx storage.Transaction) error {
		_, err := requireParticipant(trx, signer)
		if nil != err {
			return err
		}

		dataset, err := fetchDataset(trx, datasetAddress)
		if nil != err {
			return err
		}
		if !dataset.IsActive {
			return fault.DatasetInactive
		}
		if dataset.Owner.Equal(signer) {
			return fault.SelfPurchase
		}

		// a banned owner cannot receive sale proceeds
		_, err = requireParticipant(trx, dataset.Owner)
		if nil != err {
			return err
		}

		err = balance.Transfer(trx, signer, dataset.Owner, dataset.Price)
		if nil != err {
			return err
		}

		dataset.IsActive = false
		return storeRecord(trx, storage.Pool.Datasets, datasetAddress, dataset)
	})
	if nil != err {
		return TxId{}, err
	}

	globalData.log.Infof("buy dataset: %s buyer: %s", datasetAddress, signer)
	return transactionId(buyDatasetInstruction, signer, datasetAddress.Bytes()), nil
}
