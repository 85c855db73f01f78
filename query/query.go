// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package query - read-only views over committed marketplace state
//
// queries bypass any in-flight instruction batch so they only ever
// see fully applied instructions.  Listings are paged: each call
// returns a resume key and the caller passes it back to continue, so
// enumeration never holds a long-lived snapshot
package query

import (
	"bytes"

	"github.com/bitmark-inc/datamarketd/address"
	"github.com/bitmark-inc/datamarketd/fault"
	"github.com/bitmark-inc/datamarketd/identity"
	"github.com/bitmark-inc/datamarketd/record"
	"github.com/bitmark-inc/datamarketd/storage"
)

// MaximumCount - upper bound on a single page
const MaximumCount = 100

// DatasetItem - a dataset together with its address
type DatasetItem struct {
	Address address.Address `json:"address"`
	Dataset *record.Dataset `json:"dataset"`
}

// DisputeItem - a dispute together with its address
type DisputeItem struct {
	Address address.Address `json:"address"`
	Dispute *record.Dispute `json:"dispute"`
}

// ReviewItem - a review together with its address
type ReviewItem struct {
	Address address.Address `json:"address"`
	Review  *record.Review  `json:"review"`
}

// GlobalState - the admin authority singleton
func GlobalState() (*record.GlobalState, error) {
	packed := storage.Pool.GlobalState.Get(address.GlobalState().Bytes())
	if nil == packed {
		return nil, fault.GlobalStateNotFound
	}
	return record.Packed(packed).UnpackGlobalState()
}

// User - point lookup of a user record
func User(userAddress address.Address) (*record.User, error) {
	packed := storage.Pool.Users.Get(userAddress.Bytes())
	if nil == packed {
		return nil, fault.UserNotFound
	}
	return record.Packed(packed).UnpackUser()
}

// Dataset - point lookup of a dataset record
func Dataset(datasetAddress address.Address) (*record.Dataset, error) {
	packed := storage.Pool.Datasets.Get(datasetAddress.Bytes())
	if nil == packed {
		return nil, fault.DatasetNotFound
	}
	return record.Packed(packed).UnpackDataset()
}

// Dispute - point lookup of a dispute record
func Dispute(disputeAddress address.Address) (*record.Dispute, error) {
	packed := storage.Pool.Disputes.Get(disputeAddress.Bytes())
	if nil == packed {
		return nil, fault.DisputeNotFound
	}
	return record.Packed(packed).UnpackDispute()
}

// Review - point lookup of a review record
func Review(reviewAddress address.Address) (*record.Review, error) {
	packed := storage.Pool.Reviews.Get(reviewAddress.Bytes())
	if nil == packed {
		return nil, fault.ReviewNotFound
	}
	return record.Packed(packed).UnpackReview()
}

func checkCount(count int) error {
	if count <= 0 || count > MaximumCount {
		return fault.InvalidCount
	}
	return nil
}

// resumeKey - position a page just after the last examined record
func resumeKey(lastKey []byte) []byte {
	next := make([]byte, len(lastKey), len(lastKey)+1)
	copy(next, lastKey)
	return append(next, 0x00)
}

// ActiveDatasets - page through listings still for sale
//
// pass nil to start and the returned key to continue; a nil returned
// key marks the end.  A page may hold fewer than count items when
// sold listings were skipped
func ActiveDatasets(startKey []byte, count int) ([]DatasetItem, []byte, error) {
	err := checkCount(count)
	if nil != err {
		return nil, nil, err
	}

	cursor := storage.Pool.Datasets.NewFetchCursor()
	if 0 != len(startKey) {
		cursor.Seek(startKey)
	}

	elements, err := cursor.Fetch(count)
	if nil != err {
		return nil, nil, err
	}

	items := make([]DatasetItem, 0, len(elements))
	for _, element := range elements {
		datasetAddress, err := address.FromBytes(element.Key)
		if nil != err {
			return nil, nil, err
		}
		dataset, err := record.Packed(element.Value).UnpackDataset()
		if nil != err {
			return nil, nil, err
		}
		if !dataset.IsActive {
			continue
		}
		items = append(items, DatasetItem{
			Address: datasetAddress,
			Dataset: dataset,
		})
	}

	if len(elements) < count {
		return items, nil, nil
	}
	return items, resumeKey(elements[len(elements)-1].Key), nil
}

// ReviewsOf - page through the reviews of one dataset
//
// a page may hold fewer than count items when reviews of other
// datasets were skipped
func ReviewsOf(datasetAddress address.Address, startKey []byte, count int) ([]ReviewItem, []byte, error) {
	err := checkCount(count)
	if nil != err {
		return nil, nil, err
	}

	cursor := storage.Pool.Reviews.NewFetchCursor()
	if 0 != len(startKey) {
		cursor.Seek(startKey)
	}

	elements, err := cursor.Fetch(count)
	if nil != err {
		return nil, nil, err
	}

	items := make([]ReviewItem, 0, len(elements))
	for _, element := range elements {
		reviewAddress, err := address.FromBytes(element.Key)
		if nil != err {
			return nil, nil, err
		}
		review, err := record.Packed(element.Value).UnpackReview()
		if nil != err {
			return nil, nil, err
		}
		if datasetAddress != review.Dataset {
			continue
		}
		items = append(items, ReviewItem{
			Address: reviewAddress,
			Review:  review,
		})
	}

	if len(elements) < count {
		return items, nil, nil
	}
	return items, resumeKey(elements[len(elements)-1].Key), nil
}

// DatasetsByOwner - page through one owner's listings, sold or not
func DatasetsByOwner(owner *identity.Identity, startKey []byte, count int) ([]DatasetItem, []byte, error) {
	if nil == owner {
		return nil, nil, fault.InvalidIdentity
	}
	err := checkCount(count)
	if nil != err {
		return nil, nil, err
	}

	ownerPrefix := owner.Bytes()

	cursor := storage.Pool.OwnerIndex.NewFetchCursor()
	if 0 != len(startKey) {
		cursor.Seek(startKey)
	} else {
		cursor.Seek(ownerPrefix)
	}

	elements, err := cursor.Fetch(count)
	if nil != err {
		return nil, nil, err
	}

	items := make([]DatasetItem, 0, len(elements))
	for _, element := range elements {
		// the index is ordered, so the first foreign key ends the range
		if !bytes.HasPrefix(element.Key, ownerPrefix) {
			return items, nil, nil
		}
		datasetAddress, err := address.FromBytes(element.Value)
		if nil != err {
			return nil, nil, err
		}
		dataset, err := Dataset(datasetAddress)
		if nil != err {
			return nil, nil, err
		}
		items = append(items, DatasetItem{
			Address: datasetAddress,
			Dataset: dataset,
		})
	}

	if len(elements) < count {
		return items, nil, nil
	}
	return items, resumeKey(elements[len(elements)-1].Key), nil
}

// Disputes - page through every dispute record
func Disputes(startKey []byte, count int) ([]DisputeItem, []byte, error) {
	err := checkCount(count)
	if nil != err {
		return nil, nil, err
	}

	cursor := storage.Pool.Disputes.NewFetchCursor()
	if 0 != len(startKey) {
		cursor.Seek(startKey)
	}

	elements, err := cursor.Fetch(count)
	if nil != err {
		return nil, nil, err
	}

	items := make([]DisputeItem, 0, len(elements))
	for _, element := range elements {
		disputeAddress, err := address.FromBytes(element.Key)
		if nil != err {
			return nil, nil, err
		}
		dispute, err := record.Packed(element.Value).UnpackDispute()
		if nil != err {
			return nil, nil, err
		}
		items = append(items, DisputeItem{
			Address: disputeAddress,
			Dispute: dispute,
		})
	}

	if len(elements) < count {
		return items, nil, nil
	}
	return items, resumeKey(elements[len(elements)-1].Key), nil
}
