// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package query_test

import (
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/datamarketd/address"
	"github.com/bitmark-inc/datamarketd/fault"
	"github.com/bitmark-inc/datamarketd/identity"
	"github.com/bitmark-inc/datamarketd/market"
	"github.com/bitmark-inc/datamarketd/query"
	"github.com/bitmark-inc/datamarketd/storage"
	"github.com/bitmark-inc/logger"
)

const (
	testingDirName   = "testing"
	databaseFileName = testingDirName + "/test"
)

func TestMain(m *testing.M) {
	os.RemoveAll(testingDirName)
	os.Mkdir(testingDirName, 0700)

	logging := logger.Configuration{
		Directory: testingDirName,
		File:      "testing.log",
		Size:      1048576,
		Count:     10,
		Console:   false,
		Levels: map[string]string{
			logger.DefaultTag: "critical",
		},
	}
	if err := logger.Initialise(logging); nil != err {
		panic(fmt.Sprintf("logger initialisation failed: %s", err))
	}

	rc := m.Run()
	os.RemoveAll(testingDirName)
	os.Exit(rc)
}

func setup(t *testing.T) {
	os.RemoveAll(databaseFileName + ".leveldb")
	err := storage.Initialise(databaseFileName, storage.ReadWrite)
	if nil != err {
		t.Fatalf("storage initialise error: %s", err)
	}
	err = market.Initialise()
	if nil != err {
		t.Fatalf("market initialise error: %s", err)
	}
}

func teardown(t *testing.T) {
	market.Finalise()
	storage.Finalise()
	os.RemoveAll(databaseFileName + ".leveldb")
}

func makeIdentity(t *testing.T, fill byte) *identity.Identity {
	key := make([]byte, 32)
	for i := range key {
		key[i] = fill
	}
	id, err := identity.New(key, true)
	if nil != err {
		t.Fatalf("identity error: %s", err)
	}
	return id
}

func TestPointLookups(t *testing.T) {
	setup(t)
	defer teardown(t)

	_, err := query.GlobalState()
	assert.Equal(t, fault.GlobalStateNotFound, err, "missing global state error")

	admin := makeIdentity(t, 0xad)
	alice := makeIdentity(t, 0xa1)
	bob := makeIdentity(t, 0xb0)

	_, err = market.Initialize(admin)
	assert.Nil(t, err, "initialize error")
	_, err = market.CreateUser(alice, "alice")
	assert.Nil(t, err, "create user error")
	_, err = market.CreateUser(bob, "bob")
	assert.Nil(t, err, "create user error")
	_, err = market.CreateDataset(alice, "Qm123", 250)
	assert.Nil(t, err, "create dataset error")

	globalState, err := query.GlobalState()
	assert.Nil(t, err, "global state error")
	assert.True(t, globalState.Authority.Equal(admin), "wrong authority")

	userAddress, _ := address.User(alice)
	user, err := query.User(userAddress)
	assert.Nil(t, err, "user error")
	assert.Equal(t, "alice", user.Username, "wrong username")

	_, err = query.User(address.Address{})
	assert.Equal(t, fault.UserNotFound, err, "missing user not found error")

	datasetAddress, _ := address.Dataset(alice, "Qm123")
	dataset, err := query.Dataset(datasetAddress)
	assert.Nil(t, err, "dataset error")
	assert.Equal(t, uint64(250), dataset.Price, "wrong price")

	_, err = query.Dataset(address.Address{})
	assert.Equal(t, fault.DatasetNotFound, err, "missing dataset not found error")

	// sell then dispute and review to populate the remaining pools
	_, err = market.Deposit(bob, 250)
	assert.Nil(t, err, "deposit error")
	_, err = market.BuyDataset(bob, datasetAddress)
	assert.Nil(t, err, "buy error")
	_, err = market.FileDispute(bob, datasetAddress, "incomplete data")
	assert.Nil(t, err, "dispute error")
	_, err = market.CreateReview(bob, datasetAddress, 3, "fair")
	assert.Nil(t, err, "review error")

	disputeAddress, _ := address.Dispute(datasetAddress, bob)
	dispute, err := query.Dispute(disputeAddress)
	assert.Nil(t, err, "dispute error")
	assert.Equal(t, "incomplete data", dispute.Reason, "wrong reason")

	reviewAddress, _ := address.Review(datasetAddress, bob)
	review, err := query.Review(reviewAddress)
	assert.Nil(t, err, "review error")
	assert.Equal(t, uint8(3), review.Rating, "wrong rating")

	_, err = query.Dispute(address.Address{})
	assert.Equal(t, fault.DisputeNotFound, err, "missing dispute not found error")
	_, err = query.Review(address.Address{})
	assert.Equal(t, fault.ReviewNotFound, err, "missing review not found error")
}

func TestActiveDatasets(t *testing.T) {
	setup(t)
	defer teardown(t)

	admin := makeIdentity(t, 0xad)
	alice := makeIdentity(t, 0xa1)
	bob := makeIdentity(t, 0xb0)
	_, err := market.Initialize(admin)
	assert.Nil(t, err, "initialize error")
	_, err = market.CreateUser(alice, "alice")
	assert.Nil(t, err, "create user error")
	_, err = market.CreateUser(bob, "bob")
	assert.Nil(t, err, "create user error")

	total := 7
	for i := 0; i < total; i += 1 {
		_, err = market.CreateDataset(alice, fmt.Sprintf("Qm%03d", i), 100)
		assert.Nil(t, err, "create dataset error")
	}

	// sell one listing so it drops out of the active set
	soldAddress, _ := address.Dataset(alice, "Qm003")
	_, err = market.Deposit(bob, 100)
	assert.Nil(t, err, "deposit error")
	_, err = market.BuyDataset(bob, soldAddress)
	assert.Nil(t, err, "buy error")

	seen := make(map[string]bool)
	var startKey []byte
	for {
		items, nextKey, err := query.ActiveDatasets(startKey, 3)
		assert.Nil(t, err, "active datasets error")
		for _, item := range items {
			assert.True(t, item.Dataset.IsActive, "inactive listing returned")
			assert.False(t, seen[item.Dataset.IpfsHash], "duplicate listing returned")
			seen[item.Dataset.IpfsHash] = true
		}
		if nil == nextKey {
			break
		}
		startKey = nextKey
	}

	assert.Equal(t, total-1, len(seen), "wrong active count")
	assert.False(t, seen["Qm003"], "sold listing returned")

	_, _, err = query.ActiveDatasets(nil, 0)
	assert.Equal(t, fault.InvalidCount, err, "missing invalid count error")
	_, _, err = query.ActiveDatasets(nil, query.MaximumCount+1)
	assert.Equal(t, fault.InvalidCount, err, "missing maximum count error")
}

func TestDatasetsByOwner(t *testing.T) {
	setup(t)
	defer teardown(t)

	admin := makeIdentity(t, 0xad)
	alice := makeIdentity(t, 0xa1)
	bob := makeIdentity(t, 0xb0)
	_, err := market.Initialize(admin)
	assert.Nil(t, err, "initialize error")
	_, err = market.CreateUser(alice, "alice")
	assert.Nil(t, err, "create user error")
	_, err = market.CreateUser(bob, "bob")
	assert.Nil(t, err, "create user error")

	for i := 0; i < 5; i += 1 {
		_, err = market.CreateDataset(alice, fmt.Sprintf("Qm%03d", i), 100)
		assert.Nil(t, err, "create dataset error")
	}
	_, err = market.CreateDataset(bob, "QmBob", 100)
	assert.Nil(t, err, "create dataset error")

	count := 0
	var startKey []byte
	for {
		items, nextKey, err := query.DatasetsByOwner(alice, startKey, 2)
		assert.Nil(t, err, "datasets by owner error")
		for _, item := range items {
			assert.True(t, item.Dataset.Owner.Equal(alice), "foreign listing returned")
			count += 1
		}
		if nil == nextKey {
			break
		}
		startKey = nextKey
	}
	assert.Equal(t, 5, count, "wrong owner listing count")

	items, nextKey, err := query.DatasetsByOwner(bob, nil, 10)
	assert.Nil(t, err, "datasets by owner error")
	assert.Nil(t, nextKey, "unexpected resume key")
	assert.Equal(t, 1, len(items), "wrong owner listing count")
	assert.Equal(t, "QmBob", items[0].Dataset.IpfsHash, "wrong listing")

	_, _, err = query.DatasetsByOwner(nil, nil, 10)
	assert.Equal(t, fault.InvalidIdentity, err, "missing invalid identity error")
}

func TestReviewsOf(t *testing.T) {
	setup(t)
	defer teardown(t)

	admin := makeIdentity(t, 0xad)
	alice := makeIdentity(t, 0xa1)
	bob := makeIdentity(t, 0xb0)
	carol := makeIdentity(t, 0xca)

	_, err := market.Initialize(admin)
	assert.Nil(t, err, "initialize error")
	for _, u := range []struct {
		id   *identity.Identity
		name string
	}{
		{alice, "alice"},
		{bob, "bob"},
		{carol, "carol"},
	} {
		_, err = market.CreateUser(u.id, u.name)
		assert.Nil(t, err, "create user error")
	}

	// two sold datasets, reviews spread across both
	firstAddress, _ := address.Dataset(alice, "Qm001")
	secondAddress, _ := address.Dataset(alice, "Qm002")
	for _, ipfsHash := range []string{"Qm001", "Qm002"} {
		_, err = market.CreateDataset(alice, ipfsHash, 100)
		assert.Nil(t, err, "create dataset error")
	}
	_, err = market.Deposit(bob, 200)
	assert.Nil(t, err, "deposit error")
	_, err = market.BuyDataset(bob, firstAddress)
	assert.Nil(t, err, "buy error")
	_, err = market.BuyDataset(bob, secondAddress)
	assert.Nil(t, err, "buy error")

	_, err = market.CreateReview(bob, firstAddress, 5, "excellent")
	assert.Nil(t, err, "review error")
	_, err = market.CreateReview(carol, firstAddress, 2, "stale")
	assert.Nil(t, err, "review error")
	_, err = market.CreateReview(bob, secondAddress, 3, "")
	assert.Nil(t, err, "review error")

	ratings := 0
	var startKey []byte
	for {
		items, nextKey, err := query.ReviewsOf(firstAddress, startKey, 2)
		assert.Nil(t, err, "reviews error")
		for _, item := range items {
			assert.Equal(t, firstAddress, item.Review.Dataset, "foreign review returned")
			ratings += int(item.Review.Rating)
		}
		if nil == nextKey {
			break
		}
		startKey = nextKey
	}
	assert.Equal(t, 7, ratings, "wrong review set")
}

func TestDisputes(t *testing.T) {
	setup(t)
	defer teardown(t)

	admin := makeIdentity(t, 0xad)
	alice := makeIdentity(t, 0xa1)
	bob := makeIdentity(t, 0xb0)
	carol := makeIdentity(t, 0xca)

	_, err := market.Initialize(admin)
	assert.Nil(t, err, "initialize error")
	_, err = market.CreateUser(alice, "alice")
	assert.Nil(t, err, "create user error")
	_, err = market.CreateUser(bob, "bob")
	assert.Nil(t, err, "create user error")
	_, err = market.CreateUser(carol, "carol")
	assert.Nil(t, err, "create user error")

	datasetAddress, _ := address.Dataset(alice, "Qm123")
	_, err = market.CreateDataset(alice, "Qm123", 100)
	assert.Nil(t, err, "create dataset error")
	_, err = market.Deposit(bob, 100)
	assert.Nil(t, err, "deposit error")
	_, err = market.BuyDataset(bob, datasetAddress)
	assert.Nil(t, err, "buy error")

	_, err = market.FileDispute(bob, datasetAddress, "incomplete data")
	assert.Nil(t, err, "dispute error")
	_, err = market.FileDispute(carol, datasetAddress, "stolen data")
	assert.Nil(t, err, "dispute error")

	items, nextKey, err := query.Disputes(nil, 10)
	assert.Nil(t, err, "disputes error")
	assert.Nil(t, nextKey, "unexpected resume key")
	assert.Equal(t, 2, len(items), "wrong dispute count")

	reasons := make(map[string]bool)
	for _, item := range items {
		reasons[item.Dispute.Reason] = true
		assert.Equal(t, datasetAddress, item.Dispute.Dataset, "wrong dataset")
	}
	assert.True(t, reasons["incomplete data"], "missing dispute")
	assert.True(t, reasons["stolen data"], "missing dispute")
}
