// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package market_test

import (
	"fmt"
	"math"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/datamarketd/address"
	"github.com/bitmark-inc/datamarketd/balance"
	"github.com/bitmark-inc/datamarketd/fault"
	"github.com/bitmark-inc/datamarketd/identity"
	"github.com/bitmark-inc/datamarketd/market"
	"github.com/bitmark-inc/datamarketd/record"
	"github.com/bitmark-inc/datamarketd/storage"
	"github.com/bitmark-inc/logger"
)

const (
	testingDirName   = "testing"
	databaseFileName = testingDirName + "/test"
)

func removeFiles() {
	os.RemoveAll(testingDirName)
}

func TestMain(m *testing.M) {
	removeFiles()
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
	removeFiles()
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

// standard cast for the marketplace scenarios
func actors(t *testing.T) (admin *identity.Identity, alice *identity.Identity, bob *identity.Identity) {
	return makeIdentity(t, 0xad), makeIdentity(t, 0xa1), makeIdentity(t, 0xb0)
}

func mustCreateUser(t *testing.T, signer *identity.Identity, username string) address.Address {
	_, err := market.CreateUser(signer, username)
	if nil != err {
		t.Fatalf("create user error: %s", err)
	}
	userAddress, err := address.User(signer)
	if nil != err {
		t.Fatalf("user address error: %s", err)
	}
	return userAddress
}

func mustCreateDataset(t *testing.T, signer *identity.Identity, ipfsHash string, price uint64) address.Address {
	_, err := market.CreateDataset(signer, ipfsHash, price)
	if nil != err {
		t.Fatalf("create dataset error: %s", err)
	}
	datasetAddress, err := address.Dataset(signer, ipfsHash)
	if nil != err {
		t.Fatalf("dataset address error: %s", err)
	}
	return datasetAddress
}

func mustDeposit(t *testing.T, signer *identity.Identity, amount uint64) {
	_, err := market.Deposit(signer, amount)
	if nil != err {
		t.Fatalf("deposit error: %s", err)
	}
}

func TestInitialize(t *testing.T) {
	setup(t)
	defer teardown(t)

	admin, _, _ := actors(t)

	_, err := market.Initialize(nil)
	assert.Equal(t, fault.MissingSigner, err, "missing signer error")

	txId, err := market.Initialize(admin)
	assert.Nil(t, err, "initialize error")
	assert.NotEqual(t, market.TxId{}, txId, "zero transaction id")

	// the authority can never be replaced
	_, err = market.Initialize(admin)
	assert.Equal(t, fault.AlreadyInitialised, err, "missing already initialised error")

	packed := storage.Pool.GlobalState.Get(address.GlobalState().Bytes())
	assert.NotNil(t, packed, "global state not stored")
	globalState, err := record.Packed(packed).UnpackGlobalState()
	assert.Nil(t, err, "unpack error")
	assert.True(t, globalState.Authority.Equal(admin), "wrong authority")
	assert.Equal(t, address.GlobalState().Bump(), globalState.Bump, "wrong bump")
}

func TestCreateUser(t *testing.T) {
	setup(t)
	defer teardown(t)

	admin, alice, _ := actors(t)

	// registration needs an initialised marketplace
	_, err := market.CreateUser(alice, "alice")
	assert.Equal(t, fault.GlobalStateNotFound, err, "missing global state error")

	_, err = market.Initialize(admin)
	assert.Nil(t, err, "initialize error")

	userAddress := mustCreateUser(t, alice, "alice")

	packed := storage.Pool.Users.Get(userAddress.Bytes())
	assert.NotNil(t, packed, "user not stored")
	user, err := record.Packed(packed).UnpackUser()
	assert.Nil(t, err, "unpack error")
	assert.Equal(t, "alice", user.Username, "wrong username")
	assert.Equal(t, int64(0), user.Reputation, "wrong initial reputation")
	assert.False(t, user.IsBanned, "new user banned")

	_, err = market.CreateUser(alice, "alice again")
	assert.Equal(t, fault.UserAlreadyExists, err, "missing duplicate user error")

	bob := makeIdentity(t, 0xb0)
	_, err = market.CreateUser(bob, "")
	assert.Equal(t, fault.InvalidUsername, err, "missing empty username error")

	long := make([]byte, 65)
	for i := range long {
		long[i] = 'x'
	}
	_, err = market.CreateUser(bob, string(long))
	assert.Equal(t, fault.UsernameTooLong, err, "missing long username error")
}

func TestCreateDataset(t *testing.T) {
	setup(t)
	defer teardown(t)

	admin, alice, _ := actors(t)

	_, err := market.Initialize(admin)
	assert.Nil(t, err, "initialize error")

	// registration is required before listing
	_, err = market.CreateDataset(alice, "Qm123", 100)
	assert.Equal(t, fault.UserNotFound, err, "missing unregistered error")

	mustCreateUser(t, alice, "alice")

	_, err = market.CreateDataset(alice, "Qm123", 0)
	assert.Equal(t, fault.InvalidPrice, err, "missing zero price error")

	_, err = market.CreateDataset(alice, "", 100)
	assert.Equal(t, fault.InvalidContentId, err, "missing empty content id error")

	datasetAddress := mustCreateDataset(t, alice, "Qm123", 100)

	packed := storage.Pool.Datasets.Get(datasetAddress.Bytes())
	assert.NotNil(t, packed, "dataset not stored")
	dataset, err := record.Packed(packed).UnpackDataset()
	assert.Nil(t, err, "unpack error")
	assert.True(t, dataset.Owner.Equal(alice), "wrong owner")
	assert.Equal(t, uint64(100), dataset.Price, "wrong price")
	assert.Equal(t, "Qm123", dataset.IpfsHash, "wrong content id")
	assert.True(t, dataset.IsActive, "new listing inactive")

	// owner index entry exists
	indexKey := append(alice.Bytes(), datasetAddress.Bytes()...)
	assert.True(t, storage.Pool.OwnerIndex.Has(indexKey), "missing owner index entry")

	_, err = market.CreateDataset(alice, "Qm123", 200)
	assert.Equal(t, fault.DatasetAlreadyExists, err, "missing duplicate dataset error")

	// same content id under a different owner is a different listing
	bob := makeIdentity(t, 0xb0)
	mustCreateUser(t, bob, "bob")
	otherAddress := mustCreateDataset(t, bob, "Qm123", 300)
	assert.NotEqual(t, datasetAddress, otherAddress, "address collision between owners")
}

// the full marketplace flow: list, fund, purchase, settle
func TestBuyDataset(t *testing.T) {
	setup(t)
	defer teardown(t)

	admin, alice, bob := actors(t)

	_, err := market.Initialize(admin)
	assert.Nil(t, err, "initialize error")

	mustCreateUser(t, alice, "alice")
	mustCreateUser(t, bob, "bob")

	const price = 500_000_000
	datasetAddress := mustCreateDataset(t, alice, "Qm123", price)

	// unfunded purchase fails without any state change
	_, err = market.BuyDataset(bob, datasetAddress)
	assert.Equal(t, fault.InsufficientFunds, err, "missing insufficient funds error")
	packed := storage.Pool.Datasets.Get(datasetAddress.Bytes())
	dataset, _ := record.Packed(packed).UnpackDataset()
	assert.True(t, dataset.IsActive, "failed purchase deactivated listing")

	mustDeposit(t, bob, 600_000_000)

	_, err = market.BuyDataset(alice, datasetAddress)
	assert.Equal(t, fault.SelfPurchase, err, "missing self purchase error")

	txId, err := market.BuyDataset(bob, datasetAddress)
	assert.Nil(t, err, "buy error")
	assert.NotEqual(t, market.TxId{}, txId, "zero transaction id")

	// price moved from buyer to owner, nothing created or destroyed
	assert.Equal(t, uint64(600_000_000-price), balance.Balance(bob), "wrong buyer balance")
	assert.Equal(t, uint64(price), balance.Balance(alice), "wrong owner balance")

	packed = storage.Pool.Datasets.Get(datasetAddress.Bytes())
	dataset, err = record.Packed(packed).UnpackDataset()
	assert.Nil(t, err, "unpack error")
	assert.False(t, dataset.IsActive, "listing still active after sale")

	// a listing sells exactly once
	mustDeposit(t, bob, price)
	_, err = market.BuyDataset(bob, datasetAddress)
	assert.Equal(t, fault.DatasetInactive, err, "missing inactive error")

	_, err = market.BuyDataset(bob, address.Address{})
	assert.Equal(t, fault.DatasetNotFound, err, "missing not found error")
}

func TestFileAndResolveDispute(t *testing.T) {
	setup(t)
	defer teardown(t)

	admin, alice, bob := actors(t)

	_, err := market.Initialize(admin)
	assert.Nil(t, err, "initialize error")

	mustCreateUser(t, alice, "alice")
	mustCreateUser(t, bob, "bob")
	datasetAddress := mustCreateDataset(t, alice, "Qm123", 500_000_000)

	// an unsold listing cannot be disputed
	_, err = market.FileDispute(bob, datasetAddress, "incomplete data")
	assert.Equal(t, fault.DatasetStillActive, err, "missing still active error")

	mustDeposit(t, bob, 500_000_000)
	_, err = market.BuyDataset(bob, datasetAddress)
	assert.Nil(t, err, "buy error")

	_, err = market.FileDispute(alice, datasetAddress, "never happened")
	assert.Equal(t, fault.SelfDispute, err, "missing self dispute error")

	_, err = market.FileDispute(bob, datasetAddress, "")
	assert.Equal(t, fault.InvalidReason, err, "missing empty reason error")

	_, err = market.FileDispute(bob, datasetAddress, "incomplete data")
	assert.Nil(t, err, "file dispute error")

	disputeAddress, err := address.Dispute(datasetAddress, bob)
	assert.Nil(t, err, "dispute address error")

	packed := storage.Pool.Disputes.Get(disputeAddress.Bytes())
	assert.NotNil(t, packed, "dispute not stored")
	dispute, err := record.Packed(packed).UnpackDispute()
	assert.Nil(t, err, "unpack error")
	assert.Equal(t, datasetAddress, dispute.Dataset, "wrong dataset")
	assert.True(t, dispute.Challenger.Equal(bob), "wrong challenger")
	assert.Equal(t, "incomplete data", dispute.Reason, "wrong reason")
	assert.Equal(t, record.DisputePending, dispute.Status, "wrong status")
	assert.Nil(t, dispute.Resolver, "resolver set while pending")
	assert.NotZero(t, dispute.CreatedAt, "missing creation time")

	_, err = market.FileDispute(bob, datasetAddress, "incomplete data")
	assert.Equal(t, fault.DisputeAlreadyExists, err, "missing duplicate dispute error")

	// only the recorded authority can resolve
	_, err = market.ResolveDispute(bob, disputeAddress, true)
	assert.Equal(t, fault.NotAdministrator, err, "missing administrator error")

	_, err = market.ResolveDispute(admin, disputeAddress, true)
	assert.Nil(t, err, "resolve error")

	packed = storage.Pool.Disputes.Get(disputeAddress.Bytes())
	dispute, err = record.Packed(packed).UnpackDispute()
	assert.Nil(t, err, "unpack error")
	assert.Equal(t, record.DisputeResolved, dispute.Status, "wrong status")
	assert.True(t, dispute.Result, "wrong result")
	assert.True(t, dispute.Resolver.Equal(admin), "wrong resolver")
	assert.NotZero(t, dispute.ResolvedAt, "missing resolution time")

	// a dispute resolves exactly once
	_, err = market.ResolveDispute(admin, disputeAddress, false)
	assert.Equal(t, fault.DisputeAlreadyResolved, err, "missing already resolved error")
}

func TestAdjustReputation(t *testing.T) {
	setup(t)
	defer teardown(t)

	admin, alice, _ := actors(t)

	_, err := market.Initialize(admin)
	assert.Nil(t, err, "initialize error")
	userAddress := mustCreateUser(t, alice, "alice")

	_, err = market.AdjustReputation(alice, userAddress, 10)
	assert.Equal(t, fault.NotAdministrator, err, "missing administrator error")

	_, err = market.AdjustReputation(admin, userAddress, 10)
	assert.Nil(t, err, "adjust error")
	_, err = market.AdjustReputation(admin, userAddress, -25)
	assert.Nil(t, err, "adjust error")

	packed := storage.Pool.Users.Get(userAddress.Bytes())
	user, err := record.Packed(packed).UnpackUser()
	assert.Nil(t, err, "unpack error")
	assert.Equal(t, int64(-15), user.Reputation, "wrong reputation")

	// saturates instead of wrapping
	_, err = market.AdjustReputation(admin, userAddress, math.MaxInt64)
	assert.Nil(t, err, "adjust error")
	_, err = market.AdjustReputation(admin, userAddress, math.MaxInt64)
	assert.Nil(t, err, "adjust error")

	packed = storage.Pool.Users.Get(userAddress.Bytes())
	user, err = record.Packed(packed).UnpackUser()
	assert.Nil(t, err, "unpack error")
	assert.Equal(t, int64(math.MaxInt64), user.Reputation, "reputation not clamped")

	_, err = market.AdjustReputation(admin, address.Address{}, 1)
	assert.Equal(t, fault.UserNotFound, err, "missing not found error")
}

func TestBanUser(t *testing.T) {
	setup(t)
	defer teardown(t)

	admin, alice, bob := actors(t)

	_, err := market.Initialize(admin)
	assert.Nil(t, err, "initialize error")
	aliceAddress := mustCreateUser(t, alice, "alice")
	bobAddress := mustCreateUser(t, bob, "bob")
	datasetAddress := mustCreateDataset(t, alice, "Qm123", 100)

	_, err = market.BanUser(bob, aliceAddress)
	assert.Equal(t, fault.NotAdministrator, err, "missing administrator error")

	_, err = market.BanUser(admin, aliceAddress)
	assert.Nil(t, err, "ban error")

	// banning is idempotent
	_, err = market.BanUser(admin, aliceAddress)
	assert.Nil(t, err, "repeated ban error")

	// a banned user cannot act
	_, err = market.CreateDataset(alice, "Qm456", 100)
	assert.Equal(t, fault.UserIsBanned, err, "missing banned error")

	// nor receive sale proceeds
	mustDeposit(t, bob, 100)
	_, err = market.BuyDataset(bob, datasetAddress)
	assert.Equal(t, fault.UserIsBanned, err, "missing banned owner error")

	_, err = market.UnbanUser(admin, aliceAddress)
	assert.Nil(t, err, "unban error")

	_, err = market.BuyDataset(bob, datasetAddress)
	assert.Nil(t, err, "buy after unban error")
	assert.Equal(t, uint64(100), balance.Balance(alice), "wrong owner balance")

	// a banned buyer can neither purchase nor dispute
	secondAddress := mustCreateDataset(t, alice, "Qm789", 100)
	_, err = market.BanUser(admin, bobAddress)
	assert.Nil(t, err, "ban error")

	_, err = market.BuyDataset(bob, secondAddress)
	assert.Equal(t, fault.UserIsBanned, err, "missing banned buyer error")

	_, err = market.FileDispute(bob, datasetAddress, "not as described")
	assert.Equal(t, fault.UserIsBanned, err, "missing banned challenger error")
}

func TestCreateReview(t *testing.T) {
	setup(t)
	defer teardown(t)

	admin, alice, bob := actors(t)

	_, err := market.Initialize(admin)
	assert.Nil(t, err, "initialize error")
	mustCreateUser(t, alice, "alice")
	mustCreateUser(t, bob, "bob")
	datasetAddress := mustCreateDataset(t, alice, "Qm123", 250)

	// an unsold listing cannot be reviewed
	_, err = market.CreateReview(bob, datasetAddress, 4, "good data")
	assert.Equal(t, fault.DatasetStillActive, err, "missing still active error")

	mustDeposit(t, bob, 250)
	_, err = market.BuyDataset(bob, datasetAddress)
	assert.Nil(t, err, "buy error")

	_, err = market.CreateReview(alice, datasetAddress, 5, "great")
	assert.Equal(t, fault.SelfReview, err, "missing self review error")

	_, err = market.CreateReview(bob, datasetAddress, 0, "")
	assert.Equal(t, fault.InvalidRating, err, "missing low rating error")
	_, err = market.CreateReview(bob, datasetAddress, 6, "")
	assert.Equal(t, fault.InvalidRating, err, "missing high rating error")

	_, err = market.CreateReview(bob, datasetAddress, 4, "good data")
	assert.Nil(t, err, "review error")

	reviewAddress, err := address.Review(datasetAddress, bob)
	assert.Nil(t, err, "review address error")

	packed := storage.Pool.Reviews.Get(reviewAddress.Bytes())
	assert.NotNil(t, packed, "review not stored")
	review, err := record.Packed(packed).UnpackReview()
	assert.Nil(t, err, "unpack error")
	assert.Equal(t, uint8(4), review.Rating, "wrong rating")
	assert.Equal(t, "good data", review.Comment, "wrong comment")
	assert.True(t, review.Reviewer.Equal(bob), "wrong reviewer")

	_, err = market.CreateReview(bob, datasetAddress, 5, "changed my mind")
	assert.Equal(t, fault.ReviewAlreadyExists, err, "missing duplicate review error")
}

// identical instructions always produce the identical receipt
func TestTransactionIdDeterminism(t *testing.T) {
	setup(t)

	admin, alice, _ := actors(t)
	_, err := market.Initialize(admin)
	assert.Nil(t, err, "initialize error")
	mustCreateUser(t, alice, "alice")
	txIdOne, err := market.CreateDataset(alice, "Qm123", 100)
	assert.Nil(t, err, "create dataset error")

	teardown(t)
	setup(t)
	defer teardown(t)

	_, err = market.Initialize(admin)
	assert.Nil(t, err, "initialize error")
	mustCreateUser(t, alice, "alice")
	txIdTwo, err := market.CreateDataset(alice, "Qm123", 100)
	assert.Nil(t, err, "create dataset error")

	assert.Equal(t, txIdOne, txIdTwo, "transaction id not deterministic")
}
