// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package record

import (
	"github.com/bitmark-inc/datamarketd/address"
	"github.com/bitmark-inc/datamarketd/identity"
)

// TagType - type code for account records
type TagType uint64

// enumerate the possible account record kinds
// this is encoded as a Varint64 at the start of "Packed"
//
// the set is closed: unpacking rejects any other discriminator, and
// the typed unpackers reject a valid record of the wrong kind
const (
	// null marks beginning of list - not used as a record kind
	NullTag = TagType(iota)

	// valid record kinds
	GlobalStateTag = TagType(iota) // the admin authority singleton
	UserTag        = TagType(iota) // marketplace participant
	DatasetTag     = TagType(iota) // listed dataset
	DisputeTag     = TagType(iota) // arbitration case
	ReviewTag      = TagType(iota) // purchase review

	// this item must be last
	InvalidTag = TagType(iota)
)

// Packed - packed records are just a byte slice
type Packed []byte

// Record - generic account record interface
type Record interface {
	Pack() (Packed, error)
}

// byte sizes for various fields
const (
	minUsernameLength  = 1
	maxUsernameLength  = 64
	minContentIdLength = 1
	maxContentIdLength = 128
	minReasonLength    = 1
	maxReasonLength    = 1024
	maxCommentLength   = 1024
	minRating          = 1
	maxRating          = 5
)

// DisputeStatus - arbitration state of a dispute record
type DisputeStatus byte

// dispute states: a dispute moves Pending → Resolved exactly once
const (
	DisputePending  DisputeStatus = 0
	DisputeResolved DisputeStatus = 1
)

// GlobalState - the marketplace singleton
//
// authority is set at initialisation and never changed by any
// instruction in the core
type GlobalState struct {
	Authority *identity.Identity `json:"authority"` // base58
	Bump      byte               `json:"bump"`
}

// User - one record per distinct authenticated identity
type User struct {
	Authority  *identity.Identity `json:"authority"`  // base58
	Username   string             `json:"username"`   // utf-8, set once
	Reputation int64              `json:"reputation"` // signed, admin adjusted
	IsBanned   bool               `json:"isBanned"`
	Bump       byte               `json:"bump"`
}

// Dataset - one record per (owner, content identifier)
//
// the content identifier is opaque: the core stores and compares the
// string, it never fetches or validates content
type Dataset struct {
	Owner    *identity.Identity `json:"owner"`        // base58
	Price    uint64             `json:"price,string"` // smallest currency unit
	IpfsHash string             `json:"ipfsHash"`     // opaque content identifier
	IsActive bool               `json:"isActive"`     // true → false exactly once
	Bump     byte               `json:"bump"`
}

// Dispute - one record per (dataset, challenger)
type Dispute struct {
	Dataset    address.Address    `json:"dataset"`    // hex
	Challenger *identity.Identity `json:"challenger"` // base58
	Reason     string             `json:"reason"`     // utf-8
	CreatedAt  int64              `json:"createdAt"`  // unix seconds
	Status     DisputeStatus      `json:"status"`
	Result     bool               `json:"result"`     // meaningful only when resolved
	Resolver   *identity.Identity `json:"resolver"`   // nil while pending
	ResolvedAt int64              `json:"resolvedAt"` // unix seconds, zero while pending
	Bump       byte               `json:"bump"`
}

// Review - one record per (dataset, reviewer)
type Review struct {
	Dataset   address.Address    `json:"dataset"`  // hex
	Reviewer  *identity.Identity `json:"reviewer"` // base58
	Rating    uint8              `json:"rating"`   // 1..5
	Comment   string             `json:"comment"`  // utf-8, may be empty
	CreatedAt int64              `json:"createdAt"`
	Bump      byte               `json:"bump"`
}
