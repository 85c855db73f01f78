// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package address

import (
	"encoding/hex"

	"golang.org/x/crypto/sha3"

	"github.com/bitmark-inc/datamarketd/fault"
	"github.com/bitmark-inc/datamarketd/identity"
	"github.com/bitmark-inc/datamarketd/util"
)

// Length - length of an address in bytes
const Length = 32

// Address - the record key derived from a typed seed tuple
//
// derivation is part of the wire contract: any client must reproduce
// the identical bytes to locate an account
type Address [Length]byte

// domain tags, one per record kind
//
// a tag is hashed with its length prefix so equal seed bytes under
// different kinds can never collide
const (
	globalStateTag = "global_state"
	userTag        = "user"
	datasetTag     = "dataset"
	disputeTag     = "dispute"
	reviewTag      = "review"
)

// derive - sha3-256 over the length-prefixed tag and seeds
func derive(tag string, seeds ...[]byte) Address {
	h := sha3.New256()
	h.Write(util.ToVarint64(uint64(len(tag))))
	h.Write([]byte(tag))
	for _, seed := range seeds {
		h.Write(util.ToVarint64(uint64(len(seed))))
		h.Write(seed)
	}
	var a Address
	copy(a[:], h.Sum(nil))
	return a
}

// GlobalState - the singleton global state address
func GlobalState() Address {
	return derive(globalStateTag)
}

// User - one user record per signer
func User(signer *identity.Identity) (Address, error) {
	if nil == signer {
		return Address{}, fault.InvalidIdentity
	}
	return derive(userTag, signer.Bytes()), nil
}

// Dataset - one dataset record per (owner, content identifier)
func Dataset(owner *identity.Identity, ipfsHash string) (Address, error) {
	if nil == owner {
		return Address{}, fault.InvalidIdentity
	}
	if 0 == len(ipfsHash) {
		return Address{}, fault.InvalidContentId
	}
	return derive(datasetTag, owner.Bytes(), []byte(ipfsHash)), nil
}

// Dispute - one dispute record per (dataset, challenger)
func Dispute(dataset Address, challenger *identity.Identity) (Address, error) {
	if nil == challenger {
		return Address{}, fault.InvalidIdentity
	}
	return derive(disputeTag, dataset[:], challenger.Bytes()), nil
}

// Review - one review record per (dataset, reviewer)
func Review(dataset Address, reviewer *identity.Identity) (Address, error) {
	if nil == reviewer {
		return Address{}, fault.InvalidIdentity
	}
	return derive(reviewTag, dataset[:], reviewer.Bytes()), nil
}

// FromBytes - convert a binary address, as stored in packed records
// and pool keys, back to an address
func FromBytes(buffer []byte) (Address, error) {
	if Length != len(buffer) {
		return Address{}, fault.InvalidAddressLength
	}
	var a Address
	copy(a[:], buffer)
	return a, nil
}

// FromHexString - convert a hex string to an address
func FromHexString(s string) (Address, error) {
	if hex.EncodedLen(Length) != len(s) {
		return Address{}, fault.CannotDecodeAddress
	}
	var a Address
	_, err := hex.Decode(a[:], []byte(s))
	if nil != err {
		return Address{}, fault.CannotDecodeAddress
	}
	return a, nil
}

// Bytes - byte slice form for keys and seeds
func (a Address) Bytes() []byte {
	return a[:]
}

// Bump - the derivation check byte recorded in every account
func (a Address) Bump() byte {
	return a[Length-1]
}

// String - hex string form
func (a Address) String() string {
	return hex.EncodeToString(a[:])
}

// MarshalText - encode for JSON and text formats
func (a Address) MarshalText() ([]byte, error) {
	buffer := make([]byte, hex.EncodedLen(Length))
	hex.Encode(buffer, a[:])
	return buffer, nil
}

// UnmarshalText - decode from JSON and text formats
func (a *Address) UnmarshalText(s []byte) error {
	decoded, err := FromHexString(string(s))
	if nil != err {
		return err
	}
	*a = decoded
	return nil
}
