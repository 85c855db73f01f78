// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package record

import (
	"encoding/binary"

	"github.com/bitmark-inc/datamarketd/address"
	"github.com/bitmark-inc/datamarketd/fault"
	"github.com/bitmark-inc/datamarketd/identity"
	"github.com/bitmark-inc/datamarketd/util"
)

// sequential field reader over a packed record
//
// the read methods panic on truncated input; Unpack recovers the
// panic and reports fault.NotRecordPack
type unpacker struct {
	buffer Packed
	n      int
}

func (u *unpacker) bytes(count int) []byte {
	if u.n+count > len(u.buffer) {
		panic("record: truncated")
	}
	result := u.buffer[u.n : u.n+count]
	u.n += count
	return result
}

func (u *unpacker) byteValue() byte {
	return u.bytes(1)[0]
}

func (u *unpacker) boolValue() bool {
	return 0 != u.byteValue()
}

func (u *unpacker) uint64Value() uint64 {
	return binary.BigEndian.Uint64(u.bytes(8))
}

func (u *unpacker) int64Value() int64 {
	return int64(u.uint64Value())
}

func (u *unpacker) stringValue(minimum int, maximum int) string {
	length, count := util.ClippedVarint64(u.buffer[u.n:], minimum, maximum)
	if 0 == count {
		panic("record: bad string length")
	}
	u.n += count
	return string(u.bytes(length))
}

func (u *unpacker) identityValue() *identity.Identity {
	length, count := util.FromVarint64(u.buffer[u.n:])
	if 0 == count {
		panic("record: bad identity length")
	}
	u.n += count
	if 0 == length {
		return nil // a nil identity packs as zero length
	}
	id, err := identity.FromBytes(u.bytes(int(length)))
	if nil != err {
		panic("record: bad identity")
	}
	return id
}

func (u *unpacker) addressValue() address.Address {
	a, err := address.FromBytes(u.bytes(address.Length))
	if nil != err {
		panic("record: bad address")
	}
	return a
}

// Unpack - turn a byte slice into a record
//
// must cast result to the correct type
//
// e.g.
//   user, ok := result.(*record.User)
// or:
//   switch r := result.(type) {
//   case *record.User:
func (record Packed) Unpack() (r Record, n int, e error) {

	defer func() {
		if rec := recover(); nil != rec {
			r, n, e = nil, 0, fault.NotRecordPack
		}
	}()

	recordType, count := util.FromVarint64(record)
	if 0 == count {
		return nil, 0, fault.NotRecordPack
	}

	u := &unpacker{buffer: record, n: count}

	switch TagType(recordType) {

	case GlobalStateTag:
		globalState := &GlobalState{
			Authority: u.identityValue(),
			Bump:      u.byteValue(),
		}
		if nil == globalState.Authority {
			return nil, 0, fault.NotRecordPack
		}
		return globalState, u.n, nil

	case UserTag:
		user := &User{
			Authority:  u.identityValue(),
			Username:   u.stringValue(minUsernameLength, maxUsernameLength*4),
			Reputation: u.int64Value(),
			IsBanned:   u.boolValue(),
			Bump:       u.byteValue(),
		}
		if nil == user.Authority {
			return nil, 0, fault.NotRecordPack
		}
		return user, u.n, nil

	case DatasetTag:
		dataset := &Dataset{
			Owner:    u.identityValue(),
			Price:    u.uint64Value(),
			IpfsHash: u.stringValue(minContentIdLength, maxContentIdLength),
			IsActive: u.boolValue(),
			Bump:     u.byteValue(),
		}
		if nil == dataset.Owner || 0 == dataset.Price {
			return nil, 0, fault.NotRecordPack
		}
		return dataset, u.n, nil

	case DisputeTag:
		dispute := &Dispute{
			Dataset:    u.addressValue(),
			Challenger: u.identityValue(),
			Reason:     u.stringValue(minReasonLength, maxReasonLength),
			CreatedAt:  u.int64Value(),
			Status:     DisputeStatus(u.byteValue()),
			Result:     u.boolValue(),
			Resolver:   u.identityValue(),
			ResolvedAt: u.int64Value(),
			Bump:       u.byteValue(),
		}
		if nil == dispute.Challenger || dispute.Status > DisputeResolved {
			return nil, 0, fault.NotRecordPack
		}
		return dispute, u.n, nil

	case ReviewTag:
		review := &Review{
			Dataset:   u.addressValue(),
			Reviewer:  u.identityValue(),
			Rating:    u.byteValue(),
			Comment:   u.stringValue(0, maxCommentLength),
			CreatedAt: u.int64Value(),
			Bump:      u.byteValue(),
		}
		if nil == review.Reviewer || review.Rating < minRating || review.Rating > maxRating {
			return nil, 0, fault.NotRecordPack
		}
		return review, u.n, nil

	default:
		return nil, 0, fault.NotRecordPack
	}
}

// typed unpackers: reject a valid record of the wrong kind

// UnpackGlobalState - unpack expecting the global state singleton
func (record Packed) UnpackGlobalState() (*GlobalState, error) {
	r, _, err := record.Unpack()
	if nil != err {
		return nil, err
	}
	globalState, ok := r.(*GlobalState)
	if !ok {
		return nil, fault.WrongRecordKind
	}
	return globalState, nil
}

// UnpackUser - unpack expecting a user record
func (record Packed) UnpackUser() (*User, error) {
	r, _, err := record.Unpack()
	if nil != err {
		return nil, err
	}
	user, ok := r.(*User)
	if !ok {
		return nil, fault.WrongRecordKind
	}
	return user, nil
}

// UnpackDataset - unpack expecting a dataset record
func (record Packed) UnpackDataset() (*Dataset, error) {
	r, _, err := record.Unpack()
	if nil != err {
		return nil, err
	}
	dataset, ok := r.(*Dataset)
	if !ok {
		return nil, fault.WrongRecordKind
	}
	return dataset, nil
}

// UnpackDispute - unpack expecting a dispute record
func (record Packed) UnpackDispute() (*Dispute, error) {
	r, _, err := record.Unpack()
	if nil != err {
		return nil, err
	}
	dispute, ok := r.(*Dispute)
	if !ok {
		return nil, fault.WrongRecordKind
	}
	return dispute, nil
}

// UnpackReview - unpack expecting a review record
func (record Packed) UnpackReview() (*Review, error) {
	r, _, err := record.Unpack()
	if nil != err {
		return nil, err
	}
	review, ok := r.(*Review)
	if !ok {
		return nil, fault.WrongRecordKind
	}
	return review, nil
}
