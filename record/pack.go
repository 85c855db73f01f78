// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package record

import (
	"encoding/binary"
	"unicode/utf8"

	"github.com/bitmark-inc/datamarketd/address"
	"github.com/bitmark-inc/datamarketd/fault"
	"github.com/bitmark-inc/datamarketd/identity"
	"github.com/bitmark-inc/datamarketd/util"
)

// basic pack routines

func appendUint64(buffer Packed, value uint64) Packed {
	valueBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(valueBytes, value)
	return append(buffer, valueBytes...)
}

func appendInt64(buffer Packed, value int64) Packed {
	// two's complement representation
	return appendUint64(buffer, uint64(value))
}

func appendString(buffer Packed, s string) Packed {
	buffer = append(buffer, util.ToVarint64(uint64(len(s)))...)
	return append(buffer, s...)
}

func appendBool(buffer Packed, value bool) Packed {
	b := byte(0)
	if value {
		b = 1
	}
	return append(buffer, b)
}

// identities are length prefixed; a nil identity packs as zero length
func appendIdentity(buffer Packed, id *identity.Identity) Packed {
	if nil == id {
		return append(buffer, util.ToVarint64(0)...)
	}
	idBytes := id.Bytes()
	buffer = append(buffer, util.ToVarint64(uint64(len(idBytes)))...)
	return append(buffer, idBytes...)
}

// addresses are fixed width so have no length prefix
func appendAddress(buffer Packed, a address.Address) Packed {
	return append(buffer, a[:]...)
}

// Pack - global state
//
// Pack Varint64(tag) followed by fields in order as struct
func (globalState *GlobalState) Pack() (Packed, error) {
	if nil == globalState.Authority {
		return nil, fault.InvalidIdentity
	}

	message := Packed(util.ToVarint64(uint64(GlobalStateTag)))
	message = appendIdentity(message, globalState.Authority)
	return append(message, globalState.Bump), nil
}

// Pack - user record
func (user *User) Pack() (Packed, error) {
	if nil == user.Authority {
		return nil, fault.InvalidIdentity
	}
	if utf8.RuneCountInString(user.Username) < minUsernameLength {
		return nil, fault.InvalidUsername
	}
	if utf8.RuneCountInString(user.Username) > maxUsernameLength {
		return nil, fault.UsernameTooLong
	}

	message := Packed(util.ToVarint64(uint64(UserTag)))
	message = appendIdentity(message, user.Authority)
	message = appendString(message, user.Username)
	message = appendInt64(message, user.Reputation)
	message = appendBool(message, user.IsBanned)
	return append(message, user.Bump), nil
}

// Pack - dataset record
func (dataset *Dataset) Pack() (Packed, error) {
	if nil == dataset.Owner {
		return nil, fault.InvalidIdentity
	}
	if 0 == dataset.Price {
		return nil, fault.InvalidPrice
	}
	if len(dataset.IpfsHash) < minContentIdLength || len(dataset.IpfsHash) > maxContentIdLength {
		return nil, fault.InvalidContentId
	}

	message := Packed(util.ToVarint64(uint64(DatasetTag)))
	message = appendIdentity(message, dataset.Owner)
	message = appendUint64(message, dataset.Price)
	message = appendString(message, dataset.IpfsHash)
	message = appendBool(message, dataset.IsActive)
	return append(message, dataset.Bump), nil
}

// Pack - dispute record
func (dispute *Dispute) Pack() (Packed, error) {
	if nil == dispute.Challenger {
		return nil, fault.InvalidIdentity
	}
	if len(dispute.Reason) < minReasonLength {
		return nil, fault.InvalidReason
	}
	if len(dispute.Reason) > maxReasonLength {
		return nil, fault.ReasonTooLong
	}
	switch dispute.Status {
	case DisputePending, DisputeResolved:
	default:
		return nil, fault.NotRecordPack
	}

	message := Packed(util.ToVarint64(uint64(DisputeTag)))
	message = appendAddress(message, dispute.Dataset)
	message = appendIdentity(message, dispute.Challenger)
	message = appendString(message, dispute.Reason)
	message = appendInt64(message, dispute.CreatedAt)
	message = append(message, byte(dispute.Status))
	message = appendBool(message, dispute.Result)
	message = appendIdentity(message, dispute.Resolver)
	message = appendInt64(message, dispute.ResolvedAt)
	return append(message, dispute.Bump), nil
}

// Pack - review record
func (review *Review) Pack() (Packed, error) {
	if nil == review.Reviewer {
		return nil, fault.InvalidIdentity
	}
	if review.Rating < minRating || review.Rating > maxRating {
		return nil, fault.InvalidRating
	}
	if len(review.Comment) > maxCommentLength {
		return nil, fault.CommentTooLong
	}

	message := Packed(util.ToVarint64(uint64(ReviewTag)))
	message = appendAddress(message, review.Dataset)
	message = appendIdentity(message, review.Reviewer)
	message = append(message, review.Rating)
	message = appendString(message, review.Comment)
	message = appendInt64(message, review.CreatedAt)
	return append(message, review.Bump), nil
}
