// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package market

import (
	"encoding/binary"
	"encoding/hex"

	"golang.org/x/crypto/sha3"

	"github.com/bitmark-inc/datamarketd/identity"
	"github.com/bitmark-inc/datamarketd/util"
)

// instruction codes, hashed into the transaction id so the same
// signer and arguments under different instructions never collide
const (
	initializeInstruction = iota + 1
	createUserInstruction
	createDatasetInstruction
	buyDatasetInstruction
	fileDisputeInstruction
	resolveDisputeInstruction
	adjustReputationInstruction
	banUserInstruction
	unbanUserInstruction
	createReviewInstruction
	depositInstruction
)

// TxIdLength - byte size of a transaction id
const TxIdLength = 32

// TxId - the receipt returned by a successful instruction
//
// sha3-256 over the instruction code, the signer and every argument,
// each length prefixed
type TxId [TxIdLength]byte

// transactionId - compute the receipt for an applied instruction
func transactionId(instruction uint64, signer *identity.Identity, arguments ...[]byte) TxId {
	h := sha3.New256()
	h.Write(util.ToVarint64(instruction))
	signerBytes := signer.Bytes()
	h.Write(util.ToVarint64(uint64(len(signerBytes))))
	h.Write(signerBytes)
	for _, argument := range arguments {
		h.Write(util.ToVarint64(uint64(len(argument))))
		h.Write(argument)
	}
	var txId TxId
	copy(txId[:], h.Sum(nil))
	return txId
}

// argument encoding helpers

func uint64Argument(value uint64) []byte {
	buffer := make([]byte, 8)
	binary.BigEndian.PutUint64(buffer, value)
	return buffer
}

func int64Argument(value int64) []byte {
	return uint64Argument(uint64(value))
}

func boolArgument(value bool) []byte {
	if value {
		return []byte{1}
	}
	return []byte{0}
}

// String - hex string form
func (txId TxId) String() string {
	return hex.EncodeToString(txId[:])
}

// MarshalText - encode for JSON and text formats
func (txId TxId) MarshalText() ([]byte, error) {
	buffer := make([]byte, hex.EncodedLen(TxIdLength))
	hex.Encode(buffer, txId[:])
	return buffer, nil
}

// UnmarshalText - decode from JSON and text formats
func (txId *TxId) UnmarshalText(s []byte) error {
	if hex.EncodedLen(TxIdLength) != len(s) {
		return hex.ErrLength
	}
	_, err := hex.Decode(txId[:], s)
	return err
}
