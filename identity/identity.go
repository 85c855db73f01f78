// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package identity

import (
	"bytes"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/ed25519"
	"golang.org/x/crypto/sha3"

	"github.com/bitmark-inc/datamarketd/fault"
	"github.com/bitmark-inc/datamarketd/util"
)

// enumeration of supported key algorithms
const (
	ED25519 = iota + 1
	// end of list (one greater than last item)
	algorithmLimit = iota + 1
)

// miscellaneous constants
const (
	checksumLength = 4

	// bits in key code starting from LSB
	publicKeyCode = 0x01
	testKeyCode   = 0x02

	algorithmShift = 4 // shift 4 bits to get algorithm
)

// Identity - an authenticated signer
//
// the core never verifies signatures; an identity is only compared
// for equality against recorded authorities
type Identity struct {
	Test      bool
	PublicKey []byte
}

// New - wrap an ed25519 public key as an identity
func New(publicKey []byte, testnet bool) (*Identity, error) {
	if ed25519.PublicKeySize != len(publicKey) {
		return nil, fault.InvalidKeyLength
	}
	k := make([]byte, ed25519.PublicKeySize)
	copy(k, publicKey)
	return &Identity{
		Test:      testnet,
		PublicKey: k,
	}, nil
}

// FromBase58 - convert a Base58 encoded string to an identity
func FromBase58(identityBase58Encoded string) (*Identity, error) {
	decoded, err := base58.Decode(identityBase58Encoded)
	if nil != err || 0 == len(decoded) {
		return nil, fault.CannotDecodeIdentity
	}

	// parse the key variant
	keyVariant, keyVariantLength := util.FromVarint64(decoded)
	if 0 == keyVariantLength || keyVariant&publicKeyCode != publicKeyCode {
		return nil, fault.NotPublicKey
	}

	keyAlgorithm := keyVariant >> algorithmShift
	if ED25519 != keyAlgorithm {
		return nil, fault.InvalidKeyType
	}

	isTest := 0 != keyVariant&testKeyCode

	keyLength := len(decoded) - keyVariantLength - checksumLength
	if ed25519.PublicKeySize != keyLength {
		return nil, fault.InvalidKeyLength
	}

	checksumStart := len(decoded) - checksumLength
	checksum := sha3.Sum256(decoded[:checksumStart])
	if !bytes.Equal(checksum[:checksumLength], decoded[checksumStart:]) {
		return nil, fault.ChecksumMismatch
	}

	return New(decoded[keyVariantLength:checksumStart], isTest)
}

// FromBytes - convert a binary identity, as stored in packed
// records, back to an identity
func FromBytes(buffer []byte) (*Identity, error) {
	keyVariant, keyVariantLength := util.FromVarint64(buffer)
	if 0 == keyVariantLength || keyVariant&publicKeyCode != publicKeyCode {
		return nil, fault.NotPublicKey
	}
	if ED25519 != keyVariant>>algorithmShift {
		return nil, fault.InvalidKeyType
	}
	if ed25519.PublicKeySize != len(buffer)-keyVariantLength {
		return nil, fault.InvalidKeyLength
	}
	return New(buffer[keyVariantLength:], 0 != keyVariant&testKeyCode)
}

// keyVariant - combined algorithm and flag bits
func (id *Identity) keyVariant() uint64 {
	keyVariant := uint64(ED25519<<algorithmShift) | publicKeyCode
	if id.Test {
		keyVariant |= testKeyCode
	}
	return keyVariant
}

// Bytes - the binary form: key variant varint followed by the public key
func (id *Identity) Bytes() []byte {
	return append(util.ToVarint64(id.keyVariant()), id.PublicKey...)
}

// String - base58 encoded binary form with a checksum suffix
func (id *Identity) String() string {
	buffer := id.Bytes()
	checksum := sha3.Sum256(buffer)
	buffer = append(buffer, checksum[:checksumLength]...)
	return base58.Encode(buffer)
}

// MarshalText - encode for JSON and text formats
func (id Identity) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText - decode from JSON and text formats
func (id *Identity) UnmarshalText(s []byte) error {
	decoded, err := FromBase58(string(s))
	if nil != err {
		return err
	}
	*id = *decoded
	return nil
}

// Equal - identity equality, the only authorisation primitive in the core
func (id *Identity) Equal(other *Identity) bool {
	if nil == id || nil == other {
		return false
	}
	return id.Test == other.Test && bytes.Equal(id.PublicKey, other.PublicKey)
}
