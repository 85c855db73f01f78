// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package identity_test

import (
	"bytes"
	"crypto/rand"
	"encoding/json"
	"testing"

	"golang.org/x/crypto/ed25519"

	"github.com/bitmark-inc/datamarketd/fault"
	"github.com/bitmark-inc/datamarketd/identity"
)

// generate a fresh identity for testing
func makeIdentity(t *testing.T, testnet bool) *identity.Identity {
	publicKey, _, err := ed25519.GenerateKey(rand.Reader)
	if nil != err {
		t.Fatalf("key generation failed: %s", err)
	}
	id, err := identity.New(publicKey, testnet)
	if nil != err {
		t.Fatalf("identity creation failed: %s", err)
	}
	return id
}

func TestBase58RoundTrip(t *testing.T) {
	for _, testnet := range []bool{false, true} {
		id := makeIdentity(t, testnet)

		decoded, err := identity.FromBase58(id.String())
		if nil != err {
			t.Fatalf("decode failed: %s", err)
		}
		if !id.Equal(decoded) {
			t.Errorf("round trip mismatch: %s != %s", id, decoded)
		}
		if decoded.Test != testnet {
			t.Errorf("testnet flag lost: %s", id)
		}
	}
}

func TestBytesRoundTrip(t *testing.T) {
	id := makeIdentity(t, true)

	decoded, err := identity.FromBytes(id.Bytes())
	if nil != err {
		t.Fatalf("decode failed: %s", err)
	}
	if !id.Equal(decoded) {
		t.Errorf("round trip mismatch: %s != %s", id, decoded)
	}
}

func TestChecksumCorruption(t *testing.T) {
	id := makeIdentity(t, false)
	s := id.String()

	// flip the last character of the base58 text
	last := s[len(s)-1]
	replacement := byte('2')
	if last == replacement {
		replacement = '3'
	}
	corrupted := s[:len(s)-1] + string(replacement)

	_, err := identity.FromBase58(corrupted)
	if nil == err {
		t.Fatal("corrupted identity was accepted")
	}
	if fault.ChecksumMismatch != err && fault.CannotDecodeIdentity != err && fault.InvalidKeyLength != err {
		t.Errorf("unexpected error: %s", err)
	}
}

func TestInvalidKeyLength(t *testing.T) {
	_, err := identity.New([]byte{0x12, 0xfa}, false)
	if fault.InvalidKeyLength != err {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestJSONMarshalling(t *testing.T) {
	id := makeIdentity(t, true)

	buffer, err := json.Marshal(id)
	if nil != err {
		t.Fatalf("marshal failed: %s", err)
	}

	expected := `"` + id.String() + `"`
	if expected != string(buffer) {
		t.Errorf("marshal: expected: %s  actual: %s", expected, buffer)
	}

	var decoded identity.Identity
	err = json.Unmarshal(buffer, &decoded)
	if nil != err {
		t.Fatalf("unmarshal failed: %s", err)
	}
	if !id.Equal(&decoded) {
		t.Errorf("unmarshal mismatch: %s != %s", id, &decoded)
	}
}

func TestEqual(t *testing.T) {
	a := makeIdentity(t, false)
	b := makeIdentity(t, false)

	if a.Equal(b) {
		t.Error("distinct identities compared equal")
	}
	if !a.Equal(a) {
		t.Error("identity not equal to itself")
	}
	if a.Equal(nil) {
		t.Error("identity equal to nil")
	}

	// same key on a different network is a different identity
	c, _ := identity.New(a.PublicKey, true)
	if a.Equal(c) {
		t.Error("test and live identities compared equal")
	}
	if !bytes.Equal(a.PublicKey, c.PublicKey) {
		t.Error("public key was copied incorrectly")
	}
}
