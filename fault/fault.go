// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

// error base
type GenericError string

// to allow for different classes of errors
type AuthorizationError GenericError
type ConflictError GenericError
type ExistsError GenericError
type FundsError GenericError
type InvalidError GenericError
type NotFoundError GenericError
type ProcessError GenericError

// common errors - keep in alphabetic order
var (
	AlreadyInitialised     = ExistsError("already initialised")
	BalanceOverflow        = ConflictError("balance overflow")
	BatchAlreadyInUse      = ProcessError("batch already in use")
	CannotDecodeAddress    = InvalidError("cannot decode address")
	CannotDecodeIdentity   = InvalidError("cannot decode identity")
	ChecksumMismatch       = InvalidError("checksum mismatch")
	CommentTooLong         = InvalidError("comment too long")
	DatabaseIsNotSet       = ProcessError("database is not set")
	DatasetAlreadyExists   = ExistsError("dataset already exists")
	DatasetInactive        = ConflictError("dataset is inactive; cannot buy")
	DatasetNotFound        = NotFoundError("dataset not found")
	DatasetStillActive     = ConflictError("dataset is still active; cannot dispute until purchased")
	DisputeAlreadyExists   = ExistsError("dispute already exists")
	DisputeAlreadyResolved = ConflictError("dispute has already been resolved")
	DisputeNotFound        = NotFoundError("dispute not found")
	GlobalStateNotFound    = NotFoundError("global state not found")
	InsufficientFunds      = FundsError("insufficient funds")
	InvalidAddressLength   = InvalidError("address length is invalid")
	InvalidContentId       = InvalidError("content identifier is invalid")
	InvalidCount           = InvalidError("count is invalid")
	InvalidCursor          = InvalidError("cursor is invalid")
	InvalidIdentity        = InvalidError("identity is invalid")
	InvalidKeyLength       = InvalidError("key length is invalid")
	InvalidKeyType         = InvalidError("key type is invalid")
	InvalidPrice           = InvalidError("price is invalid")
	InvalidRating          = InvalidError("rating is invalid")
	InvalidReason          = InvalidError("reason is invalid")
	InvalidSeed            = InvalidError("seed is invalid")
	InvalidStructPointer   = InvalidError("invalid struct pointer")
	InvalidUsername        = InvalidError("username is invalid")
	MissingSigner          = AuthorizationError("instruction requires a signer")
	NotAdministrator       = AuthorizationError("only the admin authority can perform this operation")
	NotInitialised         = ProcessError("not initialised")
	NotPublicKey           = InvalidError("not a public key")
	NotRecordPack          = ProcessError("not a record pack")
	ReasonTooLong          = InvalidError("reason too long")
	ReviewAlreadyExists    = ExistsError("review already exists")
	ReviewNotFound         = NotFoundError("review not found")
	SelfDispute            = ConflictError("cannot dispute own dataset")
	SelfPurchase           = ConflictError("cannot buy own dataset")
	SelfReview             = ConflictError("cannot review own dataset")
	TransactionIsNil       = ProcessError("transaction is nil")
	UserAlreadyExists      = ExistsError("user already exists")
	UserIsBanned           = AuthorizationError("user is banned")
	UserNotFound           = NotFoundError("user not found")
	UsernameTooLong        = InvalidError("username too long")
	WrongRecordKind        = ConflictError("record kind does not match")
)

// the error interface base method
func (e GenericError) Error() string { return string(e) }

// the error interface methods
func (e AuthorizationError) Error() string { return string(e) }
func (e ConflictError) Error() string      { return string(e) }
func (e ExistsError) Error() string        { return string(e) }
func (e FundsError) Error() string         { return string(e) }
func (e InvalidError) Error() string       { return string(e) }
func (e NotFoundError) Error() string      { return string(e) }
func (e ProcessError) Error() string       { return string(e) }

// determine the class of an error
func IsErrUnauthorized(e error) bool      { _, ok := e.(AuthorizationError); return ok }
func IsErrConflict(e error) bool          { _, ok := e.(ConflictError); return ok }
func IsErrExists(e error) bool            { _, ok := e.(ExistsError); return ok }
func IsErrInsufficientFunds(e error) bool { _, ok := e.(FundsError); return ok }
func IsErrInvalid(e error) bool           { _, ok := e.(InvalidError); return ok }
func IsErrNotFound(e error) bool          { _, ok := e.(NotFoundError); return ok }
func IsErrProcess(e error) bool           { _, ok := e.(ProcessError); return ok }
