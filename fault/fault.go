// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

import (
	"fmt"
)

// GenericError - error base
type GenericError string

// to allow for different classes of errors
type ExistsError GenericError
type InvalidError GenericError
type LengthError GenericError
type NotFoundError GenericError
type ProcessError GenericError
type RecordError GenericError

// common errors - keep in alphabetic order
var (
	ErrAlreadyInitialised          = ExistsError("already initialised")
	ErrCanisterAlreadyAttached     = ExistsError("canister already attached")
	ErrCanisterNotFound            = NotFoundError("canister not found")
	ErrInsufficientBytes           = LengthError("insufficient bytes")
	ErrInvalidChecksum             = RecordError("invalid checksum")
	ErrInvalidCount                = InvalidError("invalid count")
	ErrInvalidHeaderChecksum       = RecordError("invalid header checksum")
	ErrInvalidHeapVersion          = RecordError("invalid heap state version")
	ErrInvalidLoggerChannel        = InvalidError("invalid logger channel")
	ErrInvalidPartition            = InvalidError("invalid partition")
	ErrInvalidRecordVersion        = RecordError("invalid record version")
	ErrInvalidStructPointer        = InvalidError("invalid struct pointer")
	ErrKeyTooLong                  = LengthError("key too long")
	ErrLegacyBlobTruncated         = LengthError("legacy blob truncated")
	ErrMapOptionsMismatch          = InvalidError("stable map options mismatch")
	ErrMigrationFirstMismatch      = ProcessError("migration first entry mismatch")
	ErrMigrationLastMismatch       = ProcessError("migration last entry mismatch")
	ErrMigrationLengthMismatch     = ProcessError("migration length mismatch")
	ErrMissingParameters           = InvalidError("missing parameters")
	ErrNoMemoryManager             = NotFoundError("no memory manager")
	ErrNotInitialised              = NotFoundError("not initialised")
	ErrOutOfMemory                 = ProcessError("out of memory")
	ErrRateLimiting                = ProcessError("rate limiting")
	ErrSchemaMismatch              = RecordError("schema label does not match heap state")
	ErrSubAccountNotFound          = NotFoundError("sub-account not found")
	ErrTooManyCanisters            = LengthError("too many canisters")
	ErrTooManyPages                = LengthError("too many pages")
	ErrUnknownSchemaName           = InvalidError("unknown schema name")
	ErrUnsupportedManagerVersion   = InvalidError("unsupported memory manager version")
	ErrUnsupportedStableMapVersion = InvalidError("unsupported stable map version")
	ErrValueSizeMismatch           = LengthError("value size mismatch")
	ErrValueTooLarge               = LengthError("value too large")
)

// InvalidLabelError - a checksummed label that names no known layout
type InvalidLabelError struct {
	Value uint32
}

func (e InvalidLabelError) Error() string {
	return fmt.Sprintf("invalid schema label: %d", e.Value)
}

// the error interface base method
func (e GenericError) Error() string { return string(e) }

// the error interface methods
func (e ExistsError) Error() string   { return string(e) }
func (e InvalidError) Error() string  { return string(e) }
func (e LengthError) Error() string   { return string(e) }
func (e NotFoundError) Error() string { return string(e) }
func (e ProcessError) Error() string  { return string(e) }
func (e RecordError) Error() string   { return string(e) }

// determine the class of an error
func IsErrExists(e error) bool   { _, ok := e.(ExistsError); return ok }
func IsErrInvalid(e error) bool  { _, ok := e.(InvalidError); return ok }
func IsErrLength(e error) bool   { _, ok := e.(LengthError); return ok }
func IsErrNotFound(e error) bool { _, ok := e.(NotFoundError); return ok }
func IsErrProcess(e error) bool  { _, ok := e.(ProcessError); return ok }
func IsErrRecord(e error) bool   { _, ok := e.(RecordError); return ok }

// IsErrInvalidLabel - true for an unknown but correctly checksummed label
func IsErrInvalidLabel(e error) bool { _, ok := e.(InvalidLabelError); return ok }
