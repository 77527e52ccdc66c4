// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package storage - the account store backends
//
// Every backend maps an account identifier (at most MaxKeyLength
// bytes) to an account record and iterates keys in shortlex order:
// shorter keys first, equal length keys bytewise.
//
// Backends:
//
//	HeapStore       schema map: an ordered tree held on the heap, saved
//	                as one blob at the upgrade boundary
//	PagedStore      schema paged: records split into 1024 byte pages
//	                stored in a fixed value size persistent map
//	UnboundedStore  schema unbounded: one record per entry in a
//	                persistent map with unbounded values
//
// Page layout:
//
//	key   = page number ++ id length ++ id (zero padded to 32 bytes)
//	value = payload length (u16 LE) ++ payload ++ zero padding
//
// A page whose payload is shorter than MaxPayload is the last page of
// its record.
package storage
