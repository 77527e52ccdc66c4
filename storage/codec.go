// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/binary"

	"github.com/bitmark-inc/walletd/fault"
)

// page sizes
const (
	PageSize       = 1024
	PageHeaderSize = 2
	MaxPayload     = PageSize - PageHeaderSize
	MaxPages       = 256
	StorageKeySize = 2 + MaxKeyLength
)

// StorageKey - page number ++ id length ++ zero padded id
type StorageKey [StorageKeySize]byte

// Page - a fixed size chunk of a record
type Page [PageSize]byte

// NewStorageKey - key of one page of a record
func NewStorageKey(page uint8, id []byte) StorageKey {
	checkKey(id)
	k := StorageKey{}
	k[0] = page
	k[1] = uint8(len(id))
	copy(k[2:], id)
	return k
}

// PageNumber - position of the page within its record
func (k StorageKey) PageNumber() uint8 {
	return k[0]
}

// ID - the account identifier part of the key
func (k StorageKey) ID() []byte {
	n := int(k[1])
	if n > MaxKeyLength {
		fault.Panicf("storage: corrupt key length: %d", n)
	}
	return append([]byte{}, k[2:2+n]...)
}

// storage key from raw map bytes
func storageKeyFromBytes(b []byte) StorageKey {
	k := StorageKey{}
	if len(b) != StorageKeySize {
		fault.Panicf("storage: key size: %d  expected: %d", len(b), StorageKeySize)
	}
	copy(k[:], b)
	return k
}

// NewPage - wrap a payload of at most MaxPayload bytes
func NewPage(payload []byte) Page {
	if len(payload) > MaxPayload {
		fault.Panicf("storage: page payload: %d exceeds: %d", len(payload), MaxPayload)
	}
	p := Page{}
	binary.LittleEndian.PutUint16(p[:], uint16(len(payload)))
	copy(p[PageHeaderSize:], payload)
	return p
}

// Payload - the record bytes carried by a page
func (p Page) Payload() []byte {
	n := int(binary.LittleEndian.Uint16(p[:]))
	if n > MaxPayload {
		fault.Panicf("storage: corrupt page length: %d", n)
	}
	return p[PageHeaderSize : PageHeaderSize+n]
}

// IsFull - a page that is not full is the last page of its record
func (p Page) IsFull() bool {
	return MaxPayload == binary.LittleEndian.Uint16(p[:])
}

// page from raw map bytes
func pageFromBytes(b []byte) Page {
	p := Page{}
	if len(b) != PageSize {
		fault.Panicf("storage: page size: %d  expected: %d", len(b), PageSize)
	}
	copy(p[:], b)
	return p
}

// PageCount - pages needed for a record of n bytes
func PageCount(n int) int {
	if 0 == n {
		return 1
	}
	return (n + MaxPayload - 1) / MaxPayload
}

// PagesFromRecord - split a record into pages
func PagesFromRecord(record []byte) []Page {
	count := PageCount(len(record))
	if count > MaxPages {
		fault.Panicf("page count: %d exceeds: %d", count, MaxPages)
	}

	pages := make([]Page, 0, count)
	for len(record) > MaxPayload {
		pages = append(pages, NewPage(record[:MaxPayload]))
		record = record[MaxPayload:]
	}
	return append(pages, NewPage(record))
}

// RecordFromPages - join the pages of a record; false if page zero is
// absent
//
// reading stops at the first page that is not full or missing
func RecordFromPages(lookup func(page uint8) (Page, bool)) ([]byte, bool) {
	record := []byte{}
	for n := 0; n < MaxPages; n += 1 {
		p, ok := lookup(uint8(n))
		if !ok {
			if 0 == n {
				return nil, false
			}
			break
		}
		record = append(record, p.Payload()...)
		if !p.IsFull() {
			break
		}
	}
	return record, true
}
