// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/walletd/storage"
)

func TestStorageKeyLayout(t *testing.T) {
	k := storage.NewStorageKey(3, []byte{1, 2, 3})

	assert.Equal(t, 34, len(k))
	assert.Equal(t, byte(3), k[0], "page number")
	assert.Equal(t, byte(3), k[1], "id length")
	assert.Equal(t, []byte{1, 2, 3}, k[2:5])
	assert.Equal(t, make([]byte, 29), k[5:], "padding")
	assert.Equal(t, uint8(3), k.PageNumber())
	assert.Equal(t, []byte{1, 2, 3}, k.ID())

	assert.Panics(t, func() {
		storage.NewStorageKey(0, make([]byte, 33))
	}, "oversize key")
}

func TestPageLayout(t *testing.T) {
	p := storage.NewPage([]byte("abc"))

	assert.Equal(t, 1024, len(p))
	assert.Equal(t, []byte{3, 0}, p[:2], "little endian length")
	assert.Equal(t, []byte("abc"), p.Payload())
	assert.False(t, p.IsFull())
	assert.True(t, storage.NewPage(make([]byte, storage.MaxPayload)).IsFull())
}

func TestPageBoundaries(t *testing.T) {
	tests := []struct {
		size  int
		pages int
	}{
		{0, 1},
		{1, 1},
		{1021, 1},
		{1022, 1},
		{1023, 2},
		{2044, 2},
		{2045, 3},
		{256 * 1022, 256},
	}

	for i, item := range tests {
		record := bytes.Repeat([]byte{0x5a}, item.size)
		pages := storage.PagesFromRecord(record)
		assert.Equal(t, item.pages, len(pages), "%d: page count for: %d bytes", i, item.size)

		for n, p := range pages[:len(pages)-1] {
			assert.True(t, p.IsFull(), "%d: page: %d not full", i, n)
		}
		last := pages[len(pages)-1]
		expected := item.size - (len(pages)-1)*storage.MaxPayload
		assert.Equal(t, expected, len(last.Payload()), "%d: last page payload", i)

		joined, ok := storage.RecordFromPages(sliceLookup(pages))
		assert.True(t, ok, "%d: record missing", i)
		assert.Equal(t, record, joined, "%d: round trip", i)
	}
}

func TestTooManyPages(t *testing.T) {
	record := make([]byte, 256*storage.MaxPayload+1)
	assert.PanicsWithValue(t, "page count: 257 exceeds: 256", func() {
		storage.PagesFromRecord(record)
	})
}

func TestRecordFromPages(t *testing.T) {
	_, ok := storage.RecordFromPages(sliceLookup(nil))
	assert.False(t, ok, "record without page zero")

	// a full page followed by a missing page ends the record
	pages := []storage.Page{storage.NewPage(bytes.Repeat([]byte{1}, storage.MaxPayload))}
	record, ok := storage.RecordFromPages(sliceLookup(pages))
	assert.True(t, ok)
	assert.Equal(t, storage.MaxPayload, len(record))

	// pages after a short page are never read
	pages = []storage.Page{
		storage.NewPage([]byte{1, 2}),
		storage.NewPage([]byte{3, 4}),
	}
	record, _ = storage.RecordFromPages(sliceLookup(pages))
	assert.Equal(t, []byte{1, 2}, record)
}

func sliceLookup(pages []storage.Page) func(uint8) (storage.Page, bool) {
	return func(n uint8) (storage.Page, bool) {
		if int(n) >= len(pages) {
			return storage.Page{}, false
		}
		return pages[n], true
	}
}
