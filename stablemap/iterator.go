// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package stablemap

import (
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// Iterator - ascending walk over a key range
type Iterator struct {
	m  *Map
	it iterator.Iterator
}

// Iterator - iterate over the keys in the range, nil for all keys;
// the iterator must be released after use
func (m *Map) Iterator(searchRange *util.Range) *Iterator {
	return &Iterator{
		m:  m,
		it: m.index.NewIterator(searchRange),
	}
}

// Next - advance, false when exhausted
func (i *Iterator) Next() bool {
	return i.it.Next()
}

// Key - copy of the current key
func (i *Iterator) Key() []byte {
	return append([]byte{}, i.it.Key()...)
}

// Value - current value, read from memory and verified
func (i *Iterator) Value() []byte {
	_, value := i.m.readEntry(decodeOffset(i.it.Value()))
	return value
}

// Release - free the underlying index iterator
func (i *Iterator) Release() {
	i.it.Release()
}

// First - lowest key in the range and its value
func (m *Map) First(searchRange *util.Range) ([]byte, []byte, bool) {
	it := m.index.NewIterator(searchRange)
	defer it.Release()
	if !it.First() {
		return nil, nil, false
	}
	key, value := m.readEntry(decodeOffset(it.Value()))
	return key, value, true
}

// Last - highest key in the range and its value
func (m *Map) Last(searchRange *util.Range) ([]byte, []byte, bool) {
	it := m.index.NewIterator(searchRange)
	defer it.Release()
	if !it.Last() {
		return nil, nil, false
	}
	key, value := m.readEntry(decodeOffset(it.Value()))
	return key, value, true
}
