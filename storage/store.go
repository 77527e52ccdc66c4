// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"bytes"

	"github.com/bitmark-inc/walletd/account"
	"github.com/bitmark-inc/walletd/fault"
	"github.com/bitmark-inc/walletd/schema"
)

// MaxKeyLength - longest account identifier accepted by any backend
const MaxKeyLength = 32

// Store - the operations common to all backends
type Store interface {
	Insert([]byte, *account.Account) error
	Contains([]byte) bool
	Get([]byte) (*account.Account, bool)
	Remove([]byte) bool
	Len() uint64

	// apply f to a copy of the record and write it back only if f
	// succeeds; false if the key is absent
	Update([]byte, func(*account.Account) error) (bool, error)

	// ascending iteration starting at the first key >= from
	Iterator(from []byte) Iterator
	Last() ([]byte, *account.Account, bool)

	Clear() error
	SchemaLabel() schema.Label
}

// Iterator - one pass walk over a store
type Iterator interface {
	Next() bool
	Key() []byte
	Value() *account.Account
	Release()
}

// Compare - shortlex ordering of keys
func Compare(a []byte, b []byte) int {
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return bytes.Compare(a, b)
	}
}

// Values - all records of a store in key order, collected at once;
// Iterator is the lazy one pass form
func Values(s Store) []*account.Account {
	values := make([]*account.Account, 0, s.Len())
	it := s.Iterator(nil)
	defer it.Release()
	for it.Next() {
		values = append(values, it.Value())
	}
	return values
}

// First - lowest key of a store and its record
func First(s Store) ([]byte, *account.Account, bool) {
	it := s.Iterator(nil)
	defer it.Release()
	if !it.Next() {
		return nil, nil, false
	}
	return it.Key(), it.Value(), true
}

// a key longer than the fixed key area can never be stored
func checkKey(key []byte) {
	if len(key) > MaxKeyLength {
		fault.Panicf("storage: key length: %d exceeds: %d", len(key), MaxKeyLength)
	}
}
