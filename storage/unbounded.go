// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"github.com/bitmark-inc/logger"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/bitmark-inc/walletd/account"
	"github.com/bitmark-inc/walletd/fault"
	"github.com/bitmark-inc/walletd/memory"
	"github.com/bitmark-inc/walletd/schema"
	"github.com/bitmark-inc/walletd/stablemap"
)

var unboundedOptions = stablemap.Options{
	KeyLimit: 1 + MaxKeyLength,
}

// UnboundedStore - one map entry per record
type UnboundedStore struct {
	log     *logger.L
	records *stablemap.Map
}

// NewUnboundedStore - open or format the unbounded layout in a memory
func NewUnboundedStore(mem memory.Memory) (*UnboundedStore, error) {
	log := logger.New("storage")
	m, err := stablemap.Init(mem, unboundedOptions, log)
	if nil != err {
		return nil, err
	}
	log.Infof("unbounded store: records: %d", m.Len())
	return &UnboundedStore{
		log:     log,
		records: m,
	}, nil
}

// length prefix keeps bytewise map order equal to shortlex order
func unboundedKey(key []byte) []byte {
	checkKey(key)
	return append([]byte{uint8(len(key))}, key...)
}

// Insert - store a record
func (u *UnboundedStore) Insert(key []byte, a *account.Account) error {
	return u.records.Insert(unboundedKey(key), a.Encode())
}

// Contains - true if key is present
func (u *UnboundedStore) Contains(key []byte) bool {
	return u.records.Contains(unboundedKey(key))
}

// Get - decode a record
func (u *UnboundedStore) Get(key []byte) (*account.Account, bool) {
	record, ok := u.records.Get(unboundedKey(key))
	if !ok {
		return nil, false
	}
	return decodeRecord(record), true
}

// Remove - delete a record
func (u *UnboundedStore) Remove(key []byte) bool {
	return u.records.Remove(unboundedKey(key))
}

// Len - number of records
func (u *UnboundedStore) Len() uint64 {
	return u.records.Len()
}

// Update - read, modify and write back a record
func (u *UnboundedStore) Update(key []byte, f func(*account.Account) error) (bool, error) {
	a, ok := u.Get(key)
	if !ok {
		return false, nil
	}
	if err := f(a); nil != err {
		return true, err
	}
	return true, u.Insert(key, a)
}

// Iterator - ascending from the first key >= from
func (u *UnboundedStore) Iterator(from []byte) Iterator {
	var r *util.Range
	if nil != from {
		r = &util.Range{Start: unboundedKey(from)}
	}
	return &unboundedIterator{
		it: u.records.Iterator(r),
	}
}

// Last - highest key and its record
func (u *UnboundedStore) Last() ([]byte, *account.Account, bool) {
	k, record, ok := u.records.Last(nil)
	if !ok {
		return nil, nil, false
	}
	return splitUnboundedKey(k), decodeRecord(record), true
}

// Clear - drop all records
func (u *UnboundedStore) Clear() error {
	return u.records.Clear()
}

// SchemaLabel - the unbounded layout
func (u *UnboundedStore) SchemaLabel() schema.Label {
	return schema.AccountsUnbounded
}

func splitUnboundedKey(k []byte) []byte {
	if 0 == len(k) || int(k[0]) != len(k)-1 {
		fault.Panicf("unbounded store: corrupt key: %x", k)
	}
	return append([]byte{}, k[1:]...)
}

type unboundedIterator struct {
	it *stablemap.Iterator
}

func (i *unboundedIterator) Next() bool {
	return i.it.Next()
}

func (i *unboundedIterator) Key() []byte {
	return splitUnboundedKey(i.it.Key())
}

func (i *unboundedIterator) Value() *account.Account {
	return decodeRecord(i.it.Value())
}

func (i *unboundedIterator) Release() {
	i.it.Release()
}
