// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"github.com/viant/bintly"

	"github.com/bitmark-inc/walletd/account"
	"github.com/bitmark-inc/walletd/avl"
	"github.com/bitmark-inc/walletd/fault"
	"github.com/bitmark-inc/walletd/schema"
)

// HeapStore - accounts held in an ordered tree
type HeapStore struct {
	tree *avl.Tree[[]byte, *account.Account]
}

// NewHeapStore - an empty heap store
func NewHeapStore() *HeapStore {
	return &HeapStore{
		tree: avl.New[[]byte, *account.Account](Compare),
	}
}

// Insert - store a copy of the record
func (h *HeapStore) Insert(key []byte, a *account.Account) error {
	checkKey(key)
	h.tree.Insert(append([]byte{}, key...), a.Clone())
	return nil
}

// Contains - true if key is present
func (h *HeapStore) Contains(key []byte) bool {
	checkKey(key)
	node, _ := h.tree.Search(key)
	return nil != node
}

// Get - copy of a record
func (h *HeapStore) Get(key []byte) (*account.Account, bool) {
	checkKey(key)
	node, _ := h.tree.Search(key)
	if nil == node {
		return nil, false
	}
	return node.Value().Clone(), true
}

// Remove - delete a record
func (h *HeapStore) Remove(key []byte) bool {
	checkKey(key)
	_, ok := h.tree.Delete(key)
	return ok
}

// Len - number of records
func (h *HeapStore) Len() uint64 {
	return uint64(h.tree.Count())
}

// Update - modify a record in place
func (h *HeapStore) Update(key []byte, f func(*account.Account) error) (bool, error) {
	checkKey(key)
	node, _ := h.tree.Search(key)
	if nil == node {
		return false, nil
	}
	a := node.Value().Clone()
	if err := f(a); nil != err {
		return true, err
	}
	node.SetValue(a)
	return true, nil
}

// Iterator - ascending from the first key >= from
func (h *HeapStore) Iterator(from []byte) Iterator {
	var start *avl.Node[[]byte, *account.Account]
	if nil == from {
		start = h.tree.First()
	} else {
		start = h.tree.Ceiling(from)
	}
	return &heapIterator{next: start}
}

// Last - highest key and its record
func (h *HeapStore) Last() ([]byte, *account.Account, bool) {
	node := h.tree.Last()
	if nil == node {
		return nil, nil, false
	}
	return append([]byte{}, node.Key()...), node.Value().Clone(), true
}

// Clear - drop all records
func (h *HeapStore) Clear() error {
	h.tree.Clear()
	return nil
}

// SchemaLabel - the map layout
func (h *HeapStore) SchemaLabel() schema.Label {
	return schema.Map
}

// EncodeBinary - write all records to a bintly stream
func (h *HeapStore) EncodeBinary(stream *bintly.Writer) error {
	stream.Uint64(uint64(h.tree.Count()))
	for node := h.tree.First(); nil != node; node = node.Next() {
		stream.Uint8s(node.Key())
		stream.Uint8s(node.Value().Encode())
	}
	return nil
}

// DecodeBinary - replace the contents from a bintly stream
func (h *HeapStore) DecodeBinary(stream *bintly.Reader) error {
	h.tree = avl.New[[]byte, *account.Account](Compare)

	count := uint64(0)
	stream.Uint64(&count)
	for i := uint64(0); i < count; i += 1 {
		var key []byte
		var record []byte
		stream.Uint8s(&key)
		stream.Uint8s(&record)
		if len(key) > MaxKeyLength {
			return fault.ErrKeyTooLong
		}
		a, err := account.Decode(record)
		if nil != err {
			return err
		}
		h.tree.Insert(key, a)
	}
	return nil
}

type heapIterator struct {
	started bool
	next    *avl.Node[[]byte, *account.Account]
	current *avl.Node[[]byte, *account.Account]
}

func (i *heapIterator) Next() bool {
	if i.started && nil != i.current {
		i.next = i.current.Next()
	}
	i.started = true
	i.current = i.next
	return nil != i.current
}

func (i *heapIterator) Key() []byte {
	return append([]byte{}, i.current.Key()...)
}

func (i *heapIterator) Value() *account.Account {
	return i.current.Value().Clone()
}

func (i *heapIterator) Release() {
	i.next = nil
	i.current = nil
}
