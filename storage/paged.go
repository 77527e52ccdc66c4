// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"time"

	"github.com/bitmark-inc/logger"
	cache "github.com/patrickmn/go-cache"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/bitmark-inc/walletd/account"
	"github.com/bitmark-inc/walletd/fault"
	"github.com/bitmark-inc/walletd/memory"
	"github.com/bitmark-inc/walletd/schema"
	"github.com/bitmark-inc/walletd/stablemap"
)

// DefaultCacheExpiry - lifetime of a reassembled record in the cache
const DefaultCacheExpiry = 2 * time.Minute

// page zero keys, i.e. one key per record
var firstPages = util.Range{
	Start: []byte{0},
	Limit: []byte{1},
}

var pagedOptions = stablemap.Options{
	KeyLimit:   StorageKeySize,
	ValueLimit: PageSize,
	Fixed:      true,
}

// PagedStore - records split into pages in a fixed value size map
type PagedStore struct {
	log     *logger.L
	pages   *stablemap.Map
	cache   *cache.Cache
	records uint64
}

// NewPagedStore - open or format the paged layout in a memory
func NewPagedStore(mem memory.Memory, cacheExpiry time.Duration) (*PagedStore, error) {
	log := logger.New("storage")
	m, err := stablemap.Init(mem, pagedOptions, log)
	if nil != err {
		return nil, err
	}
	if 0 == cacheExpiry {
		cacheExpiry = DefaultCacheExpiry
	}

	p := &PagedStore{
		log:   log,
		pages: m,
		cache: cache.New(cacheExpiry, 2*cacheExpiry),
	}

	it := m.Iterator(&firstPages)
	for it.Next() {
		p.records += 1
	}
	it.Release()

	log.Infof("paged store: records: %d  pages: %d", p.records, m.Len())
	return p, nil
}

// Insert - write all pages of a record, removing any pages left over
// from a longer previous version
func (p *PagedStore) Insert(key []byte, a *account.Account) error {
	checkKey(key)
	pages := PagesFromRecord(a.Encode())

	missing := 0
	for i := range pages {
		k := NewStorageKey(uint8(i), key)
		if !p.pages.Contains(k[:]) {
			missing += 1
		}
	}
	err := p.pages.Reserve(missing, PageSize)
	if nil != err {
		return err
	}

	exists := p.Contains(key)
	for i, page := range pages {
		k := NewStorageKey(uint8(i), key)
		err := p.pages.Insert(k[:], page[:])
		fault.PanicIfError("paged store: insert page", err)
	}
	p.removePages(key, len(pages))

	if !exists {
		p.records += 1
	}
	p.cache.Delete(string(key))
	return nil
}

// Contains - true if page zero of the record exists
func (p *PagedStore) Contains(key []byte) bool {
	k := NewStorageKey(0, key)
	return p.pages.Contains(k[:])
}

// Get - reassemble and decode a record
func (p *PagedStore) Get(key []byte) (*account.Account, bool) {
	checkKey(key)
	cacheKey := string(key)
	if record, ok := p.cache.Get(cacheKey); ok {
		return decodeRecord(record.([]byte)), true
	}

	record, ok := RecordFromPages(p.lookup(key))
	if !ok {
		return nil, false
	}
	p.cache.SetDefault(cacheKey, record)
	return decodeRecord(record), true
}

// Remove - delete every page of a record
func (p *PagedStore) Remove(key []byte) bool {
	checkKey(key)
	if !p.Contains(key) {
		return false
	}
	p.removePages(key, 0)
	p.records -= 1
	p.cache.Delete(string(key))
	return true
}

// Len - number of records
func (p *PagedStore) Len() uint64 {
	return p.records
}

// PageCount - number of stored pages over all records
func (p *PagedStore) PageCount() uint64 {
	return p.pages.Len()
}

// Update - read, modify and write back a record
func (p *PagedStore) Update(key []byte, f func(*account.Account) error) (bool, error) {
	a, ok := p.Get(key)
	if !ok {
		return false, nil
	}
	if err := f(a); nil != err {
		return true, err
	}
	return true, p.Insert(key, a)
}

// Iterator - ascending over page zero keys
func (p *PagedStore) Iterator(from []byte) Iterator {
	r := firstPages
	if nil != from {
		k := NewStorageKey(0, from)
		r.Start = k[:]
	}
	return &pagedIterator{
		store: p,
		it:    p.pages.Iterator(&r),
	}
}

// Last - highest key and its record
func (p *PagedStore) Last() ([]byte, *account.Account, bool) {
	k, _, ok := p.pages.Last(&firstPages)
	if !ok {
		return nil, nil, false
	}
	key := storageKeyFromBytes(k).ID()
	a, ok := p.Get(key)
	return key, a, ok
}

// Clear - drop all records
func (p *PagedStore) Clear() error {
	p.records = 0
	p.cache.Flush()
	return p.pages.Clear()
}

// SchemaLabel - the paged layout
func (p *PagedStore) SchemaLabel() schema.Label {
	return schema.AccountsInStableMemory
}

// remove pages from page number start onwards
//
// stops at the first missing page or after removing a page that was
// not full, since pages of a record are always contiguous
func (p *PagedStore) removePages(key []byte, start int) {
	for n := start; n < MaxPages; n += 1 {
		k := NewStorageKey(uint8(n), key)
		value, ok := p.pages.Get(k[:])
		if !ok {
			return
		}
		p.pages.Remove(k[:])
		if !pageFromBytes(value).IsFull() {
			return
		}
	}
}

func (p *PagedStore) lookup(key []byte) func(uint8) (Page, bool) {
	return func(n uint8) (Page, bool) {
		k := NewStorageKey(n, key)
		value, ok := p.pages.Get(k[:])
		if !ok {
			return Page{}, false
		}
		return pageFromBytes(value), true
	}
}

// a stored record that cannot be decoded means the store is corrupt
func decodeRecord(record []byte) *account.Account {
	a, err := account.Decode(record)
	fault.PanicIfError("storage: decode record", err)
	return a
}

type pagedIterator struct {
	store *PagedStore
	it    *stablemap.Iterator
	key   []byte
}

func (i *pagedIterator) Next() bool {
	if !i.it.Next() {
		i.key = nil
		return false
	}
	i.key = storageKeyFromBytes(i.it.Key()).ID()
	return true
}

func (i *pagedIterator) Key() []byte {
	return append([]byte{}, i.key...)
}

func (i *pagedIterator) Value() *account.Account {
	record, ok := RecordFromPages(i.store.lookup(i.key))
	if !ok {
		fault.Panicf("paged store: page zero vanished during iteration")
	}
	return decodeRecord(record)
}

func (i *pagedIterator) Release() {
	i.it.Release()
}
