// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package state

import (
	"sync"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/walletd/fault"
	"github.com/bitmark-inc/walletd/memory"
	"github.com/bitmark-inc/walletd/migration"
	"github.com/bitmark-inc/walletd/partition"
	"github.com/bitmark-inc/walletd/schema"
	"github.com/bitmark-inc/walletd/storage"
)

// Options - layout parameters
type Options struct {
	BucketPages uint64        // partition bucket size, zero for the default
	CacheExpiry time.Duration // paged record cache, zero for the default
}

// State - the wallet backend state
type State struct {
	sync.Mutex

	log        *logger.L
	raw        memory.Memory
	options    Options
	partitions *partition.Manager // nil while in the legacy layout
	accounts   *migration.Proxy

	legacyBytes uint64 // extent of the legacy blob in raw memory

	lastLedgerBlock uint64
}

// New - format a memory with an empty store of the given layout
func New(raw memory.Memory, label schema.Label, options Options) (*State, error) {
	if !label.IsValid() {
		return nil, fault.InvalidLabelError{Value: uint32(label)}
	}

	m, err := partition.New(raw, options.BucketPages)
	if nil != err {
		return nil, err
	}
	err = m.SetSchemaLabel(label)
	if nil != err {
		return nil, err
	}

	s := &State{
		log:        logger.New("state"),
		raw:        raw,
		options:    options,
		partitions: m,
	}

	backend, err := s.openStore(label)
	if nil != err {
		return nil, err
	}
	err = backend.Clear()
	if nil != err {
		return nil, err
	}
	s.accounts = migration.New(backend, s.openStore, s.finalize)

	err = s.save()
	if nil != err {
		return nil, err
	}

	s.log.Infof("new state: schema: %s", label)
	return s, nil
}

// Restore - reopen the state held by a memory after a restart
func Restore(raw memory.Memory, options Options) (*State, error) {
	s := &State{
		log:     logger.New("state"),
		raw:     raw,
		options: options,
	}

	labelled := true
	m, label, err := partition.TryFromMemory(raw)
	if nil != err {
		unlabelled, openErr := partition.Open(raw)
		if nil != openErr || unlabelled.Get(partition.Metadata).Size() > 0 {
			s.log.Infof("no schema label: %s  reading legacy layout", err)
			return s, s.restoreLegacy()
		}
		s.log.Warn("partitions without a schema label")
		m = unlabelled
		label = schema.Map
		labelled = false
	}
	s.partitions = m

	h := &heapState{
		schema: label,
	}
	heap := m.Get(partition.Heap)
	if heap.Size() > 0 {
		blob, err := readBlob(heap)
		if nil != err {
			return nil, err
		}
		h, err = decodeHeapState(blob)
		if nil != err {
			return nil, err
		}
	}

	// the heap state is always written before the label
	if h.schema != label || !labelled {
		s.log.Warnf("schema label: %s  heap state: %s  rewriting label", label, h.schema)
		err = m.SetSchemaLabel(h.schema)
		if nil != err {
			return nil, err
		}
		label = h.schema
	}

	var backend storage.Store
	if schema.Map == label {
		if nil == h.accounts {
			h.accounts = storage.NewHeapStore()
		}
		backend = h.accounts
	} else {
		backend, err = s.openStore(label)
		if nil != err {
			return nil, err
		}
	}
	s.accounts = migration.New(backend, s.openStore, s.finalize)
	s.accounts.SetCounters(h.completed, h.aborted)
	s.lastLedgerBlock = h.lastLedgerBlock

	if h.migrating {
		var target storage.Store
		if schema.Map == h.target {
			if nil == h.heapTarget {
				h.heapTarget = storage.NewHeapStore()
			}
			target = h.heapTarget
		} else {
			target, err = s.openStore(h.target)
			if nil != err {
				return nil, err
			}
		}
		err = s.accounts.Resume(target, h.cursor, h.exhausted)
		if nil != err {
			return nil, err
		}
	}

	s.log.Infof("restored: schema: %s  accounts: %d  migrating: %t", label, s.accounts.Len(), h.migrating)
	return s, nil
}

// the accounts of the legacy layout are all on the heap
func (s *State) restoreLegacy() error {
	h := &heapState{
		schema:   schema.Map,
		accounts: storage.NewHeapStore(),
	}
	if s.raw.Size() > 0 {
		blob, err := readBlob(s.raw)
		if nil != err {
			return err
		}
		h, err = decodeHeapState(blob)
		if nil != err {
			return err
		}
		if schema.Map != h.schema || h.migrating {
			return fault.ErrSchemaMismatch
		}
		if nil == h.accounts {
			h.accounts = storage.NewHeapStore()
		}
		s.legacyBytes = blobLengthPrefix + uint64(len(blob))
	}

	s.accounts = migration.New(h.accounts, s.openStore, s.finalize)
	s.accounts.SetCounters(h.completed, h.aborted)
	s.lastLedgerBlock = h.lastLedgerBlock

	s.log.Infof("restored legacy layout: accounts: %d", h.accounts.Len())
	return nil
}

// Save - write the heap state before an upgrade
func (s *State) Save() error {
	s.Lock()
	defer s.Unlock()
	return s.save()
}

func (s *State) save() error {
	err := s.ensurePartitions()
	if nil != err {
		return err
	}
	h := s.heapState()
	err = s.partitions.GrowingWrite(partition.Heap, 0, encodeHeapState(h))
	if nil != err {
		return err
	}
	s.log.Debugf("saved: schema: %s  migrating: %t", h.schema, h.migrating)
	return nil
}

func (s *State) heapState() *heapState {
	completed, aborted := s.accounts.Counters()
	h := &heapState{
		schema:          s.accounts.SchemaLabel(),
		lastLedgerBlock: s.lastLedgerBlock,
		completed:       completed,
		aborted:         aborted,
	}
	if heap, ok := s.accounts.Authoritative().(*storage.HeapStore); ok {
		h.accounts = heap
	}
	if status := s.accounts.Migration(); nil != status {
		h.migrating = true
		h.target = status.Target
		h.cursor = status.Cursor
		h.exhausted = status.Exhausted
		if heap, ok := s.accounts.Target().(*storage.HeapStore); ok {
			h.heapTarget = heap
		}
	}
	return h
}

// convert a legacy memory to partitions with the map label
//
// the legacy blob stays intact until the partition header is written,
// which happens only after the heap state and the label are in place
func (s *State) ensurePartitions() error {
	if nil != s.partitions {
		return nil
	}
	m, err := partition.Convert(s.raw, s.options.BucketPages, s.legacyBytes)
	if nil != err {
		return err
	}
	err = m.GrowingWrite(partition.Heap, 0, encodeHeapState(s.heapState()))
	if nil != err {
		return err
	}
	err = m.SetSchemaLabel(schema.Map)
	if nil != err {
		return err
	}
	err = m.Commit()
	if nil != err {
		return err
	}
	s.partitions = m
	s.log.Info("converted legacy layout to partitions")
	return nil
}

// backend for a layout, persistent ones live in their own partition
func (s *State) openStore(label schema.Label) (storage.Store, error) {
	switch label {
	case schema.Map:
		return storage.NewHeapStore(), nil
	case schema.AccountsInStableMemory, schema.AccountsUnbounded:
		err := s.ensurePartitions()
		if nil != err {
			return nil, err
		}
		if schema.AccountsInStableMemory == label {
			return storage.NewPagedStore(s.partitions.Get(partition.Accounts), s.options.CacheExpiry)
		}
		return storage.NewUnboundedStore(s.partitions.Get(partition.AccountsUnbounded))
	default:
		return nil, fault.InvalidLabelError{Value: uint32(label)}
	}
}

// a finished migration changes the heap state and the label together
func (s *State) finalize(label schema.Label) error {
	completed, aborted := s.accounts.Counters()
	h := &heapState{
		schema:          label,
		lastLedgerBlock: s.lastLedgerBlock,
		completed:       completed + 1,
		aborted:         aborted,
	}
	if heap, ok := s.accounts.Target().(*storage.HeapStore); ok {
		h.accounts = heap
	}
	err := s.partitions.GrowingWrite(partition.Heap, 0, encodeHeapState(h))
	if nil != err {
		return err
	}
	return s.partitions.SetSchemaLabel(label)
}
