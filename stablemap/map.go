// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package stablemap

import (
	"github.com/bitmark-inc/logger"
	"github.com/syndtr/goleveldb/leveldb/comparer"
	"github.com/syndtr/goleveldb/leveldb/memdb"

	"github.com/bitmark-inc/walletd/fault"
	"github.com/bitmark-inc/walletd/memory"
)

// largest value accepted when no value limit is set
const maximumValueSize = 1 << 30

// initial capacity of the index buffer
const indexCapacity = 64 * 1024

// Options - the shape of a map, fixed when it is first formatted
type Options struct {
	KeyLimit   int    // maximum key length in bytes
	ValueLimit uint32 // fixed: exact value size, otherwise maximum (0 = no limit)
	Fixed      bool
}

// Map - persistent map over a memory
type Map struct {
	log    *logger.L
	mem    memory.Memory
	header header
	index  *memdb.DB
	free   map[uint32][]uint64
}

// Init - format an empty memory as a map, or reopen the map already
// held by the memory
func Init(mem memory.Memory, options Options, log *logger.L) (*Map, error) {
	if nil == log {
		return nil, fault.ErrInvalidLoggerChannel
	}
	if options.KeyLimit <= 0 || options.KeyLimit > maximumKeyLimit {
		return nil, fault.ErrKeyTooLong
	}
	if options.Fixed && 0 == options.ValueLimit {
		return nil, fault.ErrMissingParameters
	}

	m := &Map{
		log: log,
		mem: mem,
		header: header{
			keyLimit:   options.KeyLimit,
			valueLimit: options.ValueLimit,
			fixed:      options.Fixed,
			tail:       headerSize,
		},
		index: memdb.New(comparer.DefaultComparer, indexCapacity),
		free:  make(map[uint32][]uint64),
	}

	if 0 == mem.Size() {
		return m, m.format()
	}

	buffer := make([]byte, headerSize)
	mem.Read(0, buffer)
	h, formatted, err := unpackHeader(buffer)
	if nil != err {
		return nil, err
	}
	if !formatted {
		return m, m.format()
	}
	if h.keyLimit != options.KeyLimit || h.valueLimit != options.ValueLimit || h.fixed != options.Fixed {
		log.Errorf("options mismatch: stored: %+v  requested: %+v", *h, options)
		return nil, fault.ErrMapOptionsMismatch
	}
	m.header = *h

	m.replay()
	log.Debugf("reopened: entries: %d  tail: %d", m.Len(), m.header.tail)
	return m, nil
}

// write an empty header
func (m *Map) format() error {
	m.header.tail = headerSize
	return memory.GrowingWrite(m.mem, 0, m.header.pack())
}

// rebuild the index and free lists from the entry log
func (m *Map) replay() {
	offset := uint64(headerSize)
	for offset < m.header.tail {
		e, key := m.readEntryKey(offset)
		switch e.state {
		case stateLive:
			err := m.index.Put(key, encodeOffset(offset))
			fault.PanicIfError("stablemap: replay", err)
		case stateFree:
			m.free[e.capacity] = append(m.free[e.capacity], offset)
		default:
			fault.Panicf("stablemap: corrupt entry state: %d at offset: %d", e.state, offset)
		}
		offset += m.entrySize(e.capacity)
	}
	if offset != m.header.tail {
		fault.Panicf("stablemap: entry log overruns tail: %d  tail: %d", offset, m.header.tail)
	}
}

// Len - number of live entries
func (m *Map) Len() uint64 {
	return uint64(m.index.Len())
}

// Contains - true if the key is present
func (m *Map) Contains(key []byte) bool {
	return m.index.Contains(key)
}

// Get - value for a key
func (m *Map) Get(key []byte) ([]byte, bool) {
	offset, ok := m.find(key)
	if !ok {
		return nil, false
	}
	_, value := m.readEntry(offset)
	return value, true
}

// Insert - store a value under a key, replacing any previous value
//
// all size checks and memory growth happen before anything is
// written, so a failed insert leaves the map unchanged
func (m *Map) Insert(key []byte, value []byte) error {
	if len(key) > m.header.keyLimit {
		return fault.ErrKeyTooLong
	}
	if m.header.fixed {
		if uint32(len(value)) != m.header.valueLimit {
			return fault.ErrValueSizeMismatch
		}
	} else {
		limit := uint64(maximumValueSize)
		if 0 != m.header.valueLimit {
			limit = uint64(m.header.valueLimit)
		}
		if uint64(len(value)) > limit {
			return fault.ErrValueTooLarge
		}
	}

	previous, exists := m.find(key)
	if exists {
		e, _ := m.readEntryKey(previous)
		if uint64(len(value)) <= uint64(e.capacity) {
			m.writeEntry(previous, key, value, e.capacity)
			return nil
		}
	}

	capacity := m.capacityFor(len(value))
	offset, err := m.allocate(capacity)
	if nil != err {
		return err
	}
	m.writeEntry(offset, key, value, capacity)

	if exists {
		m.release(previous)
	}
	err = m.index.Put(key, encodeOffset(offset))
	fault.PanicIfError("stablemap: index put", err)
	return nil
}

// Reserve - make sure that count new entries for values of the given
// size can be allocated without growing the memory
func (m *Map) Reserve(count int, valueSize int) error {
	capacity := m.capacityFor(valueSize)
	needed := count - len(m.free[capacity])
	if needed <= 0 {
		return nil
	}
	return memory.EnsureSize(m.mem, m.header.tail, uint64(needed)*m.entrySize(capacity))
}

// Remove - delete a key, returns false if it was not present
func (m *Map) Remove(key []byte) bool {
	offset, ok := m.find(key)
	if !ok {
		return false
	}
	m.release(offset)
	err := m.index.Delete(key)
	fault.PanicIfError("stablemap: index delete", err)
	return true
}

// Clear - drop every entry; the memory keeps its size
func (m *Map) Clear() error {
	m.index.Reset()
	m.free = make(map[uint32][]uint64)
	return m.format()
}

// TotalBytes - bytes used by the header and the entry log
func (m *Map) TotalBytes() uint64 {
	return m.header.tail
}

func (m *Map) find(key []byte) (uint64, bool) {
	buffer, err := m.index.Get(key)
	if memdb.ErrNotFound == err {
		return 0, false
	}
	fault.PanicIfError("stablemap: index get", err)
	return decodeOffset(buffer), true
}

// take an entry from the free list or the end of the log
func (m *Map) allocate(capacity uint32) (uint64, error) {
	list := m.free[capacity]
	if n := len(list); n > 0 {
		offset := list[n-1]
		m.free[capacity] = list[:n-1]
		return offset, nil
	}

	offset := m.header.tail
	size := m.entrySize(capacity)
	err := memory.EnsureSize(m.mem, offset, size)
	if nil != err {
		return 0, err
	}
	m.header.tail = offset + size
	m.mem.Write(0, m.header.pack())
	return offset, nil
}

// mark an entry free and put it on its free list
func (m *Map) release(offset uint64) {
	e, _ := m.readEntryKey(offset)
	m.mem.Write(offset, []byte{stateFree})
	m.free[e.capacity] = append(m.free[e.capacity], offset)
}

func (m *Map) writeEntry(offset uint64, key []byte, value []byte, capacity uint32) {
	e := entry{
		state:    stateLive,
		keyLen:   len(key),
		capacity: capacity,
		valueLen: uint32(len(value)),
		checksum: checksum(key, value),
	}
	keyArea := make([]byte, m.header.keyLimit)
	copy(keyArea, key)

	buffer := make([]byte, 0, entryHeaderSize+len(keyArea)+len(value))
	buffer = append(buffer, e.pack()...)
	buffer = append(buffer, keyArea...)
	buffer = append(buffer, value...)
	m.mem.Write(offset, buffer)
}

func (m *Map) readEntryKey(offset uint64) (*entry, []byte) {
	buffer := make([]byte, entryHeaderSize+m.header.keyLimit)
	m.mem.Read(offset, buffer)
	e := unpackEntry(buffer)
	if e.keyLen > m.header.keyLimit || e.valueLen > e.capacity {
		fault.Panicf("stablemap: corrupt entry at offset: %d", offset)
	}
	return e, buffer[entryHeaderSize : entryHeaderSize+e.keyLen]
}

// read a live entry and verify its checksum
func (m *Map) readEntry(offset uint64) ([]byte, []byte) {
	e, key := m.readEntryKey(offset)
	if stateLive != e.state {
		fault.Panicf("stablemap: index points at dead entry: offset: %d", offset)
	}
	value := make([]byte, e.valueLen)
	m.mem.Read(offset+entryHeaderSize+uint64(m.header.keyLimit), value)
	if e.checksum != checksum(key, value) {
		m.log.Criticalf("entry checksum mismatch at offset: %d", offset)
		fault.Panicf("stablemap: entry checksum mismatch at offset: %d", offset)
	}
	return key, value
}
