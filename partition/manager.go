// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package partition

import (
	"bytes"
	"encoding/binary"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/walletd/fault"
	"github.com/bitmark-inc/walletd/memory"
	"github.com/bitmark-inc/walletd/schema"
)

// header layout in raw page 0:
//
//	[0:3]     magic "MGR"
//	[3]       version
//	[4:8]     allocated bucket count (u32 LE)
//	[8:12]    bucket size in pages (u32 LE)
//	[16:144]  partition sizes in pages (u64 LE per slot)
//	[256:...] bucket allocation table, one partition id per bucket
const (
	currentVersion     = 1
	countOffset        = 4
	bucketPagesOffset  = 8
	sizesOffset        = 16
	tableOffset        = 256
	maximumBuckets     = memory.PageSize - tableOffset
	DefaultBucketPages = 128
)

var magic = []byte("MGR")

// Manager - owns the raw memory and the partitions inside it
type Manager struct {
	log         *logger.L
	raw         memory.Memory
	bucketPages uint64
	bucketCount uint32
	sizes       [MaximumPartitions]uint64
	buckets     [MaximumPartitions][]uint32
	pending     bool // header not yet written
}

// New - format a raw memory with an empty manager
func New(raw memory.Memory, bucketPages uint64) (*Manager, error) {
	m := newManager(raw, bucketPages)
	err := m.Commit()
	if nil != err {
		return nil, err
	}
	m.log.Infof("formatted: bucket pages: %d", m.bucketPages)
	return m, nil
}

// Convert - lay out a manager over a memory that still holds preserve
// bytes of a legacy layout
//
// the buckets covering the legacy bytes belong to the Legacy partition
// and nothing is written to raw page 0 until Commit, so the legacy
// layout stays readable while the partitions are filled
func Convert(raw memory.Memory, bucketPages uint64, preserve uint64) (*Manager, error) {
	m := newManager(raw, bucketPages)
	m.pending = true

	if preserve > memory.PageSize {
		bucketBytes := m.bucketPages * memory.PageSize
		reserved := (preserve - memory.PageSize + bucketBytes - 1) / bucketBytes
		if reserved > maximumBuckets {
			return nil, fault.ErrOutOfMemory
		}
		for bucket := uint32(0); bucket < uint32(reserved); bucket += 1 {
			m.buckets[Legacy] = append(m.buckets[Legacy], bucket)
		}
		m.bucketCount = uint32(reserved)
		m.sizes[Legacy] = reserved * m.bucketPages
	}

	m.log.Infof("converting: bucket pages: %d  legacy buckets: %d", m.bucketPages, m.bucketCount)
	return m, nil
}

func newManager(raw memory.Memory, bucketPages uint64) *Manager {
	if 0 == bucketPages {
		bucketPages = DefaultBucketPages
	}
	return &Manager{
		log:         logger.New("partition"),
		raw:         raw,
		bucketPages: bucketPages,
	}
}

// Commit - write the whole header to raw page 0; a converted manager
// only becomes visible to Open after this
func (m *Manager) Commit() error {
	header := make([]byte, tableOffset+uint64(m.bucketCount))
	copy(header, magic)
	header[3] = currentVersion
	binary.LittleEndian.PutUint32(header[countOffset:], m.bucketCount)
	binary.LittleEndian.PutUint32(header[bucketPagesOffset:], uint32(m.bucketPages))
	for i := 0; i < MaximumPartitions; i += 1 {
		binary.LittleEndian.PutUint64(header[sizesOffset+8*i:], m.sizes[i])
		for _, bucket := range m.buckets[i] {
			header[tableOffset+uint64(bucket)] = byte(i)
		}
	}
	err := memory.GrowingWrite(m.raw, 0, header)
	if nil != err {
		return err
	}
	m.pending = false
	return nil
}

// Open - load an existing manager, ErrNoMemoryManager if the raw
// memory does not carry one
func Open(raw memory.Memory) (*Manager, error) {
	if 0 == raw.Size() {
		return nil, fault.ErrNoMemoryManager
	}
	header := make([]byte, tableOffset)
	raw.Read(0, header)
	if !bytes.Equal(header[:len(magic)], magic) {
		return nil, fault.ErrNoMemoryManager
	}
	if currentVersion != header[3] {
		return nil, fault.ErrUnsupportedManagerVersion
	}

	m := &Manager{
		log:         logger.New("partition"),
		raw:         raw,
		bucketCount: binary.LittleEndian.Uint32(header[countOffset:]),
		bucketPages: uint64(binary.LittleEndian.Uint32(header[bucketPagesOffset:])),
	}
	if 0 == m.bucketPages || m.bucketCount > maximumBuckets {
		return nil, fault.ErrNoMemoryManager
	}
	for i := 0; i < MaximumPartitions; i += 1 {
		m.sizes[i] = binary.LittleEndian.Uint64(header[sizesOffset+8*i:])
	}

	table := make([]byte, m.bucketCount)
	raw.Read(tableOffset, table)
	for bucket, id := range table {
		if int(id) >= MaximumPartitions {
			return nil, fault.ErrInvalidPartition
		}
		m.buckets[id] = append(m.buckets[id], uint32(bucket))
	}
	for i := 0; i < MaximumPartitions; i += 1 {
		if m.sizes[i] > uint64(len(m.buckets[i]))*m.bucketPages {
			return nil, fault.ErrInvalidPartition
		}
	}

	m.log.Debugf("opened: buckets: %d  bucket pages: %d", m.bucketCount, m.bucketPages)
	return m, nil
}

// TryFromMemory - open a manager whose metadata carries a valid
// schema label; any error means the memory uses the legacy layout
func TryFromMemory(raw memory.Memory) (*Manager, schema.Label, error) {
	m, err := Open(raw)
	if nil != err {
		return nil, 0, err
	}
	label, err := m.SchemaLabel()
	if nil != err {
		return nil, 0, err
	}
	return m, label, nil
}

// Get - the virtual memory of a partition
func (m *Manager) Get(id ID) memory.Memory {
	if int(id) >= MaximumPartitions {
		fault.Panicf("partition: invalid id: %d", id)
	}
	return &virtualMemory{
		manager: m,
		id:      id,
	}
}

// SchemaLabel - read and verify the label in the metadata partition
func (m *Manager) SchemaLabel() (schema.Label, error) {
	metadata := m.Get(Metadata)
	if metadata.Size()*memory.PageSize < schema.Size {
		return 0, fault.ErrInsufficientBytes
	}
	buffer := make([]byte, schema.Size)
	metadata.Read(0, buffer)
	return schema.FromBytes(buffer)
}

// SetSchemaLabel - write a label to the metadata partition
func (m *Manager) SetSchemaLabel(label schema.Label) error {
	buffer := schema.ToBytes(label)
	return m.GrowingWrite(Metadata, 0, buffer[:])
}

// GrowingWrite - write to a partition, growing it if necessary
func (m *Manager) GrowingWrite(id ID, offset uint64, src []byte) error {
	return memory.GrowingWrite(m.Get(id), offset, src)
}

// Sizes - current size of each partition in pages
func (m *Manager) Sizes() map[string]uint64 {
	result := make(map[string]uint64)
	for _, id := range IDs() {
		result[id.String()] = m.sizes[id]
	}
	if m.sizes[Legacy] > 0 {
		result[Legacy.String()] = m.sizes[Legacy]
	}
	return result
}

// BucketPages - pages per bucket
func (m *Manager) BucketPages() uint64 {
	return m.bucketPages
}

// add pages to a partition; returns the previous size or -1, in
// which case nothing has changed
func (m *Manager) grow(id ID, pages uint64) int64 {
	previous := m.sizes[id]
	required := previous + pages
	have := uint64(len(m.buckets[id]))
	need := (required + m.bucketPages - 1) / m.bucketPages

	if need > have {
		extra := need - have
		count := uint64(m.bucketCount) + extra
		if count > maximumBuckets {
			return -1
		}
		rawPages := 1 + count*m.bucketPages
		if nil != memory.EnsureSize(m.raw, 0, rawPages*memory.PageSize) {
			return -1
		}
		table := make([]byte, extra)
		for i := range table {
			table[i] = byte(id)
			m.buckets[id] = append(m.buckets[id], m.bucketCount+uint32(i))
		}
		if !m.pending {
			m.raw.Write(tableOffset+uint64(m.bucketCount), table)
		}
		m.bucketCount = uint32(count)

		if !m.pending {
			buffer := make([]byte, 4)
			binary.LittleEndian.PutUint32(buffer, m.bucketCount)
			m.raw.Write(countOffset, buffer)
		}
	}

	m.sizes[id] = required
	if m.pending {
		return int64(previous)
	}
	buffer := make([]byte, 8)
	binary.LittleEndian.PutUint64(buffer, required)
	m.raw.Write(sizesOffset+8*uint64(id), buffer)

	return int64(previous)
}

// raw offset of a partition offset and the bytes left in its bucket
func (m *Manager) locate(id ID, offset uint64) (uint64, uint64) {
	bucketBytes := m.bucketPages * memory.PageSize
	bucket := m.buckets[id][offset/bucketBytes]
	within := offset % bucketBytes
	return memory.PageSize + uint64(bucket)*bucketBytes + within, bucketBytes - within
}
