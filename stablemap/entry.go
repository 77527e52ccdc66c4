// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package stablemap

import (
	"encoding/binary"
)

// entry layout:
//
//	[0]      state
//	[1]      key length
//	[2:6]    value capacity (u32 LE)
//	[6:10]   value length (u32 LE)
//	[10:18]  checksum of key and value (u64 LE)
//	[18:...] key area (key limit bytes), then value area (capacity bytes)
const (
	entryHeaderSize = 18

	stateLive byte = 1
	stateFree byte = 2

	// smallest value area in unbounded mode
	minimumCapacity = 64
)

type entry struct {
	state    byte
	keyLen   int
	capacity uint32
	valueLen uint32
	checksum uint64
}

func (e *entry) pack() []byte {
	buffer := make([]byte, entryHeaderSize)
	buffer[0] = e.state
	buffer[1] = byte(e.keyLen)
	binary.LittleEndian.PutUint32(buffer[2:], e.capacity)
	binary.LittleEndian.PutUint32(buffer[6:], e.valueLen)
	binary.LittleEndian.PutUint64(buffer[10:], e.checksum)
	return buffer
}

func unpackEntry(buffer []byte) *entry {
	return &entry{
		state:    buffer[0],
		keyLen:   int(buffer[1]),
		capacity: binary.LittleEndian.Uint32(buffer[2:]),
		valueLen: binary.LittleEndian.Uint32(buffer[6:]),
		checksum: binary.LittleEndian.Uint64(buffer[10:]),
	}
}

// total bytes occupied by an entry
func (m *Map) entrySize(capacity uint32) uint64 {
	return entryHeaderSize + uint64(m.header.keyLimit) + uint64(capacity)
}

// value capacity to allocate for a value of n bytes
func (m *Map) capacityFor(n int) uint32 {
	if m.header.fixed {
		return m.header.valueLimit
	}
	c := uint32(minimumCapacity)
	for c < uint32(n) {
		c <<= 1
	}
	return c
}

func encodeOffset(offset uint64) []byte {
	buffer := make([]byte, 8)
	binary.BigEndian.PutUint64(buffer, offset)
	return buffer
}

func decodeOffset(buffer []byte) uint64 {
	return binary.BigEndian.Uint64(buffer)
}
