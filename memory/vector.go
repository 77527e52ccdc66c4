// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package memory

// Vector - memory held in a byte slice
type Vector struct {
	data     []byte
	maxPages uint64 // zero means no limit
}

// NewVector - an empty memory with an optional page limit
func NewVector(maxPages uint64) *Vector {
	return &Vector{
		data:     []byte{},
		maxPages: maxPages,
	}
}

// Size - in pages
func (v *Vector) Size() uint64 {
	return uint64(len(v.data)) / PageSize
}

// Grow - extend with zero filled pages
func (v *Vector) Grow(pages uint64) int64 {
	previous := v.Size()
	if 0 != v.maxPages && previous+pages > v.maxPages {
		return -1
	}
	v.data = append(v.data, make([]byte, pages*PageSize)...)
	return int64(previous)
}

// Read - copy out of the memory
func (v *Vector) Read(offset uint64, dst []byte) {
	CheckBounds("read", v, offset, len(dst))
	copy(dst, v.data[offset:])
}

// Write - copy into the memory
func (v *Vector) Write(offset uint64, src []byte) {
	CheckBounds("write", v, offset, len(src))
	copy(v.data[offset:], src)
}

// Bytes - the raw contents, used to take a snapshot in tests
func (v *Vector) Bytes() []byte {
	return v.data
}
