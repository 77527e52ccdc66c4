// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package memory

import (
	"github.com/bitmark-inc/walletd/fault"
)

// PageSize - the allocation unit of a memory
const PageSize = 65536

// Memory - linear memory that can only grow
type Memory interface {
	// current size in pages
	Size() uint64

	// add pages, returns the previous size or -1 if the memory
	// could not grow
	Grow(pages uint64) int64

	// copy bytes out of / into the memory
	Read(offset uint64, dst []byte)
	Write(offset uint64, src []byte)
}

// PagesFor - number of pages needed to hold n bytes
func PagesFor(n uint64) uint64 {
	return (n + PageSize - 1) / PageSize
}

// EnsureSize - grow a memory so that [offset, offset+n) is addressable
func EnsureSize(m Memory, offset uint64, n uint64) error {
	required := PagesFor(offset + n)
	current := m.Size()
	if required <= current {
		return nil
	}
	if m.Grow(required-current) < 0 {
		return fault.ErrOutOfMemory
	}
	return nil
}

// GrowingWrite - write bytes, first growing the memory if necessary
func GrowingWrite(m Memory, offset uint64, src []byte) error {
	err := EnsureSize(m, offset, uint64(len(src)))
	if nil != err {
		return err
	}
	m.Write(offset, src)
	return nil
}

// CheckBounds - abort on an access that lies outside the memory
func CheckBounds(operation string, m Memory, offset uint64, n int) {
	limit := m.Size() * PageSize
	end := offset + uint64(n)
	if end < offset || end > limit {
		fault.Panicf("memory %s out of bounds: offset: %d  length: %d  size: %d", operation, offset, n, limit)
	}
}
