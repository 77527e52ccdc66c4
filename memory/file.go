// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package memory

import (
	"fmt"
	"os"

	"github.com/bitmark-inc/walletd/fault"
)

// File - memory backed by a regular file
//
// the file length is always a whole number of pages
type File struct {
	file     *os.File
	pages    uint64
	maxPages uint64
	readOnly bool
}

// OpenFile - open (or create if writable) a memory file
func OpenFile(name string, maxPages uint64, readOnly bool) (*File, error) {
	flags := os.O_RDWR | os.O_CREATE
	if readOnly {
		flags = os.O_RDONLY
	}
	f, err := os.OpenFile(name, flags, 0600)
	if nil != err {
		return nil, err
	}

	info, err := f.Stat()
	if nil != err {
		f.Close()
		return nil, err
	}
	if 0 != info.Size()%PageSize {
		f.Close()
		return nil, fmt.Errorf("memory file: %q size: %d is not a multiple of: %d", name, info.Size(), PageSize)
	}

	return &File{
		file:     f,
		pages:    uint64(info.Size()) / PageSize,
		maxPages: maxPages,
		readOnly: readOnly,
	}, nil
}

// Size - in pages
func (m *File) Size() uint64 {
	return m.pages
}

// Grow - extend the file with zero filled pages
func (m *File) Grow(pages uint64) int64 {
	previous := m.pages
	if m.readOnly || (0 != m.maxPages && previous+pages > m.maxPages) {
		return -1
	}
	err := m.file.Truncate(int64((previous + pages) * PageSize))
	if nil != err {
		return -1
	}
	m.pages = previous + pages
	return int64(previous)
}

// Read - copy out of the file
func (m *File) Read(offset uint64, dst []byte) {
	CheckBounds("read", m, offset, len(dst))
	_, err := m.file.ReadAt(dst, int64(offset))
	fault.PanicIfError("memory file read", err)
}

// Write - copy into the file
func (m *File) Write(offset uint64, src []byte) {
	CheckBounds("write", m, offset, len(src))
	if m.readOnly {
		fault.Panicf("memory file write: read only")
	}
	_, err := m.file.WriteAt(src, int64(offset))
	fault.PanicIfError("memory file write", err)
}

// Sync - flush to stable storage
func (m *File) Sync() error {
	if m.readOnly {
		return nil
	}
	return m.file.Sync()
}

// Close - sync and close the file
func (m *File) Close() error {
	err := m.Sync()
	if nil != err {
		m.file.Close()
		return err
	}
	return m.file.Close()
}
