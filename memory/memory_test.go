// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package memory_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/walletd/fault"
	"github.com/bitmark-inc/walletd/memory"
)

const testingDirName = "testing"

func TestVectorGrow(t *testing.T) {
	v := memory.NewVector(3)

	assert.Equal(t, uint64(0), v.Size())
	assert.Equal(t, int64(0), v.Grow(2))
	assert.Equal(t, uint64(2), v.Size())
	assert.Equal(t, int64(-1), v.Grow(2), "grow beyond limit")
	assert.Equal(t, uint64(2), v.Size())
	assert.Equal(t, int64(2), v.Grow(1))
}

func TestVectorReadWrite(t *testing.T) {
	v := memory.NewVector(0)
	v.Grow(1)

	v.Write(memory.PageSize-4, []byte{1, 2, 3, 4})
	buffer := make([]byte, 4)
	v.Read(memory.PageSize-4, buffer)
	assert.Equal(t, []byte{1, 2, 3, 4}, buffer)

	assert.Panics(t, func() {
		v.Write(memory.PageSize-3, []byte{1, 2, 3, 4})
	}, "write across the end")
	assert.Panics(t, func() {
		v.Read(memory.PageSize, make([]byte, 1))
	}, "read past the end")
}

func TestGrowingWrite(t *testing.T) {
	v := memory.NewVector(0)

	err := memory.GrowingWrite(v, 2*memory.PageSize+10, []byte("data"))
	require.NoError(t, err)
	assert.Equal(t, uint64(3), v.Size())

	buffer := make([]byte, 4)
	v.Read(2*memory.PageSize+10, buffer)
	assert.Equal(t, "data", string(buffer))

	limited := memory.NewVector(1)
	err = memory.GrowingWrite(limited, memory.PageSize, []byte{1})
	assert.Equal(t, fault.ErrOutOfMemory, err)
}

func TestPagesFor(t *testing.T) {
	assert.Equal(t, uint64(0), memory.PagesFor(0))
	assert.Equal(t, uint64(1), memory.PagesFor(1))
	assert.Equal(t, uint64(1), memory.PagesFor(memory.PageSize))
	assert.Equal(t, uint64(2), memory.PagesFor(memory.PageSize+1))
}

func TestFileSurvivesReopen(t *testing.T) {
	_ = os.RemoveAll(testingDirName)
	require.NoError(t, os.Mkdir(testingDirName, 0700))
	defer os.RemoveAll(testingDirName)

	name := filepath.Join(testingDirName, "memory.bin")

	m, err := memory.OpenFile(name, 0, false)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), m.Size())
	assert.Equal(t, int64(0), m.Grow(2))
	m.Write(memory.PageSize+7, []byte("persisted"))
	require.NoError(t, m.Close())

	m, err = memory.OpenFile(name, 0, true)
	require.NoError(t, err)
	defer m.Close()

	assert.Equal(t, uint64(2), m.Size())
	buffer := make([]byte, 9)
	m.Read(memory.PageSize+7, buffer)
	assert.Equal(t, "persisted", string(buffer))
	assert.Equal(t, int64(-1), m.Grow(1), "read only memory cannot grow")
}
