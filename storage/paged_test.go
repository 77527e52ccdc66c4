// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/bintly"

	"github.com/bitmark-inc/walletd/account"
	"github.com/bitmark-inc/walletd/fault"
	"github.com/bitmark-inc/walletd/memory"
	"github.com/bitmark-inc/walletd/storage"
)

func TestShrinkCleansUp(t *testing.T) {
	s, err := storage.NewPagedStore(memory.NewVector(0), 0)
	require.NoError(t, err)

	key := []byte{1, 2, 3}
	large := account.ToyAccount(1, account.ToySize{Transactions: 3000})
	small := account.ToyAccount(1, account.ToySize{Transactions: 1})

	require.NoError(t, s.Insert(key, large))
	largePages := uint64(storage.PageCount(len(large.Encode())))
	assert.True(t, largePages > 2, "large record only needs: %d pages", largePages)
	assert.Equal(t, largePages, s.PageCount())

	require.NoError(t, s.Insert(key, small))
	assert.Equal(t, uint64(storage.PageCount(len(small.Encode()))), s.PageCount(), "orphan pages after shrink")
	assert.Equal(t, uint64(1), s.Len())

	stored, ok := s.Get(key)
	assert.True(t, ok)
	assert.True(t, small.Equal(stored), "shrunk record")

	assert.True(t, s.Remove(key))
	assert.Equal(t, uint64(0), s.Len())
	assert.Equal(t, uint64(0), s.PageCount(), "orphan pages after remove")
}

// a record that exactly fills its pages must not pick up a stale page
// from a longer previous version
func TestShrinkToFullPages(t *testing.T) {
	s, err := storage.NewPagedStore(memory.NewVector(0), 0)
	require.NoError(t, err)

	key := []byte{4}
	require.NoError(t, s.Insert(key, account.ToyAccount(1, account.ToySize{Transactions: 1000})))

	for n := 0; n < 600; n += 1 {
		a := account.ToyAccount(1, account.ToySize{Transactions: n})
		size := len(a.Encode())
		if 0 != size%storage.MaxPayload {
			continue
		}
		require.NoError(t, s.Insert(key, a))
		assert.Equal(t, uint64(size/storage.MaxPayload), s.PageCount(), "pages for exact record")
		stored, _ := s.Get(key)
		assert.True(t, a.Equal(stored), "exact record")
		return
	}
	t.Log("no transaction count produced an exact page multiple")
}

// removal stops at the first page that is not full, so the pages of
// every record must stay contiguous from page zero
func TestPagesStayContiguous(t *testing.T) {
	s, err := storage.NewPagedStore(memory.NewVector(0), 0)
	require.NoError(t, err)

	r := rand.New(rand.NewSource(7))
	sizes := make(map[uint64]int)
	for i := 0; i < 300; i += 1 {
		index := uint64(r.Intn(12))
		key := account.ToyKey(index)
		if 0 == r.Intn(5) {
			s.Remove(key)
			delete(sizes, index)
		} else {
			a := account.ToyAccount(index, account.ToySize{Transactions: r.Intn(1500)})
			require.NoError(t, s.Insert(key, a))
			sizes[index] = len(a.Encode())
		}

		expected := uint64(0)
		for _, size := range sizes {
			expected += uint64(storage.PageCount(size))
		}
		require.Equal(t, expected, s.PageCount(), "iteration: %d", i)
		require.Equal(t, uint64(len(sizes)), s.Len(), "iteration: %d", i)
	}
}

func TestPagedReopen(t *testing.T) {
	mem := memory.NewVector(0)
	s, err := storage.NewPagedStore(mem, 0)
	require.NoError(t, err)

	for i := uint64(0); i < 20; i += 1 {
		require.NoError(t, s.Insert(account.ToyKey(i), account.ToyAccount(i, account.ToySize{Transactions: int(i * 50)})))
	}
	s.Remove(account.ToyKey(5))

	r, err := storage.NewPagedStore(mem, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(19), r.Len(), "records after reopen")
	assert.Equal(t, s.PageCount(), r.PageCount(), "pages after reopen")

	for i := uint64(0); i < 20; i += 1 {
		a, ok := r.Get(account.ToyKey(i))
		if 5 == i {
			assert.False(t, ok, "removed record present")
			continue
		}
		assert.True(t, ok, "record: %d missing", i)
		assert.True(t, account.ToyAccount(i, account.ToySize{Transactions: int(i * 50)}).Equal(a), "record: %d", i)
	}
}

func TestPagedOutOfMemory(t *testing.T) {
	s, err := storage.NewPagedStore(memory.NewVector(1), 0)
	require.NoError(t, err)

	small := account.ToyAccount(1, account.ToySize{})
	require.NoError(t, s.Insert([]byte{1}, small))

	// needs more pages than one memory page holds
	huge := account.ToyAccount(2, account.ToySize{Transactions: 10000})
	err = s.Insert([]byte{2}, huge)
	assert.Equal(t, fault.ErrOutOfMemory, err)
	assert.False(t, s.Contains([]byte{2}), "partial record written")
	assert.Equal(t, uint64(1), s.Len())
	assert.Equal(t, uint64(1), s.PageCount())
}

func TestHeapStoreBlob(t *testing.T) {
	h := storage.NewHeapStore()
	for i := uint64(0); i < 10; i += 1 {
		require.NoError(t, h.Insert(account.ToyKey(i), account.ToyAccount(i, account.ToySize{Canisters: int(i)})))
	}

	data, err := bintly.Encode(h)
	require.NoError(t, err)

	r := storage.NewHeapStore()
	require.NoError(t, bintly.Decode(data, r))
	assert.Equal(t, h.Len(), r.Len())

	for i := uint64(0); i < 10; i += 1 {
		a, ok := r.Get(account.ToyKey(i))
		assert.True(t, ok, "record: %d missing", i)
		assert.True(t, account.ToyAccount(i, account.ToySize{Canisters: int(i)}).Equal(a), "record: %d", i)
	}
}
