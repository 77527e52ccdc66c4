// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package state

import (
	"github.com/bitmark-inc/walletd/memory"
	"github.com/bitmark-inc/walletd/partition"
	"github.com/bitmark-inc/walletd/schema"
	"github.com/bitmark-inc/walletd/storage"
)

// WriteLegacy - lay out a memory as written before partitions existed
func WriteLegacy(raw memory.Memory, accounts *storage.HeapStore, lastLedgerBlock uint64) error {
	h := &heapState{
		schema:          schema.Map,
		accounts:        accounts,
		lastLedgerBlock: lastLedgerBlock,
	}
	return memory.GrowingWrite(raw, 0, encodeHeapState(h))
}

// WriteHeap - store a map layout heap state without touching the label
func WriteHeap(m *partition.Manager, accounts *storage.HeapStore, lastLedgerBlock uint64) error {
	h := &heapState{
		schema:          schema.Map,
		accounts:        accounts,
		lastLedgerBlock: lastLedgerBlock,
	}
	return m.GrowingWrite(partition.Heap, 0, encodeHeapState(h))
}
