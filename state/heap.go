// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package state

import (
	"encoding/binary"
	"fmt"

	"github.com/viant/bintly"

	"github.com/bitmark-inc/walletd/fault"
	"github.com/bitmark-inc/walletd/memory"
	"github.com/bitmark-inc/walletd/schema"
	"github.com/bitmark-inc/walletd/storage"
)

const (
	heapVersion      = 1
	blobLengthPrefix = 8
)

// everything that does not survive an upgrade by itself
type heapState struct {
	schema          schema.Label
	accounts        *storage.HeapStore // only for the map layout
	migrating       bool
	target          schema.Label
	cursor          []byte
	exhausted       bool
	heapTarget      *storage.HeapStore // only when migrating to the map layout
	lastLedgerBlock uint64
	completed       uint64
	aborted         uint64
}

func flag(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

// EncodeBinary - write to a bintly stream
func (h *heapState) EncodeBinary(stream *bintly.Writer) error {
	stream.Uint8(heapVersion)
	stream.Uint32(uint32(h.schema))

	stream.Uint8(flag(nil != h.accounts))
	if nil != h.accounts {
		if err := h.accounts.EncodeBinary(stream); nil != err {
			return err
		}
	}

	stream.Uint8(flag(h.migrating))
	if h.migrating {
		stream.Uint32(uint32(h.target))
		stream.Uint8s(h.cursor)
		stream.Uint8(flag(h.exhausted))
		stream.Uint8(flag(nil != h.heapTarget))
		if nil != h.heapTarget {
			if err := h.heapTarget.EncodeBinary(stream); nil != err {
				return err
			}
		}
	}

	stream.Uint64(h.lastLedgerBlock)
	stream.Uint64(h.completed)
	stream.Uint64(h.aborted)
	return nil
}

// DecodeBinary - read from a bintly stream
func (h *heapState) DecodeBinary(stream *bintly.Reader) error {
	version := uint8(0)
	stream.Uint8(&version)
	if heapVersion != version {
		return fault.ErrInvalidHeapVersion
	}

	label := uint32(0)
	stream.Uint32(&label)
	h.schema = schema.Label(label)
	if !h.schema.IsValid() {
		return fault.InvalidLabelError{Value: label}
	}

	present := uint8(0)
	stream.Uint8(&present)
	if 0 != present {
		h.accounts = storage.NewHeapStore()
		if err := h.accounts.DecodeBinary(stream); nil != err {
			return err
		}
	}

	migrating := uint8(0)
	stream.Uint8(&migrating)
	h.migrating = 0 != migrating
	if h.migrating {
		stream.Uint32(&label)
		h.target = schema.Label(label)
		if !h.target.IsValid() {
			return fault.InvalidLabelError{Value: label}
		}
		stream.Uint8s(&h.cursor)
		exhausted := uint8(0)
		stream.Uint8(&exhausted)
		h.exhausted = 0 != exhausted
		stream.Uint8(&present)
		if 0 != present {
			h.heapTarget = storage.NewHeapStore()
			if err := h.heapTarget.DecodeBinary(stream); nil != err {
				return err
			}
		}
	}

	stream.Uint64(&h.lastLedgerBlock)
	stream.Uint64(&h.completed)
	stream.Uint64(&h.aborted)
	return nil
}

func encodeHeapState(h *heapState) []byte {
	blob, err := bintly.Encode(h)
	fault.PanicIfError("state: encode heap", err)

	buffer := make([]byte, blobLengthPrefix, blobLengthPrefix+len(blob))
	binary.LittleEndian.PutUint64(buffer, uint64(len(blob)))
	return append(buffer, blob...)
}

// read a length prefixed blob from the start of a memory
func readBlob(m memory.Memory) ([]byte, error) {
	limit := m.Size() * memory.PageSize
	if limit < blobLengthPrefix {
		return nil, fault.ErrInsufficientBytes
	}
	prefix := make([]byte, blobLengthPrefix)
	m.Read(0, prefix)
	n := binary.LittleEndian.Uint64(prefix)
	if n > limit-blobLengthPrefix {
		return nil, fault.ErrLegacyBlobTruncated
	}
	blob := make([]byte, n)
	m.Read(blobLengthPrefix, blob)
	return blob, nil
}

func decodeHeapState(blob []byte) (h *heapState, err error) {
	defer func() {
		if r := recover(); nil != r {
			h = nil
			err = fmt.Errorf("heap state decode: %v", r)
		}
	}()

	h = &heapState{}
	err = bintly.Decode(blob, h)
	if nil != err {
		return nil, err
	}
	return h, nil
}
