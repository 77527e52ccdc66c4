// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package schema_test

import (
	"crypto/sha256"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/walletd/fault"
	"github.com/bitmark-inc/walletd/schema"
)

func TestRoundTrip(t *testing.T) {
	for _, label := range schema.Labels() {
		buffer := schema.ToBytes(label)
		actual, err := schema.FromBytes(buffer[:])
		assert.NoError(t, err, "label: %s", label)
		assert.Equal(t, label, actual)
	}
}

func TestLayout(t *testing.T) {
	buffer := schema.ToBytes(schema.AccountsUnbounded)

	assert.Equal(t, 36, len(buffer))
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(buffer[:4]))
}

func TestEveryChecksumBitFlipIsRejected(t *testing.T) {
	for _, label := range schema.Labels() {
		for bit := 4 * 8; bit < schema.Size*8; bit += 1 {
			buffer := schema.ToBytes(label)
			buffer[bit/8] ^= 1 << uint(bit%8)

			_, err := schema.FromBytes(buffer[:])
			assert.Equal(t, fault.ErrInvalidChecksum, err, "label: %s  bit: %d", label, bit)
		}
	}
}

func TestLabelBitFlipIsRejected(t *testing.T) {
	buffer := schema.ToBytes(schema.Map)
	buffer[0] ^= 0x01

	_, err := schema.FromBytes(buffer[:])
	assert.Equal(t, fault.ErrInvalidChecksum, err)
}

func TestInsufficientBytes(t *testing.T) {
	buffer := schema.ToBytes(schema.Map)

	_, err := schema.FromBytes(buffer[:schema.Size-1])
	assert.Equal(t, fault.ErrInsufficientBytes, err)

	_, err = schema.FromBytes(nil)
	assert.Equal(t, fault.ErrInsufficientBytes, err)
}

func TestUninitialisedMemoryIsRejected(t *testing.T) {
	_, err := schema.FromBytes(make([]byte, schema.Size))
	assert.Equal(t, fault.ErrInvalidChecksum, err)
}

func TestUnknownLabel(t *testing.T) {
	// build a correctly checksummed label that names nothing
	buffer := make([]byte, schema.Size)
	binary.LittleEndian.PutUint32(buffer, 99)
	h := sha256.New()
	h.Write([]byte("walletd-schema-label"))
	h.Write(buffer[:4])
	copy(buffer[4:], h.Sum(nil))

	_, err := schema.FromBytes(buffer)
	assert.Equal(t, fault.InvalidLabelError{Value: 99}, err)
}

func TestParse(t *testing.T) {
	for _, label := range schema.Labels() {
		actual, err := schema.Parse(label.String())
		assert.NoError(t, err)
		assert.Equal(t, label, actual)
	}

	actual, err := schema.Parse(" Paged ")
	assert.NoError(t, err)
	assert.Equal(t, schema.AccountsInStableMemory, actual)

	_, err = schema.Parse("btree")
	assert.Equal(t, fault.ErrUnknownSchemaName, err)
	assert.Equal(t, "unknown", schema.Label(9).String())
}
