// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package stablemap

import (
	"bytes"
	"encoding/binary"

	"github.com/minio/highwayhash"

	"github.com/bitmark-inc/walletd/fault"
)

// header layout:
//
//	[0:3]   magic "WSM"
//	[3]     version
//	[4]     key limit
//	[5]     fixed flag
//	[8:12]  value limit (u32 LE)
//	[16:24] tail (u64 LE)
//	[56:64] checksum of [0:56]
const (
	headerSize      = 64
	headerChecksum  = 56
	currentVersion  = 1
	maximumKeyLimit = 255
)

var magic = []byte("WSM")

// fixed highwayhash key, must be 32 bytes
var checksumKey = []byte("walletd-stable-map-checksum-key!")

type header struct {
	keyLimit   int
	valueLimit uint32
	fixed      bool
	tail       uint64
}

func checksum(parts ...[]byte) uint64 {
	h, err := highwayhash.New64(checksumKey)
	fault.PanicIfError("stablemap: checksum", err)
	for _, p := range parts {
		h.Write(p)
	}
	return h.Sum64()
}

func (h *header) pack() []byte {
	buffer := make([]byte, headerSize)
	copy(buffer, magic)
	buffer[3] = currentVersion
	buffer[4] = byte(h.keyLimit)
	if h.fixed {
		buffer[5] = 1
	}
	binary.LittleEndian.PutUint32(buffer[8:], h.valueLimit)
	binary.LittleEndian.PutUint64(buffer[16:], h.tail)
	binary.LittleEndian.PutUint64(buffer[headerChecksum:], checksum(buffer[:headerChecksum]))
	return buffer
}

// returns false if the buffer does not start with the magic,
// i.e. the memory was never formatted
func unpackHeader(buffer []byte) (*header, bool, error) {
	if len(buffer) < headerSize {
		return nil, false, fault.ErrInsufficientBytes
	}
	if !bytes.Equal(buffer[:len(magic)], magic) {
		return nil, false, nil
	}
	if currentVersion != buffer[3] {
		return nil, true, fault.ErrUnsupportedStableMapVersion
	}
	expected := binary.LittleEndian.Uint64(buffer[headerChecksum:])
	if expected != checksum(buffer[:headerChecksum]) {
		return nil, true, fault.ErrInvalidHeaderChecksum
	}
	h := &header{
		keyLimit:   int(buffer[4]),
		valueLimit: binary.LittleEndian.Uint32(buffer[8:]),
		fixed:      0 != buffer[5],
		tail:       binary.LittleEndian.Uint64(buffer[16:]),
	}
	return h, true, nil
}
