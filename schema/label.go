// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package schema - the label that identifies which physical account
// layout is present in persistent memory
//
// Wire format (Size bytes):
//
//	label (uint32 little endian) ++ SHA-256(domain ++ label bytes)
//
// The checksum stops stale or unrelated bytes from ever being read as
// a valid label.
package schema

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"strings"

	"github.com/bitmark-inc/walletd/fault"
)

// Label - identifies a physical layout
type Label uint32

// supported layouts; values are persisted and must never change
const (
	Map                    Label = 0 // accounts in a heap map, saved as one blob
	AccountsInStableMemory Label = 1 // accounts split into fixed size pages
	AccountsUnbounded      Label = 2 // one variable length value per account
)

// sizes of the encoded label
const (
	labelSize    = 4
	checksumSize = sha256.Size
	Size         = labelSize + checksumSize
)

// domain separator for the checksum
var checksumDomain = []byte("walletd-schema-label")

var names = map[Label]string{
	Map:                    "map",
	AccountsInStableMemory: "paged",
	AccountsUnbounded:      "unbounded",
}

// Labels - all supported layouts in ascending order
func Labels() []Label {
	return []Label{Map, AccountsInStableMemory, AccountsUnbounded}
}

// IsValid - true if the label names a known layout
func (label Label) IsValid() bool {
	_, ok := names[label]
	return ok
}

// String - name used in configuration and by the command line tools
func (label Label) String() string {
	if name, ok := names[label]; ok {
		return name
	}
	return "unknown"
}

// Parse - convert a layout name to a label
func Parse(name string) (Label, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for label, n := range names {
		if n == name {
			return label, nil
		}
	}
	return 0, fault.ErrUnknownSchemaName
}

// ToBytes - encode a label with its checksum
func ToBytes(label Label) [Size]byte {
	buffer := [Size]byte{}
	binary.LittleEndian.PutUint32(buffer[:labelSize], uint32(label))
	sum := checksum(buffer[:labelSize])
	copy(buffer[labelSize:], sum[:])
	return buffer
}

// FromBytes - decode a label, verifying its checksum
func FromBytes(buffer []byte) (Label, error) {
	if len(buffer) < Size {
		return 0, fault.ErrInsufficientBytes
	}
	sum := checksum(buffer[:labelSize])
	if !bytes.Equal(sum[:], buffer[labelSize:Size]) {
		return 0, fault.ErrInvalidChecksum
	}
	value := binary.LittleEndian.Uint32(buffer[:labelSize])
	label := Label(value)
	if !label.IsValid() {
		return 0, fault.InvalidLabelError{Value: value}
	}
	return label, nil
}

func checksum(labelBytes []byte) [checksumSize]byte {
	h := sha256.New()
	h.Write(checksumDomain)
	h.Write(labelBytes)
	sum := [checksumSize]byte{}
	copy(sum[:], h.Sum(nil))
	return sum
}
