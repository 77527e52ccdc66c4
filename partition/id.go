// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package partition

// ID - permanent partition number, never renumbered
type ID uint8

// the partitions
const (
	Metadata          ID = 0
	Heap              ID = 1
	Accounts          ID = 2
	AccountsUnbounded ID = 3
	Legacy            ID = 4 // bytes of a converted pre-partition layout
)

// MaximumPartitions - slots in the manager header
const MaximumPartitions = 16

var names = map[ID]string{
	Metadata:          "metadata",
	Heap:              "heap",
	Accounts:          "accounts",
	AccountsUnbounded: "accounts_unbounded",
	Legacy:            "legacy",
}

// IDs - the partitions in use
func IDs() []ID {
	return []ID{Metadata, Heap, Accounts, AccountsUnbounded}
}

// String - name of a partition
func (id ID) String() string {
	if s, ok := names[id]; ok {
		return s
	}
	return "unknown"
}
