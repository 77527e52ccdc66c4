// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package account

import (
	"encoding/binary"
	"fmt"
)

// ToySize - shape of a generated test account
type ToySize struct {
	Transactions    int
	SubAccounts     int
	HardwareWallets int
	Canisters       int
}

// ToyAccount - a deterministic account for tests and load generation
//
// the same index and size always produce an equal account
func ToyAccount(index uint64, size ToySize) *Account {
	principal := make([]byte, 8)
	binary.BigEndian.PutUint64(principal, index)

	a := New(principal)
	for i := 0; i < size.Transactions; i += 1 {
		a.AppendTransaction(index*1000 + uint64(i))
	}
	for i := 0; i < size.SubAccounts; i += 1 {
		s := a.CreateSubAccount(uint8(i+1), fmt.Sprintf("sub-%d", i+1))
		s.Transactions = append(s.Transactions, index*1000+uint64(i))
	}
	for i := 0; i < size.HardwareWallets; i += 1 {
		hw := make([]byte, 10)
		binary.BigEndian.PutUint64(hw, index)
		hw[9] = byte(i)
		a.HardwareWalletAccounts = append(a.HardwareWalletAccounts, &HardwareWalletAccount{
			Name:      fmt.Sprintf("ledger-%d", i),
			Principal: hw,
		})
	}
	for i := 0; i < size.Canisters && i < MaximumCanisters; i += 1 {
		id := make([]byte, 10)
		binary.BigEndian.PutUint64(id, index)
		id[8] = byte(i)
		id[9] = 0x01
		_ = a.AttachCanister(fmt.Sprintf("canister-%d", i), id)
	}
	return a
}

// ToyKey - storage key for a toy account
func ToyKey(index uint64) []byte {
	a := ToyAccount(index, ToySize{})
	return append([]byte{}, a.Identifier[:]...)
}
