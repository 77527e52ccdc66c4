// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package account

import (
	"fmt"
	"sort"

	"github.com/viant/bintly"

	"github.com/bitmark-inc/walletd/fault"
)

// current packed record version
const recordVersion = 1

// Encode - pack an account
func (a *Account) Encode() []byte {
	data, err := bintly.Encode(a)
	fault.PanicIfError("account encode", err)
	return data
}

// Decode - unpack an account
//
// a truncated or foreign buffer is reported as an error, never as a
// partially filled account
func Decode(data []byte) (a *Account, err error) {
	defer func() {
		if r := recover(); nil != r {
			a = nil
			err = fmt.Errorf("account decode: %v", r)
		}
	}()

	a = &Account{}
	err = bintly.Decode(data, a)
	if nil != err {
		return nil, err
	}
	return a, nil
}

// EncodeBinary - write the record to a bintly stream
func (a *Account) EncodeBinary(stream *bintly.Writer) error {
	stream.Uint8(recordVersion)
	stream.Uint8s(a.Principal)
	stream.Uint8s(a.Identifier[:])
	stream.Uint64s(a.DefaultAccountTransactions)

	indexes := make([]int, 0, len(a.SubAccounts))
	for index := range a.SubAccounts {
		indexes = append(indexes, int(index))
	}
	sort.Ints(indexes)

	stream.Uint32(uint32(len(indexes)))
	for _, index := range indexes {
		s := a.SubAccounts[uint8(index)]
		stream.Uint8(uint8(index))
		stream.String(s.Name)
		stream.Uint8s(s.Identifier[:])
		stream.Uint64s(s.Transactions)
	}

	stream.Uint32(uint32(len(a.HardwareWalletAccounts)))
	for _, h := range a.HardwareWalletAccounts {
		stream.String(h.Name)
		stream.Uint8s(h.Principal)
		stream.Uint64s(h.Transactions)
	}

	if len(a.Canisters) > MaximumCanisters {
		return fault.ErrTooManyCanisters
	}
	stream.Uint32(uint32(len(a.Canisters)))
	for _, c := range a.Canisters {
		stream.String(c.Name)
		stream.Uint8s(c.CanisterID)
	}
	return nil
}

// DecodeBinary - read the record from a bintly stream
func (a *Account) DecodeBinary(stream *bintly.Reader) error {
	version := uint8(0)
	stream.Uint8(&version)
	if recordVersion != version {
		return fault.ErrInvalidRecordVersion
	}

	stream.Uint8s(&a.Principal)
	if err := readIdentifier(stream, &a.Identifier); nil != err {
		return err
	}
	stream.Uint64s(&a.DefaultAccountTransactions)

	count := uint32(0)
	stream.Uint32(&count)
	a.SubAccounts = make(map[uint8]*SubAccount, count)
	for i := uint32(0); i < count; i += 1 {
		index := uint8(0)
		s := &SubAccount{}
		stream.Uint8(&index)
		stream.String(&s.Name)
		if err := readIdentifier(stream, &s.Identifier); nil != err {
			return err
		}
		stream.Uint64s(&s.Transactions)
		a.SubAccounts[index] = s
	}

	stream.Uint32(&count)
	a.HardwareWalletAccounts = make([]*HardwareWalletAccount, 0, count)
	for i := uint32(0); i < count; i += 1 {
		h := &HardwareWalletAccount{}
		stream.String(&h.Name)
		stream.Uint8s(&h.Principal)
		stream.Uint64s(&h.Transactions)
		a.HardwareWalletAccounts = append(a.HardwareWalletAccounts, h)
	}

	stream.Uint32(&count)
	if count > MaximumCanisters {
		return fault.ErrTooManyCanisters
	}
	a.Canisters = make([]*NamedCanister, 0, count)
	for i := uint32(0); i < count; i += 1 {
		c := &NamedCanister{}
		stream.String(&c.Name)
		stream.Uint8s(&c.CanisterID)
		a.Canisters = append(a.Canisters, c)
	}
	return nil
}

func readIdentifier(stream *bintly.Reader, id *Identifier) error {
	buffer := []byte{}
	stream.Uint8s(&buffer)
	if IdentifierLength != len(buffer) {
		return fault.ErrInvalidRecordVersion
	}
	copy(id[:], buffer)
	return nil
}
