// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package account_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/walletd/account"
	"github.com/bitmark-inc/walletd/fault"
)

func TestEncodeDecode(t *testing.T) {
	sizes := []account.ToySize{
		{},
		{Transactions: 3},
		{Transactions: 10, SubAccounts: 4, HardwareWallets: 2, Canisters: 5},
		{Canisters: account.MaximumCanisters},
	}
	for i, size := range sizes {
		a := account.ToyAccount(uint64(i), size)
		packed := a.Encode()

		b, err := account.Decode(packed)
		require.NoError(t, err, "size: %+v", size)
		assert.True(t, a.Equal(b), "size: %+v", size)
		assert.Equal(t, packed, b.Encode(), "encoding must be deterministic")
		assert.Equal(t, len(a.Canisters), len(b.Canisters))
		assert.Equal(t, len(a.SubAccounts), len(b.SubAccounts))
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := account.Decode([]byte{})
	assert.Error(t, err)

	_, err = account.Decode([]byte{0x7f, 0x01, 0x02})
	assert.Error(t, err)
}

func TestIdentifier(t *testing.T) {
	a := account.New([]byte{1, 2, 3})
	assert.True(t, a.Identifier.IsValid())

	b := account.New([]byte{1, 2, 3})
	assert.Equal(t, a.Identifier, b.Identifier)

	c := account.New([]byte{1, 2, 4})
	assert.NotEqual(t, a.Identifier, c.Identifier)

	id := a.Identifier
	id[10] ^= 0xff
	assert.False(t, id.IsValid())
	assert.Equal(t, 64, len(a.Identifier.String()))
}

func TestCanisters(t *testing.T) {
	a := account.New([]byte{9})

	require.NoError(t, a.AttachCanister("one", []byte{1}))
	assert.Equal(t, fault.ErrCanisterAlreadyAttached, a.AttachCanister("again", []byte{1}))
	require.NoError(t, a.AttachCanister("two", []byte{2}))

	require.NoError(t, a.DetachCanister([]byte{1}))
	assert.Equal(t, fault.ErrCanisterNotFound, a.DetachCanister([]byte{1}))
	assert.Equal(t, 1, len(a.Canisters))
	assert.Equal(t, "two", a.Canisters[0].Name)
}

func TestCanisterLimit(t *testing.T) {
	a := account.ToyAccount(1, account.ToySize{Canisters: account.MaximumCanisters})
	assert.Equal(t, account.MaximumCanisters, len(a.Canisters))
	assert.Equal(t, fault.ErrTooManyCanisters, a.AttachCanister("extra", []byte{0xff, 0xff}))
}

func TestSubAccounts(t *testing.T) {
	a := account.New([]byte{5})
	s := a.CreateSubAccount(3, "savings")
	assert.True(t, s.Identifier.IsValid())
	assert.NotEqual(t, a.Identifier, s.Identifier)

	require.NoError(t, a.RenameSubAccount(3, "holiday"))
	assert.Equal(t, "holiday", a.SubAccounts[3].Name)
	assert.Equal(t, fault.ErrSubAccountNotFound, a.RenameSubAccount(4, "x"))

	require.NoError(t, a.AppendSubAccountTransaction(3, 77))
	assert.Equal(t, []uint64{77}, a.SubAccounts[3].Transactions)
	assert.Equal(t, fault.ErrSubAccountNotFound, a.AppendSubAccountTransaction(8, 1))
}

func TestClone(t *testing.T) {
	a := account.ToyAccount(4, account.ToySize{Transactions: 2, SubAccounts: 1})
	b := a.Clone()
	assert.True(t, a.Equal(b))

	b.AppendTransaction(99)
	assert.False(t, a.Equal(b))
}
