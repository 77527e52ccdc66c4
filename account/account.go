// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package account

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash/crc32"

	"github.com/bitmark-inc/walletd/fault"
)

// miscellaneous constants
const (
	IdentifierLength = 32
	SubAccountLength = 32
	MaximumCanisters = 255

	checksumLength = 4
)

// separator prefixed to the identifier hash input
var identifierDomain = []byte("\x0aaccount-id")

// Identifier - canonical account identifier: CRC32 ++ SHA-224
type Identifier [IdentifierLength]byte

// String - hex form of the identifier
func (id Identifier) String() string {
	return hex.EncodeToString(id[:])
}

// IdentifierFor - derive the identifier of a principal's sub-account
func IdentifierFor(principal []byte, subAccount [SubAccountLength]byte) Identifier {
	h := sha256.New224()
	h.Write(identifierDomain)
	h.Write(principal)
	h.Write(subAccount[:])
	digest := h.Sum(nil)

	id := Identifier{}
	binary.BigEndian.PutUint32(id[:checksumLength], crc32.ChecksumIEEE(digest))
	copy(id[checksumLength:], digest)
	return id
}

// IsValid - check the embedded CRC32
func (id Identifier) IsValid() bool {
	return binary.BigEndian.Uint32(id[:checksumLength]) == crc32.ChecksumIEEE(id[checksumLength:])
}

// Account - the stored record
type Account struct {
	Principal                  []byte
	Identifier                 Identifier
	DefaultAccountTransactions []uint64
	SubAccounts                map[uint8]*SubAccount
	HardwareWalletAccounts     []*HardwareWalletAccount
	Canisters                  []*NamedCanister
}

// SubAccount - a named sub-account of the principal
type SubAccount struct {
	Name         string
	Identifier   Identifier
	Transactions []uint64
}

// HardwareWalletAccount - a ledger device attached to the account
type HardwareWalletAccount struct {
	Name         string
	Principal    []byte
	Transactions []uint64
}

// NamedCanister - a canister the user has chosen to track
type NamedCanister struct {
	Name       string
	CanisterID []byte
}

// New - an empty account for a principal
func New(principal []byte) *Account {
	return &Account{
		Principal:   append([]byte{}, principal...),
		Identifier:  IdentifierFor(principal, [SubAccountLength]byte{}),
		SubAccounts: make(map[uint8]*SubAccount),
	}
}

// AppendTransaction - record a transaction against the default sub-account
func (a *Account) AppendTransaction(transactionIndex uint64) {
	a.DefaultAccountTransactions = append(a.DefaultAccountTransactions, transactionIndex)
}

// CreateSubAccount - add (or replace) a named sub-account
func (a *Account) CreateSubAccount(index uint8, name string) *SubAccount {
	if nil == a.SubAccounts {
		a.SubAccounts = make(map[uint8]*SubAccount)
	}
	sub := [SubAccountLength]byte{}
	sub[SubAccountLength-1] = index
	s := &SubAccount{
		Name:       name,
		Identifier: IdentifierFor(a.Principal, sub),
	}
	a.SubAccounts[index] = s
	return s
}

// RenameSubAccount - change the name of an existing sub-account
func (a *Account) RenameSubAccount(index uint8, name string) error {
	s, ok := a.SubAccounts[index]
	if !ok {
		return fault.ErrSubAccountNotFound
	}
	s.Name = name
	return nil
}

// AppendSubAccountTransaction - record a transaction against a sub-account
func (a *Account) AppendSubAccountTransaction(index uint8, transactionIndex uint64) error {
	s, ok := a.SubAccounts[index]
	if !ok {
		return fault.ErrSubAccountNotFound
	}
	s.Transactions = append(s.Transactions, transactionIndex)
	return nil
}

// AttachCanister - track a canister under a name
func (a *Account) AttachCanister(name string, canisterID []byte) error {
	for _, c := range a.Canisters {
		if bytes.Equal(c.CanisterID, canisterID) {
			return fault.ErrCanisterAlreadyAttached
		}
	}
	if len(a.Canisters) >= MaximumCanisters {
		return fault.ErrTooManyCanisters
	}
	a.Canisters = append(a.Canisters, &NamedCanister{
		Name:       name,
		CanisterID: append([]byte{}, canisterID...),
	})
	return nil
}

// DetachCanister - stop tracking a canister
func (a *Account) DetachCanister(canisterID []byte) error {
	for i, c := range a.Canisters {
		if bytes.Equal(c.CanisterID, canisterID) {
			a.Canisters = append(a.Canisters[:i], a.Canisters[i+1:]...)
			return nil
		}
	}
	return fault.ErrCanisterNotFound
}

// Equal - compare two accounts by their packed form
func (a *Account) Equal(b *Account) bool {
	if nil == a || nil == b {
		return a == b
	}
	return bytes.Equal(a.Encode(), b.Encode())
}

// Clone - deep copy via the packed form
func (a *Account) Clone() *Account {
	c, err := Decode(a.Encode())
	fault.PanicIfError("account clone", err)
	return c
}
