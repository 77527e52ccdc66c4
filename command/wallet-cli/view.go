// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/bitmark-inc/walletd/account"
)

type subAccountView struct {
	Index        uint8    `json:"index"`
	Name         string   `json:"name"`
	Identifier   string   `json:"identifier"`
	Transactions []uint64 `json:"transactions"`
}

type hardwareWalletView struct {
	Name         string   `json:"name"`
	Principal    string   `json:"principal"`
	Transactions []uint64 `json:"transactions"`
}

type canisterView struct {
	Name       string `json:"name"`
	CanisterID string `json:"canisterId"`
}

type accountView struct {
	Key             string                `json:"key"`
	Principal       string                `json:"principal"`
	Identifier      string                `json:"identifier"`
	Transactions    []uint64              `json:"transactions"`
	SubAccounts     []*subAccountView     `json:"subAccounts"`
	HardwareWallets []*hardwareWalletView `json:"hardwareWallets"`
	Canisters       []*canisterView       `json:"canisters"`
}

func newAccountView(key []byte, a *account.Account) *accountView {
	v := &accountView{
		Key:             hex.EncodeToString(key),
		Principal:       hex.EncodeToString(a.Principal),
		Identifier:      a.Identifier.String(),
		Transactions:    a.DefaultAccountTransactions,
		SubAccounts:     make([]*subAccountView, 0, len(a.SubAccounts)),
		HardwareWallets: make([]*hardwareWalletView, 0, len(a.HardwareWalletAccounts)),
		Canisters:       make([]*canisterView, 0, len(a.Canisters)),
	}

	for index, s := range a.SubAccounts {
		v.SubAccounts = append(v.SubAccounts, &subAccountView{
			Index:        index,
			Name:         s.Name,
			Identifier:   s.Identifier.String(),
			Transactions: s.Transactions,
		})
	}
	sort.Slice(v.SubAccounts, func(i, j int) bool {
		return v.SubAccounts[i].Index < v.SubAccounts[j].Index
	})

	for _, h := range a.HardwareWalletAccounts {
		v.HardwareWallets = append(v.HardwareWallets, &hardwareWalletView{
			Name:         h.Name,
			Principal:    hex.EncodeToString(h.Principal),
			Transactions: h.Transactions,
		})
	}
	for _, c := range a.Canisters {
		v.Canisters = append(v.Canisters, &canisterView{
			Name:       c.Name,
			CanisterID: hex.EncodeToString(c.CanisterID),
		})
	}
	return v
}

func printJson(handle io.Writer, message interface{}) error {

	b, err := json.MarshalIndent(message, "", "  ")
	if nil != err {
		return err
	}

	fmt.Fprintf(handle, "%s\n", b)
	return nil
}
