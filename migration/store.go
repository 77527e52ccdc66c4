// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package migration

import (
	"github.com/bitmark-inc/walletd/account"
	"github.com/bitmark-inc/walletd/schema"
	"github.com/bitmark-inc/walletd/storage"
)

// the proxy is itself a store; every operation goes to the
// authoritative backend

// Insert - forward
func (p *Proxy) Insert(key []byte, a *account.Account) error {
	return p.authoritative.Insert(key, a)
}

// Contains - forward
func (p *Proxy) Contains(key []byte) bool {
	return p.authoritative.Contains(key)
}

// Get - forward
func (p *Proxy) Get(key []byte) (*account.Account, bool) {
	return p.authoritative.Get(key)
}

// Remove - forward
func (p *Proxy) Remove(key []byte) bool {
	return p.authoritative.Remove(key)
}

// Len - forward
func (p *Proxy) Len() uint64 {
	return p.authoritative.Len()
}

// Update - forward
func (p *Proxy) Update(key []byte, f func(*account.Account) error) (bool, error) {
	return p.authoritative.Update(key, f)
}

// Iterator - forward
func (p *Proxy) Iterator(from []byte) storage.Iterator {
	return p.authoritative.Iterator(from)
}

// Last - forward
func (p *Proxy) Last() ([]byte, *account.Account, bool) {
	return p.authoritative.Last()
}

// Clear - empty the authoritative backend; a migration in progress
// starts again over the now empty source
func (p *Proxy) Clear() error {
	err := p.authoritative.Clear()
	if nil != err {
		return err
	}
	if nil != p.target {
		err = p.target.Clear()
		p.cursor = nil
		p.exhausted = true
	}
	return err
}

// SchemaLabel - layout of the authoritative backend
func (p *Proxy) SchemaLabel() schema.Label {
	return p.authoritative.SchemaLabel()
}
