// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package migration

import (
	"bytes"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/walletd/account"
	"github.com/bitmark-inc/walletd/fault"
	"github.com/bitmark-inc/walletd/schema"
	"github.com/bitmark-inc/walletd/storage"
)

// step sizes
const (
	MaxStepSize     = 1000
	DefaultStepSize = 100
	FinalizeCost    = 1
)

// Factory - supplies the backend for a layout
type Factory func(schema.Label) (storage.Store, error)

// FinalizeHandler - called before a target becomes authoritative; an
// error keeps the source in use
type FinalizeHandler func(schema.Label) error

// Status - state of a migration in progress
type Status struct {
	From      schema.Label `json:"from"`
	Target    schema.Label `json:"target"`
	Cursor    []byte       `json:"cursor"`
	Exhausted bool         `json:"exhausted"`
}

// Proxy - a store that can change its layout
type Proxy struct {
	log        *logger.L
	factory    Factory
	onFinalize FinalizeHandler

	authoritative storage.Store
	target        storage.Store
	cursor        []byte
	exhausted     bool

	completed uint64
	aborted   uint64
}

// New - a stable proxy over an authoritative backend
func New(authoritative storage.Store, factory Factory, onFinalize FinalizeHandler) *Proxy {
	return &Proxy{
		log:           logger.New("migration"),
		factory:       factory,
		onFinalize:    onFinalize,
		authoritative: authoritative,
	}
}

// Authoritative - the backend that serves requests
func (p *Proxy) Authoritative() storage.Store {
	return p.authoritative
}

// Target - the backend being populated, nil when stable
func (p *Proxy) Target() storage.Store {
	return p.target
}

// IsMigrating - true while a target exists
func (p *Proxy) IsMigrating() bool {
	return nil != p.target
}

// Migration - state of the current migration, nil when stable
func (p *Proxy) Migration() *Status {
	if nil == p.target {
		return nil
	}
	return &Status{
		From:      p.authoritative.SchemaLabel(),
		Target:    p.target.SchemaLabel(),
		Cursor:    append([]byte{}, p.cursor...),
		Exhausted: p.exhausted,
	}
}

// Resume - continue a migration into an already populated target
func (p *Proxy) Resume(target storage.Store, cursor []byte, exhausted bool) error {
	if target.SchemaLabel() == p.authoritative.SchemaLabel() {
		return fault.ErrSchemaMismatch
	}
	p.target = target
	p.cursor = append([]byte{}, cursor...)
	p.exhausted = exhausted
	p.log.Infof("resume: %s -> %s  cursor: %x", p.authoritative.SchemaLabel(), target.SchemaLabel(), cursor)
	return nil
}

// Counters - completed and aborted migrations
func (p *Proxy) Counters() (uint64, uint64) {
	return p.completed, p.aborted
}

// SetCounters - restore the counters after an upgrade
func (p *Proxy) SetCounters(completed uint64, aborted uint64) {
	p.completed = completed
	p.aborted = aborted
}

// RequestMigration - start moving records to a new layout
//
// already using or migrating to the label is a no-op; a migration to
// a different label is discarded first
func (p *Proxy) RequestMigration(label schema.Label) error {
	if !label.IsValid() {
		return fault.InvalidLabelError{Value: uint32(label)}
	}

	if nil != p.target {
		if p.target.SchemaLabel() == label {
			return nil
		}
		p.log.Warnf("discard migration: %s -> %s", p.authoritative.SchemaLabel(), p.target.SchemaLabel())
		p.discard()
	}
	if p.authoritative.SchemaLabel() == label {
		return nil
	}

	target, err := p.factory(label)
	if nil != err {
		return err
	}
	err = target.Clear()
	if nil != err {
		return err
	}

	key, _, ok := storage.First(p.authoritative)
	p.target = target
	p.cursor = key
	p.exhausted = !ok

	p.log.Infof("start migration: %s -> %s  records: %d", p.authoritative.SchemaLabel(), label, p.authoritative.Len())
	return nil
}

// Step - copy up to n records to the target, finalizing when the
// source is exhausted; returns the number of records copied
func (p *Proxy) Step(n int) (int, error) {
	if nil == p.target {
		return 0, nil
	}
	if n < 1 {
		n = 1
	} else if n > MaxStepSize {
		n = MaxStepSize
	}

	copied := 0
	if !p.exhausted {
		keys, values, next, more := p.collect(n)

		// the cursor only moves once the whole batch is stored, so
		// an interrupted step is repeated from the same position
		for i, key := range keys {
			err := p.target.Insert(key, values[i])
			if nil != err {
				return copied, err
			}
			copied += 1
		}
		p.cursor = next
		p.exhausted = !more
		p.log.Debugf("step: copied: %d  next: %x", copied, next)
	}

	if p.exhausted {
		return copied, p.finalize()
	}
	return copied, nil
}

// read a batch from the cursor and the key that follows it
func (p *Proxy) collect(n int) ([][]byte, []*account.Account, []byte, bool) {
	keys := make([][]byte, 0, n)
	values := make([]*account.Account, 0, n)

	it := p.authoritative.Iterator(p.cursor)
	defer it.Release()

	for len(keys) < n && it.Next() {
		keys = append(keys, it.Key())
		values = append(values, it.Value())
	}
	if len(keys) < n || !it.Next() {
		return keys, values, nil, false
	}
	return keys, values, it.Key(), true
}

// Countdown - estimated steps left, zero when stable
func (p *Proxy) Countdown() uint64 {
	if nil == p.target {
		return 0
	}
	source := p.authoritative.Len()
	target := p.target.Len()
	unmigrated := uint64(0)
	if source > target {
		unmigrated = source - target
	}
	return (unmigrated+DefaultStepSize-1)/DefaultStepSize + FinalizeCost
}

func (p *Proxy) finalize() error {
	from := p.authoritative.SchemaLabel()
	to := p.target.SchemaLabel()

	if p.authoritative.Len() != p.target.Len() {
		return p.abort(fault.ErrMigrationLengthMismatch)
	}

	sk, sv, sok := storage.First(p.authoritative)
	tk, tv, tok := storage.First(p.target)
	if !samePair(sk, sv, sok, tk, tv, tok) {
		return p.abort(fault.ErrMigrationFirstMismatch)
	}

	sk, sv, sok = p.authoritative.Last()
	tk, tv, tok = p.target.Last()
	if !samePair(sk, sv, sok, tk, tv, tok) {
		return p.abort(fault.ErrMigrationLastMismatch)
	}

	if nil != p.onFinalize {
		err := p.onFinalize(to)
		if nil != err {
			return p.abort(err)
		}
	}

	old := p.authoritative
	p.authoritative = p.target
	p.target = nil
	p.cursor = nil
	p.exhausted = false
	p.completed += 1

	err := old.Clear()
	if nil != err {
		p.log.Warnf("clear previous store: %s  error: %s", from, err)
	}

	p.log.Infof("finished migration: %s -> %s  records: %d", from, to, p.authoritative.Len())
	return nil
}

func (p *Proxy) abort(err error) error {
	p.log.Warnf("abort migration: %s -> %s  error: %s", p.authoritative.SchemaLabel(), p.target.SchemaLabel(), err)
	p.discard()
	p.aborted += 1
	return err
}

// drop the target and return to stable
func (p *Proxy) discard() {
	err := p.target.Clear()
	if nil != err {
		p.log.Warnf("clear target: %s  error: %s", p.target.SchemaLabel(), err)
	}
	p.target = nil
	p.cursor = nil
	p.exhausted = false
}

func samePair(k1 []byte, v1 *account.Account, ok1 bool, k2 []byte, v2 *account.Account, ok2 bool) bool {
	if ok1 != ok2 {
		return false
	}
	if !ok1 {
		return true
	}
	return bytes.Equal(k1, k2) && v1.Equal(v2)
}
