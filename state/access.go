// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package state

import (
	"github.com/bitmark-inc/walletd/migration"
	"github.com/bitmark-inc/walletd/schema"
	"github.com/bitmark-inc/walletd/storage"
)

// Stats - summary for the administrative interface
type Stats struct {
	Schema     string            `json:"schema"`
	Accounts   uint64            `json:"accounts"`
	Countdown  uint64            `json:"migrationCountdown"`
	Migration  *migration.Status `json:"migration,omitempty"`
	Completed  uint64            `json:"migrationsCompleted"`
	Aborted    uint64            `json:"migrationsAborted"`
	Legacy     bool              `json:"legacy"`
	Partitions map[string]uint64 `json:"partitions,omitempty"`
}

// Invoke - run f as one invocation with exclusive access to the
// accounts
func (s *State) Invoke(f func(storage.Store) error) error {
	s.Lock()
	defer s.Unlock()
	return f(s.accounts)
}

// Accounts - the account store; only use from inside Invoke
func (s *State) Accounts() storage.Store {
	return s.accounts
}

// IsLegacy - true until a legacy memory has been converted
func (s *State) IsLegacy() bool {
	s.Lock()
	defer s.Unlock()
	return nil == s.partitions
}

// Stats - current schema, size and migration progress
func (s *State) Stats() *Stats {
	s.Lock()
	defer s.Unlock()

	completed, aborted := s.accounts.Counters()
	stats := &Stats{
		Schema:    s.accounts.SchemaLabel().String(),
		Accounts:  s.accounts.Len(),
		Countdown: s.accounts.Countdown(),
		Migration: s.accounts.Migration(),
		Completed: completed,
		Aborted:   aborted,
		Legacy:    nil == s.partitions,
	}
	if nil != s.partitions {
		stats.Partitions = s.partitions.Sizes()
	}
	return stats
}

// StartMigration - request a move to another layout; repeating the
// request or naming the current layout does nothing
func (s *State) StartMigration(label schema.Label) error {
	s.Lock()
	defer s.Unlock()
	return s.accounts.RequestMigration(label)
}

// StepMigration - copy up to n records; a no-op when stable
func (s *State) StepMigration(n int) (int, error) {
	s.Lock()
	defer s.Unlock()
	return s.accounts.Step(n)
}

// MigrationCountdown - estimated steps left
func (s *State) MigrationCountdown() uint64 {
	s.Lock()
	defer s.Unlock()
	return s.accounts.Countdown()
}

// SetLastLedgerBlock - record ledger synchronisation progress
func (s *State) SetLastLedgerBlock(block uint64) {
	s.Lock()
	defer s.Unlock()
	s.lastLedgerBlock = block
}

// LastLedgerBlock - ledger synchronisation progress
func (s *State) LastLedgerBlock() uint64 {
	s.Lock()
	defer s.Unlock()
	return s.lastLedgerBlock
}
