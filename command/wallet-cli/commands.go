// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/hex"
	"fmt"

	"github.com/urfave/cli"
	"golang.org/x/time/rate"

	"github.com/bitmark-inc/walletd/account"
	"github.com/bitmark-inc/walletd/fault"
	"github.com/bitmark-inc/walletd/migration"
	"github.com/bitmark-inc/walletd/ratelimit"
	"github.com/bitmark-inc/walletd/schema"
	"github.com/bitmark-inc/walletd/state"
	"github.com/bitmark-inc/walletd/storage"
)

func runInit(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)

	if 0 != m.raw.Size() {
		return fault.ErrAlreadyInitialised
	}
	label, err := schema.Parse(c.String("schema"))
	if nil != err {
		return err
	}

	m.state, err = state.New(m.raw, label, m.options)
	if nil != err {
		return err
	}
	m.save = true

	return printJson(m.w, m.state.Stats())
}

func runStats(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)
	return printJson(m.w, m.state.Stats())
}

func runMigrate(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)

	target := c.String("target")
	if "" == target {
		return fmt.Errorf("target layout is required")
	}
	label, err := schema.Parse(target)
	if nil != err {
		return err
	}

	err = m.state.StartMigration(label)
	if nil != err {
		return err
	}
	m.save = true

	return printJson(m.w, m.state.Stats())
}

type stepResult struct {
	Steps     int    `json:"steps"`
	Copied    int    `json:"copied"`
	Countdown uint64 `json:"migrationCountdown"`
	Schema    string `json:"schema"`
}

func runStep(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)

	count := c.Int("count")
	if count <= 0 || count > migration.MaxStepSize {
		return fault.ErrInvalidCount
	}

	limit := rate.Inf
	if r := c.Float64("rate"); r > 0 {
		limit = rate.Limit(r)
	}
	limiter := rate.NewLimiter(limit, migration.MaxStepSize)

	result := stepResult{}
	for 0 != m.state.MigrationCountdown() {
		err := ratelimit.LimitN(limiter, count, migration.MaxStepSize)
		if nil != err {
			return err
		}

		copied, err := m.state.StepMigration(count)
		result.Copied += copied
		result.Steps += 1
		m.save = true
		if nil != err {
			return err
		}
		if m.verbose {
			fmt.Fprintf(m.e, "step: %d  copied: %d\n", result.Steps, copied)
		}
		if !c.Bool("all") {
			break
		}
	}

	stats := m.state.Stats()
	result.Countdown = stats.Countdown
	result.Schema = stats.Schema
	return printJson(m.w, result)
}

func runGet(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)

	key, err := parseKey(c.String("key"))
	if nil != err {
		return err
	}
	if 0 == len(key) {
		return fmt.Errorf("account key is required")
	}

	var view *accountView
	err = m.state.Invoke(func(accounts storage.Store) error {
		a, ok := accounts.Get(key)
		if !ok {
			return fmt.Errorf("account: %x not found", key)
		}
		view = newAccountView(key, a)
		return nil
	})
	if nil != err {
		return err
	}
	return printJson(m.w, view)
}

func runList(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)

	from, err := parseKey(c.String("from"))
	if nil != err {
		return err
	}
	count := c.Int("count")
	if count <= 0 {
		return fault.ErrInvalidCount
	}

	views := make([]*accountView, 0, count)
	err = m.state.Invoke(func(accounts storage.Store) error {
		it := accounts.Iterator(from)
		defer it.Release()
		for len(views) < count && it.Next() {
			views = append(views, newAccountView(it.Key(), it.Value()))
		}
		return nil
	})
	if nil != err {
		return err
	}
	return printJson(m.w, views)
}

func runInsertTestAccounts(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)

	count := c.Int("count")
	if count <= 0 {
		return fault.ErrInvalidCount
	}
	start := c.Uint64("start")
	size := account.ToySize{
		Transactions: c.Int("transactions"),
		Canisters:    c.Int("canisters"),
	}

	err := m.state.Invoke(func(accounts storage.Store) error {
		for i := uint64(0); i < uint64(count); i += 1 {
			index := start + i
			err := accounts.Insert(account.ToyKey(index), account.ToyAccount(index, size))
			if nil != err {
				return err
			}
		}
		return nil
	})
	if nil != err {
		return err
	}
	m.save = true

	return printJson(m.w, m.state.Stats())
}

// a key is given in hex; empty means no key
func parseKey(s string) ([]byte, error) {
	key, err := hex.DecodeString(s)
	if nil != err {
		return nil, err
	}
	if len(key) > storage.MaxKeyLength {
		return nil, fault.ErrKeyTooLong
	}
	return key, nil
}
