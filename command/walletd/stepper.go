// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"sync"
	"time"

	"github.com/bitmark-inc/logger"
	"golang.org/x/time/rate"

	"github.com/bitmark-inc/walletd/migration"
	"github.com/bitmark-inc/walletd/ratelimit"
	"github.com/bitmark-inc/walletd/state"
)

type stepSettings struct {
	stepSize int
	interval time.Duration
	rate     float64 // records per second
}

// stepper - advance any migration in progress once per interval
type stepper struct {
	sync.Mutex

	log      *logger.L
	state    *state.State
	settings stepSettings
	limiter  *rate.Limiter
}

func newStepper(s *state.State, settings stepSettings) *stepper {
	return &stepper{
		log:      logger.New("stepper"),
		state:    s,
		settings: settings,
		limiter:  rate.NewLimiter(rate.Limit(settings.rate), migration.MaxStepSize),
	}
}

func (st *stepper) update(settings stepSettings) {
	st.Lock()
	defer st.Unlock()

	if settings != st.settings {
		st.log.Infof("step size: %d  interval: %s  rate: %g", settings.stepSize, settings.interval, settings.rate)
	}
	st.settings = settings
	st.limiter.SetLimit(rate.Limit(settings.rate))
}

func (st *stepper) current() stepSettings {
	st.Lock()
	defer st.Unlock()
	return st.settings
}

// step - copy one batch if a migration is in progress
func (st *stepper) step() (int, error) {
	if 0 == st.state.MigrationCountdown() {
		return 0, nil
	}

	settings := st.current()
	err := ratelimit.LimitN(st.limiter, settings.stepSize, migration.MaxStepSize)
	if nil != err {
		return 0, err
	}

	copied, err := st.state.StepMigration(settings.stepSize)
	if nil != err {
		return copied, err
	}

	stats := st.state.Stats()
	if nil == stats.Migration {
		st.log.Infof("migration finished: schema: %s  accounts: %d", stats.Schema, stats.Accounts)
	} else {
		st.log.Debugf("copied: %d  countdown: %d", copied, stats.Countdown)
	}
	return copied, nil
}

// tick - one timer event, any failure is logged
func (st *stepper) tick() error {
	copied, err := st.step()
	if nil != err {
		st.log.Warnf("step: copied: %d  error: %s", copied, err)
	}
	return err
}

// Run - background process
func (st *stepper) Run(args interface{}, shutdown <-chan struct{}) {
	st.log.Info("starting…")

	timer := time.After(st.current().interval)
loop:
	for {
		select {
		case <-shutdown:
			break loop
		case <-timer:
			st.tick()
			timer = time.After(st.current().interval)
		}
	}

	st.log.Info("stopped")
}
