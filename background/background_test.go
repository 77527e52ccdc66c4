// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package background_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/walletd/background"
)

type ticker struct {
	ticks   int64
	stopped int64
}

func (p *ticker) Run(args interface{}, shutdown <-chan struct{}) {
	interval := args.(time.Duration)

loop:
	for {
		select {
		case <-shutdown:
			break loop
		case <-time.After(interval):
			atomic.AddInt64(&p.ticks, 1)
		}
	}
	atomic.StoreInt64(&p.stopped, 1)
}

func TestStartStop(t *testing.T) {
	p1 := &ticker{}
	p2 := &ticker{}

	h := background.Start(background.Processes{p1, p2}, time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	h.Stop()

	for i, p := range []*ticker{p1, p2} {
		assert.Equal(t, int64(1), atomic.LoadInt64(&p.stopped), "process: %d did not finish", i)
		assert.True(t, atomic.LoadInt64(&p.ticks) > 0, "process: %d never ran", i)
	}
}

func TestStopNil(t *testing.T) {
	var h *background.T
	assert.NotPanics(t, h.Stop)
}

func TestStopEmpty(t *testing.T) {
	h := background.Start(nil, nil)
	assert.NotPanics(t, h.Stop)
}
