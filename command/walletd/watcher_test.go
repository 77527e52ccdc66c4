// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"io/ioutil"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/walletd/background"
)

func TestWatcherAppliesChanges(t *testing.T) {
	name, cleanup := writeConfiguration(t, `return { data_directory = "." }`)
	defer cleanup()

	applied := make(chan MigrationType, 10)
	w, err := newWatcher(name, func(m MigrationType) {
		applied <- m
	})
	require.NoError(t, err)

	h := background.Start(background.Processes{w}, nil)
	defer h.Stop()

	// let the watcher start reading events
	time.Sleep(50 * time.Millisecond)

	content := `return { data_directory = ".", migration = { target = "paged", step_size = 7 } }`
	require.NoError(t, ioutil.WriteFile(name, []byte(content), 0600))

	select {
	case m := <-applied:
		assert.Equal(t, "paged", m.Target)
		assert.Equal(t, 7, m.StepSize)
	case <-time.After(5 * time.Second):
		t.Fatal("configuration change was not applied")
	}
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	name, cleanup := writeConfiguration(t, `return { data_directory = "." }`)
	defer cleanup()

	applied := make(chan MigrationType, 10)
	w, err := newWatcher(name, func(m MigrationType) {
		applied <- m
	})
	require.NoError(t, err)

	h := background.Start(background.Processes{w}, nil)
	defer h.Stop()

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, ioutil.WriteFile(name+".bak", []byte("x"), 0600))

	select {
	case <-applied:
		t.Fatal("unrelated file applied")
	case <-time.After(200 * time.Millisecond):
	}
}
