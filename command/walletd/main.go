// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bitmark-inc/exitwithstatus"
	"github.com/bitmark-inc/getoptions"
	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/walletd/background"
	"github.com/bitmark-inc/walletd/memory"
	"github.com/bitmark-inc/walletd/state"
)

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

// main program
func main() {
	// ensure exit handler is first
	defer exitwithstatus.Handler()

	flags := []getoptions.Option{
		{Long: "help", HasArg: getoptions.NO_ARGUMENT, Short: 'h'},
		{Long: "verbose", HasArg: getoptions.NO_ARGUMENT, Short: 'v'},
		{Long: "quiet", HasArg: getoptions.NO_ARGUMENT, Short: 'q'},
		{Long: "version", HasArg: getoptions.NO_ARGUMENT, Short: 'V'},
		{Long: "config-file", HasArg: getoptions.REQUIRED_ARGUMENT, Short: 'c'},
	}

	program, options, arguments, err := getoptions.GetOS(flags)
	if nil != err {
		exitwithstatus.Message("%s: getoptions error: %s", program, err)
	}

	if len(options["version"]) > 0 {
		processSetupCommand(program, []string{"version"})
		return
	}

	if len(options["help"]) > 0 {
		processSetupCommand(program, []string{"help"})
		return
	}

	// these commands do not require the configuration
	if len(arguments) > 0 && processSetupCommand(program, arguments) {
		return
	}

	if 1 != len(options["config-file"]) {
		exitwithstatus.Message("%s: only one config-file option is required, %d were detected", program, len(options["config-file"]))
	}

	// read options and parse the configuration file
	configurationFile := options["config-file"][0]
	theConfiguration, err := getConfiguration(configurationFile)
	if nil != err {
		exitwithstatus.Message("%s: failed to read configuration from: %q  error: %s", program, configurationFile, err)
	}

	// these commands require the configuration and
	// perform enquiries on the configuration
	if len(arguments) > 0 && processConfigCommand(program, arguments, theConfiguration) {
		return
	}

	// start logging
	if err = logger.Initialise(theConfiguration.Logging); nil != err {
		exitwithstatus.Message("%s: logger setup failed with error: %s", program, err)
	}
	defer logger.Finalise()

	// create a logger channel for the main program
	log := logger.New("main")
	defer log.Info("finished")
	log.Info("starting…")
	log.Infof("version: %s", version)
	log.Debugf("theConfiguration: %v", theConfiguration)

	// optional PID file
	// use if not running under a supervisor program like daemon(8)
	if "" != theConfiguration.PidFile {
		lockFile, err := os.OpenFile(theConfiguration.PidFile, os.O_WRONLY|os.O_EXCL|os.O_CREATE, os.ModeExclusive|0600)
		if err != nil {
			if os.IsExist(err) {
				exitwithstatus.Message("%s: another instance is already running", program)
			}
			exitwithstatus.Message("%s: PID file: %q creation failed, error: %s", program, theConfiguration.PidFile, err)
		}
		fmt.Fprintf(lockFile, "%d\n", os.Getpid())
		lockFile.Close()
		defer os.Remove(theConfiguration.PidFile)
	}

	// persistent memory
	log.Infof("memory file: %q", theConfiguration.MemoryFile)
	raw, err := memory.OpenFile(theConfiguration.MemoryFile, theConfiguration.MaximumPages, false)
	if nil != err {
		log.Criticalf("memory file open error: %s", err)
		exitwithstatus.Message("memory file open error: %s", err)
	}
	defer raw.Close()

	theState, err := openState(raw, theConfiguration)
	if nil != err {
		log.Criticalf("state restore error: %s", err)
		exitwithstatus.Message("state restore error: %s", err)
	}
	log.Infof("stats: %+v", *theState.Stats())

	theStepper := newStepper(theState, theConfiguration.Migration.settings())
	apply := func(m MigrationType) {
		applyMigration(log, theState, theStepper, m)
	}
	apply(theConfiguration.Migration)

	theWatcher, err := newWatcher(configurationFile, apply)
	if nil != err {
		log.Criticalf("configuration watcher error: %s", err)
		exitwithstatus.Message("configuration watcher error: %s", err)
	}

	processes := background.Processes{
		theStepper,
		theWatcher,
	}
	handle := background.Start(processes, nil)

	// wait for CTRL-C before shutting down to allow manual testing
	if 0 == len(options["quiet"]) {
		fmt.Printf("\n\nWaiting for CTRL-C (SIGINT) or 'kill <pid>' (SIGTERM)…")
	}

	// turn Signals into channel messages
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	sig := <-ch
	log.Infof("received signal: %v", sig)
	if 0 == len(options["quiet"]) {
		fmt.Printf("\nreceived signal: %v\n", sig)
		fmt.Printf("\nshutting down…\n")
	}

	log.Info("shutting down…")
	handle.Stop()

	// upgrade boundary: everything held on the heap goes to memory
	err = theState.Save()
	if nil != err {
		log.Criticalf("state save error: %s", err)
		exitwithstatus.Message("state save error: %s", err)
	}
	err = raw.Sync()
	if nil != err {
		log.Criticalf("memory file sync error: %s", err)
		exitwithstatus.Message("memory file sync error: %s", err)
	}
}

// restore the state held by a memory, formatting an empty one
func openState(raw memory.Memory, c *Configuration) (*state.State, error) {
	if 0 == raw.Size() {
		return state.New(raw, c.initialSchema(), c.stateOptions())
	}
	return state.Restore(raw, c.stateOptions())
}

// apply the migration section of a configuration
func applyMigration(log *logger.L, s *state.State, st *stepper, m MigrationType) {
	st.update(m.settings())

	label, ok, err := m.target()
	if nil != err {
		log.Errorf("migration: %s", err)
		return
	}
	if !ok {
		return
	}
	err = s.StartMigration(label)
	if nil != err {
		log.Errorf("start migration to: %s  error: %s", label, err)
		return
	}
	log.Infof("migration target: %s  countdown: %d", label, s.MigrationCountdown())
}
