// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/walletd/configuration"
	"github.com/bitmark-inc/walletd/migration"
	"github.com/bitmark-inc/walletd/partition"
	"github.com/bitmark-inc/walletd/schema"
	"github.com/bitmark-inc/walletd/state"
)

// basic defaults (directories and files are relative to the "DataDirectory" from Configuration file)
const (
	defaultDataDirectory = "" // this will error; use "." for the same directory as the config file

	defaultMemoryFile = "walletd.memory"
	defaultSchema     = "map"

	defaultCacheExpiry = 120 // seconds

	defaultStepInterval = 1000 // milliseconds
	defaultStepRate     = 1000 // records per second

	defaultLogDirectory = "log"
	defaultLogFile      = "walletd.log"
	defaultLogCount     = 10          //  number of log files retained
	defaultLogSize      = 1024 * 1024 // rotate when <logfile> exceeds this size
)

// to hold log levels
type LoglevelMap map[string]string

// path expanded or calculated defaults
var (
	defaultLogLevels = LoglevelMap{
		"main":            "info",
		"state":           "info",
		"migration":       "info",
		logger.DefaultTag: "critical",
	}
)

// CacheType - paged record cache
type CacheType struct {
	ExpirySeconds int `gluamapper:"expiry_seconds" json:"expiry_seconds"`
}

// MigrationType - schema migration control; re-read when the file changes
type MigrationType struct {
	Target               string  `gluamapper:"target" json:"target"`
	StepSize             int     `gluamapper:"step_size" json:"step_size"`
	IntervalMilliseconds int     `gluamapper:"interval_milliseconds" json:"interval_milliseconds"`
	Rate                 float64 `gluamapper:"rate" json:"rate"`
}

// Configuration - the whole configuration file
type Configuration struct {
	DataDirectory string               `gluamapper:"data_directory" json:"data_directory"`
	PidFile       string               `gluamapper:"pidfile" json:"pidfile"`
	MemoryFile    string               `gluamapper:"memory_file" json:"memory_file"`
	MaximumPages  uint64               `gluamapper:"maximum_pages" json:"maximum_pages"`
	Schema        string               `gluamapper:"schema" json:"schema"`
	BucketPages   uint64               `gluamapper:"bucket_pages" json:"bucket_pages"`
	Cache         CacheType            `gluamapper:"cache" json:"cache"`
	Migration     MigrationType        `gluamapper:"migration" json:"migration"`
	Logging       logger.Configuration `gluamapper:"logging" json:"logging"`
}

// will read decode and verify the configuration
func getConfiguration(configurationFileName string) (*Configuration, error) {

	configurationFileName, err := filepath.Abs(filepath.Clean(configurationFileName))
	if nil != err {
		return nil, err
	}

	options := &Configuration{
		DataDirectory: defaultDataDirectory,
		PidFile:       "", // no PidFile by default
		MemoryFile:    defaultMemoryFile,
		Schema:        defaultSchema,
		BucketPages:   partition.DefaultBucketPages,

		Cache: CacheType{
			ExpirySeconds: defaultCacheExpiry,
		},

		Migration: MigrationType{
			Target:               "",
			StepSize:             migration.DefaultStepSize,
			IntervalMilliseconds: defaultStepInterval,
			Rate:                 defaultStepRate,
		},

		Logging: logger.Configuration{
			Directory: defaultLogDirectory,
			File:      defaultLogFile,
			Size:      defaultLogSize,
			Count:     defaultLogCount,
			Levels:    defaultLogLevels,
		},
	}

	if err := configuration.ParseConfigurationFile(configurationFileName, options); err != nil {
		return nil, err
	}

	// ensure absolute data directory
	if "" == options.DataDirectory || "~" == options.DataDirectory {
		return nil, fmt.Errorf("path: %q is not a valid directory", options.DataDirectory)
	} else if "." == options.DataDirectory {
		options.DataDirectory, _ = filepath.Split(configurationFileName)
	} else {
		options.DataDirectory = filepath.Clean(options.DataDirectory)
	}

	// this directory must exist - i.e. must be created prior to running
	if fileInfo, err := os.Stat(options.DataDirectory); err != nil {
		return nil, err
	} else if !fileInfo.IsDir() {
		return nil, fmt.Errorf("path: %q is not a directory", options.DataDirectory)
	}

	// force all relevant items to be absolute paths
	// if not, assign them to the data directory
	mustBeAbsolute := []*string{
		&options.PidFile,
		&options.MemoryFile,
		&options.Logging.Directory,
	}
	for _, f := range mustBeAbsolute {
		if "" != *f {
			*f = ensureAbsolute(options.DataDirectory, *f)
		}
	}

	// fail if any of these are not simple file names i.e. must not contain path separator
	// then add the correct directory prefix, file item is first and corresponding directory is second
	mustNotBePaths := [][2]*string{
		{&options.Logging.File, &options.Logging.Directory},
	}
	for _, f := range mustNotBePaths {
		switch filepath.Dir(*f[0]) {
		case "", ".":
			*f[0] = ensureAbsolute(*f[1], *f[0])
		default:
			return nil, fmt.Errorf("files: %q is not plain name", *f[0])
		}
	}

	if _, err := schema.Parse(options.Schema); nil != err {
		return nil, fmt.Errorf("schema: %q  error: %s", options.Schema, err)
	}
	if _, _, err := options.Migration.target(); nil != err {
		return nil, err
	}

	return options, nil
}

// layout for a freshly formatted memory
func (c *Configuration) initialSchema() schema.Label {
	label, _ := schema.Parse(c.Schema)
	return label
}

// layout parameters for the state
func (c *Configuration) stateOptions() state.Options {
	return state.Options{
		BucketPages: c.BucketPages,
		CacheExpiry: time.Duration(c.Cache.ExpirySeconds) * time.Second,
	}
}

// requested migration target, ok is false when none is set
func (m MigrationType) target() (schema.Label, bool, error) {
	if "" == m.Target {
		return 0, false, nil
	}
	label, err := schema.Parse(m.Target)
	if nil != err {
		return 0, false, fmt.Errorf("migration target: %q  error: %s", m.Target, err)
	}
	return label, true, nil
}

// stepper settings with out of range values replaced by defaults
func (m MigrationType) settings() stepSettings {
	s := stepSettings{
		stepSize: m.StepSize,
		interval: time.Duration(m.IntervalMilliseconds) * time.Millisecond,
		rate:     m.Rate,
	}
	if s.stepSize <= 0 || s.stepSize > migration.MaxStepSize {
		s.stepSize = migration.DefaultStepSize
	}
	if s.interval <= 0 {
		s.interval = defaultStepInterval * time.Millisecond
	}
	if s.rate <= 0 {
		s.rate = defaultStepRate
	}
	return s
}

// ensure the path is absolute
func ensureAbsolute(directory string, filePath string) string {
	if !filepath.IsAbs(filePath) {
		filePath = filepath.Join(directory, filePath)
	}
	return filepath.Clean(filePath)
}
