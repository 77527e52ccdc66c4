// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package configuration_test

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/walletd/configuration"
	"github.com/bitmark-inc/walletd/fault"
)

type migrationSection struct {
	Target   string `gluamapper:"target"`
	StepSize int    `gluamapper:"step_size"`
}

type testConfiguration struct {
	DataDirectory string            `gluamapper:"data_directory"`
	Schema        string            `gluamapper:"schema"`
	BucketPages   int               `gluamapper:"bucket_pages"`
	Migration     migrationSection  `gluamapper:"migration"`
	Levels        map[string]string `gluamapper:"levels"`
}

const testFile = `
local M = {}
M.data_directory = arg[0]:match("(.*/)")
M.schema = "map"
M.bucket_pages = 4
M.migration = {
    target = "unbounded",
    step_size = 2 * 50,
}
M.levels = {
    main = "info",
    DEFAULT = "critical",
}
return M
`

func writeFile(t *testing.T, content string) (string, func()) {
	dir, err := ioutil.TempDir("", "configuration")
	require.NoError(t, err)
	name := filepath.Join(dir, "walletd.conf")
	require.NoError(t, ioutil.WriteFile(name, []byte(content), 0600))
	return name, func() { os.RemoveAll(dir) }
}

func TestParse(t *testing.T) {
	name, cleanup := writeFile(t, testFile)
	defer cleanup()

	config := &testConfiguration{
		BucketPages: 128,
	}
	err := configuration.ParseConfigurationFile(name, config)
	require.NoError(t, err)

	assert.Equal(t, filepath.Dir(name)+"/", config.DataDirectory)
	assert.Equal(t, "map", config.Schema)
	assert.Equal(t, 4, config.BucketPages)
	assert.Equal(t, "unbounded", config.Migration.Target)
	assert.Equal(t, 100, config.Migration.StepSize)
	assert.Equal(t, "critical", config.Levels["DEFAULT"])
}

func TestDefaultsSurvive(t *testing.T) {
	name, cleanup := writeFile(t, `return { schema = "paged" }`)
	defer cleanup()

	config := &testConfiguration{
		BucketPages: 128,
	}
	err := configuration.ParseConfigurationFile(name, config)
	require.NoError(t, err)
	assert.Equal(t, "paged", config.Schema)
	assert.Equal(t, 128, config.BucketPages)
}

func TestSyntaxError(t *testing.T) {
	name, cleanup := writeFile(t, `return {`)
	defer cleanup()

	err := configuration.ParseConfigurationFile(name, &testConfiguration{})
	assert.Error(t, err)
}

func TestMissingTable(t *testing.T) {
	name, cleanup := writeFile(t, `local x = 1`)
	defer cleanup()

	err := configuration.ParseConfigurationFile(name, &testConfiguration{})
	assert.Equal(t, fault.ErrMissingParameters, err)
}

func TestNotAStructPointer(t *testing.T) {
	config := testConfiguration{}
	err := configuration.ParseConfigurationFile("unused", config)
	assert.Equal(t, fault.ErrInvalidStructPointer, err)
}
