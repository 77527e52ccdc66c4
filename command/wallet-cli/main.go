// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/bitmark-inc/logger"
	"github.com/urfave/cli"

	"github.com/bitmark-inc/walletd/fault"
	"github.com/bitmark-inc/walletd/memory"
	"github.com/bitmark-inc/walletd/migration"
	"github.com/bitmark-inc/walletd/state"
)

type metadata struct {
	file    string
	raw     *memory.File
	state   *state.State
	options state.Options
	save    bool
	verbose bool
	e       io.Writer
	w       io.Writer
}

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

func main() {

	logging := logger.Configuration{
		Directory: os.TempDir(),
		File:      "wallet-cli.log",
		Size:      1048576,
		Count:     2,
		Levels: map[string]string{
			logger.DefaultTag: "critical",
		},
	}
	if err := logger.Initialise(logging); nil != err {
		fmt.Fprintf(os.Stderr, "logger setup failed with error: %s\n", err)
		os.Exit(1)
	}
	defer logger.Finalise()

	app := newApp(os.Stdout, os.Stderr)
	err := app.Run(os.Args)
	if nil != err {
		fmt.Fprintf(app.ErrWriter, "terminated with error: %s\n", err)
		logger.Finalise()
		os.Exit(1)
	}
}

func newApp(w io.Writer, e io.Writer) *cli.App {

	app := cli.NewApp()
	app.Name = "wallet-cli"
	app.Usage = "inspect and maintain a wallet account memory image"
	app.Version = version
	app.HideVersion = true

	app.Writer = w
	app.ErrWriter = e

	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "verbose, v",
			Usage: " verbose result",
		},
		cli.StringFlag{
			Name:  "memory, m",
			Value: "",
			Usage: "*memory image `FILE`",
		},
		cli.Uint64Flag{
			Name:  "bucket-pages, b",
			Value: 0,
			Usage: " partition bucket size for a new image `PAGES` (0 = default)",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:      "init",
			Usage:     "format an empty memory image",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "schema, s",
					Value: "map",
					Usage: " account layout `NAME` [map|paged|unbounded]",
				},
			},
			Action: runInit,
		},
		{
			Name:   "stats",
			Usage:  "display schema, account count and migration progress",
			Action: runStats,
		},
		{
			Name:      "migrate",
			Usage:     "start a migration to another account layout",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "target, t",
					Value: "",
					Usage: "*account layout `NAME` [map|paged|unbounded]",
				},
			},
			Action: runMigrate,
		},
		{
			Name:  "step",
			Usage: "copy records of a migration in progress",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "count, c",
					Value: migration.DefaultStepSize,
					Usage: " records per step `COUNT`",
				},
				cli.BoolFlag{
					Name:  "all, a",
					Usage: " repeat until the migration finishes",
				},
				cli.Float64Flag{
					Name:  "rate, r",
					Value: 0,
					Usage: " records per second `RATE` (0 = unlimited)",
				},
			},
			Action: runStep,
		},
		{
			Name:      "get",
			Usage:     "display one account",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "key, k",
					Value: "",
					Usage: "*account key `HEX`",
				},
			},
			Action: runGet,
		},
		{
			Name:  "list",
			Usage: "display accounts in key order",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "from, f",
					Value: "",
					Usage: " first account key `HEX`",
				},
				cli.IntFlag{
					Name:  "count, c",
					Value: 10,
					Usage: " maximum accounts `COUNT`",
				},
			},
			Action: runList,
		},
		{
			Name:  "insert-test-accounts",
			Usage: "insert generated accounts",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "count, c",
					Value: 10,
					Usage: " number of accounts `COUNT`",
				},
				cli.Uint64Flag{
					Name:  "start, s",
					Value: 0,
					Usage: " index of the first account `INDEX`",
				},
				cli.IntFlag{
					Name:  "transactions, t",
					Value: 0,
					Usage: " transactions per account `COUNT`",
				},
				cli.IntFlag{
					Name:  "canisters",
					Value: 0,
					Usage: " canisters per account `COUNT`",
				},
			},
			Action: runInsertTestAccounts,
		},
		{
			Name:  "version",
			Usage: "display wallet-cli version",
			Action: func(c *cli.Context) error {
				fmt.Fprintf(c.App.Writer, "%s\n", version)
				return nil
			},
		},
	}

	app.Before = func(c *cli.Context) error {

		e := c.App.ErrWriter
		w := c.App.Writer
		verbose := c.GlobalBool("verbose")

		command := c.Args().Get(0)
		switch command {
		case "", "version", "help", "h":
			return nil
		}

		file := c.GlobalString("memory")
		if "" == file {
			return fmt.Errorf("memory image file is required")
		}
		if verbose {
			fmt.Fprintf(e, "memory: %q\n", file)
		}

		raw, err := memory.OpenFile(file, 0, false)
		if nil != err {
			return err
		}

		m := &metadata{
			file: file,
			raw:  raw,
			options: state.Options{
				BucketPages: c.GlobalUint64("bucket-pages"),
			},
			verbose: verbose,
			e:       e,
			w:       w,
		}
		c.App.Metadata["config"] = m

		if "init" == command {
			return nil
		}
		if 0 == raw.Size() {
			return fault.ErrNotInitialised
		}
		m.state, err = state.Restore(raw, m.options)
		return err
	}

	// write the state back and release the image
	app.After = func(c *cli.Context) error {
		m, ok := c.App.Metadata["config"].(*metadata)
		if !ok {
			return nil
		}
		defer m.raw.Close()

		if m.save && nil != m.state {
			if m.verbose {
				fmt.Fprintf(m.e, "saving: %q\n", m.file)
			}
			err := m.state.Save()
			if nil != err {
				return err
			}
			return m.raw.Sync()
		}
		return nil
	}

	return app
}
