// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/bitmark-inc/exitwithstatus"
)

// setup commands
// return:
//
//	true  if program should exit
//	false if program should continue
func processSetupCommand(program string, arguments []string) bool {

	command := "help"
	if len(arguments) > 0 {
		command = arguments[0]
	}

	switch command {

	case "version", "v":
		fmt.Printf("%s\n", version)

	case "help", "h", "?":
		exitwithstatus.Message("usage: %s [--help] [--verbose] [--quiet] --config-file=FILE [[command|help] arguments...]\n"+
			"\n"+
			"supported commands:\n"+
			"  help                   - display this message\n"+
			"  version                - display version\n"+
			"  show-config            - print the configuration with all defaults applied\n",
			program)

	default:
		return false
	}

	return true
}

// configuration commands
// return:
//
//	true  if program should exit
//	false if program should continue
func processConfigCommand(program string, arguments []string, c *Configuration) bool {

	switch arguments[0] {

	case "show-config":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		err := encoder.Encode(c)
		if nil != err {
			exitwithstatus.Message("%s: encode configuration error: %s", program, err)
		}

	default:
		exitwithstatus.Message("%s: no such command: %q", program, arguments[0])
	}

	return true
}
