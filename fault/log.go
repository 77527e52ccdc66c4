// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/bitmark-inc/logger"
)

// last-chance logger channel used before aborting an invocation
var panicLog struct {
	sync.Mutex
	log *logger.L
}

// Initialise - setup a log channel for last attempt to log something
func Initialise() error {
	panicLog.Lock()
	defer panicLog.Unlock()

	if nil != panicLog.log {
		return ErrAlreadyInitialised
	}
	panicLog.log = logger.New("PANIC")
	if nil == panicLog.log {
		return ErrInvalidLoggerChannel
	}
	return nil
}

// Finalise - flush any data and release the channel
func Finalise() {
	panicLog.Lock()
	defer panicLog.Unlock()

	if nil != panicLog.log {
		panicLog.log.Flush()
		panicLog.log = nil
	}
}

// Criticalf - log a formatted string prefixed by the caller position
func Criticalf(format string, arguments ...interface{}) {
	criticalf(located(2, format, arguments...))
}

// Panicf - log the formatted message and abort the current invocation
//
// the panic value is the formatted message so that a caller at the
// invocation boundary can report it
func Panicf(format string, arguments ...interface{}) {
	message := fmt.Sprintf(format, arguments...)
	criticalf(located(2, "%s", message))
	panic(message)
}

// PanicWithError - abort with an operation name and its error
func PanicWithError(message string, err error) {
	s := fmt.Sprintf("%s failed with error: %v", message, err)
	criticalf(located(2, "%s", s))
	panic(s)
}

// PanicIfError - conditional abort
func PanicIfError(message string, err error) {
	if nil == err {
		return
	}
	s := fmt.Sprintf("%s failed with error: %v", message, err)
	criticalf(located(2, "%s", s))
	panic(s)
}

// prefix a message with the file:line of a caller
func located(skip int, format string, arguments ...interface{}) string {
	message := fmt.Sprintf(format, arguments...)
	if _, file, line, ok := runtime.Caller(skip); ok {
		return fmt.Sprintf("(%q:%d) %s", file, line, message)
	}
	return message
}

// write to the channel, or stdout if logging was never set up
func criticalf(message string) {
	panicLog.Lock()
	defer panicLog.Unlock()

	if nil == panicLog.log {
		fmt.Printf("*** %s\n", message)
		return
	}
	panicLog.log.Critical(message)
	panicLog.log.Flush()
}
