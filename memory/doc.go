// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package memory - a single linear, byte addressable memory that
// survives restarts of the program
//
// Memory is allocated in 64 KiB pages and never shrinks. Reads and
// writes outside the allocated size abort the invocation, the same as
// the execution host would trap.
//
// Vector keeps the bytes on the heap; File keeps them in an ordinary
// file so that the data outlives the process.
package memory
