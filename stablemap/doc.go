// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package stablemap - a persistent key to value map that lives
// entirely inside a linear memory
//
// The memory holds a checksummed header followed by a log of
// entries.  Each entry has a fixed size key area and a value area
// whose capacity is fixed for the life of the entry.  Removed entries
// are kept on free lists by capacity and reused by later inserts.
//
// A volatile ordered index (a goleveldb memdb) maps each key to the
// offset of its entry; it is rebuilt by replaying the entry headers
// whenever an existing map is reopened.
//
// Two configurations are used:
//
//	fixed      every value has exactly ValueLimit bytes
//	unbounded  values of any size, capacities are powers of two
package stablemap
