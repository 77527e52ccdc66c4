// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package fault - error instances
//
// Provides a single instance of errors to allow easy comparison
// without having to resort to partial string matches
//
// Conditions that mean the persistent data can no longer be trusted
// (bad checksums on read, records that exceed the page limit, memory
// accesses out of bounds) are not returned as errors; they go through
// Panicf so that the whole invocation is abandoned.
package fault
