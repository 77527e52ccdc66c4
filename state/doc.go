// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package state - the persistent state of the wallet backend
//
// A State owns the raw memory, the partitions inside it and the
// account store.  Every entry point takes the state lock so that only
// one invocation runs at a time.
//
// Save writes everything that lives on the heap into the Heap
// partition as [length u64 LE][blob]; the persistent account stores
// need no save step.  Restore reads the schema label first and falls
// back to the legacy layout, a single [length u64 LE][blob] at the
// start of the raw memory, when no valid label is found.
package state
