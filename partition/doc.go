// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package partition - divides one raw memory into independently
// growing virtual memories identified by permanent ids
//
// Raw memory layout:
//
//	page 0          manager header and bucket allocation table
//	page 1 onwards  buckets of BucketPages pages, each owned by one
//	                partition
//
// A partition grows by claiming the next free bucket, so the buckets
// of different partitions interleave in the raw memory.  The schema
// label lives at the start of the Metadata partition.
//
// A memory still in the legacy single blob layout is converted with
// Convert: the buckets over the blob are given to the Legacy partition,
// the other partitions are filled behind them and the header is written
// last by Commit.
package partition
