// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package migration - moves accounts from one store layout to another
// in bounded steps while continuing to serve every request
//
// The Proxy forwards all store operations to the authoritative
// backend.  A requested migration copies records in ascending key
// order into a target backend, a few at a time, and when the source is
// exhausted checks that both backends agree on their length and their
// first and last records.  If they agree the target becomes
// authoritative, otherwise the target is discarded and the source
// remains in use.
package migration
