// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package account - the wallet account record
//
// An account belongs to one principal and is found by its 32 byte
// account identifier.  It holds the transaction history of the default
// sub-account, any named sub-accounts, attached hardware wallets and
// up to 255 named canisters.
//
// Records are packed with bintly, prefixed by a version byte.  The
// encoding is deterministic (sub-accounts are written in index order)
// so two equal accounts always pack to the same bytes.
package account
