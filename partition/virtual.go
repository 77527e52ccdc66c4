// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package partition

import (
	"github.com/bitmark-inc/walletd/memory"
)

// a partition seen as a linear memory
type virtualMemory struct {
	manager *Manager
	id      ID
}

func (v *virtualMemory) Size() uint64 {
	return v.manager.sizes[v.id]
}

func (v *virtualMemory) Grow(pages uint64) int64 {
	return v.manager.grow(v.id, pages)
}

func (v *virtualMemory) Read(offset uint64, dst []byte) {
	memory.CheckBounds("read", v, offset, len(dst))
	for len(dst) > 0 {
		raw, available := v.manager.locate(v.id, offset)
		n := uint64(len(dst))
		if n > available {
			n = available
		}
		v.manager.raw.Read(raw, dst[:n])
		dst = dst[n:]
		offset += n
	}
}

func (v *virtualMemory) Write(offset uint64, src []byte) {
	memory.CheckBounds("write", v, offset, len(src))
	for len(src) > 0 {
		raw, available := v.manager.locate(v.id, offset)
		n := uint64(len(src))
		if n > available {
			n = available
		}
		v.manager.raw.Write(raw, src[:n])
		src = src[n:]
		offset += n
	}
}
