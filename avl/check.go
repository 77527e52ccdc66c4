// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package avl

import (
	"fmt"
)

// CheckUp - check the up pointers and node counts for consistency
func (tree *Tree[K, V]) CheckUp() bool {
	n, ok := checkup(tree.root, nil)
	return ok && n == tree.count
}

// internal: consistency checker, returns the sub-tree size
func checkup[K any, V any](p *Node[K, V], up *Node[K, V]) (int, bool) {
	if nil == p {
		return 0, true
	}
	if p.up != up {
		fmt.Printf("fail at node: %v  wrong parent\n", p.key)
		return 0, false
	}
	nl, ok := checkup(p.left, p)
	if !ok {
		return 0, false
	}
	nr, ok := checkup(p.right, p)
	if !ok {
		return 0, false
	}
	if nl != p.leftNodes || nr != p.rightNodes {
		fmt.Printf("fail at node: %v  counts: %d/%d  expected: %d/%d\n", p.key, p.leftNodes, p.rightNodes, nl, nr)
		return 0, false
	}
	return 1 + nl + nr, true
}
