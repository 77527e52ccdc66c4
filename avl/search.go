// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package avl

// Search - find a specific item, returns the node and its index
func (tree *Tree[K, V]) Search(key K) (*Node[K, V], int) {
	p := tree.root
	index := 0
	for nil != p {
		switch c := tree.compare(p.key, key); {
		case c > 0: // p.key > key
			p = p.left
		case c < 0: // p.key < key
			index += p.leftNodes + 1
			p = p.right
		default:
			return p, index + p.leftNodes
		}
	}
	return nil, -1
}

// Ceiling - the node with the lowest key greater than or equal to key
func (tree *Tree[K, V]) Ceiling(key K) *Node[K, V] {
	var found *Node[K, V]
	p := tree.root
	for nil != p {
		switch c := tree.compare(p.key, key); {
		case c > 0: // candidate, look for something lower
			found = p
			p = p.left
		case c < 0:
			p = p.right
		default:
			return p
		}
	}
	return found
}
