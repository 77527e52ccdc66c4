// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package avl

// First - return the node with the lowest key value
func (tree *Tree[K, V]) First() *Node[K, V] {
	return tree.root.first()
}

// internal: lowest node in a sub-tree
func (tree *Node[K, V]) first() *Node[K, V] {
	if tree == nil {
		return nil
	}
	for tree.left != nil {
		tree = tree.left
	}
	return tree
}

// Last - return the node with the highest key value
func (tree *Tree[K, V]) Last() *Node[K, V] {
	return tree.root.last()
}

// internal: highest node in a sub-tree
func (tree *Node[K, V]) last() *Node[K, V] {
	if tree == nil {
		return nil
	}
	for tree.right != nil {
		tree = tree.right
	}
	return tree
}

// Next - given a node, return the node with the next highest key
// value or nil if no more nodes.
func (tree *Node[K, V]) Next() *Node[K, V] {
	if tree.right == nil {
		for {
			from := tree
			tree = tree.up
			if tree == nil {
				return nil
			}
			if tree.left == from { // came up from the left
				return tree
			}
		}
	}
	return tree.right.first()
}

// Prev - given a node, return the node with the next lowest key value
// or nil if no more nodes
func (tree *Node[K, V]) Prev() *Node[K, V] {
	if tree.left == nil {
		for {
			from := tree
			tree = tree.up
			if tree == nil {
				return nil
			}
			if tree.right == from { // came up from the right
				return tree
			}
		}
	}
	return tree.left.last()
}
