// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package avl

// CompareFunc - returns -1, 0, +1 for a < b, a == b, a > b
type CompareFunc[K any] func(a K, b K) int

// Node - a node in the tree
type Node[K any, V any] struct {
	left       *Node[K, V] // left sub-tree
	right      *Node[K, V] // right sub-tree
	up         *Node[K, V] // points to parent node
	key        K           // key part for ordering
	value      V           // value part for data storage
	balance    int         // -1, 0, +1
	leftNodes  int         // count of nodes in left sub-tree
	rightNodes int         // count of nodes in right sub-tree
}

// Tree - type to hold the root node of a tree
type Tree[K any, V any] struct {
	root    *Node[K, V]
	count   int
	compare CompareFunc[K]
}

// New - create an initially empty tree
func New[K any, V any](compare CompareFunc[K]) *Tree[K, V] {
	return &Tree[K, V]{
		root:    nil,
		count:   0,
		compare: compare,
	}
}

// IsEmpty - true if tree contains no data
func (tree *Tree[K, V]) IsEmpty() bool {
	return nil == tree.root
}

// Count - number of nodes currently in the tree
func (tree *Tree[K, V]) Count() int {
	return tree.count
}

// Clear - drop all nodes
func (tree *Tree[K, V]) Clear() {
	tree.root = nil
	tree.count = 0
}

// Key - read the key from a node item
func (p *Node[K, V]) Key() K {
	return p.key
}

// Value - read the value from a node item
func (p *Node[K, V]) Value() V {
	return p.value
}

// SetValue - replace the value of a node in place
func (p *Node[K, V]) SetValue(value V) {
	p.value = value
}

// Depth - get the depth of a node
func (p *Node[K, V]) Depth() uint {
	count := uint(0)
	parent := p.up
	for parent != nil {
		count += 1
		parent = parent.up
	}
	return count
}
