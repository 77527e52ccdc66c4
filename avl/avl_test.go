// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package avl_test

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/walletd/avl"
)

func newTree() *avl.Tree[string, string] {
	return avl.New[string, string](strings.Compare)
}

func TestListShort(t *testing.T) {
	addList := []string{
		"4201", "1254", "8608", "1639", "8950",
		"6740",
	}
	doList(t, addList)
	doTraverse(t, addList)
	doGet(t, addList)
}

// to make sure that lots of duplicates do not increment the node
// count incorrectly
func TestListDuplicates(t *testing.T) {
	addList := []string{
		"1720", "0506", "8382", "6774", "1247",
		"1250", "1264", "1258", "1255", "2247",
		"2004", "2194", "2644", "2169", "8133",
		"2136", "9651", "4079", "1042", "3579",
		"3630", "1427", "5843", "9549", "5433",
		"1274", "9034", "4724", "6179", "5072",
		"9272", "4030", "4205", "3363", "8582",
		"1720", "0506", "8382", "6774", "1042",

		"1042", "1042", "1042", "1042", "1042",
		"1042", "1042", "1042", "1042", "1042",
		"1042", "1042", "1042", "1042", "1042",
		"1042", "1042", "1042", "1042", "1042",
		"1042", "1042", "1042", "1042", "1042",
		"1042", "1042", "1042", "1042", "1042",
		"1042", "1042", "1042", "1042", "1042",
	}
	doList(t, addList)
	doTraverse(t, addList)
	doGet(t, addList)
}

func TestListLong(t *testing.T) {
	addList := []string{
		"8133", "2136", "9651", "4079", "1042",
		"3579", "3630", "1427", "5843", "9549",
		"5433", "1274", "9034", "4724", "6179",
		"5072", "9272", "4030", "4205", "3363",
		"8582", "1720", "0506", "8382", "6774",
		"3088", "2329", "9039", "6703", "1027",
		"7297", "6063", "4156", "1005", "0982",
		"3065", "2553", "0795", "8426", "2377",
		"0877", "9085", "5918", "2581", "7797",
		"3028", "5880", "3061", "5212", "6539",
		"1320", "3581", "3334", "4348", "2934",
		"8342", "8814", "8736", "1353", "3082",
		"9620", "0056", "5063", "1245", "7066",
		"7435", "2999", "7803", "1303", "1697",
		"0017", "4314", "9926", "7587", "2531",
		"8123", "5693", "7495", "9975", "5465",
		"4342", "7958", "7138", "9382", "0672",
		"5402", "0204", "2397", "2712", "0938",
		"9610", "3611", "2140", "4289", "9271",
		"4786", "4145", "1066", "4366", "6716",
		"8579", "1012", "5935", "8278", "5761",
		"1871", "6257", "2649", "8643", "1239",
		"3416", "6146", "7127", "9517", "5788",
		"9025", "6880", "9064", "4849", "4503",
		"4898", "6815", "8811", "6745", "6907",
		"7503", "9869", "5491", "9940", "5955",
		"3764", "3254", "8048", "5339", "2406",
		"3137", "0251", "0486", "4202", "1844",
		"1741", "7154", "4286", "5160", "9472",
		"2998", "1935", "4758", "6478", "9572",
		"9254", "6848", "3126", "1848", "7692",
		"2791", "1504", "3469", "9701", "5077",
		"7928", "7978", "5383", "4319", "8197",
		"9227", "1166", "4216", "0866", "1791",
		"5395", "4310", "4452", "6140", "1494",
		"8859", "3394", "5507", "7295", "5408",
		"7789", "8237", "6990", "6882", "8243",
		"8894", "4352", "6727", "7019", "3126",
		"3102", "2948", "8242", "5027", "8892",
		"3492", "1323", "1101", "4526", "5177",
		"6175", "6664", "2742", "6094", "9877",
		"2534", "2105", "6588", "9982", "3696",
		"3480", "2244", "7487", "2844", "3199",
		"5829", "6952", "6915", "0905", "7615",
	}

	doList(t, addList)
	doTraverse(t, addList)
	doGet(t, addList)
}

func doList(t *testing.T, addList []string) {

	for i := 0; i < len(addList)+1; i += 1 {

		alreadyDeleted := make(map[string]struct{})

		tree := newTree()
		for _, key := range addList {
			tree.Insert(key, "data:"+key)
		}

		if !tree.CheckUp() {
			t.Fatal("add: inconsistent tree")
		}

	delete_items:
		for _, key := range addList[:i] {
			if _, ok := alreadyDeleted[key]; ok {
				continue delete_items
			}
			alreadyDeleted[key] = struct{}{}
			dv, ok := tree.Delete(key)
			if !ok {
				t.Fatalf("delete: %q not found", key)
			}
			ev := "data:" + key
			if dv != ev {
				t.Fatalf("delete returned: %q  expected: %q", dv, ev)
			}
		}

		if !tree.CheckUp() {
			t.Fatal("delete: inconsistent tree")
		}

	delete_remainder:
		for _, key := range addList[i:] {
			if _, ok := alreadyDeleted[key]; ok {
				continue delete_remainder
			}
			alreadyDeleted[key] = struct{}{}
			dv, _ := tree.Delete(key)
			ev := "data:" + key
			if dv != ev {
				t.Fatalf("delete returned: %q  expected: %q", dv, ev)
			}
		}
		if !tree.IsEmpty() {
			t.Fatal("remainder: remaining nodes")
		}
	}
}

func sortedUnique(addList []string) []string {
	unique := make(map[string]struct{})
	for _, key := range addList {
		unique[key] = struct{}{}
	}
	expected := make([]string, 0, len(unique))
	for key := range unique {
		expected = append(expected, key)
	}
	sort.Strings(expected)
	return expected
}

// traverse the tree forwards and backwards to check iterators
func doTraverse(t *testing.T, addList []string) {

	tree := newTree()
	for _, key := range addList {
		tree.Insert(key, "data:"+key)
	}
	expected := sortedUnique(addList)

	p := tree.First()
	if nil == p {
		t.Fatalf("no first item")
	}

	n := 0
	for i := 0; nil != p; i += 1 {
		if p.Key() != expected[i] {
			t.Fatalf("next item: actual: %q  expected: %q", p.Key(), expected[i])
		}
		n += 1
		p = p.Next()
	}

	if n != len(expected) {
		t.Fatalf("item count: actual: %d  expected: %d", n, len(expected))
	}

	p = tree.Last()
	if nil == p {
		t.Fatalf("no last item")
	}

	n = 0
	for i := len(expected) - 1; nil != p; i -= 1 {
		if p.Key() != expected[i] {
			t.Fatalf("prev item: actual: %q  expected: %q", p.Key(), expected[i])
		}
		n += 1
		p = p.Prev()
	}

	if n != len(expected) {
		t.Fatalf("item count: actual: %d  expected: %d", n, len(expected))
	}
	if n != tree.Count() {
		t.Fatalf("tree count: actual: %d  expected: %d", tree.Count(), len(expected))
	}

	for _, key := range expected {
		tree.Delete(key)
	}

	if !tree.IsEmpty() {
		t.Fatalf("remaining nodes")
	}
	if 0 != tree.Count() {
		t.Fatalf("remaining count not zero: %d", tree.Count())
	}
}

// use indexing to fetch each item
func doGet(t *testing.T, addList []string) {

	tree := newTree()
	for _, key := range addList {
		tree.Insert(key, "data:"+key)
	}
	expected := sortedUnique(addList)

	if len(expected) != tree.Count() {
		t.Fatalf("expected: %d items, but tree count: %d", len(expected), tree.Count())
	}

	for index, key := range expected {
		node := tree.Get(index)
		if nil == node {
			t.Fatalf("[%d] key: %q not in tree (nil result)", index, key)
		}
		if node.Key() != key {
			t.Fatalf("[%d]: expected: %q but found: %q", index, key, node.Key())
		}
		node1, index1 := tree.Search(key)
		if nil == node1 {
			t.Fatalf("[%d]: search: %q returned nil", index, key)
		}
		if index != index1 {
			t.Errorf("[%d]: search: %q index: %d expected: %d", index, key, index1, index)
		}
	}

	// delete even elements
	for index, key := range expected {
		if 0 == index%2 {
			tree.Delete(key)
		}
	}

	if !tree.CheckUp() {
		t.Fatal("inconsistent tree after deletes")
	}

	// check odd elements are all present
odd_scan:
	for index, key := range expected {
		if 0 == index%2 {
			continue odd_scan
		}
		index >>= 1 // 1,3,5, … → 0,1,2, …
		node := tree.Get(index)
		if nil == node {
			t.Fatalf("[%d] key: %q not in tree (nil result)", index, key)
		}
		if node.Key() != key {
			t.Fatalf("[%d]: expected: %q but found: %q", index, key, node.Key())
		}
	}
}

func makeKey() string {

	b := make([]byte, 4)
	_, err := rand.Read(b)
	if nil != err {
		panic("rand failed")
	}
	n := int(binary.BigEndian.Uint32(b))
	return fmt.Sprintf("%04d", n%10000)
}

func TestRandomTree(t *testing.T) {

	randomTree(t, 2200, 2000)
	randomTree(t, 3400, 2760)
	randomTree(t, 5467, 1234)

	for i := 0; i < 5; i += 1 {
		randomTree(t, 2100, 2000)
	}
}

func randomTree(t *testing.T, total int, toDelete int) {

	if toDelete > total {
		t.Fatalf("failed: total: %d  < deletions: %d", total, toDelete)
	}

	tree := newTree()
	d := make([]string, toDelete)

	for i := 0; i < total; i += 1 {
		key := makeKey()
		if i < len(d) {
			d[i] = key
		}
		tree.Insert(key, "data:"+key)
	}

	if !tree.CheckUp() {
		t.Fatalf("inconsistent tree")
	}

	for _, key := range d {
		tree.Delete(key)
		if !tree.CheckUp() {
			t.Fatalf("inconsistent tree")
		}
	}

	// add back the test value
	testKey := "500"
	const testValue = "just testing data: test 500 value"
	tree.Insert(testKey, testValue)

	node, _ := tree.Search(testKey)
	if nil == node {
		t.Fatalf("test key: %q not found", testKey)
	}
	if node.Value() != testValue {
		t.Fatalf("test value: %q  expected: %q", node.Value(), testValue)
	}
}

func TestOverwrite(t *testing.T) {
	tree := newTree()

	assert.True(t, tree.Insert("a", "one"), "first insert")
	assert.False(t, tree.Insert("a", "two"), "overwrite counted as insert")
	assert.Equal(t, 1, tree.Count(), "wrong count")

	node, index := tree.Search("a")
	assert.NotNil(t, node, "missing node")
	assert.Equal(t, 0, index, "wrong index")
	assert.Equal(t, "two", node.Value(), "value not overwritten")

	node.SetValue("three")
	node, _ = tree.Search("a")
	assert.Equal(t, "three", node.Value(), "value not set")

	_, ok := tree.Delete("missing")
	assert.False(t, ok, "deleted a missing key")
}

func TestCeiling(t *testing.T) {
	tree := newTree()
	for _, key := range []string{"10", "20", "30", "40"} {
		tree.Insert(key, "data:"+key)
	}

	tests := []struct {
		key      string
		expected string
		found    bool
	}{
		{"05", "10", true},
		{"10", "10", true},
		{"11", "20", true},
		{"35", "40", true},
		{"40", "40", true},
		{"41", "", false},
	}

	for i, item := range tests {
		node := tree.Ceiling(item.key)
		if !item.found {
			assert.Nil(t, node, "%d: unexpected node", i)
			continue
		}
		if assert.NotNil(t, node, "%d: missing node", i) {
			assert.Equal(t, item.expected, node.Key(), "%d: wrong ceiling", i)
		}
	}

	tree.Clear()
	assert.True(t, tree.IsEmpty(), "clear left nodes")
	assert.Nil(t, tree.Ceiling("00"), "ceiling on empty tree")
}

type byteKey []byte

func shortlex(a byteKey, b byteKey) int {
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(string(a), string(b))
}

func TestCustomCompare(t *testing.T) {
	tree := avl.New[byteKey, int](shortlex)
	tree.Insert(byteKey{0xff}, 1)
	tree.Insert(byteKey{0x00, 0x00}, 2)
	tree.Insert(byteKey{0x01}, 3)

	order := []int{}
	for p := tree.First(); nil != p; p = p.Next() {
		order = append(order, p.Value())
	}
	assert.Equal(t, []int{3, 1, 2}, order, "shortlex order")
}
