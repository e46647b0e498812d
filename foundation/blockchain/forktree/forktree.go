// Package forktree maintains every observed block as a node in a tree rooted
// at genesis and answers which branch is the canonical chain.
//
// Nodes live in an arena addressed by key. Each node stores the index of its
// parent and the ordered indexes of its children. Insertion is append only,
// nodes are never reparented or pruned, so the graph stays acyclic.
//
// Ties in branch length are broken by child insertion order: the branch that
// was attached first wins. Two trees that saw the same competing blocks in a
// different order can therefore pick different heads at equal depth.
package forktree

// Node is a read only view of an entry in the tree.
type Node[T any] struct {
	Key   string
	Value T
	Depth int
}

type entry[T any] struct {
	key      string
	value    T
	depth    int
	parent   int
	children []int
}

// Tree is an N-ary tree of values with parent back references. Tree is not
// safe for concurrent use.
type Tree[T any] struct {
	entries []entry[T]
	index   map[string]int
}

// New constructs a tree with the specified root. The root is its own parent.
func New[T any](rootKey string, root T) *Tree[T] {
	t := Tree[T]{
		entries: []entry[T]{{key: rootKey, value: root, parent: 0}},
		index:   map[string]int{rootKey: 0},
	}

	return &t
}

// Insert appends a new node holding the value as the last child of the node
// identified by parentKey. False is returned and nothing changes when the
// parent is unknown or the key already exists.
func (t *Tree[T]) Insert(parentKey string, key string, value T) bool {
	if _, exists := t.index[key]; exists {
		return false
	}

	p, exists := t.index[parentKey]
	if !exists {
		return false
	}

	idx := len(t.entries)
	t.entries = append(t.entries, entry[T]{
		key:    key,
		value:  value,
		depth:  t.entries[p].depth + 1,
		parent: p,
	})
	t.entries[p].children = append(t.entries[p].children, idx)
	t.index[key] = idx

	return true
}

// Len returns the number of nodes in the tree including the root.
func (t *Tree[T]) Len() int {
	return len(t.entries)
}

// Contains reports if a node with the key exists.
func (t *Tree[T]) Contains(key string) bool {
	_, exists := t.index[key]
	return exists
}

// Root returns the root node.
func (t *Tree[T]) Root() Node[T] {
	return t.node(0)
}

// Find returns the node with the specified key.
func (t *Tree[T]) Find(key string) (Node[T], bool) {
	idx, exists := t.index[key]
	if !exists {
		return Node[T]{}, false
	}

	return t.node(idx), true
}

// Parent returns the parent of the node with the specified key. The root has
// no parent.
func (t *Tree[T]) Parent(key string) (Node[T], bool) {
	idx, exists := t.index[key]
	if !exists || idx == 0 {
		return Node[T]{}, false
	}

	return t.node(t.entries[idx].parent), true
}

// Children returns the children of the node in insertion order.
func (t *Tree[T]) Children(key string) []Node[T] {
	idx, exists := t.index[key]
	if !exists {
		return nil
	}

	nodes := make([]Node[T], len(t.entries[idx].children))
	for i, c := range t.entries[idx].children {
		nodes[i] = t.node(c)
	}
	return nodes
}

// LongestBranch returns the deepest node below the root and its distance
// from the root.
func (t *Tree[T]) LongestBranch() (Node[T], int) {
	idx, length := t.longest(0)
	return t.node(idx), length
}

// ChainFrom returns the values from the root down to the node with the
// specified key.
func (t *Tree[T]) ChainFrom(key string) []T {
	idx, exists := t.index[key]
	if !exists {
		return nil
	}

	chain := make([]T, t.entries[idx].depth+1)
	for {
		chain[t.entries[idx].depth] = t.entries[idx].value
		if idx == 0 {
			break
		}
		idx = t.entries[idx].parent
	}

	return chain
}

// LongestChain returns the values from the root down to the longest branch.
func (t *Tree[T]) LongestChain() []T {
	node, _ := t.LongestBranch()
	return t.ChainFrom(node.Key)
}

// Walk visits every node depth first, parents before children and children
// in insertion order. The parent key of the root is its own key.
func (t *Tree[T]) Walk(fn func(node Node[T], parentKey string)) {
	t.walk(0, fn)
}

// =============================================================================

func (t *Tree[T]) walk(idx int, fn func(node Node[T], parentKey string)) {
	fn(t.node(idx), t.entries[t.entries[idx].parent].key)

	for _, c := range t.entries[idx].children {
		t.walk(c, fn)
	}
}

// longest walks the subtree below idx and returns the deepest node and its
// distance from idx. A child only replaces the current best when it is
// strictly longer, so the first branch wins ties.
func (t *Tree[T]) longest(idx int) (int, int) {
	best, length := idx, 0

	for _, c := range t.entries[idx].children {
		node, l := t.longest(c)
		if l+1 > length {
			best, length = node, l+1
		}
	}

	return best, length
}

func (t *Tree[T]) node(idx int) Node[T] {
	e := t.entries[idx]
	return Node[T]{
		Key:   e.key,
		Value: e.value,
		Depth: e.depth,
	}
}
