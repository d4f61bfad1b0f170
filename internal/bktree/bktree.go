// Package bktree implements a Burkhard-Keller tree for similarity search
// under an arbitrary integer metric. It supports finding all indexed items
// within a distance threshold of a query without comparing against every
// item, by pruning subtrees with the triangle inequality.
package bktree

import (
	"errors"
	"sort"
)

// ErrUnboundDistance is returned when a tree is used before a distance
// function has been bound, e.g. after decoding a persisted tree without one.
var ErrUnboundDistance = errors.New("bktree: no distance function bound")

// DistanceFunc computes the distance between two items. It must be a metric:
// non-negative, symmetric, zero exactly for equal items, and satisfying the
// triangle inequality. Queries are only correct under these laws; the tree
// does not verify them.
type DistanceFunc[A any] func(a, b A) int

// Result is a single match: an item and its distance from the query.
type Result[A any] struct {
	Distance int `json:"distance"`
	Item     A   `json:"item"`
}

// Tree is a BK-tree over items of type A. The zero value is not usable;
// construct with New or Decode. A Tree is not safe for concurrent mutation.
type Tree[A any] struct {
	root     *node[A]
	distance DistanceFunc[A]
}

type node[A any] struct {
	item     A
	children map[int]*node[A] // distance -> child node
}

// New creates an empty tree bound to fn. A nil fn leaves the tree unbound;
// Bind must be called before inserting or querying.
func New[A any](fn DistanceFunc[A]) *Tree[A] {
	return &Tree[A]{distance: fn}
}

// Bind attaches a distance function to the tree. The function must be
// consistent with the one used to build any existing nodes, or query
// results become unreliable.
func (t *Tree[A]) Bind(fn DistanceFunc[A]) {
	t.distance = fn
}

// Insert adds an item to the tree. The first insertion becomes the root
// without computing any distance. Inserting an item equal to one already
// present descends through its distance-0 slot and adds a new node, so
// duplicates form a distance-0 chain and each insertion grows the tree.
func (t *Tree[A]) Insert(item A) error {
	if t.distance == nil {
		return ErrUnboundDistance
	}

	n := &node[A]{
		item:     item,
		children: make(map[int]*node[A]),
	}

	if t.root == nil {
		t.root = n
		return nil
	}

	current := t.root
	for {
		dist := t.distance(item, current.item)
		if child, exists := current.children[dist]; exists {
			current = child
		} else {
			current.children[dist] = n
			return nil
		}
	}
}

// InsertAll inserts items in order. It stops at the first error, leaving
// earlier insertions in place.
func (t *Tree[A]) InsertAll(items ...A) error {
	for _, item := range items {
		if err := t.Insert(item); err != nil {
			return err
		}
	}
	return nil
}

// Query returns all items within threshold distance of target, using
// recursive traversal. At each node, only children whose distance key k
// satisfies |d - k| <= threshold are visited, where d is the distance from
// target to the node's item. Children are visited in ascending key order,
// so results come back in a deterministic preorder sequence identical to
// Find's. Recursion depth is bounded by tree height; a pathologically
// skewed tree can exhaust the stack, in which case use Find.
func (t *Tree[A]) Query(target A, threshold int) ([]Result[A], error) {
	if t.distance == nil {
		return nil, ErrUnboundDistance
	}
	if t.root == nil {
		return nil, nil
	}

	var results []Result[A]
	t.queryNode(t.root, target, threshold, &results)
	return results, nil
}

func (t *Tree[A]) queryNode(n *node[A], target A, threshold int, results *[]Result[A]) {
	dist := t.distance(n.item, target)

	if dist <= threshold {
		*results = append(*results, Result[A]{Distance: dist, Item: n.item})
	}

	// Triangle inequality: only children with distance key in
	// [dist - threshold, dist + threshold] can hold a match.
	lower := dist - threshold
	if lower < 0 {
		lower = 0
	}
	for k := lower; k <= dist+threshold; k++ {
		if child, exists := n.children[k]; exists {
			t.queryNode(child, target, threshold, results)
		}
	}
}

// Find is the iterative equivalent of Query, using an explicit stack
// instead of the call stack. For identical inputs it emits the exact same
// sequence of results as Query.
func (t *Tree[A]) Find(target A, threshold int) ([]Result[A], error) {
	if t.distance == nil {
		return nil, ErrUnboundDistance
	}
	if t.root == nil {
		return nil, nil
	}

	var results []Result[A]
	stack := []*node[A]{t.root}

	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		dist := t.distance(n.item, target)
		if dist <= threshold {
			results = append(results, Result[A]{Distance: dist, Item: n.item})
		}

		lower := dist - threshold
		if lower < 0 {
			lower = 0
		}
		// Push in descending key order so the smallest key pops first,
		// matching Query's ascending-order recursion.
		for k := dist + threshold; k >= lower; k-- {
			if child, exists := n.children[k]; exists {
				stack = append(stack, child)
			}
		}
	}

	return results, nil
}

// Size returns the number of items in the tree.
func (t *Tree[A]) Size() int {
	if t.root == nil {
		return 0
	}
	return countNodes(t.root)
}

func countNodes[A any](n *node[A]) int {
	count := 1
	for _, child := range n.children {
		count += countNodes(child)
	}
	return count
}

// Depth returns the height of the tree: 0 for an empty tree, 1 for a
// single node.
func (t *Tree[A]) Depth() int {
	return nodeDepth(t.root)
}

func nodeDepth[A any](n *node[A]) int {
	if n == nil {
		return 0
	}
	max := 0
	for _, child := range n.children {
		if d := nodeDepth(child); d > max {
			max = d
		}
	}
	return max + 1
}

// Items returns every item in the tree in preorder, visiting children in
// ascending key order.
func (t *Tree[A]) Items() []A {
	if t.root == nil {
		return nil
	}
	items := make([]A, 0, t.Size())
	collectItems(t.root, &items)
	return items
}

func collectItems[A any](n *node[A], items *[]A) {
	*items = append(*items, n.item)
	keys := make([]int, 0, len(n.children))
	for k := range n.children {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	for _, k := range keys {
		collectItems(n.children[k], items)
	}
}

// BruteForce linearly scans items and returns those within threshold
// distance of target, in input order. It exists as the reference the tree
// is measured against, for benchmarking and verification.
func BruteForce[A any](fn DistanceFunc[A], items []A, target A, threshold int) []Result[A] {
	var results []Result[A]
	for _, item := range items {
		if dist := fn(item, target); dist <= threshold {
			results = append(results, Result[A]{Distance: dist, Item: item})
		}
	}
	return results
}
