package blt

import (
	"fmt"

	"github.com/aleksaelezovic/bltree/pkg/ltree"
	"github.com/zeebo/xxh3"
)

// comparator is the classifying node comparator of spec §4.5: structural
// equality plus memoized hashing and union-find equivalence classes, so
// each pair of structurally-equal nodes is proven equal at most once.
// Hashes and classes are keyed by the node's object identity (the data
// model has no requirement that equal foreign nodes share identity).
type comparator struct {
	hashes map[ltree.Node]uint64
	parent map[ltree.Node]ltree.Node
	rank   map[ltree.Node]int
}

func newComparator() *comparator {
	return &comparator{
		hashes: make(map[ltree.Node]uint64),
		parent: make(map[ltree.Node]ltree.Node),
		rank:   make(map[ltree.Node]int),
	}
}

// hashOf returns n's memoized structural hash, computing it on first use.
func (c *comparator) hashOf(n ltree.Node) uint64 {
	if h, ok := c.hashes[n]; ok {
		return h
	}
	var h uint64
	switch v := n.(type) {
	case *ltree.Identifier:
		h = hashString(v.Name)
	case *ltree.Literal:
		if v.Kind == ltree.KindNull {
			h = 0
		} else {
			h = hashValue(v.Value)
		}
	case *ltree.Call:
		h = c.hashOf(v.Target)
		for _, a := range v.Args {
			h = mix(h, c.hashOf(a))
		}
	default:
		h = 0
	}
	for _, a := range n.Attrs() {
		h = mix(h, c.hashOf(a))
	}
	c.hashes[n] = h
	return h
}

// mix folds h' into h via the spec's hash-mix rule.
func mix(h, hp uint64) uint64 {
	return ((h << 1) + h) ^ hp
}

func hashString(s string) uint64 {
	return xxh3.HashString(s)
}

func hashValue(v any) uint64 {
	return xxh3.HashString(fmt.Sprintf("%T:%v", v, v))
}

// find returns the union-find root of n, creating a singleton set on
// first sight, with path compression.
func (c *comparator) find(n ltree.Node) ltree.Node {
	p, ok := c.parent[n]
	if !ok {
		c.parent[n] = n
		return n
	}
	if p == n {
		return n
	}
	root := c.find(p)
	c.parent[n] = root
	return root
}

func (c *comparator) union(a, b ltree.Node) {
	ra, rb := c.find(a), c.find(b)
	if ra == rb {
		return
	}
	if c.rank[ra] < c.rank[rb] {
		ra, rb = rb, ra
	}
	c.parent[rb] = ra
	if c.rank[ra] == c.rank[rb] {
		c.rank[ra]++
	}
}

// equal reports whether a and b are structurally equal, merging their
// equivalence classes when they are. A hash mismatch short-circuits
// without descending; a shared equivalence class returns true without
// descending.
func (c *comparator) equal(a, b ltree.Node) bool {
	if a == b {
		return true
	}
	if c.find(a) == c.find(b) {
		return true
	}
	if c.hashOf(a) != c.hashOf(b) {
		return false
	}

	eq := c.structuralEqual(a, b)
	if eq {
		c.union(a, b)
	}
	return eq
}

func (c *comparator) structuralEqual(a, b ltree.Node) bool {
	if !c.attrsEqual(a.Attrs(), b.Attrs()) {
		return false
	}
	switch av := a.(type) {
	case *ltree.Identifier:
		bv, ok := b.(*ltree.Identifier)
		return ok && av.Name == bv.Name
	case *ltree.Literal:
		bv, ok := b.(*ltree.Literal)
		if !ok || av.Kind != bv.Kind {
			return false
		}
		if av.Kind == ltree.KindNull {
			return true
		}
		return fmt.Sprintf("%v", av.Value) == fmt.Sprintf("%v", bv.Value)
	case *ltree.Call:
		bv, ok := b.(*ltree.Call)
		if !ok || len(av.Args) != len(bv.Args) || !c.equal(av.Target, bv.Target) {
			return false
		}
		for i := range av.Args {
			if !c.equal(av.Args[i], bv.Args[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func (c *comparator) attrsEqual(a, b []ltree.Node) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !c.equal(a[i], b[i]) {
			return false
		}
	}
	return true
}
