package blt

import (
	"testing"

	"github.com/aleksaelezovic/bltree/pkg/ltree"
)

func TestComparatorEqualStructurallyEqualDistinctObjects(t *testing.T) {
	c := newComparator()

	a := ltree.NewCall(ltree.NewIdentifier("foo"), ltree.NewLiteral(ltree.KindInt32, int32(1)))
	b := ltree.NewCall(ltree.NewIdentifier("foo"), ltree.NewLiteral(ltree.KindInt32, int32(1)))

	if !c.equal(a, b) {
		t.Fatal("expected structurally-equal distinct objects to compare equal")
	}

	// Once merged, the union-find should short-circuit without
	// recomputing structural equality.
	if c.find(a) != c.find(b) {
		t.Error("expected a and b to share an equivalence class after equal()")
	}
}

func TestComparatorUnequalDifferentArgs(t *testing.T) {
	c := newComparator()

	a := ltree.NewCall(ltree.NewIdentifier("foo"), ltree.NewLiteral(ltree.KindInt32, int32(1)))
	b := ltree.NewCall(ltree.NewIdentifier("foo"), ltree.NewLiteral(ltree.KindInt32, int32(2)))

	if c.equal(a, b) {
		t.Fatal("expected nodes with different literal args to compare unequal")
	}
}

func TestComparatorHashMemoization(t *testing.T) {
	c := newComparator()
	n := ltree.NewIdentifier("foo")

	h1 := c.hashOf(n)
	h2 := c.hashOf(n)
	if h1 != h2 {
		t.Errorf("expected memoized hash to be stable, got %d then %d", h1, h2)
	}
	if _, ok := c.hashes[n]; !ok {
		t.Error("expected hash to be cached after first computation")
	}
}

func TestComparatorNullLiteralsEqual(t *testing.T) {
	c := newComparator()
	a := ltree.NewNullLiteral()
	b := ltree.NewNullLiteral()
	if !c.equal(a, b) {
		t.Error("expected two null literals to compare equal")
	}
}

func TestComparatorAttrsAffectEquality(t *testing.T) {
	c := newComparator()
	a := ltree.NewIdentifier("foo")
	b := ltree.NewIdentifier("foo").WithAttrs([]ltree.Node{ltree.NewIdentifier("tag")})

	if c.equal(a, b) {
		t.Error("expected attributed and unattributed identifiers to compare unequal")
	}
}
