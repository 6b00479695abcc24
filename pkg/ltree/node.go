// Package ltree defines the node algebra that the BLT format serializes:
// identifiers, literals, and calls, each optionally decorated with an
// ordered list of attribute nodes. Construction, printing, and equality
// live here; the wire format lives in internal/blt.
package ltree

import "fmt"

// LiteralKind enumerates the runtime kinds a Literal's Value may hold.
type LiteralKind byte

const (
	KindNull LiteralKind = iota
	KindString
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindFloat32
	KindFloat64
	KindChar
	KindBoolean
	KindVoid
	KindDecimal
	KindBigInteger
)

// Node is one of Identifier, Literal, or Call. Nodes are immutable;
// WithAttrs returns a fresh node equal in all respects except attributes.
type Node interface {
	Attrs() []Node
	WithAttrs(attrs []Node) Node
	String() string
	isNode()
}

// Identifier carries a symbolic name.
type Identifier struct {
	Name  string
	attrs []Node
}

func NewIdentifier(name string) *Identifier {
	return &Identifier{Name: name}
}

func (n *Identifier) Attrs() []Node { return n.attrs }

func (n *Identifier) WithAttrs(attrs []Node) Node {
	return &Identifier{Name: n.Name, attrs: attrs}
}

func (n *Identifier) String() string {
	return withAttrs(n.Name, n.attrs)
}

func (n *Identifier) isNode() {}

// Literal carries a typed primitive value, or nil for a null literal.
type Literal struct {
	Kind  LiteralKind
	Value any
	attrs []Node
}

func NewLiteral(kind LiteralKind, value any) *Literal {
	return &Literal{Kind: kind, Value: value}
}

func NewNullLiteral() *Literal {
	return &Literal{Kind: KindNull, Value: nil}
}

func (n *Literal) Attrs() []Node { return n.attrs }

func (n *Literal) WithAttrs(attrs []Node) Node {
	return &Literal{Kind: n.Kind, Value: n.Value, attrs: attrs}
}

func (n *Literal) String() string {
	if n.Kind == KindNull {
		return withAttrs("null", n.attrs)
	}
	return withAttrs(fmt.Sprintf("%v", n.Value), n.attrs)
}

func (n *Literal) isNode() {}

// Call carries a target node applied to an ordered argument list.
type Call struct {
	Target Node
	Args   []Node
	attrs  []Node
}

func NewCall(target Node, args ...Node) *Call {
	return &Call{Target: target, Args: args}
}

func (n *Call) Attrs() []Node { return n.attrs }

func (n *Call) WithAttrs(attrs []Node) Node {
	return &Call{Target: n.Target, Args: n.Args, attrs: attrs}
}

func (n *Call) String() string {
	s := n.Target.String() + "("
	for i, a := range n.Args {
		if i > 0 {
			s += ", "
		}
		s += a.String()
	}
	s += ")"
	return withAttrs(s, n.attrs)
}

func (n *Call) isNode() {}

func withAttrs(s string, attrs []Node) string {
	if len(attrs) == 0 {
		return s
	}
	out := "@("
	for i, a := range attrs {
		if i > 0 {
			out += ", "
		}
		out += a.String()
	}
	out += ") " + s
	return out
}

// Equal is plain structural equality over the node algebra, independent
// of the core's classifying comparator (which memoizes hashes and merges
// equivalence classes for a single encode session).
func Equal(a, b Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if !attrsEqual(a.Attrs(), b.Attrs()) {
		return false
	}
	switch av := a.(type) {
	case *Identifier:
		bv, ok := b.(*Identifier)
		return ok && av.Name == bv.Name
	case *Literal:
		bv, ok := b.(*Literal)
		if !ok || av.Kind != bv.Kind {
			return false
		}
		if av.Kind == KindNull {
			return true
		}
		return fmt.Sprintf("%v", av.Value) == fmt.Sprintf("%v", bv.Value)
	case *Call:
		bv, ok := b.(*Call)
		if !ok || len(av.Args) != len(bv.Args) || !Equal(av.Target, bv.Target) {
			return false
		}
		for i := range av.Args {
			if !Equal(av.Args[i], bv.Args[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func attrsEqual(a, b []Node) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// StripAttrs yields a node equal to n except with an empty attribute list.
func StripAttrs(n Node) Node {
	if len(n.Attrs()) == 0 {
		return n
	}
	return n.WithAttrs(nil)
}
