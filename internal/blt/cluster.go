package blt

import "github.com/aleksaelezovic/bltree/pkg/ltree"

// clusterPass is the clustering pre-pass of spec §4.7: before any top-level
// node is interned, every leaf reachable from the forest is registered
// first, grouped so that leaves of the same wire shape land in adjacent
// node-table slots and form long runs. Leaves are registered in this
// order: null literals, then identifiers, then literals grouped by their
// value's runtime type in first-sighting order.
//
// The walk that discovers leaves is iterative (an explicit stack), not
// native recursion, so it tolerates arbitrarily deep forests (spec §9).
func clusterPass(b *builder, forest []ltree.Node) error {
	var nulls []ltree.Node
	var identifiers []ltree.Node
	var literalGroups []ltree.Node
	groupOrder := make(map[string]int)
	grouped := make(map[string][]ltree.Node)

	seen := make(map[ltree.Node]bool)
	stack := append([]ltree.Node{}, forest...)

	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[n] {
			continue
		}
		seen[n] = true

		if isLeafNode(n) {
			switch v := n.(type) {
			case *ltree.Literal:
				if v.Kind == ltree.KindNull {
					nulls = append(nulls, n)
					continue
				}
				key := literalGroupKey(v)
				if _, ok := groupOrder[key]; !ok {
					groupOrder[key] = len(groupOrder)
				}
				grouped[key] = append(grouped[key], n)
			case *ltree.Identifier:
				identifiers = append(identifiers, n)
			}
			continue
		}

		// Children mirror builder.prepareChildren exactly (including the
		// bare-call-target special case, which resolves into the symbol
		// table only and is never a node-table entry in its own right);
		// otherwise this walk would surface leaves the real descent never
		// interns as nodes.
		stack = append(stack, b.prepareChildren(n)...)
	}

	if len(groupOrder) > 0 {
		ordered := make([]string, len(groupOrder))
		for key, idx := range groupOrder {
			ordered[idx] = key
		}
		for _, key := range ordered {
			literalGroups = append(literalGroups, grouped[key]...)
		}
	}

	for _, n := range nulls {
		if _, err := b.getIndex(n); err != nil {
			return err
		}
	}
	for _, n := range identifiers {
		if _, err := b.getIndex(n); err != nil {
			return err
		}
	}
	for _, n := range literalGroups {
		if _, err := b.getIndex(n); err != nil {
			return err
		}
	}
	return nil
}

// isLeafNode reports whether n is a node-table leaf: an identifier or
// literal carrying no attributes. A node with attributes is never a leaf
// even if its attribute-stripped form would be, since it still requires
// an AttributeTemplate slot; the pre-pass still visits its children (the
// attributes themselves, and the stripped node) to find leaves beneath it.
func isLeafNode(n ltree.Node) bool {
	if len(n.Attrs()) > 0 {
		return false
	}
	switch n.(type) {
	case *ltree.Identifier, *ltree.Literal:
		return true
	default:
		return false
	}
}

func literalGroupKey(v *ltree.Literal) string {
	return typeKey(v.Value)
}

func typeKey(v any) string {
	switch v.(type) {
	case nil:
		return "void"
	case string:
		return "string"
	case int8:
		return "int8"
	case int16:
		return "int16"
	case int32:
		return "int32"
	case int64:
		return "int64"
	case uint8:
		return "uint8"
	case uint16:
		return "uint16"
	case uint32:
		return "uint32"
	case uint64:
		return "uint64"
	case float32:
		return "float32"
	case float64:
		return "float64"
	case bool:
		return "bool"
	case Char:
		return "char"
	case Decimal:
		return "decimal"
	default:
		return "bigint"
	}
}
