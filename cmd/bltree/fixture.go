package main

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/aleksaelezovic/bltree/internal/blt"
	"github.com/aleksaelezovic/bltree/pkg/ltree"
)

// fixtureNode mirrors pkg/ltree.Node as a JSON object, since a Node's
// attribute list is unexported and its constructors take typed Go values
// rather than a wire-agnostic shape.
type fixtureNode struct {
	Type   string          `json:"type"` // "id", "literal", or "call"
	Name   string          `json:"name,omitempty"`
	Kind   string          `json:"kind,omitempty"` // literal kind, e.g. "int32", "string", "null"
	Value  json.RawMessage `json:"value,omitempty"`
	Target *fixtureNode    `json:"target,omitempty"`
	Args   []fixtureNode   `json:"args,omitempty"`
	Attrs  []fixtureNode   `json:"attrs,omitempty"`
}

func loadFixture(data []byte) ([]ltree.Node, error) {
	var forest []fixtureNode
	if err := json.Unmarshal(data, &forest); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	nodes := make([]ltree.Node, len(forest))
	for i, f := range forest {
		n, err := f.toNode()
		if err != nil {
			return nil, fmt.Errorf("forest[%d]: %w", i, err)
		}
		nodes[i] = n
	}
	return nodes, nil
}

func (f fixtureNode) toNode() (ltree.Node, error) {
	var n ltree.Node
	var err error

	switch f.Type {
	case "id":
		n = ltree.NewIdentifier(f.Name)
	case "literal":
		n, err = f.toLiteral()
	case "call":
		if f.Target == nil {
			return nil, fmt.Errorf("call node missing target")
		}
		target, err := f.Target.toNode()
		if err != nil {
			return nil, err
		}
		args := make([]ltree.Node, len(f.Args))
		for i, a := range f.Args {
			args[i], err = a.toNode()
			if err != nil {
				return nil, fmt.Errorf("args[%d]: %w", i, err)
			}
		}
		n = ltree.NewCall(target, args...)
	default:
		return nil, fmt.Errorf("unknown node type %q", f.Type)
	}
	if err != nil {
		return nil, err
	}

	if len(f.Attrs) > 0 {
		attrs := make([]ltree.Node, len(f.Attrs))
		for i, a := range f.Attrs {
			attrs[i], err = a.toNode()
			if err != nil {
				return nil, fmt.Errorf("attrs[%d]: %w", i, err)
			}
		}
		n = n.WithAttrs(attrs)
	}
	return n, nil
}

func (f fixtureNode) toLiteral() (*ltree.Literal, error) {
	if f.Kind == "null" || f.Kind == "" {
		return ltree.NewNullLiteral(), nil
	}

	switch f.Kind {
	case "void":
		return ltree.NewLiteral(ltree.KindVoid, nil), nil
	case "string":
		var v string
		if err := json.Unmarshal(f.Value, &v); err != nil {
			return nil, err
		}
		return ltree.NewLiteral(ltree.KindString, v), nil
	case "int8":
		var v int8
		if err := json.Unmarshal(f.Value, &v); err != nil {
			return nil, err
		}
		return ltree.NewLiteral(ltree.KindInt8, v), nil
	case "int16":
		var v int16
		if err := json.Unmarshal(f.Value, &v); err != nil {
			return nil, err
		}
		return ltree.NewLiteral(ltree.KindInt16, v), nil
	case "int32":
		var v int32
		if err := json.Unmarshal(f.Value, &v); err != nil {
			return nil, err
		}
		return ltree.NewLiteral(ltree.KindInt32, v), nil
	case "int64":
		var v int64
		if err := json.Unmarshal(f.Value, &v); err != nil {
			return nil, err
		}
		return ltree.NewLiteral(ltree.KindInt64, v), nil
	case "uint8":
		var v uint8
		if err := json.Unmarshal(f.Value, &v); err != nil {
			return nil, err
		}
		return ltree.NewLiteral(ltree.KindUint8, v), nil
	case "uint16":
		var v uint16
		if err := json.Unmarshal(f.Value, &v); err != nil {
			return nil, err
		}
		return ltree.NewLiteral(ltree.KindUint16, v), nil
	case "uint32":
		var v uint32
		if err := json.Unmarshal(f.Value, &v); err != nil {
			return nil, err
		}
		return ltree.NewLiteral(ltree.KindUint32, v), nil
	case "uint64":
		var v uint64
		if err := json.Unmarshal(f.Value, &v); err != nil {
			return nil, err
		}
		return ltree.NewLiteral(ltree.KindUint64, v), nil
	case "float32":
		var v float32
		if err := json.Unmarshal(f.Value, &v); err != nil {
			return nil, err
		}
		return ltree.NewLiteral(ltree.KindFloat32, v), nil
	case "float64":
		var v float64
		if err := json.Unmarshal(f.Value, &v); err != nil {
			return nil, err
		}
		return ltree.NewLiteral(ltree.KindFloat64, v), nil
	case "bool":
		var v bool
		if err := json.Unmarshal(f.Value, &v); err != nil {
			return nil, err
		}
		return ltree.NewLiteral(ltree.KindBoolean, v), nil
	case "char":
		var v uint16
		if err := json.Unmarshal(f.Value, &v); err != nil {
			return nil, err
		}
		return ltree.NewLiteral(ltree.KindChar, blt.Char(v)), nil
	case "decimal":
		var v struct{ Lo, Mid, Hi, Flags uint32 }
		if err := json.Unmarshal(f.Value, &v); err != nil {
			return nil, err
		}
		return ltree.NewLiteral(ltree.KindDecimal, blt.Decimal{Lo: v.Lo, Mid: v.Mid, Hi: v.Hi, Flags: v.Flags}), nil
	case "bigint":
		var s string
		if err := json.Unmarshal(f.Value, &s); err != nil {
			return nil, err
		}
		n, ok := new(big.Int).SetString(s, 10)
		if !ok {
			return nil, fmt.Errorf("invalid bigint literal %q", s)
		}
		return ltree.NewLiteral(ltree.KindBigInteger, n), nil
	default:
		return nil, fmt.Errorf("unknown literal kind %q", f.Kind)
	}
}
