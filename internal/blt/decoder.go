package blt

import (
	"io"

	"github.com/aleksaelezovic/bltree/pkg/ltree"
)

// Decode reads a BLT-encoded forest from r (spec §4.8). identifier is an
// opaque caller label with no on-disk representation; this node algebra
// carries no source-location field, so it is accepted for API parity with
// the source format but otherwise unused. A nil registry uses
// DefaultRegistry.
func Decode(r io.Reader, identifier string, registry *LiteralRegistry) ([]ltree.Node, error) {
	_ = identifier
	if registry == nil {
		registry = DefaultRegistry()
	}

	pr := newPrimitiveReader(r)

	if err := readMagic(pr); err != nil {
		return nil, err
	}
	if err := readVersion(pr); err != nil {
		return nil, err
	}

	symbols, err := readSymbolTable(pr)
	if err != nil {
		return nil, err
	}
	templates, err := readTemplateTable(pr)
	if err != nil {
		return nil, err
	}
	flat, _, err := readNodeTable(pr, symbols, templates, registry)
	if err != nil {
		return nil, err
	}
	return readTopLevel(pr, flat)
}

func readMagic(pr *primitiveReader) error {
	b, err := pr.readBytes(3)
	if err != nil {
		return err
	}
	if b[0] != magic[0] || b[1] != magic[1] || b[2] != magic[2] {
		return newError(BadMagic, "missing BLT magic")
	}
	return nil
}

func readVersion(pr *primitiveReader) error {
	v, err := pr.readInt32LE()
	if err != nil {
		return err
	}
	major, minor := decodeVersion(v)
	if major > formatMajor || (major == formatMajor && minor > formatMinor) {
		return newError(UnsupportedVersion, "unsupported format version")
	}
	return nil
}

func readSymbolTable(pr *primitiveReader) (*symbolReader, error) {
	n, err := pr.readUvarintIndex()
	if err != nil {
		return nil, err
	}
	symbols := make([]string, n)
	for i := 0; i < n; i++ {
		s, err := pr.readString()
		if err != nil {
			return nil, err
		}
		symbols[i] = s
	}
	return &symbolReader{symbols: symbols}, nil
}

func readTemplateTable(pr *primitiveReader) (*templateReader, error) {
	n, err := pr.readUvarintIndex()
	if err != nil {
		return nil, err
	}
	templates := make([]nodeTemplate, n)
	for i := 0; i < n; i++ {
		tagByte, err := pr.readByte()
		if err != nil {
			return nil, err
		}
		switch templateTag(tagByte) {
		case tagCallTemplate:
			arity, err := pr.readUvarintIndex()
			if err != nil {
				return nil, err
			}
			templates[i] = callTemplate(arity)
		case tagCallIDTemplate:
			targetIndex, err := pr.readUvarintIndex()
			if err != nil {
				return nil, err
			}
			arity, err := pr.readUvarintIndex()
			if err != nil {
				return nil, err
			}
			templates[i] = callIDTemplate(targetIndex, arity)
		case tagAttributeTemplate:
			attrCount, err := pr.readUvarintIndex()
			if err != nil {
				return nil, err
			}
			templates[i] = attributeTemplate(attrCount)
		default:
			return nil, newError(MalformedInput, "unknown template tag")
		}
	}
	return &templateReader{templates: templates}, nil
}

// readNodeTable reconstructs the flat node array run-by-run, left to
// right, so every slot reference a node body carries indexes a position
// already populated (spec §4.8 step 5).
func readNodeTable(pr *primitiveReader, symbols *symbolReader, templates *templateReader, registry *LiteralRegistry) ([]ltree.Node, int, error) {
	runCount, err := pr.readUvarintIndex()
	if err != nil {
		return nil, 0, err
	}

	var flat []ltree.Node
	resolve := func(idx int) (ltree.Node, error) {
		if idx < 0 || idx >= len(flat) {
			return nil, newError(ForwardReference, "node-table reference not yet populated")
		}
		return flat[idx], nil
	}

	for ri := 0; ri < runCount; ri++ {
		count, err := pr.readUvarintIndex()
		if err != nil {
			return nil, 0, err
		}
		kindByte, err := pr.readByte()
		if err != nil {
			return nil, 0, err
		}
		kind := encodingKind(kindByte)

		switch kind {
		case kindTemplatedNode:
			tmplIdx, err := pr.readUvarintIndex()
			if err != nil {
				return nil, 0, err
			}
			tmpl, err := templates.get(tmplIdx)
			if err != nil {
				return nil, 0, err
			}
			for i := 0; i < count; i++ {
				n, err := readTemplatedNode(pr, tmpl, symbols, resolve)
				if err != nil {
					return nil, 0, err
				}
				flat = append(flat, n)
			}

		case kindVariablyTemplatedNode:
			for i := 0; i < count; i++ {
				tmplIdx, err := pr.readUvarintIndex()
				if err != nil {
					return nil, 0, err
				}
				tmpl, err := templates.get(tmplIdx)
				if err != nil {
					return nil, 0, err
				}
				n, err := readTemplatedNode(pr, tmpl, symbols, resolve)
				if err != nil {
					return nil, 0, err
				}
				flat = append(flat, n)
			}

		case kindIDNode:
			for i := 0; i < count; i++ {
				symIdx, err := pr.readUvarintIndex()
				if err != nil {
					return nil, 0, err
				}
				name, err := symbols.get(symIdx)
				if err != nil {
					return nil, 0, err
				}
				flat = append(flat, ltree.NewIdentifier(name))
			}

		case kindString:
			for i := 0; i < count; i++ {
				symIdx, err := pr.readUvarintIndex()
				if err != nil {
					return nil, 0, err
				}
				s, err := symbols.get(symIdx)
				if err != nil {
					return nil, 0, err
				}
				flat = append(flat, ltree.NewLiteral(ltree.KindString, s))
			}

		case kindNull:
			for i := 0; i < count; i++ {
				flat = append(flat, ltree.NewNullLiteral())
			}

		case kindVoid:
			for i := 0; i < count; i++ {
				flat = append(flat, ltree.NewLiteral(ltree.KindVoid, nil))
			}

		default:
			litKind, ok := literalKindOf[kind]
			if !ok {
				return nil, 0, newError(MalformedInput, "unknown node-table run kind")
			}
			dec, ok := registry.decoderFor(kind)
			if !ok {
				return nil, 0, newError(UnsupportedLiteral, "no decoder registered for encoding kind")
			}
			for i := 0; i < count; i++ {
				v, err := dec.Decode(pr)
				if err != nil {
					return nil, 0, err
				}
				flat = append(flat, ltree.NewLiteral(litKind, v))
			}
		}
	}

	return flat, runCount, nil
}

func readTemplatedNode(pr *primitiveReader, tmpl nodeTemplate, symbols *symbolReader, resolve func(int) (ltree.Node, error)) (ltree.Node, error) {
	slots := make([]int, tmpl.slotCount())
	for i := range slots {
		idx, err := pr.readUvarintIndex()
		if err != nil {
			return nil, err
		}
		slots[i] = idx
	}

	switch tmpl.tag {
	case tagAttributeTemplate:
		stripped, err := resolve(slots[0])
		if err != nil {
			return nil, err
		}
		attrs := make([]ltree.Node, len(slots)-1)
		for i, s := range slots[1:] {
			attrs[i], err = resolve(s)
			if err != nil {
				return nil, err
			}
		}
		return stripped.WithAttrs(attrs), nil

	case tagCallIDTemplate:
		name, err := symbols.get(tmpl.targetIndex)
		if err != nil {
			return nil, err
		}
		args := make([]ltree.Node, len(slots))
		for i, s := range slots {
			args[i], err = resolve(s)
			if err != nil {
				return nil, err
			}
		}
		return ltree.NewCall(ltree.NewIdentifier(name), args...), nil

	case tagCallTemplate:
		target, err := resolve(slots[0])
		if err != nil {
			return nil, err
		}
		args := make([]ltree.Node, len(slots)-1)
		for i, s := range slots[1:] {
			args[i], err = resolve(s)
			if err != nil {
				return nil, err
			}
		}
		return ltree.NewCall(target, args...), nil

	default:
		return nil, newError(MalformedInput, "unknown template tag")
	}
}

func readTopLevel(pr *primitiveReader, flat []ltree.Node) ([]ltree.Node, error) {
	n, err := pr.readUvarintIndex()
	if err != nil {
		return nil, err
	}
	top := make([]ltree.Node, n)
	for i := 0; i < n; i++ {
		idx, err := pr.readUvarintIndex()
		if err != nil {
			return nil, err
		}
		if idx < 0 || idx >= len(flat) {
			return nil, newError(ForwardReference, "top-level reference not yet populated")
		}
		top[i] = flat[idx]
	}
	return top, nil
}
