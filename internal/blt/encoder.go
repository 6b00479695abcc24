package blt

import (
	"io"

	"github.com/aleksaelezovic/bltree/pkg/ltree"
)

const (
	formatMajor = 1
	formatMinor = 0
)

var magic = [3]byte{'B', 'L', 'T'}

// Encode writes nodes (the top-level forest) to w in BLT wire format
// (spec §6). A nil registry uses DefaultRegistry.
func Encode(w io.Writer, nodes []ltree.Node, registry *LiteralRegistry) error {
	if registry == nil {
		registry = DefaultRegistry()
	}

	b := newBuilder(registry)
	if err := clusterPass(b, nodes); err != nil {
		return err
	}

	topRefs := make([]int, len(nodes))
	for i, n := range nodes {
		idx, err := b.getIndex(n)
		if err != nil {
			return err
		}
		topRefs[i] = idx
	}

	pw := newPrimitiveWriter(w)

	if err := pw.writeBytes(magic[:]); err != nil {
		return err
	}
	if err := pw.writeInt32LE(encodeVersion(formatMajor, formatMinor)); err != nil {
		return err
	}

	if err := writeSymbolTable(pw, b.symbols); err != nil {
		return err
	}
	if err := writeTemplateTable(pw, b.templates); err != nil {
		return err
	}
	if err := writeNodeTable(pw, b.runs, b.flat, b.templates, registry); err != nil {
		return err
	}
	if err := writeTopLevel(pw, topRefs); err != nil {
		return err
	}

	return pw.Flush()
}

// encodeVersion packs (major, minor) high16=major, low16=minor, per §6's
// prose and the §8 version-gate formula `(MAX_MAJOR+1)<<16`. This
// disagrees with §8 concrete scenario 1's literal byte sequence for
// version 1.0; see DESIGN.md for why the formula wins.
func encodeVersion(major, minor uint16) int32 {
	return int32(uint32(minor) | uint32(major)<<16)
}

func decodeVersion(v int32) (major, minor uint16) {
	u := uint32(v)
	return uint16(u >> 16), uint16(u & 0xFFFF)
}

func writeSymbolTable(pw *primitiveWriter, symbols *symbolTable) error {
	if err := pw.writeUvarint(uint64(symbols.len())); err != nil {
		return err
	}
	for _, s := range symbols.symbols {
		if err := pw.writeString(s); err != nil {
			return err
		}
	}
	return nil
}

func writeTemplateTable(pw *primitiveWriter, templates *templateRegistry) error {
	if err := pw.writeUvarint(uint64(templates.len())); err != nil {
		return err
	}
	for _, t := range templates.templates {
		if err := pw.writeByte(byte(t.tag)); err != nil {
			return err
		}
		switch t.tag {
		case tagCallTemplate:
			if err := pw.writeUvarint(uint64(t.arity)); err != nil {
				return err
			}
		case tagCallIDTemplate:
			if err := pw.writeUvarint(uint64(t.targetIndex)); err != nil {
				return err
			}
			if err := pw.writeUvarint(uint64(t.arity)); err != nil {
				return err
			}
		case tagAttributeTemplate:
			if err := pw.writeUvarint(uint64(t.attrCount)); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeNodeTable(pw *primitiveWriter, runs []runMeta, flat []writerEntry, templates *templateRegistry, registry *LiteralRegistry) error {
	if err := pw.writeUvarint(uint64(len(runs))); err != nil {
		return err
	}
	for _, run := range runs {
		if err := pw.writeUvarint(uint64(run.count)); err != nil {
			return err
		}
		if err := pw.writeByte(byte(run.kind)); err != nil {
			return err
		}
		if err := writeRunBody(pw, run, flat, templates, registry); err != nil {
			return err
		}
	}
	return nil
}

func writeRunBody(pw *primitiveWriter, run runMeta, flat []writerEntry, templates *templateRegistry, registry *LiteralRegistry) error {
	switch run.kind {
	case kindTemplatedNode:
		if err := pw.writeUvarint(uint64(templates.getIndex(run.template))); err != nil {
			return err
		}
		for i := run.start; i < run.start+run.count; i++ {
			for _, slot := range flat[i].slots {
				if err := pw.writeUvarint(uint64(slot)); err != nil {
					return err
				}
			}
		}
	case kindIDNode, kindString:
		for i := run.start; i < run.start+run.count; i++ {
			if err := pw.writeUvarint(uint64(flat[i].symbolIndex)); err != nil {
				return err
			}
		}
	case kindNull, kindVoid:
		// self-identifying from the run's kind tag; zero bytes per node.
	default:
		for i := run.start; i < run.start+run.count; i++ {
			lit := flat[i].literal
			enc, ok := registry.encoderFor(lit.Value)
			if !ok {
				return newError(UnsupportedLiteral, "no encoder registered for literal's runtime type")
			}
			if err := enc.Encode(pw, lit.Value); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeTopLevel(pw *primitiveWriter, refs []int) error {
	if err := pw.writeUvarint(uint64(len(refs))); err != nil {
		return err
	}
	for _, r := range refs {
		if err := pw.writeUvarint(uint64(r)); err != nil {
			return err
		}
	}
	return nil
}
