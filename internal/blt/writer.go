package blt

import "github.com/aleksaelezovic/bltree/pkg/ltree"

// writerEntry is one flat-node-table slot, holding everything the encoder
// needs to emit its body.
type writerEntry struct {
	kind        encodingKind
	template    nodeTemplate // valid when kind == kindTemplatedNode
	slots       []int        // node-table references, in template slot order
	symbolIndex int          // valid for kindIDNode and kindString
	literal     *ltree.Literal
}

// runMeta describes one contiguous run of the flat node table (spec §3,
// invariant I3): every entry in [start, start+count) shares kind (and,
// for TemplatedNode runs, template).
type runMeta struct {
	kind     encodingKind
	template nodeTemplate
	start    int
	count    int
}

// builder is the WriterState of spec §3/§4.4: the node-table builder
// that assigns every distinct node a flat index in child-before-parent
// order, grouped into homogeneously-encoded runs.
type builder struct {
	symbols   *symbolTable
	templates *templateRegistry
	cmp       *comparator
	registry  *LiteralRegistry
	buckets   map[uint64][]bucketEntry
	flat      []writerEntry
	runs      []runMeta
}

type bucketEntry struct {
	node  ltree.Node
	index int
}

func newBuilder(registry *LiteralRegistry) *builder {
	return &builder{
		symbols:   newSymbolTable(),
		templates: newTemplateRegistry(),
		cmp:       newComparator(),
		registry:  registry,
		buckets:   make(map[uint64][]bucketEntry),
	}
}

func (b *builder) lookup(n ltree.Node) (int, bool) {
	h := b.cmp.hashOf(n)
	for _, e := range b.buckets[h] {
		if b.cmp.equal(n, e.node) {
			return e.index, true
		}
	}
	return 0, false
}

func (b *builder) register(n ltree.Node, index int) {
	h := b.cmp.hashOf(n)
	b.buckets[h] = append(b.buckets[h], bucketEntry{node: n, index: index})
}

// append commits entry as the next flat-table slot, extending the
// current run when its kind (and template, for TemplatedNode) matches,
// or starting a new run otherwise.
func (b *builder) append(entry writerEntry) int {
	index := len(b.flat)
	b.flat = append(b.flat, entry)

	if n := len(b.runs); n > 0 {
		last := &b.runs[n-1]
		sameKind := last.kind == entry.kind
		sameTemplate := entry.kind != kindTemplatedNode || last.template == entry.template
		if sameKind && sameTemplate {
			last.count++
			return index
		}
	}
	b.runs = append(b.runs, runMeta{kind: entry.kind, template: entry.template, start: index, count: 1})
	return index
}

// frame is one stack entry of the explicit work-stack that replaces
// native recursion in getIndex (spec §9: deep recursion tolerance).
type frame struct {
	node         ltree.Node
	children     []ltree.Node
	childIdx     int
	childIndices []int
	prepared     bool
}

// getIndex is the builder's one public operation (spec §4.4): interns
// node (and, first, all of its node-table children) and returns its flat
// index. Recursion is iterative via an explicit stack so arbitrarily
// deep input trees never exhaust the native call stack.
func (b *builder) getIndex(node ltree.Node) (int, error) {
	if idx, ok := b.lookup(node); ok {
		return idx, nil
	}

	stack := []*frame{{node: node}}
	var result int

	for len(stack) > 0 {
		f := stack[len(stack)-1]

		if !f.prepared {
			if idx, ok := b.lookup(f.node); ok {
				stack = stack[:len(stack)-1]
				result = idx
				if len(stack) > 0 {
					parent := stack[len(stack)-1]
					parent.childIndices = append(parent.childIndices, idx)
				}
				continue
			}
			f.children = b.prepareChildren(f.node)
			f.prepared = true
		}

		if f.childIdx < len(f.children) {
			child := f.children[f.childIdx]
			f.childIdx++
			if idx, ok := b.lookup(child); ok {
				f.childIndices = append(f.childIndices, idx)
				continue
			}
			stack = append(stack, &frame{node: child})
			continue
		}

		entry, err := b.classifyEntry(f.node, f.childIndices)
		if err != nil {
			return 0, err
		}
		idx := b.append(entry)
		b.register(f.node, idx)

		stack = stack[:len(stack)-1]
		result = idx
		if len(stack) > 0 {
			parent := stack[len(stack)-1]
			parent.childIndices = append(parent.childIndices, idx)
		}
	}

	return result, nil
}

// prepareChildren computes the ordered list of node-table children to
// intern before node itself (spec §4.4 step 2), resolving any
// symbol-table references (bare call targets, identifier names, string
// values) immediately as a side effect.
func (b *builder) prepareChildren(node ltree.Node) []ltree.Node {
	if attrs := node.Attrs(); len(attrs) > 0 {
		children := make([]ltree.Node, 0, len(attrs)+1)
		children = append(children, attrs...)
		children = append(children, ltree.StripAttrs(node))
		return children
	}

	switch v := node.(type) {
	case *ltree.Call:
		if id, ok := v.Target.(*ltree.Identifier); ok && len(id.Attrs()) == 0 {
			b.symbols.getIndex(id.Name)
			return append([]ltree.Node{}, v.Args...)
		}
		children := make([]ltree.Node, 0, len(v.Args)+1)
		children = append(children, v.Target)
		children = append(children, v.Args...)
		return children

	case *ltree.Identifier:
		b.symbols.getIndex(v.Name)
		return nil

	case *ltree.Literal:
		if v.Kind == ltree.KindString {
			b.symbols.getIndex(v.Value.(string))
		}
		return nil

	default:
		return nil
	}
}

// classifyEntry builds the writerEntry for node once all of its
// node-table children are interned (childIndices holds their indices in
// the same order prepareChildren produced them).
func (b *builder) classifyEntry(node ltree.Node, childIndices []int) (writerEntry, error) {
	if attrs := node.Attrs(); len(attrs) > 0 {
		t := attributeTemplate(len(attrs))
		b.templates.getIndex(t)
		// children order was [attr0..attrN-1, stripped]; slot order is
		// [stripped, attr0..attrN-1] per spec §4.6.
		stripped := childIndices[len(childIndices)-1]
		slots := append([]int{stripped}, childIndices[:len(childIndices)-1]...)
		return writerEntry{kind: kindTemplatedNode, template: t, slots: slots}, nil
	}

	switch v := node.(type) {
	case *ltree.Call:
		if id, ok := v.Target.(*ltree.Identifier); ok && len(id.Attrs()) == 0 {
			symIdx := b.symbols.getIndex(id.Name)
			t := callIDTemplate(symIdx, len(v.Args))
			b.templates.getIndex(t)
			return writerEntry{kind: kindTemplatedNode, template: t, slots: childIndices}, nil
		}
		t := callTemplate(len(v.Args))
		b.templates.getIndex(t)
		return writerEntry{kind: kindTemplatedNode, template: t, slots: childIndices}, nil

	case *ltree.Identifier:
		return writerEntry{kind: kindIDNode, symbolIndex: b.symbols.getIndex(v.Name)}, nil

	case *ltree.Literal:
		if v.Kind == ltree.KindNull {
			return writerEntry{kind: kindNull, literal: v}, nil
		}
		if v.Kind == ltree.KindVoid {
			return writerEntry{kind: kindVoid, literal: v}, nil
		}
		if v.Kind == ltree.KindString {
			return writerEntry{kind: kindString, symbolIndex: b.symbols.getIndex(v.Value.(string)), literal: v}, nil
		}
		enc, ok := b.registry.encoderFor(v.Value)
		if !ok {
			return writerEntry{}, newError(UnsupportedLiteral, "no encoder registered for literal's runtime type")
		}
		return writerEntry{kind: encodingKind(enc.Kind()), literal: v}, nil

	default:
		return writerEntry{}, newError(UnsupportedLiteral, "unrecognized node type")
	}
}
