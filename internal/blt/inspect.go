package blt

import "io"

// Stats summarizes a decoded file's table sizes. It is a debugging aid
// for cmd/bltree inspect, not part of the wire format.
type Stats struct {
	SymbolCount   int
	TemplateCount int
	RunCount      int
	NodeCount     int
	TopLevelCount int
}

// Inspect decodes just enough of r to report table sizes, without
// materializing node String() output. identifier is accepted for
// parity with Decode and otherwise unused.
func Inspect(r io.Reader, identifier string) (Stats, error) {
	_ = identifier
	registry := DefaultRegistry()
	pr := newPrimitiveReader(r)

	if err := readMagic(pr); err != nil {
		return Stats{}, err
	}
	if err := readVersion(pr); err != nil {
		return Stats{}, err
	}

	symbols, err := readSymbolTable(pr)
	if err != nil {
		return Stats{}, err
	}
	templates, err := readTemplateTable(pr)
	if err != nil {
		return Stats{}, err
	}
	flat, runCount, err := readNodeTable(pr, symbols, templates, registry)
	if err != nil {
		return Stats{}, err
	}
	top, err := readTopLevel(pr, flat)
	if err != nil {
		return Stats{}, err
	}

	return Stats{
		SymbolCount:   len(symbols.symbols),
		TemplateCount: len(templates.templates),
		RunCount:      runCount,
		NodeCount:     len(flat),
		TopLevelCount: len(top),
	}, nil
}
