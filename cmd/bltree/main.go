package main

import (
	"fmt"
	"log"
	"os"

	"github.com/aleksaelezovic/bltree/internal/blt"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: bltree <command> [args]")
		fmt.Println("Commands:")
		fmt.Println("  encode <nodes.json> <out.blt> - encode a JSON fixture to BLT")
		fmt.Println("  decode <in.blt>                - print the top-level forest")
		fmt.Println("  inspect <in.blt>                - print table counts")
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "encode":
		if len(os.Args) < 4 {
			fmt.Println("Usage: bltree encode <nodes.json> <out.blt>")
			os.Exit(1)
		}
		runEncode(os.Args[2], os.Args[3])
	case "decode":
		if len(os.Args) < 3 {
			fmt.Println("Usage: bltree decode <in.blt>")
			os.Exit(1)
		}
		runDecode(os.Args[2])
	case "inspect":
		if len(os.Args) < 3 {
			fmt.Println("Usage: bltree inspect <in.blt>")
			os.Exit(1)
		}
		runInspect(os.Args[2])
	default:
		fmt.Printf("Unknown command: %s\n", command)
		os.Exit(1)
	}
}

func runEncode(fixturePath, outPath string) {
	data, err := os.ReadFile(fixturePath)
	if err != nil {
		log.Fatalf("Failed to read fixture: %v", err)
	}

	nodes, err := loadFixture(data)
	if err != nil {
		log.Fatalf("Failed to parse fixture: %v", err)
	}

	out, err := os.Create(outPath)
	if err != nil {
		log.Fatalf("Failed to create output file: %v", err)
	}
	defer out.Close()

	if err := blt.Encode(out, nodes, nil); err != nil {
		log.Fatalf("Failed to encode: %v", err)
	}

	fmt.Printf("Encoded %d top-level node(s) to %s\n", len(nodes), outPath)
}

func runDecode(inPath string) {
	f, err := os.Open(inPath)
	if err != nil {
		log.Fatalf("Failed to open input file: %v", err)
	}
	defer f.Close()

	nodes, err := blt.Decode(f, inPath, nil)
	if err != nil {
		log.Fatalf("Failed to decode: %v", err)
	}

	for _, n := range nodes {
		fmt.Println(n.String())
	}
}

func runInspect(inPath string) {
	f, err := os.Open(inPath)
	if err != nil {
		log.Fatalf("Failed to open input file: %v", err)
	}
	defer f.Close()

	stats, err := blt.Inspect(f, inPath)
	if err != nil {
		log.Fatalf("Failed to inspect: %v", err)
	}

	fmt.Fprintf(os.Stderr, "symbols: %d\n", stats.SymbolCount)
	fmt.Fprintf(os.Stderr, "templates: %d\n", stats.TemplateCount)
	fmt.Fprintf(os.Stderr, "runs: %d\n", stats.RunCount)
	fmt.Fprintf(os.Stderr, "nodes: %d\n", stats.NodeCount)
	fmt.Fprintf(os.Stderr, "top-level: %d\n", stats.TopLevelCount)
}
