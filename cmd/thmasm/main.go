// Command thmasm assembles a thm source file into a raw bytecode image.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/thoriumlang/thm/assemble"
	"github.com/thoriumlang/thm/config"
)

func main() {
	var (
		regCount = flag.Int("reg-count", 0, "number of general-purpose registers (default: from config)")
		verbose  = flag.Bool("verbose", false, "print the size of the assembled image")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <input.thm> <output.bin>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 2 {
		flag.Usage()
		os.Exit(2)
	}
	inputPath, outputPath := flag.Arg(0), flag.Arg(1)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "thmasm: loading config: %v\n", err)
		os.Exit(1)
	}

	count := cfg.Machine.RegisterCount
	if *regCount > 0 {
		count = *regCount
	}

	source, err := os.ReadFile(inputPath) // #nosec G304 -- user-supplied source path
	if err != nil {
		fmt.Fprintf(os.Stderr, "thmasm: reading %s: %v\n", inputPath, err)
		os.Exit(1)
	}

	image, err := assemble.Assemble(string(source), assemble.Options{RegisterCount: count})
	if err != nil {
		fmt.Fprintf(os.Stderr, "thmasm: %v\n", err)
		os.Exit(1)
	}

	if err := os.WriteFile(outputPath, image, 0600); err != nil {
		fmt.Fprintf(os.Stderr, "thmasm: writing %s: %v\n", outputPath, err)
		os.Exit(1)
	}

	if *verbose {
		fmt.Printf("thmasm: wrote %d bytes to %s\n", len(image), outputPath)
	}
}
