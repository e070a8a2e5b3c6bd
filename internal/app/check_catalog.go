package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
)

func runCheckCatalog(args []string) int {
	fs := flag.NewFlagSet("check-catalog", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Usage: vaani check-catalog <file> [file...]")
		return 2
	}

	failed := 0
	for _, path := range fs.Args() {
		doc, err := readCatalog(path)
		if err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "invalid %s: %v\n", path, err)
			continue
		}
		unsupported := 0
		for _, spec := range doc.Languages {
			if !spec.Supported() {
				unsupported++
			}
		}
		fmt.Printf("ok %s version=%d languages=%d without_code=%d\n", path, doc.Version, len(doc.Languages), unsupported)
	}
	if failed > 0 {
		return 1
	}
	return 0
}
