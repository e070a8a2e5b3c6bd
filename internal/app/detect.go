package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"horse.fit/vaani/internal/langdetect"
	"horse.fit/vaani/internal/translation"
)

func runDetect(args []string) int {
	fs := flag.NewFlagSet("detect", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	profile := fs.String("profile", "", "Only report languages this profile accepts as a source")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	text := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if text == "" {
		fmt.Fprintln(os.Stderr, "detect requires text")
		return 2
	}

	if strings.TrimSpace(*profile) == "" {
		code := langdetect.DetectISO6391(text)
		if code == "" {
			fmt.Fprintln(os.Stderr, "Could not detect the language.")
			return 1
		}
		fmt.Println(code)
		return 0
	}

	registry, err := translation.NewDefaultRegistry(*profile, translation.Deps{})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	selected, err := registry.Profile("")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	code, ok := langdetect.NewDetector(sourceCodes(selected.Resolver)).Detect(text)
	if !ok {
		fmt.Fprintf(os.Stderr, "Could not detect a %s source language.\n", selected.Name)
		return 1
	}
	spec, _ := selected.Resolver.Lookup(code)
	fmt.Printf("%s\t%s\n", code, spec.Name)
	return 0
}
