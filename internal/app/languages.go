package app

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"horse.fit/vaani/internal/cli"
	"horse.fit/vaani/internal/language"
)

type languageRow struct {
	Spec   language.Spec `json:"language"`
	Source bool          `json:"source"`
	Target bool          `json:"target"`
}

func runLanguages(args []string) int {
	fs := flag.NewFlagSet("languages", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	profile := fs.String("profile", "", "Translation profile: basic, voice or indic")
	format := fs.String("format", outputFormatTable, "Output format: table or json")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	outputFormat, err := parseOutputFormat(*format, outputFormatTable)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	svc, err := bootstrap(envLoader, *profile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	session, err := svc.sessions.Session("")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	rows := languageRows(session.Profile().Resolver)

	if outputFormat == outputFormatJSON {
		if err := printJSON(map[string]any{
			"profile":   session.Profile().Name,
			"topology":  session.Profile().Resolver.Topology(),
			"languages": rows,
		}); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode languages: %v\n", err)
			return 1
		}
		return 0
	}

	fmt.Fprintf(os.Stderr, "profile=%s topology=%s\n", session.Profile().Name, session.Profile().Resolver.Topology())
	tableRows := make([][]string, 0, len(rows))
	for _, row := range rows {
		code := row.Spec.Code
		if !row.Spec.Supported() {
			code = "-"
		}
		tableRows = append(tableRows, []string{
			row.Spec.Name,
			truncateForTable(row.Spec.Native, 20),
			code,
			yesNo(row.Source),
			yesNo(row.Target),
		})
	}
	if err := writeTable([]string{"NAME", "NATIVE", "CODE", "SOURCE", "TARGET"}, tableRows); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write table: %v\n", err)
		return 1
	}
	return 0
}

// languageRows merges the source and target lists of a resolver, keeping source order
// first.
func languageRows(resolver language.Resolver) []languageRow {
	var rows []languageRow
	index := map[string]int{}
	add := func(spec language.Spec, source bool) {
		key := spec.Name + "\x00" + spec.Code
		i, ok := index[key]
		if !ok {
			index[key] = len(rows)
			rows = append(rows, languageRow{Spec: spec})
			i = len(rows) - 1
		}
		if source {
			rows[i].Source = true
		} else {
			rows[i].Target = true
		}
	}
	for _, spec := range resolver.Sources() {
		add(spec, true)
	}
	for _, spec := range resolver.Targets() {
		add(spec, false)
	}
	return rows
}
