package app

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"horse.fit/vaani/internal/failure"
)

const (
	outputFormatText  = "text"
	outputFormatTable = "table"
	outputFormatJSON  = "json"
)

func parseOutputFormat(raw, defaultFormat string) (string, error) {
	format := strings.TrimSpace(strings.ToLower(raw))
	if format == "" {
		format = strings.TrimSpace(strings.ToLower(defaultFormat))
	}
	switch format {
	case defaultFormat, outputFormatJSON:
		return format, nil
	default:
		return "", fmt.Errorf("--format must be %s or json", defaultFormat)
	}
}

func truncateForTable(value string, maxLen int) string {
	trimmed := strings.TrimSpace(value)
	if maxLen <= 0 {
		return trimmed
	}
	if utf8.RuneCountInString(trimmed) <= maxLen {
		return trimmed
	}

	runes := []rune(trimmed)
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

func printJSON(value any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

func writeTable(headers []string, rows [][]string) error {
	writer := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	if _, err := fmt.Fprintln(writer, strings.Join(headers, "\t")); err != nil {
		return err
	}
	for _, row := range rows {
		if _, err := fmt.Fprintln(writer, strings.Join(row, "\t")); err != nil {
			return err
		}
	}
	return writer.Flush()
}

// reportFailure prints the user-facing message and logs the full chain.
func reportFailure(logger zerolog.Logger, action string, err error) {
	kind := failure.KindOf(err)
	if kind == "" {
		logger.Error().Err(err).Msg(action + " failed")
		fmt.Fprintf(os.Stderr, "%s failed: %v\n", strings.ToUpper(action[:1])+action[1:], err)
		return
	}
	if failure.IsRejected(err) {
		logger.Debug().Err(err).Str("kind", string(kind)).Msg(action + " rejected")
	} else {
		logger.Error().Err(err).Str("kind", string(kind)).Msg(action + " failed")
	}
	fmt.Fprintln(os.Stderr, failure.Message(err))
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return ""
}
