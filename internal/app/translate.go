package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"horse.fit/vaani/internal/cli"
	"horse.fit/vaani/internal/translation"
)

func runTranslate(args []string) int {
	fs := flag.NewFlagSet("translate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	from := fs.String("from", "", "Source language name or code (\"auto\" to detect)")
	to := fs.String("to", "", "Target language name or code")
	profile := fs.String("profile", "", "Translation profile: basic, voice or indic (default $TRANSLATION_PROFILE)")
	speak := fs.Bool("speak", false, "Speak the translation after printing it")
	format := fs.String("format", outputFormatText, "Output format: text or json")
	timeout := fs.Duration("timeout", 3*time.Minute, "Command timeout")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if strings.TrimSpace(*to) == "" {
		fmt.Fprintln(os.Stderr, "--to is required")
		printTranslateUsage()
		return 2
	}
	outputFormat, err := parseOutputFormat(*format, outputFormatText)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	text := strings.Join(fs.Args(), " ")

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

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	result, err := session.Translate(ctx, text, *from, *to)
	if err != nil {
		reportFailure(svc.logger, "translate", err)
		return 1
	}

	if outputFormat == outputFormatJSON {
		if err := printJSON(result); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode result: %v\n", err)
			return 1
		}
	} else {
		printResult(result)
	}

	if *speak {
		if code := speakResult(ctx, svc, session, result); code != 0 {
			return code
		}
	}
	return 0
}

func printResult(result *translation.Result) {
	fmt.Println(result.Text)
	detected := ""
	if result.DetectedSource {
		detected = " (detected)"
	}
	fmt.Fprintf(os.Stderr, "%s%s -> %s via %s cache_hit=%t latency_ms=%d\n",
		result.Source.Name, detected, result.Target.Name, result.Provider, result.CacheHit, result.LatencyMs)
}

func speakResult(ctx context.Context, svc *services, session *translation.Session, result *translation.Result) int {
	artifact, err := session.Speak(ctx, result.Text, result.Target.Name, true)
	if artifact != nil && artifact.Fallback {
		fmt.Fprintf(os.Stderr, "No %s voice available; spoken with the %s voice.\n", result.Target.Name, artifact.Language)
	}
	if err != nil {
		reportFailure(svc.logger, "speak", err)
		return 1
	}
	return 0
}

func printTranslateUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  vaani translate --to <lang> [--from <lang>|auto] [--profile voice] [--speak] [--format text|json] [--env .env] <text>")
}
