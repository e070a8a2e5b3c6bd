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
	"horse.fit/vaani/internal/language"
	"horse.fit/vaani/internal/speech"
)

func runListen(args []string) int {
	fs := flag.NewFlagSet("listen", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 0, "Listening window (default $CAPTURE_TIMEOUT)")
	to := fs.String("to", "", "Translate the transcript into this language")
	profile := fs.String("profile", "", "Translation profile used with --to")
	speak := fs.Bool("speak", false, "Speak the translation (with --to)")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "listen takes no arguments")
		return 2
	}

	svc, err := bootstrap(envLoader, *profile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	window := *timeout
	if window <= 0 {
		window = svc.cfg.CaptureTimeout
	}

	fmt.Fprintf(os.Stderr, "Listening for %s...\n", window)
	ctx, cancel := context.WithTimeout(context.Background(), window+speech.DefaultPhraseLimit+time.Minute)
	defer cancel()

	text, err := svc.capturer.Capture(ctx, window)
	if err != nil {
		reportFailure(svc.logger, "listen", err)
		return 1
	}
	fmt.Println(text)

	if strings.TrimSpace(*to) == "" {
		return 0
	}
	session, err := svc.sessions.Session("")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	result, err := session.Translate(ctx, text, spokenSource(svc.cfg.SpeechLanguage), *to)
	if err != nil {
		reportFailure(svc.logger, "translate", err)
		return 1
	}
	printResult(result)
	if *speak && session.Profile().Speech {
		return speakResult(ctx, svc, session, result)
	}
	return 0
}

// spokenSource is the source language code implied by the recognizer language tag.
func spokenSource(speechLanguage string) string {
	if code := language.NormalizeCode(speechLanguage); code != "" {
		return code
	}
	return language.English.Code
}
