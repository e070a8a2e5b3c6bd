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
)

func runSpeak(args []string) int {
	fs := flag.NewFlagSet("speak", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	lang := fs.String("lang", "English", "Language to speak in (name or code)")
	profile := fs.String("profile", "", "Translation profile whose languages are used")
	noPlay := fs.Bool("no-play", false, "Only write the audio file")
	timeout := fs.Duration("timeout", time.Minute, "Command timeout")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
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
	if !session.Profile().Speech {
		fmt.Fprintf(os.Stderr, "The %s profile has no spoken output; use --profile voice or indic.\n", session.Profile().Name)
		return 2
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	exitCode := 0
	artifact, err := session.Speak(ctx, text, *lang, !*noPlay)
	if err != nil {
		reportFailure(svc.logger, "speak", err)
		if artifact == nil {
			return 1
		}
		exitCode = 1
	}
	if artifact.Fallback {
		fmt.Fprintf(os.Stderr, "No voice for %s; spoken with the %s voice.\n", strings.TrimSpace(*lang), artifact.Language)
	}
	fmt.Println(artifact.Path)
	return exitCode
}
