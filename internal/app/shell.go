package app

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"horse.fit/vaani/internal/cli"
	"horse.fit/vaani/internal/failure"
	"horse.fit/vaani/internal/translation"
)

type voiceInput interface {
	Capture(ctx context.Context, timeout time.Duration) (string, error)
}

// shell is the interactive translator: typed lines are translated, ":" lines are
// commands.
type shell struct {
	session        *translation.Session
	capturer       voiceInput
	captureTimeout time.Duration
	spokenSource   string
	in             io.Reader
	out            io.Writer

	source string
	target string
	speak  bool
}

func runShell(args []string) int {
	fs := flag.NewFlagSet("shell", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	profile := fs.String("profile", "", "Translation profile: basic, voice or indic")
	from := fs.String("from", "", "Initial source language")
	to := fs.String("to", "", "Initial target language")
	speak := fs.Bool("speak", false, "Speak every translation")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sh := newShell(session, svc.capturer, os.Stdin, os.Stdout)
	sh.captureTimeout = svc.cfg.CaptureTimeout
	sh.spokenSource = spokenSource(svc.cfg.SpeechLanguage)
	if strings.TrimSpace(*from) != "" {
		sh.source = strings.TrimSpace(*from)
	}
	sh.target = strings.TrimSpace(*to)
	sh.speak = *speak && session.Profile().Speech

	if err := sh.run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "Shell failed: %v\n", err)
		return 1
	}
	return 0
}

func newShell(session *translation.Session, capturer voiceInput, in io.Reader, out io.Writer) *shell {
	profile := session.Profile()
	source := ""
	if profile.AutoSource {
		source = translation.AutoSource
	} else if sources := profile.Resolver.Sources(); len(sources) == 1 {
		source = sources[0].Name
	}
	if !profile.Speech {
		capturer = nil
	}
	return &shell{
		session:        session,
		capturer:       capturer,
		captureTimeout: 5 * time.Second,
		spokenSource:   "en",
		in:             in,
		out:            out,
		source:         source,
	}
}

func (s *shell) run(ctx context.Context) error {
	fmt.Fprintf(s.out, "vaani %s profile. Type text to translate, :help for commands.\n", s.session.Profile().Name)
	scanner := bufio.NewScanner(s.in)
	s.prompt()
	for scanner.Scan() {
		if s.handle(ctx, strings.TrimSpace(scanner.Text())) {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		s.prompt()
	}
	return scanner.Err()
}

func (s *shell) prompt() {
	source := s.source
	if source == "" {
		source = "?"
	}
	target := s.target
	if target == "" {
		target = "?"
	}
	fmt.Fprintf(s.out, "[%s -> %s]> ", source, target)
}

// handle runs one input line and reports whether the shell should exit.
func (s *shell) handle(ctx context.Context, line string) bool {
	if line == "" {
		return false
	}
	if !strings.HasPrefix(line, ":") {
		s.translate(ctx, line, s.source)
		return false
	}

	fields := strings.Fields(line)
	arg := strings.TrimSpace(strings.TrimPrefix(line, fields[0]))
	switch strings.ToLower(fields[0]) {
	case ":q", ":quit", ":exit":
		return true
	case ":help":
		s.printHelp()
	case ":from":
		s.setLanguage(&s.source, arg)
	case ":to":
		s.setLanguage(&s.target, arg)
	case ":swap":
		if strings.EqualFold(s.source, translation.AutoSource) {
			fmt.Fprintln(s.out, "Cannot swap while the source is detected automatically.")
			break
		}
		s.source, s.target = s.target, s.source
	case ":speak":
		switch strings.ToLower(arg) {
		case "on":
			if !s.session.Profile().Speech {
				fmt.Fprintf(s.out, "The %s profile has no spoken output.\n", s.session.Profile().Name)
				break
			}
			s.speak = true
		case "off":
			s.speak = false
		default:
			fmt.Fprintln(s.out, "Usage: :speak on|off")
		}
	case ":listen":
		s.listen(ctx)
	case ":langs":
		s.printLanguages()
	default:
		fmt.Fprintf(s.out, "Unknown command %s; try :help.\n", fields[0])
	}
	return false
}

func (s *shell) setLanguage(slot *string, name string) {
	if name == "" {
		fmt.Fprintln(s.out, "Usage: :from <language> or :to <language>")
		return
	}
	if strings.EqualFold(name, translation.AutoSource) && slot == &s.source {
		if !s.session.Profile().AutoSource {
			fmt.Fprintf(s.out, "The %s profile cannot detect the source language.\n", s.session.Profile().Name)
			return
		}
		*slot = translation.AutoSource
		return
	}
	spec, ok := s.session.Profile().Resolver.Lookup(name)
	if !ok {
		fmt.Fprintf(s.out, "Unknown language %q; try :langs.\n", name)
		return
	}
	*slot = spec.Name
}

func (s *shell) translate(ctx context.Context, text, source string) {
	if s.target == "" {
		fmt.Fprintln(s.out, "Choose a target language with :to <language>.")
		return
	}

	var outcome translation.Outcome
	select {
	case outcome = <-s.session.TranslateAsync(ctx, text, source, s.target):
	case <-ctx.Done():
		fmt.Fprintln(s.out, "Cancelled.")
		return
	}
	if outcome.Err != nil {
		fmt.Fprintf(s.out, "! %s\n", failure.Message(outcome.Err))
		return
	}

	result := outcome.Result
	fmt.Fprintf(s.out, "= %s\n", result.Text)
	if result.DetectedSource {
		fmt.Fprintf(s.out, "  (from %s)\n", result.Source.Name)
	}
	if !s.speak {
		return
	}
	artifact, err := s.session.Speak(ctx, result.Text, result.Target.Name, true)
	if artifact != nil && artifact.Fallback {
		fmt.Fprintf(s.out, "  (no %s voice; spoken with %s)\n", result.Target.Name, artifact.Language)
	}
	if err != nil {
		fmt.Fprintf(s.out, "! %s\n", failure.Message(err))
	}
}

// listen captures one phrase and translates it from the recognizer language.
func (s *shell) listen(ctx context.Context) {
	if s.capturer == nil {
		fmt.Fprintf(s.out, "Voice input is not available for the %s profile.\n", s.session.Profile().Name)
		return
	}
	fmt.Fprintln(s.out, "Listening...")
	text, err := s.capturer.Capture(ctx, s.captureTimeout)
	if err != nil {
		fmt.Fprintf(s.out, "! %s\n", failure.Message(err))
		return
	}
	fmt.Fprintf(s.out, "> %s\n", text)
	s.translate(ctx, text, s.spokenSource)
}

func (s *shell) printLanguages() {
	for _, row := range languageRows(s.session.Profile().Resolver) {
		roles := make([]string, 0, 2)
		if row.Source {
			roles = append(roles, "source")
		}
		if row.Target {
			roles = append(roles, "target")
		}
		fmt.Fprintf(s.out, "  %-12s %s (%s)\n", row.Spec.Name, row.Spec.Label(), strings.Join(roles, ", "))
	}
}

func (s *shell) printHelp() {
	fmt.Fprintln(s.out, "  <text>            translate text")
	fmt.Fprintln(s.out, "  :from <language>  set the source language (auto to detect)")
	fmt.Fprintln(s.out, "  :to <language>    set the target language")
	fmt.Fprintln(s.out, "  :swap             swap source and target")
	fmt.Fprintln(s.out, "  :listen           speak a phrase and translate it")
	fmt.Fprintln(s.out, "  :speak on|off     speak translations aloud")
	fmt.Fprintln(s.out, "  :langs            list languages")
	fmt.Fprintln(s.out, "  :quit             leave the shell")
}
