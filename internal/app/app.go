package app

import (
	"fmt"
	"os"
	"strings"
)

// Run executes the CLI command and returns a process exit code.
func Run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 2
	}

	switch strings.ToLower(strings.TrimSpace(args[0])) {
	case "help", "--help", "-h":
		printUsage()
		return 0
	case "translate":
		return runTranslate(args[1:])
	case "listen":
		return runListen(args[1:])
	case "speak":
		return runSpeak(args[1:])
	case "languages":
		return runLanguages(args[1:])
	case "detect":
		return runDetect(args[1:])
	case "shell":
		return runShell(args[1:])
	case "serve":
		return runServe(args[1:])
	case "check-catalog":
		return runCheckCatalog(args[1:])
	case "hash-password":
		return runHashPassword(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", args[0])
		printUsage()
		return 2
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "vaani CLI")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  vaani <command> [flags]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  translate      Translate text between two languages")
	fmt.Fprintln(os.Stderr, "  listen         Capture one spoken phrase and print the transcript")
	fmt.Fprintln(os.Stderr, "  speak          Synthesize text and play it")
	fmt.Fprintln(os.Stderr, "  languages      List the languages of a profile")
	fmt.Fprintln(os.Stderr, "  detect         Guess the language of text")
	fmt.Fprintln(os.Stderr, "  shell          Interactive translator with voice input and output")
	fmt.Fprintln(os.Stderr, "  serve          Start Echo API server")
	fmt.Fprintln(os.Stderr, "  check-catalog  Validate a language catalog file")
	fmt.Fprintln(os.Stderr, "  hash-password  Print a bcrypt hash for API_BASIC_AUTH_PASSWORD_HASH")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Use \"vaani <command> -h\" for command-specific flags.")
}
