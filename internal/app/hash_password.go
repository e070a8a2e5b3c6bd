package app

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"horse.fit/vaani/internal/auth"
)

func runHashPassword(args []string) int {
	fs := flag.NewFlagSet("hash-password", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	fromStdin := fs.Bool("stdin", false, "Read the password from the first line of stdin")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	var password string
	switch {
	case *fromStdin:
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			fmt.Fprintf(os.Stderr, "Failed to read password: %v\n", err)
			return 1
		}
		password = strings.TrimRight(line, "\r\n")
	case fs.NArg() == 1:
		password = fs.Arg(0)
	default:
		fmt.Fprintln(os.Stderr, "Usage: vaani hash-password <password> | --stdin")
		return 2
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println(hash)
	return 0
}
