package main

import (
	"os"

	"horse.fit/vaani/internal/app"
)

func main() {
	os.Exit(app.Run(os.Args[1:]))
}
