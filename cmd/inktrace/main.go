package main

import (
	"os"

	"inktrace/cmd/inktrace/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
