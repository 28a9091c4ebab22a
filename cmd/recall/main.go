package main

import (
	"os"

	"github.com/recall-sh/recall/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
