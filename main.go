package main

import (
	"os"

	"github.com/Belphemur/CaptionExport/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
