package main

import (
	"os"

	"github.com/filterdeck/filterdeck/cmd/filterdeck/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
