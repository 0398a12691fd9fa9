package main

import (
	"os"

	"github.com/dshills/magicshell/cmd/magicshell/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
