package main

import (
	"os"

	"github.com/rustyeddy/coinfolio/cmd/coinfolio/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
