package main

import (
	"os"

	"github.com/rustyeddy/swapflow/cmd/swapflow/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
