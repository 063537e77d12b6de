package main

import (
	"os"

	"github.com/bpradana/subscribeon/cmd/subscribeon/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
