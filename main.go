package main

import (
	"fmt"
	"os"

	"github.com/serisow/shortsmith/config"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// exitCode is 2 for a configuration the process refused to start with.
func exitCode(err error) int {
	if config.IsValidationError(err) {
		return 2
	}
	return 1
}
