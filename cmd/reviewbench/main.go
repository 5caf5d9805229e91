package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/vvka-141/reviewbench/internal/cli"
	"github.com/vvka-141/reviewbench/pkg/reviewbench"
)

func main() {
	// Recover from panics to ensure graceful exits with stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "panic: %v\n%s\n", r, debug.Stack())
			os.Exit(reviewbench.ExitPanic)
		}
	}()

	if err := cli.Execute(); err != nil {
		os.Exit(reviewbench.ExitCodeForError(err))
	}
}
