package tui

import (
	"os"

	"golang.org/x/term"
)

// Mode is the interaction mode of a run.
type Mode int

const (
	// ModeNonInteractive covers CI, scripts and piped input.
	ModeNonInteractive Mode = iota
	// ModeInteractive is used when a human is at the terminal.
	ModeInteractive
)

// NonInteractiveEnvVar forces non-interactive mode when set to "1".
const NonInteractiveEnvVar = "REVIEWBENCH_NON_INTERACTIVE"

// Detector decides the interaction mode from the environment and the
// standard streams.
type Detector struct {
	Getenv     func(string) string
	IsTerminal func(fd int) bool
	Stdin      *os.File
	Stderr     *os.File
}

// NewDetector returns a Detector bound to the process environment.
func NewDetector() *Detector {
	return &Detector{
		Getenv:     os.Getenv,
		IsTerminal: term.IsTerminal,
		Stdin:      os.Stdin,
		Stderr:     os.Stderr,
	}
}

// Mode returns ModeNonInteractive if any of these hold:
//   - REVIEWBENCH_NON_INTERACTIVE=1
//   - CI is set
//   - NO_COLOR is set
//   - stdin or stderr is not a terminal
func (d *Detector) Mode() Mode {
	if d.Getenv(NonInteractiveEnvVar) == "1" {
		return ModeNonInteractive
	}
	if d.Getenv("CI") != "" || d.Getenv("NO_COLOR") != "" {
		return ModeNonInteractive
	}

	// prompts read stdin; progress renders on stderr
	if !d.IsTerminal(int(d.Stdin.Fd())) || !d.IsTerminal(int(d.Stderr.Fd())) {
		return ModeNonInteractive
	}
	return ModeInteractive
}

// DetectMode determines the mode for the current process.
func DetectMode() Mode {
	return NewDetector().Mode()
}

// IsInteractive reports whether the current process runs interactively.
func IsInteractive() bool {
	return DetectMode() == ModeInteractive
}
