// Package keys implements the Key Synthesizer (C5): typing text and
// key combos into the focused window via xdotool, plus clipboard
// get/set.
package keys

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/atotto/clipboard"
)

const (
	maxChunkLen  = 50
	interChunkDelay = 20 * time.Millisecond
)

// Runner executes an external command. Swappable so tests can assert
// on invocations without shelling out.
type Runner interface {
	Run(name string, args ...string) error
}

// execRunner shells out for real, grounded in the teacher's
// exec.LookPath-then-exec.Command pattern.
type execRunner struct{}

func (execRunner) Run(name string, args ...string) error {
	path, err := exec.LookPath(name)
	if err != nil {
		return fmt.Errorf("keys: %s not found: %w", name, err)
	}
	return exec.Command(path, args...).Run()
}

// Sleeper abstracts time.Sleep so command execution (and the delay
// type_text inserts between chunks of a line) is testable without paying
// wall-clock cost.
type Sleeper interface {
	Sleep(d time.Duration)
}

type realSleeper struct{}

func (realSleeper) Sleep(d time.Duration) { time.Sleep(d) }

// Synthesizer implements Keys and Clipboard for internal/commands.
type Synthesizer struct {
	runner  Runner
	sleeper Sleeper
}

// New returns a Synthesizer backed by real xdotool/clipboard calls.
func New() *Synthesizer {
	return &Synthesizer{runner: execRunner{}, sleeper: realSleeper{}}
}

// newWithDeps is used by tests to inject a fake runner/sleeper.
func newWithDeps(r Runner, s Sleeper) *Synthesizer {
	return &Synthesizer{runner: r, sleeper: s}
}

// TypeText types s into the focused window. Embedded newlines become
// Enter key-presses between lines; long lines are chunked to respect
// the underlying tool's rate limits.
func (s *Synthesizer) TypeText(text string) error {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if i > 0 {
			if err := s.TypeKey("enter"); err != nil {
				return err
			}
		}
		if err := s.typeLine(line); err != nil {
			return err
		}
	}
	return nil
}

func (s *Synthesizer) typeLine(line string) error {
	for len(line) > 0 {
		chunk := line
		if len(chunk) > maxChunkLen {
			chunk = chunk[:maxChunkLen]
		}
		if chunk != "" {
			if err := s.runner.Run("xdotool", "type", "--", chunk); err != nil {
				return fmt.Errorf("keys: failed to type text: %w", err)
			}
		}
		line = line[len(chunk):]
		if len(line) > 0 {
			s.sleeper.Sleep(interChunkDelay)
		}
	}
	return nil
}

// TypeKey submits a "+"-separated key combo, e.g. "ctrl+shift+k".
func (s *Synthesizer) TypeKey(spec string) error {
	resolved := resolveKeySpec(spec)
	if err := s.runner.Run("xdotool", "key", resolved); err != nil {
		return fmt.Errorf("keys: failed to send key %q: %w", spec, err)
	}
	return nil
}

// Get returns the current text clipboard contents.
func (s *Synthesizer) Get() (string, error) {
	text, err := clipboard.ReadAll()
	if err != nil {
		return "", fmt.Errorf("keys: failed to read clipboard: %w", err)
	}
	return text, nil
}

// Set writes text to the system clipboard.
func (s *Synthesizer) Set(text string) error {
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("keys: failed to write clipboard: %w", err)
	}
	return nil
}

// checkDependencies reports whether the platform's key-synthesis tool
// is available, mirroring the teacher's CheckClipboardDependencies.
func checkDependencies() error {
	if runtime.GOOS != "linux" {
		return fmt.Errorf("keys: unsupported operating system %s", runtime.GOOS)
	}
	if _, err := exec.LookPath("xdotool"); err != nil {
		return fmt.Errorf("keys: xdotool not found, install with: sudo apt-get install xdotool")
	}
	return nil
}
