package keys

import (
	"fmt"
	"testing"
	"time"
)

type call struct {
	name string
	args []string
}

type fakeRunner struct {
	calls []call
	err   error
}

func (f *fakeRunner) Run(name string, args ...string) error {
	f.calls = append(f.calls, call{name: name, args: args})
	return f.err
}

type fakeSleeper struct {
	slept []time.Duration
}

func (f *fakeSleeper) Sleep(d time.Duration) {
	f.slept = append(f.slept, d)
}

func TestTypeTextSingleShortLine(t *testing.T) {
	runner := &fakeRunner{}
	s := newWithDeps(runner, &fakeSleeper{})

	if err := s.TypeText("hello"); err != nil {
		t.Fatalf("TypeText: %v", err)
	}
	if len(runner.calls) != 1 {
		t.Fatalf("expected 1 call, got %d: %v", len(runner.calls), runner.calls)
	}
	want := []string{"type", "--", "hello"}
	if fmt.Sprint(runner.calls[0].args) != fmt.Sprint(want) {
		t.Errorf("expected args %v, got %v", want, runner.calls[0].args)
	}
}

func TestTypeTextMultilineSendsEnterBetweenLines(t *testing.T) {
	runner := &fakeRunner{}
	s := newWithDeps(runner, &fakeSleeper{})

	if err := s.TypeText("first\nsecond"); err != nil {
		t.Fatalf("TypeText: %v", err)
	}

	var sawEnter bool
	for _, c := range runner.calls {
		if c.name == "xdotool" && len(c.args) == 2 && c.args[0] == "key" && c.args[1] == "Return" {
			sawEnter = true
		}
	}
	if !sawEnter {
		t.Errorf("expected an xdotool key Return call between lines, got %v", runner.calls)
	}
	want := "[{xdotool [type -- first]} {xdotool [key Return]} {xdotool [type -- second]}]"
	if got := fmt.Sprint(runner.calls); got != want {
		t.Errorf("expected first line, Return, second line in order, got %v", got)
	}
}

func TestTypeTextChunksLongLines(t *testing.T) {
	runner := &fakeRunner{}
	sleeper := &fakeSleeper{}
	s := newWithDeps(runner, sleeper)

	long := ""
	for i := 0; i < 120; i++ {
		long += "a"
	}
	if err := s.TypeText(long); err != nil {
		t.Fatalf("TypeText: %v", err)
	}
	if len(runner.calls) != 3 {
		t.Fatalf("expected 3 chunked calls for 120 chars, got %d", len(runner.calls))
	}
	if len(sleeper.slept) != 2 {
		t.Errorf("expected sleep between chunks but not after the last, got %d sleeps", len(sleeper.slept))
	}
}

func TestTypeKeyResolvesAlias(t *testing.T) {
	runner := &fakeRunner{}
	s := newWithDeps(runner, &fakeSleeper{})

	if err := s.TypeKey("ctrl+shift+k"); err != nil {
		t.Fatalf("TypeKey: %v", err)
	}
	if len(runner.calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(runner.calls))
	}
	got := runner.calls[0].args[1]
	want := "ctrl+shift+k"
	if got != want {
		t.Errorf("expected resolved spec %q, got %q", want, got)
	}
}

func TestTypeKeyPropagatesError(t *testing.T) {
	runner := &fakeRunner{err: fmt.Errorf("boom")}
	s := newWithDeps(runner, &fakeSleeper{})

	if err := s.TypeKey("enter"); err == nil {
		t.Error("expected error to propagate")
	}
}

func TestResolveKeySpecAliasesEachToken(t *testing.T) {
	got := resolveKeySpec("Ctrl+Alt+Delete")
	want := "ctrl+alt+Delete"
	if got != want {
		t.Errorf("resolveKeySpec: got %q, want %q", got, want)
	}
}

func TestResolveKeySpecPassesThroughLiteralChar(t *testing.T) {
	got := resolveKeySpec("k")
	if got != "k" {
		t.Errorf("resolveKeySpec: got %q, want %q", got, "k")
	}
}
