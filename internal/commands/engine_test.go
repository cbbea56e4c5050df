package commands

import (
	"context"
	"testing"
	"time"

	"voxd/internal/config"
)

type fakeKeys struct {
	typedText []string
	typedKeys []string
}

func (f *fakeKeys) TypeText(s string) error { f.typedText = append(f.typedText, s); return nil }
func (f *fakeKeys) TypeKey(spec string) error {
	f.typedKeys = append(f.typedKeys, spec)
	return nil
}

type fakeClipboard struct{ text string }

func (f *fakeClipboard) Get() (string, error) { return f.text, nil }
func (f *fakeClipboard) Set(s string) error   { f.text = s; return nil }

type fakeWeb struct{ queries []string }

func (f *fakeWeb) Search(q string) error { f.queries = append(f.queries, q); return nil }

type fakeAI struct {
	reply  string
	prompt string
}

func (f *fakeAI) Generate(ctx context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.reply, nil
}

type fakeSleeper struct{ slept []time.Duration }

func (f *fakeSleeper) Sleep(d time.Duration) { f.slept = append(f.slept, d) }

func newTestEngine(t *testing.T, deps BuiltinDeps, settings *config.Settings) *Engine {
	t.Helper()
	if settings == nil {
		settings = config.Default()
	}
	return New(nil, deps, settings)
}

func TestScanInstantCommandRemovesPhraseAndExecutes(t *testing.T) {
	keys := &fakeKeys{}
	e := newTestEngine(t, BuiltinDeps{Keys: keys}, nil)

	cleaned, matches := e.Scan("please okay copy that text")
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d: %v", len(matches), matches)
	}
	if matches[0].Command.Name != "copy" {
		t.Errorf("expected copy command, got %s", matches[0].Command.Name)
	}
	e.Execute(matches)
	if len(keys.typedKeys) != 1 || keys.typedKeys[0] != "ctrl+c" {
		t.Errorf("expected ctrl+c to be synthesized, got %v", keys.typedKeys)
	}
	if cleaned != "please that text" {
		t.Errorf("expected command phrase stripped, got %q", cleaned)
	}
}

func TestScanBracketedCommandWithContent(t *testing.T) {
	web := &fakeWeb{}
	keys := &fakeKeys{}
	sleeper := &fakeSleeper{}
	e := newTestEngine(t, BuiltinDeps{Web: web, Keys: keys, Sleeper: sleeper}, nil)

	cleaned, matches := e.Scan("okay search golang concurrency patterns okay done")
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d: %v", len(matches), matches)
	}
	if matches[0].Content != "golang concurrency patterns" {
		t.Errorf("unexpected content: %q", matches[0].Content)
	}
	e.Execute(matches)
	if len(web.queries) != 1 {
		t.Fatalf("expected a web search, got %v", web.queries)
	}
	if cleaned != "" {
		t.Errorf("expected cleaned text empty, got %q", cleaned)
	}
}

func TestPasteNestedSubstitutionInsidesBracketedContent(t *testing.T) {
	clip := &fakeClipboard{text: "clipboard contents"}
	ai := &fakeAI{reply: "unused"}
	settings := config.Default()
	settings.OllamaEnabled = true
	e := newTestEngine(t, BuiltinDeps{Clipboard: clip, AI: ai}, settings)

	cleaned, matches := e.Scan("okay delta please summarize okay paste okay done")
	// delta is a content-substitution command: no plain Match emitted for it.
	for _, m := range matches {
		if m.Command.Name == "delta" {
			t.Errorf("delta should not emit a plain Match, got %v", m)
		}
		if m.Command.Name == "paste" {
			t.Errorf("nested paste should be substituted, not emitted as a Match, got %v", m)
		}
	}
	if ai.prompt != "please summarize clipboard contents" {
		t.Errorf("expected clipboard text substituted into the AI prompt, got %q", ai.prompt)
	}
	if cleaned != "unused" {
		t.Errorf("expected delta's AI reply to replace the whole span, got %q", cleaned)
	}
}

func TestDeltaDisabledByDefaultDoesNotQueryAI(t *testing.T) {
	ai := &fakeAI{reply: "should not be used"}
	e := newTestEngine(t, BuiltinDeps{AI: ai}, nil) // config.Default() has ollama_enabled=false

	cleaned, _ := e.Scan("okay delta summarize this okay done")
	if cleaned != "[Ollama disabled]" {
		t.Errorf("expected delta to substitute the disabled notice, got %q", cleaned)
	}
}

func TestRawTextEscapeHatchLeavesContentUnscanned(t *testing.T) {
	keys := &fakeKeys{}
	e := newTestEngine(t, BuiltinDeps{Keys: keys}, nil)

	cleaned, matches := e.Scan("okay raw text okay copy that okay done")
	if len(matches) != 0 {
		t.Fatalf("raw text is a substitution command, expected no Match, got %v", matches)
	}
	if cleaned != "okay copy that" {
		t.Errorf("expected raw content preserved verbatim, got %q", cleaned)
	}
}

func TestDeduplicationSkipsRepeatedCommandInSameScan(t *testing.T) {
	keys := &fakeKeys{}
	e := newTestEngine(t, BuiltinDeps{Keys: keys}, nil)

	_, matches := e.Scan("okay copy now okay copy")
	if len(matches) != 1 {
		t.Fatalf("expected dedup to collapse repeated phrase, got %d matches", len(matches))
	}
}

func TestResetDedupAllowsRepeatAcrossSessions(t *testing.T) {
	keys := &fakeKeys{}
	e := newTestEngine(t, BuiltinDeps{Keys: keys}, nil)

	e.Scan("okay copy")
	e.ResetDedup()
	_, matches := e.Scan("okay copy")
	if len(matches) != 1 {
		t.Fatalf("expected match after dedup reset, got %d", len(matches))
	}
}

func TestBuiltinOverrideRenamesTrigger(t *testing.T) {
	keys := &fakeKeys{}
	settings := config.Default()
	settings.BuiltinOverrides = map[string]string{"copy": "duplicate"}
	e := newTestEngine(t, BuiltinDeps{Keys: keys}, settings)

	_, matches := e.Scan("okay duplicate")
	if len(matches) != 1 || matches[0].Command.Name != "copy" {
		t.Fatalf("expected renamed trigger to still resolve to copy, got %v", matches)
	}
	if _, matches := e.Scan("okay copy"); len(matches) != 0 {
		t.Errorf("expected original trigger to no longer match after override, got %v", matches)
	}
}

func TestEmptyBuiltinOverrideDisablesCommand(t *testing.T) {
	settings := config.Default()
	settings.BuiltinOverrides = map[string]string{"copy": ""}
	e := newTestEngine(t, BuiltinDeps{}, settings)

	if _, matches := e.Scan("okay copy"); len(matches) != 0 {
		t.Errorf("expected disabled command to not match, got %v", matches)
	}
}

func TestDisabledCommandsRemovesBuiltin(t *testing.T) {
	settings := config.Default()
	settings.DisabledCommands = []string{"undo"}
	e := newTestEngine(t, BuiltinDeps{}, settings)

	if _, matches := e.Scan("okay undo"); len(matches) != 0 {
		t.Errorf("expected disabled undo to not match, got %v", matches)
	}
}

func TestCustomCommandMacroTypesTextAndKeys(t *testing.T) {
	keys := &fakeKeys{}
	settings := config.Default()
	settings.CustomCommands = []config.CustomCommand{
		{Trigger: "signature", Value: "Best,<return>Jordan", Enabled: true},
	}
	e := newTestEngine(t, BuiltinDeps{Keys: keys}, settings)

	_, matches := e.Scan("okay signature")
	if len(matches) != 1 {
		t.Fatalf("expected custom command match, got %v", matches)
	}
	e.Execute(matches)
	if len(keys.typedText) != 2 || keys.typedText[0] != "Best," || keys.typedText[1] != "Jordan" {
		t.Errorf("expected macro to type text around a key spec, got %v", keys.typedText)
	}
	if len(keys.typedKeys) != 1 || keys.typedKeys[0] != "return" {
		t.Errorf("expected macro to send the <return> key, got %v", keys.typedKeys)
	}
}

func TestMacroReferencesNamedCommand(t *testing.T) {
	keys := &fakeKeys{}
	settings := config.Default()
	settings.CustomCommands = []config.CustomCommand{
		{Trigger: "dup", Value: "@copy", Enabled: true},
	}
	e := newTestEngine(t, BuiltinDeps{Keys: keys}, settings)

	_, matches := e.Scan("okay dup")
	e.Execute(matches)
	if len(keys.typedKeys) != 1 || keys.typedKeys[0] != "ctrl+c" {
		t.Errorf("expected @copy macro reference to invoke the copy command, got %v", keys.typedKeys)
	}
}

func TestWaitBuiltinSleepsParsedDuration(t *testing.T) {
	sleeper := &fakeSleeper{}
	e := newTestEngine(t, BuiltinDeps{Sleeper: sleeper}, nil)

	_, matches := e.Scan("okay wait thirty seconds okay done")
	e.Execute(matches)
	if len(sleeper.slept) != 1 || sleeper.slept[0] != 30*time.Second {
		t.Errorf("expected a 30s sleep, got %v", sleeper.slept)
	}
}

func TestScanIsIdempotentOnCleanedOutput(t *testing.T) {
	keys := &fakeKeys{}
	e := newTestEngine(t, BuiltinDeps{Keys: keys}, nil)

	cleaned, _ := e.Scan("okay copy the report")
	again, matches := e.Scan(cleaned)
	if len(matches) != 0 {
		t.Errorf("expected scanning already-cleaned text to find no further commands, got %v", matches)
	}
	if again != cleaned {
		t.Errorf("expected idempotent scan, got %q vs %q", again, cleaned)
	}
}

func TestPunctuationSeparatorsAreTolerated(t *testing.T) {
	keys := &fakeKeys{}
	e := newTestEngine(t, BuiltinDeps{Keys: keys}, nil)

	_, matches := e.Scan("okay, copy.")
	if len(matches) != 1 {
		t.Fatalf("expected punctuation around tokens to still match, got %v", matches)
	}
}
