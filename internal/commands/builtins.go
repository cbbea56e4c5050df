package commands

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"time"
)

// BuiltinDeps bundles the capability implementations built-in commands
// are wired against. Any nil field degrades its commands to a silent
// no-op rather than a panic, so a headless/partial build still starts.
type BuiltinDeps struct {
	Keys      Keys
	Clipboard Clipboard
	Web       Web
	AI        AI
	Sleeper   Sleeper
	Logger    *log.Logger
}

// aiTimeout bounds how long the "delta" command waits on the AI
// service before giving up.
const aiTimeout = 30 * time.Second

// browserFocusDelay mirrors spec.md §4.2: focus the browser roughly
// half a second after issuing a search, via a synthesized Alt+Tab.
const browserFocusDelay = 500 * time.Millisecond

// buildBuiltins returns the built-in command set (spec.md §4.2),
// wired against deps. It is called once per registry rebuild so
// overrides/disables can be applied on top by the caller. ollamaEnabled
// gates "delta" (spec.md §6, "ollama_enabled" "Enables delta"): when
// false the trigger still matches so the phrase doesn't leak into the
// typed text, but it substitutes a fixed notice instead of querying
// the AI service.
func buildBuiltins(deps BuiltinDeps, ollamaEnabled bool) []*Definition {
	key := func(spec string) func(string) error {
		return func(string) error {
			if deps.Keys == nil {
				return nil
			}
			return deps.Keys.TypeKey(spec)
		}
	}

	defs := []*Definition{
		{Name: "copy", Triggers: []string{"copy"}, Action: key("ctrl+c")},
		{
			Name: "paste", Triggers: []string{"paste"}, Action: key("ctrl+v"),
			SubstitutionHandler: func() (string, bool) {
				if deps.Clipboard == nil {
					return "", false
				}
				text, err := deps.Clipboard.Get()
				if err != nil {
					logf(deps.Logger, "commands: paste substitution failed: %v", err)
					return "", false
				}
				return text, true
			},
		},
		{Name: "cut", Triggers: []string{"cut"}, Action: key("ctrl+x")},
		{Name: "undo", Triggers: []string{"undo"}, Action: key("ctrl+z")},
		{Name: "redo", Triggers: []string{"redo"}, Action: key("ctrl+shift+z")},
		{Name: "select all", Triggers: []string{"select all"}, Action: key("ctrl+a")},
		{Name: "backspace", Triggers: []string{"backspace"}, Action: key("BackSpace")},
		{Name: "delete", Triggers: []string{"delete"}, Action: key("ctrl+BackSpace")},
		{Name: "new line", Triggers: []string{"new line", "enter"}, Action: key("Return")},
		{Name: "super", Triggers: []string{"super"}, Action: key("super")},
		{Name: "command prompt", Triggers: []string{"command prompt"}, Action: key("alt+F2")},
		{Name: "lock", Triggers: []string{"lock"}, Action: key("super+l")},
		{Name: "tab", Triggers: []string{"tab"}, Action: key("alt+Tab")},
		{Name: "new tab", Triggers: []string{"new tab"}, Action: key("ctrl+t")},
		{Name: "new window", Triggers: []string{"new window"}, Action: key("ctrl+n")},
		{Name: "press tab", Triggers: []string{"press tab"}, Action: key("Tab")},

		{
			Name: "search", Triggers: []string{"search", "google"},
			RequiresContent: true, RequiresEnd: true, ScanContent: true,
			Action: func(content string) error {
				if deps.Web == nil {
					return nil
				}
				if err := deps.Web.Search(url.QueryEscape(content)); err != nil {
					return fmt.Errorf("commands: search failed: %w", err)
				}
				if deps.Sleeper != nil {
					deps.Sleeper.Sleep(browserFocusDelay)
				}
				if deps.Keys != nil {
					return deps.Keys.TypeKey("alt+Tab")
				}
				return nil
			},
		},
		{
			Name: "delta", Triggers: []string{"delta"},
			RequiresContent: true, RequiresEnd: true, ScanContent: true,
			ContentSubstitutionHandler: func(content string) (string, bool) {
				if !ollamaEnabled {
					return "[Ollama disabled]", true
				}
				if deps.AI == nil {
					return "", false
				}
				ctx, cancel := context.WithTimeout(context.Background(), aiTimeout)
				defer cancel()
				text, err := deps.AI.Generate(ctx, content)
				if err != nil {
					logf(deps.Logger, "commands: delta AI query failed: %v", err)
					return "", false
				}
				return text, true
			},
		},
		{
			Name: "wait", Triggers: []string{"wait"},
			RequiresContent: true, RequiresEnd: true, ScanContent: false,
			Action: func(content string) error {
				if deps.Sleeper != nil {
					deps.Sleeper.Sleep(parseWaitDuration(content))
				}
				return nil
			},
		},
		{
			Name: "raw text", Triggers: []string{"raw text"},
			RequiresContent: true, RequiresEnd: true, ScanContent: false,
			ContentSubstitutionHandler: func(content string) (string, bool) {
				return content, true
			},
		},
	}
	return defs
}

func logf(logger *log.Logger, format string, args ...any) {
	if logger != nil {
		logger.Printf(format, args...)
	}
}
