package commands

import (
	"log"
	"regexp"
	"sort"
	"strings"
	"sync"

	"voxd/internal/config"
)

// Engine matches and executes voice commands against a finalized
// transcript, per spec.md §4.2. It is rebuilt whenever the settings
// that shape the registry change, without interrupting an in-flight
// session.
type Engine struct {
	logger *log.Logger
	keys   Keys

	mu       sync.Mutex
	registry map[string]*Definition
	compiled []*compiled
	seen     map[string]bool
}

// New builds an Engine wired against deps, with the registry
// constructed from settings (per Rebuild's rules).
func New(logger *log.Logger, deps BuiltinDeps, settings *config.Settings) *Engine {
	e := &Engine{logger: logger, keys: deps.Keys, seen: make(map[string]bool)}
	e.Rebuild(deps, settings)
	return e
}

// Rebuild reconstructs the registry: built-ins, then builtin_overrides
// (rename triggers; an empty override disables), then disabled_commands
// removed, then enabled custom_commands appended as macro-driven
// actions. Safe to call while a session is in progress; Scan/Execute
// take a consistent snapshot under mu.
func (e *Engine) Rebuild(deps BuiltinDeps, settings *config.Settings) {
	defs := buildBuiltins(deps, settings.OllamaEnabled)
	registry := make(map[string]*Definition, len(defs)+len(settings.CustomCommands))

	for _, d := range defs {
		if override, ok := settings.BuiltinOverrides[d.Name]; ok {
			if strings.TrimSpace(override) == "" {
				continue // empty override disables the command
			}
			renamed := *d
			renamed.Triggers = []string{strings.ToLower(override)}
			registry[d.Name] = &renamed
			continue
		}
		registry[d.Name] = d
	}

	for _, name := range settings.DisabledCommands {
		delete(registry, name)
	}

	for _, cc := range settings.CustomCommands {
		if !cc.Enabled {
			continue
		}
		custom := &Definition{
			Name:            cc.Trigger,
			Triggers:        []string{cc.Trigger},
			RequiresContent: cc.RequiresEnd,
			RequiresEnd:     cc.RequiresEnd,
			ScanContent:     true,
		}
		custom.Action = e.compileMacro(cc.Value)
		registry[custom.Name] = custom
	}

	active := make([]*Definition, 0, len(registry))
	for _, d := range registry {
		active = append(active, d)
	}
	compiled := compileDefinitions(active)

	e.mu.Lock()
	e.keys = deps.Keys
	e.registry = registry
	e.compiled = compiled
	e.mu.Unlock()
}

// ResetDedup clears the per-session dedup set, called by the session
// controller when a new recording starts (spec.md §4.1 step 3).
func (e *Engine) ResetDedup() {
	e.mu.Lock()
	e.seen = make(map[string]bool)
	e.mu.Unlock()
}

var collapseSpaces = regexp.MustCompile(`[ \t]+`)

// Scan runs the combined command pattern over text and returns the
// cleaned text (commands stripped or substituted) plus the ordered,
// deduplicated list of plain-command matches to execute.
func (e *Engine) Scan(text string) (string, []Match) {
	cleaned, matches := e.scanText(text, false)
	cleaned = collapseSpaces.ReplaceAllString(cleaned, " ")
	return cleaned, matches
}

func (e *Engine) scanText(text string, isNested bool) (string, []Match) {
	e.mu.Lock()
	compiledDefs := e.compiled
	e.mu.Unlock()

	words := tokenize(text)
	var matches []Match
	var repls []replacement

	i := 0
	for i < len(words) {
		if !TriggerVariations[words[i].lower] {
			i++
			continue
		}
		m, ok := findMatchAt(words, i, compiledDefs)
		if !ok {
			i++
			continue
		}

		fullStart := words[m.start].start
		fullEnd := words[m.end-1].end
		canon := strings.ToLower(strings.Join(splitLowers(words[m.start:m.end]), " "))

		if e.dedupSeen(canon) {
			i = m.end
			continue
		}

		rawContent := contentText(text, words, m.contentStart, m.contentEnd)

		if isNested && m.c.def.SubstitutionHandler != nil {
			if repl, ok := m.c.def.SubstitutionHandler(); ok {
				repls = append(repls, replacement{start: fullStart, end: fullEnd, text: repl})
				i = m.end
				continue
			}
		}

		if m.c.def.isContentSubstitution() {
			content := rawContent
			if m.c.def.ScanContent {
				scannedContent, sub := e.scanText(content, true)
				content = scannedContent
				matches = append(matches, sub...)
			}
			if repl, ok := m.c.def.ContentSubstitutionHandler(content); ok {
				repls = append(repls, replacement{start: fullStart, end: fullEnd, text: repl})
				i = m.end
				continue
			}
			// Handler declined; fall through to a plain deletion so
			// the command phrase still disappears from the transcript.
			repls = append(repls, replacement{start: fullStart, end: fullEnd, text: ""})
			i = m.end
			continue
		}

		content := rawContent
		if m.c.def.RequiresContent && m.c.def.ScanContent {
			scannedContent, sub := e.scanText(content, true)
			content = scannedContent
			matches = append(matches, sub...)
		}
		matches = append(matches, Match{Command: m.c.def, Content: content, Start: fullStart, End: fullEnd})
		repls = append(repls, replacement{start: fullStart, end: fullEnd, text: ""})
		i = m.end
	}

	cleaned := applyReplacements(text, repls)
	return cleaned, matches
}

func splitLowers(ws []token) []string {
	out := make([]string, len(ws))
	for i, w := range ws {
		out[i] = w.lower
	}
	return out
}

func (e *Engine) dedupSeen(canon string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.seen[canon] {
		return true
	}
	e.seen[canon] = true
	return false
}

// applyReplacements splices repls into text in reverse start order, so
// earlier offsets stay valid as later (rightward) spans are replaced
// first.
func applyReplacements(text string, repls []replacement) string {
	if len(repls) == 0 {
		return text
	}
	sorted := append([]replacement(nil), repls...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].start > sorted[j].start })
	out := text
	for _, r := range sorted {
		out = out[:r.start] + r.text + out[r.end:]
	}
	return out
}

// Execute runs matches in discovery order. Every action error is
// logged and execution continues, per spec.md §4.2.
func (e *Engine) Execute(matches []Match) {
	for _, m := range matches {
		if m.Command.Action == nil {
			continue
		}
		content := ""
		if m.Command.RequiresContent {
			content = m.Content
		}
		if err := m.Command.Action(content); err != nil && e.logger != nil {
			e.logger.Printf("commands: %s failed: %v", m.Command.Name, err)
		}
	}
}
