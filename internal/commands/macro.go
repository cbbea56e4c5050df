package commands

import (
	"fmt"
	"regexp"
	"strings"
)

// macroTokenPattern tokenizes a custom-command macro string into
// @name / @name[arg] references, <key-spec> key-synthesis directives,
// and the plain text runs between them.
var macroTokenPattern = regexp.MustCompile(`@([A-Za-z_][A-Za-z0-9_]*)(\[[^\]]*\])?|<([^<>]+)>`)

// compileMacro builds an Action closure for a custom command's macro
// string, resolved against the engine's current registry so @name can
// reference any built-in or other custom command.
func (e *Engine) compileMacro(macro string) func(content string) error {
	return func(content string) error {
		expanded := strings.ReplaceAll(macro, "{content}", content)
		return e.runMacro(expanded)
	}
}

func (e *Engine) runMacro(macro string) error {
	last := 0
	for _, loc := range macroTokenPattern.FindAllStringSubmatchIndex(macro, -1) {
		if loc[0] > last {
			if err := e.typeText(macro[last:loc[0]]); err != nil {
				return err
			}
		}
		last = loc[1]

		switch {
		case loc[2] != -1: // @name[arg]
			name := macro[loc[2]:loc[3]]
			arg := ""
			if loc[4] != -1 && loc[5] != -1 {
				arg = macro[loc[4]+1 : loc[5]-1]
			}
			if err := e.invokeNamed(name, arg); err != nil {
				return err
			}
		case loc[6] != -1: // <key-spec>
			spec := macro[loc[6]:loc[7]]
			if e.keys == nil {
				continue
			}
			if err := e.keys.TypeKey(spec); err != nil {
				return err
			}
		}
	}
	if last < len(macro) {
		if err := e.typeText(macro[last:]); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) typeText(s string) error {
	if s == "" || e.keys == nil {
		return nil
	}
	return e.keys.TypeText(s)
}

func (e *Engine) invokeNamed(name string, arg string) error {
	e.mu.Lock()
	def, ok := e.registry[name]
	e.mu.Unlock()
	if !ok {
		if e.logger != nil {
			e.logger.Printf("commands: macro referenced unknown command %q", name)
		}
		return nil
	}
	if def.Action == nil {
		return nil
	}
	content := ""
	if def.RequiresContent {
		content = arg
	}
	if err := def.Action(content); err != nil {
		return fmt.Errorf("commands: macro @%s failed: %w", name, err)
	}
	return nil
}
