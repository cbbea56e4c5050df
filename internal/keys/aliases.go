package keys

import "strings"

// keyAliasTable maps the spec's key-spec tokens to their canonical
// xdotool key name, per spec.md §4.6's minimum alias set.
var keyAliasTable = map[string]string{
	"up": "Up", "down": "Down", "left": "Left", "right": "Right",
	"enter": "Return", "return": "Return",
	"backspace": "BackSpace",
	"tab":       "Tab",
	"escape":    "Escape", "esc": "Escape",
	"space":    "space",
	"capslock": "Caps_Lock",
	"delete":   "Delete", "del": "Delete",
	"insert": "Insert",
	"home":   "Home",
	"end":    "End",
	"pageup": "Prior", "pgup": "Prior",
	"pagedown": "Next", "pgdn": "Next",
	"f1": "F1", "f2": "F2", "f3": "F3", "f4": "F4",
	"f5": "F5", "f6": "F6", "f7": "F7", "f8": "F8",
	"f9": "F9", "f10": "F10", "f11": "F11", "f12": "F12",
	"ctrl": "ctrl", "control": "ctrl",
	"shift": "shift",
	"alt":   "alt",
	"super": "super", "meta": "super", "win": "super", "cmd": "super",
}

// resolveKeySpec maps a "+"-joined key spec (e.g. "ctrl+shift+k") to
// its xdotool equivalent, aliasing each token and rejoining with "+".
// An unrecognized token passes through unchanged so literal single
// characters (e.g. "k") still work.
func resolveKeySpec(spec string) string {
	tokens := strings.Split(spec, "+")
	for i, tok := range tokens {
		lower := strings.ToLower(strings.TrimSpace(tok))
		if canonical, ok := keyAliasTable[lower]; ok {
			tokens[i] = canonical
		} else {
			tokens[i] = tok
		}
	}
	return strings.Join(tokens, "+")
}
