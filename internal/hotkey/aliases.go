package hotkey

import "golang.design/x/hotkey"

// modifierAliases maps the spec's bracketed modifier names to
// golang.design/x/hotkey's platform-neutral modifier constants.
var modifierAliases = map[string]hotkey.Modifier{
	"ctrl":    hotkey.ModCtrl,
	"control": hotkey.ModCtrl,
	"shift":   hotkey.ModShift,
	"alt":     hotkey.ModOption,
	"option":  hotkey.ModOption,
	"super":   hotkey.Mod4,
	"meta":    hotkey.Mod4,
	"win":     hotkey.Mod4,
	"cmd":     hotkey.Mod4,
}

// keyAliases maps single-key tokens to golang.design/x/hotkey key
// constants, covering the set spec.md §4.6 requires for key synthesis
// plus the letters/digits a hotkey's main key is typically bound to.
var keyAliases = map[string]hotkey.Key{
	"a": hotkey.KeyA, "b": hotkey.KeyB, "c": hotkey.KeyC, "d": hotkey.KeyD,
	"e": hotkey.KeyE, "f": hotkey.KeyF, "g": hotkey.KeyG, "h": hotkey.KeyH,
	"i": hotkey.KeyI, "j": hotkey.KeyJ, "k": hotkey.KeyK, "l": hotkey.KeyL,
	"m": hotkey.KeyM, "n": hotkey.KeyN, "o": hotkey.KeyO, "p": hotkey.KeyP,
	"q": hotkey.KeyQ, "r": hotkey.KeyR, "s": hotkey.KeyS, "t": hotkey.KeyT,
	"u": hotkey.KeyU, "v": hotkey.KeyV, "w": hotkey.KeyW, "x": hotkey.KeyX,
	"y": hotkey.KeyY, "z": hotkey.KeyZ,
	"0": hotkey.Key0, "1": hotkey.Key1, "2": hotkey.Key2, "3": hotkey.Key3,
	"4": hotkey.Key4, "5": hotkey.Key5, "6": hotkey.Key6, "7": hotkey.Key7,
	"8": hotkey.Key8, "9": hotkey.Key9,
	"space":     hotkey.KeySpace,
	"f1":        hotkey.KeyF1,
	"f2":        hotkey.KeyF2,
	"f3":        hotkey.KeyF3,
	"f4":        hotkey.KeyF4,
	"f5":        hotkey.KeyF5,
	"f6":        hotkey.KeyF6,
	"f7":        hotkey.KeyF7,
	"f8":        hotkey.KeyF8,
	"f9":        hotkey.KeyF9,
	"f10":       hotkey.KeyF10,
	"f11":       hotkey.KeyF11,
	"f12":       hotkey.KeyF12,
	"up":        hotkey.KeyUp,
	"down":      hotkey.KeyDown,
	"left":      hotkey.KeyLeft,
	"right":     hotkey.KeyRight,
	"return":    hotkey.KeyReturn,
	"enter":     hotkey.KeyReturn,
	"escape":    hotkey.KeyEscape,
	"tab":       hotkey.KeyTab,
	"backspace": hotkey.KeyDelete,
}
