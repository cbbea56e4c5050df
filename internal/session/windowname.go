package session

import (
	"os/exec"
	"strings"
)

// activeWindowName shells out to xdotool to fetch the focused window's
// title, mirroring the key synthesizer's exec.LookPath-then-Command
// pattern. Returns "" (not an error) when unavailable, since a missing
// window title is cosmetic, not fatal.
func activeWindowName() string {
	path, err := exec.LookPath("xdotool")
	if err != nil {
		return ""
	}
	out, err := exec.Command(path, "getactivewindow", "getwindowname").Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}
