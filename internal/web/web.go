// Package web implements the Web capability the command engine's
// "search"/"google" builtins depend on: opening a URL in the user's
// default browser.
package web

import (
	"fmt"
	"os"
	"os/exec"
)

// Launcher starts url in a browser and returns immediately, not
// waiting for the browser process to exit. Swappable so tests can
// assert on the URL without actually shelling out.
type Launcher interface {
	Launch(url string) error
}

// execLauncher shells out for real, grounded in the same
// exec.LookPath-then-exec.Command pattern internal/keys uses.
type execLauncher struct{}

func (execLauncher) Launch(url string) error {
	if browser := os.Getenv("BROWSER"); browser != "" {
		if path, err := exec.LookPath(browser); err == nil {
			return exec.Command(path, url).Start()
		}
	}
	path, err := exec.LookPath("xdg-open")
	if err != nil {
		return fmt.Errorf("web: xdg-open not found: %w", err)
	}
	return exec.Command(path, url).Start()
}

const searchURL = "https://www.google.com/search?q="

// Opener implements commands.Web.
type Opener struct {
	launcher Launcher
}

// New returns an Opener backed by a real browser launch.
func New() *Opener { return &Opener{launcher: execLauncher{}} }

// newWithLauncher is used by tests to inject a fake launcher.
func newWithLauncher(l Launcher) *Opener { return &Opener{launcher: l} }

// Search opens a Google search for the already-URL-encoded query,
// satisfying internal/commands.Web.
func (o *Opener) Search(encodedQuery string) error {
	return o.launcher.Launch(searchURL + encodedQuery)
}
