// Package admincli adapts the teacher's terminal-keypress admin
// console (internal/server/keyboard.go, github.com/eiannone/keyboard)
// into a foreground-only, opt-in debug console for headless
// development boxes without an evdev-capable hotkey device. It never
// substitutes for the real global hotkey path (internal/hotkey); it
// offers the same single-key verbs against the session controller.
package admincli

import (
	"context"
	"fmt"
	"log"

	"github.com/eiannone/keyboard"
)

// Controller is the subset of *session.Controller the console drives.
type Controller interface {
	Toggle(ctx context.Context)
	Snapshot() any
}

// keyAction binds one keypress to a console verb.
type keyAction struct {
	key    rune
	desc   string
	handle func()
}

// Console is a single-goroutine keypress reader. Run must not be
// called concurrently with itself.
type Console struct {
	logger *log.Logger
	ctrl   Controller
	ctx    context.Context

	actions []keyAction
	quit    chan struct{}
}

// New builds a Console bound to ctrl. ctx is passed through to every
// Controller.Toggle call the console issues.
func New(ctx context.Context, ctrl Controller, logger *log.Logger) *Console {
	c := &Console{logger: logger, ctrl: ctrl, ctx: ctx, quit: make(chan struct{})}
	c.actions = []keyAction{
		{key: 'r', desc: "toggle recording", handle: func() { ctrl.Toggle(ctx) }},
		{key: 'i', desc: "show status", handle: c.printStatus},
		{key: '?', desc: "show this help", handle: c.printHelp},
		{key: 'q', desc: "quit console (daemon keeps running)", handle: func() { close(c.quit) }},
	}
	return c
}

func (c *Console) printStatus() {
	fmt.Printf("\nstatus: %+v\n\n", c.ctrl.Snapshot())
}

func (c *Console) printHelp() {
	fmt.Println("\nAvailable debug console commands:")
	for _, a := range c.actions {
		fmt.Printf("  %c: %s\n", a.key, a.desc)
	}
	fmt.Println()
}

// Run opens the terminal keyboard reader and blocks, dispatching
// keypresses, until Esc/Ctrl-C/'q'. A canceled ctx is noticed before
// the next key read, not while a read is blocked.
func (c *Console) Run() error {
	if err := keyboard.Open(); err != nil {
		return fmt.Errorf("admincli: failed to open keyboard: %w", err)
	}
	defer keyboard.Close()

	fmt.Println("Debug console active. Press '?' for help.")

	for {
		select {
		case <-c.ctx.Done():
			return nil
		case <-c.quit:
			return nil
		default:
		}

		char, key, err := keyboard.GetKey()
		if err != nil {
			return fmt.Errorf("admincli: failed to read key: %w", err)
		}
		if key == keyboard.KeyEsc || key == keyboard.KeyCtrlC {
			return nil
		}
		c.dispatch(char)
	}
}

func (c *Console) dispatch(char rune) {
	for _, a := range c.actions {
		if a.key == char {
			a.handle()
			return
		}
	}
	if c.logger != nil {
		c.logger.Printf("admincli: no action bound to key %q", char)
	}
}
