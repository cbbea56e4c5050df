// Package hotkey implements the Hotkey Listener (C4): it parses a
// "<mod>+<mod>+...+key" combo string and drives a global hotkey
// registration that can be paused, resumed, and re-targeted without
// tearing down its listener goroutine.
package hotkey

import (
	"fmt"
	"log"
	"strings"
	"sync"

	"golang.design/x/hotkey"
)

// Combo is a parsed hotkey string: an unordered modifier set plus a
// single main key.
type Combo struct {
	Modifiers []hotkey.Modifier
	Key       hotkey.Key
	raw       string
}

// Parse turns a string of the form "<ctrl>+<alt>+f" into a Combo.
// Modifier tokens are wrapped in angle brackets; the final,
// unbracketed token is the main key.
func Parse(spec string) (Combo, error) {
	tokens := strings.Split(spec, "+")
	if len(tokens) == 0 {
		return Combo{}, fmt.Errorf("hotkey: empty spec")
	}

	var mods []hotkey.Modifier
	var mainKey string
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if strings.HasPrefix(tok, "<") && strings.HasSuffix(tok, ">") {
			name := strings.ToLower(strings.Trim(tok, "<>"))
			mod, ok := modifierAliases[name]
			if !ok {
				return Combo{}, fmt.Errorf("hotkey: unknown modifier %q", name)
			}
			mods = append(mods, mod)
			continue
		}
		mainKey = tok
	}
	if mainKey == "" {
		return Combo{}, fmt.Errorf("hotkey: spec %q has no main key", spec)
	}

	key, ok := keyAliases[strings.ToLower(mainKey)]
	if !ok {
		return Combo{}, fmt.Errorf("hotkey: unknown key %q", mainKey)
	}

	return Combo{Modifiers: mods, Key: key, raw: spec}, nil
}

// modifierSet returns the parsed modifiers as a comparable set, so two
// combos can be compared regardless of modifier order.
func (c Combo) modifierSet() map[hotkey.Modifier]bool {
	set := make(map[hotkey.Modifier]bool, len(c.Modifiers))
	for _, m := range c.Modifiers {
		set[m] = true
	}
	return set
}

// Listener wraps golang.design/x/hotkey, translating the spec's
// pause/resume/update-without-restart contract onto that library's
// single-registration model by unregistering and re-registering
// internally while keeping the listener goroutine alive.
type Listener struct {
	logger *log.Logger

	mu         sync.Mutex
	combo      Combo
	hk         *hotkey.Hotkey
	forwardStop chan struct{}
	paused     bool
	toggleCh   chan struct{}
	dispatchStop chan struct{}
	dispatchDone chan struct{}
	onToggle   func()
}

// New builds a Listener for the given combo spec. onToggle fires on
// each exact-match key-down event, unless paused.
func New(spec string, onToggle func(), logger *log.Logger) (*Listener, error) {
	combo, err := Parse(spec)
	if err != nil {
		return nil, err
	}
	return &Listener{
		combo:    combo,
		onToggle: onToggle,
		logger:   logger,
		toggleCh: make(chan struct{}, 1),
	}, nil
}

// Start registers the hotkey and begins the dispatch goroutine. Pause,
// Resume, and UpdateHotkey never restart this goroutine: only the
// per-registration forwarder underneath it is swapped.
func (l *Listener) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.dispatchStop != nil {
		return fmt.Errorf("hotkey: listener already started")
	}
	if err := l.register(); err != nil {
		return err
	}
	l.dispatchStop = make(chan struct{})
	l.dispatchDone = make(chan struct{})
	go l.dispatch()
	return nil
}

// register registers l.combo and starts a forwarder goroutine that
// copies its key-down events onto the shared toggleCh. Must be called
// with mu held; replaces any prior registration.
func (l *Listener) register() error {
	hk := hotkey.New(l.combo.Modifiers, l.combo.Key)
	if err := hk.Register(); err != nil {
		return fmt.Errorf("hotkey: failed to register %q: %w", l.combo.raw, err)
	}
	stop := make(chan struct{})
	l.hk = hk
	l.forwardStop = stop
	go forward(hk, stop, l.toggleCh)
	return nil
}

// unregisterLocked tears down the current registration and its
// forwarder. Must be called with mu held.
func (l *Listener) unregisterLocked() {
	if l.forwardStop != nil {
		close(l.forwardStop)
		l.forwardStop = nil
	}
	if l.hk != nil {
		l.hk.Unregister()
		l.hk = nil
	}
}

// forward copies key-down events from hk onto toggleCh until stop
// fires. Runs as its own goroutine per registration so UpdateHotkey
// can swap the underlying hotkey.Hotkey without touching dispatch.
func forward(hk *hotkey.Hotkey, stop <-chan struct{}, toggleCh chan<- struct{}) {
	for {
		select {
		case <-stop:
			return
		case <-hk.Keydown():
			select {
			case toggleCh <- struct{}{}:
			case <-stop:
				return
			}
		}
	}
}

// dispatch is the long-lived listener goroutine: it never restarts
// across Pause/Resume/UpdateHotkey.
func (l *Listener) dispatch() {
	defer close(l.dispatchDone)
	for {
		select {
		case <-l.dispatchStop:
			return
		case <-l.toggleCh:
			l.mu.Lock()
			paused := l.paused
			l.mu.Unlock()
			if !paused && l.onToggle != nil {
				l.onToggle()
			}
		}
	}
}

// Stop unregisters the hotkey and terminates the dispatch goroutine.
func (l *Listener) Stop() {
	l.mu.Lock()
	l.unregisterLocked()
	if l.dispatchStop != nil {
		close(l.dispatchStop)
	}
	done := l.dispatchDone
	l.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Pause suppresses onToggle without unregistering the hotkey.
func (l *Listener) Pause() {
	l.mu.Lock()
	l.paused = true
	l.mu.Unlock()
}

// Resume re-enables onToggle.
func (l *Listener) Resume() {
	l.mu.Lock()
	l.paused = false
	l.mu.Unlock()
}

// UpdateHotkey re-targets the listener to a new combo without
// restarting the dispatch goroutine: the old registration and its
// forwarder are torn down and a new pair replaces them under the same
// lock.
func (l *Listener) UpdateHotkey(spec string) error {
	combo, err := Parse(spec)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	wasStarted := l.dispatchStop != nil
	l.unregisterLocked()
	l.combo = combo
	if !wasStarted {
		return nil // not started yet; Start will register the new combo
	}
	if err := l.register(); err != nil {
		return err
	}
	if l.logger != nil {
		l.logger.Printf("hotkey: updated to %s", spec)
	}
	return nil
}
