// Package overlay implements the Overlay Adapter (C9). No GUI toolkit
// exists in the dependency pack for this domain, so the only shipped
// implementation is a structured-logging façade: it satisfies the
// full contract and is safe to call from any goroutine, but a real
// widget is a drop-in replacement behind the same interface.
package overlay

import (
	"log"
	"sync"
)

// Adapter is the overlay contract the session controller drives.
type Adapter interface {
	Show()
	Hide()
	SetRecording(recording bool)
	SetAudioLevel(level float64)
	SetWindowName(name string)
	SetTranscription(text string)
	SetStatus(status string)
	// OnCancel registers fn to be called when the overlay reports a
	// user-initiated cancel (e.g. a close button or Escape key on a
	// real widget). Returns an unsubscribe function.
	OnCancel(fn func()) (unsubscribe func())
}

// LoggingAdapter logs every overlay operation via logger instead of
// rendering anything, matching the teacher's log.Logger idiom.
type LoggingAdapter struct {
	logger *log.Logger

	mu        sync.Mutex
	listeners map[int]func()
	nextID    int
}

// New returns a LoggingAdapter.
func New(logger *log.Logger) *LoggingAdapter {
	return &LoggingAdapter{logger: logger, listeners: make(map[int]func())}
}

func (a *LoggingAdapter) Show() { a.logf("overlay: show") }
func (a *LoggingAdapter) Hide() { a.logf("overlay: hide") }

func (a *LoggingAdapter) SetRecording(recording bool) {
	a.logf("overlay: recording=%v", recording)
}

func (a *LoggingAdapter) SetAudioLevel(level float64) {
	a.logf("overlay: audio_level=%.3f", level)
}

func (a *LoggingAdapter) SetWindowName(name string) {
	a.logf("overlay: window=%q", name)
}

func (a *LoggingAdapter) SetTranscription(text string) {
	a.logf("overlay: transcription=%q", text)
}

func (a *LoggingAdapter) SetStatus(status string) {
	a.logf("overlay: status=%q", status)
}

// OnCancel registers fn against this adapter's cancel event. The
// logging façade never fires it on its own (it has no input surface);
// Cancel exists so tests and a future real widget can drive it.
func (a *LoggingAdapter) OnCancel(fn func()) func() {
	a.mu.Lock()
	id := a.nextID
	a.nextID++
	a.listeners[id] = fn
	a.mu.Unlock()

	return func() {
		a.mu.Lock()
		delete(a.listeners, id)
		a.mu.Unlock()
	}
}

// Cancel fires every registered OnCancel listener, as a real widget's
// close button or Escape key would.
func (a *LoggingAdapter) Cancel() {
	a.mu.Lock()
	fns := make([]func(), 0, len(a.listeners))
	for _, fn := range a.listeners {
		fns = append(fns, fn)
	}
	a.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

func (a *LoggingAdapter) logf(format string, args ...any) {
	if a.logger != nil {
		a.logger.Printf(format, args...)
	}
}
