// Package session implements the Session Controller (C8): it drives
// one recording session end to end, merging the safe-committed
// transcript prefix with the in-flight tail, finalizing on stop or
// silence, and handing the cleaned text to the command engine and key
// synthesizer in turn.
package session

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"voxd/internal/audio"
	"voxd/internal/commands"
	"voxd/internal/config"
	"voxd/internal/overlay"
	"voxd/internal/whisper"
)

// Idle -> Recording -> Finalizing -> Idle is tracked informally via
// Stats.State strings rather than a typed enum, since nothing besides
// logging/snapshot consumes it (spec.md §4.1).
const (
	pollTimeout       = 100 * time.Millisecond
	tickInterval      = 500 * time.Millisecond // CHUNK_DURATION
	safeCommitCeiling = 20 * time.Second
	safeCommitGuard   = 5 * time.Second
	finalizeJoin      = 2 * time.Second
	minFinalAudio     = 300 * time.Millisecond
	postTypeSettle    = 300 * time.Millisecond
	overlayHideDelay  = 1 * time.Second
)

// Capture is the subset of *audio.Capture the controller drives.
// Narrowed to an interface so tests can inject a fake source of
// chunks without opening a real device.
type Capture interface {
	Start(ctx context.Context, deviceNameHint string, deviceID *int) (<-chan audio.Chunk, error)
	Stop() error
	ClearBuffer()
	PlayTone(cfg audio.ToneConfig) error
}

// startTone and stopTone mirror the teacher's start/completion audio
// cues (440Hz/150ms and 660Hz/200ms), gated by the audio_cue_enabled
// setting.
var (
	startTone = audio.ToneConfig{FrequencyHz: 440, DurationMs: 150, FadeMs: 5}
	stopTone  = audio.ToneConfig{FrequencyHz: 660, DurationMs: 200, FadeMs: 10}
)

// Transcriber is the subset of *whisper.Transcriber the controller
// needs.
type Transcriber interface {
	Transcribe(samples []float32) (whisper.Result, error)
}

// Engine is the subset of *commands.Engine the controller needs.
type Engine interface {
	Scan(text string) (string, []commands.Match)
	Execute(matches []commands.Match)
	ResetDedup()
}

// Keys is the subset of *keys.Synthesizer used to type the final
// cleaned text.
type Keys interface {
	TypeText(s string) error
}

// Stats is a point-in-time snapshot of controller state, surfaced to
// the admin socket.
type Stats struct {
	Recording   bool
	State       string
	WindowName  string
	StartedAt   time.Time
	LastText    string
	LastError   string
	SessionCount int
}

// Controller owns the single in-flight recording session. Only one
// session exists at a time; starting while already recording is a
// no-op, guarded by recordingLock (Toggle stops the session instead).
type Controller struct {
	logger  *log.Logger
	store   *config.Store
	capture Capture
	trans   Transcriber
	engine  Engine
	keys    Keys
	overlay overlay.Adapter

	recordingLock sync.Mutex
	recording     bool

	silenceDuration time.Duration
	inputDeviceHint string
	inputDeviceID   *int
	audioCueEnabled bool

	buffer    *audio.RollingBuffer
	confirmed string
	pending   string

	stopCh chan struct{}
	doneCh chan struct{}
	cancel context.CancelFunc

	statsMu sync.Mutex
	stats   Stats
}

// New builds a Controller wired against its collaborators. silence
// duration is read fresh from store on every session start so
// settings hot-reload takes effect on the next recording.
func New(logger *log.Logger, store *config.Store, capture Capture, trans Transcriber, engine Engine, keys Keys, ov overlay.Adapter) *Controller {
	c := &Controller{
		logger:  logger,
		store:   store,
		capture: capture,
		trans:   trans,
		engine:  engine,
		keys:    keys,
		overlay: ov,
		buffer:  audio.NewRollingBuffer(),
		stats:   Stats{State: "idle"},
	}
	ov.OnCancel(func() { c.Stop("overlay cancel") })
	return c
}

// Snapshot returns a copy of the controller's current stats, for the
// admin socket.
func (c *Controller) Snapshot() Stats {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	return c.stats
}

func (c *Controller) setStats(fn func(*Stats)) {
	c.statsMu.Lock()
	fn(&c.stats)
	c.statsMu.Unlock()
}

// Toggle starts a session if idle, or stops it if recording. Bound
// directly to the hotkey listener's onToggle callback.
func (c *Controller) Toggle(ctx context.Context) {
	c.recordingLock.Lock()
	recording := c.recording
	c.recordingLock.Unlock()
	if recording {
		c.Stop("hotkey toggle")
		return
	}
	c.start(ctx)
}

// start implements spec.md §4.1 "On toggle in Idle -> start_recording".
func (c *Controller) start(ctx context.Context) {
	c.recordingLock.Lock()
	if c.recording {
		c.recordingLock.Unlock()
		return
	}
	c.recording = true
	c.recordingLock.Unlock()

	// Step 1: clear rolling buffer and transcript state.
	c.buffer.Clear()
	c.confirmed = ""
	c.pending = ""

	windowName := activeWindowName()

	// Step 2: notify overlay.
	c.overlay.SetRecording(true)
	c.overlay.SetWindowName(windowName)
	c.overlay.SetStatus("recording")
	c.overlay.Show()

	// Step 3: reset per-session command dedup.
	c.engine.ResetDedup()

	settings := c.store.Snapshot()
	c.silenceDuration = time.Duration(settings.SilenceDuration * float64(time.Second))
	c.inputDeviceHint = ""
	if settings.InputDevice != nil {
		c.inputDeviceHint = *settings.InputDevice
	}
	c.inputDeviceID = settings.InputDeviceID
	c.audioCueEnabled = settings.AudioCueEnabled

	tone := startTone
	tone.Enabled = c.audioCueEnabled
	if err := c.capture.PlayTone(tone); err != nil {
		c.logger.Printf("session: failed to play start tone: %v", err)
	}

	sessionCtx, cancel := context.WithCancel(ctx)
	chunks, err := c.capture.Start(sessionCtx, c.inputDeviceHint, c.inputDeviceID)
	if err != nil {
		// Fatal per spec.md §7 taxonomy #4: return to Idle, notify,
		// do not crash the daemon.
		c.logger.Printf("session: failed to start audio capture: %v", err)
		c.overlay.SetStatus("audio device unavailable")
		c.overlay.SetRecording(false)
		cancel()
		c.recordingLock.Lock()
		c.recording = false
		c.recordingLock.Unlock()
		return
	}

	c.stopCh = make(chan struct{})
	c.doneCh = make(chan struct{})
	c.cancel = cancel

	c.setStats(func(s *Stats) {
		s.Recording = true
		s.State = "recording"
		s.WindowName = windowName
		s.StartedAt = time.Now()
		s.SessionCount++
	})

	// Step 4/5: the transcription loop owns the worker goroutine.
	go c.transcriptionLoop(sessionCtx, chunks)
}

// transcriptionLoop is spec.md §4.1's "Transcription loop", run on a
// dedicated worker per session.
func (c *Controller) transcriptionLoop(ctx context.Context, chunks <-chan audio.Chunk) {
	defer close(c.doneCh)

	lastSpeechTime := time.Now()
	lastTick := time.Now()

	gain := 4.0 // empirical RMS->overlay-level gain, matches a 0-1 bar at conversational volume

	for {
		select {
		case <-c.stopCh:
			return
		case chunk, ok := <-chunks:
			if !ok {
				return
			}
			c.buffer.Append(chunk.Samples)
			level := chunk.RMS * gain
			if level > 1 {
				level = 1
			}
			c.overlay.SetAudioLevel(level)
			if !audio.IsSilence(chunk.Samples) {
				lastSpeechTime = time.Now()
			}
		case <-time.After(pollTimeout):
		}

		now := time.Now()

		if now.Sub(lastTick) >= tickInterval && c.buffer.Duration() >= tickInterval {
			c.runTick()
			lastTick = now
		}

		if c.silenceDuration > 0 && now.Sub(lastSpeechTime) > c.silenceDuration {
			go c.Stop("silence timeout")
			return
		}
	}
}

// runTick transcribes the entire rolling buffer, updates pending, and
// applies the safe-commit protocol. Any transcription error here is a
// transient failure (spec.md §7 taxonomy #2): logged, tick skipped.
func (c *Controller) runTick() {
	samples := c.buffer.Samples()
	result, err := c.trans.Transcribe(samples)
	if err != nil {
		c.logger.Printf("session: transcription tick failed: %v", err)
		return
	}

	c.pending = result.Text
	c.overlay.SetTranscription(c.visibleTranscript())

	bufferDur := c.buffer.Duration()
	if bufferDur <= safeCommitCeiling {
		return
	}
	c.safeCommit(result, bufferDur)
}

// safeCommit walks segments in order and freezes the maximal prefix
// whose End falls more than safeCommitGuard before the end of the
// buffer, per spec.md §4.1.
func (c *Controller) safeCommit(result whisper.Result, bufferDur time.Duration) {
	cutoff := bufferDur - safeCommitGuard
	var frozen []string
	var remaining []string
	safePoint := time.Duration(0)

	splitAt := len(result.Segments)
	for i, seg := range result.Segments {
		if seg.End < cutoff {
			frozen = append(frozen, strings.TrimSpace(seg.Text))
			safePoint = seg.End
			continue
		}
		splitAt = i
		break
	}
	for _, seg := range result.Segments[splitAt:] {
		remaining = append(remaining, strings.TrimSpace(seg.Text))
	}
	if len(frozen) == 0 {
		return
	}

	if c.confirmed == "" {
		c.confirmed = strings.Join(frozen, " ")
	} else {
		c.confirmed = c.confirmed + " " + strings.Join(frozen, " ")
	}
	c.pending = strings.Join(remaining, " ")
	c.buffer.DropPrefix(safePoint)
}

func (c *Controller) visibleTranscript() string {
	return strings.TrimSpace(strings.TrimSpace(c.confirmed) + " " + strings.TrimSpace(c.pending))
}

// Stop implements spec.md §4.1 "On stop": halts capture, finalizes
// the transcript, runs the command engine, and types the result. reason
// is purely for logging/overlay status.
func (c *Controller) Stop(reason string) {
	c.recordingLock.Lock()
	if !c.recording {
		c.recordingLock.Unlock()
		return
	}
	c.recording = false
	stopCh := c.stopCh
	doneCh := c.doneCh
	cancel := c.cancel
	c.recordingLock.Unlock()

	c.setStats(func(s *Stats) {
		s.Recording = false
		s.State = "finalizing"
	})

	close(stopCh)
	cancel()
	c.capture.Stop()

	tone := stopTone
	tone.Enabled = c.audioCueEnabled
	if err := c.capture.PlayTone(tone); err != nil {
		c.logger.Printf("session: failed to play stop tone: %v", err)
	}

	select {
	case <-doneCh:
	case <-time.After(finalizeJoin):
		c.logger.Printf("session: worker join timed out after stop (%s)", reason)
	}

	finalText := c.visibleTranscript()
	if finalText == "" && c.buffer.Duration() >= minFinalAudio {
		samples := c.buffer.Samples()
		result, err := c.trans.Transcribe(samples)
		if err != nil {
			c.logger.Printf("session: final transcription failed, using last known text: %v", err)
		} else {
			finalText = strings.TrimSpace(result.Text)
		}
	}

	cleaned, matches := c.engine.Scan(finalText)
	c.engine.Execute(matches)
	typed := finalText
	if cleaned != finalText {
		typed = cleaned
	}

	c.setStats(func(s *Stats) {
		s.LastText = typed
		s.State = "idle"
	})

	if strings.TrimSpace(typed) != "" {
		time.Sleep(postTypeSettle)
		if err := c.keys.TypeText(typed); err != nil {
			c.logger.Printf("session: failed to type transcript: %v", err)
			c.overlay.SetStatus("type failed")
			c.setStats(func(s *Stats) { s.LastError = fmt.Sprintf("type failed: %v", err) })
		} else {
			c.overlay.SetStatus("done")
		}
	} else {
		c.overlay.SetStatus("done")
	}

	c.overlay.SetRecording(false)
	go func() {
		time.Sleep(overlayHideDelay)
		c.overlay.Hide()
	}()
}
