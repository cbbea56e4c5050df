// Package whisper implements the Transcriber (C3): a mutex-guarded,
// lazily-loaded wrapper around a whisper.cpp model that turns PCM
// float32 samples into text.
package whisper

import (
	"fmt"
	"log"
	"math"
	"strings"
	"sync"
	"time"
)

const (
	idleTimeout    = 300 * time.Second
	idlePollPeriod = 30 * time.Second
	silenceFloor   = 0.02
	minTextLen     = 3
)

// hallucinationPhrases are short stock phrases whisper.cpp tends to
// emit on near-silent audio.
var hallucinationPhrases = map[string]bool{
	"thank you":             true,
	"thanks for watching":   true,
	"subscribe":             true,
	"like and subscribe":    true,
	"see you":               true,
	"bye":                   true,
	"goodbye":                true,
	"music":                 true,
	"applause":               true,
	"laughter":               true,
	"...":                    true,
	"ready?":                 true,
}

// Segment is the exported, value-typed shape of a decoded span
// returned to callers (the internal rawSegment interface exists only
// to make decoding mockable).
type Segment struct {
	Start time.Duration
	End   time.Duration
	Text  string
}

// Result is the outcome of one Transcribe call.
type Result struct {
	Text       string
	Language   string
	Confidence float64
	Segments   []Segment
}

// Config controls decoding. Language, Device, and ModelPath are
// typically sourced from config.Settings.
type Config struct {
	ModelPath string
	Language  string
	Device    string // auto, cpu, cuda
}

// Transcriber is the process-wide C3 component. It is safe for
// concurrent use; decoding is serialized under mu, matching the
// spec's single internal mutex.
type Transcriber struct {
	factory ModelFactory
	logger  *log.Logger

	mu       sync.Mutex
	cfg      Config
	model    Model
	lastUse  time.Time
	loaded   bool

	idleStop chan struct{}
	idleDone chan struct{}
}

// New constructs a Transcriber against factory (DefaultModelFactory in
// production, a fake in tests) and starts its idle-unload monitor.
func New(factory ModelFactory, cfg Config, logger *log.Logger) *Transcriber {
	t := &Transcriber{
		factory:  factory,
		logger:   logger,
		cfg:      cfg,
		idleStop: make(chan struct{}),
		idleDone: make(chan struct{}),
	}
	go t.idleMonitor()
	return t
}

// idleMonitor wakes every 30s and unloads the model after 300s of
// inactivity, freeing device memory until the next Transcribe call.
func (t *Transcriber) idleMonitor() {
	defer close(t.idleDone)
	ticker := time.NewTicker(idlePollPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-t.idleStop:
			return
		case <-ticker.C:
			t.mu.Lock()
			idle := t.loaded && time.Since(t.lastUse) > idleTimeout
			t.mu.Unlock()
			if idle {
				t.unloadModel()
			}
		}
	}
}

// Close stops the idle monitor and releases the model, if loaded.
func (t *Transcriber) Close() error {
	close(t.idleStop)
	<-t.idleDone
	t.unloadModel()
	return nil
}

// loadModel is idempotent under mu; callers must hold mu.
func (t *Transcriber) loadModel() error {
	if t.loaded {
		return nil
	}
	model, err := t.factory.Load(t.cfg.ModelPath)
	if err != nil {
		return fmt.Errorf("failed to load whisper model %q: %w", t.cfg.ModelPath, err)
	}
	t.model = model
	t.loaded = true
	t.lastUse = time.Now()
	if t.logger != nil {
		t.logger.Printf("whisper: model loaded from %s", t.cfg.ModelPath)
	}
	return nil
}

func (t *Transcriber) unloadModel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.loaded {
		return
	}
	if t.logger != nil {
		t.logger.Printf("whisper: model idle, unloading")
	}
	t.model.Close()
	t.model = nil
	t.loaded = false
}

// UpdateConfig swaps the decode configuration. The currently loaded
// model (if any) is released so the next Transcribe call reloads
// against the new settings.
func (t *Transcriber) UpdateConfig(cfg Config) {
	t.mu.Lock()
	t.cfg = cfg
	t.mu.Unlock()
	t.unloadModel()
}

func resolveDevice(want string) string {
	switch want {
	case "cpu", "cuda":
		return want
	default:
		return "cpu" // auto: whisper.cpp's Go bindings do not expose CUDA probing
	}
}

// normalize rescales samples whose peak exceeds 1.0 and reports
// whether the buffer is loud enough to bother decoding.
func normalize(samples []float32) (out []float32, hasSpeech bool) {
	var peak float32
	for _, s := range samples {
		if a := float32(math.Abs(float64(s))); a > peak {
			peak = a
		}
	}
	if peak < silenceFloor {
		return samples, false
	}
	if peak > 1.0 {
		out = make([]float32, len(samples))
		for i, s := range samples {
			out[i] = s / peak
		}
		return out, true
	}
	return samples, true
}

func isHallucination(text string) bool {
	cleaned := strings.ToLower(strings.TrimSpace(text))
	cleaned = strings.Trim(cleaned, ".,!?")
	if len(cleaned) < minTextLen {
		return true
	}
	return hallucinationPhrases[cleaned]
}

// Transcribe decodes samples (mono float32 PCM) and returns the
// cleaned result. Safe for concurrent use; callers are serialized.
func (t *Transcriber) Transcribe(samples []float32) (Result, error) {
	if len(samples) == 0 {
		return Result{}, fmt.Errorf("whisper: empty audio samples")
	}

	normalized, hasSpeech := normalize(samples)
	if !hasSpeech {
		return Result{}, nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.loadModel(); err != nil {
		return Result{}, err
	}
	t.lastUse = time.Now()

	ctx, err := t.model.NewContext()
	if err != nil {
		return Result{}, fmt.Errorf("whisper: failed to create context: %w", err)
	}

	lang := t.cfg.Language
	if lang == "" {
		lang = "en"
	}
	if err := ctx.SetLanguage(lang); err != nil {
		return Result{}, fmt.Errorf("whisper: failed to set language %q: %w", lang, err)
	}
	ctx.SetTranslate(false)
	// best_of, condition_on_previous_text, no_speech_threshold, and
	// logprob_threshold are not exposed by this whisper.cpp Go binding
	// revision; beam_size and temperature are the closest levers it
	// offers toward the same deterministic, lenient-truncation goal.
	ctx.SetSpeedUp(resolveDevice(t.cfg.Device) == "cuda")
	ctx.SetTemperature(0)
	ctx.SetBeamSize(5)
	ctx.SetMaxSegmentLength(0)
	ctx.SetTokenTimestamps(true)
	ctx.SetMaxTextContext(16384)

	var segments []Segment
	var text strings.Builder
	err = ctx.Process(normalized, func(s rawSegment) {
		segments = append(segments, Segment{Start: s.Start(), End: s.End(), Text: s.Text()})
	})
	if err != nil {
		return Result{}, fmt.Errorf("whisper: failed to process audio: %w", err)
	}
	for i, s := range segments {
		if i > 0 {
			text.WriteByte(' ')
		}
		text.WriteString(strings.TrimSpace(s.Text))
	}

	full := strings.TrimSpace(text.String())
	if isHallucination(full) {
		return Result{}, nil
	}

	return Result{
		Text:       full,
		Language:   ctx.Language(),
		Confidence: 1.0,
		Segments:   segments,
	}, nil
}
