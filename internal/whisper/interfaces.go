package whisper

import "time"

// Model is the subset of whisper.cpp's model handle the transcriber
// needs. Narrow on purpose so tests can inject a fake model without
// loading a real ggml file.
type Model interface {
	NewContext() (Context, error)
	Languages() []string
	Close() error
}

// Context is one decode session against a loaded Model.
type Context interface {
	SetLanguage(lang string) error
	SetTranslate(v bool)
	SetThreads(n uint)
	SetSpeedUp(v bool)
	SetBeamSize(n int)
	SetTemperature(t float32)
	SetMaxSegmentLength(n int)
	SetTokenTimestamps(v bool)
	SetMaxTextContext(n int)
	SetInitialPrompt(prompt string)
	IsMultilingual() bool
	Language() string
	Process(samples []float32, onSegment func(rawSegment)) error
}

// rawSegment is one decoded span as reported by a Context mid-decode,
// before it is copied into the exported Segment value type.
type rawSegment interface {
	Text() string
	Start() time.Duration
	End() time.Duration
}

// ModelFactory loads a Model from a ggml file path. Swappable so tests
// never touch the filesystem or cgo.
type ModelFactory interface {
	Load(modelPath string) (Model, error)
}
