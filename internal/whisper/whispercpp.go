package whisper

import (
	"time"

	cpp "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
)

// cppModel adapts the real whisper.cpp bindings to Model.
type cppModel struct {
	model cpp.Model
}

func (m *cppModel) NewContext() (Context, error) {
	ctx, err := m.model.NewContext()
	if err != nil {
		return nil, err
	}
	return &cppContext{ctx: ctx}, nil
}

func (m *cppModel) Languages() []string { return m.model.Languages() }
func (m *cppModel) Close() error        { return m.model.Close() }

// cppContext adapts a real whisper.cpp context to Context.
type cppContext struct {
	ctx cpp.Context
}

func (c *cppContext) SetLanguage(lang string) error  { return c.ctx.SetLanguage(lang) }
func (c *cppContext) SetTranslate(v bool)             { c.ctx.SetTranslate(v) }
func (c *cppContext) SetThreads(n uint)               { c.ctx.SetThreads(n) }
func (c *cppContext) SetSpeedUp(v bool)               { c.ctx.SetSpeedUp(v) }
func (c *cppContext) SetBeamSize(n int)               { c.ctx.SetBeamSize(n) }
func (c *cppContext) SetTemperature(t float32)        { c.ctx.SetTemperature(t) }
func (c *cppContext) SetMaxSegmentLength(n int)       { c.ctx.SetMaxSegmentLength(n) }
func (c *cppContext) SetTokenTimestamps(v bool)       { c.ctx.SetTokenTimestamps(v) }
func (c *cppContext) SetMaxTextContext(n int)         { c.ctx.SetMaxTextContext(n) }
func (c *cppContext) SetInitialPrompt(prompt string)  { c.ctx.SetInitialPrompt(prompt) }
func (c *cppContext) IsMultilingual() bool            { return c.ctx.IsMultilingual() }
func (c *cppContext) Language() string                { return c.ctx.Language() }

func (c *cppContext) Process(samples []float32, onSegment func(rawSegment)) error {
	var segmentCB cpp.SegmentCallback
	if onSegment != nil {
		segmentCB = func(s cpp.Segment) {
			onSegment(&cppSegment{seg: s})
		}
	}
	encoderBegin := func() bool { return true }
	return c.ctx.Process(samples, encoderBegin, segmentCB, nil)
}

// cppSegment adapts a real whisper.cpp segment to rawSegment. Start/End are
// reported in centiseconds by the bindings.
type cppSegment struct {
	seg cpp.Segment
}

func (s *cppSegment) Text() string { return s.seg.Text }
func (s *cppSegment) Start() time.Duration {
	return time.Duration(s.seg.Start) * 10 * time.Millisecond
}
func (s *cppSegment) End() time.Duration {
	return time.Duration(s.seg.End) * 10 * time.Millisecond
}

// DefaultModelFactory loads real ggml models via whisper.cpp's cgo
// bindings.
type DefaultModelFactory struct{}

func (DefaultModelFactory) Load(modelPath string) (Model, error) {
	m, err := cpp.New(modelPath)
	if err != nil {
		return nil, err
	}
	return &cppModel{model: m}, nil
}
