// Package audio implements the Audio Capture component (C2): a
// single-channel 16kHz float32 input stream plus the growable rolling
// buffer the session controller transcribes against.
package audio

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"
	"unsafe"

	"github.com/gen2brain/malgo"
)

const (
	// SampleRate is the fixed capture rate the whole pipeline assumes.
	SampleRate = 16000
	// SilenceThreshold is the RMS floor below which a chunk counts as
	// silence for auto-stop purposes.
	SilenceThreshold = 0.01
	// bufferDuration bounds the capability window below; the session
	// controller keeps its own unbounded RollingBuffer and does not
	// read from this one.
	bufferDuration = 5 * time.Second
)

// window is a fixed-length trailing buffer, preserved as a capability
// for callers that want "the last 5 seconds" without paying for the
// session controller's unbounded buffer.
type window struct {
	mu      sync.Mutex
	samples []float32
}

func (w *window) append(samples []float32) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.samples = append(w.samples, samples...)
	max := durationToSamples(bufferDuration)
	if len(w.samples) > max {
		w.samples = append([]float32(nil), w.samples[len(w.samples)-max:]...)
	}
}

func (w *window) clear() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.samples = w.samples[:0]
}

// Recent returns a copy of the trailing bufferDuration seconds of
// captured audio.
func (c *Capture) Recent() []float32 {
	c.window.mu.Lock()
	defer c.window.mu.Unlock()
	out := make([]float32, len(c.window.samples))
	copy(out, c.window.samples)
	return out
}

// Chunk is one fixed-size block handed to the session controller.
type Chunk struct {
	Samples []float32
	RMS     float64
}

// Capture owns the malgo capture device and fans incoming blocks out
// to a bounded FIFO channel.
type Capture struct {
	chunkDuration float64
	malgoCtx      *malgo.AllocatedContext
	device        *malgo.Device
	chunks        chan Chunk
	closed        bool
	window        window
}

// NewCapture builds a Capture that emits blocks of chunkDuration
// seconds (CHUNK_DURATION in spec terms).
func NewCapture(chunkDuration float64) *Capture {
	return &Capture{
		chunkDuration: chunkDuration,
		chunks:        make(chan Chunk, 100),
	}
}

// Start opens the capture device against the given input (empty name
// and nil id mean "system default") and begins filling the returned
// channel. The channel closes when Stop is called.
func (c *Capture) Start(ctx context.Context, deviceNameHint string, deviceID *int) (<-chan Chunk, error) {
	if c.closed {
		c.chunks = make(chan Chunk, 100)
		c.closed = false
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatF32
	deviceConfig.Capture.Channels = 1
	deviceConfig.SampleRate = SampleRate
	deviceConfig.Alsa.NoMMap = 1
	deviceConfig.PeriodSizeInMilliseconds = uint32(c.chunkDuration * 1000)

	malgoCtx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("audio: failed to init capture context: %w", err)
	}
	c.malgoCtx = malgoCtx

	if id := deviceIDFromHint(deviceNameHint, deviceID); id != nil {
		deviceConfig.Capture.DeviceID = unsafe.Pointer(id)
	}

	onRecvFrames := func(pOutput, pInput []byte, framecount uint32) {
		if framecount == 0 || len(pInput) == 0 {
			return
		}
		samples := make([]float32, framecount)
		copy(samples, (*[1 << 30]float32)(unsafe.Pointer(&pInput[0]))[:framecount])

		chunk := Chunk{Samples: samples, RMS: CalculateRMS(samples)}
		c.window.append(samples)
		select {
		case c.chunks <- chunk:
		case <-ctx.Done():
		default:
			// Queue is full: drop the chunk rather than block the audio thread.
		}
	}

	device, err := malgo.InitDevice(malgoCtx.Context, deviceConfig, malgo.DeviceCallbacks{
		Data: onRecvFrames,
	})
	if err != nil {
		malgoCtx.Uninit()
		return nil, fmt.Errorf("audio: failed to init capture device: %w", err)
	}
	c.device = device

	if err := device.Start(); err != nil {
		device.Uninit()
		malgoCtx.Uninit()
		return nil, fmt.Errorf("audio: failed to start capture device: %w", err)
	}

	return c.chunks, nil
}

// Stop tears down the device and closes the chunk channel. Safe to
// call more than once.
func (c *Capture) Stop() error {
	if c.device != nil {
		c.device.Uninit()
		c.device = nil
	}
	if c.malgoCtx != nil {
		c.malgoCtx.Uninit()
		c.malgoCtx = nil
	}
	if !c.closed {
		close(c.chunks)
		c.closed = true
	}
	return nil
}

// ClearBuffer empties both the FIFO (draining any queued, undelivered
// chunks) and the trailing window.
func (c *Capture) ClearBuffer() {
	c.window.clear()
	for {
		select {
		case _, ok := <-c.chunks:
			if !ok {
				return
			}
		default:
			return
		}
	}
}

// deviceIDFromHint builds a malgo.DeviceID from the configured input
// device preference. A numeric id is encoded as its decimal string;
// an empty hint and nil id mean "use the system default".
func deviceIDFromHint(nameHint string, numericID *int) *malgo.DeviceID {
	name := nameHint
	if numericID != nil {
		name = fmt.Sprintf("%d", *numericID)
	}
	if name == "" {
		return nil
	}
	var id malgo.DeviceID
	copy(id[:], name)
	return &id
}

// PlayTone plays a short sine-wave cue on a dedicated playback
// context, independent of any in-progress capture device, grounded in
// the teacher's internal/audio/recorder.go start/completion/error
// tones.
func (c *Capture) PlayTone(cfg ToneConfig) error {
	if !cfg.Enabled {
		return nil
	}
	malgoCtx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return fmt.Errorf("audio: failed to init playback context: %w", err)
	}
	defer malgoCtx.Uninit()
	return PlayTone(malgoCtx, cfg)
}

// CalculateRMS computes the root-mean-square level of a chunk.
func CalculateRMS(samples []float32) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sumSquares float64
	for _, s := range samples {
		v := float64(s)
		sumSquares += v * v
	}
	return math.Sqrt(sumSquares / float64(len(samples)))
}

// IsSilence reports whether a chunk falls below SilenceThreshold.
func IsSilence(samples []float32) bool {
	return CalculateRMS(samples) < SilenceThreshold
}
