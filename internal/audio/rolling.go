package audio

import (
	"sync"
	"time"
)

// RollingBuffer is the growable sample accumulator the session
// controller transcribes against. Unlike Capture's bounded FIFO, it
// has no fixed ceiling: growth and prefix-drop are both explicit so
// the safe-commit protocol can bound decode cost on its own terms.
type RollingBuffer struct {
	mu      sync.Mutex
	samples []float32
}

// NewRollingBuffer returns an empty buffer.
func NewRollingBuffer() *RollingBuffer {
	return &RollingBuffer{}
}

// Append adds samples to the end of the buffer.
func (b *RollingBuffer) Append(samples []float32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.samples = append(b.samples, samples...)
}

// Samples returns a copy of the full buffer contents.
func (b *RollingBuffer) Samples() []float32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]float32, len(b.samples))
	copy(out, b.samples)
	return out
}

// Len returns the current sample count.
func (b *RollingBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.samples)
}

// Duration returns how much audio the buffer currently holds.
func (b *RollingBuffer) Duration() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return samplesToDuration(len(b.samples))
}

// DropPrefix discards the leading d seconds of audio, used by the
// safe-commit protocol once a prefix has been frozen into the
// confirmed transcript.
func (b *RollingBuffer) DropPrefix(d time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := durationToSamples(d)
	if n >= len(b.samples) {
		b.samples = b.samples[:0]
		return
	}
	b.samples = append([]float32(nil), b.samples[n:]...)
}

// Clear empties the buffer.
func (b *RollingBuffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.samples = b.samples[:0]
}

func samplesToDuration(n int) time.Duration {
	return time.Duration(n) * time.Second / SampleRate
}

func durationToSamples(d time.Duration) int {
	return int(d.Seconds() * SampleRate)
}
