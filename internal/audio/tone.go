package audio

import (
	"fmt"
	"math"

	"github.com/gen2brain/malgo"
)

// ToneConfig describes the optional start/stop audio cue.
type ToneConfig struct {
	Enabled    bool
	FrequencyHz float64
	DurationMs  int
	FadeMs      int
}

// PlayTone blocks until a short sine-wave cue finishes playing. A
// no-op when cfg.Enabled is false, so callers can call it
// unconditionally.
func PlayTone(malgoCtx *malgo.AllocatedContext, cfg ToneConfig) error {
	if !cfg.Enabled {
		return nil
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgo.FormatF32
	deviceConfig.Playback.Channels = 1
	deviceConfig.SampleRate = SampleRate
	deviceConfig.Alsa.NoMMap = 1

	totalSamples := SampleRate * cfg.DurationMs / 1000
	done := make(chan struct{})
	var sampleCount int
	var closeOnce bool

	device, err := malgo.InitDevice(malgoCtx.Context, deviceConfig, malgo.DeviceCallbacks{
		Data: func(outputSamples, inputSamples []byte, framecount uint32) {
			freq := cfg.FrequencyHz
			duration := float64(cfg.DurationMs) / 1000.0
			fade := float64(cfg.FadeMs) / 1000.0

			samples := make([]float32, framecount)
			for i := range samples {
				if sampleCount >= totalSamples {
					if !closeOnce {
						closeOnce = true
						close(done)
					}
					continue
				}
				t := float64(sampleCount) / float64(SampleRate)
				amp := 1.0
				if t < fade {
					amp = t / fade
				} else if t > duration-fade {
					amp = (duration - t) / fade
				}
				samples[i] = float32(amp * 0.5 * math.Sin(2*math.Pi*freq*t))
				sampleCount++
			}

			bytes := make([]byte, len(samples)*4)
			for i, s := range samples {
				bits := math.Float32bits(s)
				bytes[i*4] = byte(bits)
				bytes[i*4+1] = byte(bits >> 8)
				bytes[i*4+2] = byte(bits >> 16)
				bytes[i*4+3] = byte(bits >> 24)
			}
			copy(outputSamples, bytes)
		},
	})
	if err != nil {
		return fmt.Errorf("audio: failed to init tone playback device: %w", err)
	}
	defer device.Uninit()

	if err := device.Start(); err != nil {
		return fmt.Errorf("audio: failed to start tone playback: %w", err)
	}
	<-done
	device.Stop()
	return nil
}
