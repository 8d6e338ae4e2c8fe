package audio

import (
	"context"
	"log/slog"

	"github.com/alkime/dictator/pkg/channels"
)

// Microphone opens the default capture device for one listening session
// at a time and mirrors what it hears into a level buffer.
type Microphone struct {
	conf   DeviceConfig
	levels *LevelMeter
}

// NewMicrophone captures with conf. levels may be nil.
func NewMicrophone(conf DeviceConfig, levels *LevelMeter) *Microphone {
	return &Microphone{conf: conf, levels: levels}
}

// SampleRate returns the capture rate in Hz.
func (m *Microphone) SampleRate() int {
	return m.conf.SampleRate
}

// Open starts capturing and returns decoded samples until ctx is done, at
// which point the device is released and the channel closed.
func (m *Microphone) Open(ctx context.Context) (<-chan []int16, error) {
	dev := NewDevice(m.conf)

	packets, err := dev.Capture(ctx)
	if err != nil {
		return nil, err
	}

	if err := dev.Start(ctx); err != nil {
		dev.Dealloc(ctx)
		return nil, err
	}

	out := make(chan []int16, 64)
	go func() {
		defer close(out)
		defer func() {
			if err := dev.Stop(context.Background()); err != nil {
				slog.Debug("stopping capture device", "error", err)
			}
			dev.Dealloc(context.Background())

			attrs := []any{"dropped_packets", dev.Dropped()}
			if m.levels != nil {
				attrs = append(attrs, "peak_rms", m.levels.Peak())
				m.levels.Clear()
			}
			slog.Debug("capture finished", attrs...)
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case packet := <-packets:
				samples := DecodeS16LE(packet)
				if m.levels != nil {
					m.levels.Observe(samples)
				}
				_ = channels.SendNonBlock(out, samples)
			}
		}
	}()

	return out, nil
}
