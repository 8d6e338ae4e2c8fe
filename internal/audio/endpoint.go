package audio

import (
	"encoding/binary"
	"math"
	"time"
)

// EndpointState is the result of feeding audio to an Endpointer.
type EndpointState int

const (
	// EndpointWaiting has not heard speech yet.
	EndpointWaiting EndpointState = iota
	// EndpointSpeech is inside an utterance.
	EndpointSpeech
	// EndpointDone has a complete utterance.
	EndpointDone
	// EndpointNoSpeech gave up waiting for speech.
	EndpointNoSpeech
)

const (
	DefaultSilenceThreshold = 0.02
	DefaultListenTimeout    = 8 * time.Second
	DefaultSilenceHold      = 700 * time.Millisecond
	DefaultMaxUtterance     = 6 * time.Second
	defaultPreRoll          = 250 * time.Millisecond
)

// EndpointConfig tunes energy based utterance detection.
type EndpointConfig struct {
	SampleRate int
	// Threshold is the normalized RMS (0..1) above which a frame is speech.
	Threshold float64
	// ListenTimeout is how long to wait for speech to begin.
	ListenTimeout time.Duration
	// SilenceHold is the trailing silence that ends an utterance.
	SilenceHold time.Duration
	// MaxUtterance caps an utterance's length.
	MaxUtterance time.Duration
}

func (c EndpointConfig) WithDefaults() EndpointConfig {
	if c.SampleRate <= 0 {
		c.SampleRate = CaptureSampleRate
	}
	if c.Threshold <= 0 {
		c.Threshold = DefaultSilenceThreshold
	}
	if c.ListenTimeout <= 0 {
		c.ListenTimeout = DefaultListenTimeout
	}
	if c.SilenceHold <= 0 {
		c.SilenceHold = DefaultSilenceHold
	}
	if c.MaxUtterance <= 0 {
		c.MaxUtterance = DefaultMaxUtterance
	}

	return c
}

// Endpointer finds a single utterance in a stream of sample packets.
// Time is measured in samples, so results do not depend on wall clock.
type Endpointer struct {
	cfg EndpointConfig

	state    EndpointState
	waited   int
	silent   int
	preRoll  []int16
	captured []int16
}

func NewEndpointer(cfg EndpointConfig) *Endpointer {
	return &Endpointer{cfg: cfg.WithDefaults()}
}

// Push feeds one packet and returns the new state. Packets pushed after a
// final state are ignored.
func (e *Endpointer) Push(samples []int16) EndpointState {
	if e.state == EndpointDone || e.state == EndpointNoSpeech {
		return e.state
	}

	loud := RMS(samples) >= e.cfg.Threshold

	switch e.state {
	case EndpointWaiting:
		if loud {
			e.state = EndpointSpeech
			e.captured = append(e.preRoll, samples...)
			e.preRoll = nil

			return e.state
		}

		e.waited += len(samples)
		e.preRoll = appendCapped(e.preRoll, samples, e.samples(defaultPreRoll))
		if e.waited >= e.samples(e.cfg.ListenTimeout) {
			e.state = EndpointNoSpeech
		}
	case EndpointSpeech:
		e.captured = append(e.captured, samples...)
		if loud {
			e.silent = 0
		} else {
			e.silent += len(samples)
		}

		if e.silent >= e.samples(e.cfg.SilenceHold) || len(e.captured) >= e.samples(e.cfg.MaxUtterance) {
			e.state = EndpointDone
		}
	case EndpointDone, EndpointNoSpeech:
	}

	return e.state
}

// Utterance returns the captured samples, including a short lead-in.
func (e *Endpointer) Utterance() []int16 {
	return e.captured
}

func (e *Endpointer) samples(d time.Duration) int {
	return int(d.Seconds() * float64(e.cfg.SampleRate))
}

func appendCapped(buf, samples []int16, limit int) []int16 {
	buf = append(buf, samples...)
	if over := len(buf) - limit; over > 0 {
		buf = append(buf[:0], buf[over:]...)
	}

	return buf
}

// RMS returns the root mean square of samples normalized to 0..1.
func RMS(samples []int16) float64 {
	if len(samples) == 0 {
		return 0
	}

	var sum float64
	for _, s := range samples {
		v := float64(s) / math.MaxInt16
		sum += v * v
	}

	return math.Sqrt(sum / float64(len(samples)))
}

// DecodeS16LE converts little-endian 16-bit PCM to samples. A trailing odd
// byte is ignored.
func DecodeS16LE(data []byte) []int16 {
	if len(data) < 2 {
		return nil
	}

	samples := make([]int16, len(data)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(data[2*i:]))
	}

	return samples
}
