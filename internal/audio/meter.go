package audio

import (
	"sync"

	"github.com/alkime/dictator/pkg/uictl"
)

// LevelMeter mirrors the most recent capture samples for the listening
// waveform and remembers the loudest window RMS since the last Clear.
type LevelMeter struct {
	mu   sync.RWMutex
	ring []int16
	next int
	full bool
	peak float64
}

// NewLevelMeter keeps the last window samples. window must be positive.
func NewLevelMeter(window int) *LevelMeter {
	return &LevelMeter{ring: make([]int16, window)}
}

// Observe records a packet of samples.
func (m *LevelMeter) Observe(samples []int16) {
	if len(samples) == 0 {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.peak = max(m.peak, RMS(samples))

	if len(samples) >= len(m.ring) {
		copy(m.ring, samples[len(samples)-len(m.ring):])
		m.next, m.full = 0, true

		return
	}

	n := copy(m.ring[m.next:], samples)
	if n < len(samples) {
		copy(m.ring, samples[n:])
		m.full = true
	}
	m.next = (m.next + len(samples)) % len(m.ring)
	if m.next == 0 {
		m.full = true
	}
}

// Recent returns up to n samples, oldest first.
func (m *LevelMeter) Recent(n int) []int16 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stored := m.next
	if m.full {
		stored = len(m.ring)
	}
	n = min(n, stored)
	if n <= 0 {
		return nil
	}

	out := make([]int16, n)
	start := m.next - n
	if start >= 0 {
		copy(out, m.ring[start:m.next])
		return out
	}

	k := copy(out, m.ring[len(m.ring)+start:])
	copy(out[k:], m.ring[:m.next])

	return out
}

// Peak returns the loudest packet RMS observed since the last Clear.
func (m *LevelMeter) Peak() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.peak
}

// Clear drops everything so a stale level is not drawn after capture stops.
func (m *LevelMeter) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.next, m.full, m.peak = 0, false, 0
}

// Window exposes the latest n samples as a waveform source.
func (m *LevelMeter) Window(n int) uictl.Levels[int16] {
	return meterWindow{meter: m, n: n}
}

type meterWindow struct {
	meter *LevelMeter
	n     int
}

func (w meterWindow) Read() []int16 { return w.meter.Recent(w.n) }
