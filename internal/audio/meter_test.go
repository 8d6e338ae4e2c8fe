package audio_test

import (
	"context"
	"testing"
	"time"

	"github.com/alkime/dictator/internal/audio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelMeter_Recent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		window int
		writes [][]int16
		read   int
		want   []int16
	}{
		{name: "partial fill", window: 10, writes: [][]int16{{1, 2, 3, 4, 5}}, read: 5, want: []int16{1, 2, 3, 4, 5}},
		{name: "nothing written", window: 10, writes: [][]int16{{}}, read: 5, want: nil},
		{name: "packet larger than window", window: 5, writes: [][]int16{{1, 2, 3, 4, 5, 6, 7}}, read: 5, want: []int16{3, 4, 5, 6, 7}},
		{name: "wrap across packets", window: 5, writes: [][]int16{{1, 2}, {3, 4}, {5, 6}}, read: 5, want: []int16{2, 3, 4, 5, 6}},
		{name: "exact fill", window: 4, writes: [][]int16{{1, 2}, {3, 4}}, read: 4, want: []int16{1, 2, 3, 4}},
		{name: "tail only", window: 10, writes: [][]int16{{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}}, read: 3, want: []int16{8, 9, 10}},
		{name: "ask for more than stored", window: 10, writes: [][]int16{{1, 2, 3}}, read: 10, want: []int16{1, 2, 3}},
		{name: "zero", window: 10, writes: [][]int16{{1, 2, 3}}, read: 0, want: nil},
		{name: "negative", window: 10, writes: [][]int16{{1, 2, 3}}, read: -1, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m := audio.NewLevelMeter(tt.window)
			for _, w := range tt.writes {
				m.Observe(w)
			}

			require.Equal(t, tt.want, m.Recent(tt.read))
		})
	}
}

func TestLevelMeter_PeakClearAndWindow(t *testing.T) {
	t.Parallel()

	m := audio.NewLevelMeter(8)
	window := m.Window(3)

	m.Observe([]int16{1, 2, 3, 4})
	m.Observe([]int16{16000, -16000})
	m.Observe([]int16{5})
	assert.Equal(t, []int16{16000, -16000, 5}, window.Read())
	assert.InDelta(t, audio.RMS([]int16{16000, -16000}), m.Peak(), 1e-9)

	m.Clear()
	assert.Nil(t, window.Read())
	assert.Zero(t, m.Peak())
}

func TestLevelMeter_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	m := audio.NewLevelMeter(1000)
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	go func() {
		var n int16
		for ctx.Err() == nil {
			m.Observe([]int16{n, n + 1, n + 2})
			n += 3
		}
	}()

	for ctx.Err() == nil {
		assert.LessOrEqual(t, len(m.Recent(10)), 10)
	}
}

func TestDecodeS16LE(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input []byte
		want  []int16
	}{
		{name: "empty", input: []byte{}, want: nil},
		{name: "single byte", input: []byte{0x01}, want: nil},
		{name: "little endian", input: []byte{0x00, 0x01}, want: []int16{256}},
		{name: "several", input: []byte{0x01, 0x00, 0x02, 0x00, 0x03, 0x00}, want: []int16{1, 2, 3}},
		{name: "negative", input: []byte{0xFF, 0xFF}, want: []int16{-1}},
		{name: "extremes", input: []byte{0xFF, 0x7F, 0x00, 0x80}, want: []int16{32767, -32768}},
		{name: "odd length", input: []byte{0x01, 0x00, 0x02}, want: []int16{1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, audio.DecodeS16LE(tt.input))
		})
	}
}
