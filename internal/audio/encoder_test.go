package audio

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sine(rate int, seconds float64) []int16 {
	n := int(float64(rate) * seconds)
	out := make([]int16, n)
	for i := range out {
		out[i] = int16(8000 * math.Sin(2*math.Pi*440*float64(i)/float64(rate)))
	}

	return out
}

func TestEncoderConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     EncoderConfig
		wantErr string
	}{
		{name: "valid", cfg: EncoderConfig{SampleRate: 16000, Channels: 1}},
		{name: "zero rate", cfg: EncoderConfig{Channels: 1}, wantErr: "sample rate must be positive"},
		{name: "stereo", cfg: EncoderConfig{SampleRate: 16000, Channels: 2}, wantErr: "only mono"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEncodeMP3(t *testing.T) {
	var buf bytes.Buffer
	err := EncodeMP3(&buf, sine(CaptureSampleRate, 0.5), EncoderConfig{SampleRate: CaptureSampleRate, Channels: 1})
	require.NoError(t, err)
	assert.NotZero(t, buf.Len())

	data, err := EncodeMP3Bytes(sine(CaptureSampleRate, 0.5), EncoderConfig{})
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestEncodeMP3_InvalidConfig(t *testing.T) {
	_, err := EncodeMP3Bytes(sine(CaptureSampleRate, 0.1), EncoderConfig{SampleRate: CaptureSampleRate, Channels: 2})
	require.Error(t, err)
}
