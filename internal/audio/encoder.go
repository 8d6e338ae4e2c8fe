package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	mp3encoder "github.com/braheezy/shine-mp3/pkg/mp3"
)

// EncoderConfig configures MP3 encoding of captured utterances.
type EncoderConfig struct {
	// SampleRate is the audio sample rate in Hz (default: 16000 for Whisper).
	SampleRate int

	// Channels is the number of input channels. Only mono is supported.
	Channels int
}

// Validate returns an error if the config is invalid.
func (c EncoderConfig) Validate() error {
	if c.SampleRate <= 0 {
		return errors.New("sample rate must be positive")
	}

	if c.Channels != 1 {
		return errors.New("only mono (1 channel) is supported")
	}

	return nil
}

// WithDefaults returns a config with default values applied to zero fields.
func (c EncoderConfig) WithDefaults() EncoderConfig {
	if c.SampleRate == 0 {
		c.SampleRate = CaptureSampleRate
	}

	if c.Channels == 0 {
		c.Channels = 1
	}

	return c
}

// EncodeMP3 writes mono samples to w as MP3.
func EncodeMP3(w io.Writer, samples []int16, config EncoderConfig) error {
	config = config.WithDefaults()
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid encoder config: %w", err)
	}

	if len(samples) == 0 {
		return errors.New("no samples to encode")
	}

	// shine-mp3 mis-steps through mono input, so encode as stereo with L=R
	stereo := make([]int16, len(samples)*2)
	for i, sample := range samples {
		stereo[i*2] = sample
		stereo[i*2+1] = sample
	}

	enc := mp3encoder.NewEncoder(config.SampleRate, 2)
	if err := enc.Write(w, stereo); err != nil {
		return fmt.Errorf("failed to encode audio to MP3: %w", err)
	}

	return nil
}

// EncodeMP3Bytes is EncodeMP3 into a new buffer.
func EncodeMP3Bytes(samples []int16, config EncoderConfig) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodeMP3(&buf, samples, config); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
