package audio

import (
	"github.com/gen2brain/malgo"
)

const (
	// CaptureSampleRate is 16kHz, the native sample rate for Whisper.
	CaptureSampleRate = 16000
	// PlaybackSampleRate matches the PCM stream returned by OpenAI TTS.
	PlaybackSampleRate = 24000
)

// DeviceConfig describes the PCM format of a capture or playback device.
// Only signed 16-bit mono is produced and consumed by this package.
type DeviceConfig struct {
	Format           malgo.FormatType
	CaptureChannels  int
	PlaybackChannels int
	SampleRate       int
}

// CaptureConfig is 16kHz S16LE mono, ready for Whisper.
func CaptureConfig() DeviceConfig {
	return DeviceConfig{
		Format:          malgo.FormatS16,
		CaptureChannels: 1,
		SampleRate:      CaptureSampleRate,
	}
}

// PlaybackConfig is S16LE mono at the given rate.
func PlaybackConfig(sampleRate int) DeviceConfig {
	return DeviceConfig{
		Format:           malgo.FormatS16,
		PlaybackChannels: 1,
		SampleRate:       sampleRate,
	}
}
