package speech

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/alkime/dictator/internal/audio"
	"github.com/alkime/dictator/internal/dictation"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// ErrMissingAPIKey is returned when no OpenAI key is configured.
var ErrMissingAPIKey = errors.New("API key required: set DICTATOR_OPENAI_API_KEY or run `dictator config set-key`")

// DefaultVoice is the OpenAI voice used when none is configured.
const DefaultVoice = "alloy"

// OpenAI wraps the text-to-speech and Whisper endpoints.
type OpenAI struct {
	client openai.Client
	voice  string
	speed  float64
}

// NewOpenAI creates a client. opts are passed to the SDK, which tests use
// to point it at a local server.
func NewOpenAI(apiKey, voice string, speed float64, opts ...option.RequestOption) (*OpenAI, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if voice == "" {
		voice = DefaultVoice
	}
	if speed <= 0 {
		speed = 1
	}

	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)

	return &OpenAI{client: openai.NewClient(opts...), voice: voice, speed: speed}, nil
}

// Synthesize returns raw 24kHz mono s16le PCM for text. The caller closes
// the stream.
func (o *OpenAI) Synthesize(ctx context.Context, text string) (io.ReadCloser, error) {
	params := openai.AudioSpeechNewParams{
		Input:          text,
		Model:          openai.SpeechModelTTS1,
		Voice:          openai.AudioSpeechNewParamsVoice(o.voice),
		Speed:          openai.Float(o.speed),
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormatPCM,
	}

	resp, err := o.client.Audio.Speech.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to synthesize speech: %w", err)
	}

	return resp.Body, nil
}

// Transcribe sends an MP3 utterance to Whisper. locale is a BCP 47 tag
// such as en-US.
func (o *OpenAI) Transcribe(ctx context.Context, mp3 io.Reader, locale string) (string, error) {
	params := openai.AudioTranscriptionNewParams{
		File:  openai.File(mp3, "utterance.mp3", "audio/mpeg"),
		Model: openai.AudioModelWhisper1,
	}
	if lang := language(locale); lang != "" {
		params.Language = openai.String(lang)
	}

	resp, err := o.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("failed to create transcription via Whisper API: %w", err)
	}

	return strings.TrimSpace(resp.Text), nil
}

// language reduces a locale to the ISO 639-1 code Whisper expects.
func language(locale string) string {
	lang, _, _ := strings.Cut(locale, "-")
	return strings.ToLower(lang)
}

// classify maps a transcription failure to an input error kind.
func classify(err error) dictation.ErrorKind {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return dictation.ErrorPermission
		case http.StatusTooManyRequests:
			return dictation.ErrorBusy
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return dictation.ErrorTimeout
	}

	return dictation.ErrorRecognitionFailed
}

// Player plays a PCM stream until it ends or ctx is cancelled.
type Player interface {
	Play(ctx context.Context, r io.Reader) error
}

var _ Player = (*audio.Player)(nil)

// Synthesizer turns text into a PCM stream.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (io.ReadCloser, error)
}

// SynthVoice speaks by synthesizing remotely and playing locally.
type SynthVoice struct {
	synth  Synthesizer
	player Player
}

func NewSynthVoice(synth Synthesizer, player Player) *SynthVoice {
	return &SynthVoice{synth: synth, player: player}
}

func (v *SynthVoice) Say(ctx context.Context, text string) error {
	stream, err := v.synth.Synthesize(ctx, text)
	if err != nil {
		return err
	}
	defer stream.Close()

	return v.player.Play(ctx, stream)
}
