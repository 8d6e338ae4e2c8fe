package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alkime/dictator/internal/dictation"
	"github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOpenAI(t *testing.T, handler http.Handler) *OpenAI {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewOpenAI("sk-test", "", 0, option.WithBaseURL(srv.URL+"/v1/"), option.WithMaxRetries(0))
	require.NoError(t, err)

	return client
}

func TestNewOpenAI_RequiresKey(t *testing.T) {
	_, err := NewOpenAI("", "alloy", 1)
	require.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestOpenAI_Synthesize(t *testing.T) {
	pcm := []byte{1, 0, 2, 0, 3, 0}

	client := newTestOpenAI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/audio/speech", r.URL.Path)

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Breathe in", body["input"])
		assert.Equal(t, "tts-1", body["model"])
		assert.Equal(t, DefaultVoice, body["voice"])
		assert.Equal(t, "pcm", body["response_format"])

		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write(pcm)
	}))

	stream, err := client.Synthesize(context.Background(), "Breathe in")
	require.NoError(t, err)
	defer stream.Close()

	got, err := io.ReadAll(stream)
	require.NoError(t, err)
	assert.Equal(t, pcm, got)
}

func TestOpenAI_Transcribe(t *testing.T) {
	client := newTestOpenAI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/audio/transcriptions", r.URL.Path)
		assert.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "whisper-1", r.FormValue("model"))
		assert.Equal(t, "en", r.FormValue("language"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text":"  repeat  "}`))
	}))

	text, err := client.Transcribe(context.Background(), bytes.NewReader([]byte("mp3")), "en-US")
	require.NoError(t, err)
	assert.Equal(t, "repeat", text)
}

func TestOpenAI_ClassifiesErrors(t *testing.T) {
	tests := []struct {
		status int
		want   dictation.ErrorKind
	}{
		{http.StatusUnauthorized, dictation.ErrorPermission},
		{http.StatusTooManyRequests, dictation.ErrorBusy},
		{http.StatusInternalServerError, dictation.ErrorRecognitionFailed},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			client := newTestOpenAI(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"error":{"message":"nope"}}`))
			}))

			_, err := client.Transcribe(context.Background(), bytes.NewReader([]byte("mp3")), "en-US")
			require.Error(t, err)
			assert.Equal(t, tt.want, classify(err))
		})
	}
}

func TestLanguage(t *testing.T) {
	assert.Equal(t, "en", language("en-US"))
	assert.Equal(t, "de", language("DE"))
	assert.Empty(t, language(""))
}

type fakeSynth struct{ data []byte }

func (f fakeSynth) Synthesize(context.Context, string) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(f.data)), nil
}

type recordingPlayer struct{ got []byte }

func (p *recordingPlayer) Play(_ context.Context, r io.Reader) error {
	var err error
	p.got, err = io.ReadAll(r)
	return err
}

func TestSynthVoice(t *testing.T) {
	player := &recordingPlayer{}
	voice := NewSynthVoice(fakeSynth{data: []byte{9, 9}}, player)

	require.NoError(t, voice.Say(context.Background(), "hello"))
	assert.Equal(t, []byte{9, 9}, player.got)
}
