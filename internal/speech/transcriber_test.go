package speech

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"travelguide/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type transcriptionForm struct {
	Model    string
	Language string
	Format   string
	FileName string
	Audio    []byte
}

func newSTTServer(t *testing.T, status int, body string) (*httptest.Server, *transcriptionForm) {
	t.Helper()
	form := &transcriptionForm{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/audio/transcriptions", r.URL.Path)
		assert.Equal(t, "Bearer stt-key", r.Header.Get("Authorization"))
		if assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			form.Model = r.FormValue("model")
			form.Language = r.FormValue("language")
			form.Format = r.FormValue("response_format")
			if f, hdr, err := r.FormFile("file"); assert.NoError(t, err) {
				form.FileName = hdr.Filename
				form.Audio, _ = io.ReadAll(f)
				f.Close()
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, form
}

func TestTranscribe(t *testing.T) {
	srv, form := newSTTServer(t, http.StatusOK, `{"text":"京都の天気は？"}`)
	w := NewWhisper(config.SpeechConfig{APIKey: "stt-key", APIURL: srv.URL}, config.LLMConfig{})

	clip := []byte("fake-webm-bytes")
	text, err := w.Transcribe(context.Background(), &Audio{Name: "rec.webm", Data: bytes.NewReader(clip), Size: int64(len(clip))}, "")
	require.NoError(t, err)

	assert.Equal(t, "京都の天気は？", text)
	assert.Equal(t, "whisper-large-v3", form.Model)
	assert.Equal(t, "ja", form.Language, "falls back to the configured default")
	assert.Equal(t, "json", form.Format)
	assert.Equal(t, "rec.webm", form.FileName)
	assert.Equal(t, clip, form.Audio)
}

func TestTranscribeLanguageOverride(t *testing.T) {
	srv, form := newSTTServer(t, http.StatusOK, `{"text":"hello"}`)
	w := NewWhisper(config.SpeechConfig{APIKey: "stt-key", APIURL: srv.URL, ModelName: "whisper-1", Language: "ja"}, config.LLMConfig{})

	_, err := w.Transcribe(context.Background(), &Audio{Data: bytes.NewReader([]byte("x")), Size: 1}, "en")
	require.NoError(t, err)
	assert.Equal(t, "en", form.Language)
	assert.Equal(t, "whisper-1", form.Model)
}

func TestTranscribeErrors(t *testing.T) {
	w := NewWhisper(config.SpeechConfig{APIKey: "stt-key", APIURL: "http://127.0.0.1:1"}, config.LLMConfig{})

	_, err := w.Transcribe(context.Background(), nil, "ja")
	assert.True(t, errors.Is(err, ErrNoFile))

	_, err = w.Transcribe(context.Background(), &Audio{Data: bytes.NewReader(nil), Size: 0}, "ja")
	assert.True(t, errors.Is(err, ErrEmptyFile))

	noKey := NewWhisper(config.SpeechConfig{}, config.LLMConfig{})
	_, err = noKey.Transcribe(context.Background(), &Audio{Data: bytes.NewReader([]byte("x")), Size: 1}, "ja")
	assert.True(t, errors.Is(err, ErrMissingAPIKey))

	srv, _ := newSTTServer(t, http.StatusInternalServerError, `{"error":{"message":"model overloaded"}}`)
	failing := NewWhisper(config.SpeechConfig{APIKey: "stt-key", APIURL: srv.URL}, config.LLMConfig{})
	_, err = failing.Transcribe(context.Background(), &Audio{Data: bytes.NewReader([]byte("x")), Size: 1}, "ja")
	require.Error(t, err)
}

func TestTranscribeProviderDefaultModel(t *testing.T) {
	srv, form := newSTTServer(t, http.StatusOK, `{"text":"hello"}`)
	w := NewWhisper(config.SpeechConfig{APIKey: "stt-key"}, config.LLMConfig{Provider: "openai", APIURL: srv.URL})

	_, err := w.Transcribe(context.Background(), &Audio{Data: bytes.NewReader([]byte("x")), Size: 1}, "en")
	require.NoError(t, err)
	assert.Equal(t, "whisper-1", form.Model, "model follows the LLM provider when STT_MODEL_NAME is unset")
}
