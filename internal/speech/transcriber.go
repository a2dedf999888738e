package speech

import (
	"context"
	"errors"
	"fmt"
	"io"

	"travelguide/config"
	"travelguide/internal/llm"

	openai "github.com/sashabaranov/go-openai"
)

var (
	ErrNoFile        = errors.New("no file uploaded")
	ErrEmptyFile     = errors.New("empty file received")
	ErrMissingAPIKey = errors.New("speech-to-text API key is not configured")
)

// Audio is one uploaded clip.
type Audio struct {
	Name string
	Data io.Reader
	Size int64
}

// Validate rejects a missing or zero-byte clip.
func (a *Audio) Validate() error {
	if a == nil || a.Data == nil {
		return ErrNoFile
	}
	if a.Size <= 0 {
		return ErrEmptyFile
	}
	return nil
}

type Transcriber interface {
	Transcribe(ctx context.Context, audio *Audio, language string) (string, error)
}

// Whisper sends audio to an OpenAI-compatible /audio/transcriptions endpoint.
type Whisper struct {
	client   *openai.Client
	apiKey   string
	model    string
	language string
}

func NewWhisper(cfg config.SpeechConfig, llmCfg config.LLMConfig) *Whisper {
	baseURL, model := llm.TranscriptionDefaults(llmCfg)
	if cfg.APIURL != "" {
		baseURL = cfg.APIURL
	}
	if cfg.ModelName != "" {
		model = cfg.ModelName
	}
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = baseURL

	language := cfg.Language
	if language == "" {
		language = "ja"
	}

	return &Whisper{
		client:   openai.NewClientWithConfig(clientConfig),
		apiKey:   cfg.APIKey,
		model:    model,
		language: language,
	}
}

func (w *Whisper) Transcribe(ctx context.Context, audio *Audio, language string) (string, error) {
	if err := audio.Validate(); err != nil {
		return "", err
	}
	if w.apiKey == "" {
		return "", ErrMissingAPIKey
	}
	if language == "" {
		language = w.language
	}

	name := audio.Name
	if name == "" {
		name = "audio.webm"
	}

	resp, err := w.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    w.model,
		FilePath: name,
		Reader:   audio.Data,
		Language: language,
		Format:   openai.AudioResponseFormatJSON,
	})
	if err != nil {
		return "", fmt.Errorf("transcription request: %w", err)
	}
	return resp.Text, nil
}
