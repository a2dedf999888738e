package llm

import (
	"strings"

	"travelguide/config"
)

type providerDefaults struct {
	baseURL  string
	model    string
	sttModel string // empty when the provider has no transcription endpoint
}

var knownProviders = map[string]providerDefaults{
	"groq":     {baseURL: "https://api.groq.com/openai/v1", model: "llama-3.3-70b-versatile", sttModel: "whisper-large-v3"},
	"openai":   {baseURL: "https://api.openai.com/v1", model: "gpt-4o-mini", sttModel: "whisper-1"},
	"deepseek": {baseURL: "https://api.deepseek.com", model: "deepseek-chat"},
}

func defaultsFor(provider string) providerDefaults {
	if d, ok := knownProviders[strings.ToLower(provider)]; ok {
		return d
	}
	return knownProviders["groq"]
}

// BaseURL returns LLM_API_URL, or the provider's default endpoint.
func BaseURL(cfg config.LLMConfig) string {
	if cfg.APIURL != "" {
		return cfg.APIURL
	}
	return defaultsFor(cfg.Provider).baseURL
}

// ModelName returns LLM_MODEL_NAME, or the provider's default chat model.
func ModelName(cfg config.LLMConfig) string {
	if cfg.ModelName != "" {
		return cfg.ModelName
	}
	return defaultsFor(cfg.Provider).model
}

// TranscriptionDefaults returns the speech-to-text endpoint and model used
// when STT_API_URL / STT_MODEL_NAME are unset. Providers without a
// transcription endpoint fall back to Groq.
func TranscriptionDefaults(cfg config.LLMConfig) (baseURL, model string) {
	d := defaultsFor(cfg.Provider)
	if d.sttModel == "" {
		g := knownProviders["groq"]
		return g.baseURL, g.sttModel
	}
	if cfg.APIURL != "" {
		return cfg.APIURL, d.sttModel
	}
	return d.baseURL, d.sttModel
}

// NewProvider picks the transport named by LLM_TRANSPORT.
func NewProvider(cfg config.LLMConfig) Provider {
	if strings.EqualFold(cfg.Transport, "sdk") {
		return NewSDKProvider(cfg)
	}
	return NewOpenAIProvider(cfg)
}
