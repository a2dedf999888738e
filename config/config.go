package config

import (
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig  `mapstructure:",squash"`
	Feishu  FeishuConfig  `mapstructure:",squash"`
	LLM     LLMConfig     `mapstructure:",squash"`
	Speech  SpeechConfig  `mapstructure:",squash"`
	Weather WeatherConfig `mapstructure:",squash"`
}

type ServerConfig struct {
	Port             string `mapstructure:"PORT"`
	Env              string `mapstructure:"APP_ENV"`
	CORSAllowOrigins string `mapstructure:"CORS_ALLOW_ORIGINS"` // comma separated, "*" for any
	DefaultLanguage  string `mapstructure:"DEFAULT_LANGUAGE"`   // "Japanese" or "English"
}

type FeishuConfig struct {
	AppID             string `mapstructure:"FEISHU_APP_ID"`
	AppSecret         string `mapstructure:"FEISHU_APP_SECRET"`
	EncryptKey        string `mapstructure:"FEISHU_ENCRYPT_KEY"`
	VerificationToken string `mapstructure:"FEISHU_VERIFICATION_TOKEN"`
}

type LLMConfig struct {
	Provider  string `mapstructure:"LLM_PROVIDER"`  // "groq", "openai", "deepseek"
	Transport string `mapstructure:"LLM_TRANSPORT"` // "rest" or "sdk"
	APIKey    string `mapstructure:"LLM_API_KEY"`
	APIURL    string `mapstructure:"LLM_API_URL"`
	ModelName string `mapstructure:"LLM_MODEL_NAME"` // e.g. "llama-3.3-70b-versatile"
}

type SpeechConfig struct {
	APIKey    string `mapstructure:"STT_API_KEY"`
	APIURL    string `mapstructure:"STT_API_URL"`
	ModelName string `mapstructure:"STT_MODEL_NAME"`
	Language  string `mapstructure:"STT_LANGUAGE"`
}

type WeatherConfig struct {
	APIKey   string `mapstructure:"OPENWEATHER_API_KEY"`
	APIURL   string `mapstructure:"OPENWEATHER_API_URL"`
	Language string `mapstructure:"WEATHER_LANG"` // fixed code like "ja", or "auto"
}

// IsProduction reports whether APP_ENV is "production".
func (c ServerConfig) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// AllowOrigins splits CORSAllowOrigins.
func (c ServerConfig) AllowOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSAllowOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

var defaults = map[string]string{
	"PORT":                "8080",
	"APP_ENV":             "development",
	"CORS_ALLOW_ORIGINS":  "*",
	"DEFAULT_LANGUAGE":    "Japanese",
	"LLM_PROVIDER":        "groq",
	"LLM_TRANSPORT":       "rest",
	"STT_LANGUAGE":        "ja",
	"OPENWEATHER_API_URL": "https://api.openweathermap.org",
	"WEATHER_LANG":        "ja",
}

var keys = []string{
	"PORT", "APP_ENV", "CORS_ALLOW_ORIGINS", "DEFAULT_LANGUAGE",
	"FEISHU_APP_ID", "FEISHU_APP_SECRET", "FEISHU_ENCRYPT_KEY", "FEISHU_VERIFICATION_TOKEN",
	"LLM_PROVIDER", "LLM_TRANSPORT", "LLM_API_KEY", "LLM_API_URL", "LLM_MODEL_NAME",
	"STT_API_KEY", "STT_API_URL", "STT_MODEL_NAME", "STT_LANGUAGE",
	"OPENWEATHER_API_KEY", "OPENWEATHER_API_URL", "WEATHER_LANG",
}

var AppConfig *Config

// Load reads .env (if present) and the process environment. API keys are not
// checked here; a missing key fails the request that needs it.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	if err := godotenv.Load(envFiles...); err != nil {
		log.Printf("Warning: .env file not found, relying on environment variables: %v", err)
	}

	v := viper.New()
	v.AutomaticEnv()
	for _, k := range keys {
		if err := v.BindEnv(k); err != nil {
			return nil, err
		}
	}
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	// STT falls back to the LLM key.
	if cfg.Speech.APIKey == "" {
		cfg.Speech.APIKey = cfg.LLM.APIKey
	}
	return cfg, nil
}

func Init() {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("Unable to decode into struct: %v", err)
	}
	AppConfig = cfg
}
