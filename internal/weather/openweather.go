package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"travelguide/config"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// LangAuto makes the description follow the caller's language.
const LangAuto = "auto"

const defaultLang = "ja"

// OpenWeather implements Service on the OpenWeatherMap current-weather API.
type OpenWeather struct {
	client  *resty.Client
	apiKey  string
	baseURL string
	lang    string
	logger  *zap.Logger
}

func NewOpenWeather(cfg config.WeatherConfig, logger *zap.Logger) *OpenWeather {
	baseURL := cfg.APIURL
	if baseURL == "" {
		baseURL = "https://api.openweathermap.org"
	}
	return &OpenWeather{
		client:  resty.New(),
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		lang:    cfg.Language,
		logger:  logger,
	}
}

// openWeatherResponse is the subset of /data/2.5/weather we read.
type openWeatherResponse struct {
	Name    string `json:"name"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Main *struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Clouds struct {
		All int `json:"all"`
	} `json:"clouds"`
	Visibility int `json:"visibility"`
}

func (w *OpenWeather) Fetch(ctx context.Context, city string, lang string) (Outcome, error) {
	if w.apiKey == "" {
		w.logger.Error("Weather lookup not configured", zap.String("city", city))
		return Failure(), ErrMissingAPIKey
	}

	summary, err := w.fetch(ctx, city, w.language(lang))
	if err != nil {
		w.logger.Warn("Weather lookup failed", zap.String("city", city), zap.Error(err))
		return Failure(), nil
	}
	w.logger.Info("Weather fetched",
		zap.String("city", city),
		zap.String("location", summary.Location),
		zap.Float64("temperature", summary.Temperature))
	return Success(summary), nil
}

func (w *OpenWeather) language(preferred string) string {
	if w.lang != "" && !strings.EqualFold(w.lang, LangAuto) {
		return w.lang
	}
	if preferred != "" {
		return preferred
	}
	return defaultLang
}

func (w *OpenWeather) fetch(ctx context.Context, city, lang string) (*Summary, error) {
	resp, err := w.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":     city,
			"appid": w.apiKey,
			"units": "metric",
			"lang":  lang,
		}).
		Get(w.baseURL + "/data/2.5/weather")
	if err != nil {
		return nil, fmt.Errorf("weather request: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("weather api error: %d", resp.StatusCode())
	}

	return parseSummary(resp.Body())
}

func parseSummary(body []byte) (*Summary, error) {
	var data openWeatherResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("decode weather response: %w", err)
	}
	if data.Main == nil || len(data.Weather) == 0 || data.Name == "" {
		return nil, errors.New("incomplete weather response")
	}

	return &Summary{
		Location:    data.Name,
		Temperature: data.Main.Temp,
		FeelsLike:   data.Main.FeelsLike,
		Description: data.Weather[0].Description,
		Humidity:    data.Main.Humidity,
		WindSpeed:   data.Wind.Speed,
		Clouds:      data.Clouds.All,
		Visibility:  data.Visibility,
		Condition:   data.Weather[0].Main,
	}, nil
}
