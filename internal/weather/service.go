package weather

import (
	"context"
	"errors"
)

// ErrMissingAPIKey is the only error a Service returns. Upstream failures are
// logged by the implementation and reported as a failed Outcome.
var ErrMissingAPIKey = errors.New("OpenWeather API key missing")

// Service looks up the current weather for a city.
type Service interface {
	Fetch(ctx context.Context, city string, lang string) (Outcome, error)
}

// Summary is the compact projection of a provider response that is handed to
// the model as a tool result.
type Summary struct {
	Location    string  `json:"location"`
	Temperature float64 `json:"temperature"` // °C
	FeelsLike   float64 `json:"feels_like"`
	Description string  `json:"description"`
	Humidity    int     `json:"humidity"` // %
	WindSpeed   float64 `json:"wind_speed"`
	Clouds      int     `json:"clouds"`     // %
	Visibility  int     `json:"visibility"` // m
	Condition   string  `json:"condition,omitempty"`
}

type Outcome struct {
	Summary *Summary
}

func (o Outcome) OK() bool {
	return o.Summary != nil
}

func Success(s *Summary) Outcome {
	return Outcome{Summary: s}
}

func Failure() Outcome {
	return Outcome{}
}
