package weather

import (
	"fmt"
)

var categoryIcons = map[Category]string{
	CategoryClear:        "☀️",
	CategoryRain:         "🌧️",
	CategorySnow:         "❄️",
	CategoryThunderstorm: "⛈️",
	CategoryMist:         "🌫️",
	CategoryClouds:       "☁️",
	CategoryDefault:      "☁️",
}

// Icon returns the emoji for a category.
func (c Category) Icon() string {
	return categoryIcons[c]
}

// ToMarkdown formats a Summary as a short card
func (s *Summary) ToMarkdown() string {
	icon := Classify(s.Condition).Icon()
	return fmt.Sprintf("%s **%s**\n-------------------\n🌡️ %.1f°C (feels like %.1f°C)\n📝 %s\n💧 Humidity: %d%% | ☁️ Clouds: %d%%\n💨 Wind: %.1f m/s | 👁️ Visibility: %d m",
		icon, s.Location,
		s.Temperature, s.FeelsLike,
		s.Description,
		s.Humidity, s.Clouds,
		s.WindSpeed, s.Visibility)
}
