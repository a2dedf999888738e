package weather

import "strings"

// Category groups provider conditions the way clients pick icons and
// backgrounds.
type Category string

const (
	CategoryClear        Category = "clear"
	CategoryRain         Category = "rain"
	CategorySnow         Category = "snow"
	CategoryThunderstorm Category = "thunderstorm"
	CategoryMist         Category = "mist"
	CategoryClouds       Category = "clouds"
	CategoryDefault      Category = "default"
)

var categoryKeywords = []struct {
	category Category
	keywords []string
}{
	{CategoryClear, []string{"clear", "sunny"}},
	{CategoryRain, []string{"rain", "drizzle"}},
	{CategorySnow, []string{"snow"}},
	{CategoryThunderstorm, []string{"thunder", "storm"}},
	{CategoryMist, []string{"mist", "fog", "haze"}},
	{CategoryClouds, []string{"cloud"}},
}

// Classify maps a condition string ("Clear", "light rain", ...) to a
// Category. First match wins, in the order above.
func Classify(condition string) Category {
	lower := strings.ToLower(condition)
	for _, c := range categoryKeywords {
		for _, kw := range c.keywords {
			if strings.Contains(lower, kw) {
				return c.category
			}
		}
	}
	return CategoryDefault
}
