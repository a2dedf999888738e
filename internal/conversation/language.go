package conversation

import (
	"strings"
)

// Language is a reply language preference.
type Language string

const (
	English  Language = "English"
	Japanese Language = "Japanese"
)

// DefaultLanguage is used when the caller sends no preference.
const DefaultLanguage = Japanese

// ParseLanguage accepts "English"/"Japanese" or "en"/"ja" in any case.
// Anything else falls back to def.
func ParseLanguage(s string, def Language) Language {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "en", "english":
		return English
	case "ja", "jp", "japanese":
		return Japanese
	}
	return def
}

func (l Language) Name() string {
	return string(l)
}

// Code returns the ISO 639-1 code.
func (l Language) Code() string {
	if l == English {
		return "en"
	}
	return "ja"
}

var greetings = map[Language]string{
	English:  "Hello! I'm your travel assistant. Ask me about weather or trips in Japan.",
	Japanese: "こんにちは！旅行アシスタントです。日本の天気や旅行プランについて聞いてください。",
}

var suggestions = map[Language][]string{
	English: {
		"Is it good for hiking in Tokyo?",
		"Weather in Kyoto today?",
		"Best food in Osaka?",
		"Day trip to Mt. Fuji?",
		"Indoor activities in rainy Tokyo?",
	},
	Japanese: {
		"東京でハイキングはできますか？",
		"今日の京都の天気は？",
		"大阪のおすすめグルメは？",
		"富士山への日帰り旅行？",
		"雨の東京でできる屋内アクティビティ？",
	},
}

// Greeting is the opening assistant message a client shows before the first
// user turn.
func Greeting(lang Language) string {
	return greetings[lang]
}

// Suggestions returns a copy of the suggested questions for lang.
func Suggestions(lang Language) []string {
	out := make([]string, len(suggestions[lang]))
	copy(out, suggestions[lang])
	return out
}

// StripGreeting drops a leading assistant turn that is one of the canned
// greetings. Clients echo it back as part of the history but the model never
// produced it.
func StripGreeting(history []Turn) []Turn {
	if len(history) == 0 {
		return history
	}
	first, ok := history[0].(AssistantTurn)
	if !ok {
		return history
	}
	for _, g := range greetings {
		if first.Content == g {
			return history[1:]
		}
	}
	return history
}
