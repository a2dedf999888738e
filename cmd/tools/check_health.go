package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"travelguide/config"
	"travelguide/internal/conversation"
	"travelguide/internal/llm"
	"travelguide/internal/weather"
)

func main() {
	fmt.Println("🔍 Starting Upstream Health Check...")
	fmt.Println("----------------------------------------")

	config.Init()
	cfg := config.AppConfig
	ctx := context.Background()
	failed := false

	// 1. Weather provider
	fmt.Println("\n[Weather] Checking OpenWeather...")
	ws := weather.NewOpenWeather(cfg.Weather, zap.NewNop())
	for _, city := range []string{"Tokyo", "Kyoto", "Osaka", "Sapporo"} {
		if !checkWeather(ctx, ws, city) {
			failed = true
		}
	}

	// 2. LLM provider
	fmt.Printf("\n[LLM] Checking %s (%s transport, model %s)...\n", cfg.LLM.Provider, cfg.LLM.Transport, llm.ModelName(cfg.LLM))
	if !checkLLM(ctx, llm.NewProvider(cfg.LLM)) {
		failed = true
	}

	fmt.Println("----------------------------------------")
	if failed {
		fmt.Println("❌ Health Check Completed with failures.")
		os.Exit(1)
	}
	fmt.Println("✅ Health Check Completed.")
}

func checkWeather(ctx context.Context, ws weather.Service, city string) bool {
	start := time.Now()
	out, err := ws.Fetch(ctx, city, "en")
	duration := time.Since(start)

	if err != nil {
		fmt.Printf("❌ FAIL: %-10s %v\n", city, err)
		return false
	}
	if !out.OK() {
		fmt.Printf("❌ FAIL: %-10s (took %v)\n", city, duration)
		return false
	}
	fmt.Printf("✅ PASS: %-10s (took %v)\n%s\n", city, duration, out.Summary.ToMarkdown())
	return true
}

func checkLLM(ctx context.Context, p llm.Provider) bool {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	start := time.Now()
	turns := []conversation.Turn{
		conversation.SystemTurn{Content: "Reply with the single word: pong"},
		conversation.UserTurn{Content: "ping"},
	}
	reply, err := p.Complete(ctx, turns, nil)
	duration := time.Since(start)

	if err != nil {
		fmt.Printf("❌ FAIL: chat completion - Error: %v\n", err)
		return false
	}
	fmt.Printf("✅ PASS: chat completion - %q (took %v)\n", reply.Content, duration)
	return true
}
