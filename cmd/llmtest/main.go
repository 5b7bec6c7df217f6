// Command llmtest exercises the configured reply providers with a canned
// scam conversation, so credentials and model IDs can be verified without
// standing up the full service.
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	appconfig "github.com/scamtrap-ai/scamtrap/internal/config"
	"github.com/scamtrap-ai/scamtrap/internal/llm"
	"github.com/scamtrap-ai/scamtrap/internal/persona"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	cfg := appconfig.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	req := llm.Request{
		System: []string{persona.SystemPrompt()},
		Messages: []llm.ChatMessage{
			{Role: llm.ChatRoleUser, Content: "Sir your SBI account will be blocked today. Share your OTP to keep it active."},
			{Role: llm.ChatRoleAssistant, Content: "Oh no, blocked? I do not understand these things."},
			{Role: llm.ChatRoleUser, Content: "Just send the 6 digit code I sent to your phone. Do it fast."},
		},
		MaxTokens:   cfg.MaxReplyTokens,
		Temperature: cfg.Temperature,
	}

	fmt.Println("Reply Provider Test")
	fmt.Println("-------------------")

	if len(cfg.GroqAPIKeys) == 0 {
		fmt.Println("[groq] skipped, GROQ_API_KEYS not set")
	} else {
		client, err := llm.NewGroqClient(cfg.GroqAPIKeys[0], cfg.GroqModel)
		if err != nil {
			fmt.Printf("[groq] client error: %v\n", err)
		} else {
			runProbe(ctx, "groq", client, req)
		}
	}

	if len(cfg.GeminiAPIKeys) == 0 {
		fmt.Println("[gemini] skipped, GEMINI_API_KEYS not set")
	} else {
		client, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKeys[0], cfg.GeminiModel)
		if err != nil {
			fmt.Printf("[gemini] client error: %v\n", err)
		} else {
			runProbe(ctx, "gemini", client, req)
		}
	}

	fmt.Println()
	fmt.Printf("scripted fallback sample: %q\n", persona.Fallback("share your otp fast"))
}

func runProbe(ctx context.Context, name string, client llm.Client, req llm.Request) {
	start := time.Now()
	resp, err := client.Complete(ctx, req)
	elapsed := time.Since(start).Round(time.Millisecond)
	if err != nil {
		fmt.Printf("[%s] error after %v: %v\n", name, elapsed, err)
		return
	}
	fmt.Printf("[%s] ok in %v (stop=%s)\n", name, elapsed, resp.StopReason)
	fmt.Printf("[%s] reply: %s\n", name, resp.Text)
}
