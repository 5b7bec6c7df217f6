package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// groqBaseURL is Groq's OpenAI-compatible endpoint.
const groqBaseURL = "https://api.groq.com/openai/v1"

// GroqClient implements Client against Groq's OpenAI-compatible chat API.
type GroqClient struct {
	client  *openai.Client
	modelID string
}

// NewGroqClient creates a Groq client for one API key.
func NewGroqClient(apiKey, modelID string) (*GroqClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("llm: groq api key is required")
	}
	if strings.TrimSpace(modelID) == "" {
		modelID = "llama-3.1-8b-instant"
	}

	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = groqBaseURL

	return &GroqClient{
		client:  openai.NewClientWithConfig(cfg),
		modelID: modelID,
	}, nil
}

// Complete sends a chat completion request to Groq.
func (c *GroqClient) Complete(ctx context.Context, req Request) (Response, error) {
	model := req.Model
	if strings.TrimSpace(model) == "" {
		model = c.modelID
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(req.System)+len(req.Messages))
	for _, system := range req.System {
		if strings.TrimSpace(system) == "" {
			continue
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}
	for _, msg := range req.Messages {
		content := strings.TrimSpace(msg.Content)
		if content == "" {
			continue
		}
		role := openai.ChatMessageRoleUser
		switch msg.Role {
		case ChatRoleSystem:
			role = openai.ChatMessageRoleSystem
		case ChatRoleAssistant:
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: content})
	}
	if len(messages) == 0 {
		return Response{}, errors.New("llm: groq requires at least one message")
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   int(req.MaxTokens),
		Temperature: req.Temperature,
	})
	if err != nil {
		return Response{}, fmt.Errorf("llm: groq completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Response{}, errors.New("llm: groq returned no choices")
	}

	choice := resp.Choices[0]
	text := strings.TrimSpace(choice.Message.Content)
	if text == "" {
		return Response{}, errors.New("llm: groq returned empty content")
	}

	return Response{
		Text:       text,
		StopReason: string(choice.FinishReason),
	}, nil
}
