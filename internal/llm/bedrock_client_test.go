package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

type stubConverseAPI struct {
	input  *bedrockruntime.ConverseInput
	output *bedrockruntime.ConverseOutput
	err    error
}

func (s *stubConverseAPI) Converse(_ context.Context, params *bedrockruntime.ConverseInput, _ ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error) {
	s.input = params
	return s.output, s.err
}

func converseReply(text string) *bedrockruntime.ConverseOutput {
	return &bedrockruntime.ConverseOutput{
		Output: &brtypes.ConverseOutputMemberMessage{
			Value: brtypes.Message{
				Role: brtypes.ConversationRoleAssistant,
				Content: []brtypes.ContentBlock{
					&brtypes.ContentBlockMemberText{Value: text},
				},
			},
		},
		StopReason: brtypes.StopReasonEndTurn,
	}
}

func TestBedrockCompleteMapsRolesAndSystem(t *testing.T) {
	api := &stubConverseAPI{output: converseReply("ok ok sir")}
	client := NewBedrockClient(api, "model-x")

	resp, err := client.Complete(context.Background(), Request{
		System: []string{"stay in character"},
		Messages: []ChatMessage{
			{Role: ChatRoleUser, Content: "send the otp"},
			{Role: ChatRoleAssistant, Content: "which otp?"},
			{Role: ChatRoleUser, Content: "the one on your phone"},
		},
		MaxTokens:   60,
		Temperature: 0.3,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text != "ok ok sir" {
		t.Fatalf("unexpected text %q", resp.Text)
	}
	if resp.StopReason != string(brtypes.StopReasonEndTurn) {
		t.Fatalf("unexpected stop reason %q", resp.StopReason)
	}

	if api.input == nil || *api.input.ModelId != "model-x" {
		t.Fatalf("model id not forwarded: %+v", api.input)
	}
	if len(api.input.System) != 1 {
		t.Fatalf("expected 1 system block, got %d", len(api.input.System))
	}
	if len(api.input.Messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(api.input.Messages))
	}
	if api.input.Messages[1].Role != brtypes.ConversationRoleAssistant {
		t.Fatalf("assistant role lost: %v", api.input.Messages[1].Role)
	}
	if api.input.InferenceConfig == nil || *api.input.InferenceConfig.MaxTokens != 60 {
		t.Fatalf("inference config not forwarded: %+v", api.input.InferenceConfig)
	}
}

func TestBedrockCompletePropagatesErrors(t *testing.T) {
	api := &stubConverseAPI{err: errors.New("throttled")}
	client := NewBedrockClient(api, "model-x")

	_, err := client.Complete(context.Background(), Request{
		Messages: []ChatMessage{{Role: ChatRoleUser, Content: "hello"}},
	})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestBedrockCompleteRejectsEmptyResponse(t *testing.T) {
	api := &stubConverseAPI{output: &bedrockruntime.ConverseOutput{}}
	client := NewBedrockClient(api, "model-x")

	_, err := client.Complete(context.Background(), Request{
		Messages: []ChatMessage{{Role: ChatRoleUser, Content: "hello"}},
	})
	if err == nil {
		t.Fatal("expected error for missing message output")
	}
}

func TestBedrockCompleteRequiresModelID(t *testing.T) {
	api := &stubConverseAPI{output: converseReply("hi")}
	client := NewBedrockClient(api, "")

	_, err := client.Complete(context.Background(), Request{
		Messages: []ChatMessage{{Role: ChatRoleUser, Content: "hello"}},
	})
	if err == nil {
		t.Fatal("expected error for missing model id")
	}
}
