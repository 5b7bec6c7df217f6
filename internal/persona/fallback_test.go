package persona

import (
	"strings"
	"testing"
)

func TestClassifyBuckets(t *testing.T) {
	tests := []struct {
		text string
		want Bucket
	}{
		{"send to my UPI id now", BucketUPI},
		{"share your bank account and IFSC", BucketBank},
		{"click http://evil.example/verify", BucketLink},
		{"tell me the OTP you received", BucketOTP},
		{"you won prize money of 5 lakh", BucketMoney},
		{"hurry up you idiot", BucketAnger},
		{"hello ji, good morning", BucketDefault},
		{"", BucketDefault},
	}

	for _, tt := range tests {
		if got := Classify(tt.text); got != tt.want {
			t.Errorf("Classify(%q) = %s, want %s", tt.text, got, tt.want)
		}
	}
}

func TestClassifyAngerOutranksTopical(t *testing.T) {
	// A hostile message that also mentions a payment app must de-escalate first.
	if got := Classify("hurry up and send to my gpay, stupid"); got != BucketAnger {
		t.Fatalf("expected anger bucket, got %s", got)
	}
}

func TestFallbackReturnsTemplateFromBucket(t *testing.T) {
	reply := Fallback("my gpay upi is merchant@okicici")
	found := false
	for _, tmpl := range Templates(BucketUPI) {
		if reply == tmpl {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("reply %q is not a upi-bucket template", reply)
	}
}

func TestFallbackNeverEmpty(t *testing.T) {
	inputs := []string{"", "random text", "bank otp link", strings.Repeat("x", 10000)}
	for _, text := range inputs {
		for i := 0; i < 20; i++ {
			if Fallback(text) == "" {
				t.Fatalf("empty fallback for %q", text)
			}
		}
	}
}

func TestSystemPromptShape(t *testing.T) {
	prompt := SystemPrompt()
	for _, fragment := range []string{"naive", "under 15 words", "Never mention scam"} {
		if !strings.Contains(prompt, fragment) {
			t.Errorf("system prompt missing %q", fragment)
		}
	}
}
