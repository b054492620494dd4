package ai

import (
	"context"
	"fmt"
)

// SystemPrompt is prepended to every completion request.
const SystemPrompt = "You are AeroAssist, a helpful airline assistant. Help users with flight information, bookings, and travel questions."

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Result is one completed generation.
type Result struct {
	Text       string
	TokensUsed int
}

// Provider generates an assistant reply from the prior conversation plus a
// new user message in a single blocking call. Implementations are stateless
// and safe for concurrent use.
type Provider interface {
	Generate(ctx context.Context, prior []Message, userMessage string) (Result, error)
}

// GenerationError wraps any failure to obtain a completion from the
// upstream provider.
type GenerationError struct {
	Cause error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("ai: generation failed: %v", e.Cause)
}

func (e *GenerationError) Unwrap() error { return e.Cause }

// contextMessages builds the full request context: system persona, prior
// turns, then the new user message.
func contextMessages(prior []Message, userMessage string) []Message {
	out := make([]Message, 0, len(prior)+2)
	out = append(out, Message{Role: "system", Content: SystemPrompt})
	out = append(out, prior...)
	out = append(out, Message{Role: "user", Content: userMessage})
	return out
}
