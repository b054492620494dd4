package ai

import (
	"context"
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIChatProvider speaks the older chat-completions API, for deployments
// pointed at OpenAI-compatible gateways that do not serve /responses.
type OpenAIChatProvider struct {
	client *openai.Client
	model  string
}

func NewOpenAIChatProvider(baseURL, apiKey, model string) *OpenAIChatProvider {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAIChatProvider{client: openai.NewClientWithConfig(cfg), model: model}
}

func (p *OpenAIChatProvider) Generate(ctx context.Context, prior []Message, userMessage string) (Result, error) {
	if p.client == nil {
		return Result{}, &GenerationError{Cause: errors.New("openai-chat: client not configured")}
	}

	msgs := contextMessages(prior, userMessage)
	oaMsgs := make([]openai.ChatCompletionMessage, 0, len(msgs))
	for _, m := range msgs {
		oaMsgs = append(oaMsgs, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.model,
		Messages:    oaMsgs,
		Temperature: 0.7,
	})
	if err != nil {
		return Result{}, &GenerationError{Cause: err}
	}
	if len(resp.Choices) == 0 {
		return Result{}, &GenerationError{Cause: errors.New("openai-chat: no choices returned")}
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return Result{}, &GenerationError{Cause: errors.New("openai-chat: empty completion")}
	}
	return Result{Text: text, TokensUsed: resp.Usage.TotalTokens}, nil
}
