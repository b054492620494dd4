package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// OpenAIProvider calls the OpenAI Responses API.
type OpenAIProvider struct {
	BaseURL string
	APIKey  string
	Model   string
	Client  *http.Client
}

func NewOpenAIProvider(baseURL, apiKey, model string) *OpenAIProvider {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAIProvider{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Model:   model,
		Client:  &http.Client{Timeout: 90 * time.Second},
	}
}

type openaiReqMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openaiResponsesReq struct {
	Model       string         `json:"model"`
	Input       []openaiReqMsg `json:"input"`
	Temperature float64        `json:"temperature"`
}

// The Responses API has shipped the reply in two shapes: a flat
// output_text field, and a nested output list of message content parts.
// Both are decoded so a provider-side change does not break parsing.
type openaiResponsesResp struct {
	OutputText string `json:"output_text"`
	Output     []struct {
		Type    string `json:"type"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"output"`
	Usage *struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (p *OpenAIProvider) Generate(ctx context.Context, prior []Message, userMessage string) (Result, error) {
	if p.APIKey == "" {
		return Result{}, &GenerationError{Cause: errors.New("openai: api key not configured")}
	}
	if p.Client == nil {
		return Result{}, &GenerationError{Cause: errors.New("openai: http client is nil")}
	}

	msgs := contextMessages(prior, userMessage)
	reqBody := openaiResponsesReq{
		Model:       p.Model,
		Temperature: 0.7,
		Input: func() []openaiReqMsg {
			out := make([]openaiReqMsg, 0, len(msgs))
			for _, m := range msgs {
				out = append(out, openaiReqMsg{Role: m.Role, Content: m.Content})
			}
			return out
		}(),
	}

	b, err := json.Marshal(reqBody)
	if err != nil {
		return Result{}, &GenerationError{Cause: err}
	}

	url := fmt.Sprintf("%s/responses", p.BaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return Result{}, &GenerationError{Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.APIKey)

	resp, err := p.Client.Do(req)
	if err != nil {
		return Result{}, &GenerationError{Cause: err}
	}
	defer resp.Body.Close()

	var decoded openaiResponsesResp
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return Result{}, &GenerationError{Cause: fmt.Errorf("openai: decode response: %w", err)}
	}
	if decoded.Error != nil && decoded.Error.Message != "" {
		return Result{}, &GenerationError{Cause: errors.New(decoded.Error.Message)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Result{}, &GenerationError{Cause: fmt.Errorf("openai: status %d", resp.StatusCode)}
	}

	text := decoded.OutputText
	if text == "" {
		var sb strings.Builder
		for _, out := range decoded.Output {
			if out.Type != "message" {
				continue
			}
			for _, part := range out.Content {
				if part.Type == "output_text" {
					sb.WriteString(part.Text)
				}
			}
		}
		text = sb.String()
	}
	if strings.TrimSpace(text) == "" {
		return Result{}, &GenerationError{Cause: errors.New("openai: empty completion")}
	}

	res := Result{Text: strings.TrimSpace(text)}
	if decoded.Usage != nil {
		res.TokensUsed = decoded.Usage.TotalTokens
	}
	return res, nil
}
