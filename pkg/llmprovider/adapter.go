package llmprovider

import (
	"context"
	"errors"
	"fmt"

	"weekly-scheduler/pkg/openai"
)

// OpenAIAdapter serves any OpenAI-compatible chat endpoint as a Provider.
type OpenAIAdapter struct {
	name   string
	client openai.IClient
}

func NewOpenAIAdapter(name string, client openai.IClient) *OpenAIAdapter {
	return &OpenAIAdapter{name: name, client: client}
}

func (a *OpenAIAdapter) GenerateContent(ctx context.Context, req *Request) (*Response, error) {
	oreq := &openai.Request{
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	if req.SystemInstruction != nil {
		oreq.Messages = append(oreq.Messages, openai.Message{Role: "system", Content: req.SystemInstruction.Text()})
	}
	for _, msg := range req.Messages {
		oreq.Messages = append(oreq.Messages, openai.Message{Role: msg.Role, Content: msg.Text()})
	}
	if req.JSONOutput {
		oreq.ResponseFormat = &openai.ResponseFormat{Type: "json_object"}
	}

	resp, err := a.client.GenerateContent(ctx, oreq)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && apiErr.RateLimited() {
			return nil, fmt.Errorf("%s: %w: %v", a.name, ErrProviderRateLimited, err)
		}
		return nil, fmt.Errorf("%s: %w", a.name, err)
	}

	out := &Response{
		Content:      Message{Role: "assistant"},
		ProviderName: a.name,
		ModelName:    resp.Model,
		Usage: &Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
			TotalTokens:  resp.Usage.TotalTokens,
		},
	}
	if len(resp.Choices) > 0 && resp.Choices[0].Message.Content != "" {
		out.Content.Parts = []Part{{Text: resp.Choices[0].Message.Content}}
	}
	return out, nil
}

func (a *OpenAIAdapter) Name() string  { return a.name }
func (a *OpenAIAdapter) Model() string { return a.client.Model() }
