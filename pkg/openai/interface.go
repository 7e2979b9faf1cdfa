package openai

import "context"

// IClient is a chat completion client for any OpenAI-compatible endpoint.
type IClient interface {
	GenerateContent(ctx context.Context, req *Request) (*Response, error)
	Model() string
}
