package llmprovider

import "context"

// Provider is one text-generation backend.
type Provider interface {
	GenerateContent(ctx context.Context, req *Request) (*Response, error)
	Name() string
	Model() string
}

// Request is a provider-neutral generation request.
type Request struct {
	SystemInstruction *Message
	Messages          []Message
	Temperature       float64
	MaxTokens         int
	// JSONOutput asks providers that support it for a JSON object reply.
	JSONOutput bool
}

// Message is one conversation turn.
type Message struct {
	Role  string // "user", "assistant", "system"
	Parts []Part
}

type Part struct {
	Text string
}

// Text joins the text parts of m.
func (m Message) Text() string {
	out := ""
	for _, p := range m.Parts {
		out += p.Text
	}
	return out
}

// Response is a provider-neutral generation response.
type Response struct {
	Content      Message
	ProviderName string
	ModelName    string
	Usage        *Usage
}

type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
