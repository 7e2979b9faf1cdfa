package slot

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"weekly-scheduler/internal/conflict"
	"weekly-scheduler/internal/model"
	"weekly-scheduler/pkg/llmprovider"
	"weekly-scheduler/pkg/log"
)

// Generator is the text-generation collaborator, usually *llmprovider.Manager.
type Generator interface {
	GenerateContent(ctx context.Context, req *llmprovider.Request) (*llmprovider.Response, error)
}

// LLMFinder asks a model for a slot and re-validates the answer before using it.
// Any failure falls back to the greedy search.
type LLMFinder struct {
	gen      Generator
	fallback *GreedyFinder
	schema   *gojsonschema.Schema
	timeout  time.Duration
	l        log.Logger
}

// NewLLM compiles the proposal schema and builds the finder.
func NewLLM(gen Generator, fallback *GreedyFinder, timeout time.Duration, l log.Logger) (*LLMFinder, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(proposalSchema))
	if err != nil {
		return nil, fmt.Errorf("slot: compile proposal schema: %w", err)
	}
	if timeout <= 0 {
		timeout = DefaultProposalTimeout
	}
	return &LLMFinder{gen: gen, fallback: fallback, schema: schema, timeout: timeout, l: l}, nil
}

func (f *LLMFinder) FindSlot(ctx context.Context, req Request) (model.TimeRange, error) {
	if req.DurationMinutes <= 0 {
		return model.TimeRange{}, ErrInvalidDuration
	}

	pctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	proposed, err := f.propose(pctx, req)
	if err == nil {
		err = f.validate(proposed, req)
	}
	if err != nil {
		f.l.Warnf(ctx, "slot.LLMFinder.FindSlot: falling back to greedy search: %v", err)
		return f.fallback.FindSlot(ctx, req)
	}
	return proposed, nil
}

func (f *LLMFinder) propose(ctx context.Context, req Request) (model.TimeRange, error) {
	resp, err := f.gen.GenerateContent(ctx, &llmprovider.Request{
		SystemInstruction: &llmprovider.Message{Role: "system", Parts: []llmprovider.Part{{Text: proposalInstruction}}},
		Messages:          []llmprovider.Message{{Role: "user", Parts: []llmprovider.Part{{Text: f.prompt(req)}}}},
		Temperature:       0,
		MaxTokens:         128,
		JSONOutput:        true,
	})
	if err != nil {
		return model.TimeRange{}, err
	}

	raw := extractJSONObject(resp.Content.Text())
	if raw == "" {
		return model.TimeRange{}, fmt.Errorf("%w: no JSON object in reply", ErrInvalidProposal)
	}

	result, err := f.schema.Validate(gojsonschema.NewStringLoader(raw))
	if err != nil {
		return model.TimeRange{}, fmt.Errorf("%w: %v", ErrInvalidProposal, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return model.TimeRange{}, fmt.Errorf("%w: %s", ErrInvalidProposal, strings.Join(msgs, "; "))
	}

	var p struct {
		Start model.Clock `json:"start"`
		End   model.Clock `json:"end"`
	}
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return model.TimeRange{}, fmt.Errorf("%w: %v", ErrInvalidProposal, err)
	}
	return model.TimeRange{Start: p.Start, End: p.End}, nil
}

// validate runs the proposal through the same checks a user-supplied event gets.
func (f *LLMFinder) validate(r model.TimeRange, req Request) error {
	if err := r.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidProposal, err)
	}
	if r.Minutes() != req.DurationMinutes {
		return fmt.Errorf("%w: length %d, want %d", ErrInvalidProposal, r.Minutes(), req.DurationMinutes)
	}
	if minBlock := f.fallback.opts.MinBlockMinutes; r.Minutes() < minBlock {
		return fmt.Errorf("%w: %d minutes is below the %d minute minimum block", ErrInvalidProposal, r.Minutes(), minBlock)
	}
	lo, hi := f.fallback.bounds(req)
	if !(model.TimeRange{Start: lo, End: hi}).Contains(r) {
		return fmt.Errorf("%w: %s outside %s-%s", ErrInvalidProposal, r, lo, hi)
	}

	day := model.Day{}
	for i, b := range req.Busy {
		day.Events = append(day.Events, model.Event{
			ID:    fmt.Sprintf("busy-%d", i),
			Start: b.Start.Add(-req.BufferMinutes),
			End:   b.End.Add(req.BufferMinutes),
			Kind:  model.KindFixed,
		})
	}
	if hit, ok := conflict.Detect(day, model.Event{Start: r.Start, End: r.End, Kind: model.KindSoft}); ok {
		return fmt.Errorf("%w: overlaps busy %s", ErrInvalidProposal, hit.Range())
	}
	return nil
}

func (f *LLMFinder) prompt(req Request) string {
	lo, hi := f.fallback.bounds(req)
	busy := make([]string, 0, len(req.Busy))
	for _, b := range req.Busy {
		busy = append(busy, b.String())
	}
	if len(busy) == 0 {
		busy = append(busy, "none")
	}
	return fmt.Sprintf(proposalPromptTemplate,
		req.DurationMinutes, lo, hi, strings.Join(busy, ", "), req.BufferMinutes)
}

func extractJSONObject(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}
