package aiservice

import (
	"context"
	"errors"
	"math"
	"time"
)

// ErrNoContent is returned when the model answers without any candidate text.
var ErrNoContent = errors.New("no content found in model response")

// InlineImage is binary image data passed to the model by value.
type InlineImage struct {
	MimeType string
	// Data is base64 encoded.
	Data string
}

// GenerateRequest is one structured request to a hosted model.
type GenerateRequest struct {
	// System is the persona / guardrail instruction.
	System string
	// Prompt is the rendered user message.
	Prompt string
	// Image is attached to the user message when non-nil.
	Image *InlineImage
	// Schema constrains the JSON the model returns.
	Schema *Schema
}

// Model is a hosted generative model that answers with JSON text.
type Model interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

// ModelFunc adapts a function to the Model interface.
type ModelFunc func(ctx context.Context, req GenerateRequest) (string, error)

func (f ModelFunc) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	return f(ctx, req)
}

// backoff returns the wait before retry attempt i (0-based): initial * 2^i.
func backoff(initial time.Duration, i int) time.Duration {
	return initial * time.Duration(math.Pow(2, float64(i)))
}

// sleepCtx waits for d or until ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
