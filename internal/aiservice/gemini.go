package aiservice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// --- Gemini API Configuration ---
const (
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultBackoff       = 1 * time.Second
	structuredMimeType   = "application/json"
)

// --- Structs for Gemini API Request/Response ---

type geminiPayload struct {
	Contents          []geminiContent   `json:"contents"`
	SystemInstruction *geminiContent    `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generationConfig struct {
	ResponseMimeType string  `json:"responseMimeType"`
	ResponseSchema   *Schema `json:"responseSchema,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// GeminiConfig configures a GeminiClient.
type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	// Timeout bounds each HTTP attempt.
	Timeout time.Duration
	// MaxAttempts is the number of tries on transport errors, 429 and 5xx.
	MaxAttempts int
	// InitialBackoff is doubled after every failed attempt.
	InitialBackoff time.Duration
}

// GeminiClient calls the Gemini generateContent REST endpoint with structured output.
type GeminiClient struct {
	cfg        GeminiConfig
	httpClient *http.Client
}

// NewGeminiClient fills defaults and returns a ready client.
func NewGeminiClient(cfg GeminiConfig) *GeminiClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultGeminiBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = defaultBackoff
	}
	return &GeminiClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// endpoint carries no credentials; the key travels in the x-goog-api-key header.
func (g *GeminiClient) endpoint() string {
	return fmt.Sprintf("%s/models/%s:generateContent", strings.TrimRight(g.cfg.BaseURL, "/"), g.cfg.Model)
}

// Generate sends one structured request and returns the raw JSON text of the first candidate.
func (g *GeminiClient) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	logger := log.Ctx(ctx)

	// Build the payload
	parts := []geminiPart{{Text: req.Prompt}}
	if req.Image != nil {
		parts = append(parts, geminiPart{InlineData: &inlineData{
			MimeType: req.Image.MimeType,
			Data:     req.Image.Data,
		}})
	}

	payload := geminiPayload{
		Contents: []geminiContent{{Role: "user", Parts: parts}},
		GenerationConfig: &generationConfig{
			ResponseMimeType: structuredMimeType,
			ResponseSchema:   req.Schema,
		},
	}
	if req.System != "" {
		payload.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: req.System}}}
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal payload: %w", err)
	}

	var lastErr error
	for i := 0; i < g.cfg.MaxAttempts; i++ {
		if i > 0 {
			if err := sleepCtx(ctx, backoff(g.cfg.InitialBackoff, i-1)); err != nil {
				return "", fmt.Errorf("gemini call cancelled: %w", err)
			}
		}

		logger.Debug().Int("attempt", i+1).Str("model", g.cfg.Model).Msg("Calling Gemini API")

		text, retry, err := g.do(ctx, payloadBytes)
		if err == nil {
			return text, nil
		}
		lastErr = err
		logger.Warn().Err(err).Int("attempt", i+1).Msg("Gemini attempt failed")
		if !retry {
			return "", err
		}
	}

	return "", fmt.Errorf("failed to call Gemini API after %d attempts: %w", g.cfg.MaxAttempts, lastErr)
}

// do performs one HTTP attempt. retry reports whether the failure is transient.
func (g *GeminiClient) do(ctx context.Context, body []byte) (text string, retry bool, err error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint(), bytes.NewReader(body))
	if err != nil {
		return "", false, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", g.cfg.APIKey)

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		// Drop the request URL from the message; the caller may show it to users.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return "", ctx.Err() == nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		transient := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return "", transient, fmt.Errorf("API returned non-200 status: %s, Body: %s", resp.Status, string(errBody))
	}

	var geminiResp geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&geminiResp); err != nil {
		return "", false, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(geminiResp.Candidates) > 0 && len(geminiResp.Candidates[0].Content.Parts) > 0 {
		return geminiResp.Candidates[0].Content.Parts[0].Text, false, nil
	}
	return "", false, ErrNoContent
}
