// Package oracle defines the AI oracle boundary (spec §6) and a concrete
// implementation backed by Google's GenAI SDK, grounded on the teacher's
// internal/embedding/genai.go client-construction pattern and the
// internal/core.LLMClient interface shape.
package oracle

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"suncc/internal/errs"
	"suncc/internal/logging"
)

// Request is a single-element regeneration request (spec §6, §4.C7 step 2).
type Request struct {
	Prompt             string
	TargetLanguage     string
	MaxTokens          int32
	Temperature        float32
	TopP               float32
	FrequencyPenalty   float32
	PresencePenalty    float32
	TimeoutMS          int
}

// Usage reports token accounting for one oracle call.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Response is the oracle's reply to a Request.
type Response struct {
	Code  string
	Model string
	Usage Usage
}

// Oracle is the minimal interface every component upstream of the
// Incremental Generator and Natural-Language Synthesizer depends on.
// Mirrors the teacher's core.LLMClient shape: a single Complete method,
// context-first, explicit error return.
type Oracle interface {
	Complete(ctx context.Context, req Request) (Response, error)
}

// clampRequest enforces the bounds from spec §6 so a caller's mistake
// never reaches the wire.
func clampRequest(req Request) Request {
	if req.MaxTokens <= 0 || req.MaxTokens > 100000 {
		req.MaxTokens = 100000
	}
	if req.Temperature < 0 {
		req.Temperature = 0
	} else if req.Temperature > 2 {
		req.Temperature = 2
	}
	if req.TopP < 0 {
		req.TopP = 0
	} else if req.TopP > 1 {
		req.TopP = 1
	}
	if req.FrequencyPenalty < -2 {
		req.FrequencyPenalty = -2
	} else if req.FrequencyPenalty > 2 {
		req.FrequencyPenalty = 2
	}
	if req.PresencePenalty < -2 {
		req.PresencePenalty = -2
	} else if req.PresencePenalty > 2 {
		req.PresencePenalty = 2
	}
	return req
}

// GenAIOracle implements Oracle against Gemini via google.golang.org/genai.
type GenAIOracle struct {
	client *genai.Client
	model  string
	log    *logging.Logger
}

// NewGenAIOracle constructs a GenAIOracle. apiKey is read by the caller
// from *_API_KEY environment variables and never logged.
func NewGenAIOracle(ctx context.Context, apiKey, model string, log *logging.Logger) (*GenAIOracle, error) {
	log = log.With(logging.CategoryOracle)
	if apiKey == "" {
		return nil, errs.NewValidation("oracle api key is required", nil)
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, errs.NewOracle("failed to create genai client", err, false)
	}

	log.Info("genai oracle initialized")
	return &GenAIOracle{client: client, model: model, log: log}, nil
}

// Complete sends a single-element regeneration request and returns the
// generated code chunk. Transient failures (deadline exceeded, context
// cancellation, 5xx-shaped errors) are wrapped as retryable OracleErrors;
// everything else is fatal.
func (o *GenAIOracle) Complete(ctx context.Context, req Request) (Response, error) {
	req = clampRequest(req)

	timeout := 30 * time.Second
	if req.TimeoutMS > 0 {
		timeout = time.Duration(req.TimeoutMS) * time.Millisecond
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	temp := req.Temperature
	topP := req.TopP
	maxTokens := req.MaxTokens
	cfg := &genai.GenerateContentConfig{
		Temperature:      &temp,
		TopP:             &topP,
		MaxOutputTokens:  maxTokens,
	}

	contents := []*genai.Content{genai.NewContentFromText(req.Prompt, genai.RoleUser)}

	start := time.Now()
	result, err := o.client.Models.GenerateContent(callCtx, o.model, contents, cfg)
	latency := time.Since(start)

	if err != nil {
		retryable := callCtx.Err() != nil || isTransient(err)
		o.log.Warn("oracle call failed", zap.Error(err), zap.Duration("latency", latency))
		return Response{}, errs.NewOracle("genai generate content failed", err, retryable)
	}

	text := extractText(result)
	if text == "" {
		return Response{}, errs.NewOracle("genai returned empty response", nil, false)
	}

	usage := Usage{}
	if result.UsageMetadata != nil {
		usage.InputTokens = int(result.UsageMetadata.PromptTokenCount)
		usage.OutputTokens = int(result.UsageMetadata.CandidatesTokenCount)
	}

	return Response{Code: text, Model: o.model, Usage: usage}, nil
}

func extractText(result *genai.GenerateContentResponse) string {
	if result == nil || len(result.Candidates) == 0 {
		return ""
	}
	cand := result.Candidates[0]
	if cand.Content == nil {
		return ""
	}
	text := ""
	for _, part := range cand.Content.Parts {
		text += part.Text
	}
	return text
}

// isTransient reports an error as retryable only when its text carries a
// known transient marker (deadline, timeout, unavailable, internal error,
// 503, 500, 429, reset); any other error is treated as fatal.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"deadline", "timeout", "unavailable", "internal error", "503", "500", "429", "reset"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

