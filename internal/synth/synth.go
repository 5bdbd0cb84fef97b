// Package synth implements the Natural-Language Synthesizer (spec
// §4.C11): it builds a prompt from an Analysis Record, invokes the AI
// oracle, and parses a strict JSON reply, falling back to a deterministic
// template on any oracle or parse failure. Grounded on the teacher's
// internal/perception/transducer_llm.go parseResponse/extractJSON shape.
package synth

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"suncc/internal/logging"
	"suncc/internal/model"
	"suncc/internal/oracle"
)

// reply is the strict shape expected from the oracle. Unknown fields are
// ignored by encoding/json; a missing Description triggers the fallback.
type reply struct {
	Description string `json:"description"`
}

// Synthesize builds a prompt from a, calls o, and merges the parsed
// description into a's NaturalLanguageDescription. It never returns an
// error: any oracle or parse failure degrades to the deterministic
// template (spec §4.C11 "must never throw to the caller").
func Synthesize(ctx context.Context, o oracle.Oracle, a model.Analysis, log *logging.Logger) model.Analysis {
	log = log.With(logging.CategorySynth)

	req := oracle.Request{
		Prompt:         buildPrompt(a),
		TargetLanguage: a.Language,
		MaxTokens:      512,
		Temperature:    0.3,
		TopP:           0.9,
	}

	resp, err := o.Complete(ctx, req)
	if err != nil {
		log.Warn("oracle failed, using deterministic fallback")
		a.NaturalLanguageDescription = fallback(a)
		return a
	}

	parsed, ok := parseReply(resp.Code)
	if !ok {
		log.Warn("oracle reply failed strict parse, using deterministic fallback")
		a.NaturalLanguageDescription = fallback(a)
		return a
	}

	a.NaturalLanguageDescription = parsed.Description
	return a
}

func buildPrompt(a model.Analysis) string {
	var sb strings.Builder
	sb.WriteString("Describe this ")
	sb.WriteString(a.Language)
	sb.WriteString(" module in one paragraph of plain language.\n")
	fmt.Fprintf(&sb, "Functions: %d, Classes: %d, Dependencies: %d.\n", len(a.Functions), len(a.Classes), len(a.Dependencies))
	sb.WriteString(`Reply as JSON: {"description": "..."}`)
	return sb.String()
}

// parseReply extracts the first balanced JSON object from text (handling
// markdown-fenced replies) and strictly decodes it.
func parseReply(text string) (reply, bool) {
	jsonStr := extractJSON(text)
	if jsonStr == "" {
		return reply{}, false
	}

	var r reply
	if err := json.Unmarshal([]byte(jsonStr), &r); err != nil {
		return reply{}, false
	}
	if strings.TrimSpace(r.Description) == "" {
		return reply{}, false
	}
	return r, true
}

func extractJSON(text string) string {
	start := strings.Index(text, "{")
	if start == -1 {
		return ""
	}
	depth := 0
	for i := start; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}

// fallback produces the deterministic template from spec §4.C11.
func fallback(a model.Analysis) string {
	return fmt.Sprintf(
		"This %s module contains %d function(s) and %d class(es). It depends on %d external module(s).",
		a.Language, len(a.Functions), len(a.Classes), len(a.Dependencies),
	)
}
