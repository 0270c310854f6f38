// Package support answers help-center questions. A language model answers
// when configured, grounded with the closest FAQ entries; without a model, or
// when it fails, the FAQ index answers on its own when it is confident
// enough, and the reply is flagged for a human otherwise.
package support

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/caerus-app/caerus-backend/internal/search"
)

//go:embed faq.md
var defaultFAQ []byte

// DefaultFAQ returns the built-in FAQ entries.
func DefaultFAQ() []search.Entry {
	entries, _ := search.ParseFAQ(defaultFAQ)
	return entries
}

// Fallback copy when no grounded answer is available.
const (
	UnavailableReply = "I'm having trouble connecting right now. Would you like to contact our support team directly?"
	FailedReply      = "I'm having trouble processing your request. Would you like to contact our support team?"
)

// Reply is the assistant's answer.
type Reply struct {
	Response   string `json:"response"`
	NeedsHuman bool   `json:"needs_human"`
}

// Generator produces a completion for prompt under a system instruction.
type Generator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// Responder answers a user's message. It never fails; degraded answers set
// NeedsHuman.
type Responder interface {
	Respond(ctx context.Context, role, message string) Reply
}

// Assistant is the default Responder.
type Assistant struct {
	Model     Generator // nil disables the model
	Index     search.Index
	Threshold float64
	Timeout   time.Duration
	Log       zerolog.Logger
}

// Respond implements Responder.
func (a *Assistant) Respond(ctx context.Context, role, message string) Reply {
	message = strings.TrimSpace(message)
	var hits []search.Result
	if a.Index != nil {
		hits = a.Index.TopK(message, 3)
	}

	if a.Model == nil {
		a.Log.Debug().Msg("support model not configured, answering from faq")
		return a.fromFAQ(hits, UnavailableReply)
	}

	if a.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.Timeout)
		defer cancel()
	}
	raw, err := a.Model.Generate(ctx, SystemPrompt, buildPrompt(role, message, hits))
	if err != nil {
		a.Log.Error().Err(err).Msg("support model call failed")
		return a.fromFAQ(hits, FailedReply)
	}
	return ParseReply(raw)
}

func (a *Assistant) fromFAQ(hits []search.Result, fallback string) Reply {
	if len(hits) > 0 && hits[0].Score >= a.Threshold {
		return Reply{Response: hits[0].Entry.Answer}
	}
	return Reply{Response: fallback, NeedsHuman: true}
}

func buildPrompt(role, message string, hits []search.Result) string {
	var b strings.Builder
	if len(hits) > 0 {
		b.WriteString("Relevant help-center entries:\n")
		for _, h := range hits {
			fmt.Fprintf(&b, "Q: %s\nA: %s\n\n", h.Entry.Question, h.Entry.Answer)
		}
	}
	b.WriteString("User message: ")
	b.WriteString(message)
	if role != "" {
		b.WriteString("\n\nUser role: ")
		b.WriteString(role)
	}
	return b.String()
}

// ParseReply decodes the model's JSON answer, tolerating a markdown code
// fence. Text that is not JSON is returned as the response.
func ParseReply(raw string) Reply {
	body := stripFence(raw)
	var out struct {
		Response   *string `json:"response"`
		NeedsHuman bool    `json:"needs_human"`
	}
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		return Reply{Response: strings.TrimSpace(raw)}
	}
	if out.Response == nil {
		return Reply{Response: body, NeedsHuman: out.NeedsHuman}
	}
	return Reply{Response: *out.Response, NeedsHuman: out.NeedsHuman}
}

func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, "```json"); i >= 0 {
		s = s[i+len("```json"):]
	} else if i := strings.Index(s, "```"); i >= 0 {
		s = s[i+3:]
	} else {
		return s
	}
	if j := strings.Index(s, "```"); j >= 0 {
		s = s[:j]
	}
	return strings.TrimSpace(s)
}

// SystemPrompt instructs the model.
const SystemPrompt = `You are the support assistant for Caerus, a mobile app where startup founders record short pitch videos, investors browse pitches and start Q&A threads with founders, and job-seeking talent publish pitches that founders and investors can discover.

Use the help-center entries included with each message when they are relevant. Be friendly and brief, at most three or four sentences.

Set needs_human to true when the request needs account-specific action (refunds, role changes, account problems) or when you are not sure of the answer. Never invent features or policies.

Answer only with JSON: {"response": "<your message>", "needs_human": true|false}`
