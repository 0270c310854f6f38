package support

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caerus-app/caerus-backend/internal/search"
)

type stubModel struct {
	out    string
	err    error
	system string
	prompt string
}

func (s *stubModel) Generate(_ context.Context, system, prompt string) (string, error) {
	s.system, s.prompt = system, prompt
	return s.out, s.err
}

func newAssistant(m Generator) *Assistant {
	return &Assistant{
		Model:     m,
		Index:     search.NewIndex(DefaultFAQ()),
		Threshold: 0.2,
		Timeout:   time.Second,
		Log:       zerolog.Nop(),
	}
}

func TestDefaultFAQ_Parses(t *testing.T) {
	entries := DefaultFAQ()
	require.NotEmpty(t, entries)
	for _, e := range entries {
		assert.NotEmpty(t, e.Topic, e.Question)
		assert.NotEmpty(t, e.Answer, e.Question)
	}
}

func TestAssistant_ModelAnswerIsGrounded(t *testing.T) {
	m := &stubModel{out: "```json\n{\"response\": \"Open Settings.\", \"needs_human\": false}\n```"}
	got := newAssistant(m).Respond(context.Background(), "investor", "How do I cancel my subscription?")

	assert.Equal(t, Reply{Response: "Open Settings."}, got)
	assert.Equal(t, SystemPrompt, m.system)
	assert.Contains(t, m.prompt, "Apple ID > Subscriptions")
	assert.True(t, strings.HasSuffix(m.prompt, "User role: investor"))
}

func TestAssistant_ModelFailureFallsBackToFAQ(t *testing.T) {
	a := newAssistant(&stubModel{err: errors.New("quota exhausted")})

	got := a.Respond(context.Background(), "", "how long does talent approval take")
	assert.False(t, got.NeedsHuman)
	assert.Contains(t, got.Response, "24-48 hours")

	got = a.Respond(context.Background(), "", "I was double charged, refund please")
	assert.Equal(t, Reply{Response: FailedReply, NeedsHuman: true}, got)
}

func TestAssistant_NoModel(t *testing.T) {
	a := newAssistant(nil)
	got := a.Respond(context.Background(), "", "how do I delete my account")
	assert.False(t, got.NeedsHuman)
	assert.Contains(t, got.Response, "Delete Profile")

	a.Index = nil
	assert.Equal(t, Reply{Response: UnavailableReply, NeedsHuman: true}, a.Respond(context.Background(), "", "hello"))
}

func TestParseReply(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want Reply
	}{
		{"plain json", `{"response":"hi","needs_human":true}`, Reply{"hi", true}},
		{"bare fence", "```\n{\"response\":\"hi\"}\n```", Reply{"hi", false}},
		{"text", "Just text.", Reply{"Just text.", false}},
		{"missing response", `{"needs_human":true}`, Reply{`{"needs_human":true}`, true}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseReply(tc.raw))
		})
	}
}

func TestNewGeminiResponder_RequiresKey(t *testing.T) {
	_, err := NewGeminiResponder(context.Background(), " ", "")
	assert.Error(t, err)
}
