// Package search provides a deterministic, concurrency-safe in-memory index
// over help-center FAQ entries. The index is read-only after construction.
//
// Scoring uses Jaccard similarity between the query token set and the
// entry's question token set: score = |Q ∩ E| / |Q ∪ E|. Overlap with the
// answer body only breaks ties.
package search

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

// Entry is one FAQ item.
type Entry struct {
	Topic    string
	Question string
	Answer   string
}

// Result is a ranked entry with its similarity score.
type Result struct {
	Entry Entry
	Score float64
}

// Index is implemented by all FAQ indices.
type Index interface {
	TopK(query string, k int) []Result
	Len() int
}

// Option configures index construction.
type Option func(*config)

type config struct {
	minAnswerRunes int
	stopwords      map[string]struct{}
	maxEntries     int
}

func defaultConfig() config {
	return config{
		minAnswerRunes: 1,
		stopwords:      toSet(DefaultStopwords),
	}
}

// DefaultStopwords are dropped from questions and queries.
var DefaultStopwords = []string{
	"a", "an", "and", "are", "can", "do", "does", "for", "how", "i", "in",
	"is", "it", "my", "of", "on", "or", "the", "to", "what", "why", "with",
}

// WithMinAnswerRunes drops entries whose answer is shorter than n runes.
func WithMinAnswerRunes(n int) Option {
	return func(c *config) {
		if n >= 0 {
			c.minAnswerRunes = n
		}
	}
}

// WithStopwords replaces the stopword list. An empty list disables removal.
func WithStopwords(words []string) Option {
	return func(c *config) {
		c.stopwords = toSet(words)
	}
}

// WithMaxEntries caps the number of indexed entries.
func WithMaxEntries(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxEntries = n
		}
	}
}

func toSet(words []string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			m[w] = struct{}{}
		}
	}
	if len(m) == 0 {
		return nil
	}
	return m
}

type doc struct {
	entry    Entry
	question map[string]struct{}
	answer   map[string]struct{}
}

type index struct {
	cfg  config
	docs []doc
}

// NewIndex builds an Index over entries.
func NewIndex(entries []Entry, opts ...Option) Index {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	docs := make([]doc, 0, len(entries))
	for _, e := range entries {
		e.Question = strings.TrimSpace(normalizeWhitespace(e.Question))
		e.Answer = strings.TrimSpace(e.Answer)
		if e.Question == "" || utf8.RuneCountInString(e.Answer) < cfg.minAnswerRunes {
			continue
		}
		q := tokenize(e.Topic+" "+e.Question, cfg.stopwords)
		if len(q) == 0 {
			continue
		}
		docs = append(docs, doc{entry: e, question: q, answer: tokenize(e.Answer, cfg.stopwords)})
		if cfg.maxEntries > 0 && len(docs) >= cfg.maxEntries {
			break
		}
	}
	return &index{cfg: cfg, docs: docs}
}

func (i *index) Len() int { return len(i.docs) }

// TopK returns up to k best-matching entries. k <= 0 means 3.
func (i *index) TopK(q string, k int) []Result {
	if len(i.docs) == 0 || strings.TrimSpace(q) == "" {
		return nil
	}
	if k <= 0 {
		k = 3
	}
	qTokens := tokenize(q, i.cfg.stopwords)
	if len(qTokens) == 0 {
		return nil
	}

	type scored struct {
		entry    Entry
		score    float64
		tiebreak int
		order    int
	}
	buf := make([]scored, 0, len(i.docs))
	for n, d := range i.docs {
		over := overlap(qTokens, d.question)
		if over == 0 {
			continue
		}
		union := len(qTokens) + len(d.question) - over
		buf = append(buf, scored{
			entry:    d.entry,
			score:    float64(over) / float64(union),
			tiebreak: overlap(qTokens, d.answer),
			order:    n,
		})
	}
	if len(buf) == 0 {
		return nil
	}

	sort.SliceStable(buf, func(a, b int) bool {
		if buf[a].score != buf[b].score {
			return buf[a].score > buf[b].score
		}
		if buf[a].tiebreak != buf[b].tiebreak {
			return buf[a].tiebreak > buf[b].tiebreak
		}
		return buf[a].order < buf[b].order
	})

	if k > len(buf) {
		k = len(buf)
	}
	out := make([]Result, k)
	for n := 0; n < k; n++ {
		out[n] = Result{Entry: buf[n].entry, Score: buf[n].score}
	}
	return out
}

var wordRE = regexp.MustCompile(`\p{L}+\p{N}*`)

// tokenize case-folds s, so "STRASSE" and "straße" share tokens. A Caser
// holds state, so each call gets its own.
func tokenize(s string, stop map[string]struct{}) map[string]struct{} {
	words := wordRE.FindAllString(cases.Fold().String(s), -1)
	if len(words) == 0 {
		return nil
	}
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		if _, skip := stop[w]; skip {
			continue
		}
		out[stem(w)] = struct{}{}
	}
	return out
}

// stem strips "-ing", "-ed" and a plural "s", so "playing", "played" and
// "plays" all reduce to "play". At least three letters are always kept.
func stem(w string) string {
	switch {
	case len(w) > 5 && strings.HasSuffix(w, "ing"):
		return w[:len(w)-3]
	case len(w) > 4 && strings.HasSuffix(w, "ed"):
		return w[:len(w)-2]
	case len(w) > 3 && strings.HasSuffix(w, "s") && !strings.HasSuffix(w, "ss"):
		return w[:len(w)-1]
	}
	return w
}

func overlap(a, b map[string]struct{}) int {
	if len(a) > len(b) {
		a, b = b, a
	}
	n := 0
	for k := range a {
		if _, ok := b[k]; ok {
			n++
		}
	}
	return n
}

func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
