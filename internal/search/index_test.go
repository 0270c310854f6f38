package search

import (
	"testing"
)

func sampleEntries() []Entry {
	return []Entry{
		{Topic: "Recording", Question: "How long can my pitch video be?", Answer: "Free pitches are 30 seconds. Paid pitches run up to 5 minutes."},
		{Topic: "Playback", Question: "Why won't my video play?", Answer: "Check your connection and update the app."},
		{Topic: "Subscriptions", Question: "How do I cancel my subscription?", Answer: "Open Settings > Apple ID > Subscriptions on your device."},
		{Topic: "Talent", Question: "How long does talent approval take?", Answer: "Reviews usually finish within 24-48 hours."},
	}
}

func TestOptionsAndDefaults(t *testing.T) {
	def := defaultConfig()
	if def.minAnswerRunes != 1 || def.maxEntries != 0 {
		t.Fatalf("defaultConfig unexpected: %#v", def)
	}
	if _, ok := def.stopwords["the"]; !ok {
		t.Fatalf("default stopwords missing 'the'")
	}

	cfg := def
	WithMinAnswerRunes(10)(&cfg)
	WithMinAnswerRunes(-5)(&cfg) // ignored
	if cfg.minAnswerRunes != 10 {
		t.Fatalf("WithMinAnswerRunes = %d; want 10", cfg.minAnswerRunes)
	}

	WithStopwords(nil)(&cfg)
	if cfg.stopwords != nil {
		t.Fatalf("empty stopword list should disable removal")
	}
	WithStopwords([]string{"  The ", ""})(&cfg)
	if len(cfg.stopwords) != 1 {
		t.Fatalf("stopwords = %#v", cfg.stopwords)
	}

	WithMaxEntries(2)(&cfg)
	WithMaxEntries(0)(&cfg) // ignored
	if cfg.maxEntries != 2 {
		t.Fatalf("WithMaxEntries = %d; want 2", cfg.maxEntries)
	}
}

func TestNewIndex_SkipsUnusableEntries(t *testing.T) {
	idx := NewIndex([]Entry{
		{Question: "   ", Answer: "orphan"},
		{Question: "the a an", Answer: "only stopwords"},
		{Question: "Short answer?", Answer: "ok"},
		{Question: "Real question here", Answer: "A real answer."},
	}, WithMinAnswerRunes(5))
	if idx.Len() != 1 {
		t.Fatalf("Len = %d; want 1", idx.Len())
	}

	capped := NewIndex(sampleEntries(), WithMaxEntries(2))
	if capped.Len() != 2 {
		t.Fatalf("Len = %d; want 2", capped.Len())
	}
}

func TestTopK_RanksByQuestionSimilarity(t *testing.T) {
	idx := NewIndex(sampleEntries())

	res := idx.TopK("how do I cancel subscription", 2)
	if len(res) == 0 {
		t.Fatalf("expected results")
	}
	if res[0].Entry.Topic != "Subscriptions" {
		t.Fatalf("top = %q; want Subscriptions", res[0].Entry.Topic)
	}
	if res[0].Score <= 0 || res[0].Score > 1 {
		t.Fatalf("score out of range: %v", res[0].Score)
	}

	// Suffix folding: "videos" matches "video" and "playing" matches "play".
	res = idx.TopK("videos not playing", 1)
	if len(res) != 1 || res[0].Entry.Topic != "Playback" {
		t.Fatalf("got %#v; want Playback", res)
	}
}

func TestTopK_TiesBrokenByAnswerThenOrder(t *testing.T) {
	idx := NewIndex([]Entry{
		{Question: "upload issue", Answer: "Retry later."},
		{Question: "upload issue", Answer: "Large files need wifi."},
	})
	res := idx.TopK("upload wifi", 2)
	if len(res) != 2 {
		t.Fatalf("len = %d; want 2", len(res))
	}
	if res[0].Entry.Answer != "Large files need wifi." {
		t.Fatalf("answer overlap should break the tie, got %q", res[0].Entry.Answer)
	}

	res = idx.TopK("upload", 2)
	if res[0].Entry.Answer != "Retry later." {
		t.Fatalf("index order should break remaining ties, got %q", res[0].Entry.Answer)
	}
}

func TestTopK_EmptyInputs(t *testing.T) {
	if NewIndex(nil).TopK("anything", 3) != nil {
		t.Fatalf("empty index should return nil")
	}
	idx := NewIndex(sampleEntries())
	if idx.TopK("   ", 3) != nil {
		t.Fatalf("blank query should return nil")
	}
	if idx.TopK("the and of", 3) != nil {
		t.Fatalf("stopword-only query should return nil")
	}
	if idx.TopK("zebra quantum", 3) != nil {
		t.Fatalf("no overlap should return nil")
	}
	if got := idx.TopK("how long", 0); len(got) != 2 {
		t.Fatalf("k<=0 defaults to 3, capped by matches; got %d", len(got))
	}
}

func Test_stem(t *testing.T) {
	cases := map[string]string{
		"playing": "play",
		"played":  "play",
		"plays":   "play",
		"videos":  "video",
		"access":  "access",
		"bring":   "bring",
		"need":    "need",
		"bus":     "bus",
	}
	for in, want := range cases {
		if got := stem(in); got != want {
			t.Fatalf("stem(%q) = %q; want %q", in, got, want)
		}
	}
}
