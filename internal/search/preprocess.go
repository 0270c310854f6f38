package search

import (
	"bufio"
	"bytes"
	"os"
	"strings"
)

// LoadFAQ reads and parses the FAQ markdown at path.
func LoadFAQ(path string) ([]Entry, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseFAQ(b)
}

// ParseFAQ turns FAQ markdown into entries.
//
// "# Heading" lines set the topic, "## Question" lines start an entry, and the
// lines up to the next heading form the answer. Table rows are flattened to
// one fact per row with separator rows dropped. Text before the first
// question is ignored.
func ParseFAQ(src []byte) ([]Entry, error) {
	var (
		out    []Entry
		topic  string
		cur    *Entry
		answer strings.Builder
	)
	flush := func() {
		if cur == nil {
			return
		}
		cur.Answer = strings.TrimSpace(answer.String())
		out = append(out, *cur)
		cur = nil
		answer.Reset()
	}

	sc := bufio.NewScanner(bytes.NewReader(src))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case strings.HasPrefix(line, "## "):
			flush()
			cur = &Entry{Topic: topic, Question: strings.TrimSpace(line[3:])}
		case strings.HasPrefix(line, "# "):
			flush()
			topic = strings.TrimSpace(line[2:])
		case cur == nil:
			// preamble
		case line == "":
			if answer.Len() > 0 {
				answer.WriteByte('\n')
			}
		case strings.HasPrefix(line, "|") && strings.HasSuffix(line, "|"):
			if fact := tableFact(line); fact != "" {
				answer.WriteString(fact)
				answer.WriteByte('\n')
			}
		default:
			answer.WriteString(line)
			answer.WriteByte('\n')
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	flush()
	return out, nil
}

// tableFact flattens "| a | b |" to "a b"; separator rows yield "".
func tableFact(line string) string {
	cols := strings.Split(strings.Trim(line, "|"), "|")
	cells := make([]string, 0, len(cols))
	allSep := true
	for _, c := range cols {
		cell := strings.TrimSpace(c)
		if strings.Trim(cell, ":-") != "" {
			allSep = false
		}
		if cell != "" {
			cells = append(cells, cell)
		}
	}
	if allSep {
		return ""
	}
	return strings.Join(cells, " ")
}
