// Package resolution implements the entity-resolution bounded context: it
// turns free-form filing text into resolved company mentions by composing
// candidate extraction, filtering, registry matching, and confidence scoring.
// Every component in this package is a pure function of its inputs; all
// configuration is injected at construction time.
package resolution

import (
	"regexp"
	"strings"
	"unicode"
)

// maxSentenceRunes caps the stored sentence context of a candidate.
const maxSentenceRunes = 500

// Candidate is a potential company mention extracted from text.  It is
// immutable once created: filters, matchers, and scorers only read it.
type Candidate struct {
	// Text is the extracted span.
	Text string
	// StartPos and EndPos delimit the span in the source text (byte offsets).
	StartPos int
	EndPos   int
	// SourcePattern names the extraction strategy that produced the span.
	SourcePattern string
	// Sentence is the containing sentence, truncated to 500 runes.
	Sentence string
}

// Extractor is a candidate extraction strategy.
type Extractor interface {
	// Extract scans text and returns every candidate the strategy finds.
	Extract(text string) []Candidate
	// PatternName identifies the strategy for stats and debugging.
	PatternName() string
}

// ─────────────────────────────────────────────────────────────────────────────
// Extraction strategies
// ─────────────────────────────────────────────────────────────────────────────

var (
	// capitalized sequences of 1-4 words, each starting with an uppercase
	// letter: "Microsoft Corporation", "International Business Machines".
	reCapitalized = regexp.MustCompile(`\b([A-Z][a-zA-Z&.\-]*(?:\s+[A-Z][a-zA-Z&.\-]*){0,3})\b`)

	// all-caps 2-5 letter ticker-like tokens: "AAPL", "MSFT".
	reTicker = regexp.MustCompile(`\b([A-Z]{2,5})\b`)

	// quoted strings of 2-50 characters: `"Apple Inc."`.
	reQuoted = regexp.MustCompile(`"([^"]{2,50})"`)

	// sentence boundary: terminal punctuation followed by whitespace.
	reSentenceBoundary = regexp.MustCompile(`[.!?]\s+`)
)

// CapitalizedWordExtractor extracts capitalized multi-word sequences of one to
// four tokens.
type CapitalizedWordExtractor struct{}

func (CapitalizedWordExtractor) PatternName() string { return "capitalized" }

func (e CapitalizedWordExtractor) Extract(text string) []Candidate {
	var out []Candidate
	for _, m := range reCapitalized.FindAllStringSubmatchIndex(text, -1) {
		span := strings.TrimSpace(text[m[2]:m[3]])
		if len(span) < 2 {
			continue
		}
		out = append(out, Candidate{
			Text:          span,
			StartPos:      m[0],
			EndPos:        m[1],
			SourcePattern: e.PatternName(),
			Sentence:      containingSentence(text, m[0]),
		})
	}
	return out
}

// TickerExtractor extracts all-caps sequences that look like stock tickers.
type TickerExtractor struct{}

func (TickerExtractor) PatternName() string { return "ticker" }

func (e TickerExtractor) Extract(text string) []Candidate {
	var out []Candidate
	for _, m := range reTicker.FindAllStringSubmatchIndex(text, -1) {
		out = append(out, Candidate{
			Text:          text[m[2]:m[3]],
			StartPos:      m[0],
			EndPos:        m[1],
			SourcePattern: e.PatternName(),
			Sentence:      containingSentence(text, m[0]),
		})
	}
	return out
}

// QuotedNameExtractor extracts quoted strings containing at least one
// uppercase letter.
type QuotedNameExtractor struct{}

func (QuotedNameExtractor) PatternName() string { return "quoted" }

func (e QuotedNameExtractor) Extract(text string) []Candidate {
	var out []Candidate
	for _, m := range reQuoted.FindAllStringSubmatchIndex(text, -1) {
		span := strings.TrimSpace(text[m[2]:m[3]])
		if span == "" || !containsUpper(span) {
			continue
		}
		out = append(out, Candidate{
			Text:          span,
			StartPos:      m[0],
			EndPos:        m[1],
			SourcePattern: e.PatternName(),
			Sentence:      containingSentence(text, m[0]),
		})
	}
	return out
}

func containsUpper(s string) bool {
	for _, r := range s {
		if unicode.IsUpper(r) {
			return true
		}
	}
	return false
}

// containingSentence returns the sentence around position, delimited by the
// nearest sentence boundaries, truncated to maxSentenceRunes.
func containingSentence(text string, position int) string {
	if position > len(text) {
		position = len(text)
	}

	start := 0
	for _, m := range reSentenceBoundary.FindAllStringIndex(text[:position], -1) {
		start = m[1]
	}

	end := len(text)
	if m := reSentenceBoundary.FindStringIndex(text[position:]); m != nil {
		end = position + m[1]
	}

	sentence := strings.TrimSpace(text[start:end])
	if runes := []rune(sentence); len(runes) > maxSentenceRunes {
		sentence = string(runes[:maxSentenceRunes])
	}
	return sentence
}

// ─────────────────────────────────────────────────────────────────────────────
// Extraction orchestration
// ─────────────────────────────────────────────────────────────────────────────

// StandardExtractors returns the default extraction strategies in precedence
// order.  The quoted extractor is opt-in: quoted spans are noisy in filings.
func StandardExtractors() []Extractor {
	return []Extractor{CapitalizedWordExtractor{}, TickerExtractor{}}
}

// ExtractCandidates runs every extractor over text and deduplicates the
// results by lowercased span text, keeping the first occurrence.  Extractor
// list order, then scan order, determines which duplicate survives — a
// defined tie-break, not an accident of iteration.
func ExtractCandidates(text string, extractors []Extractor) []Candidate {
	if len(extractors) == 0 {
		extractors = StandardExtractors()
	}

	seen := make(map[string]struct{})
	var out []Candidate
	for _, ex := range extractors {
		for _, c := range ex.Extract(text) {
			key := strings.ToLower(c.Text)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, c)
		}
	}
	return out
}

// ExtractCandidatesWithStats is ExtractCandidates plus a per-strategy count
// of raw (pre-dedup) extractions, for pipeline observability.
func ExtractCandidatesWithStats(text string, extractors []Extractor) ([]Candidate, map[string]int) {
	if len(extractors) == 0 {
		extractors = StandardExtractors()
	}

	stats := make(map[string]int, len(extractors))
	seen := make(map[string]struct{})
	var out []Candidate
	for _, ex := range extractors {
		name := ex.PatternName()
		stats[name] = 0
		for _, c := range ex.Extract(text) {
			stats[name]++
			key := strings.ToLower(c.Text)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, c)
		}
	}
	return out, stats
}
