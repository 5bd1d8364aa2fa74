package pipeline

import (
	"regexp"
	"strings"
)

var symbolPattern = regexp.MustCompile(`\b[A-Z]{1,5}\b`)

// Common uppercase words that look like tickers but are not.
var symbolStopWords = map[string]struct{}{
	"AND": {}, "THE": {}, "FOR": {}, "NOT": {}, "ARE": {}, "BUT": {},
	"WITH": {}, "FROM": {}, "SHOULD": {}, "IF": {}, "IS": {}, "TO": {},
	"A": {}, "S": {}, "I": {}, "E": {}, "P": {}, "V": {},
}

// ExtractSymbols pulls candidate ticker symbols from free text. It is
// the fallback when structured parsing fails: uppercase tokens of two
// to five letters, minus common words, order preserved, deduplicated.
func ExtractSymbols(query string) []string {
	matches := symbolPattern.FindAllString(strings.ToUpper(query), -1)

	var symbols []string
	seen := make(map[string]struct{})
	for _, m := range matches {
		if len(m) < 2 {
			continue
		}
		if _, stop := symbolStopWords[m]; stop {
			continue
		}
		if _, dup := seen[m]; dup {
			continue
		}
		seen[m] = struct{}{}
		symbols = append(symbols, m)
	}
	return symbols
}

// extractJSON strips markdown code fences from a model response so the
// remainder can be unmarshalled.
func extractJSON(text string) string {
	text = strings.TrimSpace(text)

	if idx := strings.Index(text, "```json"); idx >= 0 {
		text = text[idx+len("```json"):]
		if end := strings.Index(text, "```"); end >= 0 {
			text = text[:end]
		}
		return strings.TrimSpace(text)
	}

	if idx := strings.Index(text, "```"); idx >= 0 {
		text = text[idx+len("```"):]
		if end := strings.Index(text, "```"); end >= 0 {
			text = text[:end]
		}
		return strings.TrimSpace(text)
	}

	return text
}
