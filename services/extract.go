package services

import (
	"encoding/json"
	"log"
	"regexp"
	"strings"
)

var (
	codeTokenRe = regexp.MustCompile(`\b[A-Z]{3}\b`)
	validCodeRe = regexp.MustCompile(`^[A-Z]{3}$`)
)

// ExtractJSONCandidate scans text for the first balanced object literal and
// returns its source. Braces inside double-quoted strings do not affect the
// depth count, and escape sequences keep an escaped quote from toggling string
// mode. The second return is false when no candidate exists, which is a
// legitimate outcome for model output, not an error.
func ExtractJSONCandidate(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		c := text[i]

		if escaped {
			escaped = false
			continue
		}

		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return text[start : i+1], true
				}
			}
		}
	}

	// Ran out of text before the object closed.
	return "", false
}

// parseCandidate strictly parses a candidate into a generic map. Parse
// failures are logged as recoverable and never propagated.
func parseCandidate(candidate string) (map[string]any, bool) {
	if candidate == "" {
		return nil, false
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(candidate), &parsed); err != nil {
		log.Printf("⚠️  AI reply candidate did not parse as JSON: %v", err)
		return nil, false
	}
	return parsed, true
}

// ExtractCodeTokens pulls every uppercase 3-letter run out of raw text,
// deduplicated in first-seen order. Lowercase words never qualify: an
// airport code in model output is written in capitals, and anything looser
// would sweep up ordinary words like "fly" or "the".
func ExtractCodeTokens(text string) []string {
	matches := codeTokenRe.FindAllString(text, -1)

	seen := make(map[string]bool, len(matches))
	tokens := make([]string, 0, len(matches))
	for _, m := range matches {
		code := strings.ToUpper(m)
		if seen[code] {
			continue
		}
		// Always true for an uppercase match; guards against a regex change.
		if !validCodeRe.MatchString(code) {
			continue
		}
		seen[code] = true
		tokens = append(tokens, code)
	}
	return tokens
}
