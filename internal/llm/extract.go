package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/purrsec/Hackathon-parrotAI/internal/types"
)

// ErrNoJSONFound is returned when a model response contains no balanced JSON
// object. Callers decide whether to retry the completion.
var ErrNoJSONFound = types.NewError(types.LLM_NO_JSON_FOUND, "no JSON object found in response")

// ExtractJSON extracts the first balanced JSON object from an LLM response
// that may be wrapped in markdown fences or surrounded by commentary.
// Strategy:
//  1. Strip a leading code fence line (and a trailing fence) if present; if
//     the remainder already looks like a complete object, return it.
//  2. Otherwise scan for the first balanced {...} span, tracking quoted
//     strings and backslash escapes so braces inside strings are ignored.
//
// The returned span is verbatim; no tokenization or reformatting happens.
func ExtractJSON(response string) (string, error) {
	s := strings.TrimSpace(response)
	if s == "" {
		return "", ErrNoJSONFound
	}

	if strings.HasPrefix(s, "```") {
		// Drop the opening fence line (e.g. ```json)
		if nl := strings.IndexByte(s, '\n'); nl != -1 {
			s = strings.TrimSpace(s[nl+1:])
		}
		s = strings.TrimSpace(strings.TrimSuffix(s, "```"))
		if strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}") {
			return s, nil
		}
		// fall through to balanced extraction
	}

	if obj, found := extractBalancedObject(s); found {
		return obj, nil
	}

	return "", ErrNoJSONFound
}

// extractBalancedObject scans for the first depth-0 '{' through its matching
// '}' outside of quoted strings.
func extractBalancedObject(s string) (string, bool) {
	inString := false
	escaped := false
	depth := 0
	start := -1

	for i := 0; i < len(s); i++ {
		c := s[i]

		if escaped {
			escaped = false
			continue
		}

		if c == '\\' {
			escaped = true
			continue
		}

		if c == '"' {
			inString = !inString
			continue
		}

		if inString {
			continue
		}

		switch c {
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 && start != -1 {
					return s[start : i+1], true
				}
			}
		}
	}

	return "", false
}

// ExtractJSONAs extracts JSON and unmarshals into the provided type.
// Convenience wrapper around ExtractJSON.
func ExtractJSONAs[T any](response string) (T, error) {
	var result T

	jsonStr, err := ExtractJSON(response)
	if err != nil {
		return result, err
	}

	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return result, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}

	return result, nil
}
