package jsonextract

import (
	"regexp"
	"strings"

	"traveldesk-service/internal/domain/entity"
)

var fenceRegex = regexp.MustCompile("```[a-zA-Z]*")

// Extract recovers the first syntactically complete top-level JSON
// object from raw model output. Code-fence delimiters (tagged or bare)
// are stripped anywhere in the text first. The scan tracks brace
// nesting and string escaping, so commentary containing stray braces
// before or after the object does not break extraction. Extract is
// idempotent on text that is already a bare JSON object.
func Extract(raw string) (string, error) {
	cleaned := strings.TrimSpace(fenceRegex.ReplaceAllString(raw, ""))

	start := strings.IndexByte(cleaned, '{')
	for start >= 0 {
		if obj, ok := scanObject(cleaned[start:]); ok {
			return obj, nil
		}
		next := strings.IndexByte(cleaned[start+1:], '{')
		if next < 0 {
			break
		}
		start += 1 + next
	}
	return "", entity.NewParseError(entity.ErrNoJSONFound, "no balanced JSON object in model output", cleaned)
}

// scanObject walks s, which must begin with '{', and returns the
// substring up to the brace that balances it.
func scanObject(s string) (string, bool) {
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[:i+1], true
			}
		}
	}
	return "", false
}
