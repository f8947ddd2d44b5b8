package knowledge

import (
	"regexp"
	"strconv"
	"strings"
)

// cleanJSON attempts to extract a JSON object from text that may contain
// markdown code fences or other wrapping.
func cleanJSON(text string) string {
	return cleanDelimited(text, "{", "}")
}

// cleanJSONArray is cleanJSON for top-level arrays.
func cleanJSONArray(text string) string {
	return cleanDelimited(text, "[", "]")
}

func cleanDelimited(text, open, close string) string {
	text = strings.TrimSpace(text)

	// Strip markdown code fences.
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	// Find first opener and last closer.
	start := strings.Index(text, open)
	end := strings.LastIndex(text, close)
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(text)
}

// numberPattern matches the first numeric token of a free-text response:
// optional sign, digits, optional decimal point, optional trailing digits.
var numberPattern = regexp.MustCompile(`-?\d+\.?\d*`)

// firstNumber parses the first numeric token from free text. Thousands
// separators are stripped first so "1,234.5" parses whole.
func firstNumber(text string) (float64, bool) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(text), ",", "")
	match := numberPattern.FindString(cleaned)
	if match == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
