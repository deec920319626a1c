package utils

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	thinkBlock      = regexp.MustCompile(`(?s)<think>.*?</think>`)
	fencedJSON      = regexp.MustCompile("(?s)```json\\s*(.+?)\\s*```")
	fencedAny       = regexp.MustCompile("(?s)```\\s*(.+?)\\s*```")
	trailingComma   = regexp.MustCompile(`,\s*([}\]])`)
	unquotedKey     = regexp.MustCompile(`([{,]\s*)([A-Za-z_]\w*)(\s*:)`)
	controlChars    = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F]`)
	maxErrorPreview = 100
)

// ParseAIJSON decodes a JSON object from completion output that may be:
//   - pure JSON
//   - preceded by a <think>...</think> reasoning block
//   - wrapped in a markdown code fence
//   - surrounded by prose
//   - slightly malformed (trailing commas, unquoted keys, single quotes)
func ParseAIJSON(input string, target any) error {
	input = strings.TrimSpace(thinkBlock.ReplaceAllString(input, ""))
	if input == "" {
		return fmt.Errorf("empty input")
	}

	candidates := []string{input}
	if extracted := extractFromMarkdown(input); extracted != "" {
		candidates = append(candidates, extracted)
	}
	if extracted := extractJSONFromText(input); extracted != "" {
		candidates = append(candidates, extracted)
		candidates = append(candidates, cleanAndFixJSON(extracted))
	}
	candidates = append(candidates, cleanAndFixJSON(input))

	for _, c := range candidates {
		if c == "" {
			continue
		}
		if err := json.Unmarshal([]byte(c), target); err == nil {
			return nil
		}
	}

	return fmt.Errorf("failed to parse JSON from input: %s", truncateString(input, maxErrorPreview))
}

// extractFromMarkdown extracts JSON from ```json ... ``` or ``` ... ``` fences
func extractFromMarkdown(input string) string {
	if m := fencedJSON.FindStringSubmatch(input); len(m) > 1 {
		return strings.TrimSpace(m[1])
	}
	if m := fencedAny.FindStringSubmatch(input); len(m) > 1 {
		content := strings.TrimSpace(m[1])
		if strings.HasPrefix(content, "{") || strings.HasPrefix(content, "[") {
			return content
		}
	}
	return ""
}

// extractJSONFromText finds the first balanced JSON object in surrounding text
func extractJSONFromText(input string) string {
	if start := strings.Index(input, "{"); start >= 0 {
		return extractBalancedBraces(input[start:], '{', '}')
	}
	return ""
}

// extractBalancedBraces returns the prefix of input up to the brace that
// closes the first opening one, ignoring braces inside strings.
func extractBalancedBraces(input string, open, close rune) string {
	depth := 0
	inString := false
	escape := false
	start := -1

	for i, ch := range input {
		switch {
		case escape:
			escape = false
		case ch == '\\':
			escape = true
		case ch == '"':
			inString = !inString
		case inString:
		case ch == open:
			if depth == 0 {
				start = i
			}
			depth++
		case ch == close && depth > 0:
			depth--
			if depth == 0 {
				return input[start : i+1]
			}
		}
	}
	return ""
}

// cleanAndFixJSON repairs the formatting mistakes models make most often
func cleanAndFixJSON(input string) string {
	s := strings.TrimPrefix(strings.TrimSpace(input), "\ufeff")
	s = trailingComma.ReplaceAllString(s, "$1")
	s = unquotedKey.ReplaceAllString(s, `$1"$2"$3`)
	s = fixSingleQuotes(s)
	return controlChars.ReplaceAllString(s, "")
}

// fixSingleQuotes turns single-quoted keys and values into double-quoted ones.
// A quote counts as a delimiter when it follows or precedes JSON punctuation;
// apostrophes inside words stay untouched.
func fixSingleQuotes(input string) string {
	rs := []rune(input)
	var b strings.Builder
	inDouble := false
	escape := false

	for i, ch := range rs {
		switch {
		case escape:
			escape = false
		case ch == '\\':
			escape = true
		case ch == '"':
			inDouble = !inDouble
		case ch == '\'' && !inDouble:
			if strings.ContainsRune(":,[{", neighbour(rs, i, -1)) || strings.ContainsRune(":,]}", neighbour(rs, i, 1)) {
				b.WriteRune('"')
				continue
			}
		}
		b.WriteRune(ch)
	}
	return b.String()
}

// neighbour returns the closest non-space rune before (dir -1) or after (dir 1)
// position i, or ':' at the edges of the input.
func neighbour(rs []rune, i, dir int) rune {
	for j := i + dir; j >= 0 && j < len(rs); j += dir {
		if rs[j] != ' ' && rs[j] != '\t' && rs[j] != '\n' {
			return rs[j]
		}
	}
	return ':'
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
