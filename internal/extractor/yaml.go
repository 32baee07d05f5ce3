package extractor

import (
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseLenientYAML decodes schema-like YAML into a nested map and never fails.
//
// Well-formed documents are decoded with yaml.v3. Anything yaml.v3 rejects is
// handed to a deliberately simplified line parser that understands top-level
// "key: value" pairs and one level of nested "key:" blocks. Comments, list
// items, deeper nesting and malformed lines are skipped, so a broken line in a
// hand-edited schema file does not drop the rest of the component.
func ParseLenientYAML(content string) map[string]any {
	var decoded map[string]any
	if err := yaml.Unmarshal([]byte(content), &decoded); err == nil && decoded != nil {
		return decoded
	}
	return parseLines(content)
}

func parseLines(content string) map[string]any {
	result := make(map[string]any)
	var block map[string]any

	for _, raw := range strings.Split(content, "\n") {
		line := strings.TrimRight(raw, " \t\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "- ") {
			continue
		}

		key, value, ok := splitPair(trimmed)
		if !ok {
			continue
		}

		indented := line[0] == ' ' || line[0] == '\t'
		if !indented {
			if value == "" {
				block = make(map[string]any)
				result[key] = block
				continue
			}
			result[key] = scalar(value)
			block = nil
			continue
		}

		if block == nil {
			// Indented line without an open block: deeper nesting is not supported
			continue
		}
		block[key] = scalar(value)
	}

	return result
}

// splitPair splits "key: value". Lines without a colon or with an empty key
// are rejected.
func splitPair(line string) (string, string, bool) {
	idx := strings.Index(line, ":")
	if idx <= 0 {
		return "", "", false
	}
	key := strings.Trim(strings.TrimSpace(line[:idx]), `"'`)
	if key == "" {
		return "", "", false
	}
	value := strings.TrimSpace(line[idx+1:])
	if i := strings.Index(value, " #"); i >= 0 {
		value = strings.TrimSpace(value[:i])
	}
	return key, value, true
}

func scalar(v string) any {
	if len(v) >= 2 && (v[0] == '"' || v[0] == '\'') && v[len(v)-1] == v[0] {
		return v[1 : len(v)-1]
	}
	switch v {
	case "true":
		return true
	case "false":
		return false
	case "null", "~":
		return nil
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	return v
}
