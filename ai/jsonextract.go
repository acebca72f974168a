package ai

import "strings"

// CleanJSONContent removes markdown code blocks and cleans JSON content
func CleanJSONContent(content string) string {
	content = strings.TrimSpace(content)

	// Remove markdown code blocks with various prefixes
	if strings.HasPrefix(content, "```json") && strings.HasSuffix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimSuffix(content, "```")
		content = strings.TrimSpace(content)
	} else if strings.HasPrefix(content, "```") && strings.HasSuffix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
		content = strings.TrimSpace(content)
	}

	// Drop common chatter lines that precede or follow the payload
	lines := strings.Split(content, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		lower := strings.ToLower(trimmed)
		if trimmed == "" ||
			strings.HasPrefix(lower, "here is") ||
			strings.HasPrefix(lower, "the json") ||
			strings.HasPrefix(lower, "output:") ||
			strings.HasPrefix(lower, "response:") ||
			strings.HasPrefix(lower, "##") {
			continue
		}
		cleaned = append(cleaned, line)
	}

	return strings.TrimSpace(strings.Join(cleaned, "\n"))
}

// ExtractJSONPayload cleans the content and slices out the outermost JSON
// value: first opening brace or bracket to the matching last one. Returns
// the empty string when no JSON-looking payload is present.
func ExtractJSONPayload(content string) string {
	content = CleanJSONContent(content)

	objStart := strings.Index(content, "{")
	arrStart := strings.Index(content, "[")

	start := objStart
	closer := "}"
	if start < 0 || (arrStart >= 0 && arrStart < start) {
		start = arrStart
		closer = "]"
	}
	if start < 0 {
		return ""
	}

	end := strings.LastIndex(content, closer)
	if end <= start {
		return ""
	}
	return content[start : end+1]
}
