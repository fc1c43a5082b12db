package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// decodeJSONResponse parses a model reply into v. Models sometimes wrap
// the JSON in a markdown code fence or surrounding prose; both are
// tolerated.
func decodeJSONResponse(content string, v any) error {
	cleaned := stripCodeFence(content)

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start == -1 || end == -1 || end < start {
		return fmt.Errorf("no JSON object in response")
	}

	if err := json.Unmarshal([]byte(cleaned[start:end+1]), v); err != nil {
		return fmt.Errorf("invalid JSON in response: %w", err)
	}
	return nil
}

func stripCodeFence(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.LastIndex(trimmed, "```"); idx != -1 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}
