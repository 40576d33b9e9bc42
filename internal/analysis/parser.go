package analysis

import (
	"encoding/json"
	"fmt"
	"strings"
)

// CleanJSON extracts the JSON object from a model reply: it keeps the text
// between the first '{' and the last '}' and strips markdown code fences.
// Text without braces is returned unchanged so the decode error stays useful.
func CleanJSON(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return text
	}
	content := text[start : end+1]
	content = strings.ReplaceAll(content, "```json", "")
	content = strings.ReplaceAll(content, "```", "")
	return strings.TrimSpace(content)
}

// decodeStage parses a model reply into v after cleaning. The stage name is
// included in the error so a failed job reports which call produced bad output.
func decodeStage(stage, raw string, v interface{}) error {
	if err := json.Unmarshal([]byte(CleanJSON(raw)), v); err != nil {
		return fmt.Errorf("parse %s output: %w", stage, err)
	}
	return nil
}
