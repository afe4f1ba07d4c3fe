package parse

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// NoFeedback is returned when a reflection parsed cleanly but carried no feedback text.
const NoFeedback = "No feedback provided."

var firstObjectRe = regexp.MustCompile(`(?s)\{.*?\}`)

// ParseFeedback reads the "feedback" field of a reflection response.
//
// The first line is parsed as strict JSON. If that fails, the first
// brace-delimited object anywhere in the content is tried. If that fails too,
// an explanatory placeholder is returned. The result is never empty.
func ParseFeedback(content string) string {
	obj, err := firstLineObject(content)
	if err != nil {
		m := firstObjectRe.FindString(content)
		if m == "" {
			return fmt.Sprintf("Failed to find JSON: %v", err)
		}
		obj = map[string]any{}
		if err2 := json.Unmarshal([]byte(m), &obj); err2 != nil {
			return fmt.Sprintf("Failed to parse JSON: %v", err2)
		}
	}

	feedback := strings.TrimSpace(stringField(obj, "feedback"))
	if feedback == "" {
		return NoFeedback
	}
	return feedback
}

func firstLineObject(content string) (map[string]any, error) {
	line := strings.TrimSpace(content)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = strings.TrimSpace(line[:i])
	}
	obj := map[string]any{}
	if err := json.Unmarshal([]byte(line), &obj); err != nil {
		return nil, err
	}
	return obj, nil
}

// ParseSQLReflection reads {"feedback": ..., "refined_sql": ...} from a SQL
// reviewer response. A fenced or embedded object is accepted. When no object
// can be decoded the raw content becomes the feedback and the original query
// is kept. An empty refined_sql also keeps the original query.
func ParseSQLReflection(content, originalSQL string) (feedback, refinedSQL string) {
	obj := map[string]any{}
	if err := json.Unmarshal([]byte(StripCodeFence(content)), &obj); err != nil {
		obj = nil
		if m := firstObjectRe.FindString(content); m != "" {
			candidate := map[string]any{}
			if json.Unmarshal([]byte(m), &candidate) == nil {
				obj = candidate
			}
		}
	}
	if obj == nil {
		return strings.TrimSpace(content), originalSQL
	}

	feedback = strings.TrimSpace(stringField(obj, "feedback"))
	refinedSQL = StripCodeFence(stringField(obj, "refined_sql"))
	if refinedSQL == "" {
		refinedSQL = originalSQL
	}
	return feedback, refinedSQL
}

func stringField(obj map[string]any, key string) string {
	v, ok := obj[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
