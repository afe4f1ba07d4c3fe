// Package parse extracts structured pieces from free-form model output:
// tagged code blocks, fenced snippets and the JSON feedback objects returned
// by reflection prompts. Nothing in this package returns an error; malformed
// input degrades to documented fallbacks.
package parse

import (
	"regexp"
	"strings"
)

const (
	// OpenTag and CloseTag delimit executable code in model responses.
	OpenTag  = "<execute_python>"
	CloseTag = "</execute_python>"
)

var fenceRe = regexp.MustCompile("(?s)^```[A-Za-z0-9_+-]*[ \\t]*\\n?(.*?)\\n?```$")

// Between returns the exact text between the first occurrence of open and the
// next occurrence of close after it. ok is false when either marker is missing.
func Between(s, open, close string) (string, bool) {
	start := strings.Index(s, open)
	if start < 0 {
		return "", false
	}
	rest := s[start+len(open):]
	end := strings.Index(rest, close)
	if end < 0 {
		return "", false
	}
	return rest[:end], true
}

// ExtractCode returns the trimmed body of the first <execute_python> block,
// or "" when the response carries no complete block.
func ExtractCode(s string) string {
	code, ok := Between(s, OpenTag, CloseTag)
	if !ok {
		return ""
	}
	return strings.TrimSpace(code)
}

// EnsureExecuteTags wraps code in <execute_python> tags unless it is already wrapped.
func EnsureExecuteTags(code string) string {
	trimmed := strings.TrimSpace(code)
	if strings.HasPrefix(trimmed, OpenTag) && strings.HasSuffix(trimmed, CloseTag) {
		return trimmed
	}
	return OpenTag + "\n" + trimmed + "\n" + CloseTag
}

// StripCodeFence removes a single Markdown code fence surrounding s, if any.
func StripCodeFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if m := fenceRe.FindStringSubmatch(trimmed); m != nil {
		return strings.TrimSpace(m[1])
	}
	return trimmed
}
