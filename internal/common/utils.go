package common

import (
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// fieldNameMap maps verbose result field names to terse equivalents.
var fieldNameMap = map[string]string{
	"slug":         "s",
	"tier":         "t",
	"confidence":   "c",
	"metadata":     "m",
	"generated_at": "g",
	"style":        "st",
}

var markdownLinkPattern = regexp.MustCompile(`^\[.*?\]\((https?://[^\)]+)\)$`)

// FilterResultFields converts result to a map holding only the requested
// comma-separated fields. With terse set, keys are shortened and verbose
// names in fieldsStr are translated.
func FilterResultFields(result any, fieldsStr string, isTerse bool) map[string]any {
	full := structToMap(result)
	if isTerse {
		full = terseKeys(full)
	}
	if fieldsStr == "" {
		return full
	}

	include := make(map[string]bool)
	for _, field := range strings.Split(fieldsStr, ",") {
		field = strings.TrimSpace(field)
		if t, ok := fieldNameMap[field]; ok && isTerse {
			field = t
		}
		include[field] = true
	}

	filtered := make(map[string]any)
	for key, value := range full {
		if include[key] {
			filtered[key] = value
		}
	}
	return filtered
}

func terseKeys(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if t, ok := fieldNameMap[k]; ok {
			k = t
		}
		out[k] = v
	}
	return out
}

// structToMap converts a struct to map[string]any using JSON marshaling.
func structToMap(obj any) map[string]any {
	data, _ := json.Marshal(obj)
	var result map[string]any
	_ = json.Unmarshal(data, &result)
	return result
}

// SanitizeURL cleans up common copy-paste debris around a URL: markdown
// link syntax, wrapping brackets or quotes, and trailing punctuation.
func SanitizeURL(rawURL string) string {
	cleaned := strings.TrimSpace(rawURL)

	// [text](url) -> url
	if matches := markdownLinkPattern.FindStringSubmatch(cleaned); len(matches) > 1 {
		cleaned = matches[1]
	}

	for _, char := range []string{",", ".", ")", "}", "]", "\"", "'", ">", ";"} {
		cleaned = strings.TrimSuffix(cleaned, char)
	}
	for _, char := range []string{"(", "[", "<", "\"", "'"} {
		cleaned = strings.TrimPrefix(cleaned, char)
	}

	return strings.TrimSpace(cleaned)
}

// SplitURLs splits a comma-separated --urls value and sanitizes each
// entry, dropping empties.
func SplitURLs(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if u := SanitizeURL(part); u != "" {
			out = append(out, u)
		}
	}
	return out
}

// Print writes v to w as indented JSON, or as YAML when format is "yaml".
func Print(w io.Writer, v any, format string) error {
	var (
		data []byte
		err  error
	)
	if strings.EqualFold(format, "yaml") {
		data, err = yaml.Marshal(v)
	} else {
		data, err = json.MarshalIndent(v, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = w.Write(data)
	return err
}
