package utils

import "encoding/json"

// TryDecodeJSON decodes a stored setting value on a best-effort basis.
// It returns the decoded structure and true when the value is valid JSON,
// or the raw string and false otherwise. Absent keys and hand-typed values
// like "09:00" fall through as raw strings rather than errors.
func TryDecodeJSON(raw string) (any, bool) {
	var decoded any
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return raw, false
	}
	return decoded, true
}

// DecodeStringSlice decodes a JSON array of strings, returning the fallback
// when the value is not a JSON string array. Used for the task-tag and
// status vocabularies, which are stored as JSON text in the settings table.
func DecodeStringSlice(raw string, fallback []string) []string {
	var items []string
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return fallback
	}
	return items
}
