package lint

import (
	"strconv"
	"strings"
)

// GetOption extracts a typed option with a default value.
func GetOption[T any](opts map[string]any, key string, defaultVal T) T {
	v, ok := lookupOption(opts, key)
	if !ok {
		return defaultVal
	}
	if typed, ok := v.(T); ok {
		return typed
	}
	return defaultVal
}

// GetIntOption extracts an int option. Config files and environment
// variables deliver numbers as various integer, float or string types.
func GetIntOption(opts map[string]any, key string, defaultVal int) int {
	v, ok := lookupOption(opts, key)
	if !ok {
		return defaultVal
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case uint64:
		return int(n)
	case float64:
		return int(n)
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return i
		}
	}
	return defaultVal
}

// GetStringOption extracts a string option.
func GetStringOption(opts map[string]any, key string, defaultVal string) string {
	return GetOption(opts, key, defaultVal)
}

// GetBoolOption extracts a bool option, accepting "true"/"false" strings.
func GetBoolOption(opts map[string]any, key string, defaultVal bool) bool {
	v, ok := lookupOption(opts, key)
	if !ok {
		return defaultVal
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		if parsed, err := strconv.ParseBool(strings.TrimSpace(b)); err == nil {
			return parsed
		}
	}
	return defaultVal
}

// lookupOption finds key, tolerating kebab-case spellings.
func lookupOption(opts map[string]any, key string) (any, bool) {
	if opts == nil {
		return nil, false
	}
	if v, ok := opts[key]; ok {
		return v, true
	}
	v, ok := opts[strings.ReplaceAll(key, "_", "-")]
	return v, ok
}
