// Package prompts loads the LLM prompt templates embedded in the binary.
// Templates live in JSON files keyed by prompt name and use {{.Key}} placeholders.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// AnalysisFile holds the prompts used to turn raw text into a suggestion
const AnalysisFile = "analysis.json"

// Prompt keys in AnalysisFile
const (
	KeySystem         = "system"
	KeyAnalyzeContent = "analyze-content"
)

//go:embed *.json
var promptFiles embed.FS

var (
	cache   = make(map[string]map[string]string)
	cacheMu sync.RWMutex
)

// Get retrieves a prompt by filename and key
func Get(filename, key string) (string, error) {
	prompts, err := loadFile(filename)
	if err != nil {
		return "", err
	}

	prompt, exists := prompts[key]
	if !exists {
		return "", fmt.Errorf("prompt key %q not found in %s", key, filename)
	}

	return prompt, nil
}

// Render retrieves a prompt and fills its placeholders. A placeholder left
// unfilled is an error so a renamed key cannot silently reach the model.
func Render(filename, key string, data map[string]string) (string, error) {
	template, err := Get(filename, key)
	if err != nil {
		return "", err
	}

	for _, name := range Placeholders(template) {
		if _, ok := data[name]; !ok {
			return "", fmt.Errorf("prompt %s/%s has unfilled placeholder {{.%s}}", filename, key, name)
		}
	}
	return Format(template, data), nil
}

// Placeholders returns the distinct {{.Key}} names used in template, in order of appearance
func Placeholders(template string) []string {
	var keys []string
	seen := make(map[string]bool)
	rest := template
	for {
		start := strings.Index(rest, "{{.")
		if start < 0 {
			return keys
		}
		rest = rest[start+3:]
		end := strings.Index(rest, "}}")
		if end < 0 {
			return keys
		}
		key := rest[:end]
		rest = rest[end+2:]
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
}

// Format replaces template placeholders in the form {{.Key}} with values from data.
// Substitution is a single pass, so values are never re-scanned for placeholders.
// Placeholders without a value are left as they are.
func Format(template string, data map[string]string) string {
	var sb strings.Builder
	rest := template
	for {
		start := strings.Index(rest, "{{.")
		if start < 0 {
			sb.WriteString(rest)
			return sb.String()
		}
		end := strings.Index(rest[start:], "}}")
		if end < 0 {
			sb.WriteString(rest)
			return sb.String()
		}
		end += start
		sb.WriteString(rest[:start])
		if value, ok := data[rest[start+3:end]]; ok {
			sb.WriteString(value)
		} else {
			sb.WriteString(rest[start : end+2])
		}
		rest = rest[end+2:]
	}
}

func loadFile(filename string) (map[string]string, error) {
	cacheMu.RLock()
	if prompts, exists := cache[filename]; exists {
		cacheMu.RUnlock()
		return prompts, nil
	}
	cacheMu.RUnlock()

	data, err := promptFiles.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file %s: %w", filename, err)
	}

	var prompts map[string]string
	if err := json.Unmarshal(data, &prompts); err != nil {
		return nil, fmt.Errorf("failed to parse prompt file %s: %w", filename, err)
	}

	cacheMu.Lock()
	cache[filename] = prompts
	cacheMu.Unlock()

	return prompts, nil
}

// ClearCache clears the prompt cache. Useful for testing.
func ClearCache() {
	cacheMu.Lock()
	cache = make(map[string]map[string]string)
	cacheMu.Unlock()
}

// List returns the prompt keys in a file, sorted
func List(filename string) ([]string, error) {
	prompts, err := loadFile(filename)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(prompts))
	for key := range prompts {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}
