package envbase

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// envFilePattern matches KEY=value and KEY="value" assignments. The (?s)
// flag lets a quoted value span multiple lines; embedded newlines are
// stripped from the captured value afterwards.
var envFilePattern = regexp.MustCompile(`(?s)(\w+)\s*=\s*(?:"(.*?)"|([^"\n]+))`)

// LoadEnvFile parses an environment file and returns its entries with
// upper-cased keys. The format is chosen by file extension:
//
//   - .env          KEY=value lines, values optionally double-quoted
//   - .json         a flat string-to-string object
//   - .yaml / .yml  a flat string-to-string mapping
//
// Any other extension, and any file whose content does not parse as a flat
// string-to-string document, fails with ErrInvalidEnvFile. A missing file
// surfaces the underlying filesystem error unchanged.
//
// The whole file is parsed before anything is returned, so a malformed file
// never yields a partial result.
func LoadEnvFile(path string) (map[string]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading environment file: %w", err)
	}

	switch {
	case strings.HasSuffix(path, ".env"):
		return parseDotEnv(content), nil
	case strings.HasSuffix(path, ".json"):
		return parseJSONEnv(path, content)
	case strings.HasSuffix(path, ".yaml"), strings.HasSuffix(path, ".yml"):
		return parseYAMLEnv(path, content)
	default:
		return nil, WithContext(ErrInvalidEnvFile, map[string]interface{}{
			"path":   path,
			"reason": "unsupported extension, want .env, .json, .yaml or .yml",
		})
	}
}

// parseDotEnv extracts KEY=value assignments. A quoted value may span
// lines; its newlines are removed so the resulting variable is single-line.
// Later assignments of the same key win.
func parseDotEnv(content []byte) map[string]string {
	entries := make(map[string]string)
	for _, m := range envFilePattern.FindAllStringSubmatch(string(content), -1) {
		key, quoted, unquoted := m[1], m[2], m[3]
		value := quoted
		if value == "" {
			value = unquoted
		}
		entries[strings.ToUpper(key)] = strings.ReplaceAll(value, "\n", "")
	}
	return entries
}

func parseJSONEnv(path string, content []byte) (map[string]string, error) {
	var raw map[string]string
	if err := json.Unmarshal(content, &raw); err != nil {
		return nil, &ErrorWithContext{
			Err: fmt.Errorf("%w: %v", ErrInvalidEnvFile, err),
			Context: map[string]interface{}{
				"path":   path,
				"format": "json",
			},
		}
	}
	return upperKeys(raw), nil
}

func parseYAMLEnv(path string, content []byte) (map[string]string, error) {
	var raw map[string]string
	if err := yaml.Unmarshal(content, &raw); err != nil {
		return nil, &ErrorWithContext{
			Err: fmt.Errorf("%w: %v", ErrInvalidEnvFile, err),
			Context: map[string]interface{}{
				"path":   path,
				"format": "yaml",
			},
		}
	}
	return upperKeys(raw), nil
}

func upperKeys(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[strings.ToUpper(k)] = v
	}
	return out
}
