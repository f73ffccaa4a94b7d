package envbase

import (
	"regexp"
	"strings"
	"unicode"
)

// collectionNamePattern restricts collection and table names to identifiers
// that are safe to interpolate into SQL and key namespaces.
var collectionNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// NormalizeKey validates an environment variable name and returns its
// canonical upper-case form. Keys are case-insensitive throughout: every
// store write, read, and mirror operation goes through this normalization,
// so "db_host" and "DB_HOST" address the same entry.
func NormalizeKey(key string) (string, error) {
	if key == "" {
		return "", WithContext(ErrInvalidKey, map[string]interface{}{
			"reason": "key is empty",
		})
	}
	for _, r := range key {
		if unicode.IsSpace(r) {
			return "", WithContext(ErrInvalidKey, map[string]interface{}{
				"key":    key,
				"reason": "key contains whitespace",
			})
		}
	}
	return strings.ToUpper(key), nil
}

// ValidateCollection checks a collection or table name against the
// identifier rules shared by all four adapters. Relational adapters
// interpolate the name into DDL, so anything outside [A-Za-z0-9_] with a
// non-digit first character is rejected.
func ValidateCollection(name string) error {
	if name == "" {
		return WithContext(ErrInvalidCollection, map[string]interface{}{
			"reason": "collection name is empty",
		})
	}
	if !collectionNamePattern.MatchString(name) {
		return WithContext(ErrInvalidCollection, map[string]interface{}{
			"collection": name,
			"reason":     "must match [A-Za-z_][A-Za-z0-9_]*",
		})
	}
	return nil
}
