package envbase

import "os"

// Mirror is the destination environment kept in sync with a backing store.
// Keys handed to a Mirror are already in canonical upper-case form.
//
// Implementations are not internally locked. The session performs one
// blocking operation at a time; callers that share a mirror across
// goroutines must coordinate externally.
type Mirror interface {
	// Set writes or replaces a key
	Set(key, value string) error

	// Unset removes a key. Removing a key the mirror does not hold fails
	// with ErrMirrorDiverged: the store and the mirror have drifted apart
	// and silently continuing would hide the corruption.
	Unset(key string) error

	// Lookup reports a key's value and whether it is present
	Lookup(key string) (string, bool)

	// Len reports how many keys the mirror holds
	Len() int
}

// ProcessMirror mirrors entries into the real process environment via
// os.Setenv and friends. It is the default mirror for a Session.
//
// The process environment is global state shared with everything else in
// the process, so Len counts all variables, not only the ones this package
// wrote.
type ProcessMirror struct{}

// NewProcessMirror returns a mirror over the process environment
func NewProcessMirror() *ProcessMirror {
	return &ProcessMirror{}
}

func (m *ProcessMirror) Set(key, value string) error {
	return os.Setenv(key, value)
}

func (m *ProcessMirror) Unset(key string) error {
	if _, ok := os.LookupEnv(key); !ok {
		return WithContext(ErrMirrorDiverged, map[string]interface{}{
			"key":    key,
			"reason": "key deleted from store but absent from process environment",
		})
	}
	return os.Unsetenv(key)
}

func (m *ProcessMirror) Lookup(key string) (string, bool) {
	return os.LookupEnv(key)
}

func (m *ProcessMirror) Len() int {
	return len(os.Environ())
}

// MapMirror is an in-memory mirror for tests and for embedding the loader
// in programs that must not touch the process environment.
type MapMirror struct {
	entries map[string]string
}

// NewMapMirror returns an empty in-memory mirror
func NewMapMirror() *MapMirror {
	return &MapMirror{entries: make(map[string]string)}
}

func (m *MapMirror) Set(key, value string) error {
	m.entries[key] = value
	return nil
}

func (m *MapMirror) Unset(key string) error {
	if _, ok := m.entries[key]; !ok {
		return WithContext(ErrMirrorDiverged, map[string]interface{}{
			"key":    key,
			"reason": "key deleted from store but absent from mirror",
		})
	}
	delete(m.entries, key)
	return nil
}

func (m *MapMirror) Lookup(key string) (string, bool) {
	v, ok := m.entries[key]
	return v, ok
}

func (m *MapMirror) Len() int {
	return len(m.entries)
}

// Snapshot returns a copy of the mirror's entries
func (m *MapMirror) Snapshot() map[string]string {
	out := make(map[string]string, len(m.entries))
	for k, v := range m.entries {
		out[k] = v
	}
	return out
}
