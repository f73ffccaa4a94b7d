package envbase

import (
	"context"
	"time"
)

// Config describes everything a Session needs. All fields are optional
// except that a Store descriptor requires a Collection.
type Config struct {
	// EnvFile is a path to a .env, .json, .yaml or .yml file whose entries
	// are merged into the mirror during Initialize. File entries win over
	// store entries on key collision.
	EnvFile string

	// Store is the connection descriptor: a URL-ish string or a pre-built
	// driver handle. See Classify for the recognized forms. Nil means
	// file-only (or empty) operation.
	Store interface{}

	// Collection is the collection, table, or key-prefix namespace.
	// Required whenever Store is set.
	Collection string

	// Mirror receives every loaded and mutated entry. Defaults to the
	// process environment.
	Mirror Mirror

	// Logger defaults to NoOpLogger
	Logger Logger

	// Metrics defaults to NoOpMetrics
	Metrics Metrics
}

// Validate checks the configuration invariant: a store descriptor without a
// collection name is an error, as is a malformed collection name.
func (c Config) Validate() error {
	if c.Store == nil {
		return nil
	}
	return ValidateCollection(c.Collection)
}

// Session is the façade callers use: it owns one backend connection plus
// the mirror, and keeps both in sync across every operation.
//
// Lifecycle: New validates the configuration, Initialize connects and
// bulk-loads, then the CRUD methods route to the active backend. Store
// operations before Initialize fail with ErrNotInitialized; store
// operations on a session configured without a store descriptor fail with
// ErrNoStoreConfigured in any state.
//
// A Session performs one blocking operation at a time and holds no locks;
// callers sharing one across goroutines must coordinate externally.
type Session struct {
	cfg         Config
	mirror      Mirror
	logger      Logger
	metrics     Metrics
	backend     Backend
	kind        BackendKind
	initialized bool
}

// New creates a session in the configured-but-unconnected state.
func New(cfg Config) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Session{
		cfg:     cfg,
		mirror:  cfg.Mirror,
		logger:  cfg.Logger,
		metrics: cfg.Metrics,
	}
	if s.mirror == nil {
		s.mirror = NewProcessMirror()
	}
	if s.logger == nil {
		s.logger = &NoOpLogger{}
	}
	if s.metrics == nil {
		s.metrics = &NoOpMetrics{}
	}
	return s, nil
}

// Load is the one-call form: construct and initialize.
func Load(ctx context.Context, cfg Config) (*Session, error) {
	s, err := New(cfg)
	if err != nil {
		return nil, err
	}
	if err := s.Initialize(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Initialize connects to the store (when configured), bulk-loads its
// entries into the mirror, then merges the environment file (when
// configured) with file values winning on collision. With neither
// configured it succeeds trivially.
//
// A failure is terminal for this session: fix the configuration and build
// a new one. When the store loaded but the file failed, the store's
// entries stay in the mirror and the connection is released.
func (s *Session) Initialize(ctx context.Context) error {
	start := time.Now()

	if s.cfg.Store != nil {
		if err := s.connectAndLoad(ctx); err != nil {
			s.metrics.Increment(MetricInitError)
			return err
		}
	}

	if s.cfg.EnvFile != "" {
		entries, err := LoadEnvFile(s.cfg.EnvFile)
		if err != nil {
			s.metrics.Increment(MetricInitError)
			s.logger.Error("environment file rejected", "path", s.cfg.EnvFile, "error", err)
			s.teardownBackend(ctx)
			return err
		}
		for key, value := range entries {
			if err := s.mirror.Set(key, value); err != nil {
				s.metrics.Increment(MetricInitError)
				s.teardownBackend(ctx)
				return err
			}
		}
		s.logger.Debug("environment file merged", "path", s.cfg.EnvFile, "entries", len(entries))
	}

	s.initialized = true
	s.metrics.Timing(MetricInitDuration, time.Since(start))
	s.metrics.Increment(MetricInitSuccess)
	return nil
}

func (s *Session) connectAndLoad(ctx context.Context) error {
	backend, err := Open(ctx, s.cfg.Store, s.cfg.Collection)
	if err != nil {
		return err
	}
	s.backend = backend
	s.kind = backend.Kind()
	s.logger.Info("store connected", "kind", s.kind.String(), "collection", s.cfg.Collection)

	if err := backend.EnsureSchema(ctx); err != nil {
		s.teardownBackend(ctx)
		return err
	}

	start := time.Now()
	entries, err := backend.LoadAll(ctx)
	s.metrics.Timing(MetricLoadDuration, time.Since(start))
	if err != nil {
		s.metrics.Increment(MetricLoadError)
		s.teardownBackend(ctx)
		return err
	}

	for _, e := range entries {
		if err := s.mirror.Set(e.Key, e.Value); err != nil {
			s.teardownBackend(ctx)
			return err
		}
	}
	s.metrics.Increment(MetricLoadSuccess)
	s.logger.Debug("store entries mirrored", "entries", len(entries))
	return nil
}

func (s *Session) teardownBackend(ctx context.Context) {
	if s.backend == nil {
		return
	}
	if err := s.backend.Close(ctx); err != nil {
		s.logger.Warn("backend close failed", "error", err)
	}
	s.backend = nil
	s.kind = KindUnknown
}

// activeBackend guards every store operation with the session state rules.
func (s *Session) activeBackend() (Backend, error) {
	if s.cfg.Store == nil {
		return nil, ErrNoStoreConfigured
	}
	if !s.initialized || s.backend == nil {
		return nil, ErrNotInitialized
	}
	return s.backend, nil
}

// Kind reports the classified kind of the active store, or KindUnknown
// before initialization.
func (s *Session) Kind() BackendKind {
	return s.kind
}

// Mirror returns the session's mirror.
func (s *Session) Mirror() Mirror {
	return s.mirror
}

// Get returns the stored value for a key, or ErrNotFound. Lookups are
// case-insensitive: the key is upper-cased before it reaches the store.
func (s *Session) Get(ctx context.Context, key string) (string, error) {
	backend, err := s.activeBackend()
	if err != nil {
		return "", err
	}

	start := time.Now()
	value, err := backend.Get(ctx, key)
	s.metrics.Timing(MetricGetDuration, time.Since(start))

	if err != nil {
		s.metrics.Increment(MetricGetError)
		return "", err
	}
	s.metrics.Increment(MetricGetSuccess)
	return value, nil
}

// GetAll re-queries the store for every entry. It reads the store, not the
// mirror, so it reflects concurrent external writes.
func (s *Session) GetAll(ctx context.Context) ([]Entry, error) {
	backend, err := s.activeBackend()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	entries, err := backend.LoadAll(ctx)
	s.metrics.Timing(MetricLoadDuration, time.Since(start))

	if err != nil {
		s.metrics.Increment(MetricLoadError)
		return nil, err
	}
	s.metrics.Increment(MetricLoadSuccess)
	return entries, nil
}

// Put upserts a key in the store, then mirrors the new value.
func (s *Session) Put(ctx context.Context, key, value string) error {
	return s.write(ctx, key, value, MetricPutDuration, MetricPutSuccess, MetricPutError, false)
}

// Update rewrites a key in the store, inserting it when absent, then
// mirrors the new value.
func (s *Session) Update(ctx context.Context, key, value string) error {
	return s.write(ctx, key, value, MetricUpdateDuration, MetricUpdateSuccess, MetricUpdateError, true)
}

func (s *Session) write(ctx context.Context, key, value, durMetric, okMetric, errMetric string, isUpdate bool) error {
	backend, err := s.activeBackend()
	if err != nil {
		return err
	}

	normalized, err := NormalizeKey(key)
	if err != nil {
		return err
	}

	start := time.Now()
	if isUpdate {
		err = backend.Update(ctx, normalized, value)
	} else {
		err = backend.Put(ctx, normalized, value)
	}
	s.metrics.Timing(durMetric, time.Since(start))

	if err != nil {
		s.metrics.Increment(errMetric)
		return err
	}

	if err := s.mirror.Set(normalized, value); err != nil {
		s.metrics.Increment(errMetric)
		return err
	}
	s.metrics.Increment(okMetric)
	return nil
}

// Delete removes a key from the store, then from the mirror. Relational
// backends fail with ErrNotFound when the key is absent; document and
// cache backends treat that as a no-op, and the mirror is only touched
// when it actually held the key.
func (s *Session) Delete(ctx context.Context, key string) error {
	backend, err := s.activeBackend()
	if err != nil {
		return err
	}

	normalized, err := NormalizeKey(key)
	if err != nil {
		return err
	}

	start := time.Now()
	err = backend.Delete(ctx, normalized)
	s.metrics.Timing(MetricDeleteDuration, time.Since(start))

	if err != nil {
		s.metrics.Increment(MetricDeleteError)
		return err
	}

	// The document and cache adapters report success for an absent key; an
	// absent mirror entry is only divergence when the store actually held
	// the key, so the no-op case skips the mirror.
	if _, held := s.mirror.Lookup(normalized); !held {
		switch s.kind {
		case KindDocument, KindKeyValueCache:
			s.metrics.Increment(MetricDeleteSuccess)
			return nil
		}
	}

	if err := s.mirror.Unset(normalized); err != nil {
		s.metrics.Increment(MetricDeleteError)
		return err
	}
	s.metrics.Increment(MetricDeleteSuccess)
	return nil
}

// Close releases the backend connection. Connections built from
// caller-supplied handles are left open. Safe to call on a session that
// never connected.
func (s *Session) Close(ctx context.Context) error {
	if s.backend == nil {
		return nil
	}
	err := s.backend.Close(ctx)
	s.backend = nil
	s.kind = KindUnknown
	s.initialized = false
	return err
}
