package envbase

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteBackend is the embedded relational adapter. It stores entries in a
// two-column table inside a local database file, using the pure-Go
// modernc.org/sqlite driver so builds stay CGO-free.
type SQLiteBackend struct {
	db         *sql.DB
	table      string
	ownsClient bool // If true, Close() will close the database handle
}

// NewSQLiteBackend opens the database file at path, creating it when it
// does not exist, and verifies the handle with a ping.
func NewSQLiteBackend(ctx context.Context, path, table string) (*SQLiteBackend, error) {
	if err := ValidateCollection(table); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, NewDescriptorError(path, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, NewDescriptorError(path, err)
	}

	return &SQLiteBackend{db: db, table: table, ownsClient: true}, nil
}

// NewSQLiteBackendFromDB wraps a caller-supplied handle. The handle is left
// open when the backend is closed.
func NewSQLiteBackendFromDB(db *sql.DB, table string) (*SQLiteBackend, error) {
	if err := ValidateCollection(table); err != nil {
		return nil, err
	}
	return &SQLiteBackend{db: db, table: table}, nil
}

func (b *SQLiteBackend) Kind() BackendKind {
	return KindEmbeddedRelational
}

// EnsureSchema creates the entry table when it is missing. The table name
// has already passed ValidateCollection, so interpolating it is safe.
func (b *SQLiteBackend) EnsureSchema(ctx context.Context) error {
	_, err := b.db.ExecContext(ctx, fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (key TEXT PRIMARY KEY, value TEXT)", b.table))
	if err != nil {
		return fmt.Errorf("creating table %s: %w", b.table, err)
	}
	return nil
}

func (b *SQLiteBackend) LoadAll(ctx context.Context) ([]Entry, error) {
	rows, err := b.db.QueryContext(ctx, fmt.Sprintf("SELECT key, value FROM %s", b.table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Key, &e.Value); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (b *SQLiteBackend) Get(ctx context.Context, key string) (string, error) {
	key, err := NormalizeKey(key)
	if err != nil {
		return "", err
	}

	var value string
	err = b.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT value FROM %s WHERE key = ?", b.table), key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", WithContext(ErrNotFound, map[string]interface{}{
			"key":   key,
			"table": b.table,
		})
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (b *SQLiteBackend) Put(ctx context.Context, key, value string) error {
	key, err := NormalizeKey(key)
	if err != nil {
		return err
	}

	_, err = b.db.ExecContext(ctx, fmt.Sprintf(
		"INSERT INTO %s (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		b.table), key, value)
	return err
}

// Update rewrites an existing key in place, falling back to an insert when
// the key is absent.
func (b *SQLiteBackend) Update(ctx context.Context, key, value string) error {
	key, err := NormalizeKey(key)
	if err != nil {
		return err
	}

	var one int
	err = b.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT 1 FROM %s WHERE key = ?", b.table), key).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return b.Put(ctx, key, value)
	}
	if err != nil {
		return err
	}

	_, err = b.db.ExecContext(ctx,
		fmt.Sprintf("UPDATE %s SET value = ? WHERE key = ?", b.table), value, key)
	return err
}

// Delete removes a key and fails with ErrNotFound when no row matched.
func (b *SQLiteBackend) Delete(ctx context.Context, key string) error {
	key, err := NormalizeKey(key)
	if err != nil {
		return err
	}

	res, err := b.db.ExecContext(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE key = ?", b.table), key)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return WithContext(ErrNotFound, map[string]interface{}{
			"key":   key,
			"table": b.table,
		})
	}
	return nil
}

func (b *SQLiteBackend) Ping(ctx context.Context) error {
	return b.db.PingContext(ctx)
}

func (b *SQLiteBackend) Close(ctx context.Context) error {
	if !b.ownsClient {
		return nil
	}
	return b.db.Close()
}
