package envbase

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// PostgresBackend is the remote relational adapter, speaking native
// PostgreSQL through pgx. One connection per backend; connection pooling
// is the caller's concern via NewPostgresBackendFromConn.
type PostgresBackend struct {
	conn     *pgx.Conn
	table    string
	ident    string // table name sanitized for SQL interpolation
	ownsConn bool   // If true, Close() will close the connection
}

// NewPostgresBackend dials the server at url. The pgx handshake doubles as
// the liveness check; any dial or auth failure is reported as an invalid
// descriptor with the driver cause attached.
func NewPostgresBackend(ctx context.Context, url, table string) (*PostgresBackend, error) {
	if err := ValidateCollection(table); err != nil {
		return nil, err
	}

	conn, err := pgx.Connect(ctx, url)
	if err != nil {
		return nil, NewDescriptorError(url, err)
	}

	return &PostgresBackend{
		conn:     conn,
		table:    table,
		ident:    pgx.Identifier{table}.Sanitize(),
		ownsConn: true,
	}, nil
}

// NewPostgresBackendFromConn wraps a caller-supplied connection. The
// connection is left open when the backend is closed.
func NewPostgresBackendFromConn(conn *pgx.Conn, table string) (*PostgresBackend, error) {
	if err := ValidateCollection(table); err != nil {
		return nil, err
	}
	return &PostgresBackend{
		conn:  conn,
		table: table,
		ident: pgx.Identifier{table}.Sanitize(),
	}, nil
}

func (b *PostgresBackend) Kind() BackendKind {
	return KindRemoteRelational
}

func (b *PostgresBackend) EnsureSchema(ctx context.Context) error {
	_, err := b.conn.Exec(ctx, fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (key TEXT PRIMARY KEY, value TEXT)", b.ident))
	if err != nil {
		return fmt.Errorf("creating table %s: %w", b.table, err)
	}
	return nil
}

func (b *PostgresBackend) LoadAll(ctx context.Context) ([]Entry, error) {
	rows, err := b.conn.Query(ctx, fmt.Sprintf("SELECT key, value FROM %s", b.ident))
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

func (b *PostgresBackend) Get(ctx context.Context, key string) (string, error) {
	key, err := NormalizeKey(key)
	if err != nil {
		return "", err
	}

	var value string
	err = b.conn.QueryRow(ctx,
		fmt.Sprintf("SELECT value FROM %s WHERE key = $1", b.ident), key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
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

func (b *PostgresBackend) Put(ctx context.Context, key, value string) error {
	key, err := NormalizeKey(key)
	if err != nil {
		return err
	}

	_, err = b.conn.Exec(ctx, fmt.Sprintf(
		"INSERT INTO %s (key, value) VALUES ($1, $2) ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value",
		b.ident), key, value)
	return err
}

// Update has the same observable result as Put here: the single-statement
// upsert covers both the in-place rewrite and the insert-on-absent fallback.
func (b *PostgresBackend) Update(ctx context.Context, key, value string) error {
	return b.Put(ctx, key, value)
}

// Delete removes a key and fails with ErrNotFound when no row matched.
func (b *PostgresBackend) Delete(ctx context.Context, key string) error {
	key, err := NormalizeKey(key)
	if err != nil {
		return err
	}

	tag, err := b.conn.Exec(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE key = $1", b.ident), key)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return WithContext(ErrNotFound, map[string]interface{}{
			"key":   key,
			"table": b.table,
		})
	}
	return nil
}

func (b *PostgresBackend) Ping(ctx context.Context) error {
	return b.conn.Ping(ctx)
}

func (b *PostgresBackend) Close(ctx context.Context) error {
	if !b.ownsConn {
		return nil
	}
	return b.conn.Close(ctx)
}
