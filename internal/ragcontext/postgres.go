package ragcontext

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/lib/pq"
)

// PostgresStore appends every import to a table and serves the newest one.
type PostgresStore struct {
	db    *sql.DB
	table string
}

// NewPostgres opens the database and creates the import table if needed.
func NewPostgres(dsn, table string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	s := newPostgresStore(db, table)
	if err := s.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func newPostgresStore(db *sql.DB, table string) *PostgresStore {
	if table == "" {
		table = "context_imports"
	}
	return &PostgresStore{db: db, table: pq.QuoteIdentifier(table)}
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			seq BIGSERIAL PRIMARY KEY,
			id UUID NOT NULL,
			body TEXT NOT NULL,
			created_at TIMESTAMPTZ DEFAULT now()
		);`, s.table),
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate context table: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) Set(ctx context.Context, text string) error {
	_, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s(id, body) VALUES($1,$2)`, s.table),
		uuid.New(), text)
	if err != nil {
		return fmt.Errorf("failed to save context: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context) (string, error) {
	var body string
	row := s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT body FROM %s ORDER BY seq DESC LIMIT 1`, s.table))
	if err := row.Scan(&body); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("failed to load context: %w", err)
	}
	return body, nil
}

func (s *PostgresStore) Has(ctx context.Context) (bool, error) {
	text, err := s.Get(ctx)
	if err != nil {
		return false, err
	}
	return text != "", nil
}

// Close closes the database handle.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
