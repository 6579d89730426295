package sink

import (
	"context"
	"database/sql"

	_ "github.com/lib/pq"
)

const createTable = `CREATE TABLE IF NOT EXISTS loadtest_roundtrips (
	run_id     TEXT NOT NULL,
	source     TEXT NOT NULL,
	worker     INTEGER NOT NULL,
	seq        INTEGER NOT NULL,
	latency_ms DOUBLE PRECISION NOT NULL,
	status     INTEGER NOT NULL,
	error      TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const insertRoundTrip = `INSERT INTO loadtest_roundtrips (run_id, source, worker, seq, latency_ms, status, error)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

type execCloser interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	Close() error
}

// Postgres stores every sample as a row in loadtest_roundtrips.
type Postgres struct {
	db execCloser
}

func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, createTable); err != nil {
		db.Close()
		return nil, err
	}
	return &Postgres{db: db}, nil
}

func (p *Postgres) Record(ctx context.Context, s Sample) error {
	var errText sql.NullString
	if s.Err != nil {
		errText = sql.NullString{String: s.Err.Error(), Valid: true}
	}
	_, err := p.db.ExecContext(ctx, insertRoundTrip,
		s.RunID, s.Source, s.Worker, s.Seq, s.Millis(), s.Status, errText)
	return err
}

func (p *Postgres) Close() error {
	return p.db.Close()
}
