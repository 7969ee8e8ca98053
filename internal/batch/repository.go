package batch

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/ocx/roguevm/internal/errs"
	"github.com/ocx/roguevm/internal/gstate"
)

// Repository persists ActionBatch rows. The session worker mesh talks to
// this interface, never to *sql.DB directly, so tests can swap in an
// in-memory fake.
type Repository interface {
	Create(ctx context.Context, b *ActionBatch) error
	Update(ctx context.Context, b *ActionBatch) error
	Get(ctx context.Context, sessionID string, startNonce gstate.Nonce) (*ActionBatch, error)
	OldestByStatus(ctx context.Context, status Status) (*ActionBatch, error)
}

// PostgresRepository is the lib/pq-backed Repository implementation.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository opens and pings a Postgres connection.
func NewPostgresRepository(dsn string) (*PostgresRepository, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &PostgresRepository{db: db}, nil
}

func (r *PostgresRepository) Close() error { return r.db.Close() }

const schemaDDL = `
CREATE TABLE IF NOT EXISTS action_batches (
	session_id   TEXT NOT NULL,
	start_nonce  BIGINT NOT NULL,
	end_nonce    BIGINT NOT NULL,
	status       SMALLINT NOT NULL,
	retry_count  INT NOT NULL DEFAULT 0,
	proof_journal BYTEA,
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (session_id, start_nonce)
);`

// EnsureSchema creates the action_batches table if it does not exist.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, schemaDDL)
	return err
}

func (r *PostgresRepository) Create(ctx context.Context, b *ActionBatch) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO action_batches (session_id, start_nonce, end_nonce, status, retry_count, proof_journal)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		b.SessionID, uint64(b.StartNonce), uint64(b.EndNonce), int32(b.Status), b.RetryCount, b.Journal)
	return err
}

func (r *PostgresRepository) Update(ctx context.Context, b *ActionBatch) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE action_batches
		SET end_nonce = $3, status = $4, retry_count = $5, proof_journal = $6, updated_at = now()
		WHERE session_id = $1 AND start_nonce = $2`,
		b.SessionID, uint64(b.StartNonce), uint64(b.EndNonce), int32(b.Status), b.RetryCount, b.Journal)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errs.New(errs.KindBatchNotRdy, "no batch row to update")
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, sessionID string, startNonce gstate.Nonce) (*ActionBatch, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT session_id, start_nonce, end_nonce, status, retry_count, proof_journal, updated_at
		FROM action_batches WHERE session_id = $1 AND start_nonce = $2`,
		sessionID, uint64(startNonce))
	return scanBatch(row)
}

// OldestByStatus returns the oldest batch in the given status by
// updated_at, used by the prover worker to pick its next unit of work
// before leasing it in Redis.
func (r *PostgresRepository) OldestByStatus(ctx context.Context, status Status) (*ActionBatch, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT session_id, start_nonce, end_nonce, status, retry_count, proof_journal, updated_at
		FROM action_batches WHERE status = $1 ORDER BY updated_at ASC LIMIT 1`,
		int32(status))
	return scanBatch(row)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBatch(row scanner) (*ActionBatch, error) {
	var (
		sessionID  string
		startNonce uint64
		endNonce   uint64
		status     int32
		retryCount int32
		journal    []byte
		updatedAt  time.Time
	)
	if err := row.Scan(&sessionID, &startNonce, &endNonce, &status, &retryCount, &journal, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, errs.New(errs.KindBatchNotRdy, "no batch found")
		}
		return nil, err
	}
	return &ActionBatch{
		SessionID:  sessionID,
		StartNonce: gstate.Nonce(startNonce),
		EndNonce:   gstate.Nonce(endNonce),
		Status:     Status(status),
		RetryCount: retryCount,
		Journal:    journal,
		UpdatedAt:  updatedAt,
	}, nil
}
