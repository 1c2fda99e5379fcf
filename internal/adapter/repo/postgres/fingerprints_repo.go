package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/hireloop/ai-hiring-evaluator/internal/domain"
)

// PgxPool is the minimal subset of pgxpool used by the repo for easy testing.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// FingerprintRepo is the append-only fingerprint corpus backed by PostgreSQL.
type FingerprintRepo struct{ Pool PgxPool }

// NewFingerprintRepo constructs a FingerprintRepo with the given pool.
func NewFingerprintRepo(p PgxPool) *FingerprintRepo { return &FingerprintRepo{Pool: p} }

// fingerprintEntropy is shared across concurrent Append calls, so the
// monotonic reader needs the locked wrapper.
var fingerprintEntropy = &ulid.LockedMonotonicReader{MonotonicReader: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)} //nolint:gosec // Weak random is sufficient for ULID entropy.

// EnsureSchema creates the fingerprint table when it does not exist yet.
func (r *FingerprintRepo) EnsureSchema(ctx context.Context) error {
	q := `CREATE TABLE IF NOT EXISTS resume_fingerprints (
		id TEXT PRIMARY KEY,
		hash TEXT NOT NULL,
		features JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`
	if _, err := r.Pool.Exec(ctx, q); err != nil {
		return fmt.Errorf("op=fingerprints.ensure_schema: %w", err)
	}
	return nil
}

// List loads the whole corpus ordered by insertion time.
func (r *FingerprintRepo) List(ctx domain.Context) ([]domain.Fingerprint, error) {
	tracer := otel.Tracer("repo.fingerprints")
	ctx, span := tracer.Start(ctx, "fingerprints.List")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "resume_fingerprints"),
	)

	q := `SELECT id, hash, features, created_at FROM resume_fingerprints ORDER BY created_at`
	rows, err := r.Pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("op=fingerprints.list: %w", err)
	}
	defer rows.Close()

	var out []domain.Fingerprint
	for rows.Next() {
		var fp domain.Fingerprint
		var features []byte
		if err := rows.Scan(&fp.ID, &fp.Hash, &features, &fp.CreatedAt); err != nil {
			return nil, fmt.Errorf("op=fingerprints.list: scan: %w", err)
		}
		if err := json.Unmarshal(features, &fp.Features); err != nil {
			return nil, fmt.Errorf("op=fingerprints.list: decode features: %w", err)
		}
		out = append(out, fp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("op=fingerprints.list: %w", err)
	}
	return out, nil
}

// Append stores one fingerprint, generating an id when absent. The insert is
// retried briefly so a transient connection drop does not lose the corpus
// entry for an accepted resume.
func (r *FingerprintRepo) Append(ctx domain.Context, fp domain.Fingerprint) error {
	tracer := otel.Tracer("repo.fingerprints")
	ctx, span := tracer.Start(ctx, "fingerprints.Append")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.sql.table", "resume_fingerprints"),
	)

	id := fp.ID
	if id == "" {
		uid, err := ulid.New(ulid.Timestamp(time.Now()), fingerprintEntropy)
		if err != nil {
			return fmt.Errorf("op=fingerprints.append: id: %w", err)
		}
		id = uid.String()
	}
	createdAt := fp.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	features, err := json.Marshal(fp.Features)
	if err != nil {
		return fmt.Errorf("op=fingerprints.append: encode features: %w", err)
	}

	q := `INSERT INTO resume_fingerprints (id, hash, features, created_at) VALUES ($1,$2,$3,$4)`
	op := func() error {
		_, err := r.Pool.Exec(ctx, q, id, fp.Hash, features, createdAt)
		return err
	}
	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = 100 * time.Millisecond
	expo.MaxElapsedTime = 3 * time.Second
	if err := backoff.Retry(op, backoff.WithContext(expo, ctx)); err != nil {
		return fmt.Errorf("op=fingerprints.append: %w", err)
	}
	return nil
}

// Count returns the corpus size.
func (r *FingerprintRepo) Count(ctx domain.Context) (int64, error) {
	tracer := otel.Tracer("repo.fingerprints")
	ctx, span := tracer.Start(ctx, "fingerprints.Count")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", "COUNT"),
		attribute.String("db.sql.table", "resume_fingerprints"),
	)

	row := r.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM resume_fingerprints`)
	var count int64
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("op=fingerprints.count: %w", err)
	}
	return count, nil
}
