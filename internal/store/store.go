package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	json "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/fospace/api/schemas"
)

// DBPool is an interface that abstracts the pgxpool.Pool to allow for mocking in tests.
type DBPool interface {
	Ping(ctx context.Context) error
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
	Close()
}

const schemaDDL = `
        CREATE TABLE IF NOT EXISTS section_results (
            run_id      TEXT NOT NULL,
            section_id  TEXT NOT NULL,
            groups      INTEGER NOT NULL,
            atoms       JSONB NOT NULL,
            duration_us BIGINT NOT NULL,
            resolved_at TIMESTAMPTZ NOT NULL,
            PRIMARY KEY (run_id, section_id)
        );
        CREATE TABLE IF NOT EXISTS notifications (
            run_id     TEXT NOT NULL,
            section_id TEXT NOT NULL,
            seq        INTEGER NOT NULL,
            element    TEXT NOT NULL,
            kind       TEXT NOT NULL,
            side       TEXT NOT NULL,
            outcome    TEXT NOT NULL,
            eff_min    BIGINT,
            eff_opt    BIGINT,
            eff_max    BIGINT,
            PRIMARY KEY (run_id, section_id, seq)
        );
    `

const sqlInsertResult = `
        INSERT INTO section_results (run_id, section_id, groups, atoms, duration_us, resolved_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (run_id, section_id) DO UPDATE SET
            groups = EXCLUDED.groups,
            atoms = EXCLUDED.atoms,
            duration_us = EXCLUDED.duration_us,
            resolved_at = EXCLUDED.resolved_at;
    `

var notificationColumns = []string{"run_id", "section_id", "seq", "element", "kind", "side", "outcome", "eff_min", "eff_opt", "eff_max"}

// Store persists section results in PostgreSQL.
type Store struct {
	pool DBPool
	log  *zap.Logger
}

// Connect opens a pgx pool for url and wraps it in a Store.
func Connect(ctx context.Context, url string, logger *zap.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	s, err := New(ctx, pool, logger)
	if err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// New creates a new store instance and verifies the connection.
func New(ctx context.Context, pool DBPool, logger *zap.Logger) (*Store, error) {
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{
		pool: pool,
		log:  logger.Named("store"),
	}, nil
}

// Migrate creates the tables if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close releases the pool.
func (s *Store) Close() {
	s.pool.Close()
}

// PersistResult stores a section result and its notifications in one transaction.
// Re-persisting a section of the same run replaces the row; notifications are
// keyed by their sequence number and must not be persisted twice.
func (s *Store) PersistResult(ctx context.Context, res *schemas.SectionResult) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := s.persist(ctx, tx, res); err != nil {
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
			s.log.Error("Failed to rollback transaction", zap.Error(rollbackErr))
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	s.log.Debug("Persisted section result",
		zap.String("run_id", res.RunID),
		zap.String("section_id", res.SectionID),
		zap.Int("notifications", len(res.Notifications)))
	return nil
}

func (s *Store) persist(ctx context.Context, tx pgx.Tx, res *schemas.SectionResult) error {
	atoms, err := json.Marshal(res.Resolved)
	if err != nil {
		return fmt.Errorf("failed to encode atoms: %w", err)
	}
	if _, err := tx.Exec(ctx, sqlInsertResult,
		res.RunID, res.SectionID, res.Groups, atoms,
		res.Duration.Microseconds(), res.ResolvedAt.UTC(),
	); err != nil {
		return fmt.Errorf("failed to insert section result: %w", err)
	}

	if len(res.Notifications) == 0 {
		return nil
	}
	rows := make([][]interface{}, len(res.Notifications))
	for i, n := range res.Notifications {
		var lo, opt, hi *int64
		if n.Effective != nil {
			lo, opt, hi = &n.Effective.Min, &n.Effective.Opt, &n.Effective.Max
		}
		rows[i] = []interface{}{res.RunID, res.SectionID, i, n.Element, n.Kind, n.Side, n.Outcome, lo, opt, hi}
	}

	copyCount, err := tx.CopyFrom(ctx, pgx.Identifier{"notifications"}, notificationColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("failed to copy notifications: %w", err)
	}
	if int(copyCount) != len(rows) {
		return fmt.Errorf("mismatch in copied notifications count: expected %d, got %d", len(rows), copyCount)
	}
	return nil
}

// GetNotifications returns the notifications recorded for a section, in delivery order.
func (s *Store) GetNotifications(ctx context.Context, runID, sectionID string) ([]schemas.NotificationRecord, error) {
	query := `
        SELECT element, kind, side, outcome, eff_min, eff_opt, eff_max
        FROM notifications
        WHERE run_id = $1 AND section_id = $2
        ORDER BY seq ASC;
    `
	rows, err := s.pool.Query(ctx, query, runID, sectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	var records []schemas.NotificationRecord
	for rows.Next() {
		var rec schemas.NotificationRecord
		var lo, opt, hi *int64
		if err := rows.Scan(&rec.Element, &rec.Kind, &rec.Side, &rec.Outcome, &lo, &opt, &hi); err != nil {
			return nil, fmt.Errorf("failed to scan notification row: %w", err)
		}
		if lo != nil && opt != nil && hi != nil {
			rec.Effective = &schemas.Length{Min: *lo, Opt: *opt, Max: *hi}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}
	return records, nil
}

// ResultAge reports how long ago a section of a run was resolved.
func (s *Store) ResultAge(ctx context.Context, runID, sectionID string) (time.Duration, error) {
	rows, err := s.pool.Query(ctx, `SELECT resolved_at FROM section_results WHERE run_id = $1 AND section_id = $2`, runID, sectionID)
	if err != nil {
		return 0, fmt.Errorf("failed to query section result: %w", err)
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return 0, fmt.Errorf("error during row iteration: %w", err)
		}
		return 0, pgx.ErrNoRows
	}
	var resolvedAt time.Time
	if err := rows.Scan(&resolvedAt); err != nil {
		return 0, fmt.Errorf("failed to scan section result: %w", err)
	}
	return time.Since(resolvedAt), nil
}
