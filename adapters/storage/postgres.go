package storage

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"synergism-calc/core/report"
	"synergism-calc/internal/errors"
	"synergism-calc/internal/logging"
)

var schema = []string{`
	CREATE TABLE IF NOT EXISTS reports (
		id         uuid        PRIMARY KEY,
		profile    text        NOT NULL,
		created_at timestamptz NOT NULL,
		saved_at   timestamptz NOT NULL,
		body       jsonb       NOT NULL
	)`, `
	CREATE INDEX IF NOT EXISTS reports_profile_saved_at
		ON reports (profile, saved_at DESC)`,
}

// PostgresStore keeps records in a reports table
type PostgresStore struct {
	pool *pgxpool.Pool
	opts options
}

// NewPostgresStore connects to dsn and creates the reports table if needed
func NewPostgresStore(ctx context.Context, dsn string, opts ...Option) (*PostgresStore, error) {
	if dsn == "" {
		return nil, errors.Config("postgres storage needs a dsn", nil)
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, errors.Config("invalid postgres dsn", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Config("cannot reach postgres", err)
	}
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			pool.Close()
			return nil, errors.Internal("cannot create reports table", err)
		}
	}
	return &PostgresStore{pool: pool, opts: newOptions(opts)}, nil
}

func (s *PostgresStore) Save(ctx context.Context, rec *Record) error {
	if err := prepare(rec, s.opts.clock); err != nil {
		return err
	}
	body, err := json.Marshal(rec)
	if err != nil {
		return errors.Internal("cannot encode record", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO reports (id, profile, created_at, saved_at, body)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET profile = EXCLUDED.profile,
		    created_at = EXCLUDED.created_at,
		    saved_at = EXCLUDED.saved_at,
		    body = EXCLUDED.body
	`, rec.ID, rec.Profile, rec.CreatedAt, rec.Report.SavedAt, body)
	if err != nil {
		return errors.Internal("cannot store record", err)
	}

	logging.Debug("report stored",
		zap.String("id", rec.ID),
		zap.String("profile", rec.Profile),
		zap.String("backend", "postgres"))
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*Record, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}

	var body []byte
	err := s.pool.QueryRow(ctx, `SELECT body FROM reports WHERE id = $1`, id).Scan(&body)
	if stderrors.Is(err, pgx.ErrNoRows) {
		return nil, errors.NotFound("report", id)
	}
	if err != nil {
		return nil, errors.Internal("cannot read record", err)
	}
	return decodeRecord(body)
}

func decodeRecord(body []byte) (*Record, error) {
	var rec Record
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, errors.Parsing("corrupt record", err)
	}
	if rec.Report == nil {
		return nil, errors.Newf(errors.TypeParsing, "record %s has no report", rec.ID)
	}
	return &rec, nil
}

func (s *PostgresStore) List(ctx context.Context, filter *ListFilter) ([]*Record, error) {
	var (
		where []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if filter != nil {
		if filter.Profile != "" {
			where = append(where, "profile = "+arg(filter.Profile))
		}
		if !filter.Since.IsZero() {
			where = append(where, "saved_at >= "+arg(filter.Since))
		}
		if !filter.Until.IsZero() {
			where = append(where, "saved_at <= "+arg(filter.Until))
		}
	}

	query := "SELECT body FROM reports"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY saved_at DESC, created_at DESC, id ASC"
	if filter != nil && filter.Limit > 0 {
		query += " LIMIT " + arg(filter.Limit)
	}
	if filter != nil && filter.Offset > 0 {
		query += " OFFSET " + arg(filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Internal("cannot list records", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, errors.Internal("cannot read record", err)
		}
		rec, err := decodeRecord(body)
		if err != nil {
			logging.Warn("skipping unreadable record", zap.Error(err))
			continue
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Internal("cannot list records", err)
	}
	return records, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx, `DELETE FROM reports WHERE id = $1`, id)
	if err != nil {
		return errors.Internal("cannot delete record", err)
	}
	if tag.RowsAffected() == 0 {
		return errors.NotFound("report", id)
	}
	return nil
}

func (s *PostgresStore) Latest(ctx context.Context, profile string) (*Record, error) {
	return latest(ctx, s, profile)
}

func (s *PostgresStore) Compare(ctx context.Context, oldID, newID string) (*report.Comparison, error) {
	return compare(ctx, s, oldID, newID)
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
