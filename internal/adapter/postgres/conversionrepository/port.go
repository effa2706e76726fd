// Package conversionrepository stores conversion history in PostgreSQL
package conversionrepository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"gitlab.com/testsys2pcms.net/internal/core/ports/primary"
	"gitlab.com/testsys2pcms.net/internal/core/ports/secondary"
	"gitlab.com/testsys2pcms.net/internal/domain"
)

var _ secondary.ConversionRepository = (*ConversionRepository)(nil)

const schema = `
	CREATE TABLE IF NOT EXISTS conversions (
		id           UUID PRIMARY KEY,
		source_url   TEXT NOT NULL,
		digest       TEXT NOT NULL DEFAULT '',
		contest      TEXT NOT NULL DEFAULT '',
		status       TEXT NOT NULL,
		error        TEXT NOT NULL DEFAULT '',
		problems     INTEGER NOT NULL DEFAULT 0,
		sessions     INTEGER NOT NULL DEFAULT 0,
		runs         INTEGER NOT NULL DEFAULT 0,
		result       JSONB,
		created_at   TIMESTAMPTZ NOT NULL,
		completed_at TIMESTAMPTZ
	);
	CREATE INDEX IF NOT EXISTS conversions_created_at_idx ON conversions (created_at DESC);
`

// conversionRow mirrors the conversions table
type conversionRow struct {
	ID          uuid.UUID    `db:"id"`
	SourceURL   string       `db:"source_url"`
	Digest      string       `db:"digest"`
	Contest     string       `db:"contest"`
	Status      string       `db:"status"`
	Error       string       `db:"error"`
	Problems    int          `db:"problems"`
	Sessions    int          `db:"sessions"`
	Runs        int          `db:"runs"`
	Result      []byte       `db:"result"`
	CreatedAt   time.Time    `db:"created_at"`
	CompletedAt sql.NullTime `db:"completed_at"`
}

// ConversionRepository implements the ConversionRepository interface with PostgreSQL
type ConversionRepository struct {
	db     *sqlx.DB
	logger primary.Logger
}

// NewConversionRepository creates a new PostgreSQL conversion repository
func NewConversionRepository(db *sqlx.DB, logger primary.Logger) *ConversionRepository {
	return &ConversionRepository{
		db:     db,
		logger: logger,
	}
}

// EnsureSchema creates the conversions table when missing
func (r *ConversionRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		r.logger.Error("Failed to create conversions schema", "error", err)
		return fmt.Errorf("failed to create conversions schema: %w", err)
	}
	return nil
}

// Save saves a conversion to PostgreSQL
func (r *ConversionRepository) Save(ctx context.Context, conversion *domain.Conversion) error {
	row, err := toRow(conversion)
	if err != nil {
		r.logger.Error("Failed to marshal conversion result", "error", err)
		return err
	}

	query := `
		INSERT INTO conversions (
			id, source_url, digest, contest, status, error,
			problems, sessions, runs, result, created_at, completed_at
		) VALUES (
			:id, :source_url, :digest, :contest, :status, :error,
			:problems, :sessions, :runs, :result, :created_at, :completed_at
		)
		ON CONFLICT (id) DO UPDATE SET
			digest = EXCLUDED.digest,
			contest = EXCLUDED.contest,
			status = EXCLUDED.status,
			error = EXCLUDED.error,
			problems = EXCLUDED.problems,
			sessions = EXCLUDED.sessions,
			runs = EXCLUDED.runs,
			result = EXCLUDED.result,
			completed_at = EXCLUDED.completed_at
	`

	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		r.logger.Error("Failed to save conversion", "id", conversion.ID, "error", err)
		return fmt.Errorf("failed to save conversion: %w", err)
	}
	return nil
}

// Get retrieves a conversion by ID; nil when not found
func (r *ConversionRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Conversion, error) {
	query := `
		SELECT id, source_url, digest, contest, status, error,
			   problems, sessions, runs, result, created_at, completed_at
		FROM conversions
		WHERE id = $1
	`

	var row conversionRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get conversion", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get conversion: %w", err)
	}
	return fromRow(&row)
}

// List retrieves the most recent conversions, newest first, without results
func (r *ConversionRepository) List(ctx context.Context, limit int) ([]*domain.Conversion, error) {
	query := `
		SELECT id, source_url, digest, contest, status, error,
			   problems, sessions, runs, NULL AS result, created_at, completed_at
		FROM conversions
		ORDER BY created_at DESC
		LIMIT $1
	`

	var rows []conversionRow
	if err := r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		r.logger.Error("Failed to list conversions", "error", err)
		return nil, fmt.Errorf("failed to list conversions: %w", err)
	}

	conversions := make([]*domain.Conversion, 0, len(rows))
	for i := range rows {
		c, err := fromRow(&rows[i])
		if err != nil {
			return nil, err
		}
		conversions = append(conversions, c)
	}
	return conversions, nil
}

// Latest retrieves the most recent completed conversion; nil when there is none
func (r *ConversionRepository) Latest(ctx context.Context) (*domain.Conversion, error) {
	query := `
		SELECT id, source_url, digest, contest, status, error,
			   problems, sessions, runs, result, created_at, completed_at
		FROM conversions
		WHERE status = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	var row conversionRow
	if err := r.db.GetContext(ctx, &row, query, domain.ConversionStatusCompleted); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get latest conversion", "error", err)
		return nil, fmt.Errorf("failed to get latest conversion: %w", err)
	}
	return fromRow(&row)
}

func toRow(c *domain.Conversion) (*conversionRow, error) {
	row := &conversionRow{
		ID:        c.ID,
		SourceURL: c.SourceURL,
		Digest:    c.Digest,
		Contest:   c.Contest,
		Status:    string(c.Status),
		Error:     c.Error,
		Problems:  c.Problems,
		Sessions:  c.Sessions,
		Runs:      c.Runs,
		CreatedAt: c.CreatedAt,
	}
	if c.CompletedAt != nil {
		row.CompletedAt = sql.NullTime{Time: *c.CompletedAt, Valid: true}
	}
	if c.Result != nil {
		data, err := json.Marshal(c.Result)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal conversion result: %w", err)
		}
		row.Result = data
	}
	return row, nil
}

func fromRow(row *conversionRow) (*domain.Conversion, error) {
	c := &domain.Conversion{
		ID:        row.ID,
		SourceURL: row.SourceURL,
		Digest:    row.Digest,
		Contest:   row.Contest,
		Status:    domain.ConversionStatus(row.Status),
		Error:     row.Error,
		Problems:  row.Problems,
		Sessions:  row.Sessions,
		Runs:      row.Runs,
		CreatedAt: row.CreatedAt,
	}
	if row.CompletedAt.Valid {
		completedAt := row.CompletedAt.Time
		c.CompletedAt = &completedAt
	}
	if len(row.Result) > 0 {
		var result domain.ParsedResult
		if err := json.Unmarshal(row.Result, &result); err != nil {
			return nil, fmt.Errorf("failed to unmarshal conversion result: %w", err)
		}
		c.Result = &result
	}
	return c, nil
}
