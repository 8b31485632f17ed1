package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/comitanigiacomo/kanso-tracker/internal/core/domain"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var _ domain.RemoteStore = (*PostgresRemoteStore)(nil)

const (
	uniqueViolation = "23505"

	instagramPKey    = "instagram_data_pkey"
	instagramDateKey = "instagram_data_user_date_key"
	// name postgres generated before the constraint was named explicitly
	legacyInstagramDateKey = "instagram_data_user_id_date_key"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS habits_data (
		id         UUID PRIMARY KEY,
		user_id    TEXT NOT NULL UNIQUE,
		habit_data JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS instagram_data (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL,
		date       DATE NOT NULL,
		followers  INTEGER NOT NULL CHECK (followers >= 0),
		following  INTEGER,
		posts      INTEGER,
		notes      TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT instagram_data_user_date_key UNIQUE (user_id, date)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_instagram_data_user_date ON instagram_data (user_id, date)`,
}

type PostgresRemoteStore struct {
	db *sqlx.DB
}

func NewPostgresRemoteStore(db *sqlx.DB) *PostgresRemoteStore {
	return &PostgresRemoteStore{db: db}
}

// EnsureSchema creates the tables when they do not exist yet.
func (r *PostgresRemoteStore) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("repository: schema setup failed: %w", err)
		}
	}
	return nil
}

func (r *PostgresRemoteStore) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *PostgresRemoteStore) LoadHabits(ctx context.Context, userID string) ([]byte, error) {
	var doc []byte
	err := r.db.QueryRowContext(ctx, `SELECT habit_data FROM habits_data WHERE user_id = $1`, userID).Scan(&doc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("repository: load habits failed: %w", err)
	}
	return doc, nil
}

func (r *PostgresRemoteStore) SaveHabits(ctx context.Context, userID string, doc []byte) error {
	query := `
		INSERT INTO habits_data (id, user_id, habit_data, created_at, updated_at)
		VALUES ($1, $2, $3::jsonb, $4, $4)
		ON CONFLICT (user_id) DO UPDATE SET
			habit_data = EXCLUDED.habit_data,
			updated_at = EXCLUDED.updated_at`

	_, err := r.db.ExecContext(ctx, query, uuid.NewString(), userID, string(doc), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("repository: save habits failed: %w", err)
	}
	return nil
}

type instagramRow struct {
	ID        string         `db:"id"`
	Date      time.Time      `db:"date"`
	Followers int            `db:"followers"`
	Following sql.NullInt64  `db:"following"`
	Posts     sql.NullInt64  `db:"posts"`
	Notes     sql.NullString `db:"notes"`
}

func (row instagramRow) toDomain() domain.InstagramEntry {
	e := domain.InstagramEntry{
		ID:        row.ID,
		Date:      domain.FormatDate(row.Date),
		Followers: row.Followers,
		Notes:     row.Notes.String,
	}
	if row.Following.Valid {
		v := int(row.Following.Int64)
		e.Following = &v
	}
	if row.Posts.Valid {
		v := int(row.Posts.Int64)
		e.Posts = &v
	}
	return e
}

func (r *PostgresRemoteStore) LoadInstagram(ctx context.Context, userID string) ([]domain.InstagramEntry, error) {
	query := `
		SELECT id, date, followers, following, posts, notes
		FROM instagram_data
		WHERE user_id = $1
		ORDER BY date ASC`

	var rows []instagramRow
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("repository: load instagram data failed: %w", err)
	}

	entries := make([]domain.InstagramEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, row.toDomain())
	}
	return entries, nil
}

func nullableInt(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// ReplaceInstagram swaps every row of userID for entries in one transaction.
func (r *PostgresRemoteStore) ReplaceInstagram(ctx context.Context, userID string, entries []domain.InstagramEntry) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("repository: begin tx failed: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM instagram_data WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("repository: clear instagram data failed: %w", err)
	}

	query := `
		INSERT INTO instagram_data (id, user_id, date, followers, following, posts, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)`

	now := time.Now().UTC()
	for _, e := range entries {
		_, err := tx.ExecContext(ctx, query,
			e.ID, userID, e.Date, e.Followers,
			nullableInt(e.Following), nullableInt(e.Posts), nullableString(e.Notes), now,
		)
		if err != nil {
			if constraint, ok := uniqueViolationOn(err); ok {
				switch constraint {
				case instagramPKey:
					return fmt.Errorf("repository: %w: %s", domain.ErrDuplicateEntryID, e.ID)
				case instagramDateKey, legacyInstagramDateKey:
					return fmt.Errorf("repository: %w: %s", domain.ErrDuplicateEntryDate, e.Date)
				}
			}
			return fmt.Errorf("repository: insert instagram entry failed: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("repository: commit instagram data failed: %w", err)
	}
	return nil
}

// uniqueViolationOn reports the violated constraint for a unique violation
// raised by either postgres driver.
func uniqueViolationOn(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName, pgErr.Code == uniqueViolation
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Constraint, pqErr.Code == uniqueViolation
	}
	return "", false
}
