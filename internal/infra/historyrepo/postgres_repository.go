package historyrepo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/airquality-advisor/internal/domain/airquality"
)

const schema = `
CREATE TABLE IF NOT EXISTS assessment_history (
	id          UUID PRIMARY KEY,
	location    TEXT NOT NULL,
	country     TEXT NOT NULL DEFAULT '',
	latitude    DOUBLE PRECISION NOT NULL,
	longitude   DOUBLE PRECISION NOT NULL,
	aqi         SMALLINT NOT NULL,
	category    TEXT NOT NULL,
	condition   TEXT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS assessment_history_created_at_idx ON assessment_history (created_at DESC);
`

// PostgresRepository persists assessment history with pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs the repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// EnsureSchema creates the history table when missing.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, schema)
	return err
}

// Append inserts one assessment.
func (r *PostgresRepository) Append(ctx context.Context, record airquality.AssessmentRecord) error {
	id, err := uuid.Parse(record.ID)
	if err != nil {
		id = uuid.New()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO assessment_history (id, location, country, latitude, longitude, aqi, category, condition, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, id, record.Location, record.Country, record.Latitude, record.Longitude, record.AQI, record.Category, string(record.Condition), record.CreatedAt)
	return err
}

// ListRecent returns the newest assessments first.
func (r *PostgresRepository) ListRecent(ctx context.Context, limit int) ([]airquality.AssessmentRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, location, country, latitude, longitude, aqi, category, condition, created_at
		FROM assessment_history
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]airquality.AssessmentRecord, 0, limit)
	for rows.Next() {
		var (
			rec       airquality.AssessmentRecord
			id        uuid.UUID
			condition string
		)
		if err := rows.Scan(&id, &rec.Location, &rec.Country, &rec.Latitude, &rec.Longitude, &rec.AQI, &rec.Category, &condition, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.ID = id.String()
		rec.Condition = airquality.HealthCondition(condition)
		out = append(out, rec)
	}
	return out, rows.Err()
}

var _ airquality.HistoryRepository = (*PostgresRepository)(nil)
