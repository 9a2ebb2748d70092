package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"discipline_tracker/internal/domain/discipline"
)

// Custom errors
var ErrRecordNotFound = fmt.Errorf("weekly record not found")
var ErrDuplicateRecord = fmt.Errorf("weekly record for this subject and week already exists")

const pqUniqueViolation = "23505"

// PostgresRecordRepository persists WeeklyRecord entities. The per-kind day
// flags live in a single JSONB document per row; Save merges partial
// updates into that document inside a transaction holding a row lock, so
// concurrent saves for the same (subject, week) cannot lose each other's
// days.
type PostgresRecordRepository struct {
	db *sql.DB
}

func NewPostgresRecordRepository(db *sql.DB) *PostgresRecordRepository {
	return &PostgresRecordRepository{db: db}
}

const recordColumns = `id, subject_id, week_start, week_end, disciplines, reflection, reflection_submitted_at, created_at, updated_at`

func scanRecord(row interface{ Scan(...any) error }) (*discipline.WeeklyRecord, error) {
	rec := &discipline.WeeklyRecord{}
	var disciplinesJSON []byte
	err := row.Scan(&rec.ID, &rec.SubjectID, &rec.WeekStart, &rec.WeekEnd,
		&disciplinesJSON, &rec.Reflection, &rec.ReflectionSubmittedAt, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(disciplinesJSON, &rec.Disciplines); err != nil {
		return nil, fmt.Errorf("error decoding disciplines document: %w", err)
	}
	return rec, nil
}

func (r *PostgresRecordRepository) Find(ctx context.Context, subjectID string, weekStart time.Time) (*discipline.WeeklyRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM weekly_records WHERE subject_id = $1 AND week_start = $2`
	rec, err := scanRecord(r.db.QueryRowContext(ctx, query, subjectID, weekStart))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("error finding weekly record: %w", err)
	}
	return rec, nil
}

func (r *PostgresRecordRepository) FindMany(ctx context.Context, subjectIDs []string, weekStart time.Time) ([]*discipline.WeeklyRecord, error) {
	if len(subjectIDs) == 0 {
		return []*discipline.WeeklyRecord{}, nil
	}
	query := `SELECT ` + recordColumns + ` FROM weekly_records WHERE subject_id = ANY($1) AND week_start = $2`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(subjectIDs), weekStart)
	if err != nil {
		return nil, fmt.Errorf("error finding weekly records: %w", err)
	}
	defer rows.Close()
	return collectRecords(rows)
}

// Save upserts by (SubjectID, WeekStart). The incoming record's
// Disciplines are merged into the stored document by kind key; a valid
// Reflection overwrites the stored one along with its timestamp. On return
// rec holds the merged persisted state.
func (r *PostgresRecordRepository) Save(ctx context.Context, rec *discipline.WeeklyRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error beginning save transaction: %w", err)
	}
	defer tx.Rollback()

	selectQuery := `SELECT ` + recordColumns + ` FROM weekly_records
		WHERE subject_id = $1 AND week_start = $2 FOR UPDATE`
	existing, err := scanRecord(tx.QueryRowContext(ctx, selectQuery, rec.SubjectID, rec.WeekStart))
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("error locking weekly record for save: %w", err)
	}

	if err == sql.ErrNoRows {
		if rec.ID == "" {
			rec.ID = uuid.NewString()
		}
		disciplinesJSON, err := json.Marshal(rec.Disciplines)
		if err != nil {
			return fmt.Errorf("error encoding disciplines document: %w", err)
		}
		insertQuery := `INSERT INTO weekly_records (id, subject_id, week_start, week_end, disciplines, reflection, reflection_submitted_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING created_at, updated_at`
		err = tx.QueryRowContext(ctx, insertQuery,
			rec.ID, rec.SubjectID, rec.WeekStart, rec.WeekEnd,
			disciplinesJSON, rec.Reflection, rec.ReflectionSubmittedAt,
		).Scan(&rec.CreatedAt, &rec.UpdatedAt)
		if err != nil {
			if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == pqUniqueViolation {
				return ErrDuplicateRecord
			}
			return fmt.Errorf("error inserting weekly record: %w", err)
		}
		return tx.Commit()
	}

	merged := discipline.MergeDisciplines(existing.Disciplines, rec.Disciplines)
	if rec.Reflection.Valid {
		existing.Reflection = rec.Reflection
		existing.ReflectionSubmittedAt = rec.ReflectionSubmittedAt
	}
	disciplinesJSON, err := json.Marshal(merged)
	if err != nil {
		return fmt.Errorf("error encoding disciplines document: %w", err)
	}

	updateQuery := `UPDATE weekly_records
		SET disciplines = $1, reflection = $2, reflection_submitted_at = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING updated_at`
	err = tx.QueryRowContext(ctx, updateQuery,
		disciplinesJSON, existing.Reflection, existing.ReflectionSubmittedAt, existing.ID,
	).Scan(&existing.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error updating weekly record: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing weekly record save: %w", err)
	}

	existing.Disciplines = merged
	*rec = *existing
	return nil
}

func (r *PostgresRecordRepository) ListRecent(ctx context.Context, subjectID string, limit int) ([]*discipline.WeeklyRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM weekly_records
		WHERE subject_id = $1 ORDER BY week_start DESC LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, subjectID, limit)
	if err != nil {
		return nil, fmt.Errorf("error listing recent weekly records: %w", err)
	}
	defer rows.Close()
	return collectRecords(rows)
}

func (r *PostgresRecordRepository) ListAll(ctx context.Context, subjectID string) ([]*discipline.WeeklyRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM weekly_records
		WHERE subject_id = $1 ORDER BY week_start DESC`
	rows, err := r.db.QueryContext(ctx, query, subjectID)
	if err != nil {
		return nil, fmt.Errorf("error listing weekly records: %w", err)
	}
	defer rows.Close()
	return collectRecords(rows)
}

func collectRecords(rows *sql.Rows) ([]*discipline.WeeklyRecord, error) {
	records := make([]*discipline.WeeklyRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning weekly record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating weekly records: %w", err)
	}
	return records, nil
}
