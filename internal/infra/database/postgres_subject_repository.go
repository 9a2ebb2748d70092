package database

import (
	"context"
	"database/sql"
	"fmt"

	"discipline_tracker/internal/domain/subject"
)

var ErrSubjectNotFound = fmt.Errorf("subject not found")

type PostgresSubjectRepository struct {
	db *sql.DB
}

func NewPostgresSubjectRepository(db *sql.DB) *PostgresSubjectRepository {
	return &PostgresSubjectRepository{db: db}
}

func (r *PostgresSubjectRepository) GetByID(ctx context.Context, id string) (*subject.Subject, error) {
	query := `SELECT id, first_name, last_name, role, is_active, created_at, updated_at
		FROM subjects WHERE id = $1`
	s := &subject.Subject{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&s.ID, &s.FirstName, &s.LastName, &s.Role, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrSubjectNotFound
		}
		return nil, fmt.Errorf("error getting subject by ID: %w", err)
	}
	return s, nil
}

func (r *PostgresSubjectRepository) ListActive(ctx context.Context) ([]*subject.Subject, error) {
	query := `SELECT id, first_name, last_name, role, is_active, created_at, updated_at
		FROM subjects WHERE is_active = TRUE ORDER BY first_name, last_name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing active subjects: %w", err)
	}
	defer rows.Close()

	subjects := make([]*subject.Subject, 0)
	for rows.Next() {
		s := &subject.Subject{}
		if err := rows.Scan(&s.ID, &s.FirstName, &s.LastName, &s.Role, &s.IsActive, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning active subject: %w", err)
		}
		subjects = append(subjects, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating active subjects: %w", err)
	}
	return subjects, nil
}
