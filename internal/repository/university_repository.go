package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/novatorsmobile/studentvoice-api/internal/models"
)

// UniversityRepository handles persistence for universities.
type UniversityRepository struct {
	db *sqlx.DB
}

// NewUniversityRepository creates a new repository instance.
func NewUniversityRepository(db *sqlx.DB) *UniversityRepository {
	return &UniversityRepository{db: db}
}

// List returns universities matching the filter with pagination metadata.
func (r *UniversityRepository) List(ctx context.Context, filter models.UniversityFilter) ([]models.University, int, error) {
	base := "FROM universities WHERE 1=1"
	var args []interface{}

	if filter.Search != "" {
		base += fmt.Sprintf(" AND (LOWER(name) LIKE $%d OR LOWER(address) LIKE $%d)", len(args)+1, len(args)+1)
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT id, name, address, created_at, updated_at %s ORDER BY name ASC LIMIT %d OFFSET %d", base, size, offset)
	var universities []models.University
	if err := r.db.SelectContext(ctx, &universities, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list universities: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count universities: %w", err)
	}

	return universities, total, nil
}

// FindByID returns a university by id.
func (r *UniversityRepository) FindByID(ctx context.Context, id string) (*models.University, error) {
	const query = `SELECT id, name, address, created_at, updated_at FROM universities WHERE id = $1`
	var university models.University
	if err := r.db.GetContext(ctx, &university, query, id); err != nil {
		return nil, err
	}
	return &university, nil
}

// Create inserts a new university.
func (r *UniversityRepository) Create(ctx context.Context, university *models.University) error {
	const query = `INSERT INTO universities (id, name, address, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`
	now := time.Now().UTC()
	university.CreatedAt = now
	university.UpdatedAt = now
	if _, err := r.db.ExecContext(ctx, query, university.ID, university.Name, university.Address, university.CreatedAt, university.UpdatedAt); err != nil {
		return fmt.Errorf("insert university: %w", err)
	}
	return nil
}

// Update persists name and address changes.
func (r *UniversityRepository) Update(ctx context.Context, university *models.University) error {
	const query = `UPDATE universities SET name = $1, address = $2, updated_at = $3 WHERE id = $4`
	university.UpdatedAt = time.Now().UTC()
	if _, err := r.db.ExecContext(ctx, query, university.Name, university.Address, university.UpdatedAt, university.ID); err != nil {
		return fmt.Errorf("update university: %w", err)
	}
	return nil
}

// Delete removes a university. Subjects, teachers, meetings and polls
// beneath it are removed by FK cascade.
func (r *UniversityRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM universities WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete university: %w", err)
	}
	return nil
}
