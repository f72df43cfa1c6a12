package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/novatorsmobile/studentvoice-api/internal/models"
)

// TeacherRepository handles persistence for teachers.
type TeacherRepository struct {
	db *sqlx.DB
}

// NewTeacherRepository creates a new repository instance.
func NewTeacherRepository(db *sqlx.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

// List returns teachers matching the filter with pagination metadata.
func (r *TeacherRepository) List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, int, error) {
	base := "FROM teachers WHERE 1=1"
	var args []interface{}

	if filter.UniversityID != "" {
		base += fmt.Sprintf(" AND university_id = $%d", len(args)+1)
		args = append(args, filter.UniversityID)
	}
	if filter.Search != "" {
		base += fmt.Sprintf(" AND (LOWER(first_name) LIKE $%d OR LOWER(last_name) LIKE $%d)", len(args)+1, len(args)+1)
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

	query := fmt.Sprintf("SELECT id, university_id, first_name, last_name, patronymic, email, created_at, updated_at %s ORDER BY last_name ASC LIMIT %d OFFSET %d", base, size, offset)
	var teachers []models.Teacher
	if err := r.db.SelectContext(ctx, &teachers, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list teachers: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count teachers: %w", err)
	}

	return teachers, total, nil
}

// ListByUniversity returns every teacher of a university without paging.
func (r *TeacherRepository) ListByUniversity(ctx context.Context, universityID string) ([]models.Teacher, error) {
	const query = `SELECT id, university_id, first_name, last_name, patronymic, email, created_at, updated_at FROM teachers WHERE university_id = $1 ORDER BY last_name ASC`
	var teachers []models.Teacher
	if err := r.db.SelectContext(ctx, &teachers, query, universityID); err != nil {
		return nil, fmt.Errorf("list teachers by university: %w", err)
	}
	return teachers, nil
}

// FindByID returns a teacher by id.
func (r *TeacherRepository) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	const query = `SELECT id, university_id, first_name, last_name, patronymic, email, created_at, updated_at FROM teachers WHERE id = $1`
	var teacher models.Teacher
	if err := r.db.GetContext(ctx, &teacher, query, id); err != nil {
		return nil, err
	}
	return &teacher, nil
}

// Create inserts a new teacher.
func (r *TeacherRepository) Create(ctx context.Context, teacher *models.Teacher) error {
	const query = `INSERT INTO teachers (id, university_id, first_name, last_name, patronymic, email, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	now := time.Now().UTC()
	teacher.CreatedAt = now
	teacher.UpdatedAt = now
	if _, err := r.db.ExecContext(ctx, query, teacher.ID, teacher.UniversityID, teacher.FirstName, teacher.LastName, teacher.Patronymic, teacher.Email, teacher.CreatedAt, teacher.UpdatedAt); err != nil {
		return fmt.Errorf("insert teacher: %w", err)
	}
	return nil
}

// Update persists teacher changes.
func (r *TeacherRepository) Update(ctx context.Context, teacher *models.Teacher) error {
	const query = `UPDATE teachers SET first_name = $1, last_name = $2, patronymic = $3, email = $4, updated_at = $5 WHERE id = $6`
	teacher.UpdatedAt = time.Now().UTC()
	if _, err := r.db.ExecContext(ctx, query, teacher.FirstName, teacher.LastName, teacher.Patronymic, teacher.Email, teacher.UpdatedAt, teacher.ID); err != nil {
		return fmt.Errorf("update teacher: %w", err)
	}
	return nil
}

// Delete removes a teacher. Their meetings cascade.
func (r *TeacherRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM teachers WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete teacher: %w", err)
	}
	return nil
}
