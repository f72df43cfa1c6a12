package models

import "time"

// Teacher is an instructor attached to a university.
type Teacher struct {
	ID           string    `db:"id" json:"id"`
	UniversityID string    `db:"university_id" json:"university_id"`
	FirstName    string    `db:"first_name" json:"first_name"`
	LastName     string    `db:"last_name" json:"last_name"`
	Patronymic   *string   `db:"patronymic" json:"patronymic,omitempty"`
	Email        *string   `db:"email" json:"email,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// TeacherFilter captures filters for listing teachers.
type TeacherFilter struct {
	UniversityID string
	Search       string
	Page         int
	PageSize     int
}
