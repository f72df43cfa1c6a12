package models

import "time"

// Subject is a discipline taught at a university.
type Subject struct {
	ID           string    `db:"id" json:"id"`
	UniversityID string    `db:"university_id" json:"university_id"`
	Name         string    `db:"name" json:"name"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// SubjectFilter captures filters for listing subjects.
type SubjectFilter struct {
	UniversityID string
	Search       string
	Page         int
	PageSize     int
}
