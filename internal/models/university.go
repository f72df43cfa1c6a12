package models

import "time"

// University is the top of the rated-entity hierarchy.
type University struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Address   string    `db:"address" json:"address"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// UniversityFilter captures filters for listing universities.
type UniversityFilter struct {
	Search   string
	Page     int
	PageSize int
}
