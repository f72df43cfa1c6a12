package models

import "time"

// Form records the external feedback form created for a meeting.
type Form struct {
	ID        string    `db:"id" json:"id"`
	MeetingID string    `db:"meeting_id" json:"meeting_id"`
	FormID    string    `db:"form_id" json:"form_id"`
	FormURL   string    `db:"form_url" json:"form_url"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
