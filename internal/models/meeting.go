package models

import "time"

// MeetingType distinguishes lecture and practice meetings. Ratings pool
// both types.
type MeetingType string

const (
	MeetingLecture  MeetingType = "lecture"
	MeetingPractice MeetingType = "practice"
)

// Meeting is a single ratable lesson. Each meeting owns exactly one poll.
type Meeting struct {
	ID        string      `db:"id" json:"id"`
	SubjectID string      `db:"subject_id" json:"subject_id"`
	TeacherID string      `db:"teacher_id" json:"teacher_id"`
	Name      string      `db:"name" json:"name"`
	Type      MeetingType `db:"meeting_type" json:"type"`
	Date      time.Time   `db:"meeting_date" json:"date"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt time.Time   `db:"updated_at" json:"updated_at"`
}

// MeetingFilter captures the supported meeting list filters.
type MeetingFilter struct {
	SubjectID string
	TeacherID string
	Type      string
	Search    string
	Page      int
	PageSize  int
}

// RatedMeeting pairs a meeting date with its poll averages for the
// statistics time windows.
type RatedMeeting struct {
	MeetingID        string    `db:"meeting_id"`
	Date             time.Time `db:"meeting_date"`
	Question1AvgMark *float64  `db:"question1_avg_mark"`
	Question2AvgMark *float64  `db:"question2_avg_mark"`
	Question3AvgMark *float64  `db:"question3_avg_mark"`
	Question4AvgMark *float64  `db:"question4_avg_mark"`
	Question5AvgMark *float64  `db:"question5_avg_mark"`
}

// Rating derives the meeting's overall rating from its poll averages.
// Undefined (nil) unless all five questions have data.
func (m *RatedMeeting) Rating() *float64 {
	poll := Poll{
		Question1AvgMark: m.Question1AvgMark,
		Question2AvgMark: m.Question2AvgMark,
		Question3AvgMark: m.Question3AvgMark,
		Question4AvgMark: m.Question4AvgMark,
		Question5AvgMark: m.Question5AvgMark,
	}
	return poll.AverageMark()
}
