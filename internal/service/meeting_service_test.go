package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novatorsmobile/studentvoice-api/internal/models"
	appErrors "github.com/novatorsmobile/studentvoice-api/pkg/errors"
)

type stubMeetingRepo struct {
	meetings map[string]*models.Meeting
	created  *models.Meeting
	poll     *models.Poll
}

func (s *stubMeetingRepo) List(_ context.Context, _ models.MeetingFilter) ([]models.Meeting, int, error) {
	return nil, 0, nil
}

func (s *stubMeetingRepo) FindByID(_ context.Context, id string) (*models.Meeting, error) {
	meeting, ok := s.meetings[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return meeting, nil
}

func (s *stubMeetingRepo) CreateWithPoll(_ context.Context, meeting *models.Meeting, poll *models.Poll) error {
	s.created = meeting
	s.poll = poll
	return nil
}

func (s *stubMeetingRepo) Update(_ context.Context, meeting *models.Meeting) error {
	s.meetings[meeting.ID] = meeting
	return nil
}

func (s *stubMeetingRepo) Delete(_ context.Context, id string) error {
	delete(s.meetings, id)
	return nil
}

type stubFormRepo struct {
	forms map[string]*models.Form
}

func (s *stubFormRepo) Create(_ context.Context, form *models.Form) error {
	s.forms[form.MeetingID] = form
	return nil
}

func (s *stubFormRepo) FindByMeetingID(_ context.Context, meetingID string) (*models.Form, error) {
	form, ok := s.forms[meetingID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return form, nil
}

type stubEnqueuer struct {
	meetingID string
	title     string
}

func (s *stubEnqueuer) Enqueue(meetingID, title string) error {
	s.meetingID = meetingID
	s.title = title
	return nil
}

func TestMeetingServiceCreateProvisionsForm(t *testing.T) {
	repo := &stubMeetingRepo{meetings: map[string]*models.Meeting{}}
	subjects := &stubSubjects{subjects: map[string]*models.Subject{
		"f47ac10b-58cc-4372-a567-0e02b2c3d479": {ID: "f47ac10b-58cc-4372-a567-0e02b2c3d479", Name: "Algebra"},
	}}
	teachers := &stubTeachers{teachers: map[string]*models.Teacher{
		"9c5b94b1-35ad-49bb-b118-8e8fc24abf80": {ID: "9c5b94b1-35ad-49bb-b118-8e8fc24abf80", LastName: "Ivanova"},
	}}
	enq := &stubEnqueuer{}
	svc := NewMeetingService(repo, subjects, teachers, nil, enq, nil, nil, nil)

	meeting, err := svc.Create(context.Background(), CreateMeetingRequest{
		SubjectID: "f47ac10b-58cc-4372-a567-0e02b2c3d479",
		TeacherID: "9c5b94b1-35ad-49bb-b118-8e8fc24abf80",
		Name:      "Lecture 1",
		Type:      "lecture",
		Date:      time.Date(2025, time.September, 2, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.NotNil(t, repo.created)
	require.NotNil(t, repo.poll)
	assert.Equal(t, meeting.ID, repo.created.ID)
	assert.Equal(t, meeting.ID, enq.meetingID)
	assert.Equal(t, "Algebra / Lecture 1 (02.09.2025)", enq.title)
}

func TestMeetingServiceCreateUnknownSubject(t *testing.T) {
	repo := &stubMeetingRepo{meetings: map[string]*models.Meeting{}}
	svc := NewMeetingService(repo, &stubSubjects{}, &stubTeachers{}, nil, nil, nil, nil, nil)

	_, err := svc.Create(context.Background(), CreateMeetingRequest{
		SubjectID: "f47ac10b-58cc-4372-a567-0e02b2c3d479",
		TeacherID: "9c5b94b1-35ad-49bb-b118-8e8fc24abf80",
		Name:      "Lecture 1",
		Type:      "lecture",
		Date:      time.Now(),
	})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	assert.Nil(t, repo.created)
}

func TestMeetingServiceFormLookup(t *testing.T) {
	repo := &stubMeetingRepo{meetings: map[string]*models.Meeting{
		"meeting-1": {ID: "meeting-1"},
		"meeting-2": {ID: "meeting-2"},
	}}
	forms := &stubFormRepo{forms: map[string]*models.Form{
		"meeting-1": {ID: "form-1", MeetingID: "meeting-1", FormURL: "https://forms.example/abc"},
	}}
	svc := NewMeetingService(repo, nil, nil, forms, nil, nil, nil, nil)

	form, err := svc.Form(context.Background(), "meeting-1")
	require.NoError(t, err)
	assert.Equal(t, "https://forms.example/abc", form.FormURL)

	_, err = svc.Form(context.Background(), "meeting-2")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}
