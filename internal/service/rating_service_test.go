package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novatorsmobile/studentvoice-api/internal/models"
)

func avgPoll(id string, avg float64) models.Poll {
	v := avg
	return models.Poll{
		ID:               id,
		Question1AvgMark: &v,
		Question2AvgMark: &v,
		Question3AvgMark: &v,
		Question4AvgMark: &v,
		Question5AvgMark: &v,
	}
}

type stubRatingPolls struct {
	bySubject    map[string][]models.Poll
	byTeacher    map[string][]models.Poll
	byUniversity map[string][]models.Poll
}

func (s *stubRatingPolls) PollsBySubject(_ context.Context, id string) ([]models.Poll, error) {
	return s.bySubject[id], nil
}

func (s *stubRatingPolls) PollsByTeacher(_ context.Context, id string) ([]models.Poll, error) {
	return s.byTeacher[id], nil
}

func (s *stubRatingPolls) PollsByUniversity(_ context.Context, id string) ([]models.Poll, error) {
	return s.byUniversity[id], nil
}

type stubMeetingPolls struct {
	polls map[string]*models.Poll
}

func (s *stubMeetingPolls) FindByMeetingID(_ context.Context, meetingID string) (*models.Poll, error) {
	poll, ok := s.polls[meetingID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return poll, nil
}

type stubSubjects struct {
	subjects map[string]*models.Subject
	byUni    map[string][]models.Subject
}

func (s *stubSubjects) FindByID(_ context.Context, id string) (*models.Subject, error) {
	subject, ok := s.subjects[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return subject, nil
}

func (s *stubSubjects) ListByUniversity(_ context.Context, id string) ([]models.Subject, error) {
	return s.byUni[id], nil
}

type stubTeachers struct {
	teachers map[string]*models.Teacher
	byUni    map[string][]models.Teacher
}

func (s *stubTeachers) FindByID(_ context.Context, id string) (*models.Teacher, error) {
	teacher, ok := s.teachers[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return teacher, nil
}

func (s *stubTeachers) ListByUniversity(_ context.Context, id string) ([]models.Teacher, error) {
	return s.byUni[id], nil
}

type stubUniversities struct {
	universities map[string]*models.University
}

func (s *stubUniversities) FindByID(_ context.Context, id string) (*models.University, error) {
	uni, ok := s.universities[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return uni, nil
}

func TestRatingServiceSubjectExcludesUnratedMeetings(t *testing.T) {
	polls := &stubRatingPolls{bySubject: map[string][]models.Poll{
		"subject-1": {avgPoll("poll-1", 4), avgPoll("poll-2", 2), {ID: "poll-3"}},
	}}
	subjects := &stubSubjects{subjects: map[string]*models.Subject{
		"subject-1": {ID: "subject-1", Name: "Calculus"},
	}}
	svc := NewRatingService(polls, nil, subjects, nil, nil, nil)

	rating, err := svc.Subject(context.Background(), "subject-1")
	require.NoError(t, err)
	require.NotNil(t, rating)
	// poll-3 has no results and must not drag the average toward zero
	assert.InDelta(t, 3.0, *rating, 1e-9)
}

func TestRatingServiceSubjectWithoutRatedMeetingsIsUndefined(t *testing.T) {
	polls := &stubRatingPolls{bySubject: map[string][]models.Poll{
		"subject-1": {{ID: "poll-1"}, {ID: "poll-2"}},
	}}
	subjects := &stubSubjects{subjects: map[string]*models.Subject{
		"subject-1": {ID: "subject-1"},
	}}
	svc := NewRatingService(polls, nil, subjects, nil, nil, nil)

	rating, err := svc.Subject(context.Background(), "subject-1")
	require.NoError(t, err)
	assert.Nil(t, rating)
}

func TestRatingServiceSubjectNotFound(t *testing.T) {
	svc := NewRatingService(&stubRatingPolls{}, nil, &stubSubjects{}, nil, nil, nil)

	_, err := svc.Subject(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "subject not found")
}

func TestRatingServiceMeetingRequiresCompletePoll(t *testing.T) {
	four := 4.0
	meetingPolls := &stubMeetingPolls{polls: map[string]*models.Poll{
		"meeting-1": {ID: "poll-1", Question1AvgMark: &four},
		"meeting-2": func() *models.Poll { p := avgPoll("poll-2", 4); return &p }(),
	}}
	svc := NewRatingService(nil, meetingPolls, nil, nil, nil, nil)

	rating, err := svc.Meeting(context.Background(), "meeting-1")
	require.NoError(t, err)
	assert.Nil(t, rating)

	rating, err = svc.Meeting(context.Background(), "meeting-2")
	require.NoError(t, err)
	require.NotNil(t, rating)
	assert.InDelta(t, 4.0, *rating, 1e-9)
}

func TestRatingServiceUniversityRollups(t *testing.T) {
	polls := &stubRatingPolls{
		bySubject: map[string][]models.Poll{
			"subject-1": {avgPoll("poll-1", 5), avgPoll("poll-2", 3)},
			"subject-2": {avgPoll("poll-3", 2)},
			"subject-3": {},
		},
		byTeacher: map[string][]models.Poll{
			"teacher-1": {avgPoll("poll-1", 5), avgPoll("poll-2", 3), avgPoll("poll-3", 2)},
			"teacher-2": {},
		},
		byUniversity: map[string][]models.Poll{
			"uni-1": {avgPoll("poll-1", 5), avgPoll("poll-2", 3), avgPoll("poll-3", 2)},
		},
	}
	subjects := &stubSubjects{byUni: map[string][]models.Subject{
		"uni-1": {{ID: "subject-1"}, {ID: "subject-2"}, {ID: "subject-3"}},
	}}
	teachers := &stubTeachers{byUni: map[string][]models.Teacher{
		"uni-1": {{ID: "teacher-1"}, {ID: "teacher-2"}},
	}}
	universities := &stubUniversities{universities: map[string]*models.University{
		"uni-1": {ID: "uni-1", Name: "NSTU"},
	}}
	svc := NewRatingService(polls, nil, subjects, teachers, universities, nil)

	resp, err := svc.University(context.Background(), "uni-1")
	require.NoError(t, err)

	// Overall: mean over all polls, (5+3+2)/3.
	require.NotNil(t, resp.Rating)
	assert.InDelta(t, 10.0/3.0, *resp.Rating, 1e-9)

	// Subjects: (4+2)/2; the unrated subject-3 is excluded, not zeroed.
	require.NotNil(t, resp.SubjectsRating)
	assert.InDelta(t, 3.0, *resp.SubjectsRating, 1e-9)

	// Teachers: teacher-2 has no rated meetings and is excluded.
	require.NotNil(t, resp.TeachersRating)
	assert.InDelta(t, 10.0/3.0, *resp.TeachersRating, 1e-9)
}

func TestRatingServiceUniversityWithoutDataIsAllUndefined(t *testing.T) {
	polls := &stubRatingPolls{}
	subjects := &stubSubjects{}
	teachers := &stubTeachers{}
	universities := &stubUniversities{universities: map[string]*models.University{
		"uni-1": {ID: "uni-1"},
	}}
	svc := NewRatingService(polls, nil, subjects, teachers, universities, nil)

	resp, err := svc.University(context.Background(), "uni-1")
	require.NoError(t, err)
	assert.Nil(t, resp.Rating)
	assert.Nil(t, resp.SubjectsRating)
	assert.Nil(t, resp.TeachersRating)
}
