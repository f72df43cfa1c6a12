package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novatorsmobile/studentvoice-api/internal/models"
	appErrors "github.com/novatorsmobile/studentvoice-api/pkg/errors"
	"github.com/novatorsmobile/studentvoice-api/pkg/storage"
)

func newExportFixture(t *testing.T) *ExportService {
	t.Helper()

	polls := &stubRatingPolls{
		bySubject:    map[string][]models.Poll{"subject-1": {avgPoll("poll-1", 4)}},
		byTeacher:    map[string][]models.Poll{"teacher-1": {avgPoll("poll-1", 4)}},
		byUniversity: map[string][]models.Poll{"uni-1": {avgPoll("poll-1", 4)}},
	}
	subjects := &stubSubjects{
		subjects: map[string]*models.Subject{"subject-1": {ID: "subject-1", Name: "Algebra"}},
		byUni:    map[string][]models.Subject{"uni-1": {{ID: "subject-1", Name: "Algebra"}}},
	}
	teachers := &stubTeachers{
		teachers: map[string]*models.Teacher{"teacher-1": {ID: "teacher-1", FirstName: "Anna", LastName: "Ivanova"}},
		byUni:    map[string][]models.Teacher{"uni-1": {{ID: "teacher-1", FirstName: "Anna", LastName: "Ivanova"}}},
	}
	universities := &stubUniversities{universities: map[string]*models.University{
		"uni-1": {ID: "uni-1", Name: "State University"},
	}}
	ratings := NewRatingService(polls, nil, subjects, teachers, universities, nil)

	store, err := storage.NewReportStore(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("secret", time.Hour)
	return NewExportService(ratings, subjects, teachers, store, signer, nil)
}

func TestExportServiceCSVReport(t *testing.T) {
	svc := newExportFixture(t)

	file, err := svc.UniversityRatings(context.Background(), "uni-1", FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", file.ContentType)
	assert.True(t, strings.HasSuffix(file.Filename, ".csv"))

	lines := strings.Split(strings.TrimSpace(string(file.Content)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Type,Name,Rating", lines[0])
	assert.Equal(t, "subject,Algebra,4.00", lines[1])
	assert.Equal(t, "teacher,Ivanova Anna,4.00", lines[2])
	assert.Equal(t, "university,Overall,4.00", lines[3])
}

func TestExportServiceArchiveRoundTrip(t *testing.T) {
	svc := newExportFixture(t)

	file, err := svc.UniversityRatings(context.Background(), "uni-1", FormatCSV)
	require.NoError(t, err)
	require.NotEmpty(t, file.DownloadToken)

	archived, err := svc.Download(file.DownloadToken)
	require.NoError(t, err)
	assert.Equal(t, file.Content, archived.Content)

	_, err = svc.Download("not-a-token")
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
}

func TestExportServiceRejectsUnknownFormat(t *testing.T) {
	svc := newExportFixture(t)

	_, err := svc.UniversityRatings(context.Background(), "uni-1", ExportFormat("docx"))
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}
