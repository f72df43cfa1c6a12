package service

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appErrors "github.com/novatorsmobile/studentvoice-api/pkg/errors"
	"github.com/novatorsmobile/studentvoice-api/pkg/export"
	"github.com/novatorsmobile/studentvoice-api/pkg/storage"
)

// ExportFormat selects the rendered report format.
type ExportFormat string

const (
	FormatCSV  ExportFormat = "csv"
	FormatPDF  ExportFormat = "pdf"
	FormatXLSX ExportFormat = "xlsx"
)

// ExportFile is a rendered report ready to be served. DownloadToken is
// set when the report was archived and can be re-fetched later.
type ExportFile struct {
	Filename      string
	ContentType   string
	Content       []byte
	DownloadToken string
}

// ExportService renders rating reports for a university. With a report
// store attached it also archives each report and signs download links.
type ExportService struct {
	ratings  *RatingService
	subjects subjectReader
	teachers teacherReader
	csv      *export.CSVExporter
	pdf      *export.PDFExporter
	xlsx     *export.XLSXExporter
	store    *storage.ReportStore
	signer   *storage.SignedURLSigner
	logger   *zap.Logger
}

// NewExportService constructs an ExportService. store and signer may be
// nil to disable archiving.
func NewExportService(ratings *RatingService, subjects subjectReader, teachers teacherReader, store *storage.ReportStore, signer *storage.SignedURLSigner, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		ratings:  ratings,
		subjects: subjects,
		teachers: teachers,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		xlsx:     export.NewXLSXExporter(),
		store:    store,
		signer:   signer,
		logger:   logger,
	}
}

// UniversityRatings renders the per-subject and per-teacher rating table
// of one university. Entities without a rating appear with an empty cell.
func (s *ExportService) UniversityRatings(ctx context.Context, universityID string, format ExportFormat) (*ExportFile, error) {
	// The rating call also validates the university id.
	rollup, err := s.ratings.University(ctx, universityID)
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{Headers: []string{"Type", "Name", "Rating"}}

	subjects, err := s.subjects.ListByUniversity(ctx, universityID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subjects")
	}
	for _, subject := range subjects {
		rating, err := s.ratings.Subject(ctx, subject.ID)
		if err != nil {
			return nil, err
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Type":   "subject",
			"Name":   subject.Name,
			"Rating": formatRating(rating),
		})
	}

	teachers, err := s.teachers.ListByUniversity(ctx, universityID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teachers")
	}
	for _, teacher := range teachers {
		rating, err := s.ratings.Teacher(ctx, teacher.ID)
		if err != nil {
			return nil, err
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Type":   "teacher",
			"Name":   fmt.Sprintf("%s %s", teacher.LastName, teacher.FirstName),
			"Rating": formatRating(rating),
		})
	}

	dataset.Rows = append(dataset.Rows, map[string]string{
		"Type":   "university",
		"Name":   "Overall",
		"Rating": formatRating(rollup.Rating),
	})

	stamp := time.Now().UTC().Format("2006-01-02")
	var file *ExportFile
	switch format {
	case FormatCSV:
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		file = &ExportFile{
			Filename:    fmt.Sprintf("ratings-%s.csv", stamp),
			ContentType: "text/csv",
			Content:     content,
		}
	case FormatPDF:
		content, err := s.pdf.Render(dataset, "University ratings")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		file = &ExportFile{
			Filename:    fmt.Sprintf("ratings-%s.pdf", stamp),
			ContentType: "application/pdf",
			Content:     content,
		}
	case FormatXLSX:
		content, err := s.xlsx.Render(dataset, "Ratings")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render xlsx")
		}
		file = &ExportFile{
			Filename:    fmt.Sprintf("ratings-%s.xlsx", stamp),
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Content:     content,
		}
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}

	s.archive(universityID, file)
	return file, nil
}

// archive keeps a copy of the report on disk and attaches a signed
// download token. Archiving failures are logged, never surfaced.
func (s *ExportService) archive(universityID string, file *ExportFile) {
	if s.store == nil || s.signer == nil {
		return
	}
	reportID := uuid.NewString()
	relPath := path.Join(universityID, fmt.Sprintf("%s-%s", reportID, file.Filename))
	if _, err := s.store.Save(relPath, file.Content); err != nil {
		s.logger.Warn("report not archived", zap.String("path", relPath), zap.Error(err))
		return
	}
	token, _, err := s.signer.Generate(reportID, relPath)
	if err != nil {
		s.logger.Warn("report link not signed", zap.String("path", relPath), zap.Error(err))
		return
	}
	file.DownloadToken = token
}

// Download serves an archived report referenced by a signed token.
func (s *ExportService) Download(token string) (*ExportFile, error) {
	if s.store == nil || s.signer == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "report archive disabled")
	}
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")
	}
	f, err := s.store.Open(relPath)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "report no longer available")
	}
	defer f.Close() //nolint:errcheck
	content, err := io.ReadAll(f)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read report")
	}
	return &ExportFile{
		Filename:    path.Base(relPath),
		ContentType: "application/octet-stream",
		Content:     content,
	}, nil
}

func formatRating(rating *float64) string {
	if rating == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *rating)
}
