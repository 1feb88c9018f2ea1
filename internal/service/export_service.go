package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/unirp/records-api/internal/models"
	appErrors "github.com/unirp/records-api/pkg/errors"
	"github.com/unirp/records-api/pkg/export"
)

// ExportFormat names a supported export encoding.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

type exportEnrollmentLister interface {
	ListByState(ctx context.Context, state models.VerificationState) ([]models.EnrollmentDetail, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportResult bundles the rendered payload with its content type.
type ExportResult struct {
	Payload     []byte
	ContentType string
	Filename    string
}

// ExportService renders verification records into reviewer-facing files.
type ExportService struct {
	enrollments exportEnrollmentLister
	csv         csvRenderer
	pdf         pdfRenderer
	logger      *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(enrollments exportEnrollmentLister, csv csvRenderer, pdf pdfRenderer, logger *zap.Logger) *ExportService {
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{enrollments: enrollments, csv: csv, pdf: pdf, logger: logger}
}

// Generate renders the enrollments in the given verification state.
func (s *ExportService) Generate(ctx context.Context, state models.VerificationState, format ExportFormat) (*ExportResult, error) {
	switch state {
	case models.VerificationPending, models.VerificationVerified, models.VerificationRejected:
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown verification state %s", state))
	}

	enrollments, err := s.enrollments.ListByState(ctx, state)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollments")
	}
	dataset := buildEnrollmentDataset(enrollments)
	title := fmt.Sprintf("%s enrollments", strings.ToLower(string(state)))

	var payload []byte
	var contentType string
	switch format {
	case ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
		contentType = "text/csv"
	case ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
		contentType = "application/pdf"
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported format %s", format))
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	filename := fmt.Sprintf("enrollments-%s.%s", strings.ToLower(string(state)), format)
	return &ExportResult{Payload: payload, ContentType: contentType, Filename: filename}, nil
}

func buildEnrollmentDataset(enrollments []models.EnrollmentDetail) export.Dataset {
	headers := []string{"Student", "Course", "Provider", "Total", "Grade", "Completion", "Credit Transfer", "State"}
	rows := make([]map[string]string, len(enrollments))
	for i, e := range enrollments {
		credit := "no"
		if e.CreditTransferRequested {
			credit = "yes"
		}
		if e.CreditTransferGrade != nil {
			credit = fmt.Sprintf("yes (%s)", *e.CreditTransferGrade)
		}
		rows[i] = map[string]string{
			"Student":         e.StudentID,
			"Course":          e.CourseName,
			"Provider":        e.Provider,
			"Total":           strconv.FormatFloat(e.TotalMarks, 'f', -1, 64),
			"Grade":           e.Grade,
			"Completion":      string(e.CompletionStatus),
			"Credit Transfer": credit,
			"State":           string(e.VerificationState),
		}
	}
	return export.Dataset{Headers: headers, Rows: rows}
}
