package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/AkshithaKulal/placementpro/internal/models"
	appErrors "github.com/AkshithaKulal/placementpro/pkg/errors"
	"github.com/AkshithaKulal/placementpro/pkg/export"
)

// ExportFormat enumerates supported export encodings.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

type exportDriveReader interface {
	FindByID(ctx context.Context, id string) (*models.PlacementDrive, error)
}

type exportEligibilityReader interface {
	EligibleStudents(ctx context.Context, driveID string) ([]models.EligibleStudent, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportResult carries a rendered document and its response metadata.
type ExportResult struct {
	Payload     []byte
	Filename    string
	ContentType string
}

// ExportService renders eligible-student lists as downloadable documents.
type ExportService struct {
	drives      exportDriveReader
	eligibility exportEligibilityReader
	csv         csvRenderer
	pdf         pdfRenderer
	logger      *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(drives exportDriveReader, eligibility exportEligibilityReader, csv csvRenderer, pdf pdfRenderer, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{drives: drives, eligibility: eligibility, csv: csv, pdf: pdf, logger: logger}
}

// EligibleStudentsExport renders the drive's eligible-student list in the
// requested format.
func (s *ExportService) EligibleStudentsExport(ctx context.Context, driveID string, format ExportFormat) (*ExportResult, error) {
	drive, err := s.drives.FindByID(ctx, driveID)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "drive not found")
	}

	students, err := s.eligibility.EligibleStudents(ctx, driveID)
	if err != nil {
		return nil, err
	}

	dataset := buildEligibleDataset(students)
	title := fmt.Sprintf("Eligible students - %s (%s)", drive.Title, drive.Company)

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
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	s.logger.Info("rendered eligible-student export",
		zap.String("drive_id", driveID),
		zap.String("format", string(format)),
		zap.Int("students", len(students)))

	return &ExportResult{
		Payload:     payload,
		Filename:    buildExportFilename(drive, format),
		ContentType: contentType,
	}, nil
}

func buildEligibleDataset(students []models.EligibleStudent) export.Dataset {
	headers := []string{"Enrollment No", "Name", "Email", "Branch", "CGPA"}
	rows := make([]map[string]string, 0, len(students))
	for _, student := range students {
		rows = append(rows, map[string]string{
			"Enrollment No": student.EnrollmentNo,
			"Name":          student.Name,
			"Email":         student.Email,
			"Branch":        student.Branch,
			"CGPA":          strconv.FormatFloat(student.CGPA, 'f', 2, 64),
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}
}

func buildExportFilename(drive *models.PlacementDrive, format ExportFormat) string {
	slug := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(drive.Company), " ", "-"))
	if slug == "" {
		slug = "drive"
	}
	return fmt.Sprintf("eligible-%s-%s.%s", slug, time.Now().UTC().Format("20060102"), format)
}
