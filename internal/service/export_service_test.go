package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AkshithaKulal/placementpro/internal/models"
	appErrors "github.com/AkshithaKulal/placementpro/pkg/errors"
)

func newExportFixture() *ExportService {
	drives := &mockDriveReader{drives: map[string]*models.PlacementDrive{
		"d1": {ID: "d1", Title: "SDE Hiring", Company: "Acme Corp"},
	}}
	eligibility := &mockEligibilityChecker{eligible: map[string][]models.EligibleStudent{
		"d1": {
			{ID: "s1", Name: "Student One", Email: "one@example.com", Branch: "CSE", CGPA: 8.25, EnrollmentNo: "EN-001"},
			{ID: "s2", Name: "Student Two", Email: "two@example.com", Branch: "ISE", CGPA: 7.5, EnrollmentNo: "EN-002"},
		},
	}}
	return NewExportService(drives, eligibility, nil, nil, nil)
}

func TestEligibleStudentsExportCSV(t *testing.T) {
	svc := newExportFixture()

	result, err := svc.EligibleStudentsExport(context.Background(), "d1", ExportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.True(t, strings.HasPrefix(result.Filename, "eligible-acme-corp-"))
	assert.True(t, strings.HasSuffix(result.Filename, ".csv"))

	body := string(result.Payload)
	lines := strings.Split(strings.TrimSpace(body), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Enrollment No,Name,Email,Branch,CGPA", lines[0])
	assert.Contains(t, lines[1], "EN-001")
	assert.Contains(t, lines[1], "8.25")
	assert.Contains(t, lines[2], "EN-002")
}

func TestEligibleStudentsExportPDF(t *testing.T) {
	svc := newExportFixture()

	result, err := svc.EligibleStudentsExport(context.Background(), "d1", ExportFormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, strings.HasSuffix(result.Filename, ".pdf"))
	assert.True(t, strings.HasPrefix(string(result.Payload), "%PDF"))
}

func TestEligibleStudentsExportUnknownFormat(t *testing.T) {
	svc := newExportFixture()

	_, err := svc.EligibleStudentsExport(context.Background(), "d1", ExportFormat("xlsx"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestEligibleStudentsExportUnknownDrive(t *testing.T) {
	svc := newExportFixture()

	_, err := svc.EligibleStudentsExport(context.Background(), "missing", ExportFormatCSV)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
