package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AkshithaKulal/placementpro/internal/models"
	appErrors "github.com/AkshithaKulal/placementpro/pkg/errors"
)

type mockApplicationRepo struct {
	existing map[string]bool
	created  *models.Application
	statuses map[string]models.ApplicationStatus
	byID     map[string]models.Application
}

func (m *mockApplicationRepo) List(ctx context.Context, filter models.ApplicationFilter) ([]models.ApplicationDetail, int, error) {
	return nil, 0, nil
}

func (m *mockApplicationRepo) FindByID(ctx context.Context, id string) (*models.Application, error) {
	if a, ok := m.byID[id]; ok {
		return &a, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockApplicationRepo) Exists(ctx context.Context, driveID, studentID string) (bool, error) {
	return m.existing[driveID+"/"+studentID], nil
}

func (m *mockApplicationRepo) Create(ctx context.Context, application *models.Application) error {
	if application.ID == "" {
		application.ID = "new-app"
	}
	m.created = application
	return nil
}

func (m *mockApplicationRepo) UpdateStatus(ctx context.Context, id string, status models.ApplicationStatus) error {
	if m.statuses == nil {
		m.statuses = make(map[string]models.ApplicationStatus)
	}
	m.statuses[id] = status
	return nil
}

type mockProfileReader struct {
	profiles map[string]*models.StudentDetail
}

func (m *mockProfileReader) FindByUserID(ctx context.Context, userID string) (*models.StudentDetail, error) {
	if p, ok := m.profiles[userID]; ok {
		return p, nil
	}
	return nil, sql.ErrNoRows
}

type mockEligibilityChecker struct {
	eligible map[string][]models.EligibleStudent
}

func (m *mockEligibilityChecker) EligibleStudents(ctx context.Context, driveID string) ([]models.EligibleStudent, error) {
	return m.eligible[driveID], nil
}

func newApplyFixture() (*ApplicationService, *mockApplicationRepo) {
	repo := &mockApplicationRepo{}
	drives := &mockDriveRepo{drives: map[string]models.PlacementDrive{
		"d1": {ID: "d1", Status: models.DriveStatusActive},
		"d2": {ID: "d2", Status: models.DriveStatusDraft},
	}}
	students := &mockProfileReader{profiles: map[string]*models.StudentDetail{
		"u1": {StudentProfile: models.StudentProfile{ID: "s1", UserID: "u1"}},
	}}
	eligibility := &mockEligibilityChecker{eligible: map[string][]models.EligibleStudent{
		"d1": {{ID: "s1", UserID: "u1"}},
	}}
	return NewApplicationService(repo, drives, students, eligibility, nil, nil), repo
}

func TestApplyHappyPath(t *testing.T) {
	svc, repo := newApplyFixture()

	application, err := svc.Apply(context.Background(), "u1", ApplyRequest{DriveID: "d1"})
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusApplied, application.Status)
	assert.Equal(t, "s1", application.StudentID)
	require.NotNil(t, repo.created)
}

func TestApplyRejectsInactiveDrive(t *testing.T) {
	svc, _ := newApplyFixture()

	_, err := svc.Apply(context.Background(), "u1", ApplyRequest{DriveID: "d2"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErr.Code)
}

func TestApplyRejectsDuplicate(t *testing.T) {
	svc, repo := newApplyFixture()
	repo.existing = map[string]bool{"d1/s1": true}

	_, err := svc.Apply(context.Background(), "u1", ApplyRequest{DriveID: "d1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestApplyRejectsIneligibleStudent(t *testing.T) {
	repo := &mockApplicationRepo{}
	drives := &mockDriveRepo{drives: map[string]models.PlacementDrive{
		"d1": {ID: "d1", Status: models.DriveStatusActive},
	}}
	students := &mockProfileReader{profiles: map[string]*models.StudentDetail{
		"u1": {StudentProfile: models.StudentProfile{ID: "s1", UserID: "u1"}},
	}}
	eligibility := &mockEligibilityChecker{eligible: map[string][]models.EligibleStudent{
		"d1": {{ID: "someone-else"}},
	}}
	svc := NewApplicationService(repo, drives, students, eligibility, nil, nil)

	_, err := svc.Apply(context.Background(), "u1", ApplyRequest{DriveID: "d1"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErr.Code)
	assert.Nil(t, repo.created)
}

func TestApplyUnknownProfile(t *testing.T) {
	svc, _ := newApplyFixture()

	_, err := svc.Apply(context.Background(), "unknown-user", ApplyRequest{DriveID: "d1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestUpdateApplicationStatusValidatesTransitionValue(t *testing.T) {
	repo := &mockApplicationRepo{byID: map[string]models.Application{
		"a1": {ID: "a1", Status: models.ApplicationStatusApplied},
	}}
	svc := NewApplicationService(repo, &mockDriveRepo{}, &mockProfileReader{}, &mockEligibilityChecker{}, nil, nil)

	_, err := svc.UpdateStatus(context.Background(), "a1", UpdateApplicationStatusRequest{Status: "BOGUS"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	application, err := svc.UpdateStatus(context.Background(), "a1", UpdateApplicationStatusRequest{Status: "SHORTLISTED"})
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusShortlisted, application.Status)
	assert.Equal(t, models.ApplicationStatusShortlisted, repo.statuses["a1"])
}
