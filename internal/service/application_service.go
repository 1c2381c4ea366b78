package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/AkshithaKulal/placementpro/internal/models"
	appErrors "github.com/AkshithaKulal/placementpro/pkg/errors"
)

type applicationRepository interface {
	List(ctx context.Context, filter models.ApplicationFilter) ([]models.ApplicationDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.Application, error)
	Exists(ctx context.Context, driveID, studentID string) (bool, error)
	Create(ctx context.Context, application *models.Application) error
	UpdateStatus(ctx context.Context, id string, status models.ApplicationStatus) error
}

type applicationStudentReader interface {
	FindByUserID(ctx context.Context, userID string) (*models.StudentDetail, error)
}

type applicationEligibilityChecker interface {
	EligibleStudents(ctx context.Context, driveID string) ([]models.EligibleStudent, error)
}

// ApplyRequest describes a student applying to a drive.
type ApplyRequest struct {
	DriveID string `json:"drive_id" validate:"required"`
}

// UpdateApplicationStatusRequest moves an application through review.
type UpdateApplicationStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=APPLIED SHORTLISTED INTERVIEW OFFERED REJECTED"`
}

// ApplicationService orchestrates drive applications.
type ApplicationService struct {
	repo        applicationRepository
	drives      driveRepository
	students    applicationStudentReader
	eligibility applicationEligibilityChecker
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewApplicationService constructs ApplicationService.
func NewApplicationService(repo applicationRepository, drives driveRepository, students applicationStudentReader, eligibility applicationEligibilityChecker, validate *validator.Validate, logger *zap.Logger) *ApplicationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ApplicationService{repo: repo, drives: drives, students: students, eligibility: eligibility, validator: validate, logger: logger}
}

// List returns applications with pagination metadata.
func (s *ApplicationService) List(ctx context.Context, filter models.ApplicationFilter) ([]models.ApplicationDetail, *models.Pagination, error) {
	applications, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list applications")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return applications, pagination, nil
}

// Apply registers the calling student's application to an active drive.
// Applications are accepted only from students in the drive's eligible set.
func (s *ApplicationService) Apply(ctx context.Context, userID string, req ApplyRequest) (*models.Application, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid application payload")
	}

	student, err := s.students.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student profile")
	}

	drive, err := s.drives.FindByID(ctx, req.DriveID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "drive not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load drive")
	}
	if drive.Status != models.DriveStatusActive {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "drive is not accepting applications")
	}

	exists, err := s.repo.Exists(ctx, drive.ID, student.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate application")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "already applied to this drive")
	}

	eligible, err := s.eligibility.EligibleStudents(ctx, drive.ID)
	if err != nil {
		return nil, err
	}
	inSet := false
	for _, e := range eligible {
		if e.ID == student.ID {
			inSet = true
			break
		}
	}
	if !inSet {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "eligibility criteria not met for this drive")
	}

	application := &models.Application{
		DriveID:   drive.ID,
		StudentID: student.ID,
		Status:    models.ApplicationStatusApplied,
	}
	if err := s.repo.Create(ctx, application); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create application")
	}
	return application, nil
}

// UpdateStatus moves an application to a new review state.
func (s *ApplicationService) UpdateStatus(ctx context.Context, id string, req UpdateApplicationStatusRequest) (*models.Application, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}

	application, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application")
	}

	status := models.ApplicationStatus(req.Status)
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update application status")
	}
	application.Status = status
	return application, nil
}
