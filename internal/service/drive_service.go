package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/AkshithaKulal/placementpro/internal/models"
	appErrors "github.com/AkshithaKulal/placementpro/pkg/errors"
)

type driveRepository interface {
	List(ctx context.Context, filter models.DriveFilter) ([]models.DriveDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.PlacementDrive, error)
	Create(ctx context.Context, drive *models.PlacementDrive) error
	Update(ctx context.Context, drive *models.PlacementDrive) error
	UpdateStatus(ctx context.Context, id string, status models.DriveStatus) error
}

type eligibilityInvalidator interface {
	InvalidateCount(ctx context.Context, driveID string)
}

type driveActivationNotifier interface {
	NotifyDriveActivated(driveID string) error
}

// CreateDriveRequest describes drive creation.
type CreateDriveRequest struct {
	Title                string     `json:"title" validate:"required"`
	Description          *string    `json:"description"`
	Company              string     `json:"company" validate:"required"`
	Status               string     `json:"status" validate:"omitempty,oneof=DRAFT ACTIVE CLOSED"`
	MinCGPA              float64    `json:"min_cgpa" validate:"gte=0,lte=10"`
	MaxBacklogs          int        `json:"max_backlogs" validate:"gte=0"`
	EligibleBranches     []string   `json:"eligible_branches"`
	RequiredSkills       []string   `json:"required_skills"`
	Location             *string    `json:"location"`
	Package              *string    `json:"package"`
	RegistrationDeadline *time.Time `json:"registration_deadline"`
}

// UpdateDriveRequest describes criteria edits on an existing drive.
type UpdateDriveRequest struct {
	Title                string     `json:"title" validate:"required"`
	Description          *string    `json:"description"`
	Company              string     `json:"company" validate:"required"`
	MinCGPA              float64    `json:"min_cgpa" validate:"gte=0,lte=10"`
	MaxBacklogs          int        `json:"max_backlogs" validate:"gte=0"`
	EligibleBranches     []string   `json:"eligible_branches"`
	RequiredSkills       []string   `json:"required_skills"`
	Location             *string    `json:"location"`
	Package              *string    `json:"package"`
	RegistrationDeadline *time.Time `json:"registration_deadline"`
}

// UpdateDriveStatusRequest transitions a drive's lifecycle status.
type UpdateDriveStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=DRAFT ACTIVE CLOSED"`
}

// DriveService orchestrates placement drive workflows.
type DriveService struct {
	repo        driveRepository
	eligibility eligibilityInvalidator
	notifier    driveActivationNotifier
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewDriveService constructs DriveService. The notifier may be nil when the
// fan-out feature is disabled.
func NewDriveService(repo driveRepository, eligibility eligibilityInvalidator, notifier driveActivationNotifier, validate *validator.Validate, logger *zap.Logger) *DriveService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DriveService{repo: repo, eligibility: eligibility, notifier: notifier, validator: validate, logger: logger}
}

// List returns drives with pagination metadata.
func (s *DriveService) List(ctx context.Context, filter models.DriveFilter) ([]models.DriveDetail, *models.Pagination, error) {
	drives, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list drives")
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
	return drives, pagination, nil
}

// Get returns a drive by id.
func (s *DriveService) Get(ctx context.Context, id string) (*models.PlacementDrive, error) {
	drive, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "drive not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load drive")
	}
	return drive, nil
}

// Create registers a new drive. Drives created directly in ACTIVE status
// trigger the eligible-student notification fan-out.
func (s *DriveService) Create(ctx context.Context, req CreateDriveRequest) (*models.PlacementDrive, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid drive payload")
	}

	status := models.DriveStatus(req.Status)
	if status == "" {
		status = models.DriveStatusDraft
	}
	drive := &models.PlacementDrive{
		Title:                req.Title,
		Description:          req.Description,
		Company:              req.Company,
		Status:               status,
		MinCGPA:              req.MinCGPA,
		MaxBacklogs:          req.MaxBacklogs,
		EligibleBranches:     req.EligibleBranches,
		RequiredSkills:       req.RequiredSkills,
		Location:             req.Location,
		Package:              req.Package,
		RegistrationDeadline: req.RegistrationDeadline,
	}
	if err := s.repo.Create(ctx, drive); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create drive")
	}

	if drive.Status == models.DriveStatusActive {
		s.notifyActivation(drive.ID)
	}
	return drive, nil
}

// Update edits the drive's criteria and invalidates the cached eligible
// count, since any criterion change can alter the eligible set.
func (s *DriveService) Update(ctx context.Context, id string, req UpdateDriveRequest) (*models.PlacementDrive, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid drive payload")
	}

	drive, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "drive not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load drive")
	}

	drive.Title = req.Title
	drive.Description = req.Description
	drive.Company = req.Company
	drive.MinCGPA = req.MinCGPA
	drive.MaxBacklogs = req.MaxBacklogs
	drive.EligibleBranches = req.EligibleBranches
	drive.RequiredSkills = req.RequiredSkills
	drive.Location = req.Location
	drive.Package = req.Package
	drive.RegistrationDeadline = req.RegistrationDeadline

	if err := s.repo.Update(ctx, drive); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update drive")
	}

	if s.eligibility != nil {
		s.eligibility.InvalidateCount(ctx, drive.ID)
	}
	return drive, nil
}

// UpdateStatus transitions the drive lifecycle. Activation enqueues the
// notification fan-out for eligible students.
func (s *DriveService) UpdateStatus(ctx context.Context, id string, req UpdateDriveStatusRequest) (*models.PlacementDrive, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}

	drive, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "drive not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load drive")
	}

	status := models.DriveStatus(req.Status)
	if drive.Status == status {
		return drive, nil
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update drive status")
	}

	wasActive := drive.Status == models.DriveStatusActive
	drive.Status = status
	if status == models.DriveStatusActive && !wasActive {
		s.notifyActivation(drive.ID)
	}
	return drive, nil
}

func (s *DriveService) notifyActivation(driveID string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyDriveActivated(driveID); err != nil {
		s.logger.Warn("failed to enqueue drive activation fan-out", zap.String("drive_id", driveID), zap.Error(err))
	}
}
