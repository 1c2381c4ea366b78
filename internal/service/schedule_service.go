package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/AkshithaKulal/placementpro/internal/models"
	"github.com/AkshithaKulal/placementpro/internal/repository"
	appErrors "github.com/AkshithaKulal/placementpro/pkg/errors"
)

type scheduleSlotRepository interface {
	FindSlotByID(ctx context.Context, id string) (*models.InterviewSlot, error)
	ListSlotsByDrive(ctx context.Context, driveID string) ([]models.InterviewSlot, error)
	CreateSlot(ctx context.Context, slot *models.InterviewSlot) error
	CountAssignments(ctx context.Context, slotID string) (int, error)
	ListAssignmentsBySlot(ctx context.Context, slotID string) ([]models.AssignmentDetail, error)
	ListAssignmentWindowsByStudent(ctx context.Context, studentID string) ([]models.AssignmentWindow, error)
	CreateAssignment(ctx context.Context, assignment *models.InterviewAssignment) error
	DeleteAssignment(ctx context.Context, assignmentID string) error
}

type scheduleDriveReader interface {
	FindByID(ctx context.Context, id string) (*models.PlacementDrive, error)
}

// CreateSlotRequest describes slot creation for a drive.
type CreateSlotRequest struct {
	StartTime   time.Time `json:"start_time" validate:"required"`
	EndTime     time.Time `json:"end_time" validate:"required"`
	MaxStudents int       `json:"max_students" validate:"omitempty,min=1"`
}

// AssignStudentRequest binds a student to a slot.
type AssignStudentRequest struct {
	SlotID    string  `json:"slot_id" validate:"required"`
	StudentID string  `json:"student_id" validate:"required"`
	PanelName *string `json:"panel_name"`
}

// ScheduleService manages interview slots and assignments, enforcing the
// capacity and no-double-booking invariants. It does not re-verify drive
// eligibility; callers restrict assignable students to the eligible set.
type ScheduleService struct {
	slots     scheduleSlotRepository
	drives    scheduleDriveReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewScheduleService constructs ScheduleService.
func NewScheduleService(slots scheduleSlotRepository, drives scheduleDriveReader, validate *validator.Validate, logger *zap.Logger) *ScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{slots: slots, drives: drives, validator: validate, logger: logger}
}

// CreateSlot adds an interview slot to a drive. The window must be
// well-formed (end strictly after start); capacity defaults to 1.
func (s *ScheduleService) CreateSlot(ctx context.Context, driveID string, req CreateSlotRequest) (*models.InterviewSlot, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid slot payload")
	}
	if !req.EndTime.After(req.StartTime) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "slot end time must be after start time")
	}
	if _, err := s.drives.FindByID(ctx, driveID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "drive not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load drive")
	}

	maxStudents := req.MaxStudents
	if maxStudents <= 0 {
		maxStudents = 1
	}
	slot := &models.InterviewSlot{
		DriveID:     driveID,
		StartTime:   req.StartTime.UTC(),
		EndTime:     req.EndTime.UTC(),
		MaxStudents: maxStudents,
	}
	if err := s.slots.CreateSlot(ctx, slot); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create slot")
	}
	return slot, nil
}

// ListSlots returns a drive's slots with their live assignments.
func (s *ScheduleService) ListSlots(ctx context.Context, driveID string) ([]models.SlotDetail, error) {
	if _, err := s.drives.FindByID(ctx, driveID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "drive not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load drive")
	}

	slots, err := s.slots.ListSlotsByDrive(ctx, driveID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list slots")
	}

	details := make([]models.SlotDetail, 0, len(slots))
	for _, slot := range slots {
		assignments, err := s.slots.ListAssignmentsBySlot(ctx, slot.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load slot assignments")
		}
		details = append(details, models.SlotDetail{InterviewSlot: slot, Assignments: assignments})
	}
	return details, nil
}

// AssignStudentToSlot validates capacity and scheduling conflicts, then
// atomically persists the assignment together with the slot counter
// increment. Checks short-circuit in order: slot existence, capacity,
// overlap conflict.
func (s *ScheduleService) AssignStudentToSlot(ctx context.Context, req AssignStudentRequest) (*models.InterviewAssignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}

	slot, err := s.slots.FindSlotByID(ctx, req.SlotID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "slot not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load slot")
	}

	// Capacity is checked against the live assignment count, not the cached
	// counter, though the two are expected to agree.
	count, err := s.slots.CountAssignments(ctx, slot.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count assignments")
	}
	if count >= slot.MaxStudents {
		return nil, appErrors.ErrSlotFull
	}

	conflict, err := s.CheckAssignmentConflict(ctx, slot.DriveID, req.StudentID, slot.StartTime, slot.EndTime, "")
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, appErrors.ErrScheduleConflict
	}

	assignment := &models.InterviewAssignment{
		SlotID:    slot.ID,
		StudentID: req.StudentID,
		PanelName: req.PanelName,
	}
	if err := s.slots.CreateAssignment(ctx, assignment); err != nil {
		// The conditional increment lost a concurrent race for the last seat.
		if errors.Is(err, repository.ErrSlotCapacity) {
			return nil, appErrors.ErrSlotFull
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create assignment")
	}
	return assignment, nil
}

// UnassignStudentFromSlot removes an assignment and decrements the slot
// counter in one transaction. Unknown assignment ids are a no-op so repeat
// deletes stay idempotent.
func (s *ScheduleService) UnassignStudentFromSlot(ctx context.Context, assignmentID string) error {
	if err := s.slots.DeleteAssignment(ctx, assignmentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete assignment")
	}
	return nil
}

// CheckAssignmentConflict reports whether the student already holds an
// assignment in the same drive whose slot window overlaps [newStart,
// newEnd). Conflicts are scoped per drive: overlapping interviews across
// different drives are allowed, since different companies' processes are
// independent. excludeAssignmentID, when non-empty, is skipped to support
// move semantics.
func (s *ScheduleService) CheckAssignmentConflict(ctx context.Context, driveID, studentID string, newStart, newEnd time.Time, excludeAssignmentID string) (bool, error) {
	windows, err := s.slots.ListAssignmentWindowsByStudent(ctx, studentID)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student assignments")
	}

	for _, window := range windows {
		if window.DriveID != driveID {
			continue
		}
		if excludeAssignmentID != "" && window.AssignmentID == excludeAssignmentID {
			continue
		}
		if slotsOverlap(window.StartTime, window.EndTime, newStart, newEnd) {
			return true, nil
		}
	}
	return false, nil
}

// slotsOverlap tests two half-open intervals [start1, end1) and
// [start2, end2). Back-to-back windows sharing a boundary do not overlap.
func slotsOverlap(start1, end1, start2, end2 time.Time) bool {
	return start1.Before(end2) && end1.After(start2)
}
