package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AkshithaKulal/placementpro/internal/models"
	appErrors "github.com/AkshithaKulal/placementpro/pkg/errors"
	"github.com/AkshithaKulal/placementpro/pkg/jobs"
)

const jobTypeDriveActivation = "drive_activation"

type notificationRepository interface {
	ListByUser(ctx context.Context, userID string, limit int) ([]models.Notification, error)
	Create(ctx context.Context, notification *models.Notification) error
	MarkRead(ctx context.Context, id, userID string) error
}

type fanoutEligibilityReader interface {
	EligibleStudents(ctx context.Context, driveID string) ([]models.EligibleStudent, error)
}

type fanoutDriveReader interface {
	FindByID(ctx context.Context, id string) (*models.PlacementDrive, error)
}

// NotificationService records in-app notifications and runs the
// drive-activation fan-out asynchronously. Delivery transports (email and
// the like) are out of scope; the feed rows are what students read.
type NotificationService struct {
	repo        notificationRepository
	eligibility fanoutEligibilityReader
	drives      fanoutDriveReader
	queue       *jobs.Queue
	logger      *zap.Logger
}

// NewNotificationService constructs NotificationService with its own worker
// queue for fan-out jobs.
func NewNotificationService(repo notificationRepository, eligibility fanoutEligibilityReader, drives fanoutDriveReader, logger *zap.Logger, workers, retries int) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &NotificationService{repo: repo, eligibility: eligibility, drives: drives, logger: logger}
	s.queue = jobs.NewQueue("notifications", s.handleJob, jobs.QueueConfig{
		Workers:    workers,
		MaxRetries: retries,
		Logger:     logger,
	})
	return s
}

// Start launches the fan-out workers.
func (s *NotificationService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the fan-out workers.
func (s *NotificationService) Stop() {
	s.queue.Stop()
}

// NotifyDriveActivated enqueues the eligible-student fan-out for a drive.
func (s *NotificationService) NotifyDriveActivated(driveID string) error {
	return s.queue.Enqueue(jobs.Job{
		ID:      uuid.NewString(),
		Type:    jobTypeDriveActivation,
		Payload: driveID,
	})
}

// ListForUser returns a user's notification feed.
func (s *NotificationService) ListForUser(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	notifications, err := s.repo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notifications")
	}
	return notifications, nil
}

// MarkRead flags a feed entry as read.
func (s *NotificationService) MarkRead(ctx context.Context, id, userID string) error {
	if err := s.repo.MarkRead(ctx, id, userID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark notification read")
	}
	return nil
}

func (s *NotificationService) handleJob(ctx context.Context, job jobs.Job) error {
	if job.Type != jobTypeDriveActivation {
		s.logger.Warn("unknown notification job type", zap.String("type", job.Type))
		return nil
	}
	driveID, ok := job.Payload.(string)
	if !ok {
		return fmt.Errorf("drive activation job %s: payload is not a drive id", job.ID)
	}
	return s.fanOut(ctx, driveID)
}

func (s *NotificationService) fanOut(ctx context.Context, driveID string) error {
	drive, err := s.drives.FindByID(ctx, driveID)
	if err != nil {
		return fmt.Errorf("load drive %s: %w", driveID, err)
	}

	students, err := s.eligibility.EligibleStudents(ctx, driveID)
	if err != nil {
		return fmt.Errorf("resolve eligible students for drive %s: %w", driveID, err)
	}

	title := fmt.Sprintf("New placement drive: %s", drive.Title)
	body := fmt.Sprintf("%s is hiring. You meet the eligibility criteria. Apply before the deadline.", drive.Company)

	notified := 0
	for _, student := range students {
		notification := &models.Notification{
			UserID:  student.UserID,
			DriveID: &drive.ID,
			Title:   title,
			Body:    body,
		}
		if err := s.repo.Create(ctx, notification); err != nil {
			s.logger.Warn("failed to record notification",
				zap.String("drive_id", driveID),
				zap.String("user_id", student.UserID),
				zap.Error(err))
			continue
		}
		notified++
	}

	s.logger.Info("drive activation fan-out complete",
		zap.String("drive_id", driveID),
		zap.Int("eligible", len(students)),
		zap.Int("notified", notified))
	return nil
}
