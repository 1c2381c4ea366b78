package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/AkshithaKulal/placementpro/internal/models"
	appErrors "github.com/AkshithaKulal/placementpro/pkg/errors"
)

type alumniRepository interface {
	FindProfileByUserID(ctx context.Context, userID string) (*models.AlumniProfile, error)
	CreateProfile(ctx context.Context, profile *models.AlumniProfile) error
	ListReferrals(ctx context.Context, alumniID string) ([]models.JobReferral, error)
	FindReferral(ctx context.Context, id, alumniID string) (*models.JobReferral, error)
	CreateReferral(ctx context.Context, referral *models.JobReferral) error
	UpdateReferral(ctx context.Context, referral *models.JobReferral) error
	CountReferrals(ctx context.Context, alumniID string) (int, error)
	ListMentorshipSlots(ctx context.Context, alumniID string) ([]models.MentorshipSlot, error)
	CreateMentorshipSlot(ctx context.Context, slot *models.MentorshipSlot) error
	CountMentorshipSlots(ctx context.Context, alumniID string, bookedOnly bool) (int, error)
}

type alumniUserReader interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// CreateReferralRequest describes a new job referral.
type CreateReferralRequest struct {
	Company      string   `json:"company" validate:"required"`
	Position     string   `json:"position" validate:"required"`
	Description  *string  `json:"description"`
	Requirements []string `json:"requirements"`
	Link         *string  `json:"link" validate:"omitempty,url"`
	Active       *bool    `json:"active"`
}

// UpdateReferralRequest carries partial edits; nil fields are left unchanged.
type UpdateReferralRequest struct {
	Company      *string  `json:"company"`
	Position     *string  `json:"position"`
	Description  *string  `json:"description"`
	Requirements []string `json:"requirements"`
	Link         *string  `json:"link" validate:"omitempty,url"`
	Active       *bool    `json:"active"`
}

// CreateMentorshipSlotRequest describes a new mentorship time window.
type CreateMentorshipSlotRequest struct {
	Date      time.Time `json:"date" validate:"required"`
	StartTime string    `json:"start_time" validate:"required"`
	EndTime   string    `json:"end_time" validate:"required"`
	Topic     *string   `json:"topic"`
}

// AlumniService manages alumni profiles, job referrals, and mentorship
// offers. Every operation is scoped to the calling user's own profile, which
// is created lazily on first use.
type AlumniService struct {
	repo      alumniRepository
	users     alumniUserReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAlumniService constructs AlumniService.
func NewAlumniService(repo alumniRepository, users alumniUserReader, validate *validator.Validate, logger *zap.Logger) *AlumniService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AlumniService{repo: repo, users: users, validator: validate, logger: logger}
}

// Profile returns the calling user's alumni profile, creating an empty one
// when it does not exist yet. Non-alumni users are rejected.
func (s *AlumniService) Profile(ctx context.Context, userID string) (*models.AlumniProfile, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	if user.Role != models.RoleAlumni {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "alumni role required")
	}

	profile, err := s.repo.FindProfileByUserID(ctx, userID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load alumni profile")
	}

	profile = &models.AlumniProfile{UserID: userID}
	if err := s.repo.CreateProfile(ctx, profile); err != nil {
		// A concurrent first request may have created the profile already.
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return s.repo.FindProfileByUserID(ctx, userID)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create alumni profile")
	}
	s.logger.Info("created alumni profile", zap.String("user_id", userID))
	return profile, nil
}

// ListReferrals returns the calling alumnus's job referrals.
func (s *AlumniService) ListReferrals(ctx context.Context, userID string) ([]models.JobReferral, error) {
	profile, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	referrals, err := s.repo.ListReferrals(ctx, profile.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list referrals")
	}
	return referrals, nil
}

// CreateReferral shares a new job opening. Referrals start active unless the
// payload says otherwise.
func (s *AlumniService) CreateReferral(ctx context.Context, userID string, req CreateReferralRequest) (*models.JobReferral, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid referral payload")
	}

	profile, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}
	requirements := req.Requirements
	if requirements == nil {
		requirements = []string{}
	}

	referral := &models.JobReferral{
		AlumniID:     profile.ID,
		Company:      req.Company,
		Position:     req.Position,
		Description:  req.Description,
		Requirements: requirements,
		Link:         req.Link,
		Active:       active,
	}
	if err := s.repo.CreateReferral(ctx, referral); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create referral")
	}
	return referral, nil
}

// GetReferral returns one of the calling alumnus's referrals. Referrals
// owned by other alumni are indistinguishable from missing ones.
func (s *AlumniService) GetReferral(ctx context.Context, userID, referralID string) (*models.JobReferral, error) {
	profile, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	referral, err := s.repo.FindReferral(ctx, referralID, profile.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "referral not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load referral")
	}
	return referral, nil
}

// UpdateReferral applies the provided fields to an owned referral.
func (s *AlumniService) UpdateReferral(ctx context.Context, userID, referralID string, req UpdateReferralRequest) (*models.JobReferral, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid referral payload")
	}

	referral, err := s.GetReferral(ctx, userID, referralID)
	if err != nil {
		return nil, err
	}

	if req.Company != nil {
		referral.Company = *req.Company
	}
	if req.Position != nil {
		referral.Position = *req.Position
	}
	if req.Description != nil {
		referral.Description = req.Description
	}
	if req.Requirements != nil {
		referral.Requirements = req.Requirements
	}
	if req.Link != nil {
		referral.Link = req.Link
	}
	if req.Active != nil {
		referral.Active = *req.Active
	}

	if err := s.repo.UpdateReferral(ctx, referral); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update referral")
	}
	return referral, nil
}

// ListMentorshipSlots returns the calling alumnus's mentorship offers.
func (s *AlumniService) ListMentorshipSlots(ctx context.Context, userID string) ([]models.MentorshipSlot, error) {
	profile, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	slots, err := s.repo.ListMentorshipSlots(ctx, profile.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list mentorship slots")
	}
	return slots, nil
}

// CreateMentorshipSlot offers a new mentoring time window.
func (s *AlumniService) CreateMentorshipSlot(ctx context.Context, userID string, req CreateMentorshipSlotRequest) (*models.MentorshipSlot, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid mentorship slot payload")
	}

	profile, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	slot := &models.MentorshipSlot{
		AlumniID:  profile.ID,
		Date:      req.Date.UTC(),
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Topic:     req.Topic,
	}
	if err := s.repo.CreateMentorshipSlot(ctx, slot); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create mentorship slot")
	}
	return slot, nil
}

// Stats summarises the calling alumnus's referral and mentorship activity.
func (s *AlumniService) Stats(ctx context.Context, userID string) (*models.AlumniStats, error) {
	profile, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	referrals, err := s.repo.CountReferrals(ctx, profile.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count referrals")
	}
	slots, err := s.repo.CountMentorshipSlots(ctx, profile.ID, false)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count mentorship slots")
	}
	booked, err := s.repo.CountMentorshipSlots(ctx, profile.ID, true)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count booked slots")
	}

	return &models.AlumniStats{
		JobReferrals:    referrals,
		MentorshipSlots: slots,
		BookedSlots:     booked,
	}, nil
}
