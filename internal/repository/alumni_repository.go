package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/AkshithaKulal/placementpro/internal/models"
)

// AlumniRepository handles persistence of alumni profiles, job referrals,
// and mentorship slots.
type AlumniRepository struct {
	db *sqlx.DB
}

// NewAlumniRepository constructs the repository.
func NewAlumniRepository(db *sqlx.DB) *AlumniRepository {
	return &AlumniRepository{db: db}
}

const alumniProfileColumns = `id, user_id, current_company, designation, graduation_year, linkedin_url, created_at, updated_at`

// FindProfileByUserID returns the alumni profile linked to a user.
func (r *AlumniRepository) FindProfileByUserID(ctx context.Context, userID string) (*models.AlumniProfile, error) {
	query := fmt.Sprintf("SELECT %s FROM alumni_profiles WHERE user_id = $1", alumniProfileColumns)
	var profile models.AlumniProfile
	if err := r.db.GetContext(ctx, &profile, query, userID); err != nil {
		return nil, err
	}
	return &profile, nil
}

// CreateProfile persists a new alumni profile. The user_id column carries a
// unique constraint; concurrent creates surface as a pq unique violation.
func (r *AlumniRepository) CreateProfile(ctx context.Context, profile *models.AlumniProfile) error {
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	profile.CreatedAt = now
	profile.UpdatedAt = now

	const query = `INSERT INTO alumni_profiles (id, user_id, current_company, designation, graduation_year, linkedin_url, created_at, updated_at)
        VALUES (:id, :user_id, :current_company, :designation, :graduation_year, :linkedin_url, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, profile); err != nil {
		return fmt.Errorf("create alumni profile: %w", err)
	}
	return nil
}

const referralColumns = `id, alumni_id, company, position, description, requirements, link, active, created_at, updated_at`

// ListReferrals returns an alumnus's job referrals, newest first.
func (r *AlumniRepository) ListReferrals(ctx context.Context, alumniID string) ([]models.JobReferral, error) {
	query := fmt.Sprintf("SELECT %s FROM job_referrals WHERE alumni_id = $1 ORDER BY created_at DESC", referralColumns)
	var referrals []models.JobReferral
	if err := r.db.SelectContext(ctx, &referrals, query, alumniID); err != nil {
		return nil, fmt.Errorf("list referrals: %w", err)
	}
	return referrals, nil
}

// FindReferral returns a referral only when it belongs to the given alumnus.
func (r *AlumniRepository) FindReferral(ctx context.Context, id, alumniID string) (*models.JobReferral, error) {
	query := fmt.Sprintf("SELECT %s FROM job_referrals WHERE id = $1 AND alumni_id = $2", referralColumns)
	var referral models.JobReferral
	if err := r.db.GetContext(ctx, &referral, query, id, alumniID); err != nil {
		return nil, err
	}
	return &referral, nil
}

// CreateReferral persists a new job referral.
func (r *AlumniRepository) CreateReferral(ctx context.Context, referral *models.JobReferral) error {
	if referral.ID == "" {
		referral.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	referral.CreatedAt = now
	referral.UpdatedAt = now
	if referral.Requirements == nil {
		referral.Requirements = pq.StringArray{}
	}

	const query = `INSERT INTO job_referrals (id, alumni_id, company, position, description, requirements, link, active, created_at, updated_at)
        VALUES (:id, :alumni_id, :company, :position, :description, :requirements, :link, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, referral); err != nil {
		return fmt.Errorf("create referral: %w", err)
	}
	return nil
}

// UpdateReferral rewrites a referral's mutable fields.
func (r *AlumniRepository) UpdateReferral(ctx context.Context, referral *models.JobReferral) error {
	referral.UpdatedAt = time.Now().UTC()

	const query = `UPDATE job_referrals
        SET company = :company, position = :position, description = :description,
            requirements = :requirements, link = :link, active = :active, updated_at = :updated_at
        WHERE id = :id AND alumni_id = :alumni_id`
	if _, err := r.db.NamedExecContext(ctx, query, referral); err != nil {
		return fmt.Errorf("update referral: %w", err)
	}
	return nil
}

// CountReferrals returns the number of referrals an alumnus has shared.
func (r *AlumniRepository) CountReferrals(ctx context.Context, alumniID string) (int, error) {
	const query = `SELECT COUNT(*) FROM job_referrals WHERE alumni_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, alumniID); err != nil {
		return 0, fmt.Errorf("count referrals: %w", err)
	}
	return count, nil
}

// ListMentorshipSlots returns an alumnus's mentorship slots, earliest date
// first.
func (r *AlumniRepository) ListMentorshipSlots(ctx context.Context, alumniID string) ([]models.MentorshipSlot, error) {
	const query = `SELECT id, alumni_id, date, start_time, end_time, topic, booked, created_at
        FROM mentorship_slots WHERE alumni_id = $1 ORDER BY date ASC, start_time ASC`
	var slots []models.MentorshipSlot
	if err := r.db.SelectContext(ctx, &slots, query, alumniID); err != nil {
		return nil, fmt.Errorf("list mentorship slots: %w", err)
	}
	return slots, nil
}

// CreateMentorshipSlot persists a new mentorship slot.
func (r *AlumniRepository) CreateMentorshipSlot(ctx context.Context, slot *models.MentorshipSlot) error {
	if slot.ID == "" {
		slot.ID = uuid.NewString()
	}
	if slot.CreatedAt.IsZero() {
		slot.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO mentorship_slots (id, alumni_id, date, start_time, end_time, topic, booked, created_at)
        VALUES (:id, :alumni_id, :date, :start_time, :end_time, :topic, :booked, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, slot); err != nil {
		return fmt.Errorf("create mentorship slot: %w", err)
	}
	return nil
}

// CountMentorshipSlots returns the number of mentorship slots, optionally
// restricted to booked ones.
func (r *AlumniRepository) CountMentorshipSlots(ctx context.Context, alumniID string, bookedOnly bool) (int, error) {
	query := `SELECT COUNT(*) FROM mentorship_slots WHERE alumni_id = $1`
	if bookedOnly {
		query += ` AND booked = TRUE`
	}
	var count int
	if err := r.db.GetContext(ctx, &count, query, alumniID); err != nil {
		return 0, fmt.Errorf("count mentorship slots: %w", err)
	}
	return count, nil
}
