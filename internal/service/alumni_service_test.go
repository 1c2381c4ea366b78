package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AkshithaKulal/placementpro/internal/models"
	appErrors "github.com/AkshithaKulal/placementpro/pkg/errors"
)

type mockAlumniRepo struct {
	profiles        map[string]*models.AlumniProfile
	referrals       map[string]*models.JobReferral
	mentorshipSlots []models.MentorshipSlot
}

func (m *mockAlumniRepo) FindProfileByUserID(ctx context.Context, userID string) (*models.AlumniProfile, error) {
	if p, ok := m.profiles[userID]; ok {
		return p, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAlumniRepo) CreateProfile(ctx context.Context, profile *models.AlumniProfile) error {
	if profile.ID == "" {
		profile.ID = "alum-" + profile.UserID
	}
	if m.profiles == nil {
		m.profiles = make(map[string]*models.AlumniProfile)
	}
	m.profiles[profile.UserID] = profile
	return nil
}

func (m *mockAlumniRepo) ListReferrals(ctx context.Context, alumniID string) ([]models.JobReferral, error) {
	var out []models.JobReferral
	for _, r := range m.referrals {
		if r.AlumniID == alumniID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *mockAlumniRepo) FindReferral(ctx context.Context, id, alumniID string) (*models.JobReferral, error) {
	if r, ok := m.referrals[id]; ok && r.AlumniID == alumniID {
		copied := *r
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAlumniRepo) CreateReferral(ctx context.Context, referral *models.JobReferral) error {
	if referral.ID == "" {
		referral.ID = "ref-new"
	}
	if m.referrals == nil {
		m.referrals = make(map[string]*models.JobReferral)
	}
	copied := *referral
	m.referrals[referral.ID] = &copied
	return nil
}

func (m *mockAlumniRepo) UpdateReferral(ctx context.Context, referral *models.JobReferral) error {
	copied := *referral
	m.referrals[referral.ID] = &copied
	return nil
}

func (m *mockAlumniRepo) CountReferrals(ctx context.Context, alumniID string) (int, error) {
	count := 0
	for _, r := range m.referrals {
		if r.AlumniID == alumniID {
			count++
		}
	}
	return count, nil
}

func (m *mockAlumniRepo) ListMentorshipSlots(ctx context.Context, alumniID string) ([]models.MentorshipSlot, error) {
	var out []models.MentorshipSlot
	for _, s := range m.mentorshipSlots {
		if s.AlumniID == alumniID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockAlumniRepo) CreateMentorshipSlot(ctx context.Context, slot *models.MentorshipSlot) error {
	if slot.ID == "" {
		slot.ID = "ms-new"
	}
	m.mentorshipSlots = append(m.mentorshipSlots, *slot)
	return nil
}

func (m *mockAlumniRepo) CountMentorshipSlots(ctx context.Context, alumniID string, bookedOnly bool) (int, error) {
	count := 0
	for _, s := range m.mentorshipSlots {
		if s.AlumniID != alumniID {
			continue
		}
		if bookedOnly && !s.Booked {
			continue
		}
		count++
	}
	return count, nil
}

type mockAlumniUsers struct {
	users map[string]*models.User
}

func (m *mockAlumniUsers) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func newAlumniFixture() (*AlumniService, *mockAlumniRepo) {
	repo := &mockAlumniRepo{}
	users := &mockAlumniUsers{users: map[string]*models.User{
		"u-alum": {ID: "u-alum", Email: "alum@example.com", Role: models.RoleAlumni, Active: true},
		"u-stud": {ID: "u-stud", Email: "stud@example.com", Role: models.RoleStudent, Active: true},
	}}
	return NewAlumniService(repo, users, nil, nil), repo
}

func TestAlumniProfileCreatedOnFirstUse(t *testing.T) {
	svc, repo := newAlumniFixture()

	profile, err := svc.Profile(context.Background(), "u-alum")
	require.NoError(t, err)
	assert.Equal(t, "u-alum", profile.UserID)
	require.Contains(t, repo.profiles, "u-alum")

	// A second call returns the same profile rather than creating another.
	again, err := svc.Profile(context.Background(), "u-alum")
	require.NoError(t, err)
	assert.Equal(t, profile.ID, again.ID)
}

func TestAlumniProfileRejectsNonAlumni(t *testing.T) {
	svc, repo := newAlumniFixture()

	_, err := svc.Profile(context.Background(), "u-stud")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.NotContains(t, repo.profiles, "u-stud")
}

func TestAlumniProfileUnknownUser(t *testing.T) {
	svc, _ := newAlumniFixture()

	_, err := svc.Profile(context.Background(), "nobody")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestCreateReferralDefaults(t *testing.T) {
	svc, _ := newAlumniFixture()

	referral, err := svc.CreateReferral(context.Background(), "u-alum", CreateReferralRequest{
		Company:  "Acme",
		Position: "Backend Engineer",
	})
	require.NoError(t, err)
	assert.True(t, referral.Active)
	require.NotNil(t, referral.Requirements)
	assert.Empty(t, referral.Requirements)
	assert.Equal(t, "alum-u-alum", referral.AlumniID)
}

func TestCreateReferralMissingCompany(t *testing.T) {
	svc, _ := newAlumniFixture()

	_, err := svc.CreateReferral(context.Background(), "u-alum", CreateReferralRequest{
		Position: "Backend Engineer",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestGetReferralScopedToOwner(t *testing.T) {
	svc, repo := newAlumniFixture()
	repo.referrals = map[string]*models.JobReferral{
		"ref-other": {ID: "ref-other", AlumniID: "alum-someone-else", Company: "Acme", Position: "SRE"},
	}

	_, err := svc.GetReferral(context.Background(), "u-alum", "ref-other")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestUpdateReferralAppliesOnlyProvidedFields(t *testing.T) {
	svc, _ := newAlumniFixture()

	created, err := svc.CreateReferral(context.Background(), "u-alum", CreateReferralRequest{
		Company:      "Acme",
		Position:     "Backend Engineer",
		Requirements: []string{"Go"},
	})
	require.NoError(t, err)

	inactive := false
	updated, err := svc.UpdateReferral(context.Background(), "u-alum", created.ID, UpdateReferralRequest{
		Active: &inactive,
	})
	require.NoError(t, err)
	assert.False(t, updated.Active)
	assert.Equal(t, "Acme", updated.Company)
	assert.Equal(t, "Backend Engineer", updated.Position)
	assert.Equal(t, []string{"Go"}, []string(updated.Requirements))
}

func TestCreateMentorshipSlot(t *testing.T) {
	svc, repo := newAlumniFixture()
	topic := "System design"

	slot, err := svc.CreateMentorshipSlot(context.Background(), "u-alum", CreateMentorshipSlotRequest{
		Date:      time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		StartTime: "14:00",
		EndTime:   "15:00",
		Topic:     &topic,
	})
	require.NoError(t, err)
	assert.Equal(t, "alum-u-alum", slot.AlumniID)
	assert.False(t, slot.Booked)
	require.Len(t, repo.mentorshipSlots, 1)
}

func TestCreateMentorshipSlotMissingWindow(t *testing.T) {
	svc, _ := newAlumniFixture()

	_, err := svc.CreateMentorshipSlot(context.Background(), "u-alum", CreateMentorshipSlotRequest{
		Date: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAlumniStatsCounts(t *testing.T) {
	svc, repo := newAlumniFixture()

	_, err := svc.CreateReferral(context.Background(), "u-alum", CreateReferralRequest{
		Company: "Acme", Position: "SRE",
	})
	require.NoError(t, err)
	repo.mentorshipSlots = []models.MentorshipSlot{
		{ID: "ms1", AlumniID: "alum-u-alum", Booked: true},
		{ID: "ms2", AlumniID: "alum-u-alum", Booked: false},
		{ID: "ms3", AlumniID: "alum-other", Booked: true},
	}

	stats, err := svc.Stats(context.Background(), "u-alum")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.JobReferrals)
	assert.Equal(t, 2, stats.MentorshipSlots)
	assert.Equal(t, 1, stats.BookedSlots)
}
