package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AkshithaKulal/placementpro/internal/models"
)

func newAlumniRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func referralRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "alumni_id", "company", "position", "description", "requirements",
		"link", "active", "created_at", "updated_at",
	})
}

func TestAlumniRepositoryCreateReferralDefaultsRequirements(t *testing.T) {
	db, mock, cleanup := newAlumniRepoMock(t)
	defer cleanup()
	repo := NewAlumniRepository(db)

	mock.ExpectExec("INSERT INTO job_referrals").
		WithArgs(sqlmock.AnyArg(), "alum1", "Acme", "SRE", nil, sqlmock.AnyArg(), nil, true,
			sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	referral := &models.JobReferral{AlumniID: "alum1", Company: "Acme", Position: "SRE", Active: true}
	require.NoError(t, repo.CreateReferral(context.Background(), referral))
	assert.NotEmpty(t, referral.ID)
	assert.NotNil(t, referral.Requirements)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAlumniRepositoryFindReferralScopesToAlumnus(t *testing.T) {
	db, mock, cleanup := newAlumniRepoMock(t)
	defer cleanup()
	repo := NewAlumniRepository(db)

	now := time.Now()
	rows := referralRows().
		AddRow("ref1", "alum1", "Acme", "SRE", nil, "{go}", nil, true, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1 AND alumni_id = $2")).
		WithArgs("ref1", "alum1").
		WillReturnRows(rows)

	referral, err := repo.FindReferral(context.Background(), "ref1", "alum1")
	require.NoError(t, err)
	assert.Equal(t, "Acme", referral.Company)
	assert.Equal(t, []string{"go"}, []string(referral.Requirements))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAlumniRepositoryCountMentorshipSlotsBookedOnly(t *testing.T) {
	db, mock, cleanup := newAlumniRepoMock(t)
	defer cleanup()
	repo := NewAlumniRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE alumni_id = $1 AND booked = TRUE")).
		WithArgs("alum1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	count, err := repo.CountMentorshipSlots(context.Background(), "alum1", true)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAlumniRepositoryCreateProfile(t *testing.T) {
	db, mock, cleanup := newAlumniRepoMock(t)
	defer cleanup()
	repo := NewAlumniRepository(db)

	mock.ExpectExec("INSERT INTO alumni_profiles").
		WithArgs(sqlmock.AnyArg(), "u1", nil, nil, nil, nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	profile := &models.AlumniProfile{UserID: "u1"}
	require.NoError(t, repo.CreateProfile(context.Background(), profile))
	assert.NotEmpty(t, profile.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
