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

func newDriveRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func driveRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "title", "description", "company", "status", "min_cgpa", "max_backlogs",
		"eligible_branches", "required_skills", "location", "package", "registration_deadline",
		"created_at", "updated_at", "application_count",
	})
}

func TestDriveRepositoryList(t *testing.T) {
	db, mock, cleanup := newDriveRepoMock(t)
	defer cleanup()
	repo := NewDriveRepository(db)

	now := time.Now()
	rows := driveRows().
		AddRow("d1", "SDE Hiring", nil, "Acme", "ACTIVE", 7.0, 1, "{CSE,ISE}", "{Go,SQL}", nil, nil, nil, now, now, 4)
	mock.ExpectQuery("SELECT d.id, d.title, d.description").
		WithArgs(models.DriveStatusActive).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM placement_drives d WHERE d.status = $1")).
		WithArgs(models.DriveStatusActive).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	drives, total, err := repo.List(context.Background(), models.DriveFilter{Status: models.DriveStatusActive})
	require.NoError(t, err)
	require.Len(t, drives, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Acme", drives[0].Company)
	assert.Equal(t, 4, drives[0].ApplicationCount)
	assert.Equal(t, []string{"CSE", "ISE"}, []string(drives[0].EligibleBranches))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDriveRepositoryCreateDefaultsStatusToDraft(t *testing.T) {
	db, mock, cleanup := newDriveRepoMock(t)
	defer cleanup()
	repo := NewDriveRepository(db)

	mock.ExpectExec("INSERT INTO placement_drives").
		WithArgs(sqlmock.AnyArg(), "SDE Hiring", nil, "Acme", models.DriveStatusDraft,
			7.5, 0, sqlmock.AnyArg(), sqlmock.AnyArg(), nil, nil, nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	drive := &models.PlacementDrive{Title: "SDE Hiring", Company: "Acme", MinCGPA: 7.5}
	require.NoError(t, repo.Create(context.Background(), drive))
	assert.NotEmpty(t, drive.ID)
	assert.Equal(t, models.DriveStatusDraft, drive.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDriveRepositoryUpdateStatus(t *testing.T) {
	db, mock, cleanup := newDriveRepoMock(t)
	defer cleanup()
	repo := NewDriveRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE placement_drives SET status = $2, updated_at = $3 WHERE id = $1")).
		WithArgs("d1", models.DriveStatusActive, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateStatus(context.Background(), "d1", models.DriveStatusActive))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDriveRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newDriveRepoMock(t)
	defer cleanup()
	repo := NewDriveRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "title", "description", "company", "status", "min_cgpa", "max_backlogs",
		"eligible_branches", "required_skills", "location", "package", "registration_deadline",
		"created_at", "updated_at",
	}).AddRow("d1", "SDE Hiring", nil, "Acme", "DRAFT", 7.0, 1, "{}", "{}", nil, nil, nil, now, now)
	mock.ExpectQuery("SELECT id, title, description, company, status").
		WithArgs("d1").
		WillReturnRows(rows)

	drive, err := repo.FindByID(context.Background(), "d1")
	require.NoError(t, err)
	assert.Equal(t, "SDE Hiring", drive.Title)
	assert.Empty(t, drive.EligibleBranches)
	assert.NoError(t, mock.ExpectationsWereMet())
}
