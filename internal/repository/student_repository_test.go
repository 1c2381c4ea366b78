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

func newStudentRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func studentRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "user_id", "enrollment_no", "branch", "cgpa", "backlogs", "skills",
		"created_at", "updated_at", "full_name", "email",
	})
}

func TestStudentRepositoryListCandidatesAppliesSQLCriteria(t *testing.T) {
	db, mock, cleanup := newStudentRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	now := time.Now()
	rows := studentRows().
		AddRow("s1", "u1", "EN-001", "CSE", 8.2, 0, "{go,sql}", now, now, "Student One", "one@example.com").
		AddRow("s2", "u2", "EN-002", "ISE", 7.1, 1, "{java}", now, now, "Student Two", "two@example.com")
	mock.ExpectQuery(regexp.QuoteMeta("WHERE s.cgpa >= $1 AND s.backlogs <= $2")).
		WithArgs(7.0, 1, sqlmock.AnyArg()).
		WillReturnRows(rows)

	students, err := repo.ListCandidates(context.Background(), 7.0, 1, []string{"CSE", "ISE"})
	require.NoError(t, err)
	require.Len(t, students, 2)
	assert.Equal(t, "EN-001", students[0].EnrollmentNo)
	assert.Equal(t, []string{"go", "sql"}, []string(students[0].Skills))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryListCandidatesOmitsBranchClauseWhenEmpty(t *testing.T) {
	db, mock, cleanup := newStudentRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE s.cgpa >= $1 AND s.backlogs <= $2")).
		WithArgs(0.0, 99).
		WillReturnRows(studentRows())

	students, err := repo.ListCandidates(context.Background(), 0, 99, nil)
	require.NoError(t, err)
	assert.Empty(t, students)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryFindByUserID(t *testing.T) {
	db, mock, cleanup := newStudentRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	now := time.Now()
	rows := studentRows().
		AddRow("s1", "u1", "EN-001", "CSE", 8.2, 0, "{}", now, now, "Student One", "one@example.com")
	mock.ExpectQuery(regexp.QuoteMeta("WHERE s.user_id = $1")).
		WithArgs("u1").
		WillReturnRows(rows)

	student, err := repo.FindByUserID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "s1", student.ID)
	assert.Equal(t, "one@example.com", student.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newStudentRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec("INSERT INTO student_profiles").
		WithArgs(sqlmock.AnyArg(), "u1", "EN-001", "CSE", 8.2, 0, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	profile := &models.StudentProfile{UserID: "u1", EnrollmentNo: "EN-001", Branch: "CSE", CGPA: 8.2}
	require.NoError(t, repo.Create(context.Background(), profile))
	assert.NotEmpty(t, profile.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
