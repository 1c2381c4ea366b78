package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AkshithaKulal/placementpro/internal/models"
)

func newSlotRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestSlotRepositoryCreateAssignmentCommitsBothWrites(t *testing.T) {
	db, mock, cleanup := newSlotRepoMock(t)
	defer cleanup()
	repo := NewSlotRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE interview_slots SET current_count = current_count + 1")).
		WithArgs("slot1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO interview_assignments").
		WithArgs(sqlmock.AnyArg(), "slot1", "stu1", nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	assignment := &models.InterviewAssignment{SlotID: "slot1", StudentID: "stu1"}
	require.NoError(t, repo.CreateAssignment(context.Background(), assignment))
	assert.NotEmpty(t, assignment.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotRepositoryCreateAssignmentFullSlotRollsBack(t *testing.T) {
	db, mock, cleanup := newSlotRepoMock(t)
	defer cleanup()
	repo := NewSlotRepository(db)

	// current_count < max_students matches no rows when the slot is full.
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE interview_slots SET current_count = current_count + 1")).
		WithArgs("slot1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.CreateAssignment(context.Background(), &models.InterviewAssignment{SlotID: "slot1", StudentID: "stu1"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSlotCapacity))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotRepositoryCreateAssignmentInsertFailureRollsBack(t *testing.T) {
	db, mock, cleanup := newSlotRepoMock(t)
	defer cleanup()
	repo := NewSlotRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE interview_slots SET current_count = current_count + 1")).
		WithArgs("slot1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO interview_assignments").
		WillReturnError(errors.New("duplicate key"))
	mock.ExpectRollback()

	err := repo.CreateAssignment(context.Background(), &models.InterviewAssignment{SlotID: "slot1", StudentID: "stu1"})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotRepositoryDeleteAssignmentDecrementsCounter(t *testing.T) {
	db, mock, cleanup := newSlotRepoMock(t)
	defer cleanup()
	repo := NewSlotRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("DELETE FROM interview_assignments WHERE id = $1 RETURNING slot_id")).
		WithArgs("a1").
		WillReturnRows(sqlmock.NewRows([]string{"slot_id"}).AddRow("slot1"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE interview_slots SET current_count = GREATEST(current_count - 1, 0)")).
		WithArgs("slot1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.DeleteAssignment(context.Background(), "a1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotRepositoryDeleteAssignmentUnknownIDReturnsNoRows(t *testing.T) {
	db, mock, cleanup := newSlotRepoMock(t)
	defer cleanup()
	repo := NewSlotRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("DELETE FROM interview_assignments WHERE id = $1 RETURNING slot_id")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	err := repo.DeleteAssignment(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotRepositoryCreateSlotZeroesCounter(t *testing.T) {
	db, mock, cleanup := newSlotRepoMock(t)
	defer cleanup()
	repo := NewSlotRepository(db)

	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	end := start.Add(30 * time.Minute)

	mock.ExpectExec("INSERT INTO interview_slots").
		WithArgs(sqlmock.AnyArg(), "d1", start, end, 3, 0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	slot := &models.InterviewSlot{DriveID: "d1", StartTime: start, EndTime: end, MaxStudents: 3, CurrentCount: 7}
	require.NoError(t, repo.CreateSlot(context.Background(), slot))
	assert.Equal(t, 0, slot.CurrentCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotRepositoryCountAssignments(t *testing.T) {
	db, mock, cleanup := newSlotRepoMock(t)
	defer cleanup()
	repo := NewSlotRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM interview_assignments WHERE slot_id = $1")).
		WithArgs("slot1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	count, err := repo.CountAssignments(context.Background(), "slot1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotRepositoryListAssignmentWindowsByStudent(t *testing.T) {
	db, mock, cleanup := newSlotRepoMock(t)
	defer cleanup()
	repo := NewSlotRepository(db)

	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"assignment_id", "slot_id", "drive_id", "start_time", "end_time"}).
		AddRow("a1", "slot1", "d1", start, start.Add(30*time.Minute)).
		AddRow("a2", "slot9", "d2", start, start.Add(time.Hour))
	mock.ExpectQuery("SELECT a.id AS assignment_id, a.slot_id, s.drive_id").
		WithArgs("stu1").
		WillReturnRows(rows)

	windows, err := repo.ListAssignmentWindowsByStudent(context.Background(), "stu1")
	require.NoError(t, err)
	require.Len(t, windows, 2)
	assert.Equal(t, "d1", windows[0].DriveID)
	assert.Equal(t, "d2", windows[1].DriveID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
