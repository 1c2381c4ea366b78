package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/AkshithaKulal/placementpro/internal/models"
)

// ErrSlotCapacity is returned when the conditional capacity increment finds
// the slot already full at commit time.
var ErrSlotCapacity = errors.New("slot capacity reached")

// SlotRepository handles persistence of interview slots and assignments.
type SlotRepository struct {
	db *sqlx.DB
}

// NewSlotRepository constructs the repository.
func NewSlotRepository(db *sqlx.DB) *SlotRepository {
	return &SlotRepository{db: db}
}

const slotColumns = `id, drive_id, start_time, end_time, max_students, current_count, created_at`

// FindSlotByID returns a slot by its ID.
func (r *SlotRepository) FindSlotByID(ctx context.Context, id string) (*models.InterviewSlot, error) {
	query := fmt.Sprintf("SELECT %s FROM interview_slots WHERE id = $1", slotColumns)
	var slot models.InterviewSlot
	if err := r.db.GetContext(ctx, &slot, query, id); err != nil {
		return nil, err
	}
	return &slot, nil
}

// ListSlotsByDrive returns a drive's slots ordered by start time.
func (r *SlotRepository) ListSlotsByDrive(ctx context.Context, driveID string) ([]models.InterviewSlot, error) {
	query := fmt.Sprintf("SELECT %s FROM interview_slots WHERE drive_id = $1 ORDER BY start_time ASC", slotColumns)
	var slots []models.InterviewSlot
	if err := r.db.SelectContext(ctx, &slots, query, driveID); err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	return slots, nil
}

// CreateSlot persists a new interview slot with a zero assignment count.
func (r *SlotRepository) CreateSlot(ctx context.Context, slot *models.InterviewSlot) error {
	if slot.ID == "" {
		slot.ID = uuid.NewString()
	}
	if slot.CreatedAt.IsZero() {
		slot.CreatedAt = time.Now().UTC()
	}
	slot.CurrentCount = 0
	const query = `INSERT INTO interview_slots (id, drive_id, start_time, end_time, max_students, current_count, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := r.db.ExecContext(ctx, query,
		slot.ID, slot.DriveID, slot.StartTime, slot.EndTime, slot.MaxStudents, slot.CurrentCount, slot.CreatedAt,
	); err != nil {
		return fmt.Errorf("create slot: %w", err)
	}
	return nil
}

// CountAssignments returns the live count of assignments referencing a slot.
func (r *SlotRepository) CountAssignments(ctx context.Context, slotID string) (int, error) {
	const query = `SELECT COUNT(*) FROM interview_assignments WHERE slot_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, slotID); err != nil {
		return 0, fmt.Errorf("count assignments: %w", err)
	}
	return count, nil
}

// ListAssignmentsBySlot returns a slot's assignments with student identity.
func (r *SlotRepository) ListAssignmentsBySlot(ctx context.Context, slotID string) ([]models.AssignmentDetail, error) {
	const query = `SELECT a.id, a.slot_id, a.student_id, a.panel_name, a.created_at,
        u.full_name AS student_name, u.email AS student_email, s.enrollment_no
        FROM interview_assignments a
        JOIN student_profiles s ON s.id = a.student_id
        JOIN users u ON u.id = s.user_id
        WHERE a.slot_id = $1 ORDER BY a.created_at ASC`
	var assignments []models.AssignmentDetail
	if err := r.db.SelectContext(ctx, &assignments, query, slotID); err != nil {
		return nil, fmt.Errorf("list slot assignments: %w", err)
	}
	return assignments, nil
}

// ListAssignmentWindowsByStudent returns every assignment held by the
// student, each carrying its slot's drive and time window. The caller scopes
// conflicts per drive.
func (r *SlotRepository) ListAssignmentWindowsByStudent(ctx context.Context, studentID string) ([]models.AssignmentWindow, error) {
	const query = `SELECT a.id AS assignment_id, a.slot_id, s.drive_id, s.start_time, s.end_time
        FROM interview_assignments a
        JOIN interview_slots s ON s.id = a.slot_id
        WHERE a.student_id = $1`
	var windows []models.AssignmentWindow
	if err := r.db.SelectContext(ctx, &windows, query, studentID); err != nil {
		return nil, fmt.Errorf("list assignment windows: %w", err)
	}
	return windows, nil
}

// FindAssignmentByID returns an assignment by its ID.
func (r *SlotRepository) FindAssignmentByID(ctx context.Context, id string) (*models.InterviewAssignment, error) {
	const query = `SELECT id, slot_id, student_id, panel_name, created_at FROM interview_assignments WHERE id = $1`
	var assignment models.InterviewAssignment
	if err := r.db.GetContext(ctx, &assignment, query, id); err != nil {
		return nil, err
	}
	return &assignment, nil
}

// CreateAssignment atomically increments the slot counter and inserts the
// assignment row. The increment is conditional on remaining capacity and
// checked via the affected-row count, so two concurrent assignments cannot
// push current_count past max_students; losing the race surfaces as
// ErrSlotCapacity. Both writes commit together or not at all.
func (r *SlotRepository) CreateAssignment(ctx context.Context, assignment *models.InterviewAssignment) error {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	if assignment.CreatedAt.IsZero() {
		assignment.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin assign: %w", err)
	}
	commit := false
	defer func() {
		if !commit {
			tx.Rollback()
		}
	}()

	const increment = `UPDATE interview_slots SET current_count = current_count + 1
        WHERE id = $1 AND current_count < max_students`
	result, err := tx.ExecContext(ctx, increment, assignment.SlotID)
	if err != nil {
		return fmt.Errorf("increment slot count: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("increment slot count: %w", err)
	}
	if affected == 0 {
		return ErrSlotCapacity
	}

	const insert = `INSERT INTO interview_assignments (id, slot_id, student_id, panel_name, created_at)
        VALUES ($1, $2, $3, $4, $5)`
	if _, err := tx.ExecContext(ctx, insert,
		assignment.ID, assignment.SlotID, assignment.StudentID, assignment.PanelName, assignment.CreatedAt,
	); err != nil {
		return fmt.Errorf("create assignment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit assign: %w", err)
	}
	commit = true
	return nil
}

// DeleteAssignment atomically removes the assignment row and decrements the
// slot counter, clamped at zero. Returns sql.ErrNoRows when the assignment
// does not exist so callers can treat repeat deletes as a no-op.
func (r *SlotRepository) DeleteAssignment(ctx context.Context, assignmentID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin unassign: %w", err)
	}
	commit := false
	defer func() {
		if !commit {
			tx.Rollback()
		}
	}()

	const remove = `DELETE FROM interview_assignments WHERE id = $1 RETURNING slot_id`
	var slotID string
	if err := tx.QueryRowxContext(ctx, remove, assignmentID).Scan(&slotID); err != nil {
		if err == sql.ErrNoRows {
			return sql.ErrNoRows
		}
		return fmt.Errorf("delete assignment: %w", err)
	}

	const decrement = `UPDATE interview_slots SET current_count = GREATEST(current_count - 1, 0) WHERE id = $1`
	if _, err := tx.ExecContext(ctx, decrement, slotID); err != nil {
		return fmt.Errorf("decrement slot count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit unassign: %w", err)
	}
	commit = true
	return nil
}
