package models

import "time"

// InterviewSlot is a time window scoped to exactly one drive.
//
// CurrentCount is a denormalized projection of the live assignment rows
// referencing the slot. It is mutated only through the scheduling engine's
// assign/unassign operations.
type InterviewSlot struct {
	ID           string    `db:"id" json:"id"`
	DriveID      string    `db:"drive_id" json:"drive_id"`
	StartTime    time.Time `db:"start_time" json:"start_time"`
	EndTime      time.Time `db:"end_time" json:"end_time"`
	MaxStudents  int       `db:"max_students" json:"max_students"`
	CurrentCount int       `db:"current_count" json:"current_count"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Full reports whether the slot has reached its capacity. Slot state is
// derived at read time; a full slot returns to open via unassignment.
func (s *InterviewSlot) Full() bool {
	return s.CurrentCount >= s.MaxStudents
}

// InterviewAssignment binds one student profile to one interview slot.
type InterviewAssignment struct {
	ID        string    `db:"id" json:"id"`
	SlotID    string    `db:"slot_id" json:"slot_id"`
	StudentID string    `db:"student_id" json:"student_id"`
	PanelName *string   `db:"panel_name" json:"panel_name,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// AssignmentWindow carries an assignment with its slot's drive and time
// window, as loaded for conflict checking.
type AssignmentWindow struct {
	AssignmentID string    `db:"assignment_id" json:"assignment_id"`
	SlotID       string    `db:"slot_id" json:"slot_id"`
	DriveID      string    `db:"drive_id" json:"drive_id"`
	StartTime    time.Time `db:"start_time" json:"start_time"`
	EndTime      time.Time `db:"end_time" json:"end_time"`
}

// AssignmentDetail decorates an assignment with student identity for the
// schedule view.
type AssignmentDetail struct {
	InterviewAssignment
	StudentName  *string `db:"student_name" json:"student_name,omitempty"`
	StudentEmail string  `db:"student_email" json:"student_email"`
	EnrollmentNo string  `db:"enrollment_no" json:"enrollment_no"`
}

// SlotDetail pairs a slot with its live assignments.
type SlotDetail struct {
	InterviewSlot
	Assignments []AssignmentDetail `json:"assignments"`
}
