package models

import (
	"time"

	"github.com/lib/pq"
)

// StudentProfile represents one placement candidate.
type StudentProfile struct {
	ID           string         `db:"id" json:"id"`
	UserID       string         `db:"user_id" json:"user_id"`
	EnrollmentNo string         `db:"enrollment_no" json:"enrollment_no"`
	Branch       string         `db:"branch" json:"branch"`
	CGPA         float64        `db:"cgpa" json:"cgpa"`
	Backlogs     int            `db:"backlogs" json:"backlogs"`
	Skills       pq.StringArray `db:"skills" json:"skills"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`
}

// StudentDetail pairs a profile with its owning user's identity.
type StudentDetail struct {
	StudentProfile
	FullName *string `db:"full_name" json:"full_name,omitempty"`
	Email    string  `db:"email" json:"email"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search    string
	Branch    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// EligibleStudent is the projection returned by the eligibility evaluator.
type EligibleStudent struct {
	ID           string  `json:"id"`
	UserID       string  `json:"user_id"`
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	Branch       string  `json:"branch"`
	CGPA         float64 `json:"cgpa"`
	EnrollmentNo string  `json:"enrollment_no"`
}
