package models

import (
	"time"

	"github.com/lib/pq"
)

// DriveStatus represents the lifecycle state of a placement drive.
type DriveStatus string

const (
	DriveStatusDraft  DriveStatus = "DRAFT"
	DriveStatusActive DriveStatus = "ACTIVE"
	DriveStatusClosed DriveStatus = "CLOSED"
)

// PlacementDrive represents one placement opportunity and its eligibility criteria.
type PlacementDrive struct {
	ID                   string         `db:"id" json:"id"`
	Title                string         `db:"title" json:"title"`
	Description          *string        `db:"description" json:"description,omitempty"`
	Company              string         `db:"company" json:"company"`
	Status               DriveStatus    `db:"status" json:"status"`
	MinCGPA              float64        `db:"min_cgpa" json:"min_cgpa"`
	MaxBacklogs          int            `db:"max_backlogs" json:"max_backlogs"`
	EligibleBranches     pq.StringArray `db:"eligible_branches" json:"eligible_branches"`
	RequiredSkills       pq.StringArray `db:"required_skills" json:"required_skills"`
	Location             *string        `db:"location" json:"location,omitempty"`
	Package              *string        `db:"package" json:"package,omitempty"`
	RegistrationDeadline *time.Time     `db:"registration_deadline" json:"registration_deadline,omitempty"`
	CreatedAt            time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time      `db:"updated_at" json:"updated_at"`
}

// DriveDetail adds the application count shown on the drive list.
type DriveDetail struct {
	PlacementDrive
	ApplicationCount int `db:"application_count" json:"application_count"`
}

// DriveFilter captures filtering criteria for listing drives.
type DriveFilter struct {
	Status    DriveStatus
	Company   string
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
