package models

import "time"

// ApplicationStatus tracks a student application through a drive.
type ApplicationStatus string

const (
	ApplicationStatusApplied     ApplicationStatus = "APPLIED"
	ApplicationStatusShortlisted ApplicationStatus = "SHORTLISTED"
	ApplicationStatusInterview   ApplicationStatus = "INTERVIEW"
	ApplicationStatusOffered     ApplicationStatus = "OFFERED"
	ApplicationStatusRejected    ApplicationStatus = "REJECTED"
)

// Application links a student profile to a placement drive.
type Application struct {
	ID        string            `db:"id" json:"id"`
	DriveID   string            `db:"drive_id" json:"drive_id"`
	StudentID string            `db:"student_id" json:"student_id"`
	Status    ApplicationStatus `db:"status" json:"status"`
	AppliedAt time.Time         `db:"applied_at" json:"applied_at"`
	UpdatedAt time.Time         `db:"updated_at" json:"updated_at"`
}

// ApplicationDetail adds drive and student context for list views.
type ApplicationDetail struct {
	Application
	DriveTitle   string  `db:"drive_title" json:"drive_title"`
	Company      string  `db:"company" json:"company"`
	StudentName  *string `db:"student_name" json:"student_name,omitempty"`
	StudentEmail string  `db:"student_email" json:"student_email"`
	EnrollmentNo string  `db:"enrollment_no" json:"enrollment_no"`
}

// ApplicationFilter scopes application listings.
type ApplicationFilter struct {
	DriveID   string
	StudentID string
	Status    ApplicationStatus
	Page      int
	PageSize  int
}
