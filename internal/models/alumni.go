package models

import (
	"time"

	"github.com/lib/pq"
)

// AlumniProfile represents an alumnus's professional details. Every field
// beyond the user link is optional; profiles are created lazily on first
// alumni API use and filled in later.
type AlumniProfile struct {
	ID             string    `db:"id" json:"id"`
	UserID         string    `db:"user_id" json:"user_id"`
	CurrentCompany *string   `db:"current_company" json:"current_company,omitempty"`
	Designation    *string   `db:"designation" json:"designation,omitempty"`
	GraduationYear *int      `db:"graduation_year" json:"graduation_year,omitempty"`
	LinkedinURL    *string   `db:"linkedin_url" json:"linkedin_url,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// JobReferral is a job opening an alumnus shares with the placement cell.
type JobReferral struct {
	ID           string         `db:"id" json:"id"`
	AlumniID     string         `db:"alumni_id" json:"alumni_id"`
	Company      string         `db:"company" json:"company"`
	Position     string         `db:"position" json:"position"`
	Description  *string        `db:"description" json:"description,omitempty"`
	Requirements pq.StringArray `db:"requirements" json:"requirements"`
	Link         *string        `db:"link" json:"link,omitempty"`
	Active       bool           `db:"active" json:"active"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`
}

// MentorshipSlot is a time window an alumnus offers for mentoring sessions.
// Start and end are wall-clock times ("14:00") on the slot's date.
type MentorshipSlot struct {
	ID        string    `db:"id" json:"id"`
	AlumniID  string    `db:"alumni_id" json:"alumni_id"`
	Date      time.Time `db:"date" json:"date"`
	StartTime string    `db:"start_time" json:"start_time"`
	EndTime   string    `db:"end_time" json:"end_time"`
	Topic     *string   `db:"topic" json:"topic,omitempty"`
	Booked    bool      `db:"booked" json:"booked"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// AlumniStats summarises an alumnus's contributions for their dashboard.
type AlumniStats struct {
	JobReferrals    int `json:"job_referrals"`
	MentorshipSlots int `json:"mentorship_slots"`
	BookedSlots     int `json:"booked_slots"`
}
