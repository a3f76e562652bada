package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ReportStatus is the repair lifecycle state of a report.
type ReportStatus string

const (
	StatusOpen       ReportStatus = "Open"
	StatusInProgress ReportStatus = "In Progress"
	StatusFixed      ReportStatus = "Fixed"
)

// Valid reports whether s is one of the three known statuses. Ordering is
// deliberately not checked: Fixed -> Open is accepted, the UI just never
// offers it.
func (s ReportStatus) Valid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusFixed:
		return true
	}
	return false
}

// Actor sentinels used in history entries and the reporter field. The
// product ships in Japanese, so user-visible values stay Japanese.
// DefaultReporter tags reports submitted through the web form without a
// name; AnonymousReporter tags legacy rows where the form's
// answer-anonymously option was chosen.
const (
	SystemUser        = "システム"
	DefaultReporter   = "新規投稿"
	AnonymousReporter = "匿名"
)

// Event is one append-only entry in a report's history: a status change
// recorded by the system or a freeform comment left by staff.
type Event struct {
	Date    string `json:"date"`
	User    string `json:"user"`
	Content string `json:"content"`
}

// Report is a single repair request logged against a facility.
type Report struct {
	ID       uuid.UUID    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Facility string       `gorm:"size:100;not null;index" json:"facility"`
	Location string       `gorm:"size:255;not null" json:"location"`
	Item     string       `gorm:"type:text;not null" json:"item"`
	ImageURL string       `gorm:"type:text" json:"imageUrl"`
	Remarks  string       `gorm:"type:text" json:"remarks"`
	Status   ReportStatus `gorm:"size:20;not null;default:'Open';index" json:"status"`
	Reporter string       `gorm:"size:100" json:"reporter"`
	// Timestamp is the client-formatted submission time shown in the UI,
	// distinct from the authoritative CreatedAt below.
	Timestamp string                     `gorm:"size:50" json:"timestamp"`
	History   datatypes.JSONSlice[Event] `gorm:"type:jsonb;default:'[]'" json:"history"`
	CreatedAt time.Time                  `json:"createdAt"`
	UpdatedAt time.Time                  `json:"updatedAt"`
}

func (Report) TableName() string {
	return "reports"
}
