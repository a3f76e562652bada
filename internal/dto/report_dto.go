package dto

import "github.com/lediangroup/repair-board/internal/models"

type ErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	DB        string `json:"db"`
}

type ChangeStatusRequest struct {
	Status string `json:"status"`
}

type AddCommentRequest struct {
	User    string `json:"user"`
	Content string `json:"content"`
}

// UpdateReportRequest edits descriptive fields. Absent (null) fields are
// left untouched.
type UpdateReportRequest struct {
	Facility *string `json:"facility"`
	Location *string `json:"location"`
	Item     *string `json:"item"`
	Remarks  *string `json:"remarks"`
}

type StatsResponse struct {
	Open  int `json:"open"`
	Fixed int `json:"fixed"`
}

type ListReportsResponse struct {
	Reports    []models.Report `json:"reports"`
	Facilities []string        `json:"facilities"`
	Stats      StatsResponse   `json:"stats"`
}

// ReportResponse decorates a report with the derived image URLs the UI
// embeds.
type ReportResponse struct {
	models.Report
	ImageDirectURL  string `json:"imageDirectUrl"`
	ImagePreviewURL string `json:"imagePreviewUrl"`
}

type RateLimitedResponse struct {
	Error            bool   `json:"error"`
	Message          string `json:"message"`
	RemainingSeconds int    `json:"remainingSeconds"`
}
