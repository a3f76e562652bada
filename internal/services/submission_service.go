package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lediangroup/repair-board/internal/models"
	"gorm.io/datatypes"
)

var ErrMissingFields = errors.New("facility, location and item are required")

// Uploader pushes an image to durable storage and returns its public URL.
// Satisfied by *s3storage.Storage.
type Uploader interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// SubmissionInput is everything the user typed plus the optional image.
// InlineImage is the base64 data URI the client already produced for
// preview; it doubles as the fallback payload when the upload fails.
type SubmissionInput struct {
	Facility string
	Location string
	Item     string
	Remarks  string
	Reporter string

	ImageName   string
	ImageData   []byte
	ImageType   string
	InlineImage string
}

// SubmissionResult reports the new id and how the image fared.
type SubmissionResult struct {
	ID            string `json:"id"`
	ImageURL      string `json:"imageUrl"`
	ImageDegraded bool   `json:"imageDegraded"`
	ImageDropped  bool   `json:"imageDropped"`
}

// SubmissionService turns user input into a stored report. The image may
// degrade or be dropped along the way; the typed field data never is.
type SubmissionService struct {
	store         ReportStore
	uploader      Uploader
	uploadTimeout time.Duration
	inlineLimit   int
	now           func() time.Time
}

func NewSubmissionService(store ReportStore, uploader Uploader, uploadTimeout time.Duration, inlineLimit int) *SubmissionService {
	return &SubmissionService{
		store:         store,
		uploader:      uploader,
		uploadTimeout: uploadTimeout,
		inlineLimit:   inlineLimit,
		now:           time.Now,
	}
}

// Submit creates a new report. An image, if present, is uploaded under a
// temporary key (the report id does not exist yet) with a deadline;
// deadline elapse counts as upload failure and triggers the inline
// fallback. An inline payload over the size ceiling is discarded
// entirely rather than risking an oversized document write.
func (s *SubmissionService) Submit(ctx context.Context, in SubmissionInput) (*SubmissionResult, error) {
	if strings.TrimSpace(in.Facility) == "" ||
		strings.TrimSpace(in.Location) == "" ||
		strings.TrimSpace(in.Item) == "" {
		return nil, ErrMissingFields
	}

	res := &SubmissionResult{}
	imageURL := in.InlineImage
	if len(in.ImageData) > 0 {
		key := fmt.Sprintf("temp_%d_%s", s.now().UnixMilli(), in.ImageName)
		uploadCtx, cancel := context.WithTimeout(ctx, s.uploadTimeout)
		url, err := s.uploader.Upload(uploadCtx, key, in.ImageData, in.ImageType)
		cancel()
		if err != nil {
			slog.Warn("image upload failed, using inline fallback", "action", "submit", "error", err)
			if len(in.InlineImage) > s.inlineLimit {
				imageURL = ""
				res.ImageDropped = true
			} else if in.InlineImage != "" {
				res.ImageDegraded = true
			} else {
				res.ImageDropped = true
			}
		} else {
			imageURL = url
		}
	}

	reporter := strings.TrimSpace(in.Reporter)
	if reporter == "" {
		reporter = models.DefaultReporter
	}

	report := &models.Report{
		Facility:  in.Facility,
		Location:  in.Location,
		Item:      in.Item,
		Remarks:   in.Remarks,
		ImageURL:  imageURL,
		Reporter:  reporter,
		Status:    models.StatusOpen,
		Timestamp: s.now().In(jst).Format(eventTimeFormat),
		History:   datatypes.JSONSlice[models.Event]{},
	}
	id, err := s.store.Create(report)
	if err != nil {
		// Surfaced verbatim so the caller can keep the form open and retry.
		return nil, err
	}
	res.ID = id
	res.ImageURL = imageURL
	return res, nil
}
