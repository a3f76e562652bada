package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lediangroup/repair-board/internal/models"
	"gorm.io/datatypes"
)

var (
	ErrInvalidStatus = errors.New("invalid status")
	ErrEmptyComment  = errors.New("comment author and text are required")
)

// ReportStore is the slice of the persistent store the services need.
// Satisfied by *store.ReportStore.
type ReportStore interface {
	Create(report *models.Report) (string, error)
	Get(id string) (*models.Report, error)
	List() ([]models.Report, error)
	Update(id string, fields map[string]interface{}) error
	Delete(id string) error
}

// eventTimeFormat matches the ja-JP locale strings the dashboard renders.
const eventTimeFormat = "2006/01/02 15:04:05"

var jst = time.FixedZone("JST", 9*60*60)

// LifecycleService applies report mutations and maintains the audit
// trail. Every status change appends a system event; field edits do not.
type LifecycleService struct {
	store ReportStore
	now   func() time.Time
}

func NewLifecycleService(store ReportStore) *LifecycleService {
	return &LifecycleService{store: store, now: time.Now}
}

func (s *LifecycleService) timestamp() string {
	return s.now().In(jst).Format(eventTimeFormat)
}

// ChangeStatus moves the report to target and records the change in its
// history as one atomic write. Any target in the enum is accepted; the
// forward-only ordering is a UI convention, not a store rule.
func (s *LifecycleService) ChangeStatus(id string, target models.ReportStatus) error {
	if !target.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, target)
	}
	report, err := s.store.Get(id)
	if err != nil {
		return err
	}
	event := models.Event{
		Date:    s.timestamp(),
		User:    models.SystemUser,
		Content: fmt.Sprintf("ステータスを「%s」に変更しました", target),
	}
	history := append(report.History, event)
	return s.store.Update(id, map[string]interface{}{
		"status":  target,
		"history": history,
	})
}

// AddComment appends a comment event to the given history snapshot and
// writes the extended history back. The snapshot was read at action time:
// two concurrent appenders starting from the same snapshot last-write-win
// and one comment is silently lost. Known looseness carried over from the
// original design; the store does no array-level merge.
func (s *LifecycleService) AddComment(id string, history []models.Event, author, text string) (*models.Event, error) {
	author = strings.TrimSpace(author)
	text = strings.TrimSpace(text)
	if author == "" || text == "" {
		return nil, ErrEmptyComment
	}
	event := models.Event{Date: s.timestamp(), User: author, Content: text}
	extended := make(datatypes.JSONSlice[models.Event], 0, len(history)+1)
	extended = append(extended, history...)
	extended = append(extended, event)
	if err := s.store.Update(id, map[string]interface{}{"history": extended}); err != nil {
		return nil, err
	}
	return &event, nil
}

// FieldUpdate carries an edit of the report's descriptive fields. Nil
// pointers leave the field untouched (partial merge).
type FieldUpdate struct {
	Facility *string
	Location *string
	Item     *string
	Remarks  *string
}

// UpdateDetails edits descriptive fields without touching status or
// appending a history event.
func (s *LifecycleService) UpdateDetails(id string, upd FieldUpdate) error {
	fields := make(map[string]interface{})
	if upd.Facility != nil {
		fields["facility"] = *upd.Facility
	}
	if upd.Location != nil {
		fields["location"] = *upd.Location
	}
	if upd.Item != nil {
		fields["item"] = *upd.Item
	}
	if upd.Remarks != nil {
		fields["remarks"] = *upd.Remarks
	}
	if len(fields) == 0 {
		return nil
	}
	return s.store.Update(id, fields)
}

// Delete removes the report permanently. Terminal and irreversible.
func (s *LifecycleService) Delete(id string) error {
	return s.store.Delete(id)
}
