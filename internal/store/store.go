package store

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/lediangroup/repair-board/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("report not found")

// MaxBatchSize caps a single bulk-insert statement; larger imports are
// split into sequential batches.
const MaxBatchSize = 500

// ReportStore persists reports in PostgreSQL and notifies subscribers
// with a full refreshed snapshot after every mutation. Writes are
// single-document atomic; there is no cross-report transaction.
type ReportStore struct {
	db  *gorm.DB
	hub *hub

	// listAll backs snapshot reloads; overridable in tests.
	listAll func() ([]models.Report, error)
}

func New(db *gorm.DB) *ReportStore {
	s := &ReportStore{db: db, hub: newHub()}
	s.listAll = s.List
	return s
}

// Create inserts the report and returns its newly assigned id. Status
// defaults to Open and history to an empty array.
func (s *ReportStore) Create(report *models.Report) (string, error) {
	report.ID = uuid.New()
	if report.Status == "" {
		report.Status = models.StatusOpen
	}
	if report.History == nil {
		report.History = datatypes.JSONSlice[models.Event]{}
	}
	if err := s.db.Create(report).Error; err != nil {
		return "", fmt.Errorf("create report: %w", err)
	}
	s.notify()
	return report.ID.String(), nil
}

// Get returns a report by id.
func (s *ReportStore) Get(id string) (*models.Report, error) {
	var report models.Report
	if err := s.db.Where("id = ?", id).First(&report).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get report: %w", err)
	}
	return &report, nil
}

// List returns the full current result set, newest first.
func (s *ReportStore) List() ([]models.Report, error) {
	var reports []models.Report
	if err := s.db.Order("created_at DESC").Find(&reports).Error; err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return reports, nil
}

// Update applies a partial merge: only the named fields are touched and
// updated_at is refreshed. Fields absent from the map keep their value.
func (s *ReportStore) Update(id string, fields map[string]interface{}) error {
	result := s.db.Model(&models.Report{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return fmt.Errorf("update report: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	s.notify()
	return nil
}

// Delete removes the report permanently. No tombstone is kept and any
// externally stored image blob is left behind.
func (s *ReportStore) Delete(id string) error {
	result := s.db.Where("id = ?", id).Delete(&models.Report{})
	if result.Error != nil {
		return fmt.Errorf("delete report: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	s.notify()
	return nil
}

// CreateInBatches bulk-inserts reports in sequential batches of at most
// MaxBatchSize, logging progress per batch. Subscribers are notified once
// after the final batch.
func (s *ReportStore) CreateInBatches(reports []models.Report, batchSize int) error {
	if batchSize <= 0 || batchSize > MaxBatchSize {
		batchSize = MaxBatchSize
	}
	total := len(reports)
	for start := 0; start < total; start += batchSize {
		end := start + batchSize
		if end > total {
			end = total
		}
		chunk := reports[start:end]
		for i := range chunk {
			if chunk[i].ID == uuid.Nil {
				chunk[i].ID = uuid.New()
			}
			if chunk[i].History == nil {
				chunk[i].History = datatypes.JSONSlice[models.Event]{}
			}
		}
		if err := s.db.Create(&chunk).Error; err != nil {
			return fmt.Errorf("import batch %d-%d: %w", start, end, err)
		}
		slog.Info("imported reports", "done", end, "total", total)
	}
	if total > 0 {
		s.notify()
	}
	return nil
}

// Subscribe registers a live observer. The current snapshot is delivered
// immediately, then a full refreshed list after every mutation. The
// returned cancel is idempotent and stops all further deliveries.
func (s *ReportStore) Subscribe() (<-chan []models.Report, func()) {
	ch, cancel := s.hub.subscribe()
	// Non-blocking: the channel is visible to broadcast as soon as it is
	// registered, so a concurrent mutation may have filled the slot while
	// we were reading the snapshot. That snapshot is fresher than ours.
	select {
	case ch <- s.snapshot():
	default:
	}
	return ch, cancel
}

func (s *ReportStore) notify() {
	if s.hub.subscriberCount() == 0 {
		return
	}
	s.hub.broadcast(s.snapshot())
}

// snapshot reloads the full list. A failed read degrades to an empty
// list so observers are never left stale or handed an error.
func (s *ReportStore) snapshot() []models.Report {
	reports, err := s.listAll()
	if err != nil {
		slog.Error("snapshot reload failed", "action", "subscribe", "error", err)
		return []models.Report{}
	}
	return reports
}
