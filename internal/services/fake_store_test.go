package services

import (
	"sync"

	"github.com/google/uuid"
	"github.com/lediangroup/repair-board/internal/models"
	"github.com/lediangroup/repair-board/internal/store"
	"gorm.io/datatypes"
)

// fakeStore is an in-memory ReportStore for unit tests. Update applies
// the same last-write-wins merge semantics as the real store.
type fakeStore struct {
	mu      sync.Mutex
	reports map[string]*models.Report

	createErr error
	updateErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{reports: make(map[string]*models.Report)}
}

func (f *fakeStore) Create(report *models.Report) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return "", f.createErr
	}
	report.ID = uuid.New()
	if report.Status == "" {
		report.Status = models.StatusOpen
	}
	if report.History == nil {
		report.History = datatypes.JSONSlice[models.Event]{}
	}
	clone := *report
	f.reports[report.ID.String()] = &clone
	return report.ID.String(), nil
}

func (f *fakeStore) Get(id string) (*models.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	report, ok := f.reports[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	clone := *report
	clone.History = append(datatypes.JSONSlice[models.Event]{}, report.History...)
	return &clone, nil
}

func (f *fakeStore) List() ([]models.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Report, 0, len(f.reports))
	for _, r := range f.reports {
		out = append(out, *r)
	}
	return out, nil
}

func (f *fakeStore) Update(id string, fields map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	report, ok := f.reports[id]
	if !ok {
		return store.ErrNotFound
	}
	for column, value := range fields {
		switch column {
		case "status":
			report.Status = value.(models.ReportStatus)
		case "history":
			report.History = value.(datatypes.JSONSlice[models.Event])
		case "facility":
			report.Facility = value.(string)
		case "location":
			report.Location = value.(string)
		case "item":
			report.Item = value.(string)
		case "remarks":
			report.Remarks = value.(string)
		}
	}
	return nil
}

func (f *fakeStore) Delete(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.reports[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.reports, id)
	return nil
}

func (f *fakeStore) mustCreate(report models.Report) string {
	id, err := f.Create(&report)
	if err != nil {
		panic(err)
	}
	return id
}
