// Package projection maintains the locally materialized report list fed
// by store snapshots and offers pure filtering over it. It never writes
// back to the store.
package projection

import (
	"sort"
	"sync"

	"github.com/lediangroup/repair-board/internal/models"
)

// FilterAll is the synthetic value matching every status or facility.
const FilterAll = "All"

// Subscriber is the slice of the report store the projection needs.
type Subscriber interface {
	Subscribe() (<-chan []models.Report, func())
}

// Projection holds the latest full snapshot received from a store
// subscription.
type Projection struct {
	mu      sync.RWMutex
	reports []models.Report

	stopOnce sync.Once
	cancel   func()
	done     chan struct{}
}

// Start subscribes to src and follows its snapshots until Stop.
func Start(src Subscriber) *Projection {
	ch, cancel := src.Subscribe()
	p := &Projection{cancel: cancel, done: make(chan struct{})}
	go p.follow(ch)
	return p
}

func (p *Projection) follow(ch <-chan []models.Report) {
	defer close(p.done)
	for reports := range ch {
		p.mu.Lock()
		p.reports = reports
		p.mu.Unlock()
	}
}

// Stop unsubscribes and waits for the follower goroutine to drain.
// Safe to call more than once.
func (p *Projection) Stop() {
	p.stopOnce.Do(func() {
		p.cancel()
		<-p.done
	})
}

// Current returns a copy of the latest snapshot.
func (p *Projection) Current() []models.Report {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]models.Report, len(p.reports))
	copy(out, p.reports)
	return out
}

// Filter returns the reports matching both filters. Either filter set to
// FilterAll (or empty) matches everything.
func Filter(reports []models.Report, status, facility string) []models.Report {
	out := make([]models.Report, 0, len(reports))
	for _, r := range reports {
		statusMatch := status == "" || status == FilterAll || string(r.Status) == status
		facilityMatch := facility == "" || facility == FilterAll || r.Facility == facility
		if statusMatch && facilityMatch {
			out = append(out, r)
		}
	}
	return out
}

// Facilities returns the distinct facility names present in reports,
// sorted, with the synthetic "All" option first. Blank facilities are
// skipped.
func Facilities(reports []models.Report) []string {
	seen := make(map[string]struct{})
	for _, r := range reports {
		if r.Facility != "" {
			seen[r.Facility] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return append([]string{FilterAll}, names...)
}

// Stats counts open and fixed reports over the unfiltered snapshot.
func Stats(reports []models.Report) (open, fixed int) {
	for _, r := range reports {
		switch r.Status {
		case models.StatusOpen:
			open++
		case models.StatusFixed:
			fixed++
		}
	}
	return open, fixed
}
