package services

import (
	"errors"
	"testing"
	"time"

	"github.com/lediangroup/repair-board/internal/models"
	"github.com/lediangroup/repair-board/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() func() time.Time {
	return func() time.Time {
		return time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	}
}

func newTestLifecycle(fs *fakeStore) *LifecycleService {
	svc := NewLifecycleService(fs)
	svc.now = fixedClock()
	return svc
}

func TestChangeStatusAppendsOneHistoryEvent(t *testing.T) {
	fs := newFakeStore()
	svc := newTestLifecycle(fs)
	id := fs.mustCreate(models.Report{Facility: "本館", Location: "201", Item: "エアコン"})

	targets := []models.ReportStatus{models.StatusInProgress, models.StatusFixed, models.StatusOpen}
	for i, target := range targets {
		require.NoError(t, svc.ChangeStatus(id, target))

		report, err := fs.Get(id)
		require.NoError(t, err)
		assert.Equal(t, target, report.Status)
		require.Len(t, report.History, i+1, "exactly one event per transition")

		last := report.History[len(report.History)-1]
		assert.Equal(t, models.SystemUser, last.User)
		assert.Contains(t, last.Content, string(target))
	}
}

func TestChangeStatusAllowsBackwardTransition(t *testing.T) {
	fs := newFakeStore()
	svc := newTestLifecycle(fs)
	id := fs.mustCreate(models.Report{Facility: "本館", Location: "201", Item: "エアコン", Status: models.StatusFixed})

	// The enum is the only rule; Fixed -> Open is accepted.
	require.NoError(t, svc.ChangeStatus(id, models.StatusOpen))
	report, err := fs.Get(id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusOpen, report.Status)
}

func TestChangeStatusRejectsUnknownStatus(t *testing.T) {
	fs := newFakeStore()
	svc := newTestLifecycle(fs)
	id := fs.mustCreate(models.Report{Facility: "本館", Location: "201", Item: "エアコン"})

	err := svc.ChangeStatus(id, models.ReportStatus("Closed"))
	assert.ErrorIs(t, err, ErrInvalidStatus)

	report, _ := fs.Get(id)
	assert.Empty(t, report.History, "no event recorded for a rejected transition")
}

func TestChangeStatusMissingReport(t *testing.T) {
	svc := newTestLifecycle(newFakeStore())
	err := svc.ChangeStatus("00000000-0000-0000-0000-000000000000", models.StatusFixed)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestAddCommentAppendsExactlyOneEvent(t *testing.T) {
	fs := newFakeStore()
	svc := newTestLifecycle(fs)
	id := fs.mustCreate(models.Report{Facility: "本館", Location: "201", Item: "エアコン"})

	report, err := fs.Get(id)
	require.NoError(t, err)

	event, err := svc.AddComment(id, report.History, "田中", "部品を発注しました")
	require.NoError(t, err)
	assert.Equal(t, "田中", event.User)
	assert.Equal(t, "部品を発注しました", event.Content)

	updated, err := fs.Get(id)
	require.NoError(t, err)
	require.Len(t, updated.History, 1)
	assert.Equal(t, *event, updated.History[0])
}

func TestAddCommentRejectsEmptyInput(t *testing.T) {
	fs := newFakeStore()
	svc := newTestLifecycle(fs)
	id := fs.mustCreate(models.Report{Facility: "本館", Location: "201", Item: "エアコン"})

	cases := []struct {
		name, author, text string
	}{
		{"empty author", "", "comment"},
		{"empty text", "田中", ""},
		{"whitespace author", "   ", "comment"},
		{"whitespace text", "田中", " \t\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.AddComment(id, nil, tc.author, tc.text)
			assert.ErrorIs(t, err, ErrEmptyComment)
		})
	}

	report, _ := fs.Get(id)
	assert.Empty(t, report.History, "rejected comments never reach the store")
}

// Two appenders working from the same history snapshot overwrite each
// other: the final history holds only the second append. This pins the
// documented last-write-wins behavior rather than fixing it.
func TestConcurrentAppendsFromSameSnapshotLoseOne(t *testing.T) {
	fs := newFakeStore()
	svc := newTestLifecycle(fs)
	id := fs.mustCreate(models.Report{Facility: "本館", Location: "201", Item: "エアコン"})

	snapshot, err := fs.Get(id)
	require.NoError(t, err)

	_, err = svc.AddComment(id, snapshot.History, "田中", "先に書いたコメント")
	require.NoError(t, err)
	_, err = svc.AddComment(id, snapshot.History, "佐藤", "後に書いたコメント")
	require.NoError(t, err)

	final, err := fs.Get(id)
	require.NoError(t, err)
	require.Len(t, final.History, 1, "one of the two appends is silently lost")
	assert.Equal(t, "佐藤", final.History[0].User)
}

func TestUpdateDetailsMergesWithoutHistoryEvent(t *testing.T) {
	fs := newFakeStore()
	svc := newTestLifecycle(fs)
	id := fs.mustCreate(models.Report{
		Facility: "本館",
		Location: "201",
		Item:     "エアコン",
		Remarks:  "異音あり",
		Status:   models.StatusInProgress,
	})

	location := "202"
	remarks := "異音あり・水漏れも確認"
	require.NoError(t, svc.UpdateDetails(id, FieldUpdate{Location: &location, Remarks: &remarks}))

	report, err := fs.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "202", report.Location)
	assert.Equal(t, "異音あり・水漏れも確認", report.Remarks)
	assert.Equal(t, "本館", report.Facility, "unnamed fields untouched")
	assert.Equal(t, "エアコン", report.Item)
	assert.Equal(t, models.StatusInProgress, report.Status, "status untouched")
	assert.Empty(t, report.History, "field edits do not append history")
}

func TestUpdateDetailsEmptyIsNoOp(t *testing.T) {
	fs := newFakeStore()
	svc := newTestLifecycle(fs)
	require.NoError(t, svc.UpdateDetails("whatever", FieldUpdate{}))
}

func TestDeleteIsTerminal(t *testing.T) {
	fs := newFakeStore()
	svc := newTestLifecycle(fs)
	id := fs.mustCreate(models.Report{Facility: "本館", Location: "201", Item: "エアコン"})

	require.NoError(t, svc.Delete(id))

	_, err := fs.Get(id)
	assert.ErrorIs(t, err, store.ErrNotFound, "deleted id cannot be re-fetched")
	assert.ErrorIs(t, svc.Delete(id), store.ErrNotFound)
}

func TestWriteFailureSurfacesToCaller(t *testing.T) {
	fs := newFakeStore()
	svc := newTestLifecycle(fs)
	id := fs.mustCreate(models.Report{Facility: "本館", Location: "201", Item: "エアコン"})

	boom := errors.New("connection reset")
	fs.updateErr = boom

	err := svc.ChangeStatus(id, models.StatusFixed)
	assert.ErrorIs(t, err, boom, "store errors are not swallowed")

	fs.updateErr = nil
	report, _ := fs.Get(id)
	assert.Equal(t, models.StatusOpen, report.Status, "pre-failure state unchanged")
	assert.Empty(t, report.History)
}
