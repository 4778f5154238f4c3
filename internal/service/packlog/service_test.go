package packlog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbodj/packhouse/internal/costing"
	"github.com/mbodj/packhouse/internal/domain/models"
	"github.com/mbodj/packhouse/internal/repository"
)

type fakeStore struct {
	entries []models.PackingLogEntry
	failing bool
}

func (f *fakeStore) Append(_ context.Context, entry models.PackingLogEntry) (models.PackingLogEntry, error) {
	if f.failing {
		return models.PackingLogEntry{}, repository.ErrStorageUnavailable
	}
	entry.ID = "entry-000001"
	f.entries = append(f.entries, entry)
	return entry, nil
}

func (f *fakeStore) ReadAll(_ context.Context) ([]models.PackingLogEntry, error) {
	if f.failing {
		return nil, repository.ErrStorageUnavailable
	}
	return f.entries, nil
}

type recordingMirror struct {
	pushed []models.PackingLogEntry
	err    error
}

func (m *recordingMirror) PushEntry(_ context.Context, entry models.PackingLogEntry) error {
	m.pushed = append(m.pushed, entry)
	return m.err
}

func validForm() models.EntryForm {
	return models.EntryForm{
		Date:            "2025-11-03",
		Minutes:         120,
		People:          2,
		FinishedPunnets: 200,
		WasteOrDowntime: 3,
		Note:            "afternoon shift",
	}
}

func TestSubmitComputesDerivedFields(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store, nil, 20, nil)

	entry, err := svc.Submit(context.Background(), validForm())
	require.NoError(t, err)

	assert.Equal(t, "entry-000001", entry.ID)
	assert.InDelta(t, 4, entry.LabourHours, 1e-9)
	assert.InDelta(t, 50, entry.PunnetsPerLabourHour, 1e-9)
	assert.InDelta(t, 0.4, entry.LabourCostPerPunnet, 1e-9)
	assert.InDelta(t, 20, entry.HourlyRate, 1e-9)
	assert.False(t, entry.CreatedAt.IsZero())
}

func TestSubmitRejectsInvalidFieldsWithoutPersisting(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*models.EntryForm)
		field  string
	}{
		{"missing date", func(f *models.EntryForm) { f.Date = "" }, "date"},
		{"malformed date", func(f *models.EntryForm) { f.Date = "03/11/2025" }, "date"},
		{"zero minutes", func(f *models.EntryForm) { f.Minutes = 0 }, "minutes"},
		{"zero people", func(f *models.EntryForm) { f.People = 0 }, "people"},
		{"zero punnets", func(f *models.EntryForm) { f.FinishedPunnets = 0 }, "finished_punnets"},
		{"negative waste", func(f *models.EntryForm) { f.WasteOrDowntime = -1 }, "waste_or_downtime"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := &fakeStore{}
			svc := NewService(store, nil, 20, nil)

			form := validForm()
			tc.mutate(&form)

			_, err := svc.Submit(context.Background(), form)
			require.ErrorIs(t, err, costing.ErrInvalidInput)

			var fieldErr *FieldError
			require.True(t, errors.As(err, &fieldErr))
			assert.Equal(t, tc.field, fieldErr.Field)

			assert.Empty(t, store.entries, "nothing may be persisted on invalid input")
		})
	}
}

func TestSubmitSurfacesStorageErrors(t *testing.T) {
	svc := NewService(&fakeStore{failing: true}, nil, 20, nil)

	_, err := svc.Submit(context.Background(), validForm())
	require.ErrorIs(t, err, repository.ErrStorageUnavailable)
}

func TestSubmitPushesToMirrorBestEffort(t *testing.T) {
	store := &fakeStore{}
	mirror := &recordingMirror{err: errors.New("graph unreachable")}
	svc := NewService(store, mirror, 20, nil)

	entry, err := svc.Submit(context.Background(), validForm())
	require.NoError(t, err, "a failing mirror must not fail the submission")

	require.Len(t, mirror.pushed, 1)
	assert.Equal(t, entry.ID, mirror.pushed[0].ID)
}

func TestListReturnsInsertionOrder(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store, nil, 20, nil)

	first := validForm()
	second := validForm()
	second.FinishedPunnets = 80

	_, err := svc.Submit(context.Background(), first)
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), second)
	require.NoError(t, err)

	entries, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.InDelta(t, 200, entries[0].FinishedPunnets, 1e-9)
	assert.InDelta(t, 80, entries[1].FinishedPunnets, 1e-9)
}
