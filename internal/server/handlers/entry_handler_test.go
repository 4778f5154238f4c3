package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/mbodj/packhouse/internal/domain/models"
	"github.com/mbodj/packhouse/internal/repository"
	"github.com/mbodj/packhouse/internal/repository/jsonfile"
	"github.com/mbodj/packhouse/internal/service/packlog"
	"github.com/mbodj/packhouse/internal/service/reporting"
)

type brokenStore struct{}

func (brokenStore) Append(context.Context, models.PackingLogEntry) (models.PackingLogEntry, error) {
	return models.PackingLogEntry{}, repository.ErrStorageUnavailable
}

func (brokenStore) ReadAll(context.Context) ([]models.PackingLogEntry, error) {
	return nil, repository.ErrStorageUnavailable
}

func newTestRouter(t *testing.T, store repository.Store) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	packlogSvc := packlog.NewService(store, nil, 20, nil)
	reportingSvc := reporting.NewService(store, nil)
	handler := NewEntryHandler(packlogSvc, reportingSvc, nil)

	r := gin.New()
	api := r.Group("/api")
	api.POST("/entries", handler.Create)
	api.GET("/entries", handler.List)
	api.GET("/entries/summary", handler.Summary)
	api.GET("/export", handler.Export)
	return r
}

func fileStore(t *testing.T) repository.Store {
	t.Helper()
	store, err := jsonfile.NewStore(filepath.Join(t.TempDir(), "packing_log.jsonl"))
	require.NoError(t, err)
	return store
}

func postEntry(t *testing.T, r *gin.Engine, form models.EntryForm) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(form)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/entries", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
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

func TestCreateEntry(t *testing.T) {
	r := newTestRouter(t, fileStore(t))

	rec := postEntry(t, r, validForm())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var entry models.PackingLogEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entry))
	assert.NotEmpty(t, entry.ID)
	assert.InDelta(t, 4, entry.LabourHours, 1e-9)
	assert.InDelta(t, 50, entry.PunnetsPerLabourHour, 1e-9)
	assert.InDelta(t, 0.4, entry.LabourCostPerPunnet, 1e-9)
}

func TestCreateEntryRejectsInvalidField(t *testing.T) {
	store := fileStore(t)
	r := newTestRouter(t, store)

	form := validForm()
	form.FinishedPunnets = 0
	rec := postEntry(t, r, form)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Error string           `json:"error"`
		Field string           `json:"field"`
		Form  models.EntryForm `json:"form"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "finished_punnets", resp.Field)
	assert.Equal(t, form, resp.Form, "submitted values are echoed back")

	entries, err := store.ReadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries, "rejected submissions must not be persisted")
}

func TestCreateEntryMissingDateNamesFieldAndEchoesForm(t *testing.T) {
	store := fileStore(t)
	r := newTestRouter(t, store)

	form := validForm()
	form.Date = ""
	rec := postEntry(t, r, form)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Error string           `json:"error"`
		Field string           `json:"field"`
		Form  models.EntryForm `json:"form"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "date", resp.Field)
	assert.Equal(t, form, resp.Form, "submitted values are echoed back")

	entries, err := store.ReadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCreateEntryStorageUnavailable(t *testing.T) {
	r := newTestRouter(t, brokenStore{})

	form := validForm()
	rec := postEntry(t, r, form)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp struct {
		Form models.EntryForm `json:"form"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, form, resp.Form, "entered values survive a storage failure")
}

func TestListAndSummary(t *testing.T) {
	r := newTestRouter(t, fileStore(t))

	require.Equal(t, http.StatusCreated, postEntry(t, r, validForm()).Code)
	second := validForm()
	second.Minutes = 60
	second.People = 1
	second.FinishedPunnets = 80
	require.Equal(t, http.StatusCreated, postEntry(t, r, second).Code)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/entries", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var listResp struct {
		Entries []models.PackingLogEntry `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listResp))
	require.Len(t, listResp.Entries, 2)
	assert.InDelta(t, 200, listResp.Entries[0].FinishedPunnets, 1e-9)
	assert.InDelta(t, 80, listResp.Entries[1].FinishedPunnets, 1e-9)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/entries/summary", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var summary models.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, 2, summary.Entries)
	assert.InDelta(t, 5, summary.TotalLabourHours, 1e-9)
	assert.InDelta(t, 280, summary.TotalFinishedPunnets, 1e-9)
}

func TestExportDownload(t *testing.T) {
	r := newTestRouter(t, fileStore(t))
	require.Equal(t, http.StatusCreated, postEntry(t, r, validForm()).Code)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/export", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Raw_Log")
	require.NoError(t, err)
	assert.Len(t, rows, 2, "header plus the single entry")
}

func TestExportWithEmptyLog(t *testing.T) {
	r := newTestRouter(t, fileStore(t))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/export", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Raw_Log")
	require.NoError(t, err)
	assert.Len(t, rows, 1, "headers only")
}
