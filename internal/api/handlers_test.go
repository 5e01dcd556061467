package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"CarnivalSync/internal/config"
	"CarnivalSync/internal/model"
	"CarnivalSync/internal/repository"
	"CarnivalSync/internal/service"
	"CarnivalSync/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixedSource struct {
	events []*model.ScrapedEvent
}

func (f *fixedSource) Name() string { return "fixed" }

func (f *fixedSource) FetchEvents(context.Context) ([]*model.ScrapedEvent, error) {
	return f.events, nil
}

func newTestRouter(t *testing.T, enabled bool) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewTestDB(t)
	logger := testutil.NewLogger()
	cfg := &config.SyncConfig{
		Enabled:         enabled,
		MinInterval:     24 * time.Hour,
		StaleRunTimeout: time.Hour,
		Workers:         1,
	}
	carnivalRepo := repository.NewCarnivalRepository(db)
	syncLog := service.NewSyncLogService(repository.NewSyncLogRepository(db), cfg, logger)
	source := &fixedSource{events: []*model.ScrapedEvent{
		{MySidelineID: "h-1", Title: "Townsville Masters", Date: "20/07/2099", State: "QLD"},
		{MySidelineID: "h-2", Title: "Perth Masters", Date: "21/08/2099", State: "WA"},
	}}
	syncService := service.NewSyncService(carnivalRepo, syncLog, source, cfg, logger, nil)

	r := gin.New()
	RegisterRoutes(r,
		NewSyncHandler(syncService, logger),
		NewCarnivalHandler(service.NewCarnivalService(carnivalRepo, logger), logger),
	)
	return r, db
}

func doRequest(r http.Handler, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestTriggerSync_ThenThrottledThenForced(t *testing.T) {
	r, _ := newTestRouter(t, true)

	w := doRequest(r, http.MethodPost, "/sync/mysideline")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res service.SyncResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.True(t, res.Success)
	assert.Equal(t, 2, res.EventsCreated)
	assert.NotZero(t, res.LogID)

	w = doRequest(r, http.MethodPost, "/sync/mysideline")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.True(t, res.Skipped)

	w = doRequest(r, http.MethodPost, "/sync/mysideline?force=true")
	require.Equal(t, http.StatusOK, w.Code)
	res = service.SyncResult{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.False(t, res.Skipped)
	assert.Equal(t, 2, res.EventsUpdated)
}

func TestTriggerSync_Disabled(t *testing.T) {
	r, _ := newTestRouter(t, false)
	w := doRequest(r, http.MethodPost, "/sync/mysideline?force=true")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSyncStatusAndLogs(t *testing.T) {
	r, _ := newTestRouter(t, true)

	w := doRequest(r, http.MethodGet, "/sync/status")
	require.Equal(t, http.StatusOK, w.Code)
	var status struct {
		Enabled        bool           `json:"enabled"`
		ShouldRun      bool           `json:"shouldRun"`
		LastSuccessful *model.SyncLog `json:"lastSuccessful"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.True(t, status.Enabled)
	assert.True(t, status.ShouldRun)
	assert.Nil(t, status.LastSuccessful)

	require.Equal(t, http.StatusOK, doRequest(r, http.MethodPost, "/sync/mysideline").Code)

	w = doRequest(r, http.MethodGet, "/sync/status")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.False(t, status.ShouldRun)
	require.NotNil(t, status.LastSuccessful)
	assert.Equal(t, model.SyncStatusCompleted, status.LastSuccessful.Status)

	w = doRequest(r, http.MethodGet, "/sync/logs?limit=5")
	require.Equal(t, http.StatusOK, w.Code)
	var logs struct {
		Items []model.SyncLog `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &logs))
	require.Len(t, logs.Items, 1)
	assert.Equal(t, 2, logs.Items[0].EventsCreated)
}

func TestDeactivatePastEndpoint(t *testing.T) {
	r, db := newTestRouter(t, true)
	past := time.Now().UTC().AddDate(0, 0, -7)
	require.NoError(t, db.Create(&model.Carnival{Title: "Old", Date: &past, IsActive: true}).Error)

	w := doRequest(r, http.MethodPost, "/sync/mysideline/deactivate-past")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"deactivated":1}`, w.Body.String())
}

func TestCarnivalEndpoints(t *testing.T) {
	r, _ := newTestRouter(t, true)
	require.Equal(t, http.StatusOK, doRequest(r, http.MethodPost, "/sync/mysideline").Code)

	w := doRequest(r, http.MethodGet, "/api/carnivals?state=Queensland&active=true")
	require.Equal(t, http.StatusOK, w.Code)
	var list service.CarnivalListResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.EqualValues(t, 1, list.Total)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "Townsville Masters", list.Items[0].Title)
	assert.Equal(t, "2099-07-20", list.Items[0].Date)
	assert.Equal(t, "h-1", list.Items[0].MySidelineID)

	w = doRequest(r, http.MethodGet, "/api/carnivals/1")
	require.Equal(t, http.StatusOK, w.Code)
	var detail map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.Equal(t, "Townsville Masters", detail["title"])
	assert.Equal(t, model.SourceMySideline, detail["source"])
	assert.NotEmpty(t, w.Header().Get("Last-Modified"))

	assert.Equal(t, http.StatusNotFound, doRequest(r, http.MethodGet, "/api/carnivals/999").Code)
	assert.Equal(t, http.StatusBadRequest, doRequest(r, http.MethodGet, "/api/carnivals/abc").Code)
	assert.Equal(t, http.StatusBadRequest, doRequest(r, http.MethodGet, "/api/carnivals?state=Atlantis").Code)
	assert.Equal(t, http.StatusBadRequest, doRequest(r, http.MethodGet, "/api/carnivals?active=maybe").Code)
}
