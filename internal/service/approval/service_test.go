package approval_test

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/wavelength/matchops/internal/app"
	"github.com/wavelength/matchops/internal/cache"
	"github.com/wavelength/matchops/internal/config"
	"github.com/wavelength/matchops/internal/db"
	"github.com/wavelength/matchops/internal/service/approval"
)

// Seed leaves profile-1 pending and profile-2 approved.
func setupService(t *testing.T) (*approval.Service, *miniredis.Miniredis) {
	t.Helper()

	dbName := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	dbase, err := gorm.Open(sqlite.Open(dbName), &gorm.Config{
		NowFunc:                func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	sqlDB, err := dbase.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Migrate(dbase))
	require.NoError(t, db.SeedMinimalTestData(dbase))

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })

	cfg := &config.Config{}
	cfg.Redis.Addr = mr.Addr()

	redisCache := cache.NewRedisCache(cfg)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	appCtx := app.New(cfg, dbase, redisCache, nil, logger)
	return approval.NewApprovalService(appCtx), mr
}

func call(t *testing.T, method, target, profileID string, handler echo.HandlerFunc) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if profileID != "" {
		c.SetParamNames("id")
		c.SetParamValues(profileID)
	}
	return rec, handler(c)
}

func TestListPendingAndApproved(t *testing.T) {
	svc, _ := setupService(t)

	rec, err := call(t, http.MethodGet, "/profiles/pending", "", svc.ListPending)
	require.NoError(t, err)

	var resp struct {
		Profiles []db.Profile `json:"profiles"`
		Count    int          `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "profile-1", resp.Profiles[0].ProfileID)

	rec, err = call(t, http.MethodGet, "/profiles/approved", "", svc.ListApproved)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "profile-2", resp.Profiles[0].ProfileID)
}

func TestApproveAndUndo(t *testing.T) {
	svc, _ := setupService(t)

	_, err := call(t, http.MethodPost, "/profiles/profile-1/approve", "profile-1", svc.Approve)
	require.NoError(t, err)

	rec, err := call(t, http.MethodGet, "/profiles/approved", "", svc.ListApproved)
	require.NoError(t, err)
	var resp struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)

	_, err = call(t, http.MethodPost, "/profiles/profile-1/undo", "profile-1", svc.Undo)
	require.NoError(t, err)

	rec, err = call(t, http.MethodGet, "/profiles/pending", "", svc.ListPending)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
}

func TestApproveAlreadyApprovedConflicts(t *testing.T) {
	svc, _ := setupService(t)

	_, err := call(t, http.MethodPost, "/profiles/profile-2/approve", "profile-2", svc.Approve)
	require.Error(t, err)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, he.Code)
}

func TestApproveUnknownProfile(t *testing.T) {
	svc, _ := setupService(t)

	_, err := call(t, http.MethodPost, "/profiles/ghost/approve", "ghost", svc.Approve)
	require.Error(t, err)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, he.Code)
}

func TestCountsCacheFirst(t *testing.T) {
	svc, mr := setupService(t)

	rec, err := call(t, http.MethodGet, "/profiles/counts", "", svc.Counts)
	require.NoError(t, err)

	var counts approval.CountsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &counts))
	assert.Equal(t, int64(1), counts.Pending)
	assert.Equal(t, int64(1), counts.Approved)

	// snapshot landed in redis
	cached, err := mr.Get("profiles:counts")
	require.NoError(t, err)
	assert.NotEmpty(t, cached)

	// a transition drops the snapshot
	_, err = call(t, http.MethodPost, "/profiles/profile-1/approve", "profile-1", svc.Approve)
	require.NoError(t, err)
	assert.False(t, mr.Exists("profiles:counts"))

	rec, err = call(t, http.MethodGet, "/profiles/counts", "", svc.Counts)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &counts))
	assert.Equal(t, int64(0), counts.Pending)
	assert.Equal(t, int64(2), counts.Approved)
}
