package analytics_test

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
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
	"github.com/wavelength/matchops/internal/matching"
	"github.com/wavelength/matchops/internal/service/analytics"
	"github.com/wavelength/matchops/internal/validators"
)

// setupService spins up an in-memory SQLite DB, applies migrations,
// seeds the deterministic dataset, starts a miniredis, and wires
// everything into an analytics Service.
//
// Seeded actions (see db.SeedMinimalTestData):
//   - user-a ↔ user-b mutual like on 2025-06-01
//   - user-c → user-a like on 2025-06-02
//   - user-a → user-c pass on 2025-06-03 (confirms c's prior like)
func setupService(t *testing.T) (*analytics.Service, *miniredis.Miniredis) {
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
	cfg.Report.CacheTTL = 10 * time.Minute

	redisCache := cache.NewRedisCache(cfg)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // discard logs in tests

	appCtx := app.New(cfg, dbase, redisCache, nil, logger)
	return analytics.NewAnalyticsService(appCtx), mr
}

func doGET(t *testing.T, target string, handler echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	require.NoError(t, handler(e.NewContext(req, rec)))
	return rec
}

func TestMatchesReport(t *testing.T) {
	svc, _ := setupService(t)

	rec := doGET(t, "/analytics/matches", svc.Matches)
	assert.Equal(t, http.StatusOK, rec.Code)

	var report matching.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	require.Len(t, report.Events, 2)

	assert.Equal(t, matching.MatchEvent{
		UserA: "user-a", UserB: "user-b",
		MatchDay: "2025-06-01", Type: matching.MatchLikeLike,
	}, report.Events[0])
	assert.Equal(t, matching.MatchEvent{
		UserA: "user-a", UserB: "user-c",
		MatchDay: "2025-06-03", Type: matching.MatchLikePassedPrior,
	}, report.Events[1])
}

func TestMatchesReportIsCached(t *testing.T) {
	svc, mr := setupService(t)

	rec1 := doGET(t, "/analytics/matches", svc.Matches)
	var first matching.Report
	require.NoError(t, json.Unmarshal(rec1.Body.Bytes(), &first))

	// the report is now in redis
	cached, err := mr.Get("report:matches")
	require.NoError(t, err)
	require.NotEmpty(t, cached)

	// second call serves the identical snapshot
	rec2 := doGET(t, "/analytics/matches", svc.Matches)
	var second matching.Report
	require.NoError(t, json.Unmarshal(rec2.Body.Bytes(), &second))
	assert.Equal(t, first.ComputedAt, second.ComputedAt)
	assert.Equal(t, first.Events, second.Events)
}

func TestMatchesReportRefreshBypassesCache(t *testing.T) {
	svc, mr := setupService(t)

	// poison the cache with a bogus but well-formed report
	stale := matching.Report{ComputedAt: time.Now().UTC().Add(-time.Hour)}
	payload, err := json.Marshal(stale)
	require.NoError(t, err)
	require.NoError(t, mr.Set("report:matches", string(payload)))

	rec := doGET(t, "/analytics/matches?refresh=true", svc.Matches)
	var report matching.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))

	// refresh recomputed instead of serving the poisoned snapshot
	assert.Len(t, report.Events, 2)
	assert.True(t, report.ComputedAt.After(stale.ComputedAt))
}

func TestMatchesReportStaleTimestampRecomputes(t *testing.T) {
	svc, mr := setupService(t)

	// a cached entry older than the TTL by its own timestamp is not
	// served even if the redis key still exists
	stale := matching.Report{ComputedAt: time.Now().UTC().Add(-time.Hour)}
	payload, err := json.Marshal(stale)
	require.NoError(t, err)
	require.NoError(t, mr.Set("report:matches", string(payload)))

	rec := doGET(t, "/analytics/matches", svc.Matches)
	var report matching.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))

	assert.Len(t, report.Events, 2)
	assert.True(t, report.ComputedAt.After(stale.ComputedAt))
}

func TestDailyReadsCachedReport(t *testing.T) {
	svc, mr := setupService(t)

	// a fresh cached report is authoritative for the matches column
	cached := matching.Report{
		ComputedAt: time.Now().UTC(),
		Events: []matching.MatchEvent{
			{UserA: "user-a", UserB: "user-c", MatchDay: "2025-06-02", Type: matching.MatchLikeLike},
		},
	}
	payload, err := json.Marshal(cached)
	require.NoError(t, err)
	require.NoError(t, mr.Set("report:matches", string(payload)))

	rec := doGET(t, "/analytics/daily", svc.Daily)
	var rows []analytics.DailyRow
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 3)

	assert.Equal(t, 0, rows[0].Matches)
	assert.Equal(t, 1, rows[1].Matches)
	assert.Equal(t, 0, rows[2].Matches)
}

func postJSON(t *testing.T, target, body string, handler echo.HandlerFunc) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	e.Validator = validators.New()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return rec, handler(e.NewContext(req, rec))
}

func TestIngestActionsCreatesMatches(t *testing.T) {
	svc, mr := setupService(t)

	// warm the cache, then ingest a new mutual like
	doGET(t, "/analytics/matches", svc.Matches)
	require.True(t, mr.Exists("report:matches"))

	rec, err := postJSON(t, "/actions", `{"actions": [
		{"actor_id": "user-b", "target_id": "user-c", "day": "2025-06-04", "kind": "liked", "viewed": true},
		{"actor_id": "user-c", "target_id": "user-b", "day": "2025-06-04", "kind": "liked", "viewed": true}
	]}`, svc.IngestActions)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	// ingest dropped the memoized report
	assert.False(t, mr.Exists("report:matches"))

	rec = doGET(t, "/analytics/matches", svc.Matches)
	var report matching.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	require.Len(t, report.Events, 3)
	assert.Equal(t, matching.MatchEvent{
		UserA: "user-b", UserB: "user-c",
		MatchDay: "2025-06-04", Type: matching.MatchLikeLike,
	}, report.Events[2])
}

func TestIngestActionsLastWriteWins(t *testing.T) {
	svc, _ := setupService(t)

	_, err := postJSON(t, "/actions",
		`{"actions": [{"actor_id": "user-b", "target_id": "user-c", "day": "2025-06-04", "kind": "liked"}]}`,
		svc.IngestActions)
	require.NoError(t, err)

	_, err = postJSON(t, "/actions",
		`{"actions": [{"actor_id": "user-b", "target_id": "user-c", "day": "2025-06-04", "kind": "passed"}]}`,
		svc.IngestActions)
	require.NoError(t, err)

	rec := doGET(t, "/analytics/matches?refresh=true", svc.Matches)
	var report matching.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))

	// the overwritten like never matched: only the two seeded events
	assert.Len(t, report.Events, 2)
}

func TestIngestActionsRejectsBadRows(t *testing.T) {
	svc, _ := setupService(t)

	bodies := []string{
		`{"actions": [{"actor_id": "x", "target_id": "y", "day": "04-06-2025", "kind": "liked"}]}`,
		`{"actions": [{"actor_id": "x", "target_id": "x", "day": "2025-06-04", "kind": "liked"}]}`,
		`{"actions": [{"actor_id": "x", "target_id": "y", "day": "2025-06-04", "kind": "superliked"}]}`,
		`{"actions": []}`,
	}
	for _, body := range bodies {
		_, err := postJSON(t, "/actions", body, svc.IngestActions)
		require.Error(t, err, "body: %s", body)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, he.Code, "body: %s", body)
	}
}

func TestFunnel(t *testing.T) {
	svc, _ := setupService(t)

	rec := doGET(t, "/analytics/funnel", svc.Funnel)
	assert.Equal(t, http.StatusOK, rec.Code)

	var funnel analytics.FunnelResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &funnel))

	assert.Equal(t, 3, funnel.TotalUsers)
	assert.Equal(t, 3, funnel.Viewed)
	assert.Equal(t, 3, funnel.Decided)
	assert.Equal(t, 3, funnel.Liked)
	assert.Equal(t, 1, funnel.Passed)
	assert.Equal(t, 0, funnel.Disliked)
	// a↔b liked each other; c's like was never liked back
	assert.Equal(t, 2, funnel.GotMatch)
	assert.Equal(t, 4, funnel.TotalActions)
}

func TestFunnelGenderFilter(t *testing.T) {
	svc, _ := setupService(t)

	rec := doGET(t, "/analytics/funnel?gender=female", svc.Funnel)

	var funnel analytics.FunnelResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &funnel))

	// only user-a is female; she acted twice
	assert.Equal(t, 1, funnel.TotalUsers)
	assert.Equal(t, 2, funnel.TotalActions)
	assert.Equal(t, 1, funnel.GotMatch)
}

func TestFunnelDayRange(t *testing.T) {
	svc, _ := setupService(t)

	rec := doGET(t, "/analytics/funnel?from=2025-06-02&to=2025-06-03", svc.Funnel)

	var funnel analytics.FunnelResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &funnel))

	// only c's like (06-02) and a's pass (06-03) fall in range
	assert.Equal(t, 2, funnel.TotalUsers)
	assert.Equal(t, 2, funnel.TotalActions)
	assert.Equal(t, 1, funnel.Liked)
	assert.Equal(t, 1, funnel.Passed)
}

func TestDaily(t *testing.T) {
	svc, _ := setupService(t)

	rec := doGET(t, "/analytics/daily", svc.Daily)
	assert.Equal(t, http.StatusOK, rec.Code)

	var rows []analytics.DailyRow
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 3)

	assert.Equal(t, analytics.DailyRow{Day: "2025-06-01", Actions: 2, Likes: 2, Matches: 1}, rows[0])
	assert.Equal(t, analytics.DailyRow{Day: "2025-06-02", Actions: 1, Likes: 1, Matches: 0}, rows[1])
	assert.Equal(t, analytics.DailyRow{Day: "2025-06-03", Actions: 1, Likes: 0, Matches: 1}, rows[2])
}
