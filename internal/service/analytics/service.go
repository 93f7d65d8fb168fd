package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/wavelength/matchops/internal/app"
	"github.com/wavelength/matchops/internal/db"
	svcErr "github.com/wavelength/matchops/internal/errors"
	"github.com/wavelength/matchops/internal/matching"
	"github.com/wavelength/matchops/internal/metrics"
	"github.com/wavelength/matchops/internal/repository"
)

// Service implements the analytics API: the mutual-match report plus
// the funnel and daily-trend views derived from the raw action log.
type Service struct {
	appCtx     *app.AppContext
	actionRepo *repository.ActionRepository
	userRepo   *repository.UserRepository
}

// NewAnalyticsService creates the analytics service with dependencies
// from AppContext.
func NewAnalyticsService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:     appCtx,
		actionRepo: repository.NewActionRepository(appCtx.DB),
		userRepo:   repository.NewUserRepository(appCtx.DB),
	}
}

// Matches returns the full mutual-match report.
//
// Cache-first strategy:
//  1. Reads the serialized report from Redis (report:matches).
//  2. On a miss, runs the resolver over the full action log and
//     stores the result with the configured TTL.
//  3. ?refresh=true skips the read and rewrites the cache.
func (s *Service) Matches(c echo.Context) error {
	ctx := c.Request().Context()

	if c.QueryParam("refresh") == "true" {
		report, err := s.refreshReport(ctx)
		if err != nil {
			s.appCtx.Logger.Error("match report computation failed", "err", err)
			return svcErr.Map(err)
		}
		metrics.ReportRun("refresh")
		return c.JSON(http.StatusOK, report)
	}

	report, fromCache, err := s.loadReport(ctx)
	if err != nil {
		s.appCtx.Logger.Error("match report computation failed", "err", err)
		return svcErr.Map(err)
	}

	if fromCache {
		metrics.ReportRun("hit")
	} else {
		metrics.ReportRun("miss")
	}
	return c.JSON(http.StatusOK, report)
}

// loadReport serves the cached report when it is present, readable,
// and fresh by its own timestamp, recomputing otherwise. The Redis
// TTL normally bounds staleness; the timestamp check also catches
// entries written under a misconfigured TTL.
func (s *Service) loadReport(ctx context.Context) (*matching.Report, bool, error) {
	key := s.appCtx.RedisCache.KeyForMatchReport()

	if cached, _ := s.appCtx.RedisCache.Get(ctx, key); cached != "" {
		var report matching.Report
		if err := json.Unmarshal([]byte(cached), &report); err != nil {
			s.appCtx.Logger.Warn("discarding unreadable cached match report")
		} else if !report.Expired(s.appCtx.Cfg.Report.CacheTTL, time.Now().UTC()) {
			return &report, true, nil
		}
	}

	report, err := s.refreshReport(ctx)
	return report, false, err
}

// refreshReport recomputes the report and rewrites the cache.
func (s *Service) refreshReport(ctx context.Context) (*matching.Report, error) {
	report, err := s.computeReport(ctx)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(report); err == nil {
		key := s.appCtx.RedisCache.KeyForMatchReport()
		_ = s.appCtx.RedisCache.Set(ctx, key, payload, s.appCtx.Cfg.Report.CacheTTL)
	}
	return report, nil
}

func (s *Service) computeReport(ctx context.Context) (*matching.Report, error) {
	actions, err := s.actionRepo.FetchActionLog(ctx)
	if err != nil {
		return nil, err
	}

	events, err := matching.Resolve(actions)
	if err != nil {
		return nil, err
	}

	s.appCtx.Logger.Info("match report computed", "actions", len(actions), "matches", len(events))

	return &matching.Report{
		ComputedAt: time.Now().UTC(),
		Events:     events,
	}, nil
}

// ActionInput is one reaction row in an ingest batch. An empty kind
// records the card as shown but undecided.
type ActionInput struct {
	ActorID       string `json:"actor_id" validate:"required"`
	TargetID      string `json:"target_id" validate:"required"`
	Day           string `json:"day" validate:"required"`
	Kind          string `json:"kind"`
	Viewed        bool   `json:"viewed"`
	KnowMoreCount int    `json:"know_more_count"`
}

// IngestRequest is a batch of action rows to upsert.
type IngestRequest struct {
	Actions []ActionInput `json:"actions" validate:"required,min=1,dive"`
}

// IngestActions upserts a batch of action rows, for backfills and for
// syncing the log from the consumer app. The whole batch is validated
// before any row is written; the match report cache is dropped after
// a successful write.
func (s *Service) IngestActions(c echo.Context) error {
	ctx := c.Request().Context()

	var req IngestRequest
	if err := c.Bind(&req); err != nil {
		return svcErr.InvalidArgument("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	for i, a := range req.Actions {
		if _, err := matching.ParseDay(a.Day); err != nil {
			return svcErr.InvalidArgument(fmt.Sprintf("action %d: day must be a YYYY-MM-DD date", i))
		}
		if a.ActorID == a.TargetID {
			return svcErr.InvalidArgument(fmt.Sprintf("action %d: actor and target are the same user", i))
		}
		if a.Kind != "" && !matching.ActionKind(a.Kind).Valid() {
			return svcErr.InvalidArgument(fmt.Sprintf("action %d: unknown kind %q", i, a.Kind))
		}
	}

	for _, a := range req.Actions {
		var kind *string
		if a.Kind != "" {
			k := a.Kind
			kind = &k
		}
		row := &db.MatchAction{
			ActorID:       a.ActorID,
			TargetID:      a.TargetID,
			ActionDay:     a.Day,
			Kind:          kind,
			Viewed:        a.Viewed,
			KnowMoreCount: a.KnowMoreCount,
		}
		if err := s.actionRepo.UpsertAction(ctx, row); err != nil {
			s.appCtx.Logger.Error("action ingest failed", "actor", a.ActorID, "target", a.TargetID, "err", err)
			return svcErr.Map(err)
		}
	}

	// the log changed, the memoized report is stale
	_ = s.appCtx.RedisCache.Del(ctx, s.appCtx.RedisCache.KeyForMatchReport())

	s.appCtx.Logger.Info("actions ingested", "count", len(req.Actions))
	return c.JSON(http.StatusOK, echo.Map{"ingested": len(req.Actions)})
}

// FunnelResponse counts users at each engagement stage.
type FunnelResponse struct {
	TotalUsers   int `json:"total_users"`
	Viewed       int `json:"viewed"`
	Engaged      int `json:"engaged"`
	Decided      int `json:"decided"`
	Liked        int `json:"liked"`
	Disliked     int `json:"disliked"`
	Passed       int `json:"passed"`
	GotMatch     int `json:"got_match"`
	TotalActions int `json:"total_actions"`
}

// Funnel builds the engagement funnel from the raw action rows,
// counting distinct actors per stage. ?gender=male|female narrows the
// actor set; ?from=YYYY-MM-DD and ?to=YYYY-MM-DD bound the days.
func (s *Service) Funnel(c echo.Context) error {
	ctx := c.Request().Context()
	gender := c.QueryParam("gender")

	from, to := c.QueryParam("from"), c.QueryParam("to")
	if from != "" {
		if _, err := matching.ParseDay(from); err != nil {
			return svcErr.InvalidArgument("from must be a YYYY-MM-DD date")
		}
	}
	if to != "" {
		if _, err := matching.ParseDay(to); err != nil {
			return svcErr.InvalidArgument("to must be a YYYY-MM-DD date")
		}
	}

	rows, err := s.actionRepo.FetchAllRows(ctx)
	if err != nil {
		return svcErr.Map(err)
	}

	var genderByUser map[string]string
	if gender != "" {
		genderByUser, err = s.userRepo.GenderByUser(ctx)
		if err != nil {
			return svcErr.Map(err)
		}
	}

	likedPairs := make(map[matching.DirectedKey]bool)
	for _, row := range rows {
		if row.Kind != nil && *row.Kind == string(matching.ActionLiked) {
			likedPairs[matching.DirectedKey{Actor: row.ActorID, Target: row.TargetID}] = true
		}
	}

	type stages struct {
		viewed, engaged, decided bool
		liked, disliked, passed  bool
		gotMatch                 bool
	}
	byActor := make(map[string]*stages)
	resp := FunnelResponse{}

	for _, row := range rows {
		if gender != "" && genderByUser[row.ActorID] != gender {
			continue
		}
		// ISO dates compare correctly as strings
		if (from != "" && row.ActionDay < from) || (to != "" && row.ActionDay > to) {
			continue
		}
		resp.TotalActions++

		st := byActor[row.ActorID]
		if st == nil {
			st = &stages{}
			byActor[row.ActorID] = st
		}

		if row.Viewed {
			st.viewed = true
		}
		if row.KnowMoreCount > 0 {
			st.engaged = true
		}
		if row.Kind != nil {
			st.decided = true
			switch *row.Kind {
			case string(matching.ActionLiked):
				st.liked = true
				// mutual when the target liked back on any day
				if likedPairs[matching.DirectedKey{Actor: row.TargetID, Target: row.ActorID}] {
					st.gotMatch = true
				}
			case string(matching.ActionDisliked):
				st.disliked = true
			case string(matching.ActionPassed):
				st.passed = true
			}
		}
	}

	resp.TotalUsers = len(byActor)
	for _, st := range byActor {
		if st.viewed {
			resp.Viewed++
		}
		if st.engaged {
			resp.Engaged++
		}
		if st.decided {
			resp.Decided++
		}
		if st.liked {
			resp.Liked++
		}
		if st.disliked {
			resp.Disliked++
		}
		if st.passed {
			resp.Passed++
		}
		if st.gotMatch {
			resp.GotMatch++
		}
	}

	return c.JSON(http.StatusOK, resp)
}

// DailyRow is one day of the trend view.
type DailyRow struct {
	Day     string `json:"day"`
	Actions int64  `json:"actions"`
	Likes   int64  `json:"likes"`
	Matches int    `json:"matches"`
}

// Daily returns per-day action, like, and confirmed-match counts in
// ascending day order.
func (s *Service) Daily(c echo.Context) error {
	ctx := c.Request().Context()

	counts, err := s.actionRepo.CountByDay(ctx)
	if err != nil {
		return svcErr.Map(err)
	}

	report, _, err := s.loadReport(ctx)
	if err != nil {
		return svcErr.Map(err)
	}
	matchesByDay := make(map[string]int)
	for _, e := range report.Events {
		matchesByDay[string(e.MatchDay)]++
	}

	out := make([]DailyRow, 0, len(counts))
	for _, row := range counts {
		out = append(out, DailyRow{
			Day:     row.Day,
			Actions: row.Actions,
			Likes:   row.Likes,
			Matches: matchesByDay[row.Day],
		})
	}

	return c.JSON(http.StatusOK, out)
}
