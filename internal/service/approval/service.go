package approval

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/wavelength/matchops/internal/app"
	"github.com/wavelength/matchops/internal/db"
	svcErr "github.com/wavelength/matchops/internal/errors"
	"github.com/wavelength/matchops/internal/repository"
)

const countsCacheTTL = time.Hour

// Service implements the profile approval workflow: curated pairings
// move between pending and approved under operator review.
type Service struct {
	appCtx      *app.AppContext
	profileRepo *repository.ProfileRepository
}

// NewApprovalService creates the approval service with dependencies
// from AppContext.
func NewApprovalService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:      appCtx,
		profileRepo: repository.NewProfileRepository(appCtx.DB),
	}
}

// ListPending returns profiles awaiting review, newest first.
func (s *Service) ListPending(c echo.Context) error {
	profiles, err := s.profileRepo.ListByStatus(c.Request().Context(), db.ProfileStatusPending)
	if err != nil {
		return svcErr.Map(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"profiles": profiles, "count": len(profiles)})
}

// ListApproved returns profiles already signed off, newest first.
func (s *Service) ListApproved(c echo.Context) error {
	profiles, err := s.profileRepo.ListByStatus(c.Request().Context(), db.ProfileStatusApproved)
	if err != nil {
		return svcErr.Map(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"profiles": profiles, "count": len(profiles)})
}

// Approve moves a pending profile to approved. Approving an already
// approved profile is a conflict, not a no-op, so double-clicks in
// the dashboard surface instead of silently passing.
func (s *Service) Approve(c echo.Context) error {
	return s.transition(c, db.ProfileStatusPending, db.ProfileStatusApproved)
}

// Undo moves an approved profile back to pending.
func (s *Service) Undo(c echo.Context) error {
	return s.transition(c, db.ProfileStatusApproved, db.ProfileStatusPending)
}

func (s *Service) transition(c echo.Context, from, to string) error {
	ctx := c.Request().Context()
	profileID := c.Param("id")

	current, err := s.profileRepo.GetStatus(ctx, profileID)
	if err != nil {
		return svcErr.Map(err)
	}
	if current != from {
		return svcErr.Conflict("profile is not in state " + from)
	}

	if err := s.profileRepo.SetStatus(ctx, profileID, to); err != nil {
		return svcErr.Map(err)
	}

	// counts changed, drop the cached snapshot
	_ = s.appCtx.RedisCache.Del(ctx, s.appCtx.RedisCache.KeyForProfileCounts())

	s.appCtx.Logger.Info("profile transitioned", "profile", profileID, "from", from, "to", to)
	return c.JSON(http.StatusOK, echo.Map{"profile_id": profileID, "status": to})
}

// CountsResponse is the pending/approved snapshot for the dashboard
// header badges.
type CountsResponse struct {
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
}

// Counts returns how many profiles sit in each state.
//
// Cache-first strategy:
//  1. Reads the JSON snapshot from Redis (profiles:counts).
//  2. On a miss, counts in the DB and stores with a 1h TTL.
//
// Approve/Undo invalidate the key, so staleness is bounded by writes
// from outside this service only.
func (s *Service) Counts(c echo.Context) error {
	ctx := c.Request().Context()
	key := s.appCtx.RedisCache.KeyForProfileCounts()

	if cached, _ := s.appCtx.RedisCache.Get(ctx, key); cached != "" {
		var resp CountsResponse
		if err := json.Unmarshal([]byte(cached), &resp); err == nil {
			return c.JSON(http.StatusOK, resp)
		}
	}

	pending, approved, err := s.profileRepo.Counts(ctx)
	if err != nil {
		return svcErr.Map(err)
	}

	resp := CountsResponse{Pending: pending, Approved: approved}
	if payload, err := json.Marshal(resp); err == nil {
		_ = s.appCtx.RedisCache.Set(ctx, key, payload, countsCacheTTL)
	}

	return c.JSON(http.StatusOK, resp)
}
