package waitlist

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/wavelength/matchops/internal/app"
	svcErr "github.com/wavelength/matchops/internal/errors"
	"github.com/wavelength/matchops/internal/repository"
)

const defaultPageSize = 10

// Service implements the waitlist review workflow: browsing signups
// and marking them for removal before they get a full profile.
type Service struct {
	appCtx       *app.AppContext
	waitlistRepo *repository.WaitlistRepository
}

// NewWaitlistService creates the waitlist service with dependencies
// from AppContext.
func NewWaitlistService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:       appCtx,
		waitlistRepo: repository.NewWaitlistRepository(appCtx.DB),
	}
}

// List returns a page of waitlist entries, newest signups first.
//
// Query params:
//   - gender: male | female | all (default all)
//   - limit:  page size (default 10)
//   - token:  opaque pagination cursor from a previous page
func (s *Service) List(c echo.Context) error {
	ctx := c.Request().Context()

	limit := defaultPageSize
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return svcErr.InvalidArgument("limit must be a positive integer")
		}
		limit = n
	}

	var token *string
	if v := c.QueryParam("token"); v != "" {
		token = &v
	}

	entries, nextToken, err := s.waitlistRepo.List(ctx, c.QueryParam("gender"), token, limit)
	if err != nil {
		s.appCtx.Logger.Error("waitlist list failed", "err", err)
		return svcErr.Map(err)
	}

	resp := echo.Map{"entries": entries}
	if nextToken != nil {
		resp["next_token"] = *nextToken
	}
	return c.JSON(http.StatusOK, resp)
}

// Stats returns the review dashboard counters.
func (s *Service) Stats(c echo.Context) error {
	stats, err := s.waitlistRepo.Stats(c.Request().Context())
	if err != nil {
		return svcErr.Map(err)
	}
	return c.JSON(http.StatusOK, stats)
}

// RemovalRequest toggles an entry's removal flag.
type RemovalRequest struct {
	Remove *bool `json:"remove" validate:"required"`
}

// SetRemoval marks a waitlist entry for removal, or clears the flag.
// Clearing restores the entry to the unreviewed state (stored NULL),
// matching how reviewers undo.
func (s *Service) SetRemoval(c echo.Context) error {
	var req RemovalRequest
	if err := c.Bind(&req); err != nil {
		return svcErr.InvalidArgument("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	userID := c.Param("id")
	var value *bool
	if *req.Remove {
		value = req.Remove
	}

	if err := s.waitlistRepo.SetRemovalFlag(c.Request().Context(), userID, value); err != nil {
		return svcErr.Map(err)
	}

	s.appCtx.Logger.Info("waitlist removal flag updated", "user", userID, "remove", *req.Remove)
	return c.JSON(http.StatusOK, echo.Map{"user_id": userID, "remove": *req.Remove})
}
