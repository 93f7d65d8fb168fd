package users

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/wavelength/matchops/internal/app"
	svcErr "github.com/wavelength/matchops/internal/errors"
	"github.com/wavelength/matchops/internal/repository"
)

const defaultPageSize = 50

// Service implements the operator-facing user endpoints: browsing,
// rating, removal flagging, and bulk existence checks.
type Service struct {
	appCtx   *app.AppContext
	userRepo *repository.UserRepository
}

// NewUsersService creates the users service with dependencies from AppContext.
func NewUsersService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:   appCtx,
		userRepo: repository.NewUserRepository(appCtx.DB),
	}
}

// List returns a page of user metadata.
//
// Query params:
//   - gender: male | female | all (default all)
//   - rating: all | rated | "not rated" (default all)
//   - limit:  page size (default 50)
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

	rating := repository.RatingFilter(c.QueryParam("rating"))
	switch rating {
	case "", repository.RatingAny, repository.RatingRated, repository.RatingNotRated:
	default:
		return svcErr.InvalidArgument(`rating must be one of "all", "rated", "not rated"`)
	}

	var token *string
	if v := c.QueryParam("token"); v != "" {
		token = &v
	}

	users, nextToken, err := s.userRepo.List(ctx, c.QueryParam("gender"), rating, token, limit)
	if err != nil {
		s.appCtx.Logger.Error("user list failed", "err", err)
		return svcErr.Map(err)
	}

	resp := echo.Map{"users": users}
	if nextToken != nil {
		resp["next_token"] = *nextToken
	}
	return c.JSON(http.StatusOK, resp)
}

// Get returns one user's metadata.
func (s *Service) Get(c echo.Context) error {
	user, err := s.userRepo.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return svcErr.Map(err)
	}
	return c.JSON(http.StatusOK, user)
}

// RatingRequest carries the operator's attractiveness score.
type RatingRequest struct {
	Score int `json:"score" validate:"required,min=1,max=10"`
}

// SetAttractiveness records a 1..10 score for one user.
func (s *Service) SetAttractiveness(c echo.Context) error {
	var req RatingRequest
	if err := c.Bind(&req); err != nil {
		return svcErr.InvalidArgument("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	userID := c.Param("id")
	if err := s.userRepo.SetAttractiveness(c.Request().Context(), userID, req.Score); err != nil {
		return svcErr.Map(err)
	}

	s.appCtx.Logger.Info("attractiveness set", "user", userID, "score", req.Score)
	return c.JSON(http.StatusOK, echo.Map{"user_id": userID, "score": req.Score})
}

// RemovalRequest toggles the removal flag.
type RemovalRequest struct {
	Remove *bool `json:"remove" validate:"required"`
}

// SetRemoval marks or unmarks a user for removal.
func (s *Service) SetRemoval(c echo.Context) error {
	var req RemovalRequest
	if err := c.Bind(&req); err != nil {
		return svcErr.InvalidArgument("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	userID := c.Param("id")
	if err := s.userRepo.SetRemovalFlag(c.Request().Context(), userID, *req.Remove); err != nil {
		return svcErr.Map(err)
	}

	s.appCtx.Logger.Info("removal flag updated", "user", userID, "remove", *req.Remove)
	return c.JSON(http.StatusOK, echo.Map{"user_id": userID, "remove": *req.Remove})
}

// ListRemoved returns every user flagged for removal.
func (s *Service) ListRemoved(c echo.Context) error {
	users, err := s.userRepo.ListRemoved(c.Request().Context())
	if err != nil {
		return svcErr.Map(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"users": users, "count": len(users)})
}

// SegmentCheckRequest is a bulk membership probe: which of these IDs
// still exist.
type SegmentCheckRequest struct {
	UserIDs []string `json:"user_ids" validate:"required,min=1"`
}

// CheckSegment splits the submitted IDs into existing and missing,
// so stale segment exports can be reconciled against the live table.
func (s *Service) CheckSegment(c echo.Context) error {
	var req SegmentCheckRequest
	if err := c.Bind(&req); err != nil {
		return svcErr.InvalidArgument("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	existing, err := s.userRepo.ExistingIDs(c.Request().Context(), req.UserIDs)
	if err != nil {
		return svcErr.Map(err)
	}

	found := make([]string, 0, len(req.UserIDs))
	missing := make([]string, 0)
	for _, id := range req.UserIDs {
		if existing[id] {
			found = append(found, id)
		} else {
			missing = append(missing, id)
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"existing": found,
		"missing":  missing,
	})
}
