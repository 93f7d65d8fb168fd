package outreach

import (
	"encoding/csv"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/wavelength/matchops/internal/app"
	svcErr "github.com/wavelength/matchops/internal/errors"
	"github.com/wavelength/matchops/internal/repository"
)

// Service implements the email batch generator: pasted user IDs in,
// a CSV of Gmail compose links out.
type Service struct {
	appCtx   *app.AppContext
	userRepo *repository.UserRepository
}

// NewOutreachService creates the outreach service with dependencies
// from AppContext.
func NewOutreachService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:   appCtx,
		userRepo: repository.NewUserRepository(appCtx.DB),
	}
}

// BatchRequest is the raw outreach job: pasted IDs plus the message.
type BatchRequest struct {
	UserIDs   string `json:"user_ids" validate:"required"`
	Subject   string `json:"subject" validate:"required"`
	Body      string `json:"body"`
	BatchSize int    `json:"batch_size"`
}

// CreateBatches resolves the pasted IDs to email addresses, chunks
// them into compose links, and returns the result as CSV with one row
// per batch (batch number, link, recipient count).
//
// IDs without a contact row are skipped; the skipped count comes back
// in the X-Outreach-Skipped header so operators notice silently
// missing users.
func (s *Service) CreateBatches(c echo.Context) error {
	ctx := c.Request().Context()

	var req BatchRequest
	if err := c.Bind(&req); err != nil {
		return svcErr.InvalidArgument("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ids := ParseUserIDs(req.UserIDs)
	if len(ids) == 0 {
		return svcErr.InvalidArgument("no user ids could be parsed from input")
	}

	contacts, err := s.userRepo.GetContacts(ctx, ids)
	if err != nil {
		return svcErr.Map(err)
	}

	emails := make([]string, 0, len(contacts))
	for _, contact := range contacts {
		if contact.Email != "" {
			emails = append(emails, contact.Email)
		}
	}
	if len(emails) == 0 {
		return svcErr.NotFound("none of the given users have an email on file")
	}

	size := req.BatchSize
	if size == 0 {
		size = DefaultBatchSize
	}
	if size < 0 {
		return svcErr.InvalidArgument("batch_size must be positive")
	}

	batches := BuildBatches(emails, req.Subject, req.Body, size)
	s.appCtx.Logger.Info("outreach batches built",
		"requested", len(ids), "emails", len(emails), "batches", len(batches))

	var buf strings.Builder
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"batch", "link", "recipients"})
	for _, b := range batches {
		_ = w.Write([]string{
			strconv.Itoa(b.Number),
			b.Link,
			strconv.Itoa(len(b.Recipients)),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return svcErr.Map(err)
	}

	c.Response().Header().Set("X-Outreach-Skipped", strconv.Itoa(len(ids)-len(emails)))
	return c.Blob(http.StatusOK, "text/csv", []byte(buf.String()))
}
