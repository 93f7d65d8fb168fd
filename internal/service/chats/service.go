package chats

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/wavelength/matchops/internal/app"
	"github.com/wavelength/matchops/internal/db"
	svcErr "github.com/wavelength/matchops/internal/errors"
	"github.com/wavelength/matchops/internal/repository"
)

// Service implements the chat transcript viewer: per-user session
// listings and per-session message history. Read-only; transcripts
// are written by the consumer app.
type Service struct {
	appCtx   *app.AppContext
	chatRepo *repository.ChatRepository
	userRepo *repository.UserRepository
}

// NewChatsService creates the chats service with dependencies from AppContext.
func NewChatsService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:   appCtx,
		chatRepo: repository.NewChatRepository(appCtx.DB),
		userRepo: repository.NewUserRepository(appCtx.DB),
	}
}

// SessionSummary is one session in a listing, with its message count.
type SessionSummary struct {
	db.ChatSession
	MessageCount int64 `json:"message_count"`
}

// ListSessions returns a user's chat sessions, newest first.
// ?type=onboarding|search selects the conversation kind (default
// onboarding).
func (s *Service) ListSessions(c echo.Context) error {
	ctx := c.Request().Context()
	userID := c.Param("id")

	chatType := c.QueryParam("type")
	if chatType == "" {
		chatType = db.ChatTypeOnboarding
	}
	if chatType != db.ChatTypeOnboarding && chatType != db.ChatTypeSearch {
		return svcErr.InvalidArgument(`type must be "onboarding" or "search"`)
	}

	// 404 for unknown users, empty list for users without chats
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return svcErr.Map(err)
	}

	sessions, err := s.chatRepo.SessionsByUser(ctx, userID, chatType)
	if err != nil {
		return svcErr.Map(err)
	}

	ids := make([]string, 0, len(sessions))
	for _, sess := range sessions {
		ids = append(ids, sess.ID)
	}
	counts, err := s.chatRepo.CountMessages(ctx, ids)
	if err != nil {
		return svcErr.Map(err)
	}

	out := make([]SessionSummary, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, SessionSummary{ChatSession: sess, MessageCount: counts[sess.ID]})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"user_id":  userID,
		"type":     chatType,
		"sessions": out,
	})
}

// Messages returns one session's transcript in conversation order.
func (s *Service) Messages(c echo.Context) error {
	ctx := c.Request().Context()
	sessionID := c.Param("id")

	session, err := s.chatRepo.GetSession(ctx, sessionID)
	if err != nil {
		return svcErr.Map(err)
	}

	messages, err := s.chatRepo.MessagesBySession(ctx, sessionID)
	if err != nil {
		return svcErr.Map(err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"session":  session,
		"messages": messages,
	})
}
