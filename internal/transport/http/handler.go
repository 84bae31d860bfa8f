package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"scholarship-test-service/internal/auth"
	"scholarship-test-service/internal/domain"
)

// Scoring is the server-side test surface the handlers expose.
type Scoring interface {
	Questions(ctx context.Context) ([]domain.SanitizedQuestion, error)
	SubmitTest(ctx context.Context, userID int64, req domain.SubmitRequest) (domain.SubmitResponse, error)
	Leaderboard(ctx context.Context) ([]domain.LeaderboardEntry, error)
	ResultsForUser(ctx context.Context, userID int64) ([]domain.UserResult, error)
}

// Authenticator issues and resolves session tokens.
type Authenticator interface {
	Register(ctx context.Context, in auth.RegisterInput) (domain.User, error)
	Login(ctx context.Context, username, password string) (domain.User, error)
	CreateSession(ctx context.Context, userID int64) (string, time.Time, error)
	SessionUser(ctx context.Context, token string) (domain.User, error)
	Logout(ctx context.Context, token string) error
}

// LeaderboardFeed streams leaderboard snapshots to websocket clients.
type LeaderboardFeed interface {
	Subscribe(ctx context.Context) (<-chan domain.Leaderboard, func(), error)
}

type Options struct {
	CookieSecure bool
}

type Handler struct {
	scoring  Scoring
	auth     Authenticator
	feed     LeaderboardFeed
	opts     Options
	upgrader websocket.Upgrader
}

func NewHandler(scoring Scoring, authn Authenticator, feed LeaderboardFeed, opts Options) *Handler {
	return &Handler{
		scoring: scoring,
		auth:    authn,
		feed:    feed,
		opts:    opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type errorResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeMessage(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, errorResponse{Message: message})
}

// writeError maps domain errors to status codes. Unknown errors become 500 with fallback as the message.
func writeError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		writeMessage(w, http.StatusUnauthorized, "Not authenticated")
	case errors.Is(err, domain.ErrForbidden):
		writeMessage(w, http.StatusForbidden, "Forbidden")
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeMessage(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrUsernameTaken),
		errors.Is(err, domain.ErrEmailTaken):
		writeMessage(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("%s: %v", fallback, err)
		writeMessage(w, http.StatusInternalServerError, fallback)
	}
}
