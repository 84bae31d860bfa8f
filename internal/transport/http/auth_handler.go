package http

import (
	"encoding/json"
	"net/http"

	"scholarship-test-service/internal/auth"
	"scholarship-test-service/internal/domain"
)

// SessionCookieName carries the opaque session token.
const SessionCookieName = "scholarship_session"

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	user, err := h.auth.Register(r.Context(), auth.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, err, "failed to register")
		return
	}
	if err := h.establishSession(w, r, user); err != nil {
		writeError(w, err, "cannot create session")
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	user, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err, "failed to log in")
		return
	}
	if err := h.establishSession(w, r, user); err != nil {
		writeError(w, err, "cannot create session")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := readSessionToken(r); token != "" {
		_ = h.auth.Logout(r.Context(), token)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
	writeMessage(w, http.StatusOK, "logged out")
}

func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r.Context())
	if !ok {
		writeError(w, domain.ErrUnauthenticated, "")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// RequireAuth rejects requests without a live session and stores the user on the context.
func (h *Handler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := h.auth.SessionUser(r.Context(), readSessionToken(r))
		if err != nil {
			writeError(w, err, "failed to resolve session")
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.ContextWithUser(r.Context(), user)))
	})
}

// RequireAdmin must run after RequireAuth.
func (h *Handler) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.CurrentUser(r.Context())
		if !ok {
			writeError(w, domain.ErrUnauthenticated, "")
			return
		}
		if !user.IsAdmin {
			writeError(w, domain.ErrForbidden, "")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) establishSession(w http.ResponseWriter, r *http.Request, user domain.User) error {
	token, expiresAt, err := h.auth.CreateSession(r.Context(), user.ID)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   h.opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func readSessionToken(r *http.Request) string {
	c, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return c.Value
}
