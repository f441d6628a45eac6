package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/rs/zerolog/log"

	"pricelist/services"
)

type contextKey string

// SessionIDKey holds the session id in the request context.
const SessionIDKey contextKey = "sessionID"

const (
	sessionCookie      = "pricelist_session"
	sessionStorePrefix = "session:"
	sessionMaxAge      = 12 * 60 * 60
	sessionTTL         = sessionMaxAge * time.Second
)

// Session is one user's working state: the table as uploaded and the table
// currently in effect (adjusted or not). Sessions are replaced, never mutated,
// so a handler can keep reading one while another request stores a new one.
type Session struct {
	ID         string
	FileName   string
	Original   *services.Table
	Table      *services.Table
	Delta      float64
	UploadedAt time.Time
	ExpiresAt  time.Time
}

// Adjusted reports whether a non-zero price adjustment is in effect.
func (s *Session) Adjusted() bool { return s.Delta != 0 }

// GetSessionID extracts the session id from the request context.
func GetSessionID(r *http.Request) string {
	if val, ok := r.Context().Value(SessionIDKey).(string); ok {
		return val
	}
	return ""
}

// SessionMiddleware reads the "pricelist_session" cookie, issues a new id when
// the cookie is missing or malformed, and stores the id in the request context.
func SessionMiddleware(app *pocketbase.PocketBase) func(e *core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := ""
		if cookie, err := e.Request.Cookie(sessionCookie); err == nil {
			if parsed, err := uuid.Parse(cookie.Value); err == nil {
				id = parsed.String()
			} else {
				log.Debug().Str("cookie", cookie.Value).Msg("session: ignoring malformed session cookie")
			}
		}

		if id == "" {
			id = uuid.NewString()
			http.SetCookie(e.Response, &http.Cookie{
				Name:     sessionCookie,
				Value:    id,
				Path:     "/",
				MaxAge:   sessionMaxAge,
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}

		ctx := context.WithValue(e.Request.Context(), SessionIDKey, id)
		e.Request = e.Request.WithContext(ctx)
		return e.Next()
	}
}

// loadSession returns the caller's session, or nil when nothing is uploaded.
func loadSession(app *pocketbase.PocketBase, r *http.Request) *Session {
	id := GetSessionID(r)
	if id == "" {
		return nil
	}
	val, ok := app.Store().GetOk(sessionStorePrefix + id)
	if !ok {
		return nil
	}
	s, _ := val.(*Session)
	if s != nil && !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt) {
		app.Store().Remove(sessionStorePrefix + id)
		return nil
	}
	return s
}

// saveSession stores s for another sessionTTL and drops sessions whose
// cookie has expired.
func saveSession(app *pocketbase.PocketBase, s *Session) {
	now := time.Now()
	s.ExpiresAt = now.Add(sessionTTL)
	app.Store().Set(sessionStorePrefix+s.ID, s)
	pruneSessions(app, now)
}

func pruneSessions(app *pocketbase.PocketBase, now time.Time) {
	for key, val := range app.Store().GetAll() {
		if !strings.HasPrefix(key, sessionStorePrefix) {
			continue
		}
		if s, ok := val.(*Session); ok && now.After(s.ExpiresAt) {
			app.Store().Remove(key)
			log.Debug().Str("session", s.ID).Msg("session: pruned expired session")
		}
	}
}

// requireSession loads the session or responds with an error toast.
func requireSession(app *pocketbase.PocketBase, e *core.RequestEvent) (*Session, error) {
	s := loadSession(app, e.Request)
	if s == nil {
		return nil, ErrorToast(e, http.StatusBadRequest, "No pricelist uploaded yet. Upload a CSV file first.")
	}
	return s, nil
}
