// QuizDeck - Quiz Creation and Live Hosting Platform
// Copyright 2026 QuizDeck Contributors
// SPDX-License-Identifier: MPL-2.0
// https://github.com/quizdeck/quizdeck

package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/quizdeck/quizdeck/internal/auth"
	"github.com/quizdeck/quizdeck/internal/logging"
)

// Cookie names used by the session layer.
const (
	SessionCookieName  = "qd_session"
	RememberCookieName = "qd_remember"
)

// Sessions resolves the request identity. It loads the server-side
// session named by the session cookie; when that session is missing or
// expired it falls back to the remember-me token and mints a fresh
// session. Requests without either stay anonymous; enforcement is
// RequireAuth's job.
type Sessions struct {
	store      auth.SessionStore
	remember   *auth.RememberTokens
	sessionTTL time.Duration
	secure     bool
}

// NewSessions wires the session middleware dependencies.
func NewSessions(store auth.SessionStore, remember *auth.RememberTokens, sessionTTL time.Duration, secure bool) *Sessions {
	return &Sessions{
		store:      store,
		remember:   remember,
		sessionTTL: sessionTTL,
		secure:     secure,
	}
}

// Middleware attaches the resolved session, if any, to the request
// context.
func (s *Sessions) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := s.resolve(w, r)
		if session != nil {
			r = r.WithContext(auth.ContextWithSession(r.Context(), session))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAuth rejects anonymous requests with 401.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth.SessionFromContext(r.Context()) == nil {
			http.Error(w, "authentication required", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Sessions) resolve(w http.ResponseWriter, r *http.Request) *auth.Session {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		session, err := s.store.Get(r.Context(), cookie.Value)
		if err == nil {
			return session
		}
		if !errors.Is(err, auth.ErrSessionNotFound) && !errors.Is(err, auth.ErrSessionExpired) {
			logging.Ctx(r.Context()).Error().Err(err).Msg("session lookup failed")
			return nil
		}
	}

	return s.renewFromRemember(w, r)
}

// renewFromRemember mints a fresh session from a valid remember-me
// token, replacing the dead session cookie in the same response.
func (s *Sessions) renewFromRemember(w http.ResponseWriter, r *http.Request) *auth.Session {
	cookie, err := r.Cookie(RememberCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	userID, username, err := s.remember.Verify(cookie.Value)
	if err != nil {
		s.clearCookie(w, RememberCookieName)
		return nil
	}

	session, err := auth.NewSession(userID, username, s.sessionTTL)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("failed to mint session")
		return nil
	}
	if err := s.store.Create(r.Context(), session); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("failed to store renewed session")
		return nil
	}

	s.SetSessionCookie(w, session)
	logging.Ctx(r.Context()).Debug().
		Str("user_id", userID.String()).
		Msg("session renewed from remember token")
	return session
}

// IssueSession creates and stores a session for a freshly authenticated
// user, sets the session cookie, and optionally the remember-me cookie.
func (s *Sessions) IssueSession(w http.ResponseWriter, r *http.Request, userID uuid.UUID, username string, remember bool) (*auth.Session, error) {
	session, err := auth.NewSession(userID, username, s.sessionTTL)
	if err != nil {
		return nil, err
	}
	if err := s.store.Create(r.Context(), session); err != nil {
		return nil, err
	}
	s.SetSessionCookie(w, session)

	if remember {
		token, err := s.remember.Issue(userID, username)
		if err != nil {
			return nil, err
		}
		http.SetCookie(w, &http.Cookie{
			Name:     RememberCookieName,
			Value:    token,
			Path:     "/",
			MaxAge:   int((90 * 24 * time.Hour).Seconds()),
			HttpOnly: true,
			Secure:   s.secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return session, nil
}

// EndSession deletes the server-side session and clears both cookies.
func (s *Sessions) EndSession(w http.ResponseWriter, r *http.Request) error {
	var err error
	if cookie, cerr := r.Cookie(SessionCookieName); cerr == nil && cookie.Value != "" {
		err = s.store.Delete(r.Context(), cookie.Value)
	}
	s.clearCookie(w, SessionCookieName)
	s.clearCookie(w, RememberCookieName)
	return err
}

// SetSessionCookie writes the session cookie for an existing session.
func (s *Sessions) SetSessionCookie(w http.ResponseWriter, session *auth.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    session.ID,
		Path:     "/",
		MaxAge:   int(time.Until(session.ExpiresAt).Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Sessions) clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
