// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"time"

	"github.com/MKhiriev/go-auth-portal/internal/config"
	"github.com/MKhiriev/go-auth-portal/internal/utils"
	"github.com/MKhiriev/go-auth-portal/models"
	"github.com/gorilla/sessions"
)

// Keys of the values kept in the session cookie.
const (
	sessionKeyAccountID       = "account_id"
	sessionKeyUsername        = "username"
	sessionKeyAuthenticatedAt = "authenticated_at"
	sessionKeyIntendedURL     = "intended_url"
	sessionKeyCSRFToken       = "csrf_token"
)

const csrfTokenBytes = 32

// SessionManager binds browser sessions to accounts using a signed (and,
// when a block key is configured, encrypted) cookie.
type SessionManager struct {
	store *sessions.CookieStore
	name  string
}

func NewSessionManager(cfg config.Session) *SessionManager {
	keyPairs := [][]byte{[]byte(cfg.HashKey)}
	if cfg.BlockKey != "" {
		keyPairs = append(keyPairs, []byte(cfg.BlockKey))
	}

	store := sessions.NewCookieStore(keyPairs...)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.MaxAge / time.Second),
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	store.MaxAge(store.Options.MaxAge)

	return &SessionManager{store: store, name: cfg.CookieName}
}

// get never fails: a cookie that cannot be decoded yields a fresh session.
func (m *SessionManager) get(r *http.Request) *sessions.Session {
	session, _ := m.store.Get(r, m.name)
	return session
}

// Establish regenerates the session and binds it to s. Values of the previous
// session, the CSRF token included, are dropped.
func (m *SessionManager) Establish(w http.ResponseWriter, r *http.Request, s models.Session) error {
	session := m.get(r)
	for key := range session.Values {
		delete(session.Values, key)
	}

	csrfToken, err := utils.GenerateToken(csrfTokenBytes)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSavingSession, err)
	}

	session.Values[sessionKeyAccountID] = s.AccountID
	session.Values[sessionKeyUsername] = s.Username
	session.Values[sessionKeyAuthenticatedAt] = s.AuthenticatedAt.Unix()
	session.Values[sessionKeyCSRFToken] = csrfToken

	return m.save(w, r, session)
}

// Current returns the session bound to the request, if any.
func (m *SessionManager) Current(r *http.Request) (models.Session, bool) {
	session := m.get(r)

	accountID, ok := session.Values[sessionKeyAccountID].(int64)
	if !ok || accountID == 0 {
		return models.Session{}, false
	}
	username, _ := session.Values[sessionKeyUsername].(string)
	authenticatedAt, _ := session.Values[sessionKeyAuthenticatedAt].(int64)

	return models.Session{
		AccountID:       accountID,
		Username:        username,
		AuthenticatedAt: time.Unix(authenticatedAt, 0).UTC(),
	}, true
}

// Destroy clears the session and expires the cookie.
func (m *SessionManager) Destroy(w http.ResponseWriter, r *http.Request) error {
	session := m.get(r)
	for key := range session.Values {
		delete(session.Values, key)
	}
	session.Options.MaxAge = -1

	return m.save(w, r, session)
}

// RememberIntended stores the destination a guest was redirected away from.
func (m *SessionManager) RememberIntended(w http.ResponseWriter, r *http.Request, url string) error {
	session := m.get(r)
	session.Values[sessionKeyIntendedURL] = url

	return m.save(w, r, session)
}

// Intended returns the remembered destination, or fallback.
func (m *SessionManager) Intended(r *http.Request, fallback string) string {
	url, ok := m.get(r).Values[sessionKeyIntendedURL].(string)
	if !ok || !isLocalPath(url) {
		return fallback
	}
	return url
}

// CSRFToken returns the token bound to the session, creating one on first
// use. It must be called before the response body is written.
func (m *SessionManager) CSRFToken(w http.ResponseWriter, r *http.Request) (string, error) {
	session := m.get(r)
	if token, ok := session.Values[sessionKeyCSRFToken].(string); ok && token != "" {
		return token, nil
	}

	token, err := utils.GenerateToken(csrfTokenBytes)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSavingSession, err)
	}
	session.Values[sessionKeyCSRFToken] = token

	if err := m.save(w, r, session); err != nil {
		return "", err
	}
	return token, nil
}

// ValidCSRF reports whether token matches the one bound to the session.
func (m *SessionManager) ValidCSRF(r *http.Request, token string) bool {
	expected, ok := m.get(r).Values[sessionKeyCSRFToken].(string)
	if !ok || expected == "" || token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(token)) == 1
}

func (m *SessionManager) save(w http.ResponseWriter, r *http.Request, session *sessions.Session) error {
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("%w: %w", ErrSavingSession, err)
	}
	return nil
}

// isLocalPath accepts only same-origin absolute paths, so a remembered
// destination can never redirect off site.
func isLocalPath(url string) bool {
	return len(url) > 0 && url[0] == '/' && (len(url) == 1 || (url[1] != '/' && url[1] != '\\'))
}
