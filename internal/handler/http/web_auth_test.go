// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/MKhiriev/go-auth-portal/internal/app"
	"github.com/MKhiriev/go-auth-portal/internal/service"
	"github.com/MKhiriev/go-auth-portal/internal/store"
	"github.com/MKhiriev/go-auth-portal/internal/validators"
	"github.com/MKhiriev/go-auth-portal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loginValues(csrf, username, password string) url.Values {
	return url.Values{
		csrfFormField:            {csrf},
		validators.FieldUsername: {username},
		validators.FieldPassword: {password},
	}
}

func registerValues(csrf string) url.Values {
	return url.Values{
		csrfFormField:                        {csrf},
		validators.FieldUsername:             {"alice"},
		validators.FieldEmail:                {"a@x.io"},
		validators.FieldPassword:             {"Passw0rd!"},
		validators.FieldPasswordConfirmation: {"Passw0rd!"},
	}
}

// ─────────────────────────────────────────────
// Login
// ─────────────────────────────────────────────

func TestShowLogin_RendersFormWithCSRFToken(t *testing.T) {
	router := newTestHandler(t, nil, nil).Init()

	rec := doRequest(router, http.MethodGet, "/login", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, csrfFromBody(t, rec.Body.String()))
	assert.NotEmpty(t, rec.Result().Cookies(), "csrf token must be bound to a session cookie")
}

func TestAuthenticate_RejectsMissingCSRFToken(t *testing.T) {
	auth := &mockAuthService{
		loginFn: func(context.Context, string, string) (models.Session, error) {
			t.Fatal("Login must not be called without a csrf token")
			return models.Session{}, nil
		},
	}
	h := newTestHandler(t, auth, nil)
	cookies, _ := guestSession(t, h)

	rec := postForm(h.Init(), "/login", loginValues("forged", "alice", "Passw0rd!"), cookies)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAuthenticate_Success(t *testing.T) {
	var gotUsername, gotPassword string
	auth := &mockAuthService{
		loginFn: func(_ context.Context, username, password string) (models.Session, error) {
			gotUsername, gotPassword = username, password
			return testSession, nil
		},
	}
	h := newTestHandler(t, auth, nil)
	cookies, csrf := guestSession(t, h)

	rec := postForm(h.Init(), "/login", loginValues(csrf, "alice", "Passw0rd!"), cookies)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	assert.Equal(t, "alice", gotUsername)
	assert.Equal(t, "Passw0rd!", gotPassword)

	session, ok := currentSession(h, mergeCookies(cookies, rec))
	require.True(t, ok)
	assert.Equal(t, testSession, session)
}

func TestAuthenticate_RegeneratesCSRFToken(t *testing.T) {
	auth := &mockAuthService{
		loginFn: func(context.Context, string, string) (models.Session, error) {
			return testSession, nil
		},
	}
	h := newTestHandler(t, auth, nil)
	cookies, csrf := guestSession(t, h)
	router := h.Init()

	rec := postForm(router, "/login", loginValues(csrf, "alice", "Passw0rd!"), cookies)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	req := requestWithCookies(mergeCookies(cookies, rec))
	assert.False(t, h.sessions.ValidCSRF(req, csrf), "pre-login csrf token must not survive the login")
}

func TestAuthenticate_InvalidCredentialsKeepsUsername(t *testing.T) {
	auth := &mockAuthService{
		loginFn: func(context.Context, string, string) (models.Session, error) {
			return models.Session{}, fmt.Errorf("%w: wrong password", service.ErrInvalidCredentials)
		},
	}
	h := newTestHandler(t, auth, nil)
	cookies, csrf := guestSession(t, h)

	rec := postForm(h.Init(), "/login", loginValues(csrf, "alice", "wrongpass1A"), cookies)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, app.MsgInvalidLogin)
	assert.Contains(t, body, `value="alice"`)
	assert.NotContains(t, body, "wrongpass1A")

	_, ok := currentSession(h, mergeCookies(cookies, rec))
	assert.False(t, ok)
}

func TestAuthenticate_ValidationErrorsAreRendered(t *testing.T) {
	validator := &mockValidator{
		validateFn: func(context.Context, any, ...string) error {
			return validators.AlreadyTaken(validators.FieldUsername)
		},
	}
	auth := &mockAuthService{
		loginFn: func(context.Context, string, string) (models.Session, error) {
			t.Fatal("Login must not be called for an invalid form")
			return models.Session{}, nil
		},
	}
	h := newTestHandler(t, auth, validator)
	cookies, csrf := guestSession(t, h)

	rec := postForm(h.Init(), "/login", loginValues(csrf, "al", "short"), cookies)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "The username has already been taken.")
	assert.Contains(t, rec.Body.String(), `value="al"`)
}

func TestAuthenticate_UnexpectedError(t *testing.T) {
	auth := &mockAuthService{
		loginFn: func(context.Context, string, string) (models.Session, error) {
			return models.Session{}, fmt.Errorf("%w: db down", service.ErrLoggingIn)
		},
	}
	h := newTestHandler(t, auth, nil)
	cookies, csrf := guestSession(t, h)

	rec := postForm(h.Init(), "/login", loginValues(csrf, "alice", "Passw0rd!"), cookies)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), app.MsgInternalServerError)
}

func TestAuthenticate_RedirectsToIntendedDestination(t *testing.T) {
	auth := &mockAuthService{
		loginFn: func(context.Context, string, string) (models.Session, error) {
			return testSession, nil
		},
	}
	h := newTestHandler(t, auth, nil)
	router := h.Init()

	// guest asks for a protected page
	rec := doRequest(router, http.MethodGet, "/?tab=profile", "", nil)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, loginPath, rec.Header().Get("Location"))
	cookies := mergeCookies(nil, rec)

	// and is shown the login form in the same session
	rec = doRequest(router, http.MethodGet, "/login", "", cookies)
	require.Equal(t, http.StatusOK, rec.Code)
	csrf := csrfFromBody(t, rec.Body.String())
	cookies = mergeCookies(cookies, rec)

	rec = postForm(router, "/login", loginValues(csrf, "alice", "Passw0rd!"), cookies)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/?tab=profile", rec.Header().Get("Location"))
}

func TestShowLogin_SignedInUserIsSentHome(t *testing.T) {
	h := newTestHandler(t, nil, nil)
	cookies := establishSession(t, h, testSession)

	for _, path := range []string{"/login", "/register", "/new_user_confirmation/abc"} {
		rec := doRequest(h.Init(), http.MethodGet, path, "", cookies)

		assert.Equal(t, http.StatusFound, rec.Code, path)
		assert.Equal(t, homePath, rec.Header().Get("Location"), path)
	}
}

// ─────────────────────────────────────────────
// Registration
// ─────────────────────────────────────────────

func TestShowRegister_RendersForm(t *testing.T) {
	router := newTestHandler(t, nil, nil).Init()

	rec := doRequest(router, http.MethodGet, "/register", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="password_confirmation"`)
	assert.NotEmpty(t, csrfFromBody(t, rec.Body.String()))
}

func TestStoreAccount_Success(t *testing.T) {
	var got models.Registration
	auth := &mockAuthService{
		registerFn: func(_ context.Context, registration models.Registration) (models.Account, error) {
			got = registration
			return models.Account{ID: 1, Username: registration.Username, Email: registration.Email}, nil
		},
	}
	h := newTestHandler(t, auth, nil)
	cookies, csrf := guestSession(t, h)

	rec := postForm(h.Init(), "/register", registerValues(csrf), cookies)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "a@x.io")
	assert.Contains(t, rec.Body.String(), "Check your inbox")
	assert.Equal(t, models.Registration{
		Username:             "alice",
		Email:                "a@x.io",
		Password:             "Passw0rd!",
		PasswordConfirmation: "Passw0rd!",
	}, got)

	_, ok := currentSession(h, mergeCookies(cookies, rec))
	assert.False(t, ok, "registration must not sign the user in")
}

func TestStoreAccount_Failures(t *testing.T) {
	tests := []struct {
		name        string
		registerErr error
		wantStatus  int
		wantBody    string
	}{
		{
			name:        "username taken by a concurrent registration",
			registerErr: fmt.Errorf("%w: %w", service.ErrUniquenessConflict, store.ErrUsernameAlreadyExists),
			wantStatus:  http.StatusConflict,
			wantBody:    "The username has already been taken.",
		},
		{
			name:        "email taken by a concurrent registration",
			registerErr: fmt.Errorf("%w: %w", service.ErrUniquenessConflict, store.ErrEmailAlreadyExists),
			wantStatus:  http.StatusConflict,
			wantBody:    "The email has already been taken.",
		},
		{
			name:        "confirmation mail not delivered",
			registerErr: fmt.Errorf("%w: relay down", service.ErrDeliveryFailure),
			wantStatus:  http.StatusInternalServerError,
			wantBody:    app.MsgConfirmationMailFailed,
		},
		{
			name:        "invalid data",
			registerErr: service.ErrInvalidDataProvided,
			wantStatus:  http.StatusUnprocessableEntity,
			wantBody:    app.MsgInvalidDataProvided,
		},
		{
			name:        "unexpected error",
			registerErr: fmt.Errorf("%w: boom", service.ErrCreatingAccount),
			wantStatus:  http.StatusInternalServerError,
			wantBody:    app.MsgInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := &mockAuthService{
				registerFn: func(context.Context, models.Registration) (models.Account, error) {
					return models.Account{}, tt.registerErr
				},
			}
			h := newTestHandler(t, auth, nil)
			cookies, csrf := guestSession(t, h)

			rec := postForm(h.Init(), "/register", registerValues(csrf), cookies)

			require.Equal(t, tt.wantStatus, rec.Code)
			body := rec.Body.String()
			assert.Contains(t, body, tt.wantBody)
			assert.Contains(t, body, `value="alice"`)
			assert.Contains(t, body, `value="a@x.io"`)
			assert.NotContains(t, body, "Passw0rd!")
		})
	}
}

func TestStoreAccount_ValidationErrors(t *testing.T) {
	validator := &mockValidator{
		validateFn: func(_ context.Context, obj any, _ ...string) error {
			_, ok := obj.(models.RegistrationForm)
			require.True(t, ok, "registration form expected, got %T", obj)
			return validators.AlreadyTaken(validators.FieldEmail)
		},
	}
	auth := &mockAuthService{
		registerFn: func(context.Context, models.Registration) (models.Account, error) {
			t.Fatal("Register must not be called for an invalid form")
			return models.Account{}, nil
		},
	}
	h := newTestHandler(t, auth, validator)
	cookies, csrf := guestSession(t, h)

	rec := postForm(h.Init(), "/register", registerValues(csrf), cookies)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "The email has already been taken.")
}

// ─────────────────────────────────────────────
// Confirmation
// ─────────────────────────────────────────────

func TestConfirmAccount_ValidTokenSignsIn(t *testing.T) {
	var gotToken string
	auth := &mockAuthService{
		confirmFn: func(_ context.Context, token string) (models.Session, error) {
			gotToken = token
			return testSession, nil
		},
	}
	h := newTestHandler(t, auth, nil)

	rec := doRequest(h.Init(), http.MethodGet, "/new_user_confirmation/abc123", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "abc123", gotToken)
	assert.Contains(t, rec.Body.String(), "Email confirmed")
	assert.Contains(t, rec.Body.String(), "alice")

	session, ok := currentSession(h, mergeCookies(nil, rec))
	require.True(t, ok)
	assert.Equal(t, testSession.AccountID, session.AccountID)
}

func TestConfirmAccount_InvalidTokenRedirectsSilently(t *testing.T) {
	auth := &mockAuthService{
		confirmFn: func(context.Context, string) (models.Session, error) {
			return models.Session{}, service.ErrInvalidToken
		},
	}
	h := newTestHandler(t, auth, nil)

	rec := doRequest(h.Init(), http.MethodGet, "/new_user_confirmation/unknown", "", nil)

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, loginPath, rec.Header().Get("Location"))
	assert.NotContains(t, rec.Body.String(), "invalid")

	_, ok := currentSession(h, mergeCookies(nil, rec))
	assert.False(t, ok)
}

func TestConfirmAccount_UnexpectedError(t *testing.T) {
	auth := &mockAuthService{
		confirmFn: func(context.Context, string) (models.Session, error) {
			return models.Session{}, service.ErrConfirmingAccount
		},
	}
	h := newTestHandler(t, auth, nil)

	rec := doRequest(h.Init(), http.MethodGet, "/new_user_confirmation/abc", "", nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

// ─────────────────────────────────────────────
// Home and logout
// ─────────────────────────────────────────────

func TestHome_GreetsSignedInUser(t *testing.T) {
	lastLogin := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	var gotID int64
	auth := &mockAuthService{
		currentAccountFn: func(_ context.Context, accountID int64) (models.Account, error) {
			gotID = accountID
			return models.Account{ID: accountID, Username: "alice", Email: "a@x.io", LastLoginAt: &lastLogin}, nil
		},
	}
	h := newTestHandler(t, auth, nil)
	cookies := establishSession(t, h, testSession)

	rec := doRequest(h.Init(), http.MethodGet, "/", "", cookies)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, testSession.AccountID, gotID)
	body := rec.Body.String()
	assert.Contains(t, body, "Hello, alice")
	assert.Contains(t, body, "a@x.io")
	assert.Contains(t, body, "2026-03-14 09:26 UTC")
	assert.Contains(t, body, `href="/logout"`)
}

func TestHome_GuestIsRedirectedToLogin(t *testing.T) {
	router := newTestHandler(t, nil, nil).Init()

	rec := doRequest(router, http.MethodGet, "/", "", nil)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, loginPath, rec.Header().Get("Location"))
}

func TestHome_VanishedAccountEndsSession(t *testing.T) {
	auth := &mockAuthService{
		currentAccountFn: func(context.Context, int64) (models.Account, error) {
			return models.Account{}, service.ErrAccountNotFound
		},
	}
	h := newTestHandler(t, auth, nil)
	cookies := establishSession(t, h, testSession)

	rec := doRequest(h.Init(), http.MethodGet, "/", "", cookies)

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, loginPath, rec.Header().Get("Location"))
	_, ok := currentSession(h, mergeCookies(cookies, rec))
	assert.False(t, ok)
}

func TestLogout_DestroysSession(t *testing.T) {
	h := newTestHandler(t, nil, nil)
	cookies := establishSession(t, h, testSession)

	rec := doRequest(h.Init(), http.MethodGet, "/logout", "", cookies)

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, loginPath, rec.Header().Get("Location"))

	var expired bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == testSessionConfig().CookieName {
			expired = c.MaxAge < 0
		}
	}
	assert.True(t, expired, "session cookie must be expired")
}
