package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MKhiriev/go-auth-portal/internal/app"
	"github.com/MKhiriev/go-auth-portal/internal/service"
	"github.com/MKhiriev/go-auth-portal/internal/store"
	"github.com/MKhiriev/go-auth-portal/internal/validators"
	"github.com/MKhiriev/go-auth-portal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const registrationJSON = `{"username":"alice","email":"a@x.io","password":"Passw0rd!","password_confirmation":"Passw0rd!"}`

func decodeAPIError(t *testing.T, body []byte) apiError {
	t.Helper()
	var e apiError
	require.NoError(t, json.Unmarshal(body, &e))
	return e
}

// ─────────────────────────────────────────────
// POST /api/user/register
// ─────────────────────────────────────────────

func TestAPIRegister_Created(t *testing.T) {
	createdAt := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	auth := &mockAuthService{
		registerFn: func(_ context.Context, r models.Registration) (models.Account, error) {
			assert.Equal(t, "alice", r.Username)
			assert.Equal(t, "Passw0rd!", r.PasswordConfirmation)
			return models.Account{ID: 7, Username: r.Username, Email: r.Email, PasswordHash: "$2a$secret", CreatedAt: createdAt}, nil
		},
	}
	router := newTestHandler(t, auth, nil).Init()

	rec := doRequest(router, http.MethodPost, "/api/user/register", registrationJSON, nil)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotContains(t, rec.Body.String(), "$2a$secret")

	var got models.Account
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, int64(7), got.ID)
	assert.Equal(t, "a@x.io", got.Email)
	assert.False(t, got.Active)
}

func TestAPIRegister_Errors(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		validateErr error
		registerErr error
		wantStatus  int
		wantError   string
		wantFields  []string
	}{
		{
			name:       "malformed json",
			body:       `{"username":`,
			wantStatus: http.StatusBadRequest,
			wantError:  app.MsgInvalidDataProvided,
		},
		{
			name:        "field validation",
			body:        registrationJSON,
			validateErr: validators.ValidationErrors{{Field: validators.FieldPassword, Messages: []string{"too short"}}},
			wantStatus:  http.StatusUnprocessableEntity,
			wantError:   app.MsgInvalidDataProvided,
			wantFields:  []string{validators.FieldPassword},
		},
		{
			name:        "pre-check finds the email taken",
			body:        registrationJSON,
			validateErr: validators.AlreadyTaken(validators.FieldEmail),
			wantStatus:  http.StatusConflict,
			wantError:   app.MsgInvalidDataProvided,
			wantFields:  []string{validators.FieldEmail},
		},
		{
			name:        "availability lookup fails",
			body:        registrationJSON,
			validateErr: validators.ErrCheckingAvailability,
			wantStatus:  http.StatusInternalServerError,
			wantError:   app.MsgInternalServerError,
		},
		{
			name:        "unique index conflict",
			body:        registrationJSON,
			registerErr: fmt.Errorf("%w: %w", service.ErrUniquenessConflict, store.ErrUsernameAlreadyExists),
			wantStatus:  http.StatusConflict,
			wantError:   app.MsgAlreadyTaken,
		},
		{
			name:        "delivery failure",
			body:        registrationJSON,
			registerErr: fmt.Errorf("%w: smtp down", service.ErrDeliveryFailure),
			wantStatus:  http.StatusBadGateway,
			wantError:   app.MsgConfirmationMailFailed,
		},
		{
			name:        "unexpected error is not leaked",
			body:        registrationJSON,
			registerErr: fmt.Errorf("%w: pq: connection refused", service.ErrCreatingAccount),
			wantStatus:  http.StatusInternalServerError,
			wantError:   app.MsgInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			validator := &mockValidator{
				validateFn: func(context.Context, any, ...string) error { return tt.validateErr },
			}
			auth := &mockAuthService{
				registerFn: func(context.Context, models.Registration) (models.Account, error) {
					return models.Account{}, tt.registerErr
				},
			}
			router := newTestHandler(t, auth, validator).Init()

			rec := doRequest(router, http.MethodPost, "/api/user/register", tt.body, nil)

			require.Equal(t, tt.wantStatus, rec.Code)
			got := decodeAPIError(t, rec.Body.Bytes())
			assert.Equal(t, tt.wantError, got.Error)
			for _, field := range tt.wantFields {
				assert.Contains(t, got.Fields, field)
			}
			assert.NotContains(t, rec.Body.String(), "connection refused")
		})
	}
}

// ─────────────────────────────────────────────
// POST /api/user/login
// ─────────────────────────────────────────────

func TestAPILogin_ReturnsBearerToken(t *testing.T) {
	expiresAt := time.Date(2026, 3, 14, 10, 26, 53, 0, time.UTC)
	auth := &mockAuthService{
		loginFn: func(_ context.Context, username, password string) (models.Session, error) {
			assert.Equal(t, "alice", username)
			assert.Equal(t, "Passw0rd!", password)
			return testSession, nil
		},
		createTokenFn: func(_ context.Context, s models.Session) (models.Token, error) {
			assert.Equal(t, testSession, s)
			return models.Token{
				SignedString:     "signed.jwt.value",
				RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(expiresAt)},
			}, nil
		},
	}
	router := newTestHandler(t, auth, nil).Init()

	rec := doRequest(router, http.MethodPost, "/api/user/login", `{"username":"alice","password":"Passw0rd!"}`, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Bearer signed.jwt.value", rec.Header().Get("Authorization"))

	var got tokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "signed.jwt.value", got.Token)
	assert.True(t, expiresAt.Equal(got.ExpiresAt))
}

func TestAPILogin_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		loginErr   error
		tokenErr   error
		wantStatus int
		wantError  string
	}{
		{
			name:       "malformed json",
			body:       `not json`,
			wantStatus: http.StatusBadRequest,
			wantError:  app.MsgInvalidDataProvided,
		},
		{
			name:       "invalid credentials",
			body:       `{"username":"alice","password":"Wrongpass1"}`,
			loginErr:   service.ErrInvalidCredentials,
			wantStatus: http.StatusUnauthorized,
			wantError:  app.MsgInvalidLogin,
		},
		{
			name:       "store failure",
			body:       `{"username":"alice","password":"Passw0rd!"}`,
			loginErr:   fmt.Errorf("%w: boom", service.ErrLoggingIn),
			wantStatus: http.StatusInternalServerError,
			wantError:  app.MsgInternalServerError,
		},
		{
			name:       "token creation failure",
			body:       `{"username":"alice","password":"Passw0rd!"}`,
			tokenErr:   service.ErrTokenCreationFailed,
			wantStatus: http.StatusInternalServerError,
			wantError:  app.MsgInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := &mockAuthService{
				loginFn: func(context.Context, string, string) (models.Session, error) {
					return testSession, tt.loginErr
				},
				createTokenFn: func(context.Context, models.Session) (models.Token, error) {
					return models.Token{}, tt.tokenErr
				},
			}
			router := newTestHandler(t, auth, nil).Init()

			rec := doRequest(router, http.MethodPost, "/api/user/login", tt.body, nil)

			require.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantError, decodeAPIError(t, rec.Body.Bytes()).Error)
			assert.Empty(t, rec.Header().Get("Authorization"))
		})
	}
}

// ─────────────────────────────────────────────
// GET /api/user/me
// ─────────────────────────────────────────────

func TestAPIMe(t *testing.T) {
	auth := &mockAuthService{
		parseTokenFn: func(_ context.Context, token string) (models.Token, error) {
			if token != "good" {
				return models.Token{}, service.ErrTokenIsExpiredOrInvalid
			}
			return models.Token{AccountID: 42}, nil
		},
		currentAccountFn: func(_ context.Context, id int64) (models.Account, error) {
			if id != 42 {
				return models.Account{}, service.ErrAccountNotFound
			}
			return models.Account{ID: 42, Username: "alice", Email: "a@x.io", Active: true}, nil
		},
	}
	router := newTestHandler(t, auth, nil).Init()

	t.Run("valid token", func(t *testing.T) {
		rec := getWithAuthorization(router, "/api/user/me", "Bearer good")

		require.Equal(t, http.StatusOK, rec.Code)
		var got models.Account
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "alice", got.Username)
		assert.True(t, got.Active)
	})

	t.Run("forged token", func(t *testing.T) {
		rec := getWithAuthorization(router, "/api/user/me", "Bearer forged")

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("no token", func(t *testing.T) {
		rec := doRequest(router, http.MethodGet, "/api/user/me", "", nil)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestAPIMe_AccountGone(t *testing.T) {
	auth := &mockAuthService{
		parseTokenFn: func(context.Context, string) (models.Token, error) {
			return models.Token{AccountID: 9}, nil
		},
		currentAccountFn: func(context.Context, int64) (models.Account, error) {
			return models.Account{}, fmt.Errorf("%w: %w", service.ErrAccountNotFound, store.ErrAccountNotFound)
		},
	}
	router := newTestHandler(t, auth, nil).Init()

	rec := getWithAuthorization(router, "/api/user/me", "Bearer any")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func getWithAuthorization(router http.Handler, target, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.Header.Set("Authorization", authorization)
	return serve(router, req)
}
