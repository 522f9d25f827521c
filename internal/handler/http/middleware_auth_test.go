package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/MKhiriev/go-auth-portal/internal/app"
	"github.com/MKhiriev/go-auth-portal/internal/logger"
	"github.com/MKhiriev/go-auth-portal/internal/service"
	"github.com/MKhiriev/go-auth-portal/internal/utils"
	"github.com/MKhiriev/go-auth-portal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHandlerWithAuthService(authSvc service.AuthService) *Handler {
	return &Handler{
		logger:   logger.Nop(),
		services: &service.Services{AuthService: authSvc},
	}
}

// tokenParser accepts only "good-token" and returns account 7 for it.
func tokenParser() *mockAuthService {
	return &mockAuthService{
		parseTokenFn: func(_ context.Context, tokenString string) (models.Token, error) {
			if tokenString != "good-token" {
				return models.Token{}, service.ErrTokenIsExpiredOrInvalid
			}
			return models.Token{AccountID: 7}, nil
		},
	}
}

func executeAuth(h *Handler, authHeader string, next http.Handler) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/user/me", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	h.auth(next).ServeHTTP(rec, req)
	return rec
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name      string
		header    string
		wantToken string
		wantErr   error
	}{
		{name: "valid Bearer token", header: "Bearer abc.def.ghi", wantToken: "abc.def.ghi"},
		{name: "lower-case scheme", header: "bearer abc", wantToken: "abc"},
		{name: "surrounding spaces trimmed", header: "Bearer   abc  ", wantToken: "abc"},
		{name: "empty header", header: "", wantErr: ErrEmptyAuthorizationHeader},
		{name: "scheme only", header: "Bearer", wantErr: ErrInvalidAuthorizationHeader},
		{name: "scheme with empty token", header: "Bearer ", wantErr: ErrEmptyToken},
		{name: "basic scheme", header: "Basic dXNlcjpwYXNz", wantErr: ErrInvalidAuthorizationHeader},
		{name: "two token values", header: "Bearer abc def", wantErr: ErrInvalidAuthorizationHeader},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := bearerToken(tt.header)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, token)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantToken, token)
		})
	}
}

func TestAuth_Middleware(t *testing.T) {
	tests := []struct {
		name        string
		header      string
		wantStatus  int
		wantMessage string
		wantNext    bool
	}{
		{name: "missing header", header: "", wantStatus: http.StatusUnauthorized, wantMessage: ErrEmptyAuthorizationHeader.Error()},
		{name: "wrong scheme", header: "Token good-token", wantStatus: http.StatusUnauthorized, wantMessage: ErrInvalidAuthorizationHeader.Error()},
		{name: "rejected token", header: "Bearer forged", wantStatus: http.StatusUnauthorized, wantMessage: app.MsgTokenIsExpiredOrInvalid},
		{name: "valid token", header: "Bearer good-token", wantStatus: http.StatusOK, wantNext: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHandlerWithAuthService(tokenParser())

			called := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				w.WriteHeader(http.StatusOK)
			})

			rec := executeAuth(h, tt.header, next)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantNext, called)
			if tt.wantNext {
				return
			}

			assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
			var body apiError
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantMessage, body.Error)
		})
	}
}

func TestAuth_CauseNotLeaked(t *testing.T) {
	h := newHandlerWithAuthService(&mockAuthService{
		parseTokenFn: func(context.Context, string) (models.Token, error) {
			return models.Token{}, errors.New("signature is invalid: secret-detail")
		},
	})

	rec := executeAuth(h, "Bearer anything", http.NotFoundHandler())

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret-detail")
}

func TestAuth_AccountIDInContext(t *testing.T) {
	h := newHandlerWithAuthService(tokenParser())

	var (
		got int64
		ok  bool
	)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok = utils.GetAccountIDFromContext(r.Context())
	})

	executeAuth(h, "Bearer good-token", next)

	require.True(t, ok)
	assert.Equal(t, int64(7), got)
}

func TestAuth_OriginalRequestNotMutated(t *testing.T) {
	h := newHandlerWithAuthService(tokenParser())

	req := httptest.NewRequest(http.MethodGet, "/api/user/me", nil)
	req.Header.Set("Authorization", "Bearer good-token")

	h.auth(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})).ServeHTTP(httptest.NewRecorder(), req)

	_, ok := utils.GetAccountIDFromContext(req.Context())
	assert.False(t, ok)
}

func TestAuth_ConcurrentRequests(t *testing.T) {
	h := newHandlerWithAuthService(tokenParser())
	handler := h.auth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(valid bool) {
			defer wg.Done()

			header := "Bearer forged"
			want := http.StatusUnauthorized
			if valid {
				header, want = "Bearer good-token", http.StatusNoContent
			}

			req := httptest.NewRequest(http.MethodGet, "/api/user/me", nil)
			req.Header.Set("Authorization", header)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, want, rec.Code)
		}(i%2 == 0)
	}
	wg.Wait()
}
