package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

func newMethodCheckedRouter() *chi.Mux {
	ok := func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }

	router := chi.NewRouter()
	router.Get("/login", ok)
	router.Post("/login", ok)
	router.Get("/logout", ok)
	router.Get("/new_user_confirmation/{token}", ok)
	router.Route("/api/user", func(r chi.Router) {
		r.Post("/register", ok)
		r.Get("/me", ok)
	})
	router.MethodNotAllowed(methodNotAllowed(router))

	return router
}

func TestMethodNotAllowed(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		want   int
	}{
		{name: "registered GET", method: http.MethodGet, path: "/login", want: http.StatusOK},
		{name: "registered POST", method: http.MethodPost, path: "/login", want: http.StatusOK},
		{name: "DELETE on login", method: http.MethodDelete, path: "/login", want: http.StatusNotFound},
		{name: "POST on logout", method: http.MethodPost, path: "/logout", want: http.StatusNotFound},
		{name: "PUT on parameterised route", method: http.MethodPut, path: "/new_user_confirmation/abc", want: http.StatusNotFound},
		{name: "GET on parameterised route", method: http.MethodGet, path: "/new_user_confirmation/abc", want: http.StatusOK},
		{name: "GET on nested POST route", method: http.MethodGet, path: "/api/user/register", want: http.StatusNotFound},
		{name: "POST on nested GET route", method: http.MethodPost, path: "/api/user/me", want: http.StatusNotFound},
		{name: "unknown path", method: http.MethodGet, path: "/admin", want: http.StatusNotFound},
	}

	router := newMethodCheckedRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))

			assert.Equal(t, tt.want, rec.Code)
			assert.Empty(t, rec.Header().Get("Allow"))
		})
	}
}
