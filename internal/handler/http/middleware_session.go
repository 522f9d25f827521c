// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"context"
	"net/http"

	"github.com/MKhiriev/go-auth-portal/internal/logger"
	"github.com/MKhiriev/go-auth-portal/internal/utils"
)

const (
	homePath  = "/"
	loginPath = "/login"
)

// guestOnly sends signed in users home. It guards the login, registration and
// confirmation pages.
func (h *Handler) guestOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := h.sessions.Current(r); ok {
			http.Redirect(w, r, homePath, http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireSession lets through requests carrying an authenticated session and
// puts the account id into the context. Guests are sent to the login page;
// the page they asked for is remembered for after the login.
func (h *Handler) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, ok := h.sessions.Current(r)
		if !ok {
			if r.Method == http.MethodGet {
				if err := h.sessions.RememberIntended(w, r, r.URL.RequestURI()); err != nil {
					logger.FromRequest(r).Err(err).Msg("error remembering intended url")
				}
			}
			http.Redirect(w, r, loginPath, http.StatusFound)
			return
		}

		ctx := context.WithValue(r.Context(), utils.AccountIDCtxKey, session.AccountID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
