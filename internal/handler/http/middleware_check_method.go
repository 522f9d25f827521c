// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// methodNotAllowed is registered as the router's MethodNotAllowed handler.
// A path served under a different method answers 404 rather than 405, so
// probing with the wrong method does not reveal which routes exist.
//
// Requests whose method does match a route, parameterised routes included,
// go back through the router.
func methodNotAllowed(router *chi.Mux) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !router.Match(chi.NewRouteContext(), r.Method, r.URL.Path) {
			http.NotFound(w, r)
			return
		}

		router.ServeHTTP(w, r)
	}
}
