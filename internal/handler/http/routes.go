package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	if h.cfg.TrustProxyHeaders {
		router.Use(middleware.RealIP)
	}
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID)
	router.Use(h.withLogging)
	router.Use(h.withMetrics)
	if h.cfg.RequestTimeout > 0 {
		router.Use(middleware.Timeout(h.cfg.RequestTimeout))
	}

	// web pages for guests
	router.Group(func(r chi.Router) {
		r.Use(h.csrf)
		r.Use(h.guestOnly)

		r.Get("/login", h.showLogin)
		r.With(h.rateLimit).Post("/login", h.authenticate)
		r.Get("/register", h.showRegister)
		r.With(h.rateLimit).Post("/register", h.storeAccount)
		r.Get("/new_user_confirmation/{token}", h.confirmAccount)
	})

	// web pages for signed in users
	router.Group(func(r chi.Router) {
		r.Use(h.requireSession)

		r.Get("/", h.home)
		r.Get("/logout", h.logout)
	})

	// JSON API
	router.Group(func(r chi.Router) {
		r.With(h.rateLimit).Post("/api/user/register", h.apiRegister)
		r.With(h.rateLimit).Post("/api/user/login", h.apiLogin)
		r.With(h.auth).Get("/api/user/me", h.apiMe)
		r.Get("/api/version", h.getServerVersion)
	})

	router.Handle("/metrics", h.metrics.Handler())

	router.MethodNotAllowed(methodNotAllowed(router))

	return router
}
