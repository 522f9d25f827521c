package http

import (
	"net/http"

	"github.com/MKhiriev/go-auth-portal/internal/app"
	"github.com/MKhiriev/go-auth-portal/internal/logger"
)

const csrfFormField = "_csrf"

// csrf rejects state-changing form posts whose _csrf field does not match the
// token bound to the session.
func (h *Handler) csrf(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
			return
		}

		if err := r.ParseForm(); err != nil {
			logger.FromRequest(r).Err(err).Msg(ErrParsingForm.Error())
			http.Error(w, app.MsgInvalidDataProvided, http.StatusBadRequest)
			return
		}

		if !h.sessions.ValidCSRF(r, r.PostFormValue(csrfFormField)) {
			logger.FromRequest(r).Warn().Err(ErrInvalidCSRF).Send()
			http.Error(w, app.MsgInvalidCSRFToken, http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}
