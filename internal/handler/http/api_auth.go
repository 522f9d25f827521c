package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/MKhiriev/go-auth-portal/internal/app"
	"github.com/MKhiriev/go-auth-portal/internal/logger"
	"github.com/MKhiriev/go-auth-portal/internal/utils"
	"github.com/MKhiriev/go-auth-portal/internal/validators"
	"github.com/MKhiriev/go-auth-portal/models"
)

type apiError struct {
	Error  string              `json:"error"`
	Fields map[string][]string `json:"fields,omitempty"`
}

type tokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (h *Handler) apiRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var form models.RegistrationForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		log.Err(err).Msg("Invalid JSON was passed")
		utils.WriteJSON(w, apiError{Error: app.MsgInvalidDataProvided}, http.StatusBadRequest)
		return
	}

	if !h.validateAPIForm(w, r, form) {
		return
	}

	account, err := h.services.AuthService.Register(ctx, form.Registration())
	if err != nil {
		h.writeAPIError(w, r, err)
		return
	}

	utils.WriteJSON(w, account, http.StatusCreated)
}

func (h *Handler) apiLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var form models.LoginForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		log.Err(err).Msg("Invalid JSON was passed")
		utils.WriteJSON(w, apiError{Error: app.MsgInvalidDataProvided}, http.StatusBadRequest)
		return
	}

	if !h.validateAPIForm(w, r, form) {
		return
	}

	session, err := h.services.AuthService.Login(ctx, form.Username, form.Password)
	if err != nil {
		h.writeAPIError(w, r, err)
		return
	}

	token, err := h.services.AuthService.CreateToken(ctx, session)
	if err != nil {
		log.Err(err).Msg("creation of token failed")
		utils.WriteJSON(w, apiError{Error: app.MsgInternalServerError}, http.StatusInternalServerError)
		return
	}

	response := tokenResponse{Token: token.SignedString}
	if token.ExpiresAt != nil {
		response.ExpiresAt = token.ExpiresAt.Time
	}

	w.Header().Set("Authorization", fmt.Sprintf("Bearer %s", token.SignedString))
	utils.WriteJSON(w, response, http.StatusOK)
}

func (h *Handler) apiMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	accountID, ok := utils.GetAccountIDFromContext(ctx)
	if !ok {
		utils.WriteJSON(w, apiError{Error: app.MsgTokenIsExpiredOrInvalid}, http.StatusUnauthorized)
		return
	}

	account, err := h.services.AuthService.CurrentAccount(ctx, accountID)
	if err != nil {
		h.writeAPIError(w, r, err)
		return
	}

	utils.WriteJSON(w, account, http.StatusOK)
}

// validateAPIForm writes a 422 response listing field messages when form
// does not validate and reports whether the caller may proceed.
func (h *Handler) validateAPIForm(w http.ResponseWriter, r *http.Request, form any) bool {
	err := h.validator.Validate(r.Context(), form)
	if err == nil {
		return true
	}

	var verrs validators.ValidationErrors
	if errors.As(err, &verrs) {
		status := http.StatusUnprocessableEntity
		if errors.Is(verrs, validators.ErrAlreadyTaken) {
			status = http.StatusConflict
		}
		utils.WriteJSON(w, apiError{Error: app.MsgInvalidDataProvided, Fields: verrs.Map()}, status)
		return false
	}

	logger.FromRequest(r).Err(err).Msg("form validation failed")
	utils.WriteJSON(w, apiError{Error: app.MsgInternalServerError}, http.StatusInternalServerError)
	return false
}

func (h *Handler) writeAPIError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := statusFromError(err)
	if status >= http.StatusInternalServerError {
		logger.FromRequest(r).Err(err).Msg("unexpected error occurred")
	}
	utils.WriteJSON(w, apiError{Error: message}, status)
}
