// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/go-auth-portal/internal/app"
	"github.com/MKhiriev/go-auth-portal/internal/logger"
	"github.com/MKhiriev/go-auth-portal/internal/service"
	"github.com/MKhiriev/go-auth-portal/internal/store"
	"github.com/MKhiriev/go-auth-portal/internal/utils"
	"github.com/MKhiriev/go-auth-portal/internal/validators"
	"github.com/MKhiriev/go-auth-portal/models"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) showLogin(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, pageLogin, pageData{})
}

// authenticate handles the login form. Every failed attempt renders the same
// generic message with the username kept.
func (h *Handler) authenticate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	form := models.LoginForm{
		Username: r.PostFormValue(validators.FieldUsername),
		Password: r.PostFormValue(validators.FieldPassword),
	}
	data := pageData{input: map[string]string{validators.FieldUsername: form.Username}}

	if err := h.validator.Validate(ctx, form); err != nil {
		var verrs validators.ValidationErrors
		if errors.As(err, &verrs) {
			data.errors = verrs.Map()
			h.render(w, r, http.StatusUnprocessableEntity, pageLogin, data)
			return
		}
		log.Err(err).Msg("login form validation failed")
		data.Alert = app.MsgInternalServerError
		h.render(w, r, http.StatusInternalServerError, pageLogin, data)
		return
	}

	session, err := h.services.AuthService.Login(ctx, form.Username, form.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			data.Alert = app.MsgInvalidLogin
			h.render(w, r, http.StatusUnauthorized, pageLogin, data)
			return
		}
		log.Err(err).Msg("unexpected error occurred during login")
		data.Alert = app.MsgInternalServerError
		h.render(w, r, http.StatusInternalServerError, pageLogin, data)
		return
	}

	destination := h.sessions.Intended(r, homePath)
	if err := h.sessions.Establish(w, r, session); err != nil {
		log.Err(err).Msg("error establishing session")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	log.Info().Int64("account_id", session.AccountID).Msg("account logged in")
	http.Redirect(w, r, destination, http.StatusSeeOther)
}

func (h *Handler) showRegister(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, pageRegister, pageData{})
}

// storeAccount handles the registration form.
func (h *Handler) storeAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	form := models.RegistrationForm{
		Username:             r.PostFormValue(validators.FieldUsername),
		Email:                r.PostFormValue(validators.FieldEmail),
		Password:             r.PostFormValue(validators.FieldPassword),
		PasswordConfirmation: r.PostFormValue(validators.FieldPasswordConfirmation),
	}
	data := pageData{input: map[string]string{
		validators.FieldUsername: form.Username,
		validators.FieldEmail:    form.Email,
	}}

	if err := h.validator.Validate(ctx, form); err != nil {
		var verrs validators.ValidationErrors
		if errors.As(err, &verrs) {
			data.errors = verrs.Map()
			h.render(w, r, http.StatusUnprocessableEntity, pageRegister, data)
			return
		}
		log.Err(err).Msg("registration form validation failed")
		data.Alert = app.MsgInternalServerError
		h.render(w, r, http.StatusInternalServerError, pageRegister, data)
		return
	}

	account, err := h.services.AuthService.Register(ctx, form.Registration())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUniquenessConflict):
			data.errors = validators.AlreadyTaken(conflictingField(err)).Map()
			h.render(w, r, http.StatusConflict, pageRegister, data)
		case errors.Is(err, service.ErrInvalidDataProvided):
			data.Alert = app.MsgInvalidDataProvided
			h.render(w, r, http.StatusUnprocessableEntity, pageRegister, data)
		case errors.Is(err, service.ErrDeliveryFailure):
			log.Err(err).Msg("confirmation mail was not delivered")
			data.Alert = app.MsgConfirmationMailFailed
			h.render(w, r, http.StatusInternalServerError, pageRegister, data)
		default:
			log.Err(err).Msg("unexpected error occurred during registration")
			data.Alert = app.MsgInternalServerError
			h.render(w, r, http.StatusInternalServerError, pageRegister, data)
		}
		return
	}

	h.render(w, r, http.StatusOK, pageEmailSent, pageData{
		input: map[string]string{validators.FieldEmail: account.Email},
	})
}

// confirmAccount consumes the token of a confirmation link. Unknown tokens
// redirect to the login page without saying why.
func (h *Handler) confirmAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	session, err := h.services.AuthService.Confirm(ctx, chi.URLParam(r, "token"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidToken) {
			http.Redirect(w, r, loginPath, http.StatusFound)
			return
		}
		log.Err(err).Msg("unexpected error occurred during confirmation")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if err := h.sessions.Establish(w, r, session); err != nil {
		log.Err(err).Msg("error establishing session")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.render(w, r, http.StatusOK, pageUserConfirmation, pageData{Username: session.Username})
}

func (h *Handler) home(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	accountID, _ := utils.GetAccountIDFromContext(ctx)
	account, err := h.services.AuthService.CurrentAccount(ctx, accountID)
	if err != nil {
		if errors.Is(err, service.ErrAccountNotFound) {
			// deleted since the session was established
			if err := h.sessions.Destroy(w, r); err != nil {
				log.Err(err).Msg("error destroying session")
			}
			http.Redirect(w, r, loginPath, http.StatusFound)
			return
		}
		log.Err(err).Msg("error loading current account")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.render(w, r, http.StatusOK, pageHome, pageData{Username: account.Username, Account: &account})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Destroy(w, r); err != nil {
		logger.FromRequest(r).Err(err).Msg("error destroying session")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, loginPath, http.StatusFound)
}

// conflictingField names the form field a uniqueness conflict is about.
func conflictingField(err error) string {
	if errors.Is(err, store.ErrEmailAlreadyExists) {
		return validators.FieldEmail
	}
	return validators.FieldUsername
}
