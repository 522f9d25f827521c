// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// LoginForm carries the credentials submitted on the login page or to the
// login API. Field tags drive the request-level validation.
type LoginForm struct {
	Username string `json:"username" form:"username" validate:"required,min=3,max=30"`
	Password string `json:"password" form:"password" validate:"required,min=8,max=32,max_bytes=72,password_classes"`
}

// RegistrationForm carries the fields of a sign-up request.
type RegistrationForm struct {
	Username             string `json:"username" form:"username" validate:"required,min=3,max=30"`
	Email                string `json:"email" form:"email" validate:"required,email"`
	Password             string `json:"password" form:"password" validate:"required,min=8,max=32,max_bytes=72,password_classes"`
	PasswordConfirmation string `json:"password_confirmation" form:"password_confirmation" validate:"required,eqfield=Password"`
}

// Registration converts the validated form into the service input.
func (f RegistrationForm) Registration() Registration {
	return Registration{
		Username:             f.Username,
		Email:                f.Email,
		Password:             f.Password,
		PasswordConfirmation: f.PasswordConfirmation,
	}
}

// Registration is the input of the registration step.
type Registration struct {
	Username             string
	Email                string
	Password             string
	PasswordConfirmation string
}
