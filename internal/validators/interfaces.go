// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package validators provides request-level validation of the forms
// submitted to the portal.
//
// Core concepts:
//   - Validator: generic interface to validate arbitrary values or structures.
//     Supports optional field-level scoping for targeted validation.
//   - ValidationErrors: ordered per-field messages ready to be rendered
//     next to the offending inputs.
//
// Syntax rules live in struct tags on the form models and are enforced with
// go-playground/validator. Registration additionally checks that the
// username and email are still available.
package validators

import "context"

// Validator defines a generic validation interface for arbitrary input values.
// Implementations may perform structural validation, semantic checks,
// cross-field rules.
type Validator interface {

	// Validate validates the provided input and optionally
	// restricts validation to specific named fields.
	Validate(context.Context, any, ...string) error
}

// AvailabilityChecker reports whether a username or email is already used
// by a non-deleted account.
type AvailabilityChecker interface {
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
}
