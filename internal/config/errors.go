package config

import "errors"

// Validation errors returned by [StructuredConfig.validate] when required
// configuration groups are incomplete or invalid.
var (
	// ErrInvalidStorageConfigs indicates invalid storage settings
	// (for example, empty DSN or unknown driver).
	ErrInvalidStorageConfigs = errors.New("invalid storage configuration")
	// ErrInvalidAppConfigs indicates invalid application-level settings
	// (for example, missing base URL or token sign key).
	ErrInvalidAppConfigs = errors.New("invalid app configuration")
	// ErrInvalidSessionConfigs indicates unusable session cookie keys.
	ErrInvalidSessionConfigs = errors.New("invalid session configuration")
	// ErrInvalidMailConfigs indicates an incomplete mail delivery setup.
	ErrInvalidMailConfigs = errors.New("invalid mail configuration")
)
