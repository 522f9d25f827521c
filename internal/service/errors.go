package service

import "errors"

var (
	ErrInvalidDataProvided = errors.New("invalid data provided")

	// ErrInvalidCredentials covers unknown usernames, wrong passwords and
	// accounts that are inactive, unverified or blocked.
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrUniquenessConflict = errors.New("username or email already taken")
	ErrDeliveryFailure    = errors.New("confirmation mail could not be delivered")
	ErrInvalidToken       = errors.New("invalid confirmation token")
	ErrAccountNotFound    = errors.New("account not found")

	ErrHashingPassword   = errors.New("error hashing password")
	ErrGeneratingToken   = errors.New("error generating confirmation token")
	ErrCreatingAccount   = errors.New("error creating account")
	ErrConfirmingAccount = errors.New("error confirming account")
	ErrLoggingIn         = errors.New("error logging in")

	ErrTokenCreationFailed     = errors.New("token creation failed")
	ErrTokenIsExpiredOrInvalid = errors.New("token is expired or invalid")

	ErrVersionIsNotSpecified = errors.New("app version is not specified")
)
