package model

import "errors"

var (
	// Account related errors
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrAccountInactive    = errors.New("account inactive")

	// Token related errors
	ErrInvalidToken = errors.New("invalid token")

	// Permission/Access related errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// Entity related errors
	ErrNotFound        = errors.New("entity not found")
	ErrMultipleResults = errors.New("multiple entities matched a single lookup")

	// Transaction related errors
	ErrNoActiveTransaction = errors.New("no active transaction")
	ErrTransactionActive   = errors.New("transaction already started")

	// Generic errors
	ErrInvalidInput = errors.New("invalid input")
)
