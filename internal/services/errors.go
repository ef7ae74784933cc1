package services

import "errors"

var (
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrNotFound           = errors.New("recipe not found")
	ErrOwnerNotFound      = errors.New("recipe owner not found")
	ErrValidation         = errors.New("validation failed")
)
