package services

import "errors"

var (
	ErrInvalidCredentials       = errors.New("invalid login credentials")
	ErrEmailNotConfirmed        = errors.New("email not confirmed")
	ErrAlreadyRegistered        = errors.New("user already registered")
	ErrWeakPassword             = errors.New("password does not meet the policy")
	ErrInvalidEmail             = errors.New("invalid email address")
	ErrInvalidConfirmationToken = errors.New("invalid or expired confirmation token")
	ErrRecordNotFound           = errors.New("record not found")
	ErrInvalidRole              = errors.New("invalid role")
	ErrMissingOwner             = errors.New("owner id is required")
)
