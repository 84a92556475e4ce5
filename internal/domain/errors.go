package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingFields is returned when a required input is empty.
	ErrMissingFields = errors.New("missing required fields")

	// ErrDuplicateAccount is returned when registering an email that already has an account.
	ErrDuplicateAccount = errors.New("user already exists")

	// ErrInvalidCredentials covers unknown emails and wrong passwords alike.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUseExternalLogin is returned for accounts that have no password. It is an
	// ErrInvalidCredentials, but may be surfaced distinctly.
	ErrUseExternalLogin = fmt.Errorf("%w: please login with google", ErrInvalidCredentials)

	// ErrProviderAssertionInvalid is returned when the provider identity lacks an id or email.
	ErrProviderAssertionInvalid = errors.New("provider assertion invalid")

	// ErrInvalidToken is returned for malformed tokens and bad signatures.
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpiredToken is returned for well-signed tokens past their expiration.
	ErrExpiredToken = errors.New("token expired")

	// ErrUnauthorized is returned when a protected request carries no usable credential.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound is returned when a referenced user or task does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden is returned when the caller does not own the resource.
	ErrForbidden = errors.New("forbidden")

	// ErrUpstreamUnavailable wraps store failures (network, timeouts).
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrInvalidInput is returned when a payload fails validation rules.
	ErrInvalidInput = errors.New("invalid input")
)
