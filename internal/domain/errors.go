package domain

import "errors"

// Generic errors shared by the account store and services. Handlers map them
// to status codes; infrastructure causes stay in the wrapped chain.
var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrForbidden  = errors.New("forbidden")
	ErrBadRequest = errors.New("bad request")
)

// Authentication and session errors. Callers only ever see the coarse category;
// the specific cause stays in the wrapped chain for logging.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrNoToken            = errors.New("no bearer token")
	ErrInvalidToken       = errors.New("invalid token")
	ErrUnknownSubject     = errors.New("unknown token subject")
	ErrStoreUnavailable   = errors.New("store unavailable")
)

// Verification-code errors.
var (
	ErrThrottled      = errors.New("code requested too frequently, retry after cooldown")
	ErrCodeExpired    = errors.New("verification code expired or not requested")
	ErrCodeMismatch   = errors.New("verification code mismatch")
	ErrDispatchFailed = errors.New("verification code dispatch failed")
)
