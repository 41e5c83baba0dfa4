package domain

import "errors"

// Error kinds shared by services and handlers. Lower layers wrap the cause
// with one of these so handlers can map it with errors.Is.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidInput       = errors.New("invalid input")
	ErrNotFound           = errors.New("not found")
	ErrStorage            = errors.New("storage error")
	ErrDatabase           = errors.New("database error")
	ErrMail               = errors.New("mail error")
	ErrSessionStore       = errors.New("session store error")
)
