package domain

import "errors"

// Sentinel errors for the domain layer. Every failure from the workflow
// backend or the identity provider is classified into exactly one of these
// before it crosses a package boundary.
var (
	ErrNotFound           = errors.New("domain: not found")
	ErrUnauthorized       = errors.New("domain: unauthorized")
	ErrForbidden          = errors.New("domain: forbidden")
	ErrConflict           = errors.New("domain: conflict")
	ErrPreconditionFailed = errors.New("domain: precondition failed")
	ErrBadRequest         = errors.New("domain: bad request")
	ErrInternal           = errors.New("domain: internal")
)
