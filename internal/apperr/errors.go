// Package apperr defines sentinel errors shared across the application.
package apperr

import "errors"

var (
	ErrInvalid          = errors.New("invalid")
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("forbidden")
	ErrAlreadyExists    = errors.New("already exists")
	ErrPathOutsideVault = errors.New("path escapes vault root")
	ErrPathExcluded     = errors.New("path is excluded")
)
