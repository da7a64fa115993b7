package service

import (
	"errors"
	"fmt"
)

var (
	ErrValidation     = errors.New("validation failed")
	ErrUserExists     = errors.New("user already exists")
	ErrBadCredentials = errors.New("bad email or password")
	ErrInvalidToken   = errors.New("invalid token")
	ErrNotFound       = errors.New("not found")

	ErrInvalidEmail    = fmt.Errorf("%w: invalid email format", ErrValidation)
	ErrInvalidPassword = fmt.Errorf("%w: weak password", ErrValidation)
	ErrInvalidField    = fmt.Errorf("%w: empty or unknown item field", ErrValidation)

	ErrInvalidItemname    = fmt.Errorf("%w: itemname", ErrInvalidField)
	ErrInvalidCategory    = fmt.Errorf("%w: category", ErrInvalidField)
	ErrInvalidDescription = fmt.Errorf("%w: description", ErrInvalidField)
)
