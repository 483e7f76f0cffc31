package service

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountInactive    = errors.New("account inactive")
	ErrOfficerInactive    = errors.New("officer inactive")
	ErrValidation         = errors.New("validation failed")
	ErrProtectedAccount   = errors.New("super admin account is protected")
	ErrSelfDeletion       = errors.New("officers cannot delete their own record")
)
