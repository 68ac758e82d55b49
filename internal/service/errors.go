package service

import "errors"

var (
	ErrIDRequired   = errors.New("id is required")
	ErrNotFound     = errors.New("item not found")
	ErrInvalidInput = errors.New("invalid input")

	ErrUserNotFound   = errors.New("user not found")
	ErrWrongPassword  = errors.New("wrong password")
	ErrLoginFailed    = errors.New("login failed")
	ErrUsernameTaken  = errors.New("username already taken")
	ErrEmailInUse     = errors.New("email already in use")
	ErrRegisterFailed = errors.New("registration failed")
	ErrUnauthorized   = errors.New("unauthorized")

	ErrNumberRequired    = errors.New("phone number required")
	ErrSMSUnavailable    = errors.New("sms sending unavailable")
	ErrExportUnavailable = errors.New("export storage not configured")
)
