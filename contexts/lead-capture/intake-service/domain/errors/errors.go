package errors

import "errors"

var (
	ErrMissingField      = errors.New("required field is missing")
	ErrInvalidEmail      = errors.New("email address is not valid")
	ErrDisposableDomain  = errors.New("disposable email addresses are not accepted")
	ErrCaptchaRejected   = errors.New("captcha verification failed")
	ErrDuplicateLead     = errors.New("duplicate lead")
	ErrLeadNotFound      = errors.New("lead not found")
	ErrPersistenceFailed = errors.New("lead could not be persisted")
)
