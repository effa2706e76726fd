package errs

import "errors"

var (
	ErrMalformedLine         = errors.New("malformed line")
	ErrMalformedEncoding     = errors.New("malformed encoding")
	ErrUnknownAction         = errors.New("unknown action")
	ErrConfigurationMismatch = errors.New("configuration mismatch")
)

var (
	ErrConversionNotFound = errors.New("conversion not found")
	ErrFetchFailed        = errors.New("fetch failed")
	ErrInvalidConfig      = errors.New("invalid configuration")
)
