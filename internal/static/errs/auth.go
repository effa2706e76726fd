package errs

import "errors"

var (
	InvalidToken         = errors.New("invalid token")
	MissingAuthorization = errors.New("authorization header missing")
	GeneratingToken      = errors.New("error generating token")
	PermissionDenied     = errors.New("permission denied")
)
