package common

import "errors"

var (
	// ErrAuthorization: the record exists but belongs to another owner.
	ErrAuthorization = errors.New("forbidden")
	// ErrNotFound: the record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict: an update affected zero rows because the target is gone.
	ErrConflict = errors.New("resource no longer exists")
	// ErrValidation: malformed write (bad body, id mismatch, invalid field).
	ErrValidation = errors.New("validation error")

	// ErrTransport covers network and push channel faults.
	ErrTransport = errors.New("transport error")
	// ErrCache covers local persistence faults.
	ErrCache = errors.New("cache error")

	// auth
	ErrUnauthorized    = errors.New("unauthorized")
	ErrInvalidToken    = errors.New("invalid token")
	ErrTokenExpired    = errors.New("token expired")
	ErrUserExists      = errors.New("user already exists")
	ErrStorageDisabled = errors.New("photo storage disabled")
)

// IsPermanent reports whether retrying the same write can never succeed.
func IsPermanent(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrAuthorization) ||
		errors.Is(err, ErrValidation)
}
