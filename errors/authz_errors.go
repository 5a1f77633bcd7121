// api/errors/authz_errors.go
package errors

import "errors"

var (
	ErrMissingTenantID   = errors.New("tenant id is required")
	ErrInvalidRequest    = errors.New("invalid authorization request")
	ErrDatabaseOperation = errors.New("database operation failed")
)
