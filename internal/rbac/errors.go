package rbac

import (
	"errors"
	"strings"
)

var (
	// ErrDBNil is returned when the service was built without a database.
	ErrDBNil = errors.New("database connection is nil")
	// ErrForbidden is returned when the acting user lacks the permission an operation needs.
	ErrForbidden = errors.New("access denied")
	// ErrRoleNotFound is returned when a role id does not resolve.
	ErrRoleNotFound = errors.New("role not found")
	// ErrPermissionNotFound is returned when a permission id does not resolve.
	ErrPermissionNotFound = errors.New("permission not found")
	// ErrEmptyCategory is returned by category operations on a category without permissions.
	ErrEmptyCategory = errors.New("no permissions found in category")
	// ErrRoleInUse is returned when deleting a role that users still hold.
	ErrRoleInUse = errors.New("role is assigned to users")
	// ErrSuperAdminRole is returned when deleting a super-admin role or assigning it menu access.
	ErrSuperAdminRole = errors.New("operation not allowed on a super-admin role")
)

// ValidationError collects every problem found in a submitted form.
// Nothing is written when it is returned.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Problems, "; ")
}

func (e *ValidationError) add(problem string) {
	e.Problems = append(e.Problems, problem)
}

// err returns nil when no problem was collected.
func (e *ValidationError) err() error {
	if len(e.Problems) == 0 {
		return nil
	}

	return e
}

// IsValidation reports whether err is a *ValidationError and returns it.
func IsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}

	return nil, false
}
