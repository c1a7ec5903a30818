package cnst

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthenticationRequired is returned when an anonymous actor attempts a gated action
	ErrAuthenticationRequired = errors.New("authentication required")
	// ErrForbidden is returned when an authenticated actor is denied by role or tenant rules
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound is returned when a resource does not exist or is outside the actor's visibility
	ErrNotFound = errors.New("resource not found")
	// ErrInvalidInput is returned when request data fails validation
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidStatus is returned when a caller sets a disallowed product status
	ErrInvalidStatus = errors.New("invalid product status")
	// ErrConflict is returned when a unique constraint would be violated
	ErrConflict = errors.New("resource conflict")
	// ErrAlreadyApproved is returned when approving a product that is already approved
	ErrAlreadyApproved = errors.New("product already approved")
	// ErrConcurrentUpdate is returned when a product changed between read and write
	ErrConcurrentUpdate = errors.New("product was modified concurrently")
	// ErrInvalidCredentials is returned when login fails
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrUserDisabled is returned when an inactive user tries to authenticate
	ErrUserDisabled = errors.New("user is disabled")
	// ErrInvalidToken is returned when an access token cannot be verified
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrInvalidRefreshToken is returned when a refresh token is unknown or expired
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	// ErrUserHasApprovals is returned when deleting a user who approved products.
	// Such users are deactivated instead so every approval keeps its approver.
	ErrUserHasApprovals = fmt.Errorf("%w: user approved products", ErrConflict)
)
