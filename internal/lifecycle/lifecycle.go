// Package lifecycle holds the product status machine and its guarded approve
// transition. It performs no I/O; callers persist the returned state.
package lifecycle

import (
	"fmt"
	"time"

	"github.com/amoylab/catalog/internal/common/cnst"
)

// Status is the lifecycle state of a product
type Status string

const (
	StatusDraft           Status = "draft"
	StatusPendingApproval Status = "pending_approval"
	StatusApproved        Status = "approved"
	StatusRejected        Status = "rejected"
)

// Statuses lists every status in a stable order
var Statuses = []Status{StatusDraft, StatusPendingApproval, StatusApproved, StatusRejected}

func (s Status) String() string {
	return string(s)
}

// Valid reports whether s is a known status
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusPendingApproval, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// ParseStatus converts a status name, rejecting unknown values
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", &InvalidStatusError{Field: "status", Value: s, Reason: "unknown status"}
	}
	return st, nil
}

// InvalidStatusError reports a status value the caller is not allowed to set
type InvalidStatusError struct {
	Field  string
	Value  string
	Reason string
}

func (e *InvalidStatusError) Error() string {
	return fmt.Sprintf("%s: %q %s", e.Field, e.Value, e.Reason)
}

// ErrorDetails exposes the offending field to API error rendering
func (e *InvalidStatusError) ErrorDetails() map[string]any {
	return map[string]any{"field": e.Field, "value": e.Value, "reason": e.Reason}
}

// Is makes the error match cnst.ErrInvalidStatus
func (e *InvalidStatusError) Is(target error) bool {
	return target == cnst.ErrInvalidStatus
}

// State is the part of a product the lifecycle governs.
// ApprovedBy and ApprovedAt are set if and only if Status is approved.
type State struct {
	Status     Status
	ApprovedBy *uint
	ApprovedAt *time.Time
}

// ValidateInitialStatus returns the status a new product starts in.
// An empty value means draft; approved and rejected can never be chosen at creation.
func ValidateInitialStatus(requested string) (Status, error) {
	if requested == "" {
		return StatusDraft, nil
	}
	st, err := ParseStatus(requested)
	if err != nil {
		return "", err
	}
	switch st {
	case StatusDraft, StatusPendingApproval:
		return st, nil
	default:
		return "", &InvalidStatusError{Field: "status", Value: requested, Reason: "cannot be set at creation"}
	}
}

// Approve performs the guarded transition to approved.
// Re-approving is a conflict, never a silent success.
func Approve(cur State, approverID uint, now time.Time) (State, error) {
	if cur.Status == StatusApproved {
		return cur, cnst.ErrAlreadyApproved
	}
	by := approverID
	at := now
	return State{Status: StatusApproved, ApprovedBy: &by, ApprovedAt: &at}, nil
}

// ApplyStatus performs a direct status edit. Approved is only reachable through
// Approve; leaving approved clears the approval fields.
func ApplyStatus(cur State, requested string) (State, error) {
	to, err := ParseStatus(requested)
	if err != nil {
		return cur, err
	}
	if to == StatusApproved {
		if cur.Status == StatusApproved {
			return cur, nil
		}
		return cur, &InvalidStatusError{Field: "status", Value: requested, Reason: "is only reachable through approval"}
	}
	return State{Status: to}, nil
}

// CheckInvariant verifies that approval fields are present exactly when approved
func CheckInvariant(s State) error {
	approved := s.Status == StatusApproved
	if approved != (s.ApprovedBy != nil) || approved != (s.ApprovedAt != nil) {
		return fmt.Errorf("inconsistent approval state: status=%s approved_by set=%t approved_at set=%t",
			s.Status, s.ApprovedBy != nil, s.ApprovedAt != nil)
	}
	return nil
}
