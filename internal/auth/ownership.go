package auth

import (
	"context"
	"errors"
)

// ErrOwnershipMismatch indicates a member-scoped resource belongs to
// a different member than the caller.
var ErrOwnershipMismatch = errors.New("auth: ownership mismatch")

// EnsureSelf verifies the caller may act on the given member's
// resources. Admins may act on any member; members only on themselves.
func EnsureSelf(ctx context.Context, memberID string) error {
	if memberID == "" {
		return ErrOwnershipMismatch
	}
	if RoleFromContext(ctx) == RoleAdmin {
		return nil
	}
	if SubjectFromContext(ctx) != memberID {
		return ErrOwnershipMismatch
	}
	return nil
}
