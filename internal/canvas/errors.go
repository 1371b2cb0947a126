package canvas

import (
	"fmt"

	"corkboard-cli/internal/access"
	"corkboard-cli/internal/model"
)

// ValidationError rejects an interaction before any optimistic state
// change (e.g. dropping a document onto a folder).
type ValidationError struct {
	Reason string
}

func (e ValidationError) Error() string { return e.Reason }

// PermissionDeniedError rejects a mutation above the caller's role. The
// engine raises it before a drag or rename session even starts, so denied
// callers never see a half-finished interaction.
type PermissionDeniedError struct {
	Action access.Action
	Role   model.Role
}

func (e PermissionDeniedError) Error() string {
	return fmt.Sprintf("%s not permitted for role %s", e.Action, e.Role)
}

// NotFoundError means the targeted item is not in the engine's current
// item set (typically deleted by a concurrent caller).
type NotFoundError struct {
	ItemID string
}

func (e NotFoundError) Error() string {
	return "item not found: " + e.ItemID
}

// PersistenceFailureError surfaces a store write that failed after the
// optimistic local mutation already happened. The local state is kept;
// the next reconciliation settles the difference.
type PersistenceFailureError struct {
	Op  string
	Err error
}

func (e PersistenceFailureError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e PersistenceFailureError) Unwrap() error { return e.Err }

// ConflictStaleError means reconciliation revealed that an item involved
// in the current interaction was changed or deleted elsewhere.
type ConflictStaleError struct {
	ItemID string
}

func (e ConflictStaleError) Error() string {
	return "item changed elsewhere: " + e.ItemID
}
