package ledger

import (
	"errors"
	"fmt"
)

// Error classes returned by the engine. Callers match them with errors.Is;
// none of them is transient, so retrying the same input reproduces the error.
var (
	// ErrNotFound means the referenced group does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden means a caller, payer or payee is not a member of the group.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidArgument covers self-settlements, non-positive amounts and
	// currencies outside the supported set.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrPreconditionFailed means the group type forbids the operation,
	// e.g. changing the mode of a personal group.
	ErrPreconditionFailed = errors.New("precondition failed")
)

// ErrEmptyGroup is returned when a group with no members reaches the
// aggregator. Groups always keep at least one member, so seeing this means the
// membership invariant was broken upstream.
var ErrEmptyGroup = fmt.Errorf("%w: group has no members", ErrInvalidArgument)
