package models

import "fmt"

// GroupType distinguishes regular shared groups from a user's personal ledger.
type GroupType string

const (
	GroupTypeShared   GroupType = "shared"
	GroupTypePersonal GroupType = "personal"
)

// GroupMode controls whether debts between members are exposed.
type GroupMode string

const (
	// ModeSplit tracks unequal contributions as debts between members.
	ModeSplit GroupMode = "split"
	// ModeContribution tracks contributions only; nobody owes anybody.
	ModeContribution GroupMode = "contribution"
)

// ParseGroupMode validates a mode string.
func ParseGroupMode(s string) (GroupMode, error) {
	switch GroupMode(s) {
	case ModeSplit, ModeContribution:
		return GroupMode(s), nil
	}
	return "", fmt.Errorf("unknown group mode %q", s)
}

// Group is a set of members sharing expenses.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Flat 4B", "Family").
	Name string

	// Type is shared or personal. Personal groups have exactly one member
	// and are always in contribution mode.
	Type GroupType

	// Mode is split or contribution.
	Mode GroupMode

	// InviteCode lets other users join a shared group. Empty for personal groups.
	InviteCode string

	// Members holds user IDs ordered by join time.
	Members []string

	// CreatedBy is the user ID of the creator.
	CreatedBy string

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// IsPersonal reports whether g is a single-user personal ledger.
func (g *Group) IsPersonal() bool {
	return g.Type == GroupTypePersonal
}

// HasMember reports whether userID is currently a member of g.
func (g *Group) HasMember(userID string) bool {
	for _, m := range g.Members {
		if m == userID {
			return true
		}
	}
	return false
}
