package ledger

import (
	"fmt"

	"github.com/mmynk/splitledger/internal/models"
)

// EmitsDebts reports whether balance queries for a group in this mode include
// simplified debts. Contribution-mode groups still get their balances.
func EmitsDebts(mode models.GroupMode) bool {
	return mode == models.ModeSplit
}

// CheckModeChange validates that callerID may switch group to mode.
// Changing the mode never touches expense or settlement history.
func CheckModeChange(group *models.Group, callerID string, mode models.GroupMode) error {
	if !group.HasMember(callerID) {
		return fmt.Errorf("%w: %s is not a member of group %s", ErrForbidden, callerID, group.ID)
	}
	if group.IsPersonal() && mode != models.ModeContribution {
		return fmt.Errorf("%w: personal groups are always in contribution mode", ErrPreconditionFailed)
	}
	return nil
}

// CheckLeave validates that callerID may leave group.
func CheckLeave(group *models.Group, callerID string) error {
	if !group.HasMember(callerID) {
		return fmt.Errorf("%w: %s is not a member of group %s", ErrForbidden, callerID, group.ID)
	}
	if group.IsPersonal() {
		return fmt.Errorf("%w: cannot leave a personal group", ErrPreconditionFailed)
	}
	if len(group.Members) == 1 {
		return fmt.Errorf("%w: the last member cannot leave group %s", ErrPreconditionFailed, group.ID)
	}
	return nil
}
