package ledger

import (
	"errors"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestEmitsDebts(t *testing.T) {
	assert.True(t, EmitsDebts(models.ModeSplit))
	assert.False(t, EmitsDebts(models.ModeContribution))
	assert.False(t, EmitsDebts(""))
}

func TestCheckModeChange(t *testing.T) {
	shared := &models.Group{ID: "g", Type: models.GroupTypeShared, Mode: models.ModeSplit, Members: []string{"A", "B"}}
	personal := &models.Group{ID: "p", Type: models.GroupTypePersonal, Mode: models.ModeContribution, Members: []string{"A"}}

	tests := []struct {
		name   string
		group  *models.Group
		caller string
		mode   models.GroupMode
		want   error
	}{
		{"member switches shared group", shared, "B", models.ModeContribution, nil},
		{"non-member", shared, "Z", models.ModeContribution, ErrForbidden},
		{"personal group to split", personal, "A", models.ModeSplit, ErrPreconditionFailed},
		{"personal group stays contribution", personal, "A", models.ModeContribution, nil},
		{"stranger on personal group", personal, "B", models.ModeSplit, ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckModeChange(tt.group, tt.caller, tt.mode)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestCheckLeave(t *testing.T) {
	shared := &models.Group{ID: "g", Type: models.GroupTypeShared, Members: []string{"A", "B"}}
	solo := &models.Group{ID: "s", Type: models.GroupTypeShared, Members: []string{"A"}}
	personal := &models.Group{ID: "p", Type: models.GroupTypePersonal, Members: []string{"A"}}

	assert.NoError(t, CheckLeave(shared, "B"))
	assert.True(t, errors.Is(CheckLeave(shared, "Z"), ErrForbidden))
	assert.True(t, errors.Is(CheckLeave(solo, "A"), ErrPreconditionFailed))
	assert.True(t, errors.Is(CheckLeave(personal, "A"), ErrPreconditionFailed))
}
