package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// memSource is an in-memory Source. Groups are listed in insertion order.
type memSource struct {
	mu          sync.Mutex
	groups      []*models.Group
	expenses    map[string][]*models.Expense
	settlements map[string][]*models.Settlement
	failList    error
}

func newMemSource() *memSource {
	return &memSource{
		expenses:    make(map[string][]*models.Expense),
		settlements: make(map[string][]*models.Settlement),
	}
}

func (m *memSource) addGroup(id string, mode models.GroupMode, members ...string) *models.Group {
	g := &models.Group{ID: id, Name: "Group " + id, Type: models.GroupTypeShared, Mode: mode, Members: members}
	m.groups = append(m.groups, g)
	return g
}

func (m *memSource) addExpense(groupID, payer string, amount float64, c models.Currency) {
	m.expenses[groupID] = append(m.expenses[groupID], &models.Expense{
		ID: fmt.Sprintf("e%d", len(m.expenses[groupID])), GroupID: groupID, PayerID: payer, Amount: amount, Currency: c,
	})
}

func (m *memSource) GetGroup(_ context.Context, groupID string) (*models.Group, error) {
	for _, g := range m.groups {
		if g.ID == groupID {
			return g, nil
		}
	}
	return nil, fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
}

func (m *memSource) ListGroupsByMember(_ context.Context, userID string) ([]*models.Group, error) {
	var out []*models.Group
	for _, g := range m.groups {
		if g.HasMember(userID) {
			out = append(out, g)
		}
	}
	return out, nil
}

func (m *memSource) ListExpensesByGroup(_ context.Context, groupID string) ([]*models.Expense, error) {
	if m.failList != nil {
		return nil, m.failList
	}
	return m.expenses[groupID], nil
}

func (m *memSource) ListSettlementsByGroup(_ context.Context, groupID string) ([]*models.Settlement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settlements[groupID], nil
}

func (m *memSource) CreateSettlement(_ context.Context, s *models.Settlement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settlements[s.GroupID] = append(m.settlements[s.GroupID], s)
	return nil
}

func TestEngine_GroupBalances(t *testing.T) {
	ctx := context.Background()
	src := newMemSource()
	src.addGroup("g1", models.ModeSplit, "A", "B", "C")
	src.addExpense("g1", "A", 60, models.INR)
	src.addExpense("g1", "B", 90, models.INR)
	engine := NewEngine(src)

	result, err := engine.GroupBalances(ctx, "g1")
	assert.NoError(t, err)
	assert.Equal(t, "g1", result.Group.ID)
	assert.Equal(t, 3, len(result.Members))
	assert.Equal(t, "10", result.Members[0].In(models.INR).Net.String())
	assert.Equal(t, "40", result.Members[1].In(models.INR).Net.String())
	assert.Equal(t, "-50", result.Members[2].In(models.INR).Net.String())

	assert.Equal(t, 2, len(result.Debts))
	assert.Equal(t, "C", result.Debts[0].From)
	assert.Equal(t, "B", result.Debts[0].To)
	assert.Equal(t, "40", result.Debts[0].Amount.String())
	assert.Equal(t, "A", result.Debts[1].To)
	assert.Equal(t, "10", result.Debts[1].Amount.String())

	again, err := engine.GroupBalances(ctx, "g1")
	assert.NoError(t, err)
	assert.Equal(t, result, again)
}

func TestEngine_GroupBalancesModeGating(t *testing.T) {
	ctx := context.Background()
	src := newMemSource()
	g := src.addGroup("g1", models.ModeContribution, "A", "B")
	src.addExpense("g1", "A", 100, models.USD)
	engine := NewEngine(src)

	result, err := engine.GroupBalances(ctx, "g1")
	assert.NoError(t, err)
	assert.Equal(t, 0, len(result.Debts))
	assert.Equal(t, "50", result.Members[0].In(models.USD).Net.String())

	g.Mode = models.ModeSplit
	result, err = engine.GroupBalances(ctx, "g1")
	assert.NoError(t, err)
	assert.Equal(t, 1, len(result.Debts))
	assert.Equal(t, "50", result.Debts[0].Amount.String())
}

func TestEngine_PersonalGroup(t *testing.T) {
	ctx := context.Background()
	src := newMemSource()
	src.groups = append(src.groups, &models.Group{
		ID: "p1", Type: models.GroupTypePersonal, Mode: models.ModeContribution, Members: []string{"A"},
	})
	src.addExpense("p1", "A", 12.5, models.INR)
	engine := NewEngine(src)

	result, err := engine.GroupBalances(ctx, "p1")
	assert.NoError(t, err)
	assert.Equal(t, 1, len(result.Members))
	assert.Equal(t, "12.5", result.Members[0].In(models.INR).Paid.String())
	assert.True(t, result.Members[0].In(models.INR).Net.IsZero())
	assert.Equal(t, 0, len(result.Debts))
}

func TestEngine_GroupBalancesErrors(t *testing.T) {
	ctx := context.Background()
	src := newMemSource()
	src.addGroup("empty", models.ModeSplit)
	src.addGroup("g1", models.ModeSplit, "A", "B")
	engine := NewEngine(src)

	_, err := engine.GroupBalances(ctx, "missing")
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = engine.GroupBalances(ctx, "")
	assert.True(t, errors.Is(err, ErrInvalidArgument))

	_, err = engine.GroupBalances(ctx, "empty")
	assert.True(t, errors.Is(err, ErrEmptyGroup))

	boom := errors.New("disk on fire")
	src.failList = boom
	_, err = engine.GroupBalances(ctx, "g1")
	assert.True(t, errors.Is(err, boom))
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestEngine_RecordSettlementValidation(t *testing.T) {
	ctx := context.Background()
	src := newMemSource()
	src.addGroup("g1", models.ModeSplit, "A", "B")
	engine := NewEngine(src)

	valid := SettlementRequest{GroupID: "g1", PayerID: "B", PayeeID: "A", Amount: 50, Currency: "INR"}
	tests := []struct {
		name   string
		mutate func(r *SettlementRequest)
		want   error
	}{
		{"unknown group", func(r *SettlementRequest) { r.GroupID = "nope" }, ErrNotFound},
		{"payer not a member", func(r *SettlementRequest) { r.PayerID = "Z" }, ErrForbidden},
		{"payee not a member", func(r *SettlementRequest) { r.PayeeID = "Z" }, ErrForbidden},
		{"outsider paying themselves", func(r *SettlementRequest) { r.PayerID, r.PayeeID = "Z", "Z" }, ErrForbidden},
		{"self settlement", func(r *SettlementRequest) { r.PayeeID = "B" }, ErrInvalidArgument},
		{"zero amount", func(r *SettlementRequest) { r.Amount = 0 }, ErrInvalidArgument},
		{"negative amount", func(r *SettlementRequest) { r.Amount = -5 }, ErrInvalidArgument},
		{"self settlement checked before amount", func(r *SettlementRequest) { r.PayeeID, r.Amount = "B", -1 }, ErrInvalidArgument},
		{"unknown currency", func(r *SettlementRequest) { r.Currency = "EUR" }, ErrInvalidArgument},
		{"bad group wins over bad amount", func(r *SettlementRequest) { r.GroupID, r.Amount = "nope", 0 }, ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			_, err := engine.RecordSettlement(ctx, req)
			assert.True(t, errors.Is(err, tt.want), "got %v, want %v", err, tt.want)
		})
	}
	assert.Equal(t, 0, len(src.settlements["g1"]))
}

func TestEngine_RecordSettlementScenario(t *testing.T) {
	ctx := context.Background()
	src := newMemSource()
	src.addGroup("g1", models.ModeSplit, "A", "B")
	src.addExpense("g1", "A", 100, models.INR)
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	engine := NewEngine(src, WithClock(func() time.Time { return fixed }))

	before, err := engine.GroupBalances(ctx, "g1")
	assert.NoError(t, err)
	assert.Equal(t, 1, len(before.Debts))
	assert.Equal(t, "B", before.Debts[0].From)
	assert.Equal(t, "50", before.Debts[0].Amount.String())

	s, err := engine.RecordSettlement(ctx, SettlementRequest{
		GroupID: "g1", PayerID: "B", PayeeID: "A", Amount: 50, Currency: "inr", Note: "cash",
	})
	assert.NoError(t, err)
	assert.NotZero(t, s.ID)
	assert.Equal(t, models.INR, s.Currency)
	assert.Equal(t, "B", s.CreatedBy)
	assert.Equal(t, fixed.Unix(), s.CreatedAt)
	assert.Equal(t, 1, len(src.settlements["g1"]))

	after, err := engine.GroupBalances(ctx, "g1")
	assert.NoError(t, err)
	assert.True(t, after.Members[0].In(models.INR).Net.IsZero())
	assert.True(t, after.Members[1].In(models.INR).Net.IsZero())
	assert.Equal(t, 0, len(after.Debts))
}

func TestEngine_RecordSettlementOvershootFlipsBalance(t *testing.T) {
	ctx := context.Background()
	src := newMemSource()
	src.addGroup("g1", models.ModeSplit, "A", "B")
	src.addExpense("g1", "A", 100, models.INR)
	engine := NewEngine(src)

	_, err := engine.RecordSettlement(ctx, SettlementRequest{
		GroupID: "g1", PayerID: "B", PayeeID: "A", Amount: 80, Currency: "INR", RecordedBy: "A",
	})
	assert.NoError(t, err)

	result, err := engine.GroupBalances(ctx, "g1")
	assert.NoError(t, err)
	assert.Equal(t, 1, len(result.Debts))
	assert.Equal(t, "A", result.Debts[0].From)
	assert.Equal(t, "B", result.Debts[0].To)
	assert.Equal(t, "30", result.Debts[0].Amount.String())
	assert.Equal(t, "A", src.settlements["g1"][0].CreatedBy)
}

func TestEngine_UserSummary(t *testing.T) {
	ctx := context.Background()
	src := newMemSource()

	src.addGroup("g1", models.ModeSplit, "U", "A", "B")
	src.addExpense("g1", "A", 90, models.INR)

	src.addGroup("g2", models.ModeSplit, "U", "A")
	src.addExpense("g2", "U", 40, models.INR)

	src.addGroup("g3", models.ModeContribution, "U", "A")
	src.addExpense("g3", "A", 100, models.INR)

	src.addGroup("g4", models.ModeSplit, "U")
	src.addExpense("g4", "U", 10, models.INR)

	src.addGroup("g5", models.ModeSplit, "U", "B")
	src.addExpense("g5", "B", 10, models.USD)

	engine := NewEngine(src, WithSummaryConcurrency(2))
	summary, err := engine.UserSummary(ctx, "U")
	assert.NoError(t, err)

	assert.Equal(t, 2, len(summary.OwedByUser))
	assert.Equal(t, "A", summary.OwedByUser[0].UserID)
	assert.Equal(t, "g1", summary.OwedByUser[0].GroupID)
	assert.Equal(t, "Group g1", summary.OwedByUser[0].GroupName)
	assert.Equal(t, "30", summary.OwedByUser[0].Amount.String())
	assert.Equal(t, models.INR, summary.OwedByUser[0].Currency)
	assert.Equal(t, "B", summary.OwedByUser[1].UserID)
	assert.Equal(t, "g5", summary.OwedByUser[1].GroupID)
	assert.Equal(t, "5", summary.OwedByUser[1].Amount.String())
	assert.Equal(t, models.USD, summary.OwedByUser[1].Currency)

	// A is owed money in g1 and owes money in g2; the groups stay separate.
	assert.Equal(t, 1, len(summary.OwedToUser))
	assert.Equal(t, "A", summary.OwedToUser[0].UserID)
	assert.Equal(t, "g2", summary.OwedToUser[0].GroupID)
	assert.Equal(t, "20", summary.OwedToUser[0].Amount.String())

	assert.Equal(t, "30", summary.TotalsOwedByUser[models.INR].String())
	assert.Equal(t, "5", summary.TotalsOwedByUser[models.USD].String())
	assert.Equal(t, "20", summary.TotalsOwedToUser[models.INR].String())
	assert.Equal(t, 1, len(summary.TotalsOwedToUser))
}

func TestEngine_UserSummaryEmpty(t *testing.T) {
	engine := NewEngine(newMemSource())
	summary, err := engine.UserSummary(context.Background(), "nobody")
	assert.NoError(t, err)
	assert.Equal(t, 0, len(summary.OwedByUser))
	assert.Equal(t, 0, len(summary.OwedToUser))
	assert.Equal(t, 0, len(summary.TotalsOwedByUser))
}

func TestEngine_UserSummaryPropagatesErrors(t *testing.T) {
	src := newMemSource()
	src.addGroup("g1", models.ModeSplit, "U", "A")
	boom := errors.New("read failed")
	src.failList = boom

	_, err := NewEngine(src).UserSummary(context.Background(), "U")
	assert.True(t, errors.Is(err, boom))
}
