package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// Source supplies the records balances are computed from.
// GetGroup must return an error wrapping storage.ErrNotFound for unknown groups.
type Source interface {
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)
	ListGroupsByMember(ctx context.Context, userID string) ([]*models.Group, error)
	ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error)
	ListSettlementsByGroup(ctx context.Context, groupID string) ([]*models.Settlement, error)
	CreateSettlement(ctx context.Context, settlement *models.Settlement) error
}

// DefaultSummaryConcurrency bounds how many groups UserSummary reads at once.
const DefaultSummaryConcurrency = 4

// Engine answers balance queries and records settlements. It keeps no state
// between calls; every query re-reads the Source.
type Engine struct {
	source      Source
	concurrency int
	now         func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithSummaryConcurrency sets how many groups UserSummary loads in parallel.
func WithSummaryConcurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// WithClock overrides the settlement timestamp source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates an Engine reading from source.
func NewEngine(source Source, opts ...Option) *Engine {
	e := &Engine{
		source:      source,
		concurrency: DefaultSummaryConcurrency,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// GroupBalances is the result of a balance query for one group.
type GroupBalances struct {
	Group   *models.Group
	Members []MemberBalance
	Debts   []DebtEdge // empty unless the group is in split mode
}

// GroupBalances computes every member's balance in groupID and, for split
// groups, the transfers that would settle them.
func (e *Engine) GroupBalances(ctx context.Context, groupID string) (*GroupBalances, error) {
	group, err := e.loadGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	members, err := e.aggregate(ctx, group)
	if err != nil {
		return nil, err
	}

	result := &GroupBalances{Group: group, Members: members, Debts: []DebtEdge{}}
	if !group.IsPersonal() && EmitsDebts(group.Mode) {
		result.Debts = SimplifyAll(members)
	}
	return result, nil
}

// SettlementRequest describes a payment between two members.
type SettlementRequest struct {
	GroupID    string
	PayerID    string
	PayeeID    string
	Amount     float64
	Currency   string
	Note       string
	RecordedBy string
}

// RecordSettlement validates req and appends it to the group's history. The
// effect on balances shows up on the next query. Paying more than is owed is
// allowed and flips the balance.
func (e *Engine) RecordSettlement(ctx context.Context, req SettlementRequest) (*models.Settlement, error) {
	group, err := e.loadGroup(ctx, req.GroupID)
	if err != nil {
		return nil, err
	}
	if !group.HasMember(req.PayerID) {
		return nil, fmt.Errorf("%w: payer %s is not a member of group %s", ErrForbidden, req.PayerID, group.ID)
	}
	if !group.HasMember(req.PayeeID) {
		return nil, fmt.Errorf("%w: payee %s is not a member of group %s", ErrForbidden, req.PayeeID, group.ID)
	}
	if req.PayerID == req.PayeeID {
		return nil, fmt.Errorf("%w: cannot settle with yourself", ErrInvalidArgument)
	}
	if !(req.Amount > 0) || math.IsInf(req.Amount, 0) {
		return nil, fmt.Errorf("%w: settlement amount must be positive, got %v", ErrInvalidArgument, req.Amount)
	}
	currency, err := models.ParseCurrency(req.Currency)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	recordedBy := req.RecordedBy
	if recordedBy == "" {
		recordedBy = req.PayerID
	}

	settlement := &models.Settlement{
		ID:        uuid.New().String(),
		GroupID:   group.ID,
		PayerID:   req.PayerID,
		PayeeID:   req.PayeeID,
		Amount:    req.Amount,
		Currency:  currency,
		Note:      req.Note,
		CreatedBy: recordedBy,
		CreatedAt: e.now().Unix(),
	}
	if err := e.source.CreateSettlement(ctx, settlement); err != nil {
		return nil, fmt.Errorf("failed to record settlement: %w", err)
	}
	return settlement, nil
}

// UserSummary lists what userID owes and is owed across every split-mode group
// they belong to. Contribution-mode groups and groups with fewer than two
// members are skipped.
func (e *Engine) UserSummary(ctx context.Context, userID string) (*Summary, error) {
	groups, err := e.source.ListGroupsByMember(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups for %s: %w", userID, err)
	}

	var eligible []*models.Group
	for _, g := range groups {
		if g.IsPersonal() || !EmitsDebts(g.Mode) || len(g.Members) < 2 || !g.HasMember(userID) {
			slog.Debug("UserSummary skipping group", "group_id", g.ID, "mode", g.Mode, "members_count", len(g.Members))
			continue
		}
		eligible = append(eligible, g)
	}

	type partial struct {
		owes, owed []Counterparty
	}
	parts := make([]partial, len(eligible))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(e.concurrency)
	for i, group := range eligible {
		eg.Go(func() error {
			balances, err := e.aggregate(egCtx, group)
			if err != nil {
				return err
			}
			owes, owed := SummarizeMember(userID, group, balances)
			parts[i] = partial{owes: owes, owed: owed}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	summary := newSummary()
	for _, p := range parts {
		summary.add(p.owes, p.owed)
	}
	return summary, nil
}

func (e *Engine) loadGroup(ctx context.Context, groupID string) (*models.Group, error) {
	if groupID == "" {
		return nil, fmt.Errorf("%w: group_id required", ErrInvalidArgument)
	}
	group, err := e.source.GetGroup(ctx, groupID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: group %s", ErrNotFound, groupID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	return group, nil
}

func (e *Engine) aggregate(ctx context.Context, group *models.Group) ([]MemberBalance, error) {
	expenses, err := e.source.ListExpensesByGroup(ctx, group.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses for group %s: %w", group.ID, err)
	}
	settlements, err := e.source.ListSettlementsByGroup(ctx, group.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements for group %s: %w", group.ID, err)
	}
	return Aggregate(group.Members, expenses, settlements)
}
