package service

import (
	"context"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/events"
	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/pkg/api"
)

// SettlementService implements the Connect SettlementService.
type SettlementService struct {
	store  storage.Store
	engine *ledger.Engine
	hooks  LedgerHooks
}

// NewSettlementService creates a new SettlementService. publisher and recorder may be nil.
func NewSettlementService(store storage.Store, engine *ledger.Engine, publisher events.Publisher, recorder EntryRecorder) *SettlementService {
	return &SettlementService{
		store:  store,
		engine: engine,
		hooks:  NewLedgerHooks(publisher, recorder),
	}
}

// RecordSettlement records a payment between two members of a group. The
// payer defaults to the caller.
func (s *SettlementService) RecordSettlement(ctx context.Context, req *connect.Request[api.RecordSettlementRequest]) (*connect.Response[api.RecordSettlementResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("RecordSettlement request received",
		"group_id", req.Msg.GroupID,
		"payee_id", req.Msg.PayeeID,
		"amount", req.Msg.Amount,
		"currency", req.Msg.Currency,
	)

	payerID := req.Msg.PayerID
	if payerID == "" {
		payerID = userID
	}
	if payerID != userID {
		// Recording on someone else's behalf still requires membership.
		if _, err := memberGroup(ctx, s.store, req.Msg.GroupID, userID); err != nil {
			return nil, fail("RecordSettlement", err, "group_id", req.Msg.GroupID)
		}
	}

	settlement, err := s.engine.RecordSettlement(ctx, ledger.SettlementRequest{
		GroupID:    req.Msg.GroupID,
		PayerID:    payerID,
		PayeeID:    req.Msg.PayeeID,
		Amount:     req.Msg.Amount,
		Currency:   req.Msg.Currency,
		Note:       req.Msg.Note,
		RecordedBy: userID,
	})
	if err != nil {
		return nil, fail("RecordSettlement", err, "group_id", req.Msg.GroupID)
	}
	s.hooks.SettlementRecorded(ctx, settlement)

	slog.Info("Settlement recorded", "settlement_id", settlement.ID, "group_id", settlement.GroupID)
	n := lookupNames(ctx, s.store, []string{settlement.PayerID, settlement.PayeeID})
	return connect.NewResponse(&api.RecordSettlementResponse{Settlement: toAPISettlement(settlement, n)}), nil
}

// ListSettlements lists a group's settlements, newest first.
func (s *SettlementService) ListSettlements(ctx context.Context, req *connect.Request[api.ListSettlementsRequest]) (*connect.Response[api.ListSettlementsResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("ListSettlements request received", "group_id", req.Msg.GroupID)

	if _, err := memberGroup(ctx, s.store, req.Msg.GroupID, userID); err != nil {
		return nil, fail("ListSettlements", err, "group_id", req.Msg.GroupID)
	}
	settlements, err := s.store.ListSettlementsByGroup(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, fail("ListSettlements", err, "group_id", req.Msg.GroupID)
	}

	var ids []string
	for _, st := range settlements {
		ids = append(ids, st.PayerID, st.PayeeID)
	}
	n := lookupNames(ctx, s.store, ids)

	out := make([]*api.Settlement, len(settlements))
	for i, st := range settlements {
		out[i] = toAPISettlement(st, n)
	}
	return connect.NewResponse(&api.ListSettlementsResponse{Settlements: out}), nil
}

// DeleteSettlement removes a settlement. Only the member who recorded it or
// one of its two parties may delete it.
func (s *SettlementService) DeleteSettlement(ctx context.Context, req *connect.Request[api.DeleteSettlementRequest]) (*connect.Response[api.DeleteSettlementResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("DeleteSettlement request received", "settlement_id", req.Msg.SettlementID)

	settlement, err := s.store.GetSettlement(ctx, req.Msg.SettlementID)
	if err != nil {
		return nil, fail("DeleteSettlement", err, "settlement_id", req.Msg.SettlementID)
	}
	if userID != settlement.CreatedBy && userID != settlement.PayerID && userID != settlement.PayeeID {
		return nil, fail("DeleteSettlement", fmt.Errorf("%w: only the parties to a settlement may delete it", ledger.ErrForbidden))
	}
	if err := s.store.DeleteSettlement(ctx, settlement.ID); err != nil {
		return nil, fail("DeleteSettlement", err, "settlement_id", settlement.ID)
	}

	slog.Info("Settlement deleted", "settlement_id", settlement.ID)
	return connect.NewResponse(&api.DeleteSettlementResponse{}), nil
}

// GetBalanceSummary lists what the caller owes and is owed across all of
// their split-mode groups.
func (s *SettlementService) GetBalanceSummary(ctx context.Context, req *connect.Request[api.GetBalanceSummaryRequest]) (*connect.Response[api.GetBalanceSummaryResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("GetBalanceSummary request received", "user_id", userID)

	summary, err := s.engine.UserSummary(ctx, userID)
	if err != nil {
		return nil, fail("GetBalanceSummary", err, "user_id", userID)
	}

	var ids []string
	for _, c := range summary.OwedByUser {
		ids = append(ids, c.UserID)
	}
	for _, c := range summary.OwedToUser {
		ids = append(ids, c.UserID)
	}
	n := lookupNames(ctx, s.store, ids)

	slog.Info("GetBalanceSummary successful",
		"user_id", userID,
		"owes_count", len(summary.OwedByUser),
		"owed_count", len(summary.OwedToUser),
	)
	return connect.NewResponse(&api.GetBalanceSummaryResponse{
		OwedByUser:       toAPICounterparties(summary.OwedByUser, n),
		OwedToUser:       toAPICounterparties(summary.OwedToUser, n),
		TotalsOwedByUser: toAPITotals(summary.TotalsOwedByUser),
		TotalsOwedToUser: toAPITotals(summary.TotalsOwedToUser),
	}), nil
}
