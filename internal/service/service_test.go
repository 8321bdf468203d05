package service

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/events"
	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/storage/sqlite"
	"github.com/mmynk/splitledger/pkg/api"
	"github.com/mmynk/splitledger/pkg/api/apiconnect"
)

// recordingPublisher keeps every published event in memory.
type recordingPublisher struct {
	mu     sync.Mutex
	events []*events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e *events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type testEnv struct {
	auth        apiconnect.AuthServiceClient
	groups      apiconnect.GroupServiceClient
	expenses    apiconnect.ExpenseServiceClient
	settlements apiconnect.SettlementServiceClient
	publisher   *recordingPublisher
	metrics     *metrics.Metrics
}

// setupTestServer starts every service over a temp SQLite database, with the
// real JWT interceptor in front of the authenticated services.
func setupTestServer(t *testing.T) *testEnv {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "test-*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpFile.Close()

	store, err := sqlite.New(tmpFile.Name())
	if err != nil {
		os.Remove(tmpFile.Name())
		t.Fatalf("failed to create store: %v", err)
	}

	jwtManager := auth.NewJWTManager("test-secret-0123456789", time.Hour)
	engine := ledger.NewEngine(store)
	publisher := &recordingPublisher{}
	m := metrics.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	interceptors := connect.WithInterceptors(
		middleware.LoggingInterceptor(),
		middleware.MetricsInterceptor(m),
		middleware.RequireAuth(jwtManager),
	)

	mux := http.NewServeMux()
	mux.Handle(apiconnect.NewAuthServiceHandler(
		NewAuthService(auth.NewPinAuthenticator(store), jwtManager, store, logger),
	))
	mux.Handle(apiconnect.NewGroupServiceHandler(NewGroupService(store, engine), interceptors))
	mux.Handle(apiconnect.NewExpenseServiceHandler(NewExpenseService(store, publisher, m), interceptors))
	mux.Handle(apiconnect.NewSettlementServiceHandler(NewSettlementService(store, engine, publisher, m), interceptors))

	server := httptest.NewServer(mux)

	t.Cleanup(func() {
		server.Close()
		store.Close()
		os.Remove(tmpFile.Name())
	})

	return &testEnv{
		auth:        apiconnect.NewAuthServiceClient(http.DefaultClient, server.URL),
		groups:      apiconnect.NewGroupServiceClient(http.DefaultClient, server.URL),
		expenses:    apiconnect.NewExpenseServiceClient(http.DefaultClient, server.URL),
		settlements: apiconnect.NewSettlementServiceClient(http.DefaultClient, server.URL),
		publisher:   publisher,
		metrics:     m,
	}
}

// newTestStore opens a fresh SQLite database that is removed after the test.
func newTestStore(t *testing.T) *sqlite.SQLiteStore {
	t.Helper()
	tempDir, err := os.MkdirTemp("", "splitledger-service-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := sqlite.New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// authed wraps msg in a request carrying token.
func authed[T any](token string, msg *T) *connect.Request[T] {
	req := connect.NewRequest(msg)
	req.Header().Set("Authorization", "Bearer "+token)
	return req
}

type testUser struct {
	id    string
	token string
	name  string
}

func (e *testEnv) register(t *testing.T, name string) testUser {
	t.Helper()
	resp, err := e.auth.Register(context.Background(), connect.NewRequest(&api.RegisterRequest{
		Email:       name + "@example.com",
		DisplayName: name,
		Pin:         "1234",
	}))
	if err != nil {
		t.Fatalf("Register(%s) failed: %v", name, err)
	}
	return testUser{id: resp.Msg.User.ID, token: resp.Msg.Token, name: name}
}

// sharedGroup creates a split-mode group owned by owner and joined by others.
func (e *testEnv) sharedGroup(t *testing.T, owner testUser, others ...testUser) *api.Group {
	t.Helper()
	ctx := context.Background()
	resp, err := e.groups.CreateGroup(ctx, authed(owner.token, &api.CreateGroupRequest{Name: "Flat"}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	for _, u := range others {
		if _, err := e.groups.JoinGroup(ctx, authed(u.token, &api.JoinGroupRequest{InviteCode: resp.Msg.Group.InviteCode})); err != nil {
			t.Fatalf("JoinGroup(%s) failed: %v", u.name, err)
		}
	}
	return resp.Msg.Group
}

func (e *testEnv) expense(t *testing.T, payer testUser, groupID string, amount float64, currency string) *api.Expense {
	t.Helper()
	resp, err := e.expenses.CreateExpense(context.Background(), authed(payer.token, &api.CreateExpenseRequest{
		GroupID:     groupID,
		Amount:      amount,
		Currency:    currency,
		Description: "test expense",
	}))
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}
	return resp.Msg.Expense
}

func (e *testEnv) balances(t *testing.T, caller testUser, groupID string) *api.GetGroupBalancesResponse {
	t.Helper()
	resp, err := e.groups.GetGroupBalances(context.Background(), authed(caller.token, &api.GetGroupBalancesRequest{GroupID: groupID}))
	if err != nil {
		t.Fatalf("GetGroupBalances failed: %v", err)
	}
	return resp.Msg
}

func netOf(t *testing.T, resp *api.GetGroupBalancesResponse, userID, currency string) float64 {
	t.Helper()
	for _, mb := range resp.Balances {
		if mb.UserID != userID {
			continue
		}
		for _, cb := range mb.Currencies {
			if cb.Currency == currency {
				return cb.Net
			}
		}
		return 0
	}
	t.Fatalf("no balance row for %s", userID)
	return 0
}

func assertCode(t *testing.T, err error, want connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", want)
	}
	if got := connect.CodeOf(err); got != want {
		t.Errorf("expected code %v, got %v (%v)", want, got, err)
	}
}
