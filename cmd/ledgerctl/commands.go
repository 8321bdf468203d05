package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"

	"github.com/alecthomas/kong"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/events"
	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/service"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/internal/storage/sqlite"
	"github.com/mmynk/splitledger/pkg/logging"
)

// Globals defines global flags available to all commands.
type Globals struct {
	DB       string `help:"Path to the ledger database." env:"DB_PATH" default:"./data/ledger.db" type:"path"`
	LogLevel string `help:"Log level (debug, info, warn, error)." env:"LOG_LEVEL" default:"warn"`

	AMQPURL      string `name:"amqp-url" help:"Broker to publish ledger events to; events are dropped when empty." env:"AMQP_URL"`
	AMQPExchange string `name:"amqp-exchange" help:"Topic exchange for ledger events." env:"AMQP_EXCHANGE" default:"splitledger"`
}

type CLI struct {
	Globals

	Balances   BalancesCmd   `cmd:"" help:"Show member balances and suggested payments for a group."`
	Summary    SummaryCmd    `cmd:"" help:"Show what a user owes and is owed across their groups."`
	Settle     SettleCmd     `cmd:"" help:"Record a settlement between two group members and publish it when a broker is configured."`
	Currencies CurrenciesCmd `cmd:"" help:"List supported currencies."`
}

// open configures logging and opens the store. The caller closes it.
func (g *Globals) open() (*sqlite.SQLiteStore, error) {
	logging.Setup(g.LogLevel, "text")
	store, err := sqlite.New(g.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", g.DB, err)
	}
	slog.Debug("Opened ledger database", "path", g.DB)
	return store, nil
}

// publisher connects to the configured broker, or drops events when none is set.
func (g *Globals) publisher() (events.Publisher, error) {
	if g.AMQPURL == "" {
		return events.Nop{}, nil
	}
	p, err := events.NewAMQPPublisher(g.AMQPURL, g.AMQPExchange)
	if err != nil {
		return nil, fmt.Errorf("failed to connect event publisher: %w", err)
	}
	return p, nil
}

// resolveUser accepts either an email address or a user ID.
func resolveUser(ctx context.Context, store storage.Store, ref string) (*models.User, error) {
	if strings.Contains(ref, "@") {
		return store.GetUserByEmail(ctx, auth.NormalizeEmail(ref))
	}
	return store.GetUserByID(ctx, ref)
}

// displayNames maps user IDs to display names, falling back to the ID.
func displayNames(ctx context.Context, store storage.Store, ids []string) func(string) string {
	users, err := store.GetUsersByIDs(ctx, ids)
	if err != nil {
		slog.Warn("Display name lookup failed", "error", err)
	}
	return func(id string) string {
		if u, ok := users[id]; ok {
			return u.DisplayName
		}
		return id
	}
}

func money(c models.Currency, d decimal.Decimal) string {
	return c.Symbol() + d.StringFixed(2)
}

type BalancesCmd struct {
	Group string `help:"Group ID." arg:""`
}

func (cmd *BalancesCmd) Run(kctx *kong.Context, globals *Globals) error {
	store, err := globals.open()
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	result, err := ledger.NewEngine(store).GroupBalances(ctx, cmd.Group)
	if err != nil {
		return err
	}

	ids := make([]string, len(result.Members))
	for i, mb := range result.Members {
		ids[i] = mb.MemberID
	}
	name := displayNames(ctx, store, ids)

	w := kctx.Stdout
	_, _ = fmt.Fprintf(w, "%s (%s, %s mode)\n\n", result.Group.Name, result.Group.ID, result.Group.Mode)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "MEMBER\tCURRENCY\tPAID\tSHARE\tNET")
	for _, mb := range result.Members {
		for _, cb := range mb.Currencies {
			_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
				name(mb.MemberID), cb.Currency, cb.Paid.StringFixed(2), cb.Share.StringFixed(2), cb.Net.StringFixed(2))
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if !ledger.EmitsDebts(result.Group.Mode) {
		return nil
	}
	_, _ = fmt.Fprintln(w)
	if len(result.Debts) == 0 {
		_, _ = fmt.Fprintln(w, "All settled up.")
		return nil
	}
	for _, d := range result.Debts {
		_, _ = fmt.Fprintf(w, "%s pays %s %s\n", name(d.From), name(d.To), money(d.Currency, d.Amount))
	}
	return nil
}

type SummaryCmd struct {
	User string `help:"User email or ID." arg:""`
}

func (cmd *SummaryCmd) Run(kctx *kong.Context, globals *Globals) error {
	store, err := globals.open()
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	user, err := resolveUser(ctx, store, cmd.User)
	if err != nil {
		return fmt.Errorf("unknown user %q: %w", cmd.User, err)
	}
	summary, err := ledger.NewEngine(store).UserSummary(ctx, user.ID)
	if err != nil {
		return err
	}

	var ids []string
	for _, c := range summary.OwedByUser {
		ids = append(ids, c.UserID)
	}
	for _, c := range summary.OwedToUser {
		ids = append(ids, c.UserID)
	}
	name := displayNames(ctx, store, ids)

	w := kctx.Stdout
	writeCounterparties(w, "You owe", summary.OwedByUser, summary.TotalsOwedByUser, name)
	_, _ = fmt.Fprintln(w)
	writeCounterparties(w, "You are owed", summary.OwedToUser, summary.TotalsOwedToUser, name)
	return nil
}

func writeCounterparties(w io.Writer, title string, entries []ledger.Counterparty, totals map[models.Currency]decimal.Decimal, name func(string) string) {
	_, _ = fmt.Fprintf(w, "%s:\n", title)
	if len(entries) == 0 {
		_, _ = fmt.Fprintln(w, "  nothing")
		return
	}
	for _, c := range entries {
		_, _ = fmt.Fprintf(w, "  %s  %s (%s)\n", money(c.Currency, c.Amount), name(c.UserID), c.GroupName)
	}
	for _, c := range models.Currencies {
		if total, ok := totals[c]; ok {
			_, _ = fmt.Fprintf(w, "  total %s\n", money(c, total))
		}
	}
}

// SettleCmd publishes settlement.recorded like the server does. RPC metrics
// are only counted by the server process.
type SettleCmd struct {
	Group    string  `help:"Group ID." required:""`
	Payer    string  `help:"Paying member (email or ID)." required:""`
	Payee    string  `help:"Receiving member (email or ID)." required:""`
	Amount   float64 `help:"Amount paid." required:""`
	Currency string  `help:"Currency code." default:"INR"`
	Note     string  `help:"Optional note."`

	publisher events.Publisher // overrides the broker from Globals when set
}

func (cmd *SettleCmd) Run(kctx *kong.Context, globals *Globals) error {
	store, err := globals.open()
	if err != nil {
		return err
	}
	defer store.Close()

	publisher := cmd.publisher
	if publisher == nil {
		if publisher, err = globals.publisher(); err != nil {
			return err
		}
		defer publisher.Close()
	}

	ctx := context.Background()
	payer, err := resolveUser(ctx, store, cmd.Payer)
	if err != nil {
		return fmt.Errorf("unknown payer %q: %w", cmd.Payer, err)
	}
	payee, err := resolveUser(ctx, store, cmd.Payee)
	if err != nil {
		return fmt.Errorf("unknown payee %q: %w", cmd.Payee, err)
	}

	settlement, err := ledger.NewEngine(store).RecordSettlement(ctx, ledger.SettlementRequest{
		GroupID:  cmd.Group,
		PayerID:  payer.ID,
		PayeeID:  payee.ID,
		Amount:   cmd.Amount,
		Currency: cmd.Currency,
		Note:     cmd.Note,
	})
	if err != nil {
		return err
	}

	service.NewLedgerHooks(publisher, nil).SettlementRecorded(ctx, settlement)

	_, _ = fmt.Fprintf(kctx.Stdout, "Recorded %s: %s paid %s %s\n",
		settlement.ID, payer.DisplayName, payee.DisplayName,
		money(settlement.Currency, decimal.NewFromFloat(settlement.Amount)))
	return nil
}

type CurrenciesCmd struct{}

func (cmd *CurrenciesCmd) Run(kctx *kong.Context) error {
	for _, c := range models.Currencies {
		_, _ = fmt.Fprintf(kctx.Stdout, "%s\t%s\n", c, c.Symbol())
	}
	return nil
}
