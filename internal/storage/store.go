// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/splitledger/internal/models"
)

// ErrNotFound is wrapped by every lookup that finds no matching record.
var ErrNotFound = errors.New("record not found")

// ErrConflict is wrapped when a write would violate a uniqueness constraint
// (duplicate email, member already in group, invite code collision).
var ErrConflict = errors.New("record already exists")

// Store defines the interface for ledger storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	// CreateUser persists a new user. Returns ErrConflict if the email is taken.
	CreateUser(ctx context.Context, user *models.User) error
	// GetUserByEmail returns ErrNotFound if no user has the email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	// GetUsersByIDs returns the users that exist, keyed by ID.
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)
	// DeleteUser removes a user with no group history. Returns ErrNotFound if absent.
	DeleteUser(ctx context.Context, id string) error

	// CreateGroup persists a group and its initial members.
	// ID, InviteCode (shared groups only) and CreatedAt are populated by the store.
	CreateGroup(ctx context.Context, group *models.Group) error
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)
	GetGroupByInviteCode(ctx context.Context, code string) (*models.Group, error)
	// ListGroupsByMember returns the groups userID belongs to, oldest first.
	ListGroupsByMember(ctx context.Context, userID string) ([]*models.Group, error)
	// AddGroupMember appends userID to the group's member list.
	// Returns ErrConflict if the user is already a member.
	AddGroupMember(ctx context.Context, groupID, userID string) error
	RemoveGroupMember(ctx context.Context, groupID, userID string) error
	UpdateGroupMode(ctx context.Context, groupID string, mode models.GroupMode) error

	// CreateExpense persists a new expense. ID and CreatedAt are populated by the store.
	CreateExpense(ctx context.Context, expense *models.Expense) error
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)
	UpdateExpense(ctx context.Context, expense *models.Expense) error
	DeleteExpense(ctx context.Context, expenseID string) error
	// ListExpensesByGroup returns expenses newest first.
	ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error)

	// CreateSettlement persists a settlement. Settlements are never updated.
	CreateSettlement(ctx context.Context, settlement *models.Settlement) error
	GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error)
	DeleteSettlement(ctx context.Context, settlementID string) error
	// ListSettlementsByGroup returns settlements newest first.
	ListSettlementsByGroup(ctx context.Context, groupID string) ([]*models.Settlement, error)

	// Close releases any resources held by the store.
	Close() error
}
