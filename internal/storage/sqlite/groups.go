package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

const (
	inviteCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	inviteCodeLength   = 6
	inviteCodeAttempts = 10
)

func generateInviteCode() string {
	code := make([]byte, inviteCodeLength)
	for i := range code {
		code[i] = inviteCodeAlphabet[rand.IntN(len(inviteCodeAlphabet))]
	}
	return string(code)
}

// CreateGroup persists a new group with its initial members.
func (s *SQLiteStore) CreateGroup(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt == 0 {
		group.CreatedAt = time.Now().Unix()
	}
	if group.Type == "" {
		group.Type = models.GroupTypeShared
	}
	if group.Mode == "" {
		group.Mode = models.ModeSplit
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if group.Type == models.GroupTypeShared && group.InviteCode == "" {
		code, err := uniqueInviteCode(ctx, tx)
		if err != nil {
			return err
		}
		group.InviteCode = code
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO groups (id, name, type, mode, invite_code, created_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		group.ID, group.Name, string(group.Type), string(group.Mode),
		nullable(group.InviteCode), group.CreatedBy, group.CreatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: group %s", storage.ErrConflict, group.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}

	// Members keep the order given; joined_at ties are broken by rowid.
	seen := make(map[string]bool, len(group.Members))
	for _, member := range group.Members {
		if seen[member] {
			continue
		}
		seen[member] = true
		_, err = tx.ExecContext(ctx,
			"INSERT INTO group_members (group_id, user_id, joined_at) VALUES (?, ?, ?)",
			group.ID, member, group.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert group member: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func uniqueInviteCode(ctx context.Context, tx *sql.Tx) (string, error) {
	for i := 0; i < inviteCodeAttempts; i++ {
		code := generateInviteCode()
		var exists int
		err := tx.QueryRowContext(ctx, "SELECT 1 FROM groups WHERE invite_code = ?", code).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return code, nil
		}
		if err != nil {
			return "", fmt.Errorf("failed to check invite code: %w", err)
		}
	}
	return "", fmt.Errorf("failed to generate a unique invite code after %d attempts", inviteCodeAttempts)
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

func loadMembers(ctx context.Context, q querier, groupID string) ([]string, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT user_id FROM group_members WHERE group_id = ? ORDER BY joined_at, rowid",
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get group members: %w", err)
	}
	defer rows.Close()

	var members []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan group member: %w", err)
		}
		members = append(members, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate group members: %w", err)
	}
	return members, nil
}

const groupColumns = "id, name, type, mode, invite_code, created_by, created_at"

func scanGroup(row rowScanner) (*models.Group, error) {
	group := &models.Group{}
	var groupType, mode string
	var inviteCode sql.NullString
	if err := row.Scan(&group.ID, &group.Name, &groupType, &mode, &inviteCode, &group.CreatedBy, &group.CreatedAt); err != nil {
		return nil, err
	}
	group.Type = models.GroupType(groupType)
	group.Mode = models.GroupMode(mode)
	if inviteCode.Valid {
		group.InviteCode = inviteCode.String
	}
	return group, nil
}

func (s *SQLiteStore) getGroupWhere(ctx context.Context, clause string, arg interface{}) (*models.Group, error) {
	group, err := scanGroup(s.db.QueryRowContext(ctx, "SELECT "+groupColumns+" FROM groups WHERE "+clause, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: group %v", storage.ErrNotFound, arg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	group.Members, err = loadMembers(ctx, s.db, group.ID)
	if err != nil {
		return nil, err
	}
	return group, nil
}

// GetGroup retrieves a group and its members by ID.
func (s *SQLiteStore) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	return s.getGroupWhere(ctx, "id = ?", groupID)
}

// GetGroupByInviteCode retrieves a shared group by its invite code.
func (s *SQLiteStore) GetGroupByInviteCode(ctx context.Context, code string) (*models.Group, error) {
	return s.getGroupWhere(ctx, "invite_code = ?", code)
}

// ListGroupsByMember retrieves every group userID belongs to, oldest first.
func (s *SQLiteStore) ListGroupsByMember(ctx context.Context, userID string) ([]*models.Group, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT g.id, g.name, g.type, g.mode, g.invite_code, g.created_by, g.created_at
		 FROM groups g JOIN group_members m ON m.group_id = g.id
		 WHERE m.user_id = ?
		 ORDER BY g.created_at, g.rowid`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups by member: %w", err)
	}

	var groups []*models.Group
	for rows.Next() {
		group, err := scanGroup(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, group)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}

	for _, group := range groups {
		group.Members, err = loadMembers(ctx, s.db, group.ID)
		if err != nil {
			return nil, err
		}
	}
	return groups, nil
}

// AddGroupMember appends userID to the end of the group's member list.
func (s *SQLiteStore) AddGroupMember(ctx context.Context, groupID, userID string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO group_members (group_id, user_id, joined_at) VALUES (?, ?, ?)",
		groupID, userID, time.Now().Unix(),
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s is already a member of group %s", storage.ErrConflict, userID, groupID)
	}
	if err != nil {
		return fmt.Errorf("failed to add group member: %w", err)
	}
	return nil
}

// RemoveGroupMember removes userID from the group. History is left untouched.
func (s *SQLiteStore) RemoveGroupMember(ctx context.Context, groupID, userID string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM group_members WHERE group_id = ? AND user_id = ?",
		groupID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to remove group member: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s is not a member of group %s", storage.ErrNotFound, userID, groupID)
	}
	return nil
}

// UpdateGroupMode switches a group between split and contribution mode.
func (s *SQLiteStore) UpdateGroupMode(ctx context.Context, groupID string, mode models.GroupMode) error {
	res, err := s.db.ExecContext(ctx, "UPDATE groups SET mode = ? WHERE id = ?", string(mode), groupID)
	if err != nil {
		return fmt.Errorf("failed to update group mode: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: group %s", storage.ErrNotFound, groupID)
	}
	return nil
}
