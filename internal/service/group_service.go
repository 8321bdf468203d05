package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/pkg/api"
)

// GroupService implements the Connect GroupService.
type GroupService struct {
	store  storage.Store
	engine *ledger.Engine
}

// NewGroupService creates a new GroupService backed by store. Balances are
// computed by engine.
func NewGroupService(store storage.Store, engine *ledger.Engine) *GroupService {
	return &GroupService{store: store, engine: engine}
}

func (s *GroupService) groupResponse(ctx context.Context, group *models.Group) *api.Group {
	return toAPIGroup(group, lookupNames(ctx, s.store, group.Members))
}

// CreateGroup creates a shared group with the caller as its only member.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CreateGroup request received", "name", req.Msg.Name, "user_id", userID)

	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, fail("CreateGroup", fmt.Errorf("%w: name required", ledger.ErrInvalidArgument))
	}
	mode := models.ModeSplit
	if req.Msg.Mode != "" {
		if mode, err = models.ParseGroupMode(req.Msg.Mode); err != nil {
			return nil, fail("CreateGroup", fmt.Errorf("%w: %v", ledger.ErrInvalidArgument, err))
		}
	}

	group := &models.Group{
		Name:      name,
		Type:      models.GroupTypeShared,
		Mode:      mode,
		Members:   []string{userID},
		CreatedBy: userID,
	}
	if err := s.store.CreateGroup(ctx, group); err != nil {
		return nil, fail("CreateGroup", err)
	}

	slog.Info("Group created", "group_id", group.ID, "mode", group.Mode)
	return connect.NewResponse(&api.CreateGroupResponse{Group: s.groupResponse(ctx, group)}), nil
}

// GetGroup retrieves a group the caller belongs to.
func (s *GroupService) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("GetGroup request received", "group_id", req.Msg.GroupID)

	group, err := memberGroup(ctx, s.store, req.Msg.GroupID, userID)
	if err != nil {
		return nil, fail("GetGroup", err, "group_id", req.Msg.GroupID)
	}

	return connect.NewResponse(&api.GetGroupResponse{Group: s.groupResponse(ctx, group)}), nil
}

// ListGroups lists the caller's groups, oldest first. The personal group is included.
func (s *GroupService) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("ListGroups request received", "user_id", userID)

	groups, err := s.store.ListGroupsByMember(ctx, userID)
	if err != nil {
		return nil, fail("ListGroups", err)
	}

	var ids []string
	for _, g := range groups {
		ids = append(ids, g.Members...)
	}
	n := lookupNames(ctx, s.store, ids)

	out := make([]*api.Group, len(groups))
	for i, g := range groups {
		out[i] = toAPIGroup(g, n)
	}

	slog.Info("ListGroups successful", "count", len(groups))
	return connect.NewResponse(&api.ListGroupsResponse{Groups: out}), nil
}

// JoinGroup adds the caller to the shared group owning the invite code.
func (s *GroupService) JoinGroup(ctx context.Context, req *connect.Request[api.JoinGroupRequest]) (*connect.Response[api.JoinGroupResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	code := strings.ToUpper(strings.TrimSpace(req.Msg.InviteCode))
	slog.Info("JoinGroup request received", "invite_code", code, "user_id", userID)

	if code == "" {
		return nil, fail("JoinGroup", fmt.Errorf("%w: invite_code required", ledger.ErrInvalidArgument))
	}
	group, err := s.store.GetGroupByInviteCode(ctx, code)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fail("JoinGroup", fmt.Errorf("%w: no group with invite code %s", ledger.ErrNotFound, code))
	}
	if err != nil {
		return nil, fail("JoinGroup", err)
	}

	if err := s.store.AddGroupMember(ctx, group.ID, userID); err != nil {
		return nil, fail("JoinGroup", err, "group_id", group.ID)
	}
	group.Members = append(group.Members, userID)

	slog.Info("Group joined", "group_id", group.ID, "user_id", userID)
	return connect.NewResponse(&api.JoinGroupResponse{Group: s.groupResponse(ctx, group)}), nil
}

// LeaveGroup removes the caller from a shared group. Their past expenses and
// settlements stay in the group's history.
func (s *GroupService) LeaveGroup(ctx context.Context, req *connect.Request[api.LeaveGroupRequest]) (*connect.Response[api.LeaveGroupResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("LeaveGroup request received", "group_id", req.Msg.GroupID, "user_id", userID)

	group, err := memberGroup(ctx, s.store, req.Msg.GroupID, userID)
	if err != nil {
		return nil, fail("LeaveGroup", err, "group_id", req.Msg.GroupID)
	}
	if err := ledger.CheckLeave(group, userID); err != nil {
		return nil, fail("LeaveGroup", err, "group_id", group.ID)
	}
	if err := s.store.RemoveGroupMember(ctx, group.ID, userID); err != nil {
		return nil, fail("LeaveGroup", err, "group_id", group.ID)
	}

	slog.Info("Group left", "group_id", group.ID, "user_id", userID)
	return connect.NewResponse(&api.LeaveGroupResponse{}), nil
}

// SetGroupMode switches a shared group between split and contribution mode.
func (s *GroupService) SetGroupMode(ctx context.Context, req *connect.Request[api.SetGroupModeRequest]) (*connect.Response[api.SetGroupModeResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("SetGroupMode request received", "group_id", req.Msg.GroupID, "mode", req.Msg.Mode)

	mode, err := models.ParseGroupMode(req.Msg.Mode)
	if err != nil {
		return nil, fail("SetGroupMode", fmt.Errorf("%w: %v", ledger.ErrInvalidArgument, err))
	}
	if req.Msg.GroupID == "" {
		return nil, fail("SetGroupMode", fmt.Errorf("%w: group_id required", ledger.ErrInvalidArgument))
	}
	group, err := s.store.GetGroup(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, fail("SetGroupMode", err, "group_id", req.Msg.GroupID)
	}
	if err := ledger.CheckModeChange(group, userID, mode); err != nil {
		return nil, fail("SetGroupMode", err, "group_id", group.ID)
	}

	if group.Mode != mode {
		if err := s.store.UpdateGroupMode(ctx, group.ID, mode); err != nil {
			return nil, fail("SetGroupMode", err, "group_id", group.ID)
		}
		group.Mode = mode
	}

	slog.Info("Group mode set", "group_id", group.ID, "mode", group.Mode)
	return connect.NewResponse(&api.SetGroupModeResponse{Group: s.groupResponse(ctx, group)}), nil
}

// GetGroupBalances returns every member's balance per currency and, in split
// mode, the payments that would settle the group.
func (s *GroupService) GetGroupBalances(ctx context.Context, req *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	groupID := req.Msg.GroupID
	slog.Info("GetGroupBalances request received", "group_id", groupID)

	if _, err := memberGroup(ctx, s.store, groupID, userID); err != nil {
		return nil, fail("GetGroupBalances", err, "group_id", groupID)
	}
	result, err := s.engine.GroupBalances(ctx, groupID)
	if err != nil {
		return nil, fail("GetGroupBalances", err, "group_id", groupID)
	}

	ids := make([]string, len(result.Members))
	for i, mb := range result.Members {
		ids[i] = mb.MemberID
	}
	n := lookupNames(ctx, s.store, ids)

	slog.Info("GetGroupBalances successful",
		"group_id", groupID,
		"mode", result.Group.Mode,
		"members_count", len(result.Members),
		"debts_count", len(result.Debts),
	)

	return connect.NewResponse(&api.GetGroupBalancesResponse{
		GroupID:  result.Group.ID,
		Mode:     string(result.Group.Mode),
		Balances: toAPIBalances(result.Members, n),
		Debts:    toAPIDebts(result.Debts, n),
	}), nil
}
