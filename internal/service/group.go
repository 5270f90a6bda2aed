package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"ministry/internal/model"
	"ministry/internal/repository"
)

type CreateGroupRequest struct {
	Name        string            `json:"name" validate:"required,max=100"`
	ServiceTime model.ServiceTime `json:"service_time" validate:"service_time"`
}

type AddGroupMemberRequest struct {
	MemberID uuid.UUID `json:"member_id" validate:"required"`
}

type GroupView struct {
	ID          uuid.UUID          `json:"id"`
	Name        string             `json:"name"`
	ServiceTime model.ServiceTime  `json:"service_time"`
	Members     []model.MemberView `json:"members"`
	IsMine      bool               `json:"is_mine"`
}

type GroupService struct {
	repo      repository.Repository
	validator Validator
	audit     *AuditService
	logger    *slog.Logger
	clock     Clock
}

func NewGroupService(repo repository.Repository, v Validator, audit *AuditService, logger *slog.Logger, clock Clock) *GroupService {
	return &GroupService{repo: repo, validator: v, audit: audit, logger: logger, clock: clock}
}

func (s *GroupService) view(g model.ServiceGroup, mine uuid.UUID) GroupView {
	now := s.clock.Now()
	members := make([]model.MemberView, 0, len(g.Members))
	isMine := false
	for _, m := range g.Members {
		members = append(members, m.View(now))
		if m.ID == mine {
			isMine = true
		}
	}
	return GroupView{ID: g.ID, Name: g.Name, ServiceTime: g.ServiceTime, Members: members, IsMine: isMine}
}

func (s *GroupService) List(ctx context.Context) ([]GroupView, error) {
	return s.list(ctx, uuid.Nil)
}

func (s *GroupService) list(ctx context.Context, mine uuid.UUID) ([]GroupView, error) {
	groups, err := s.repo.ListGroups(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]GroupView, 0, len(groups))
	for _, g := range groups {
		views = append(views, s.view(g, mine))
	}
	return views, nil
}

func (s *GroupService) Create(ctx context.Context, actor model.Identity, req CreateGroupRequest) (GroupView, error) {
	if err := validate(s.validator, req); err != nil {
		return GroupView{}, err
	}
	group := model.ServiceGroup{Name: strings.TrimSpace(req.Name), ServiceTime: req.ServiceTime}
	if err := s.repo.CreateGroup(ctx, &group); err != nil {
		return GroupView{}, err
	}
	s.audit.Record(ctx, actor, "group.created", map[string]any{"group_id": group.ID})
	return s.view(group, uuid.Nil), nil
}

// Delete removes the group and leaves its members unassigned.
func (s *GroupService) Delete(ctx context.Context, actor model.Identity, id uuid.UUID) error {
	if err := s.repo.DeleteGroup(ctx, id); err != nil {
		return err
	}
	s.audit.Record(ctx, actor, "group.deleted", map[string]any{"group_id": id})
	return nil
}

// AddMember moves the member into the group; any earlier membership ends.
func (s *GroupService) AddMember(ctx context.Context, actor model.Identity, groupID uuid.UUID, req AddGroupMemberRequest) (GroupView, error) {
	if err := validate(s.validator, req); err != nil {
		return GroupView{}, err
	}
	if _, err := s.repo.GetGroup(ctx, groupID); err != nil {
		return GroupView{}, err
	}
	member, err := s.repo.GetMemberByID(ctx, req.MemberID)
	if err != nil {
		return GroupView{}, err
	}
	if !member.IsActive() {
		return GroupView{}, invalid("member %s is inactive", member.ID)
	}
	if err := s.repo.SetMemberGroup(ctx, member.ID, &groupID); err != nil {
		return GroupView{}, err
	}

	s.audit.Record(ctx, actor, "group.member_added", map[string]any{"group_id": groupID, "member_id": member.ID, "previous_group_id": member.GroupID})
	group, err := s.repo.GetGroup(ctx, groupID)
	if err != nil {
		return GroupView{}, err
	}
	return s.view(group, uuid.Nil), nil
}

func (s *GroupService) RemoveMember(ctx context.Context, actor model.Identity, groupID, memberID uuid.UUID) error {
	member, err := s.repo.GetMemberByID(ctx, memberID)
	if err != nil {
		return err
	}
	if member.GroupID == nil || *member.GroupID != groupID {
		return ErrNotInGroup
	}
	if err := s.repo.SetMemberGroup(ctx, memberID, nil); err != nil {
		return err
	}
	s.audit.Record(ctx, actor, "group.member_removed", map[string]any{"group_id": groupID, "member_id": memberID})
	return nil
}

func (s *GroupService) MyGroup(ctx context.Context, caller model.Identity) (GroupView, error) {
	me, err := memberOf(caller)
	if err != nil {
		return GroupView{}, err
	}
	member, err := s.repo.GetMemberByID(ctx, me.ID)
	if err != nil {
		return GroupView{}, err
	}
	if member.GroupID == nil {
		return GroupView{}, ErrNoGroup
	}
	group, err := s.repo.GetGroup(ctx, *member.GroupID)
	if err != nil {
		return GroupView{}, err
	}
	return s.view(group, me.ID), nil
}

// AllForMember lists every group with the caller's own flagged.
func (s *GroupService) AllForMember(ctx context.Context, caller model.Identity) ([]GroupView, error) {
	me, err := memberOf(caller)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, me.ID)
}
