package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"ministry/internal/model"
	"ministry/internal/repository"
	"ministry/internal/storage"
)

const MaxPhotoSize = 5 << 20

var photoTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

type CreateMemberRequest struct {
	Surname           string      `json:"surname" validate:"required,max=100"`
	GivenName         string      `json:"given_name" validate:"required,max=100"`
	MiddleName        string      `json:"middle_name" validate:"max=100"`
	Birthday          *model.Date `json:"birthday" validate:"required"`
	Address           string      `json:"address" validate:"required,max=255"`
	ParentContact     string      `json:"parent_contact" validate:"required,max=100"`
	Phone             string      `json:"phone" validate:"max=50"`
	Email             string      `json:"email" validate:"omitempty,email"`
	Username          string      `json:"username" validate:"required,min=3,max=50"`
	Password          string      `json:"password" validate:"required,min=8"`
	DateOfInvestiture *model.Date `json:"date_of_investiture" validate:"required"`
}

type UpdateMemberRequest struct {
	Surname           *string             `json:"surname" validate:"omitempty,min=1,max=100"`
	GivenName         *string             `json:"given_name" validate:"omitempty,min=1,max=100"`
	MiddleName        *string             `json:"middle_name" validate:"omitempty,max=100"`
	Birthday          *model.Date         `json:"birthday"`
	Address           *string             `json:"address" validate:"omitempty,max=255"`
	ParentContact     *string             `json:"parent_contact" validate:"omitempty,max=100"`
	Phone             *string             `json:"phone" validate:"omitempty,max=50"`
	Email             *string             `json:"email" validate:"omitempty,email"`
	Password          *string             `json:"password" validate:"omitempty,min=8"`
	DateOfInvestiture *model.Date         `json:"date_of_investiture"`
	Status            *model.MemberStatus `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE"`
}

type MemberService struct {
	repo        repository.Repository
	storage     storage.Storage
	validator   Validator
	audit       *AuditService
	logger      *slog.Logger
	clock       Clock
	emailDomain string
}

func NewMemberService(repo repository.Repository, store storage.Storage, v Validator, audit *AuditService,
	logger *slog.Logger, clock Clock, emailDomain string) *MemberService {
	return &MemberService{
		repo:        repo,
		storage:     store,
		validator:   v,
		audit:       audit,
		logger:      logger,
		clock:       clock,
		emailDomain: emailDomain,
	}
}

func (s *MemberService) views(members []model.Member) []model.MemberView {
	now := s.clock.Now()
	views := make([]model.MemberView, 0, len(members))
	for _, m := range members {
		views = append(views, m.View(now))
	}
	return views
}

func (s *MemberService) List(ctx context.Context, status model.MemberStatus) ([]model.MemberView, error) {
	if status != "" && status != model.MemberStatusActive && status != model.MemberStatusInactive {
		return nil, invalid("status must be ACTIVE or INACTIVE")
	}
	members, err := s.repo.ListMembers(ctx, repository.MemberQuery{Status: status})
	if err != nil {
		return nil, err
	}
	return s.views(members), nil
}

func (s *MemberService) Create(ctx context.Context, actor model.Identity, req CreateMemberRequest) (model.MemberView, error) {
	if err := validate(s.validator, req); err != nil {
		return model.MemberView{}, err
	}

	username := strings.ToLower(strings.TrimSpace(req.Username))
	email := model.NormalizeEmail(req.Email)
	if email == "" {
		email = fmt.Sprintf("%s@%s", username, s.emailDomain)
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return model.MemberView{}, err
	}

	member := model.Member{
		ID:                uuid.New(),
		Surname:           strings.TrimSpace(req.Surname),
		GivenName:         strings.TrimSpace(req.GivenName),
		MiddleName:        strings.TrimSpace(req.MiddleName),
		Birthday:          req.Birthday,
		Address:           req.Address,
		ParentContact:     req.ParentContact,
		Phone:             req.Phone,
		Email:             email,
		Username:          username,
		PasswordHash:      hash,
		DateOfInvestiture: req.DateOfInvestiture,
		Status:            model.MemberStatusActive,
	}
	if err := s.repo.CreateMember(ctx, &member); err != nil {
		return model.MemberView{}, err
	}

	s.audit.Record(ctx, actor, "member.created", map[string]any{"member_id": member.ID})
	s.logger.InfoContext(ctx, "Member created", "member_id", member.ID)
	return member.View(s.clock.Now()), nil
}

func (s *MemberService) Get(ctx context.Context, caller model.Identity, id uuid.UUID) (model.MemberView, error) {
	if !model.CanAccessMember(caller, id) {
		return model.MemberView{}, ErrForbidden
	}
	member, err := s.repo.GetMemberByID(ctx, id)
	if err != nil {
		return model.MemberView{}, err
	}
	return member.View(s.clock.Now()), nil
}

func (s *MemberService) Profile(ctx context.Context, caller model.Identity) (model.MemberView, error) {
	me, err := memberOf(caller)
	if err != nil {
		return model.MemberView{}, err
	}
	return s.Get(ctx, me, me.ID)
}

func (s *MemberService) Update(ctx context.Context, actor model.Identity, id uuid.UUID, req UpdateMemberRequest) (model.MemberView, error) {
	if err := validate(s.validator, req); err != nil {
		return model.MemberView{}, err
	}

	member, err := s.repo.GetMemberByID(ctx, id)
	if err != nil {
		return model.MemberView{}, err
	}

	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	setString(&member.Surname, req.Surname)
	setString(&member.GivenName, req.GivenName)
	setString(&member.MiddleName, req.MiddleName)
	setString(&member.Address, req.Address)
	setString(&member.ParentContact, req.ParentContact)
	setString(&member.Phone, req.Phone)
	if req.Email != nil {
		member.Email = model.NormalizeEmail(*req.Email)
	}
	if req.Birthday != nil {
		member.Birthday = req.Birthday
	}
	if req.DateOfInvestiture != nil {
		member.DateOfInvestiture = req.DateOfInvestiture
	}
	if req.Status != nil {
		member.Status = *req.Status
	}
	if req.Password != nil {
		hash, err := HashPassword(*req.Password)
		if err != nil {
			return model.MemberView{}, err
		}
		member.PasswordHash = hash
	}

	if err := s.repo.UpdateMember(ctx, &member); err != nil {
		return model.MemberView{}, err
	}

	s.audit.Record(ctx, actor, "member.updated", map[string]any{"member_id": member.ID})
	return member.View(s.clock.Now()), nil
}

// Deactivate flips the member to INACTIVE. Members are never deleted.
func (s *MemberService) Deactivate(ctx context.Context, actor model.Identity, id uuid.UUID) error {
	member, err := s.repo.GetMemberByID(ctx, id)
	if err != nil {
		return err
	}
	if member.Status == model.MemberStatusInactive {
		return nil
	}
	member.Status = model.MemberStatusInactive
	if err := s.repo.UpdateMember(ctx, &member); err != nil {
		return err
	}
	s.audit.Record(ctx, actor, "member.deactivated", map[string]any{"member_id": member.ID})
	s.logger.InfoContext(ctx, "Member deactivated", "member_id", member.ID)
	return nil
}

func photoKey(memberID uuid.UUID, ext string) string {
	return fmt.Sprintf("members/%s/photo%s", memberID, ext)
}

// UploadPhoto replaces the member's photo. Admins may upload for anyone,
// members only for themselves.
func (s *MemberService) UploadPhoto(ctx context.Context, caller model.Identity, id uuid.UUID, filename string, size int64, content io.Reader) (model.MemberView, error) {
	if !model.CanAccessMember(caller, id) {
		return model.MemberView{}, ErrForbidden
	}
	ext := strings.ToLower(filepath.Ext(filename))
	contentType, ok := photoTypes[ext]
	if !ok {
		return model.MemberView{}, invalid("photo must be a jpg, png or webp image")
	}
	if size <= 0 || size > MaxPhotoSize {
		return model.MemberView{}, invalid("photo must be at most %d MB", MaxPhotoSize>>20)
	}

	member, err := s.repo.GetMemberByID(ctx, id)
	if err != nil {
		return model.MemberView{}, err
	}

	key := photoKey(member.ID, ext)
	if err := s.storage.Put(ctx, key, io.LimitReader(content, MaxPhotoSize), contentType); err != nil {
		return model.MemberView{}, err
	}
	previous := member.PhotoKey
	member.PhotoKey = key
	if err := s.repo.UpdateMember(ctx, &member); err != nil {
		return model.MemberView{}, err
	}
	if previous != "" && previous != key {
		if err := s.storage.Delete(ctx, previous); err != nil {
			s.logger.WarnContext(ctx, "Failed to delete previous photo", "key", previous, "error", err)
		}
	}

	s.audit.Record(ctx, caller, "member.photo_uploaded", map[string]any{"member_id": member.ID})
	return member.View(s.clock.Now()), nil
}

func (s *MemberService) Photo(ctx context.Context, caller model.Identity, id uuid.UUID) (io.ReadCloser, storage.FileMetadata, error) {
	if !model.CanAccessMember(caller, id) {
		return nil, storage.FileMetadata{}, ErrForbidden
	}
	member, err := s.repo.GetMemberByID(ctx, id)
	if err != nil {
		return nil, storage.FileMetadata{}, err
	}
	if member.PhotoKey == "" {
		return nil, storage.FileMetadata{}, ErrPhotoNotFound
	}
	rc, meta, err := s.storage.Get(ctx, member.PhotoKey)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, storage.FileMetadata{}, ErrPhotoNotFound
		}
		return nil, storage.FileMetadata{}, err
	}
	return rc, meta, nil
}
