package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"ministry/internal/model"
	"ministry/internal/monitoring"
	"ministry/internal/repository"
	"ministry/internal/session"
)

// PasswordCost is the bcrypt cost for new hashes.
var PasswordCost = bcrypt.DefaultCost

// DefaultAdminPermissions are granted to admins created by registration or the CLI.
var DefaultAdminPermissions = model.StringList{"members", "attendance", "dues", "events", "notifications"}

// comparePassword is swapped in tests to observe bcrypt work on failed lookups.
var comparePassword = bcrypt.CompareHashAndPassword

var (
	dummyHashOnce sync.Once
	dummyHash     []byte
)

// unknownAccountHash is compared against when no account matches, so a miss
// costs the same bcrypt work as a wrong password.
func unknownAccountHash() []byte {
	dummyHashOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("no account matches this email"), PasswordCost)
	})
	return dummyHash
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// AdminGranter records the admin relation outside the database, e.g. in OpenFGA.
type AdminGranter interface {
	GrantParishAdmin(ctx context.Context, adminID uuid.UUID) error
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email,no_disposable_email"`
	Password string `json:"password" validate:"required,password_strength"`
}

type LoginResult struct {
	Token     string             `json:"token"`
	ExpiresAt time.Time          `json:"expires_at"`
	Identity  model.IdentityView `json:"identity"`
}

type AuthService struct {
	repo      repository.Repository
	tokens    *session.Tokens
	limiter   *RateLimiter
	validator Validator
	granter   AdminGranter
	audit     *AuditService
	metrics   *monitoring.Metrics
	logger    *slog.Logger
	clock     Clock
}

func NewAuthService(repo repository.Repository, tokens *session.Tokens, limiter *RateLimiter, v Validator,
	granter AdminGranter, audit *AuditService, metrics *monitoring.Metrics, logger *slog.Logger, clock Clock) *AuthService {
	return &AuthService{
		repo:      repo,
		tokens:    tokens,
		limiter:   limiter,
		validator: v,
		granter:   granter,
		audit:     audit,
		metrics:   metrics,
		logger:    logger,
		clock:     clock,
	}
}

// account is a login candidate before its password is checked.
type account struct {
	identity     model.Identity
	passwordHash string
}

// lookup finds an active admin first, then an active member, by normalized email.
func (s *AuthService) lookup(ctx context.Context, email string) (account, error) {
	admin, err := s.repo.GetAdminByEmail(ctx, email)
	switch {
	case err == nil && admin.IsActive:
		return account{identity: admin.Identity(), passwordHash: admin.PasswordHash}, nil
	case err != nil && !errors.Is(err, repository.ErrAdminNotFound):
		return account{}, err
	}

	member, err := s.repo.GetMemberByEmail(ctx, email)
	switch {
	case err == nil && member.IsActive():
		return account{identity: member.Identity(), passwordHash: member.PasswordHash}, nil
	case err != nil && !errors.Is(err, repository.ErrMemberNotFound):
		return account{}, err
	}

	return account{}, ErrInvalidCredentials
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest, clientIP string) (LoginResult, error) {
	if err := validate(s.validator, req); err != nil {
		return LoginResult{}, err
	}
	email := model.NormalizeEmail(req.Email)

	if err := s.limiter.CheckLogin(ctx, email, clientIP); err != nil {
		if errors.Is(err, ErrTooManyAttempts) {
			s.logger.WarnContext(ctx, "Login rate limited", "email", email, "ip", clientIP)
		}
		return LoginResult{}, err
	}

	acct, err := s.lookup(ctx, email)
	switch {
	case errors.Is(err, ErrInvalidCredentials), err == nil && acct.passwordHash == "":
		_ = comparePassword(unknownAccountHash(), []byte(req.Password))
		err = ErrInvalidCredentials
	case err == nil && comparePassword([]byte(acct.passwordHash), []byte(req.Password)) != nil:
		err = ErrInvalidCredentials
	}
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			s.failedLogin(ctx, email, clientIP)
		}
		return LoginResult{}, err
	}

	if err := s.limiter.ResetAttempts(ctx, email, clientIP); err != nil {
		s.logger.WarnContext(ctx, "Failed to reset login attempts", "error", err)
	}
	return s.complete(ctx, acct.identity)
}

func (s *AuthService) failedLogin(ctx context.Context, email, clientIP string) {
	s.metrics.RecordLogin(ctx, "unknown", false)
	s.logger.InfoContext(ctx, "Failed login", "email", email, "ip", clientIP)
	if err := s.limiter.RecordFailedLogin(ctx, email, clientIP); err != nil {
		s.logger.WarnContext(ctx, "Failed to record login attempt", "error", err)
	}
}

// LoginWithEmail signs in an account whose email was verified elsewhere.
func (s *AuthService) LoginWithEmail(ctx context.Context, email string) (LoginResult, error) {
	acct, err := s.lookup(ctx, model.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			s.metrics.RecordLogin(ctx, "unknown", false)
		}
		return LoginResult{}, err
	}
	return s.complete(ctx, acct.identity)
}

func (s *AuthService) complete(ctx context.Context, id model.Identity) (LoginResult, error) {
	if err := s.repo.RecordLogin(ctx, id.Role(), id.SubjectID(), s.clock.Now()); err != nil {
		s.logger.WarnContext(ctx, "Failed to record last login", "subject", id.SubjectID(), "error", err)
	}

	token, expiresAt, err := s.tokens.Issue(id)
	if err != nil {
		return LoginResult{}, err
	}

	s.metrics.RecordLogin(ctx, id.Role().String(), true)
	s.logger.InfoContext(ctx, "User logged in", "subject", id.SubjectID(), "role", id.Role())
	return LoginResult{Token: token, ExpiresAt: expiresAt, Identity: model.ViewIdentity(id)}, nil
}

func (s *AuthService) RegistrationOpen(ctx context.Context) (bool, error) {
	count, err := s.repo.CountAdmins(ctx)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

// RegisterFirstAdmin creates the initial admin. It is refused once any admin
// exists; the repository checks and inserts atomically.
func (s *AuthService) RegisterFirstAdmin(ctx context.Context, req RegisterRequest) (model.AdminUser, error) {
	if err := validate(s.validator, req); err != nil {
		return model.AdminUser{}, err
	}

	open, err := s.RegistrationOpen(ctx)
	if err != nil {
		return model.AdminUser{}, err
	}
	if !open {
		return model.AdminUser{}, ErrRegistrationClosed
	}

	admin, err := newAdmin(req)
	if err != nil {
		return model.AdminUser{}, err
	}
	if err := s.repo.CreateFirstAdmin(ctx, &admin); err != nil {
		if errors.Is(err, repository.ErrAdminsExist) {
			return model.AdminUser{}, ErrRegistrationClosed
		}
		return model.AdminUser{}, err
	}
	s.adminCreated(ctx, admin)
	s.audit.Record(ctx, admin.Identity(), "admin.registered", map[string]any{"admin_id": admin.ID})
	return admin, nil
}

func newAdmin(req RegisterRequest) (model.AdminUser, error) {
	hash, err := HashPassword(req.Password)
	if err != nil {
		return model.AdminUser{}, err
	}
	return model.AdminUser{
		ID:           uuid.New(),
		Name:         req.Name,
		Email:        model.NormalizeEmail(req.Email),
		PasswordHash: hash,
		Role:         model.RoleAdmin,
		Permissions:  append(model.StringList{}, DefaultAdminPermissions...),
		IsActive:     true,
	}, nil
}

// CreateAdmin stores an active admin with the default permissions.
func (s *AuthService) CreateAdmin(ctx context.Context, req RegisterRequest) (model.AdminUser, error) {
	admin, err := newAdmin(req)
	if err != nil {
		return model.AdminUser{}, err
	}
	if err := s.repo.CreateAdmin(ctx, &admin); err != nil {
		return model.AdminUser{}, err
	}
	s.adminCreated(ctx, admin)
	return admin, nil
}

func (s *AuthService) adminCreated(ctx context.Context, admin model.AdminUser) {
	if s.granter != nil {
		if err := s.granter.GrantParishAdmin(ctx, admin.ID); err != nil {
			s.logger.ErrorContext(ctx, "Failed to grant parish admin relation", "admin_id", admin.ID, "error", err)
		}
	}
	s.logger.InfoContext(ctx, "Admin created", "admin_id", admin.ID)
}

// Resolve verifies a session token and reloads the account it names. Admin
// permissions come from the database, not the token.
func (s *AuthService) Resolve(ctx context.Context, token string) (model.Identity, error) {
	id, err := s.tokens.Parse(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	switch claimed := id.(type) {
	case model.AdminIdentity:
		admin, err := s.repo.GetAdminByID(ctx, claimed.ID)
		if err != nil {
			if errors.Is(err, repository.ErrAdminNotFound) {
				return nil, fmt.Errorf("%w: account no longer exists", ErrUnauthenticated)
			}
			return nil, err
		}
		if !admin.IsActive {
			return nil, fmt.Errorf("%w: account is inactive", ErrUnauthenticated)
		}
		return admin.Identity(), nil
	case model.MemberIdentity:
		member, err := s.repo.GetMemberByID(ctx, claimed.ID)
		if err != nil {
			if errors.Is(err, repository.ErrMemberNotFound) {
				return nil, fmt.Errorf("%w: account no longer exists", ErrUnauthenticated)
			}
			return nil, err
		}
		if !member.IsActive() {
			return nil, fmt.Errorf("%w: account is inactive", ErrUnauthenticated)
		}
		return member.Identity(), nil
	default:
		return nil, ErrUnauthenticated
	}
}
