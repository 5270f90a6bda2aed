package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ministry/internal/model"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTooManyAttempts    = errors.New("too many attempts")
	ErrRegistrationClosed = errors.New("registration closed")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrForbidden          = errors.New("forbidden")
	ErrNotConfigured      = errors.New("feature not configured")
	ErrPhotoNotFound      = errors.New("photo not found")
	ErrNoGroup            = errors.New("member has no group")
	ErrNotInGroup         = errors.New("member is not in this group")
	ErrInvalidSignature   = errors.New("invalid webhook signature")
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// Validator checks request structs; see internal/validator.
type Validator interface {
	Validate(i any) error
}

func validate(v Validator, req any) error {
	if err := v.Validate(req); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}
	return nil
}

// Clock reads the current time in the parish timezone.
type Clock struct {
	Location *time.Location
	now      func() time.Time
}

func NewClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return Clock{Location: loc, now: time.Now}
}

// FixedClock always reports t. Used by tests and the seed command.
func FixedClock(t time.Time) Clock {
	return Clock{Location: t.Location(), now: func() time.Time { return t }}
}

func (c Clock) Now() time.Time {
	if c.now == nil {
		return time.Now().In(c.location())
	}
	return c.now().In(c.location())
}

func (c Clock) Today() model.Date {
	return model.DateOf(c.Now())
}

func (c Clock) location() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}

// memberOf narrows the caller to a member identity. Member-only views reject admins.
func memberOf(id model.Identity) (model.MemberIdentity, error) {
	member, ok := id.(model.MemberIdentity)
	if !ok {
		return model.MemberIdentity{}, fmt.Errorf("%w: member account required", ErrForbidden)
	}
	return member, nil
}

func actorID(id model.Identity) *uuid.UUID {
	if id == nil {
		return nil
	}
	subject := id.SubjectID()
	return &subject
}
