package model

import (
	"fmt"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleMember Role = "MEMBER"
)

func (r Role) String() string {
	return string(r)
}

func (r *Role) Scan(value any) error {
	switch v := value.(type) {
	case string:
		*r = Role(v)
	case []byte:
		*r = Role(v)
	default:
		return fmt.Errorf("cannot scan %T into Role", value)
	}
	return nil
}

// Identity is the authenticated caller. It is either an AdminIdentity or a
// MemberIdentity; no other implementations exist.
type Identity interface {
	SubjectID() uuid.UUID
	Role() Role
	DisplayName() string
	EmailAddress() string
	isIdentity()
}

type AdminIdentity struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Permissions []string  `json:"permissions"`
}

func (a AdminIdentity) SubjectID() uuid.UUID { return a.ID }
func (a AdminIdentity) Role() Role           { return RoleAdmin }
func (a AdminIdentity) DisplayName() string  { return a.Name }
func (a AdminIdentity) EmailAddress() string { return a.Email }
func (AdminIdentity) isIdentity()            {}

type MemberIdentity struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

func (m MemberIdentity) SubjectID() uuid.UUID { return m.ID }
func (m MemberIdentity) Role() Role           { return RoleMember }
func (m MemberIdentity) DisplayName() string  { return m.Name }
func (m MemberIdentity) EmailAddress() string { return m.Email }
func (MemberIdentity) isIdentity()            {}

func IsAdmin(id Identity) bool {
	_, ok := id.(AdminIdentity)
	return ok
}

// CanAccessMember reports whether the caller may read the given member's records.
func CanAccessMember(id Identity, memberID uuid.UUID) bool {
	switch caller := id.(type) {
	case AdminIdentity:
		return true
	case MemberIdentity:
		return caller.ID == memberID
	default:
		return false
	}
}

// IdentityView is the JSON shape of an identity returned to clients.
type IdentityView struct {
	ID          uuid.UUID `json:"id"`
	Role        Role      `json:"role"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Permissions []string  `json:"permissions,omitempty"`
}

func ViewIdentity(id Identity) IdentityView {
	view := IdentityView{
		ID:    id.SubjectID(),
		Role:  id.Role(),
		Name:  id.DisplayName(),
		Email: id.EmailAddress(),
	}
	if admin, ok := id.(AdminIdentity); ok {
		view.Permissions = admin.Permissions
	}
	return view
}
