package model

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

type MemberStatus string

const (
	MemberStatusActive   MemberStatus = "ACTIVE"
	MemberStatusInactive MemberStatus = "INACTIVE"
)

type Member struct {
	ID                uuid.UUID    `json:"id" gorm:"type:uuid;primaryKey"`
	Surname           string       `json:"surname" gorm:"not null"`
	GivenName         string       `json:"given_name" gorm:"not null"`
	MiddleName        string       `json:"middle_name"`
	Birthday          *Date        `json:"birthday"`
	Address           string       `json:"address"`
	ParentContact     string       `json:"parent_contact"`
	Phone             string       `json:"phone"`
	Email             string       `json:"email" gorm:"uniqueIndex;not null"`
	Username          string       `json:"username" gorm:"uniqueIndex;not null"`
	PasswordHash      string       `json:"-"`
	DateOfInvestiture *Date        `json:"date_of_investiture"`
	Status            MemberStatus `json:"status" gorm:"index;not null;default:ACTIVE"`
	GroupID           *uuid.UUID   `json:"group_id,omitempty" gorm:"type:uuid;index"`
	PhotoKey          string       `json:"-"`
	LastLoginAt       *time.Time   `json:"last_login_at,omitempty"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
}

func (Member) TableName() string { return "members" }

func (m Member) IsActive() bool {
	return m.Status == MemberStatusActive
}

// DisplayName renders "Surname, I." using the first letter of the given name.
func (m Member) DisplayName() string {
	return FormatDisplayName(m.Surname, m.GivenName)
}

func (m Member) FullName() string {
	return strings.TrimSpace(m.GivenName + " " + m.Surname)
}

func FormatDisplayName(surname, givenName string) string {
	surname = strings.TrimSpace(surname)
	givenName = strings.TrimSpace(givenName)
	if givenName == "" {
		return surname
	}
	initial, _ := utf8.DecodeRuneInString(givenName)
	if surname == "" {
		return fmt.Sprintf("%c.", initial)
	}
	return fmt.Sprintf("%s, %c.", surname, initial)
}

func (m Member) Identity() MemberIdentity {
	return MemberIdentity{ID: m.ID, Name: m.DisplayName(), Email: m.Email}
}

// MemberView is the member as returned to clients, with service standing derived at read time.
type MemberView struct {
	Member
	DisplayName    string       `json:"display_name"`
	ServiceLevel   ServiceLevel `json:"service_level"`
	YearsOfService int          `json:"years_of_service"`
	HasPhoto       bool         `json:"has_photo"`
}

func (m Member) View(now time.Time) MemberView {
	years := 0
	if m.DateOfInvestiture != nil {
		years = CompletedYears(m.DateOfInvestiture.Time, now)
	}
	return MemberView{
		Member:         m,
		DisplayName:    m.DisplayName(),
		ServiceLevel:   ServiceLevelFor(m.DateOfInvestiture, now),
		YearsOfService: years,
		HasPhoto:       m.PhotoKey != "",
	}
}

type AdminUser struct {
	ID           uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	Name         string     `json:"name" gorm:"not null"`
	Email        string     `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string     `json:"-"`
	Role         Role       `json:"role" gorm:"not null;default:ADMIN"`
	Permissions  StringList `json:"permissions"`
	IsActive     bool       `json:"is_active" gorm:"not null"`
	Birthday     *Date      `json:"birthday,omitempty"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (AdminUser) TableName() string { return "admin_users" }

func (a AdminUser) Identity() AdminIdentity {
	return AdminIdentity{ID: a.ID, Name: a.Name, Email: a.Email, Permissions: []string(a.Permissions)}
}

// NormalizeEmail lower-cases and trims an address before lookups and writes.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
