package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"ministry/internal/model"
)

var (
	ErrMemberNotFound          = errors.New("member not found")
	ErrAdminNotFound           = errors.New("admin not found")
	ErrAttendanceNotFound      = errors.New("attendance record not found")
	ErrFinancialRecordNotFound = errors.New("financial record not found")
	ErrEventNotFound           = errors.New("event not found")
	ErrNotificationNotFound    = errors.New("notification not found")
	ErrGroupNotFound           = errors.New("group not found")
	ErrAssignmentNotFound      = errors.New("assignment not found")
	ErrDuplicate               = errors.New("record already exists")
	ErrAdminsExist             = errors.New("an admin already exists")
)

// Repository defines the contract for repository implementations
type Repository interface {
	// Member operations
	CreateMember(ctx context.Context, member *model.Member) error
	GetMemberByID(ctx context.Context, id uuid.UUID) (model.Member, error)
	GetMemberByEmail(ctx context.Context, email string) (model.Member, error)
	GetMemberByUsername(ctx context.Context, username string) (model.Member, error)
	ListMembers(ctx context.Context, query MemberQuery) ([]model.Member, error)
	CountMembers(ctx context.Context, status model.MemberStatus) (int64, error)
	UpdateMember(ctx context.Context, member *model.Member) error
	SetMemberGroup(ctx context.Context, memberID uuid.UUID, groupID *uuid.UUID) error

	// Admin operations
	CreateAdmin(ctx context.Context, admin *model.AdminUser) error
	CreateFirstAdmin(ctx context.Context, admin *model.AdminUser) error
	GetAdminByID(ctx context.Context, id uuid.UUID) (model.AdminUser, error)
	GetAdminByEmail(ctx context.Context, email string) (model.AdminUser, error)
	ListAdmins(ctx context.Context, activeOnly bool) ([]model.AdminUser, error)
	CountAdmins(ctx context.Context) (int64, error)
	RecordLogin(ctx context.Context, role model.Role, id uuid.UUID, at time.Time) error

	// Attendance operations
	UpsertAttendance(ctx context.Context, record *model.AttendanceRecord) error
	ListAttendance(ctx context.Context, query AttendanceQuery) ([]model.AttendanceRecord, error)

	// Financial operations
	CreateFinancialRecords(ctx context.Context, records []model.FinancialRecord) error
	GetFinancialRecord(ctx context.Context, id uuid.UUID) (model.FinancialRecord, error)
	UpdateFinancialRecord(ctx context.Context, record *model.FinancialRecord) error
	ListFinancialRecords(ctx context.Context, query FinancialQuery) ([]model.FinancialRecord, error)
	MarkOverdueDues(ctx context.Context, today model.Date) (int64, error)

	// Event operations
	CreateEvent(ctx context.Context, event *model.MinistryEvent) error
	GetEvent(ctx context.Context, id uuid.UUID) (model.MinistryEvent, error)
	UpdateEvent(ctx context.Context, event *model.MinistryEvent) error
	ListEvents(ctx context.Context, query EventQuery) ([]model.MinistryEvent, error)

	// Notification operations
	CreateNotification(ctx context.Context, notification *model.Notification) error
	GetNotification(ctx context.Context, id uuid.UUID) (model.Notification, error)
	UpdateNotification(ctx context.Context, notification *model.Notification) error
	ListNotifications(ctx context.Context, audience Audience, limit int) ([]model.Notification, error)
	CountUnreadNotifications(ctx context.Context, audience Audience) (int64, error)
	MarkAllNotificationsRead(ctx context.Context, audience Audience, at time.Time) (int64, error)

	// Group operations
	CreateGroup(ctx context.Context, group *model.ServiceGroup) error
	GetGroup(ctx context.Context, id uuid.UUID) (model.ServiceGroup, error)
	ListGroups(ctx context.Context) ([]model.ServiceGroup, error)
	DeleteGroup(ctx context.Context, id uuid.UUID) error

	// Assignment operations
	ListAssignments(ctx context.Context, query AssignmentQuery) ([]model.DutyAssignment, error)
	ReplaceSlotAssignments(ctx context.Context, slot model.DutySlot, memberIDs []uuid.UUID) error
	DeleteAssignment(ctx context.Context, slot model.DutySlot, memberID uuid.UUID) error

	// Audit operations
	CreateAuditEvent(ctx context.Context, event *model.AuditEvent) error

	// Database operations
	HealthCheck(ctx context.Context) error
}

type MemberQuery struct {
	Status model.MemberStatus
}

type AttendanceQuery struct {
	MemberID    uuid.UUID
	EventType   model.EventType
	ServiceTime *model.ServiceTime
	From        model.Date
	To          model.Date
	Limit       int
	NewestFirst bool
}

type FinancialQuery struct {
	Types    []model.RecordType
	MemberID uuid.UUID
	Status   model.PaymentStatus
	From     model.Date
	To       model.Date
	Limit    int
}

type EventQuery struct {
	Year             int
	From             model.Date
	To               model.Date
	IncludeCancelled bool
	// IncludeRecurring also returns recurring events that started on or before To.
	IncludeRecurring bool
	Limit            int
}

type AssignmentQuery struct {
	Year     int
	Month    time.Month
	MemberID uuid.UUID
	Slot     *model.DutySlot
}

// Audience selects the notifications visible to one caller.
type Audience struct {
	SubjectID uuid.UUID
	IsAdmin   bool
}

func AudienceOf(id model.Identity) Audience {
	return Audience{SubjectID: id.SubjectID(), IsAdmin: model.IsAdmin(id)}
}
