package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ministry/internal/model"
)

type DatabaseRepository struct {
	db *gorm.DB
}

func NewDatabaseRepository(db *gorm.DB) *DatabaseRepository {
	return &DatabaseRepository{db: db}
}

func wrap(err error, msg string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%s: %w", msg, ErrDuplicate)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func notFound(err error, sentinel error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func (r *DatabaseRepository) CreateMember(ctx context.Context, member *model.Member) error {
	if member.ID == uuid.Nil {
		member.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(member).Error; err != nil {
		return wrap(err, "failed to create member")
	}
	return nil
}

func (r *DatabaseRepository) GetMemberByID(ctx context.Context, id uuid.UUID) (model.Member, error) {
	var member model.Member
	if err := r.db.WithContext(ctx).First(&member, "id = ?", id).Error; err != nil {
		return member, notFound(err, ErrMemberNotFound, "failed to get member")
	}
	return member, nil
}

func (r *DatabaseRepository) GetMemberByEmail(ctx context.Context, email string) (model.Member, error) {
	var member model.Member
	if err := r.db.WithContext(ctx).First(&member, "email = ?", email).Error; err != nil {
		return member, notFound(err, ErrMemberNotFound, "failed to get member by email")
	}
	return member, nil
}

func (r *DatabaseRepository) GetMemberByUsername(ctx context.Context, username string) (model.Member, error) {
	var member model.Member
	if err := r.db.WithContext(ctx).First(&member, "username = ?", username).Error; err != nil {
		return member, notFound(err, ErrMemberNotFound, "failed to get member by username")
	}
	return member, nil
}

func (r *DatabaseRepository) ListMembers(ctx context.Context, query MemberQuery) ([]model.Member, error) {
	var members []model.Member
	tx := r.db.WithContext(ctx).Model(&model.Member{})
	if query.Status != "" {
		tx = tx.Where("status = ?", query.Status)
	}
	if err := tx.Order("surname ASC, given_name ASC").Find(&members).Error; err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return members, nil
}

func (r *DatabaseRepository) CountMembers(ctx context.Context, status model.MemberStatus) (int64, error) {
	var count int64
	tx := r.db.WithContext(ctx).Model(&model.Member{})
	if status != "" {
		tx = tx.Where("status = ?", status)
	}
	if err := tx.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count members: %w", err)
	}
	return count, nil
}

func (r *DatabaseRepository) UpdateMember(ctx context.Context, member *model.Member) error {
	if err := r.db.WithContext(ctx).Save(member).Error; err != nil {
		return wrap(err, "failed to update member")
	}
	return nil
}

func (r *DatabaseRepository) SetMemberGroup(ctx context.Context, memberID uuid.UUID, groupID *uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&model.Member{}).Where("id = ?", memberID).Update("group_id", groupID)
	if res.Error != nil {
		return fmt.Errorf("failed to set member group: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrMemberNotFound
	}
	return nil
}

func (r *DatabaseRepository) CreateAdmin(ctx context.Context, admin *model.AdminUser) error {
	if admin.ID == uuid.Nil {
		admin.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(admin).Error; err != nil {
		return wrap(err, "failed to create admin")
	}
	return nil
}

// firstAdminLock keys the advisory lock serializing first-admin registration.
const firstAdminLock int64 = 7_100_001

// CreateFirstAdmin inserts admin only while no admin exists. On Postgres the
// count and insert run under a transaction-scoped advisory lock.
func (r *DatabaseRepository) CreateFirstAdmin(ctx context.Context, admin *model.AdminUser) error {
	if admin.ID == uuid.Nil {
		admin.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if tx.Dialector.Name() == "postgres" {
			if err := tx.Exec("SELECT pg_advisory_xact_lock(?)", firstAdminLock).Error; err != nil {
				return fmt.Errorf("failed to lock admin registration: %w", err)
			}
		}
		var count int64
		if err := tx.Model(&model.AdminUser{}).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to count admins: %w", err)
		}
		if count > 0 {
			return ErrAdminsExist
		}
		if err := tx.Create(admin).Error; err != nil {
			return wrap(err, "failed to create admin")
		}
		return nil
	})
}

func (r *DatabaseRepository) GetAdminByID(ctx context.Context, id uuid.UUID) (model.AdminUser, error) {
	var admin model.AdminUser
	if err := r.db.WithContext(ctx).First(&admin, "id = ?", id).Error; err != nil {
		return admin, notFound(err, ErrAdminNotFound, "failed to get admin")
	}
	return admin, nil
}

func (r *DatabaseRepository) GetAdminByEmail(ctx context.Context, email string) (model.AdminUser, error) {
	var admin model.AdminUser
	if err := r.db.WithContext(ctx).First(&admin, "email = ?", email).Error; err != nil {
		return admin, notFound(err, ErrAdminNotFound, "failed to get admin by email")
	}
	return admin, nil
}

func (r *DatabaseRepository) ListAdmins(ctx context.Context, activeOnly bool) ([]model.AdminUser, error) {
	var admins []model.AdminUser
	tx := r.db.WithContext(ctx).Model(&model.AdminUser{})
	if activeOnly {
		tx = tx.Where("is_active = ?", true)
	}
	if err := tx.Order("name ASC").Find(&admins).Error; err != nil {
		return nil, fmt.Errorf("failed to list admins: %w", err)
	}
	return admins, nil
}

func (r *DatabaseRepository) CountAdmins(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.AdminUser{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count admins: %w", err)
	}
	return count, nil
}

func (r *DatabaseRepository) RecordLogin(ctx context.Context, role model.Role, id uuid.UUID, at time.Time) error {
	var target any
	switch role {
	case model.RoleAdmin:
		target = &model.AdminUser{}
	case model.RoleMember:
		target = &model.Member{}
	default:
		return fmt.Errorf("unknown role %q", role)
	}
	if err := r.db.WithContext(ctx).Model(target).Where("id = ?", id).Update("last_login_at", at).Error; err != nil {
		return fmt.Errorf("failed to record login: %w", err)
	}
	return nil
}

// UpsertAttendance writes the record for its member, event type, date and
// service time, replacing the status and notes of an existing row.
func (r *DatabaseRepository) UpsertAttendance(ctx context.Context, record *model.AttendanceRecord) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.AttendanceRecord
		err := tx.Where("member_id = ? AND event_type = ? AND event_date = ? AND service_time = ?",
			record.MemberID, record.EventType, record.EventDate, record.ServiceTime).
			First(&existing).Error
		switch {
		case err == nil:
			record.ID = existing.ID
			record.CreatedAt = existing.CreatedAt
			return tx.Omit(clause.Associations).Save(record).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			if record.ID == uuid.Nil {
				record.ID = uuid.New()
			}
			return tx.Omit(clause.Associations).Create(record).Error
		default:
			return err
		}
	})
	if err != nil {
		return wrap(err, "failed to upsert attendance")
	}
	return nil
}

func (r *DatabaseRepository) ListAttendance(ctx context.Context, query AttendanceQuery) ([]model.AttendanceRecord, error) {
	var records []model.AttendanceRecord
	tx := r.db.WithContext(ctx).Model(&model.AttendanceRecord{}).Preload("Member")
	if query.MemberID != uuid.Nil {
		tx = tx.Where("member_id = ?", query.MemberID)
	}
	if query.EventType != "" {
		tx = tx.Where("event_type = ?", query.EventType)
	}
	if query.ServiceTime != nil {
		tx = tx.Where("service_time = ?", *query.ServiceTime)
	}
	if !query.From.IsZero() {
		tx = tx.Where("event_date >= ?", query.From)
	}
	if !query.To.IsZero() {
		tx = tx.Where("event_date <= ?", query.To)
	}
	if query.NewestFirst {
		tx = tx.Order("event_date DESC")
	} else {
		tx = tx.Order("event_date ASC")
	}
	if query.Limit > 0 {
		tx = tx.Limit(query.Limit)
	}
	if err := tx.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}
	return records, nil
}

func (r *DatabaseRepository) CreateFinancialRecords(ctx context.Context, records []model.FinancialRecord) error {
	if len(records) == 0 {
		return nil
	}
	for i := range records {
		if records[i].ID == uuid.Nil {
			records[i].ID = uuid.New()
		}
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&records).Error; err != nil {
		return wrap(err, "failed to create financial records")
	}
	return nil
}

func (r *DatabaseRepository) GetFinancialRecord(ctx context.Context, id uuid.UUID) (model.FinancialRecord, error) {
	var record model.FinancialRecord
	if err := r.db.WithContext(ctx).Preload("Member").First(&record, "id = ?", id).Error; err != nil {
		return record, notFound(err, ErrFinancialRecordNotFound, "failed to get financial record")
	}
	return record, nil
}

func (r *DatabaseRepository) UpdateFinancialRecord(ctx context.Context, record *model.FinancialRecord) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Save(record).Error; err != nil {
		return wrap(err, "failed to update financial record")
	}
	return nil
}

func (r *DatabaseRepository) ListFinancialRecords(ctx context.Context, query FinancialQuery) ([]model.FinancialRecord, error) {
	var records []model.FinancialRecord
	tx := r.db.WithContext(ctx).Model(&model.FinancialRecord{}).Preload("Member")
	if len(query.Types) > 0 {
		tx = tx.Where("type IN ?", query.Types)
	}
	if query.MemberID != uuid.Nil {
		tx = tx.Where("member_id = ?", query.MemberID)
	}
	if query.Status != "" {
		tx = tx.Where("status = ?", query.Status)
	}
	if !query.From.IsZero() {
		tx = tx.Where("transaction_date >= ?", query.From)
	}
	if !query.To.IsZero() {
		tx = tx.Where("transaction_date <= ?", query.To)
	}
	if query.Limit > 0 {
		tx = tx.Limit(query.Limit)
	}
	if err := tx.Order("transaction_date DESC, created_at DESC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list financial records: %w", err)
	}
	return records, nil
}

func (r *DatabaseRepository) MarkOverdueDues(ctx context.Context, today model.Date) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.FinancialRecord{}).
		Where("status = ? AND due_date IS NOT NULL AND due_date < ?", model.PaymentStatusPending, today).
		Update("status", model.PaymentStatusOverdue)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to mark overdue dues: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *DatabaseRepository) CreateEvent(ctx context.Context, event *model.MinistryEvent) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Status == "" {
		event.Status = model.EventStatusScheduled
	}
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return wrap(err, "failed to create event")
	}
	return nil
}

func (r *DatabaseRepository) GetEvent(ctx context.Context, id uuid.UUID) (model.MinistryEvent, error) {
	var event model.MinistryEvent
	if err := r.db.WithContext(ctx).First(&event, "id = ?", id).Error; err != nil {
		return event, notFound(err, ErrEventNotFound, "failed to get event")
	}
	return event, nil
}

func (r *DatabaseRepository) UpdateEvent(ctx context.Context, event *model.MinistryEvent) error {
	if err := r.db.WithContext(ctx).Save(event).Error; err != nil {
		return wrap(err, "failed to update event")
	}
	return nil
}

func (r *DatabaseRepository) ListEvents(ctx context.Context, query EventQuery) ([]model.MinistryEvent, error) {
	var events []model.MinistryEvent
	tx := r.db.WithContext(ctx).Model(&model.MinistryEvent{})
	if query.Year != 0 {
		tx = tx.Where("year = ?", query.Year)
	}
	switch {
	case !query.From.IsZero() && !query.To.IsZero() && query.IncludeRecurring:
		tx = tx.Where("((date >= ? AND date <= ?) OR (recurrence <> '' AND date <= ?))", query.From, query.To, query.To)
	default:
		if !query.From.IsZero() {
			tx = tx.Where("date >= ?", query.From)
		}
		if !query.To.IsZero() {
			tx = tx.Where("date <= ?", query.To)
		}
	}
	if !query.IncludeCancelled {
		tx = tx.Where("status <> ?", model.EventStatusCancelled)
	}
	if query.Limit > 0 {
		tx = tx.Limit(query.Limit)
	}
	if err := tx.Order("date ASC, time ASC").Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

func (r *DatabaseRepository) CreateNotification(ctx context.Context, notification *model.Notification) error {
	if notification.ID == uuid.Nil {
		notification.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(notification).Error; err != nil {
		return wrap(err, "failed to create notification")
	}
	return nil
}

func (r *DatabaseRepository) GetNotification(ctx context.Context, id uuid.UUID) (model.Notification, error) {
	var notification model.Notification
	if err := r.db.WithContext(ctx).First(&notification, "id = ?", id).Error; err != nil {
		return notification, notFound(err, ErrNotificationNotFound, "failed to get notification")
	}
	return notification, nil
}

func (r *DatabaseRepository) UpdateNotification(ctx context.Context, notification *model.Notification) error {
	if err := r.db.WithContext(ctx).Save(notification).Error; err != nil {
		return wrap(err, "failed to update notification")
	}
	return nil
}

func audienceScope(a Audience) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if a.IsAdmin {
			return db.Where("(target_type IN ? OR (target_type = ? AND target_id = ?))",
				[]string{string(model.TargetAllMembers), string(model.TargetAdminsOnly)},
				model.TargetSpecificMember, a.SubjectID)
		}
		return db.Where("(target_type = ? OR (target_type = ? AND target_id = ?))",
			model.TargetAllMembers, model.TargetSpecificMember, a.SubjectID)
	}
}

func (r *DatabaseRepository) ListNotifications(ctx context.Context, audience Audience, limit int) ([]model.Notification, error) {
	var notifications []model.Notification
	tx := r.db.WithContext(ctx).Model(&model.Notification{}).Scopes(audienceScope(audience)).Order("created_at DESC")
	if limit > 0 {
		tx = tx.Limit(limit)
	}
	if err := tx.Find(&notifications).Error; err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

func (r *DatabaseRepository) CountUnreadNotifications(ctx context.Context, audience Audience) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Notification{}).
		Scopes(audienceScope(audience)).
		Where("is_read = ?", false).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

func (r *DatabaseRepository) MarkAllNotificationsRead(ctx context.Context, audience Audience, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Notification{}).
		Scopes(audienceScope(audience)).
		Where("is_read = ?", false).
		Updates(map[string]any{"is_read": true, "read_at": at})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *DatabaseRepository) CreateGroup(ctx context.Context, group *model.ServiceGroup) error {
	if group.ID == uuid.Nil {
		group.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(group).Error; err != nil {
		return wrap(err, "failed to create group")
	}
	return nil
}

func orderedMembers(db *gorm.DB) *gorm.DB {
	return db.Order("surname ASC, given_name ASC")
}

func (r *DatabaseRepository) GetGroup(ctx context.Context, id uuid.UUID) (model.ServiceGroup, error) {
	var group model.ServiceGroup
	if err := r.db.WithContext(ctx).Preload("Members", orderedMembers).First(&group, "id = ?", id).Error; err != nil {
		return group, notFound(err, ErrGroupNotFound, "failed to get group")
	}
	return group, nil
}

func (r *DatabaseRepository) ListGroups(ctx context.Context) ([]model.ServiceGroup, error) {
	var groups []model.ServiceGroup
	if err := r.db.WithContext(ctx).Preload("Members", orderedMembers).Order("name ASC").Find(&groups).Error; err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	return groups, nil
}

func (r *DatabaseRepository) DeleteGroup(ctx context.Context, id uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Member{}).Where("group_id = ?", id).Update("group_id", nil).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.ServiceGroup{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrGroupNotFound
		}
		return nil
	})
	if errors.Is(err, ErrGroupNotFound) {
		return err
	}
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	return nil
}

func slotScope(slot model.DutySlot) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("weekday = ? AND service_time = ? AND month = ? AND year = ?",
			slot.Weekday.String(), slot.ServiceTime, int(slot.Month), slot.Year)
	}
}

func (r *DatabaseRepository) ListAssignments(ctx context.Context, query AssignmentQuery) ([]model.DutyAssignment, error) {
	var assignments []model.DutyAssignment
	tx := r.db.WithContext(ctx).Model(&model.DutyAssignment{}).Preload("Member")
	if query.Slot != nil {
		tx = tx.Scopes(slotScope(*query.Slot))
	} else {
		if query.Year != 0 {
			tx = tx.Where("year = ?", query.Year)
		}
		if query.Month != 0 {
			tx = tx.Where("month = ?", int(query.Month))
		}
	}
	if query.MemberID != uuid.Nil {
		tx = tx.Where("member_id = ?", query.MemberID)
	}
	if err := tx.Order("created_at ASC").Find(&assignments).Error; err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	return assignments, nil
}

func (r *DatabaseRepository) ReplaceSlotAssignments(ctx context.Context, slot model.DutySlot, memberIDs []uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Scopes(slotScope(slot)).Delete(&model.DutyAssignment{}).Error; err != nil {
			return err
		}
		if len(memberIDs) == 0 {
			return nil
		}
		assignments := make([]model.DutyAssignment, 0, len(memberIDs))
		seen := make(map[uuid.UUID]bool, len(memberIDs))
		for _, id := range memberIDs {
			if seen[id] {
				continue
			}
			seen[id] = true
			assignments = append(assignments, model.DutyAssignment{
				ID:          uuid.New(),
				Weekday:     slot.Weekday.String(),
				ServiceTime: slot.ServiceTime,
				Month:       int(slot.Month),
				Year:        slot.Year,
				MemberID:    id,
			})
		}
		return tx.Omit(clause.Associations).Create(&assignments).Error
	})
	if err != nil {
		return wrap(err, "failed to replace slot assignments")
	}
	return nil
}

func (r *DatabaseRepository) DeleteAssignment(ctx context.Context, slot model.DutySlot, memberID uuid.UUID) error {
	res := r.db.WithContext(ctx).Scopes(slotScope(slot)).Where("member_id = ?", memberID).Delete(&model.DutyAssignment{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete assignment: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrAssignmentNotFound
	}
	return nil
}

func (r *DatabaseRepository) CreateAuditEvent(ctx context.Context, event *model.AuditEvent) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("failed to create audit event: %w", err)
	}
	return nil
}

func (r *DatabaseRepository) HealthCheck(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}
