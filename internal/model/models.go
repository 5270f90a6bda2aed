package model

// All lists every persisted entity in dependency order.
func All() []any {
	return []any{
		&ServiceGroup{},
		&Member{},
		&AdminUser{},
		&AttendanceRecord{},
		&FinancialRecord{},
		&MinistryEvent{},
		&Notification{},
		&DutyAssignment{},
		&AuditEvent{},
	}
}
