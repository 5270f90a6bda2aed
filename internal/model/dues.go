package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type RecordType string

const (
	RecordTypeDues    RecordType = "DUES"
	RecordTypeExpense RecordType = "EXPENSE"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusPaid    PaymentStatus = "PAID"
	PaymentStatusOverdue PaymentStatus = "OVERDUE"
	PaymentStatusWaived  PaymentStatus = "WAIVED"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusOverdue, PaymentStatusWaived:
		return true
	}
	return false
}

// Terminal statuses are never left once reached.
func (s PaymentStatus) Terminal() bool {
	return s == PaymentStatusPaid || s == PaymentStatusWaived
}

type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodGCash        PaymentMethod = "GCASH"
	PaymentMethodPayMaya      PaymentMethod = "PAYMAYA"
	PaymentMethodCheck        PaymentMethod = "CHECK"
	PaymentMethodCard         PaymentMethod = "CARD"
)

type PaymentDetails struct {
	PaidDate  *Date         `json:"paid_date,omitempty"`
	Method    PaymentMethod `json:"payment_method,omitempty"`
	Reference string        `json:"reference,omitempty"`
	Notes     string        `json:"notes,omitempty"`
}

var (
	ErrTerminalDueStatus      = errors.New("due is already settled")
	ErrPaymentDetailsRequired = errors.New("paid date and payment method are required")
)

type FinancialRecord struct {
	ID              uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	MemberID        uuid.UUID      `json:"member_id" gorm:"type:uuid;index;not null"`
	Member          *Member        `json:"member,omitempty" gorm:"foreignKey:MemberID"`
	Type            RecordType     `json:"type" gorm:"index;not null"`
	Title           string         `json:"title" gorm:"not null"`
	Category        string         `json:"category"`
	Amount          Amount         `json:"amount" gorm:"not null"`
	DueDate         *Date          `json:"due_date,omitempty"`
	TransactionDate Date           `json:"transaction_date" gorm:"index;not null"`
	Status          PaymentStatus  `json:"status" gorm:"index;not null"`
	Payment         PaymentDetails `json:"payment" gorm:"embedded;embeddedPrefix:payment_"`
	RecordedBy      *uuid.UUID     `json:"recorded_by,omitempty" gorm:"type:uuid"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

func (FinancialRecord) TableName() string { return "financial_records" }

// MarkPaid settles an open due. The paid date and method are mandatory.
func (r *FinancialRecord) MarkPaid(details PaymentDetails) error {
	if r.Status.Terminal() {
		return fmt.Errorf("%w: status is %s", ErrTerminalDueStatus, r.Status)
	}
	if details.PaidDate == nil || details.PaidDate.IsZero() || details.Method == "" {
		return ErrPaymentDetailsRequired
	}
	r.Status = PaymentStatusPaid
	r.Payment = details
	return nil
}

func (r *FinancialRecord) Waive() error {
	if r.Status.Terminal() {
		return fmt.Errorf("%w: status is %s", ErrTerminalDueStatus, r.Status)
	}
	r.Status = PaymentStatusWaived
	return nil
}

// IsOverdue reports whether a pending due has passed its due date.
func (r FinancialRecord) IsOverdue(today Date) bool {
	return r.Status == PaymentStatusPending && r.DueDate != nil && r.DueDate.Before(today)
}

type DuesTotals struct {
	Pending Amount `json:"pending"`
	Paid    Amount `json:"paid"`
	Overdue Amount `json:"overdue"`
	Waived  Amount `json:"waived"`
	Total   Amount `json:"total"`
}

func TotalDues(records []FinancialRecord) DuesTotals {
	var totals DuesTotals
	for _, r := range records {
		switch r.Status {
		case PaymentStatusPending:
			totals.Pending += r.Amount
		case PaymentStatusPaid:
			totals.Paid += r.Amount
		case PaymentStatusOverdue:
			totals.Overdue += r.Amount
		case PaymentStatusWaived:
			totals.Waived += r.Amount
		}
		totals.Total += r.Amount
	}
	return totals
}

type DuesFilter struct {
	Status   PaymentStatus
	MemberID uuid.UUID
	Search   string
}

// FilterDues keeps the records matching every set criterion. Search matches the
// title or the member's name without regard to case.
func FilterDues(records []FinancialRecord, f DuesFilter) []FinancialRecord {
	needle := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]FinancialRecord, 0, len(records))
	for _, r := range records {
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		if f.MemberID != uuid.Nil && r.MemberID != f.MemberID {
			continue
		}
		if needle != "" && !matchesDue(r, needle) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func matchesDue(r FinancialRecord, needle string) bool {
	if strings.Contains(strings.ToLower(r.Title), needle) {
		return true
	}
	if r.Member == nil {
		return false
	}
	return strings.Contains(strings.ToLower(r.Member.FullName()), needle) ||
		strings.Contains(strings.ToLower(r.Member.DisplayName()), needle)
}

// ExpenseStatus maps a ledger status onto the member facing request state.
func ExpenseStatus(s PaymentStatus) string {
	switch s {
	case PaymentStatusPaid:
		return "approved"
	case PaymentStatusOverdue, PaymentStatusWaived:
		return "rejected"
	default:
		return "pending"
	}
}
