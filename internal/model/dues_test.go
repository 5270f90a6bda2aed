package model

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFinancialRecord_Transitions(t *testing.T) {
	paid := NewDate(2026, 3, 1)
	details := PaymentDetails{PaidDate: &paid, Method: PaymentMethodGCash, Reference: "GC-123"}

	tests := []struct {
		name    string
		from    PaymentStatus
		apply   func(r *FinancialRecord) error
		want    PaymentStatus
		wantErr error
	}{
		{"pending to paid", PaymentStatusPending, func(r *FinancialRecord) error { return r.MarkPaid(details) }, PaymentStatusPaid, nil},
		{"overdue to paid", PaymentStatusOverdue, func(r *FinancialRecord) error { return r.MarkPaid(details) }, PaymentStatusPaid, nil},
		{"pending to waived", PaymentStatusPending, func(r *FinancialRecord) error { return r.Waive() }, PaymentStatusWaived, nil},
		{"overdue to waived", PaymentStatusOverdue, func(r *FinancialRecord) error { return r.Waive() }, PaymentStatusWaived, nil},
		{"waived cannot be paid", PaymentStatusWaived, func(r *FinancialRecord) error { return r.MarkPaid(details) }, PaymentStatusWaived, ErrTerminalDueStatus},
		{"paid cannot be waived", PaymentStatusPaid, func(r *FinancialRecord) error { return r.Waive() }, PaymentStatusPaid, ErrTerminalDueStatus},
		{"paid cannot be paid again", PaymentStatusPaid, func(r *FinancialRecord) error { return r.MarkPaid(details) }, PaymentStatusPaid, ErrTerminalDueStatus},
		{"paid needs metadata", PaymentStatusPending, func(r *FinancialRecord) error { return r.MarkPaid(PaymentDetails{}) }, PaymentStatusPending, ErrPaymentDetailsRequired},
		{"paid needs method", PaymentStatusPending, func(r *FinancialRecord) error { return r.MarkPaid(PaymentDetails{PaidDate: &paid}) }, PaymentStatusPending, ErrPaymentDetailsRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &FinancialRecord{Status: tt.from}

			err := tt.apply(r)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, r.Status)
		})
	}
}

func TestFinancialRecord_MarkPaidStoresDetails(t *testing.T) {
	paid := NewDate(2026, 3, 1)
	r := &FinancialRecord{Status: PaymentStatusPending}

	require.NoError(t, r.MarkPaid(PaymentDetails{PaidDate: &paid, Method: PaymentMethodCash, Notes: "collected after mass"}))

	assert.Equal(t, PaymentMethodCash, r.Payment.Method)
	assert.Equal(t, "2026-03-01", r.Payment.PaidDate.String())
	assert.Equal(t, "collected after mass", r.Payment.Notes)
}

func TestTotalDues_PartitionsSumToTotal(t *testing.T) {
	records := []FinancialRecord{
		{Status: PaymentStatusPending, Amount: 10000},
		{Status: PaymentStatusPending, Amount: 2550},
		{Status: PaymentStatusPaid, Amount: 5000},
		{Status: PaymentStatusOverdue, Amount: 7525},
		{Status: PaymentStatusWaived, Amount: 1000},
	}

	totals := TotalDues(records)

	assert.Equal(t, Amount(12550), totals.Pending)
	assert.Equal(t, Amount(5000), totals.Paid)
	assert.Equal(t, Amount(7525), totals.Overdue)
	assert.Equal(t, Amount(1000), totals.Waived)
	assert.Equal(t, totals.Pending+totals.Paid+totals.Overdue+totals.Waived, totals.Total)
	assert.Equal(t, Amount(26075), totals.Total)
}

func TestTotalDues_Empty(t *testing.T) {
	assert.Equal(t, DuesTotals{}, TotalDues(nil))
}

func TestFilterDues(t *testing.T) {
	maria := &Member{ID: uuid.New(), Surname: "Santos", GivenName: "Maria"}
	jose := &Member{ID: uuid.New(), Surname: "Rizal", GivenName: "Jose"}
	records := []FinancialRecord{
		{Title: "January dues", Status: PaymentStatusPending, MemberID: maria.ID, Member: maria},
		{Title: "Retreat fee", Status: PaymentStatusPaid, MemberID: maria.ID, Member: maria},
		{Title: "January dues", Status: PaymentStatusPending, MemberID: jose.ID, Member: jose},
	}

	assert.Len(t, FilterDues(records, DuesFilter{}), 3)
	assert.Len(t, FilterDues(records, DuesFilter{Status: PaymentStatusPending}), 2)
	assert.Len(t, FilterDues(records, DuesFilter{MemberID: maria.ID}), 2)
	assert.Len(t, FilterDues(records, DuesFilter{Search: "retreat"}), 1)
	assert.Len(t, FilterDues(records, DuesFilter{Search: "RIZAL"}), 1)
	assert.Len(t, FilterDues(records, DuesFilter{Search: "santos, m."}), 2)
	assert.Len(t, FilterDues(records, DuesFilter{Search: "january", MemberID: jose.ID}), 1)
	assert.Empty(t, FilterDues(records, DuesFilter{Status: PaymentStatusWaived}))
}

func TestAmountJSON(t *testing.T) {
	var payload struct {
		Amount Amount `json:"amount"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"amount": 150.5}`), &payload))
	assert.Equal(t, Amount(15050), payload.Amount)

	require.NoError(t, json.Unmarshal([]byte(`{"amount": "20"}`), &payload))
	assert.Equal(t, Amount(2000), payload.Amount)

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount": 20.00}`, string(out))
}

func TestExpenseStatus(t *testing.T) {
	assert.Equal(t, "approved", ExpenseStatus(PaymentStatusPaid))
	assert.Equal(t, "pending", ExpenseStatus(PaymentStatusPending))
	assert.Equal(t, "rejected", ExpenseStatus(PaymentStatusOverdue))
	assert.Equal(t, "rejected", ExpenseStatus(PaymentStatusWaived))
}

func TestIsOverdue(t *testing.T) {
	due := NewDate(2026, 1, 31)
	r := FinancialRecord{Status: PaymentStatusPending, DueDate: &due}

	assert.False(t, r.IsOverdue(NewDate(2026, 1, 31)))
	assert.True(t, r.IsOverdue(NewDate(2026, 2, 1)))

	r.Status = PaymentStatusPaid
	assert.False(t, r.IsOverdue(NewDate(2026, 2, 1)))
}
