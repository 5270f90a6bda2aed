package service_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"ministry/internal/model"
	"ministry/internal/repository"
	"ministry/internal/service"
)

func newDuesService(f *fixture) *service.DuesService {
	return service.NewDuesService(f.repo, f.validator, f.notifier, f.composer, f.audit, nil, f.logger, f.clock)
}

func cash(y int, m time.Month, d int) service.PayDuesRequest {
	return service.PayDuesRequest{PaidDate: datePtr(y, m, d), PaymentMethod: model.PaymentMethodCash}
}

func TestDuesService_CreateAndList(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	dues := newDuesService(f)
	maria := f.member(t, "Santos", "Maria")
	jose := f.member(t, "Cruz", "Jose")
	inactive := f.member(t, "Reyes", "Ana")
	inactive.Status = model.MemberStatusInactive
	require.NoError(t, f.repo.UpdateMember(ctx, &inactive))

	created, err := dues.Create(ctx, f.admin, service.CreateDuesRequest{
		AllMembers: true,
		Title:      "Annual fee",
		Amount:     20000,
		DueDate:    datePtr(2026, time.March, 31),
	})
	require.NoError(t, err)
	require.Len(t, created, 2)
	for _, r := range created {
		assert.NotEqual(t, uuid.Nil, r.ID)
		assert.Equal(t, model.PaymentStatusPending, r.Status)
		assert.NotEqual(t, inactive.ID, r.MemberID)
	}

	_, err = dues.Create(ctx, f.admin, service.CreateDuesRequest{MemberID: &maria.ID, Title: "Polo shirt", Amount: 35050})
	require.NoError(t, err)

	t.Run("requires_a_target", func(t *testing.T) {
		_, err := dues.Create(ctx, f.admin, service.CreateDuesRequest{Title: "Nobody", Amount: 100})
		assert.ErrorIs(t, err, service.ErrInvalidInput)

		_, err = dues.Create(ctx, f.admin, service.CreateDuesRequest{MemberID: &maria.ID, Title: "Free", Amount: 0})
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})

	t.Run("filters_and_totals", func(t *testing.T) {
		all, err := dues.List(ctx, service.DuesQuery{})
		require.NoError(t, err)
		assert.Len(t, all.Records, 3)
		assert.Equal(t, model.Amount(75050), all.Totals.Total)
		assert.Equal(t, all.Totals.Total, all.Totals.Pending+all.Totals.Paid+all.Totals.Overdue+all.Totals.Waived)

		mine, err := dues.List(ctx, service.DuesQuery{MemberID: jose.ID})
		require.NoError(t, err)
		assert.Len(t, mine.Records, 1)

		byName, err := dues.List(ctx, service.DuesQuery{Search: "SANTOS"})
		require.NoError(t, err)
		assert.Len(t, byName.Records, 2)

		byTitle, err := dues.List(ctx, service.DuesQuery{Search: "polo"})
		require.NoError(t, err)
		assert.Len(t, byTitle.Records, 1)

		_, err = dues.List(ctx, service.DuesQuery{Status: "LOST"})
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})
}

func TestDuesService_Transitions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	dues := newDuesService(f)
	maria := f.member(t, "Santos", "Maria")

	create := func(title string) model.FinancialRecord {
		records, err := dues.Create(ctx, f.admin, service.CreateDuesRequest{
			MemberID: &maria.ID, Title: title, Amount: 15050, DueDate: datePtr(2026, time.March, 1),
		})
		require.NoError(t, err)
		return records[0]
	}

	t.Run("pay_requires_details", func(t *testing.T) {
		due := create("January")
		_, err := dues.Pay(ctx, f.admin, due.ID, service.PayDuesRequest{PaymentMethod: model.PaymentMethodGCash})
		assert.ErrorIs(t, err, model.ErrPaymentDetailsRequired)

		_, err = dues.Pay(ctx, f.admin, due.ID, service.PayDuesRequest{PaidDate: datePtr(2026, time.March, 2), PaymentMethod: "BITCOIN"})
		assert.ErrorIs(t, err, service.ErrInvalidInput)

		paid, err := dues.Pay(ctx, f.admin, due.ID, service.PayDuesRequest{
			PaidDate: datePtr(2026, time.March, 2), PaymentMethod: model.PaymentMethodGCash, Reference: "GC-1",
		})
		require.NoError(t, err)
		assert.Equal(t, model.PaymentStatusPaid, paid.Status)
		assert.Equal(t, "GC-1", paid.Payment.Reference)

		_, err = dues.Pay(ctx, f.admin, due.ID, cash(2026, time.March, 3))
		assert.ErrorIs(t, err, model.ErrTerminalDueStatus)
	})

	t.Run("waived_cannot_be_paid", func(t *testing.T) {
		due := create("February")
		waived, err := dues.Waive(ctx, f.admin, due.ID)
		require.NoError(t, err)
		assert.Equal(t, model.PaymentStatusWaived, waived.Status)

		_, err = dues.Pay(ctx, f.admin, due.ID, cash(2026, time.March, 3))
		assert.ErrorIs(t, err, model.ErrTerminalDueStatus)
		_, err = dues.Waive(ctx, f.admin, due.ID)
		assert.ErrorIs(t, err, model.ErrTerminalDueStatus)
	})

	t.Run("overdue_sweep_then_pay", func(t *testing.T) {
		due := create("March")
		swept, err := dues.MarkOverdue(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), swept)

		got, err := f.repo.GetFinancialRecord(ctx, due.ID)
		require.NoError(t, err)
		assert.Equal(t, model.PaymentStatusOverdue, got.Status)

		_, err = dues.Pay(ctx, f.admin, due.ID, cash(2026, time.March, 10))
		assert.NoError(t, err)
	})

	t.Run("missing_record", func(t *testing.T) {
		_, err := dues.Waive(ctx, f.admin, uuid.New())
		assert.ErrorIs(t, err, repository.ErrFinancialRecordNotFound)
	})
}

func TestDuesService_Remind(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	dues := newDuesService(f)
	maria := f.member(t, "Santos", "Maria")

	var first model.FinancialRecord
	for i, amount := range []model.Amount{10000, 5050} {
		records, err := dues.Create(ctx, f.admin, service.CreateDuesRequest{MemberID: &maria.ID, Title: "Dues", Amount: amount})
		require.NoError(t, err)
		if i == 0 {
			first = records[0]
		}
	}

	n, err := dues.Remind(ctx, f.admin, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "You have pending dues of ₱150.50", n.Message)
	assert.Equal(t, model.TargetSpecificMember, n.TargetType)
	require.NotNil(t, n.TargetID)
	assert.Equal(t, maria.ID, *n.TargetID)

	stored, err := f.repo.GetNotification(ctx, n.ID)
	require.NoError(t, err)
	assert.True(t, stored.VisibleTo(maria.Identity()))

	_, err = dues.Waive(ctx, f.admin, first.ID)
	require.NoError(t, err)
	_, err = dues.Remind(ctx, f.admin, first.ID)
	assert.ErrorIs(t, err, model.ErrTerminalDueStatus)
}

func TestDuesService_Report(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	dues := newDuesService(f)
	maria := f.member(t, "Santos", "Maria")
	jose := f.member(t, "Cruz", "Jose")

	pay := func(memberID uuid.UUID, amount model.Amount, paid service.PayDuesRequest) {
		records, err := dues.Create(ctx, f.admin, service.CreateDuesRequest{MemberID: &memberID, Title: "Dues", Amount: amount})
		require.NoError(t, err)
		_, err = dues.Pay(ctx, f.admin, records[0].ID, paid)
		require.NoError(t, err)
	}
	pay(maria.ID, 10000, cash(2026, time.February, 1))
	pay(maria.ID, 5000, cash(2026, time.January, 5))
	pay(jose.ID, 2500, cash(2026, time.March, 1))
	pay(jose.ID, 9900, cash(2025, time.December, 20))
	_, err := dues.Create(ctx, f.admin, service.CreateDuesRequest{MemberID: &jose.ID, Title: "Unpaid", Amount: 7000})
	require.NoError(t, err)

	report, err := dues.Report(ctx, 2026)
	require.NoError(t, err)
	require.Len(t, report, 2)

	assert.Equal(t, "Cruz, J.", report[0].MemberName)
	assert.Equal(t, model.Amount(2500), report[0].Total)
	require.Len(t, report[0].Payments, 1)

	assert.Equal(t, "Santos, M.", report[1].MemberName)
	assert.Equal(t, model.Amount(15000), report[1].Total)
	require.Len(t, report[1].Payments, 2)
	assert.Equal(t, "2026-01-05", report[1].Payments[0].Date.String())

	t.Run("workbook", func(t *testing.T) {
		data, err := dues.ReportWorkbook(ctx, 2026)
		require.NoError(t, err)

		book, err := excelize.OpenReader(bytes.NewReader(data))
		require.NoError(t, err)
		defer func() { _ = book.Close() }()

		rows, err := book.GetRows("Dues 2026")
		require.NoError(t, err)
		require.Len(t, rows, 5)
		assert.Equal(t, []string{"Member", "Date", "Amount"}, rows[0])
		assert.Equal(t, []string{"Cruz, J.", "2026-03-01", "25"}, rows[1])
		assert.Equal(t, "Total", rows[4][0])
		assert.Equal(t, "175", rows[4][2])
	})
}

func TestDuesService_MemberExpenses(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	dues := newDuesService(f)
	maria := f.member(t, "Santos", "Maria")
	jose := f.member(t, "Cruz", "Jose")

	view, err := dues.SubmitExpense(ctx, maria.Identity(), service.ExpenseRequest{Description: "Candles", Amount: 12000})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, view.ID)
	assert.Equal(t, "General", view.Category)
	assert.Equal(t, "pending", view.Status)
	assert.Equal(t, model.RecordTypeExpense, view.Type)

	records, err := dues.Create(ctx, f.admin, service.CreateDuesRequest{MemberID: &maria.ID, Title: "Dues", Amount: 5000})
	require.NoError(t, err)
	_, err = dues.Pay(ctx, f.admin, records[0].ID, cash(2026, time.March, 9))
	require.NoError(t, err)

	mine, err := dues.Expenses(ctx, maria.Identity())
	require.NoError(t, err)
	require.Len(t, mine, 2)
	statuses := []string{mine[0].Status, mine[1].Status}
	assert.ElementsMatch(t, []string{"pending", "approved"}, statuses)

	theirs, err := dues.Expenses(ctx, jose.Identity())
	require.NoError(t, err)
	assert.Empty(t, theirs)

	_, err = dues.SubmitExpense(ctx, f.admin, service.ExpenseRequest{Description: "Admin", Amount: 100})
	assert.ErrorIs(t, err, service.ErrForbidden)
}
