package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"

	"ministry/internal/model"
	"ministry/internal/monitoring"
	"ministry/internal/notifications"
	"ministry/internal/repository"
)

const memberExpenseLimit = 20

type DuesQuery struct {
	Status   model.PaymentStatus
	MemberID uuid.UUID
	Search   string
}

type DuesList struct {
	Records []model.FinancialRecord `json:"records"`
	Totals  model.DuesTotals        `json:"totals"`
}

type CreateDuesRequest struct {
	MemberID   *uuid.UUID   `json:"member_id"`
	AllMembers bool         `json:"all_members"`
	Title      string       `json:"title" validate:"required,max=200"`
	Category   string       `json:"category" validate:"max=100"`
	Amount     model.Amount `json:"amount" validate:"gt=0"`
	DueDate    *model.Date  `json:"due_date"`
	Notes      string       `json:"notes" validate:"max=500"`
}

type PayDuesRequest struct {
	PaidDate      *model.Date         `json:"paid_date"`
	PaymentMethod model.PaymentMethod `json:"payment_method" validate:"required,payment_method"`
	Reference     string              `json:"reference" validate:"max=100"`
	Notes         string              `json:"notes" validate:"max=500"`
}

type ExpenseRequest struct {
	Description string       `json:"description" validate:"required,max=200"`
	Amount      model.Amount `json:"amount" validate:"gt=0"`
	Category    string       `json:"category" validate:"max=100"`
}

// ExpenseView is a member's own ledger entry as a request with a review state.
type ExpenseView struct {
	ID          uuid.UUID        `json:"id"`
	Type        model.RecordType `json:"type"`
	Description string           `json:"description"`
	Category    string           `json:"category"`
	Amount      model.Amount     `json:"amount"`
	Date        model.Date       `json:"date"`
	Status      string           `json:"status"`
}

type DuesPayment struct {
	ID     uuid.UUID    `json:"id"`
	Amount model.Amount `json:"amount"`
	Date   model.Date   `json:"date"`
}

type MemberPayments struct {
	MemberID   uuid.UUID     `json:"member_id"`
	MemberName string        `json:"member_name"`
	Payments   []DuesPayment `json:"payments"`
	Total      model.Amount  `json:"total"`
}

type DuesService struct {
	repo      repository.Repository
	validator Validator
	notifier  *notifications.Notifier
	composer  notifications.Composer
	audit     *AuditService
	metrics   *monitoring.Metrics
	logger    *slog.Logger
	clock     Clock
}

func NewDuesService(repo repository.Repository, v Validator, notifier *notifications.Notifier, composer notifications.Composer,
	audit *AuditService, metrics *monitoring.Metrics, logger *slog.Logger, clock Clock) *DuesService {
	return &DuesService{
		repo:      repo,
		validator: v,
		notifier:  notifier,
		composer:  composer,
		audit:     audit,
		metrics:   metrics,
		logger:    logger,
		clock:     clock,
	}
}

func (s *DuesService) List(ctx context.Context, q DuesQuery) (DuesList, error) {
	if q.Status != "" && !q.Status.Valid() {
		return DuesList{}, invalid("unknown status %q", q.Status)
	}
	records, err := s.repo.ListFinancialRecords(ctx, repository.FinancialQuery{
		Types: []model.RecordType{model.RecordTypeDues},
	})
	if err != nil {
		return DuesList{}, err
	}
	filtered := model.FilterDues(records, model.DuesFilter{Status: q.Status, MemberID: q.MemberID, Search: q.Search})
	return DuesList{Records: filtered, Totals: model.TotalDues(filtered)}, nil
}

// Create adds a pending due for one member, or one per active member when AllMembers is set.
func (s *DuesService) Create(ctx context.Context, actor model.Identity, req CreateDuesRequest) ([]model.FinancialRecord, error) {
	if err := validate(s.validator, req); err != nil {
		return nil, err
	}

	var memberIDs []uuid.UUID
	switch {
	case req.AllMembers:
		members, err := s.repo.ListMembers(ctx, repository.MemberQuery{Status: model.MemberStatusActive})
		if err != nil {
			return nil, err
		}
		for _, m := range members {
			memberIDs = append(memberIDs, m.ID)
		}
	case req.MemberID != nil && *req.MemberID != uuid.Nil:
		if _, err := s.repo.GetMemberByID(ctx, *req.MemberID); err != nil {
			return nil, err
		}
		memberIDs = []uuid.UUID{*req.MemberID}
	default:
		return nil, invalid("member_id or all_members is required")
	}

	today := s.clock.Today()
	category := strings.TrimSpace(req.Category)
	if category == "" {
		category = "Dues"
	}
	records := make([]model.FinancialRecord, 0, len(memberIDs))
	for _, id := range memberIDs {
		records = append(records, model.FinancialRecord{
			MemberID:        id,
			Type:            model.RecordTypeDues,
			Title:           strings.TrimSpace(req.Title),
			Category:        category,
			Amount:          req.Amount,
			DueDate:         req.DueDate,
			TransactionDate: today,
			Status:          model.PaymentStatusPending,
			Payment:         model.PaymentDetails{Notes: req.Notes},
			RecordedBy:      actorID(actor),
		})
	}
	if err := s.repo.CreateFinancialRecords(ctx, records); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actor, "dues.created", map[string]any{"title": req.Title, "count": len(records)})
	return records, nil
}

func (s *DuesService) Pay(ctx context.Context, actor model.Identity, id uuid.UUID, req PayDuesRequest) (model.FinancialRecord, error) {
	if err := validate(s.validator, req); err != nil {
		return model.FinancialRecord{}, err
	}
	record, err := s.repo.GetFinancialRecord(ctx, id)
	if err != nil {
		return model.FinancialRecord{}, err
	}
	details := model.PaymentDetails{
		PaidDate:  req.PaidDate,
		Method:    req.PaymentMethod,
		Reference: req.Reference,
		Notes:     req.Notes,
	}
	if err := record.MarkPaid(details); err != nil {
		return model.FinancialRecord{}, err
	}
	if err := s.repo.UpdateFinancialRecord(ctx, &record); err != nil {
		return model.FinancialRecord{}, err
	}

	s.metrics.RecordDuesPaid(ctx, string(req.PaymentMethod))
	s.audit.Record(ctx, actor, "dues.paid", map[string]any{"record_id": id, "method": req.PaymentMethod})
	return record, nil
}

func (s *DuesService) Waive(ctx context.Context, actor model.Identity, id uuid.UUID) (model.FinancialRecord, error) {
	record, err := s.repo.GetFinancialRecord(ctx, id)
	if err != nil {
		return model.FinancialRecord{}, err
	}
	if err := record.Waive(); err != nil {
		return model.FinancialRecord{}, err
	}
	if err := s.repo.UpdateFinancialRecord(ctx, &record); err != nil {
		return model.FinancialRecord{}, err
	}
	s.audit.Record(ctx, actor, "dues.waived", map[string]any{"record_id": id})
	return record, nil
}

// Remind sends the member a reminder covering all of their open dues.
func (s *DuesService) Remind(ctx context.Context, actor model.Identity, id uuid.UUID) (model.Notification, error) {
	record, err := s.repo.GetFinancialRecord(ctx, id)
	if err != nil {
		return model.Notification{}, err
	}
	if record.Type != model.RecordTypeDues || record.Status.Terminal() {
		return model.Notification{}, fmt.Errorf("%w: status is %s", model.ErrTerminalDueStatus, record.Status)
	}

	open, err := s.repo.ListFinancialRecords(ctx, repository.FinancialQuery{
		Types:    []model.RecordType{model.RecordTypeDues},
		MemberID: record.MemberID,
	})
	if err != nil {
		return model.Notification{}, err
	}
	totals := model.TotalDues(open)

	notification := s.composer.DuesReminder(record.MemberID, totals.Pending+totals.Overdue)
	if _, err := s.notifier.Notify(ctx, &notification); err != nil {
		return model.Notification{}, err
	}
	s.audit.Record(ctx, actor, "dues.reminded", map[string]any{"record_id": id, "member_id": record.MemberID})
	return notification, nil
}

// MarkOverdue flips pending dues past their due date. Run by the maintenance daemon.
func (s *DuesService) MarkOverdue(ctx context.Context) (int64, error) {
	return s.repo.MarkOverdueDues(ctx, s.clock.Today())
}

func paymentDate(r model.FinancialRecord) model.Date {
	if r.Payment.PaidDate != nil && !r.Payment.PaidDate.IsZero() {
		return *r.Payment.PaidDate
	}
	return r.TransactionDate
}

// Report groups the year's paid dues by member, sorted by member name.
func (s *DuesService) Report(ctx context.Context, year int) ([]MemberPayments, error) {
	if year < 1 {
		return nil, invalid("year is required")
	}
	records, err := s.repo.ListFinancialRecords(ctx, repository.FinancialQuery{
		Types:  []model.RecordType{model.RecordTypeDues},
		Status: model.PaymentStatusPaid,
	})
	if err != nil {
		return nil, err
	}

	byMember := make(map[uuid.UUID]*MemberPayments)
	for _, r := range records {
		date := paymentDate(r)
		if date.Year() != year {
			continue
		}
		entry, ok := byMember[r.MemberID]
		if !ok {
			entry = &MemberPayments{MemberID: r.MemberID}
			if r.Member != nil {
				entry.MemberName = r.Member.DisplayName()
			}
			byMember[r.MemberID] = entry
		}
		entry.Payments = append(entry.Payments, DuesPayment{ID: r.ID, Amount: r.Amount, Date: date})
		entry.Total += r.Amount
	}

	report := make([]MemberPayments, 0, len(byMember))
	for _, entry := range byMember {
		sort.Slice(entry.Payments, func(i, j int) bool {
			return entry.Payments[i].Date.Before(entry.Payments[j].Date)
		})
		report = append(report, *entry)
	}
	sort.Slice(report, func(i, j int) bool {
		if report[i].MemberName != report[j].MemberName {
			return report[i].MemberName < report[j].MemberName
		}
		return report[i].MemberID.String() < report[j].MemberID.String()
	})
	return report, nil
}

func (s *DuesService) Expenses(ctx context.Context, caller model.Identity) ([]ExpenseView, error) {
	me, err := memberOf(caller)
	if err != nil {
		return nil, err
	}
	records, err := s.repo.ListFinancialRecords(ctx, repository.FinancialQuery{
		Types:    []model.RecordType{model.RecordTypeDues, model.RecordTypeExpense},
		MemberID: me.ID,
		Limit:    memberExpenseLimit,
	})
	if err != nil {
		return nil, err
	}
	views := make([]ExpenseView, 0, len(records))
	for _, r := range records {
		views = append(views, ExpenseView{
			ID:          r.ID,
			Type:        r.Type,
			Description: r.Title,
			Category:    r.Category,
			Amount:      r.Amount,
			Date:        r.TransactionDate,
			Status:      model.ExpenseStatus(r.Status),
		})
	}
	return views, nil
}

func (s *DuesService) SubmitExpense(ctx context.Context, caller model.Identity, req ExpenseRequest) (ExpenseView, error) {
	me, err := memberOf(caller)
	if err != nil {
		return ExpenseView{}, err
	}
	if err := validate(s.validator, req); err != nil {
		return ExpenseView{}, err
	}
	category := strings.TrimSpace(req.Category)
	if category == "" {
		category = "General"
	}
	records := []model.FinancialRecord{{
		MemberID:        me.ID,
		Type:            model.RecordTypeExpense,
		Title:           strings.TrimSpace(req.Description),
		Category:        category,
		Amount:          req.Amount,
		TransactionDate: s.clock.Today(),
		Status:          model.PaymentStatusPending,
		RecordedBy:      &me.ID,
	}}
	if err := s.repo.CreateFinancialRecords(ctx, records); err != nil {
		return ExpenseView{}, err
	}
	record := records[0]
	return ExpenseView{
		ID:          record.ID,
		Type:        record.Type,
		Description: record.Title,
		Category:    record.Category,
		Amount:      record.Amount,
		Date:        record.TransactionDate,
		Status:      model.ExpenseStatus(record.Status),
	}, nil
}
