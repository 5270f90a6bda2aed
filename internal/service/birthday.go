package service

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"ministry/internal/model"
	"ministry/internal/notifications"
	"ministry/internal/repository"
)

type BirthdayKind string

const (
	BirthdayKindMember BirthdayKind = "MEMBER"
	BirthdayKindAdmin  BirthdayKind = "ADMIN"
)

type BirthdayView struct {
	ID           uuid.UUID          `json:"id"`
	Name         string             `json:"name"`
	Birthday     model.Date         `json:"birthday"`
	Age          int                `json:"age"`
	Kind         BirthdayKind       `json:"kind"`
	ServiceLevel model.ServiceLevel `json:"service_level,omitempty"`
	IsToday      bool               `json:"is_today"`
}

type BirthdayService struct {
	repo     repository.Repository
	notifier *notifications.Notifier
	composer notifications.Composer
	logger   *slog.Logger
	clock    Clock
}

func NewBirthdayService(repo repository.Repository, notifier *notifications.Notifier, composer notifications.Composer,
	logger *slog.Logger, clock Clock) *BirthdayService {
	return &BirthdayService{repo: repo, notifier: notifier, composer: composer, logger: logger, clock: clock}
}

// celebratesOn reports whether a birthday falls on day. Leap-day birthdays are
// celebrated on February 28 in common years.
func celebratesOn(birthday, day model.Date) bool {
	month, date := birthday.Month(), birthday.Day()
	if month == time.February && date == 29 && !isLeap(day.Year()) {
		date = 28
	}
	return day.Month() == month && day.Day() == date
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// List returns active members and active admins that have a birthday on
// record, ordered through the calendar year.
func (s *BirthdayService) List(ctx context.Context) ([]BirthdayView, error) {
	members, err := s.repo.ListMembers(ctx, repository.MemberQuery{Status: model.MemberStatusActive})
	if err != nil {
		return nil, err
	}
	admins, err := s.repo.ListAdmins(ctx, true)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	today := s.clock.Today()
	views := make([]BirthdayView, 0, len(members)+len(admins))
	for _, m := range members {
		if m.Birthday == nil || m.Birthday.IsZero() {
			continue
		}
		views = append(views, BirthdayView{
			ID:           m.ID,
			Name:         m.FullName(),
			Birthday:     *m.Birthday,
			Age:          model.CompletedYears(m.Birthday.Time, now),
			Kind:         BirthdayKindMember,
			ServiceLevel: model.ServiceLevelFor(m.DateOfInvestiture, now),
			IsToday:      celebratesOn(*m.Birthday, today),
		})
	}
	for _, a := range admins {
		if a.Birthday == nil || a.Birthday.IsZero() {
			continue
		}
		views = append(views, BirthdayView{
			ID:       a.ID,
			Name:     a.Name,
			Birthday: *a.Birthday,
			Age:      model.CompletedYears(a.Birthday.Time, now),
			Kind:     BirthdayKindAdmin,
			IsToday:  celebratesOn(*a.Birthday, today),
		})
	}

	sort.SliceStable(views, func(i, j int) bool {
		a, b := views[i].Birthday, views[j].Birthday
		if a.Month() != b.Month() {
			return a.Month() < b.Month()
		}
		if a.Day() != b.Day() {
			return a.Day() < b.Day()
		}
		return views[i].Name < views[j].Name
	})
	return views, nil
}

func (s *BirthdayService) Today(ctx context.Context) ([]BirthdayView, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	today := make([]BirthdayView, 0)
	for _, b := range all {
		if b.IsToday {
			today = append(today, b)
		}
	}
	return today, nil
}

// SendNotices posts one greeting per celebrant today. Repeated runs on the
// same day create nothing new.
func (s *BirthdayService) SendNotices(ctx context.Context) (int, error) {
	celebrants, err := s.Today(ctx)
	if err != nil {
		return 0, err
	}
	day := s.clock.Today()
	sent := 0
	for _, b := range celebrants {
		n := s.composer.Birthday(b.ID, b.Name, day)
		created, err := s.notifier.Notify(ctx, &n)
		if err != nil {
			return sent, err
		}
		if created {
			sent++
		}
	}
	if sent > 0 {
		s.logger.InfoContext(ctx, "Sent birthday notices", "count", sent, "date", day)
	}
	return sent, nil
}
