package service

import (
	"context"

	"ministry/internal/model"
	"ministry/internal/repository"
)

const dashboardUpcomingEvents = 5

type MemberCounts struct {
	Active   int64 `json:"active"`
	Inactive int64 `json:"inactive"`
	Total    int64 `json:"total"`
}

type Dashboard struct {
	Members         MemberCounts               `json:"members"`
	ServiceLevels   map[model.ServiceLevel]int `json:"service_levels"`
	Dues            model.DuesTotals           `json:"dues"`
	UpcomingEvents  []model.MinistryEvent      `json:"upcoming_events"`
	TodaysBirthdays []BirthdayView             `json:"todays_birthdays"`
}

type DashboardService struct {
	repo      repository.Repository
	birthdays *BirthdayService
	clock     Clock
}

func NewDashboardService(repo repository.Repository, birthdays *BirthdayService, clock Clock) *DashboardService {
	return &DashboardService{repo: repo, birthdays: birthdays, clock: clock}
}

func (s *DashboardService) Admin(ctx context.Context) (Dashboard, error) {
	var d Dashboard
	var err error

	if d.Members.Active, err = s.repo.CountMembers(ctx, model.MemberStatusActive); err != nil {
		return Dashboard{}, err
	}
	if d.Members.Inactive, err = s.repo.CountMembers(ctx, model.MemberStatusInactive); err != nil {
		return Dashboard{}, err
	}
	d.Members.Total = d.Members.Active + d.Members.Inactive

	active, err := s.repo.ListMembers(ctx, repository.MemberQuery{Status: model.MemberStatusActive})
	if err != nil {
		return Dashboard{}, err
	}
	now := s.clock.Now()
	d.ServiceLevels = make(map[model.ServiceLevel]int, len(model.ServiceLevels))
	for _, level := range model.ServiceLevels {
		d.ServiceLevels[level] = 0
	}
	for _, m := range active {
		d.ServiceLevels[model.ServiceLevelFor(m.DateOfInvestiture, now)]++
	}

	dues, err := s.repo.ListFinancialRecords(ctx, repository.FinancialQuery{Types: []model.RecordType{model.RecordTypeDues}})
	if err != nil {
		return Dashboard{}, err
	}
	d.Dues = model.TotalDues(dues)

	today := s.clock.Today()
	upcoming, err := s.repo.ListEvents(ctx, repository.EventQuery{From: today, Limit: dashboardUpcomingEvents})
	if err != nil {
		return Dashboard{}, err
	}
	if upcoming == nil {
		upcoming = []model.MinistryEvent{}
	}
	d.UpcomingEvents = upcoming

	if d.TodaysBirthdays, err = s.birthdays.Today(ctx); err != nil {
		return Dashboard{}, err
	}
	return d, nil
}
