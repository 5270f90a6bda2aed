package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"ministry/internal/calendar"
	"ministry/internal/model"
	"ministry/internal/repository"
	"ministry/internal/service"
	"ministry/internal/validator"
)

// SeedFile is the YAML layout accepted by the seed command.
type SeedFile struct {
	Admins  []SeedAdmin  `yaml:"admins"`
	Groups  []SeedGroup  `yaml:"groups"`
	Members []SeedMember `yaml:"members"`
	Events  []SeedEvent  `yaml:"events"`
}

type SeedAdmin struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

type SeedGroup struct {
	Name        string `yaml:"name"`
	ServiceTime string `yaml:"service_time"`
}

type SeedMember struct {
	Surname           string `yaml:"surname"`
	GivenName         string `yaml:"given_name"`
	MiddleName        string `yaml:"middle_name"`
	Birthday          string `yaml:"birthday"`
	Address           string `yaml:"address"`
	ParentContact     string `yaml:"parent_contact"`
	Phone             string `yaml:"phone"`
	Email             string `yaml:"email"`
	Username          string `yaml:"username"`
	Password          string `yaml:"password"`
	DateOfInvestiture string `yaml:"date_of_investiture"`
	Group             string `yaml:"group"`
}

type SeedEvent struct {
	Title      string `yaml:"title"`
	Date       string `yaml:"date"`
	Time       string `yaml:"time"`
	Conductor  string `yaml:"conductor"`
	Purpose    string `yaml:"purpose"`
	Location   string `yaml:"location"`
	Recurrence string `yaml:"recurrence"`
}

// SeedResult counts what a run created; existing rows are skipped.
type SeedResult struct {
	Admins  int
	Groups  int
	Members int
	Events  int
	Skipped int
}

func (r SeedResult) String() string {
	return fmt.Sprintf("admins=%d groups=%d members=%d events=%d skipped=%d",
		r.Admins, r.Groups, r.Members, r.Events, r.Skipped)
}

func ParseSeed(r io.Reader) (SeedFile, error) {
	var seed SeedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&seed); err != nil && !errors.Is(err, io.EOF) {
		return SeedFile{}, fmt.Errorf("failed to parse seed file: %w", err)
	}
	return seed, nil
}

// Seeder loads a SeedFile through the services so the same validation
// applies as for the HTTP API. Running it twice is harmless.
type Seeder struct {
	repo    repository.Repository
	auth    *service.AuthService
	members *service.MemberService
	groups  *service.GroupService
	logger  *slog.Logger
}

func NewSeeder(repo repository.Repository, granter service.AdminGranter, logger *slog.Logger, clock service.Clock, emailDomain string) *Seeder {
	v := validator.New()
	return &Seeder{
		repo:    repo,
		auth:    service.NewAuthService(repo, nil, nil, v, granter, nil, nil, logger, clock),
		members: service.NewMemberService(repo, nil, v, nil, logger, clock, emailDomain),
		groups:  service.NewGroupService(repo, v, nil, logger, clock),
		logger:  logger,
	}
}

func optionalDate(s string) (*model.Date, error) {
	if s == "" {
		return nil, nil
	}
	d, err := model.ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *Seeder) Apply(ctx context.Context, seed SeedFile) (SeedResult, error) {
	var res SeedResult

	for _, a := range seed.Admins {
		if _, err := s.repo.GetAdminByEmail(ctx, model.NormalizeEmail(a.Email)); err == nil {
			res.Skipped++
			continue
		}
		if _, err := s.auth.CreateAdmin(ctx, service.RegisterRequest{Name: a.Name, Email: a.Email, Password: a.Password}); err != nil {
			return res, fmt.Errorf("admin %s: %w", a.Email, err)
		}
		res.Admins++
	}

	groups, err := s.repo.ListGroups(ctx)
	if err != nil {
		return res, err
	}
	groupIDs := make(map[string]model.ServiceGroup, len(groups))
	for _, g := range groups {
		groupIDs[strings.ToLower(g.Name)] = g
	}
	for _, g := range seed.Groups {
		if _, ok := groupIDs[strings.ToLower(g.Name)]; ok {
			res.Skipped++
			continue
		}
		view, err := s.groups.Create(ctx, nil, service.CreateGroupRequest{Name: g.Name, ServiceTime: model.ServiceTime(strings.ToUpper(g.ServiceTime))})
		if err != nil {
			return res, fmt.Errorf("group %s: %w", g.Name, err)
		}
		groupIDs[strings.ToLower(view.Name)] = model.ServiceGroup{ID: view.ID, Name: view.Name}
		res.Groups++
	}

	for _, m := range seed.Members {
		created, err := s.seedMember(ctx, m)
		if err != nil {
			return res, fmt.Errorf("member %s: %w", m.Username, err)
		}
		if !created.Created {
			res.Skipped++
		} else {
			res.Members++
		}
		if m.Group == "" {
			continue
		}
		group, ok := groupIDs[strings.ToLower(m.Group)]
		if !ok {
			return res, fmt.Errorf("member %s: unknown group %q", m.Username, m.Group)
		}
		if created.GroupID == nil || *created.GroupID != group.ID {
			if _, err := s.groups.AddMember(ctx, nil, group.ID, service.AddGroupMemberRequest{MemberID: created.ID}); err != nil {
				return res, fmt.Errorf("member %s: %w", m.Username, err)
			}
		}
	}

	for _, e := range seed.Events {
		created, err := s.seedEvent(ctx, e)
		if err != nil {
			return res, fmt.Errorf("event %s: %w", e.Title, err)
		}
		if created {
			res.Events++
		} else {
			res.Skipped++
		}
	}

	s.logger.InfoContext(ctx, "Seed applied", "admins", res.Admins, "groups", res.Groups,
		"members", res.Members, "events", res.Events, "skipped", res.Skipped)
	return res, nil
}

type seededMember struct {
	model.Member
	Created bool
}

func (s *Seeder) seedMember(ctx context.Context, m SeedMember) (seededMember, error) {
	existing, err := s.repo.GetMemberByUsername(ctx, strings.ToLower(strings.TrimSpace(m.Username)))
	if err == nil {
		return seededMember{Member: existing}, nil
	}
	if !errors.Is(err, repository.ErrMemberNotFound) {
		return seededMember{}, err
	}

	birthday, err := optionalDate(m.Birthday)
	if err != nil {
		return seededMember{}, err
	}
	invested, err := optionalDate(m.DateOfInvestiture)
	if err != nil {
		return seededMember{}, err
	}
	view, err := s.members.Create(ctx, nil, service.CreateMemberRequest{
		Surname:           m.Surname,
		GivenName:         m.GivenName,
		MiddleName:        m.MiddleName,
		Birthday:          birthday,
		Address:           m.Address,
		ParentContact:     m.ParentContact,
		Phone:             m.Phone,
		Email:             m.Email,
		Username:          m.Username,
		Password:          m.Password,
		DateOfInvestiture: invested,
	})
	if err != nil {
		return seededMember{}, err
	}
	member, err := s.repo.GetMemberByID(ctx, view.ID)
	if err != nil {
		return seededMember{}, err
	}
	return seededMember{Member: member, Created: true}, nil
}

// seedEvent treats an event with the same title on the same date as already seeded.
func (s *Seeder) seedEvent(ctx context.Context, e SeedEvent) (bool, error) {
	date, err := model.ParseDate(e.Date)
	if err != nil {
		return false, err
	}
	if err := calendar.ValidateRecurrence(e.Recurrence); err != nil {
		return false, err
	}

	existing, err := s.repo.ListEvents(ctx, repository.EventQuery{From: date, To: date, IncludeCancelled: true})
	if err != nil {
		return false, err
	}
	for _, ev := range existing {
		if strings.EqualFold(ev.Title, e.Title) && ev.Date.Equal(date) {
			return false, nil
		}
	}

	event := model.MinistryEvent{
		Title:      strings.TrimSpace(e.Title),
		Date:       date,
		Time:       e.Time,
		Conductor:  e.Conductor,
		Purpose:    e.Purpose,
		Location:   e.Location,
		Status:     model.EventStatusScheduled,
		Recurrence: e.Recurrence,
	}
	if err := s.repo.CreateEvent(ctx, &event); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func seedCmd(app *App) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load admins, groups, members and events from a YAML file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()

			seed, err := ParseSeed(f)
			if err != nil {
				return err
			}
			repo, err := app.repository()
			if err != nil {
				return err
			}

			seeder := NewSeeder(repo, app.granter(), app.logger, service.NewClock(app.cfg.Location()), app.cfg.Ministry.MemberEmailDomain)
			res, err := seeder.Apply(cmd.Context(), seed)
			if err != nil {
				return err
			}
			fmt.Println("Seed complete:", res)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "seed.yaml", "Seed file to load")
	return cmd
}
