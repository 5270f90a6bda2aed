package main

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ministry/internal/logger"
	"ministry/internal/model"
	"ministry/internal/repository"
	"ministry/internal/service"
	"ministry/internal/testutil"
)

const seedYAML = `
admins:
  - name: Parish Office
    email: Office@Parish.org
    password: ValidPass123!
groups:
  - name: Group A
    service_time: am
members:
  - surname: Santos
    given_name: Miguel
    birthday: "2009-04-02"
    address: Poblacion
    parent_contact: "09170000001"
    username: msantos
    password: serverpass
    date_of_investiture: "2021-12-08"
    group: Group A
events:
  - title: Altar server recollection
    date: "2026-11-07"
    time: "08:00"
    location: Parish hall
  - title: Sunday practice
    date: "2026-11-01"
    time: "15:00"
    recurrence: FREQ=WEEKLY;BYDAY=SU
`

func TestSeedApply(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewDatabaseRepository(testutil.NewTestDB(t))
	seeder := NewSeeder(repo, nil, logger.Discard(), service.NewClock(time.UTC), "ministry.local")

	seed, err := ParseSeed(strings.NewReader(seedYAML))
	require.NoError(t, err)

	res, err := seeder.Apply(ctx, seed)
	require.NoError(t, err)
	assert.Equal(t, SeedResult{Admins: 1, Groups: 1, Members: 1, Events: 2}, res)

	admin, err := repo.GetAdminByEmail(ctx, "office@parish.org")
	require.NoError(t, err)
	assert.True(t, admin.IsActive)

	member, err := repo.GetMemberByUsername(ctx, "msantos")
	require.NoError(t, err)
	assert.Equal(t, "msantos@ministry.local", member.Email)
	require.NotNil(t, member.GroupID)

	group, err := repo.GetGroup(ctx, *member.GroupID)
	require.NoError(t, err)
	assert.Equal(t, "Group A", group.Name)
	assert.Equal(t, model.ServiceTimeAM, group.ServiceTime)

	t.Run("second run skips existing rows", func(t *testing.T) {
		res, err := seeder.Apply(ctx, seed)
		require.NoError(t, err)
		assert.Equal(t, SeedResult{Skipped: 5}, res)
	})
}

func TestSeedRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewDatabaseRepository(testutil.NewTestDB(t))
	seeder := NewSeeder(repo, nil, logger.Discard(), service.NewClock(time.UTC), "ministry.local")

	t.Run("unknown field", func(t *testing.T) {
		_, err := ParseSeed(strings.NewReader("members:\n  - nickname: Mig\n"))
		assert.Error(t, err)
	})

	t.Run("bad recurrence", func(t *testing.T) {
		_, err := seeder.Apply(ctx, SeedFile{Events: []SeedEvent{{Title: "Practice", Date: "2026-11-01", Time: "15:00", Recurrence: "FREQ=SOMETIMES"}}})
		assert.Error(t, err)
	})

	t.Run("unknown group", func(t *testing.T) {
		_, err := seeder.Apply(ctx, SeedFile{Members: []SeedMember{{
			Surname: "Reyes", GivenName: "Ana", Birthday: "2010-01-05", Address: "Poblacion",
			ParentContact: "0917", Username: "areyes", Password: "serverpass",
			DateOfInvestiture: "2022-01-01", Group: "Nowhere",
		}}})
		assert.ErrorContains(t, err, "unknown group")
	})

	t.Run("empty file", func(t *testing.T) {
		seed, err := ParseSeed(strings.NewReader(""))
		require.NoError(t, err)
		res, err := seeder.Apply(ctx, seed)
		require.NoError(t, err)
		assert.Equal(t, SeedResult{}, res)
	})
}
