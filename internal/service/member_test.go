package service_test

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"ministry/internal/model"
	"ministry/internal/repository"
	"ministry/internal/service"
	"ministry/internal/storage"
)

func newMemberService(t *testing.T, f *fixture) *service.MemberService {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	return service.NewMemberService(f.repo, store, f.validator, f.audit, f.logger, f.clock, "ministry.local")
}

func validMemberRequest(username string) service.CreateMemberRequest {
	return service.CreateMemberRequest{
		Surname:           " Dela Cruz ",
		GivenName:         "Juan",
		Birthday:          datePtr(2010, time.July, 4),
		Address:           "San Roque",
		ParentContact:     "Maria Dela Cruz 0917",
		Username:          username,
		Password:          "secret123",
		DateOfInvestiture: datePtr(2023, time.March, 10),
	}
}

func TestMemberService_Create(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	members := newMemberService(t, f)

	view, err := members.Create(ctx, f.admin, validMemberRequest("JuanDC"))
	require.NoError(t, err)
	assert.Equal(t, "Dela Cruz", view.Surname)
	assert.Equal(t, "juandc", view.Username)
	assert.Equal(t, "juandc@ministry.local", view.Email)
	assert.Equal(t, model.MemberStatusActive, view.Status)
	assert.Equal(t, "Dela Cruz, J.", view.DisplayName)
	assert.Equal(t, model.ServiceLevelJunior, view.ServiceLevel)
	assert.Equal(t, 3, view.YearsOfService)

	stored, err := f.repo.GetMemberByID(ctx, view.ID)
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret123")))

	t.Run("duplicate_username", func(t *testing.T) {
		_, err := members.Create(ctx, f.admin, validMemberRequest("juandc"))
		assert.ErrorIs(t, err, repository.ErrDuplicate)
	})

	t.Run("missing_required_fields", func(t *testing.T) {
		req := validMemberRequest("pedro")
		req.Birthday = nil
		req.Address = ""
		_, err := members.Create(ctx, f.admin, req)
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})

	t.Run("explicit_email_lowercased", func(t *testing.T) {
		req := validMemberRequest("pedro")
		req.Email = "Pedro@Example.com"
		view, err := members.Create(ctx, f.admin, req)
		require.NoError(t, err)
		assert.Equal(t, "pedro@example.com", view.Email)
	})
}

func TestMemberService_Access(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	members := newMemberService(t, f)
	maria := f.member(t, "Santos", "Maria")
	jose := f.member(t, "Cruz", "Jose")

	_, err := members.Get(ctx, f.admin, maria.ID)
	assert.NoError(t, err)

	_, err = members.Get(ctx, maria.Identity(), maria.ID)
	assert.NoError(t, err)

	_, err = members.Get(ctx, maria.Identity(), jose.ID)
	assert.ErrorIs(t, err, service.ErrForbidden)

	profile, err := members.Profile(ctx, jose.Identity())
	require.NoError(t, err)
	assert.Equal(t, jose.ID, profile.ID)

	_, err = members.Profile(ctx, f.admin)
	assert.ErrorIs(t, err, service.ErrForbidden)

	_, err = members.Get(ctx, f.admin, uuid.New())
	assert.ErrorIs(t, err, repository.ErrMemberNotFound)
}

func TestMemberService_UpdateAndDeactivate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	members := newMemberService(t, f)
	maria := f.member(t, "Santos", "Maria")
	jose := f.member(t, "Cruz", "Jose")

	phone := "0918 555 0101"
	password := "newsecret1"
	view, err := members.Update(ctx, f.admin, maria.ID, service.UpdateMemberRequest{Phone: &phone, Password: &password})
	require.NoError(t, err)
	assert.Equal(t, phone, view.Phone)
	assert.Equal(t, "Santos", view.Surname)

	stored, err := f.repo.GetMemberByID(ctx, maria.ID)
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte(password)))

	taken := jose.Email
	_, err = members.Update(ctx, f.admin, maria.ID, service.UpdateMemberRequest{Email: &taken})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	require.NoError(t, members.Deactivate(ctx, f.admin, maria.ID))
	stored, err = f.repo.GetMemberByID(ctx, maria.ID)
	require.NoError(t, err)
	assert.Equal(t, model.MemberStatusInactive, stored.Status)

	active, err := members.List(ctx, model.MemberStatusActive)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, jose.ID, active[0].ID)

	_, err = members.List(ctx, "RETIRED")
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestMemberService_Photo(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	members := newMemberService(t, f)
	maria := f.member(t, "Santos", "Maria")
	jose := f.member(t, "Cruz", "Jose")

	content := []byte("\x89PNG fake image")
	_, err := members.UploadPhoto(ctx, jose.Identity(), maria.ID, "me.png", int64(len(content)), bytes.NewReader(content))
	assert.ErrorIs(t, err, service.ErrForbidden)

	_, err = members.UploadPhoto(ctx, maria.Identity(), maria.ID, "me.gif", int64(len(content)), bytes.NewReader(content))
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	_, err = members.UploadPhoto(ctx, maria.Identity(), maria.ID, "me.png", service.MaxPhotoSize+1, bytes.NewReader(content))
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	_, _, err = members.Photo(ctx, maria.Identity(), maria.ID)
	assert.ErrorIs(t, err, service.ErrPhotoNotFound)

	view, err := members.UploadPhoto(ctx, maria.Identity(), maria.ID, "Me.PNG", int64(len(content)), bytes.NewReader(content))
	require.NoError(t, err)
	assert.True(t, view.HasPhoto)
	assert.Equal(t, "members/"+maria.ID.String()+"/photo.png", view.PhotoKey)

	rc, meta, err := members.Photo(ctx, f.admin, maria.ID)
	require.NoError(t, err)
	defer rc.Close()
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, content, got)
	assert.Equal(t, "image/png", meta.ContentType)
}
