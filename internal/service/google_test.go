package service_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"ministry/internal/config"
	"ministry/internal/model"
	"ministry/internal/service"
)

func newGoogleServer(t *testing.T, profile map[string]any) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "google-access-token",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer google-access-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(profile)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newGoogleAuth(f *fixture, srv *httptest.Server) *service.GoogleAuth {
	cfg := config.GoogleConfig{ClientID: "client", ClientSecret: "secret", RedirectURL: "http://localhost/callback"}
	endpoint := oauth2.Endpoint{AuthURL: srv.URL + "/auth", TokenURL: srv.URL + "/token"}
	return service.NewGoogleAuthWithEndpoints(cfg, endpoint, srv.URL+"/userinfo", newAuthService(f, nil))
}

func TestGoogleAuth_Callback(t *testing.T) {
	ctx := context.Background()

	t.Run("verified_member_email_logs_in", func(t *testing.T) {
		f := newFixture(t)
		member := f.member(t, "Santos", "Maria")
		srv := newGoogleServer(t, map[string]any{"email": strings.ToUpper(member.Email), "email_verified": true})

		result, err := newGoogleAuth(f, srv).Callback(ctx, "auth-code")
		require.NoError(t, err)
		assert.Equal(t, model.RoleMember, result.Identity.Role)
		assert.Equal(t, member.ID, result.Identity.ID)
		assert.NotEmpty(t, result.Token)
	})

	t.Run("unverified_email_rejected", func(t *testing.T) {
		f := newFixture(t)
		srv := newGoogleServer(t, map[string]any{"email": "admin@parish.org", "email_verified": false})

		_, err := newGoogleAuth(f, srv).Callback(ctx, "auth-code")
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	})

	t.Run("unknown_account_rejected", func(t *testing.T) {
		f := newFixture(t)
		srv := newGoogleServer(t, map[string]any{"email": "stranger@gmail.com", "email_verified": true})

		_, err := newGoogleAuth(f, srv).Callback(ctx, "auth-code")
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	})

	t.Run("missing_code", func(t *testing.T) {
		f := newFixture(t)
		srv := newGoogleServer(t, nil)

		_, err := newGoogleAuth(f, srv).Callback(ctx, "")
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})
}

func TestGoogleAuth_Disabled(t *testing.T) {
	g := service.NewGoogleAuth(config.GoogleConfig{}, nil)
	assert.False(t, g.Enabled())

	_, err := g.AuthCodeURL("state")
	assert.ErrorIs(t, err, service.ErrNotConfigured)

	_, err = g.Callback(context.Background(), "code")
	assert.ErrorIs(t, err, service.ErrNotConfigured)
}

func TestGoogleAuth_AuthCodeURL(t *testing.T) {
	f := newFixture(t)
	srv := newGoogleServer(t, nil)

	url, err := newGoogleAuth(f, srv).AuthCodeURL("xyz")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, srv.URL+"/auth?"))
	assert.Contains(t, url, "state=xyz")
	assert.Contains(t, url, "client_id=client")
}
