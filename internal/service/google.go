package service

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"ministry/internal/config"
)

const googleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

type googleUser struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
}

// GoogleAuth signs existing accounts in with a verified Google email.
// No account is ever created from a Google profile.
type GoogleAuth struct {
	oauth       *oauth2.Config
	client      *resty.Client
	userInfoURL string
	auth        *AuthService
}

func NewGoogleAuth(cfg config.GoogleConfig, auth *AuthService) *GoogleAuth {
	return newGoogleAuth(cfg, google.Endpoint, googleUserInfoURL, auth)
}

func newGoogleAuth(cfg config.GoogleConfig, endpoint oauth2.Endpoint, userInfoURL string, auth *AuthService) *GoogleAuth {
	return &GoogleAuth{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     endpoint,
			Scopes:       []string{"openid", "email", "profile"},
		},
		client:      resty.New(),
		userInfoURL: userInfoURL,
		auth:        auth,
	}
}

func (g *GoogleAuth) Enabled() bool {
	return g != nil && g.oauth.ClientID != "" && g.oauth.ClientSecret != ""
}

func (g *GoogleAuth) AuthCodeURL(state string) (string, error) {
	if !g.Enabled() {
		return "", ErrNotConfigured
	}
	return g.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline), nil
}

// Callback exchanges the authorization code and logs the matching account in.
func (g *GoogleAuth) Callback(ctx context.Context, code string) (LoginResult, error) {
	if !g.Enabled() {
		return LoginResult{}, ErrNotConfigured
	}
	if code == "" {
		return LoginResult{}, invalid("missing authorization code")
	}

	token, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		return LoginResult{}, fmt.Errorf("%w: code exchange failed", ErrInvalidCredentials)
	}

	var user googleUser
	resp, err := g.client.R().
		SetContext(ctx).
		SetAuthToken(token.AccessToken).
		SetResult(&user).
		Get(g.userInfoURL)
	if err != nil {
		return LoginResult{}, fmt.Errorf("failed to fetch google profile: %w", err)
	}
	if !resp.IsSuccess() {
		return LoginResult{}, fmt.Errorf("failed to fetch google profile: status %d", resp.StatusCode())
	}
	if user.Email == "" || !user.EmailVerified {
		return LoginResult{}, ErrInvalidCredentials
	}

	return g.auth.LoginWithEmail(ctx, user.Email)
}
