package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/freelog/freelog/internal/auth"
)

// GoogleUserInfoURL is Google's OpenID Connect userinfo endpoint.
const GoogleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

// GoogleConfig configures the Google provider. Endpoint and UserInfoURL
// default to Google's.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Endpoint     oauth2.Endpoint
	UserInfoURL  string
}

// Google signs users in with their Google account.
type Google struct {
	oauth       *oauth2.Config
	userInfoURL string
}

// NewGoogle creates the Google provider.
func NewGoogle(cfg GoogleConfig) *Google {
	endpoint := cfg.Endpoint
	if endpoint.AuthURL == "" {
		endpoint = google.Endpoint
	}
	userInfo := cfg.UserInfoURL
	if userInfo == "" {
		userInfo = GoogleUserInfoURL
	}
	return &Google{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     endpoint,
			Scopes:       []string{"openid", "email", "profile"},
		},
		userInfoURL: userInfo,
	}
}

// Name implements auth.IdentityProvider.
func (g *Google) Name() string { return "google" }

// AuthCodeURL implements auth.IdentityProvider.
func (g *Google) AuthCodeURL(state string) string {
	return g.oauth.AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "select_account"))
}

type googleUserInfo struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// Exchange trades the code for a token and reads the user's profile.
func (g *Google) Exchange(ctx context.Context, code string) (auth.Identity, error) {
	tok, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		return auth.Identity{}, fmt.Errorf("google: code exchange: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.userInfoURL, nil)
	if err != nil {
		return auth.Identity{}, err
	}
	resp, err := g.oauth.Client(ctx, tok).Do(req)
	if err != nil {
		return auth.Identity{}, fmt.Errorf("google: userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return auth.Identity{}, fmt.Errorf("google: userinfo: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return auth.Identity{}, fmt.Errorf("google: decoding userinfo: %w", err)
	}
	if info.Sub == "" || info.Email == "" {
		return auth.Identity{}, fmt.Errorf("google: userinfo is missing sub or email")
	}
	if !info.EmailVerified {
		return auth.Identity{}, fmt.Errorf("google: email %s is not verified", info.Email)
	}

	return auth.Identity{
		ID:        info.Sub,
		Email:     info.Email,
		Name:      info.Name,
		AvatarURL: info.Picture,
	}, nil
}
