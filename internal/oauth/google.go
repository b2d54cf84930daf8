// Package oauth talks to Google for "Sign in with Google". The rest of the
// service only sees a verified Profile.
package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"invoice-service/internal/apperr"
	"invoice-service/pkg/config"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"

// Profile is the identity returned by the provider.
type Profile struct {
	ID            string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// Provider is an OAuth identity provider.
type Provider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*Profile, error)
}

// Google implements Provider against Google's OAuth endpoints.
type Google struct {
	cfg         *oauth2.Config
	userInfoURL string
}

// NewGoogle builds the provider from configuration.
func NewGoogle(c config.GoogleConfig) *Google {
	return &Google{
		cfg: &oauth2.Config{
			ClientID:     c.ClientID,
			ClientSecret: c.ClientSecret,
			RedirectURL:  c.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     endpoints.Google,
		},
		userInfoURL: googleUserInfoURL,
	}
}

func (g *Google) AuthCodeURL(state string) string {
	return g.cfg.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades the callback code for a token and fetches the profile.
func (g *Google) Exchange(ctx context.Context, code string) (*Profile, error) {
	if code == "" {
		return nil, apperr.Unauthorized("oauth_failed", "missing authorization code")
	}
	tok, err := g.cfg.Exchange(ctx, code)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.Response != nil && retrieveErr.Response.StatusCode < 500 {
			return nil, apperr.Unauthorized("oauth_failed", "authorization code rejected")
		}
		return nil, apperr.Upstream("google token exchange", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.userInfoURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := g.cfg.Client(ctx, tok).Do(req)
	if err != nil {
		return nil, apperr.Upstream("google userinfo", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, apperr.Upstream("google userinfo", fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var p Profile
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, apperr.Upstream("google userinfo", err)
	}
	if p.ID == "" || p.Email == "" {
		return nil, apperr.Unauthorized("oauth_failed", "google profile has no id or email")
	}
	if !p.EmailVerified {
		return nil, apperr.Unauthorized("oauth_failed", "google email is not verified")
	}
	return &p, nil
}
