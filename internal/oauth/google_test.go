package oauth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"invoice-service/internal/apperr"
	"invoice-service/pkg/config"

	"golang.org/x/oauth2"
)

func fakeGoogle(t *testing.T, userinfo string, userinfoStatus int) *Google {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil || r.Form.Get("code") != "good-code" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"tok","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(userinfoStatus)
		w.Write([]byte(userinfo))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return &Google{
		cfg: &oauth2.Config{
			ClientID:     "client",
			ClientSecret: "secret",
			Endpoint:     oauth2.Endpoint{AuthURL: srv.URL + "/auth", TokenURL: srv.URL + "/token", AuthStyle: oauth2.AuthStyleInParams},
		},
		userInfoURL: srv.URL + "/userinfo",
	}
}

func TestExchangeReturnsProfile(t *testing.T) {
	g := fakeGoogle(t, `{"sub":"g-1","email":"asha@example.com","email_verified":true,"name":"Asha","picture":"https://img"}`, http.StatusOK)

	p, err := g.Exchange(context.Background(), "good-code")
	if err != nil {
		t.Fatalf("exchange: %v", err)
	}
	if p.ID != "g-1" || p.Email != "asha@example.com" || p.Name != "Asha" {
		t.Fatalf("profile = %+v", p)
	}
}

func TestExchangeFailures(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		body     string
		status   int
		sentinel error
	}{
		{"missing code", "", "", http.StatusOK, apperr.ErrUnauthorized},
		{"rejected code", "bad-code", "", http.StatusOK, apperr.ErrUnauthorized},
		{"userinfo down", "good-code", "", http.StatusServiceUnavailable, apperr.ErrUpstream},
		{"unverified email", "good-code", `{"sub":"g-1","email":"a@b.c","email_verified":false}`, http.StatusOK, apperr.ErrUnauthorized},
		{"no email", "good-code", `{"sub":"g-1","email_verified":true}`, http.StatusOK, apperr.ErrUnauthorized},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g := fakeGoogle(t, tc.body, tc.status)
			_, err := g.Exchange(context.Background(), tc.code)
			if !errors.Is(err, tc.sentinel) {
				t.Fatalf("expected %v, got %v", tc.sentinel, err)
			}
		})
	}
}

func TestAuthCodeURLCarriesState(t *testing.T) {
	g := NewGoogle(config.GoogleConfig{ClientID: "id", ClientSecret: "secret", RedirectURL: "http://localhost/cb"})
	raw := g.AuthCodeURL("state-123")
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	q := u.Query()
	if q.Get("state") != "state-123" || q.Get("client_id") != "id" || q.Get("redirect_uri") != "http://localhost/cb" {
		t.Fatalf("unexpected url %s", raw)
	}
	if !strings.Contains(q.Get("scope"), "email") {
		t.Fatalf("scope missing email: %s", q.Get("scope"))
	}
}
