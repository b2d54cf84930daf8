package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"invoice-service/internal/apperr"
	"invoice-service/internal/model"
	"invoice-service/pkg/jwtutil"
	"invoice-service/pkg/logger"

	"github.com/labstack/echo/v4"
)

type fakeOwners map[uint]*model.Owner

func (f fakeOwners) GetOwner(_ context.Context, id uint) (*model.Owner, error) {
	o, ok := f[id]
	if !ok {
		return nil, apperr.NotFound("owner", id)
	}
	return o, nil
}

func newServer(j *jwtutil.JWTUtil, owners OwnerLoader) *echo.Echo {
	e := echo.New()
	e.Use(RequestIDMiddleware())
	api := e.Group("/api", JWTAuthMiddleware(j))
	api.GET("/profile", func(c echo.Context) error {
		id, _ := OwnerID(c)
		return c.JSON(http.StatusOK, echo.Map{"owner_id": id})
	})
	gated := api.Group("", RequireProfile(owners))
	gated.GET("/items", func(c echo.Context) error {
		o, _ := Owner(c)
		return c.JSON(http.StatusOK, echo.Map{"company": o.CompanyName})
	})
	return e
}

func do(e *echo.Echo, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuthMiddleware(t *testing.T) {
	j := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{SigningKey: "k", ExpirationHours: 1})
	e := newServer(j, fakeOwners{})

	token, err := j.GenerateToken("asha@example.com", 7)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	expired, err := j.WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) }).GenerateToken("asha@example.com", 7)
	if err != nil {
		t.Fatalf("expired token: %v", err)
	}

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid", "Bearer " + token, http.StatusOK},
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"garbage", "Bearer not-a-token", http.StatusUnauthorized},
		{"expired", "Bearer " + expired, http.StatusUnauthorized},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			if rec.Code != tc.status {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tc.status, rec.Body)
			}
			if rec.Header().Get(RequestIDHeader) == "" {
				t.Fatal("missing request id header")
			}
		})
	}
}

func TestRequireProfile(t *testing.T) {
	j := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{SigningKey: "k", ExpirationHours: 1})
	owners := fakeOwners{
		1: {ID: 1, Name: "Asha", CompanyName: "Asha Traders"},
		2: {ID: 2, Name: "Bo"},
	}
	e := newServer(j, owners)

	complete, _ := j.GenerateToken("asha@example.com", 1)
	rec := do(e, "/api/items", complete)
	if rec.Code != http.StatusOK {
		t.Fatalf("complete profile: status %d %s", rec.Code, rec.Body)
	}

	for _, id := range []uint{2, 3} {
		token, _ := j.GenerateToken("x@example.com", id)
		rec := do(e, "/api/items", token)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("owner %d: status %d", id, rec.Code)
		}
		var body map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body["error"] != "profile_incomplete" || body["redirect"] != "/profile/setup" {
			t.Fatalf("body = %v", body)
		}
	}

	// the profile route itself is not gated
	incomplete, _ := j.GenerateToken("bo@example.com", 2)
	if rec := do(e, "/api/profile", incomplete); rec.Code != http.StatusOK {
		t.Fatalf("profile route: status %d", rec.Code)
	}

	// completing the profile takes effect on the next request
	owners[2].CompanyName = "Bo Supplies"
	if rec := do(e, "/api/items", incomplete); rec.Code != http.StatusOK {
		t.Fatalf("after setup: status %d", rec.Code)
	}
}

func TestRequestIDReachesRequestContext(t *testing.T) {
	e := echo.New()
	e.Use(RequestIDMiddleware())
	e.GET("/", func(c echo.Context) error {
		if logger.FromContext(c.Request().Context()) != logger.FromEcho(c) {
			t.Error("request context and echo context loggers differ")
		}
		return c.NoContent(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "fixed-id")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if got := rec.Header().Get(RequestIDHeader); got != "fixed-id" {
		t.Fatalf("request id = %q", got)
	}
}
