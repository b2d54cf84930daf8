package handler

import (
	"net/http"
	"net/url"
	"time"

	"invoice-service/internal/oauth"
	"invoice-service/internal/service"
	"invoice-service/pkg/logger"
	"invoice-service/prometheus"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const oauthStateCookie = "oauth_state"

type AuthHandler struct {
	auth        *service.AuthService
	google      oauth.Provider
	frontendURL string
	secure      bool
}

// NewAuthHandler wires the auth routes. google may be nil when Google sign-in
// is not configured.
func NewAuthHandler(auth *service.AuthService, google oauth.Provider, frontendURL string, secureCookies bool) *AuthHandler {
	return &AuthHandler{auth: auth, google: google, frontendURL: frontendURL, secure: secureCookies}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(c echo.Context) error {
	var req service.RegisterInput
	if err := bind(c, &req); err != nil {
		prometheus.RecordAuthError("invalid_request")
		return respondError(c, err)
	}
	sess, err := h.auth.Register(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, sess)
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bind(c, &req); err != nil {
		prometheus.RecordAuthError("invalid_request")
		return respondError(c, err)
	}
	sess, err := h.auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, sess)
}

// GoogleStart redirects to Google's consent screen with a fresh state value
// that the callback checks against a cookie.
func (h *AuthHandler) GoogleStart(c echo.Context) error {
	if h.google == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not_configured", "message": "Google sign-in is not configured"})
	}
	state := uuid.New().String()
	c.SetCookie(&http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/auth/google",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return c.Redirect(http.StatusTemporaryRedirect, h.google.AuthCodeURL(state))
}

// GoogleCallback finishes the OAuth flow and hands the token to the frontend.
// Failures land on the frontend login page with an error code.
func (h *AuthHandler) GoogleCallback(c echo.Context) error {
	log := logger.FromEcho(c)
	if h.google == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not_configured", "message": "Google sign-in is not configured"})
	}

	cookie, err := c.Cookie(oauthStateCookie)
	c.SetCookie(&http.Cookie{Name: oauthStateCookie, Value: "", Path: "/auth/google", MaxAge: -1, HttpOnly: true, Secure: h.secure})
	if err != nil || cookie.Value == "" || cookie.Value != c.QueryParam("state") {
		log.Warn("OAuth state mismatch")
		prometheus.RecordAuthError("oauth_state_mismatch")
		return h.redirectFailure(c, "invalid_state")
	}
	if reason := c.QueryParam("error"); reason != "" {
		log.Info("Google sign-in declined", zap.String("reason", reason))
		return h.redirectFailure(c, "access_denied")
	}

	profile, err := h.google.Exchange(c.Request().Context(), c.QueryParam("code"))
	if err != nil {
		log.Warn("Google exchange failed", zap.Error(err))
		prometheus.RecordAuthError("oauth_exchange_failed")
		return h.redirectFailure(c, "oauth_failed")
	}
	sess, err := h.auth.GoogleLogin(c.Request().Context(), profile)
	if err != nil {
		log.Error("Google login failed", zap.Error(err))
		return h.redirectFailure(c, "login_failed")
	}

	target := h.frontendURL + "/auth/callback?" + url.Values{"token": {sess.Token}}.Encode()
	return c.Redirect(http.StatusTemporaryRedirect, target)
}

func (h *AuthHandler) redirectFailure(c echo.Context, code string) error {
	return c.Redirect(http.StatusTemporaryRedirect, h.frontendURL+"/login?"+url.Values{"error": {code}}.Encode())
}
