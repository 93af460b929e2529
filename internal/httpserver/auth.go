package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

type AuthHTTP struct {
	Svc           *service.AuthService
	SecureCookies bool
}

func (h *AuthHTTP) Signup(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.signup")

	var req transport.SignupRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("signup_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	oldInput := map[string]string{"email": req.Email}
	if err := c.Validate(&req); err != nil {
		return fail(c, l, "signup_error", err, oldInput)
	}

	user, err := h.Svc.Register(ctx, req.Email, req.Password)
	if err != nil {
		return fail(c, l, "signup_error", err, oldInput)
	}

	l.Info("signup_success", "user_id", user.ID)
	return c.JSON(http.StatusCreated, transport.UserResponse{ID: user.ID, Email: user.Email})
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	oldInput := map[string]string{"email": req.Email}
	if err := c.Validate(&req); err != nil {
		return fail(c, l, "login_error", err, oldInput)
	}

	pair, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		return fail(c, l, "login_error", err, oldInput)
	}

	h.setTokens(c, pair)
	return c.JSON(http.StatusOK, map[string]string{"accessToken": pair.AccessToken})
}

func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.refresh")

	cookie, err := c.Cookie(tokens.RefreshCookie)
	if err != nil || cookie.Value == "" {
		l.Warn("refresh_error", "status", 401, "reason", "no refresh cookie")
		return echo.NewHTTPError(http.StatusUnauthorized, "refresh token missing")
	}

	pair, err := h.Svc.Refresh(ctx, cookie.Value)
	if err != nil {
		h.clearTokens(c)
		return fail(c, l, "refresh_error", err, nil)
	}

	h.setTokens(c, pair)
	return c.JSON(http.StatusOK, map[string]string{"accessToken": pair.AccessToken})
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.logout")

	if cookie, err := c.Cookie(tokens.RefreshCookie); err == nil && cookie.Value != "" {
		if err := h.Svc.Logout(ctx, cookie.Value); err != nil {
			l.Error("logout_error", "status", 500, "reason", "cannot revoke refresh token", "error", err)
		}
	}

	h.clearTokens(c)
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHTTP) setTokens(c echo.Context, pair *tokens.Pair) {
	c.SetCookie(tokens.CreateCookie(tokens.AccessCookie, pair.AccessToken, "/", pair.AccessExp, h.SecureCookies))
	c.SetCookie(tokens.CreateCookie(tokens.RefreshCookie, pair.RefreshToken, "/", pair.RefreshExp, h.SecureCookies))
}

func (h *AuthHTTP) clearTokens(c echo.Context) {
	for _, name := range []string{tokens.AccessCookie, tokens.RefreshCookie} {
		c.SetCookie(tokens.DeleteCookie(name, "/", h.SecureCookies))
	}
}
