package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/catalog/internal/middleware"
	"github.com/Skotchmaster/catalog/internal/service"
	"github.com/Skotchmaster/catalog/internal/transport"
	"github.com/Skotchmaster/catalog/pkg/logging"
)

const (
	msgInvalidEmail    = "Invalid email format"
	msgInvalidPassword = "Invalid password. Should be at least 5 characters long and include a number and a special character"
	msgUserExists      = "User already exists"
	msgBadCredentials  = "Bad email or password"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

func (h *AuthHTTP) Signup(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.signup")

	var req transport.CredentialsRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("signup_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Signup(ctx, deref(req.Email), deref(req.Password))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidEmail):
			return echo.NewHTTPError(http.StatusBadRequest, msgInvalidEmail)
		case errors.Is(err, service.ErrInvalidPassword):
			return echo.NewHTTPError(http.StatusBadRequest, msgInvalidPassword)
		case errors.Is(err, service.ErrUserExists):
			return echo.NewHTTPError(http.StatusBadRequest, msgUserExists)
		}
		return echo.NewHTTPError(http.StatusInternalServerError).SetInternal(err)
	}

	return respond(c, http.StatusCreated, []transport.AuthResponse{{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		User:         res.User,
	}})
}

func (h *AuthHTTP) Signin(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.signin")

	var req transport.CredentialsRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("signin_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Email == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing 'email' in body")
	}
	if req.Password == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing 'password' in body")
	}

	res, err := h.Svc.Signin(ctx, *req.Email, *req.Password)
	if err != nil {
		if errors.Is(err, service.ErrBadCredentials) {
			return echo.NewHTTPError(http.StatusUnauthorized, msgBadCredentials)
		}
		return echo.NewHTTPError(http.StatusInternalServerError).SetInternal(err)
	}

	return respond(c, http.StatusOK, []transport.AuthResponse{{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		User:         res.User,
	}})
}

func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()

	access, err := h.Svc.RefreshAccessToken(ctx, middleware.Claims(c))
	if err != nil {
		if errors.Is(err, service.ErrInvalidToken) {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, "Only refresh tokens are allowed")
		}
		return echo.NewHTTPError(http.StatusInternalServerError).SetInternal(err)
	}

	return respond(c, http.StatusOK, []transport.AuthResponse{{AccessToken: access}})
}

func (h *AuthHTTP) ListTokens(c echo.Context) error {
	ctx := c.Request().Context()

	rows, err := h.Svc.ListOwnTokens(ctx, middleware.Identity(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError).SetInternal(err)
	}
	return respond(c, http.StatusOK, rows)
}

func (h *AuthHTTP) RevokeToken(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.revoke")

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		l.Warn("revoke_error", "status", 400, "reason", "id is not an integer", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "Token ID should be an integer")
	}

	var req transport.RevokeRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("revoke_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Revoke == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing 'revoke' in body")
	}

	if _, err := h.Svc.SetTokenRevoked(ctx, uint(id), middleware.Identity(c), *req.Revoke); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "The specified token was not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError).SetInternal(err)
	}

	msg := "Token unrevoked"
	if *req.Revoke {
		msg = "Token revoked"
	}
	return respondMessage(c, http.StatusOK, msg, nil)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
