// Package middleware holds the revocation gate every protected route passes
// through.
package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/catalog/internal/metrics"
	"github.com/Skotchmaster/catalog/internal/models"
	"github.com/Skotchmaster/catalog/internal/repo"
	"github.com/Skotchmaster/catalog/pkg/logging"
	"github.com/Skotchmaster/catalog/pkg/tokens"
)

const (
	IdentityKey = "identity"
	ClaimsKey   = "claims"

	MsgMissingHeader = "Missing Authorization Header"
	MsgRevoked       = "Token has been revoked"
)

type Ledger interface {
	FindTokenByJTI(ctx context.Context, jti string) (*models.IssuedToken, error)
}

type Gate struct {
	Tokens  *tokens.Issuer
	Ledger  Ledger
	Metrics metrics.Recorder
}

func NewGate(issuer *tokens.Issuer, ledger Ledger, m metrics.Recorder) *Gate {
	if m == nil {
		m = metrics.Nop{}
	}
	return &Gate{Tokens: issuer, Ledger: ledger, Metrics: m}
}

func (g *Gate) RequireAccess(next echo.HandlerFunc) echo.HandlerFunc {
	return g.require(tokens.Access, next)
}

func (g *Gate) RequireRefresh(next echo.HandlerFunc) echo.HandlerFunc {
	return g.require(tokens.Refresh, next)
}

func (g *Gate) require(want tokens.Type, next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		l := logging.FromContext(ctx).With("middleware", "gate", "want", string(want))

		raw, ok := bearer(c.Request().Header.Get(echo.HeaderAuthorization))
		if !ok {
			return g.reject(l, "missing", http.StatusUnauthorized, MsgMissingHeader)
		}

		claims, err := g.Tokens.DecodeType(raw, want)
		if err != nil {
			var wrong *tokens.WrongTypeError
			if errors.As(err, &wrong) {
				return g.reject(l, "wrong_type", http.StatusUnprocessableEntity, wrong.Error())
			}
			l.Debug("gate_decode_failed", "error", err)
			return g.reject(l, "invalid", http.StatusUnprocessableEntity, decodeMessage(err))
		}

		row, err := g.Ledger.FindTokenByJTI(ctx, claims.JTI())
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return g.reject(l, "unknown_jti", http.StatusUnprocessableEntity, "Token was not issued by this service")
			}
			l.Error("gate_ledger_failed", "status", 500, "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error").SetInternal(err)
		}
		if row.Revoked {
			return g.reject(l, "revoked", http.StatusUnauthorized, MsgRevoked)
		}

		c.Set(IdentityKey, claims.Identity())
		c.Set(ClaimsKey, claims)
		return next(c)
	}
}

func (g *Gate) reject(l *slog.Logger, reason string, code int, msg string) error {
	g.Metrics.GateRejected(reason)
	l.Warn("gate_rejected", "status", code, "reason", reason)
	return echo.NewHTTPError(code, msg)
}

func bearer(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

func decodeMessage(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "Token has expired"
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "Signature verification failed"
	default:
		return "Invalid token"
	}
}

// Identity returns the token subject stored by the gate.
func Identity(c echo.Context) string {
	s, _ := c.Get(IdentityKey).(string)
	return s
}

func Claims(c echo.Context) *tokens.Claims {
	claims, _ := c.Get(ClaimsKey).(*tokens.Claims)
	return claims
}
