package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Skotchmaster/catalog/internal/domain"
	"github.com/Skotchmaster/catalog/internal/events"
	"github.com/Skotchmaster/catalog/internal/metrics"
	"github.com/Skotchmaster/catalog/internal/models"
	"github.com/Skotchmaster/catalog/internal/repo"
	"github.com/Skotchmaster/catalog/pkg/hash"
	"github.com/Skotchmaster/catalog/pkg/logging"
	"github.com/Skotchmaster/catalog/pkg/tokens"
)

type AuthService struct {
	Repo    *repo.GormRepo
	Tokens  *tokens.Issuer
	Events  events.Publisher
	Metrics metrics.Recorder
}

type AuthResult struct {
	AccessToken  string
	RefreshToken string
	User         *models.User
}

func (s *AuthService) Signup(ctx context.Context, email, password string) (*AuthResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.signup")
	email = strings.TrimSpace(email)

	if !domain.ValidEmail(email) {
		s.attempt("signup", "invalid")
		return nil, ErrInvalidEmail
	}
	if !domain.ValidPassword(password) {
		s.attempt("signup", "invalid")
		return nil, ErrInvalidPassword
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		l.Error("signup_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	user := &models.User{
		Email:        email,
		Username:     email,
		PasswordHash: pwHash,
	}

	var res *AuthResult
	err = s.Repo.InTx(ctx, func(tx *repo.GormRepo) error {
		if err := tx.CreateUser(ctx, user); err != nil {
			return err
		}
		pair, err := s.mintPair(ctx, tx, email)
		if err != nil {
			return err
		}
		res = pair
		return nil
	})
	if err != nil {
		if errors.Is(err, repo.ErrUserExists) {
			l.Warn("signup_error", "status", 400, "reason", "user already exists")
			s.attempt("signup", "conflict")
			return nil, ErrUserExists
		}
		l.Error("signup_error", "status", 500, "error", err)
		s.attempt("signup", "error")
		return nil, fmt.Errorf("signup: %w", err)
	}
	res.User = user

	s.attempt("signup", "success")
	s.issued(tokens.Access, tokens.Refresh)
	events.Emit(ctx, s.Events, events.TopicUser, email, events.Event{
		Type:     "user_registered",
		Identity: email,
		Attrs:    map[string]any{"user_id": user.ID},
	})
	l.Info("signup_success", "user_id", user.ID)
	return res, nil
}

func (s *AuthService) Signin(ctx context.Context, email, password string) (*AuthResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.signin")
	email = strings.TrimSpace(email)

	user, err := s.Repo.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("signin_failed", "status", 401, "reason", "unknown email")
			s.attempt("signin", "rejected")
			return nil, ErrBadCredentials
		}
		l.Error("signin_failed", "status", 500, "error", err)
		s.attempt("signin", "error")
		return nil, fmt.Errorf("signin: %w", err)
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("signin_failed", "status", 401, "reason", "password mismatch")
		s.attempt("signin", "rejected")
		return nil, ErrBadCredentials
	}

	var res *AuthResult
	err = s.Repo.InTx(ctx, func(tx *repo.GormRepo) error {
		pair, err := s.mintPair(ctx, tx, user.Email)
		res = pair
		return err
	})
	if err != nil {
		l.Error("signin_failed", "status", 500, "error", err)
		s.attempt("signin", "error")
		return nil, fmt.Errorf("signin: %w", err)
	}
	res.User = user

	s.attempt("signin", "success")
	s.issued(tokens.Access, tokens.Refresh)
	events.Emit(ctx, s.Events, events.TopicUser, user.Email, events.Event{
		Type:     "user_signed_in",
		Identity: user.Email,
	})
	l.Info("signin_success", "user_id", user.ID)
	return res, nil
}

// RefreshAccessToken mints a new access token for the subject of an already
// gated refresh token. The refresh token itself stays valid.
func (s *AuthService) RefreshAccessToken(ctx context.Context, claims *tokens.Claims) (string, error) {
	if claims == nil || claims.Type != tokens.Refresh {
		s.attempt("refresh", "rejected")
		return "", ErrInvalidToken
	}

	issued, err := s.mint(ctx, s.Repo, claims.Identity(), tokens.Access)
	if err != nil {
		s.attempt("refresh", "error")
		logging.FromContext(ctx).Error("refresh_failed", "status", 500, "error", err)
		return "", fmt.Errorf("refresh: %w", err)
	}
	s.attempt("refresh", "success")
	s.issued(tokens.Access)
	return issued.Token, nil
}

func (s *AuthService) ListOwnTokens(ctx context.Context, identity string) ([]models.IssuedToken, error) {
	return s.Repo.ListTokensByOwner(ctx, identity)
}

// SetTokenRevoked flips the revoked flag of a ledger row owned by identity.
// Rows owned by someone else look exactly like missing rows.
func (s *AuthService) SetTokenRevoked(ctx context.Context, id uint, identity string, revoke bool) (*models.IssuedToken, error) {
	l := logging.FromContext(ctx).With("svc", "auth.revoke", "token_id", id)

	row, err := s.Repo.SetRevoked(ctx, id, identity, revoke)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("revoke_failed", "status", 404, "reason", "token not found for caller")
			return nil, ErrNotFound
		}
		l.Error("revoke_failed", "status", 500, "error", err)
		return nil, fmt.Errorf("revoke: %w", err)
	}

	if s.Metrics != nil {
		s.Metrics.TokenRevocation(revoke)
	}
	evType := "token_unrevoked"
	if revoke {
		evType = "token_revoked"
	}
	events.Emit(ctx, s.Events, events.TopicToken, identity, events.Event{
		Type:     evType,
		Identity: identity,
		Attrs:    map[string]any{"token_id": row.ID, "jti": row.JTI},
	})
	l.Info("revoke_success", "revoked", revoke)
	return row, nil
}

func (s *AuthService) mintPair(ctx context.Context, tx *repo.GormRepo, identity string) (*AuthResult, error) {
	access, err := s.mint(ctx, tx, identity, tokens.Access)
	if err != nil {
		return nil, err
	}
	refresh, err := s.mint(ctx, tx, identity, tokens.Refresh)
	if err != nil {
		return nil, err
	}
	return &AuthResult{AccessToken: access.Token, RefreshToken: refresh.Token}, nil
}

// mint signs a token and records it in the ledger through r, which may be a
// transaction-bound repo.
func (s *AuthService) mint(ctx context.Context, r *repo.GormRepo, identity string, typ tokens.Type) (*tokens.Issued, error) {
	issued, err := s.Tokens.Issue(identity, typ)
	if err != nil {
		return nil, err
	}
	if err := r.RecordToken(ctx, &models.IssuedToken{
		JTI:       issued.JTI,
		TokenType: string(issued.Type),
		Owner:     issued.Identity,
		ExpiresAt: issued.ExpiresAt,
	}); err != nil {
		return nil, err
	}
	return issued, nil
}

func (s *AuthService) attempt(op, result string) {
	if s.Metrics != nil {
		s.Metrics.AuthAttempt(op, result)
	}
}

func (s *AuthService) issued(types ...tokens.Type) {
	if s.Metrics == nil {
		return
	}
	for _, t := range types {
		s.Metrics.TokenIssued(string(t))
	}
}
