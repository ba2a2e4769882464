package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Skotchmaster/geo_forum/internal/events"
	"github.com/Skotchmaster/geo_forum/internal/models"
	"github.com/Skotchmaster/geo_forum/internal/policy"
	"github.com/Skotchmaster/geo_forum/internal/repo"
	"github.com/Skotchmaster/geo_forum/internal/tokens"
	"github.com/Skotchmaster/geo_forum/internal/transport"
	"github.com/Skotchmaster/geo_forum/pkg/logging"
)

type AuthService struct {
	Repo   *repo.GormRepo
	Tokens *tokens.Service
	Events events.Publisher
}

func (s *AuthService) Register(ctx context.Context, req transport.RegisterRequest) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	var user *models.User
	err := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		u, err := tx.CreateUser(ctx, req.Username, req.Email, req.Password)
		if err != nil {
			return err
		}
		if err := tx.AddToRole(ctx, u.ID, string(policy.ForumUser)); err != nil {
			return err
		}
		user = u
		return nil
	})
	switch {
	case errors.Is(err, repo.ErrUserAlreadyExist):
		l.Warn("register_error", "status", 422, "reason", "user name already taken")
		return nil, ErrConflict
	case errors.Is(err, repo.ErrWeakPassword):
		l.Warn("register_error", "status", 422, "reason", "password policy", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	case err != nil:
		l.Error("register_error", "status", 500, "error", err)
		return nil, err
	}

	events.Emit(ctx, s.Events, events.TopicUserEvents, user.ID, events.Event{
		Type:     "user_registered",
		UserID:   user.ID,
		Username: user.Username,
	})
	l.Info("register_success", "user_id", user.ID)
	return user, nil
}

// Login answers ErrInvalidCredentials for both an unknown username and a
// wrong password.
func (s *AuthService) Login(ctx context.Context, req transport.LoginRequest) (*transport.TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	user, err := s.Repo.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			s.Repo.VerifyPassword(nil, req.Password)
			l.Warn("login_failed", "status", 422, "reason", "unknown user")
			return nil, ErrInvalidCredentials
		}
		l.Error("login_failed", "status", 500, "error", err)
		return nil, err
	}

	if !s.Repo.VerifyPassword(user, req.Password) {
		l.Warn("login_failed", "status", 422, "reason", "wrong password", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}
	if err := s.Repo.UpgradePasswordHash(ctx, user, req.Password); err != nil {
		l.Warn("password_rehash_failed", "user_id", user.ID, "error", err)
	}

	if user.ForceRelogin {
		if err := s.Repo.UpdateForceRelogin(ctx, user.ID, false); err != nil {
			l.Error("login_failed", "status", 500, "reason", "cannot clear force relogin", "error", err)
			return nil, err
		}
	}

	pair, err := s.issuePair(ctx, user)
	if err != nil {
		l.Error("login_failed", "status", 500, "error", err)
		return nil, err
	}

	events.Emit(ctx, s.Events, events.TopicUserEvents, user.ID, events.Event{
		Type:     "user_logged_in",
		UserID:   user.ID,
		Username: user.Username,
	})
	l.Info("login_success", "user_id", user.ID)
	return pair, nil
}

// Refresh exchanges a refresh token for a new pair. Roles are re-read from
// the store so membership changes apply from the next refresh on.
func (s *AuthService) Refresh(ctx context.Context, req transport.RefreshRequest) (*transport.TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	claims, ok := s.Tokens.TryParseRefreshToken(req.RefreshToken)
	if !ok {
		l.Warn("refresh_failed", "status", 422, "reason", "token rejected")
		return nil, ErrInvalidRefreshToken
	}

	user, err := s.Repo.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			l.Warn("refresh_failed", "status", 422, "reason", "subject not found", "user_id", claims.Subject)
			return nil, ErrInvalidRefreshToken
		}
		l.Error("refresh_failed", "status", 500, "error", err)
		return nil, err
	}

	if user.ForceRelogin {
		l.Warn("refresh_failed", "status", 422, "reason", "force relogin", "user_id", user.ID)
		return nil, ErrInvalidRefreshToken
	}

	pair, err := s.issuePair(ctx, user)
	if err != nil {
		l.Error("refresh_failed", "status", 500, "error", err)
		return nil, err
	}
	return pair, nil
}

// Logout invalidates every refresh token the caller holds.
func (s *AuthService) Logout(ctx context.Context, id *policy.Identity) error {
	l := logging.FromContext(ctx).With("svc", "auth.logout")

	if id == nil || id.Subject == "" {
		return policy.ErrUnauthenticated
	}
	if err := s.Repo.UpdateForceRelogin(ctx, id.Subject, true); err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			return ErrNotFound
		}
		l.Error("logout_failed", "status", 500, "error", err)
		return err
	}

	events.Emit(ctx, s.Events, events.TopicUserEvents, id.Subject, events.Event{
		Type:     "user_logged_out",
		UserID:   id.Subject,
		Username: id.Name,
	})
	l.Info("logout_success", "user_id", id.Subject)
	return nil
}

// ForceRelogin lets an admin invalidate another user's refresh tokens.
func (s *AuthService) ForceRelogin(ctx context.Context, id *policy.Identity, userID string) error {
	l := logging.FromContext(ctx).With("svc", "auth.force_relogin")

	target, err := s.Repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			return ErrNotFound
		}
		return err
	}
	if err := policy.Check(policy.UserForceRelogin, id, target.ID); err != nil {
		return err
	}
	if err := s.Repo.UpdateForceRelogin(ctx, target.ID, true); err != nil {
		return err
	}

	l.Info("force_relogin_success", "user_id", target.ID, "by", id.Subject)
	return nil
}

func (s *AuthService) issuePair(ctx context.Context, user *models.User) (*transport.TokenPair, error) {
	roles, err := s.Repo.GetRoles(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("load roles: %w", err)
	}

	access, err := s.Tokens.CreateAccessToken(user.Username, user.ID, roles)
	if err != nil {
		return nil, err
	}
	refresh, err := s.Tokens.CreateRefreshToken(user.ID)
	if err != nil {
		return nil, err
	}
	return &transport.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
