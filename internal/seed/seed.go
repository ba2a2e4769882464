// Package seed makes sure the roles and the bootstrap admin account exist.
package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/Skotchmaster/geo_forum/internal/policy"
	"github.com/Skotchmaster/geo_forum/internal/repo"
	"github.com/Skotchmaster/geo_forum/pkg/logging"
)

type Config struct {
	AdminUsername string
	AdminEmail    string
	AdminPassword string
}

type Seeder struct {
	Repo   *repo.GormRepo
	Config Config
}

// Seed is safe to run on every start. Missing roles are created; the admin
// is created only when no user with AdminUsername exists. An existing admin
// keeps its password and roles.
func (s *Seeder) Seed(ctx context.Context) error {
	l := logging.FromContext(ctx).With("svc", "seed")

	for _, role := range policy.AllRoles() {
		exists, err := s.Repo.RoleExists(ctx, string(role))
		if err != nil {
			return fmt.Errorf("check role %s: %w", role, err)
		}
		if exists {
			continue
		}
		if err := s.Repo.CreateRole(ctx, string(role)); err != nil {
			return fmt.Errorf("create role %s: %w", role, err)
		}
		l.Info("role_created", "role", role)
	}

	if s.Config.AdminUsername == "" {
		return errors.New("seed: admin username is empty")
	}

	_, err := s.Repo.FindByUsername(ctx, s.Config.AdminUsername)
	if err == nil {
		l.Debug("admin_exists", "username", s.Config.AdminUsername)
		return nil
	}
	if !errors.Is(err, repo.ErrUserNotFound) {
		return fmt.Errorf("find admin: %w", err)
	}

	err = s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		admin, err := tx.CreateUser(ctx, s.Config.AdminUsername, s.Config.AdminEmail, s.Config.AdminPassword)
		if err != nil {
			return err
		}
		return tx.AddToRole(ctx, admin.ID, string(policy.Admin))
	})
	switch {
	case errors.Is(err, repo.ErrUserAlreadyExist):
		// another instance won the race
		return nil
	case err != nil:
		return fmt.Errorf("create admin: %w", err)
	}

	l.Info("admin_created", "username", s.Config.AdminUsername)
	return nil
}
