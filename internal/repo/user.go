package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/geo_forum/internal/models"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrUserAlreadyExist = errors.New("user already exist")
	ErrRoleNotFound     = errors.New("role not found")
	ErrWeakPassword     = errors.New("password does not satisfy policy")
)

func (r *GormRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// CreateUser checks the password policy, hashes the password and inserts
// the user. A taken username is reported as ErrUserAlreadyExist whether it
// is caught by the pre-check or by the unique index.
func (r *GormRepo) CreateUser(ctx context.Context, username, email, password string) (*models.User, error) {
	if err := r.Password.Validate(password); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWeakPassword, err)
	}

	if _, err := r.FindByUsername(ctx, username); err == nil {
		return nil, ErrUserAlreadyExist
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	pwHash, err := r.Hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Username:     username,
		Email:        email,
		PasswordHash: pwHash,
	}
	if err := r.DB.WithContext(ctx).Create(&user).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrUserAlreadyExist
		}
		return nil, err
	}
	return &user, nil
}

// VerifyPassword checks candidate against the user's hash. A nil user still
// pays for one comparison.
func (r *GormRepo) VerifyPassword(user *models.User, candidate string) bool {
	if user == nil {
		r.Hasher.Burn(candidate)
		return false
	}
	return r.Hasher.Check(user.PasswordHash, candidate)
}

// UpgradePasswordHash rewrites the stored hash when it was made with a
// different bcrypt cost. password must already be verified.
func (r *GormRepo) UpgradePasswordHash(ctx context.Context, user *models.User, password string) error {
	if !r.Hasher.NeedsRehash(user.PasswordHash) {
		return nil
	}
	pwHash, err := r.Hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	res := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", user.ID).
		Update("password_hash", pwHash)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	user.PasswordHash = pwHash
	return nil
}

// GetRoles returns the role names of the user, sorted by name.
func (r *GormRepo) GetRoles(ctx context.Context, userID string) ([]string, error) {
	names := []string{}
	err := r.DB.WithContext(ctx).
		Model(&models.Role{}).
		Joins("JOIN user_roles ON user_roles.role_id = roles.id").
		Where("user_roles.user_id = ?", userID).
		Order("roles.name ASC").
		Pluck("roles.name", &names).Error
	if err != nil {
		return nil, err
	}
	return names, nil
}

// AddToRole is a no-op when the user already holds the role.
func (r *GormRepo) AddToRole(ctx context.Context, userID, roleName string) error {
	var role models.Role
	if err := r.DB.WithContext(ctx).Where("name = ?", roleName).First(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %s", ErrRoleNotFound, roleName)
		}
		return err
	}

	link := models.UserRole{UserID: userID, RoleID: role.ID}
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&link).Error
}

func (r *GormRepo) UpdateForceRelogin(ctx context.Context, userID string, value bool) error {
	res := r.DB.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Update("force_relogin", value)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *GormRepo) RoleExists(ctx context.Context, name string) (bool, error) {
	var count int64
	if err := r.DB.WithContext(ctx).Model(&models.Role{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateRole tolerates a concurrent insert of the same role.
func (r *GormRepo) CreateRole(ctx context.Context, name string) error {
	role := models.Role{Name: name}
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&role).Error
}
