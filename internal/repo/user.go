package repo

import (
	"context"
	"fmt"

	"github.com/Skotchmaster/catalog/internal/models"
	"github.com/Skotchmaster/catalog/pkg/db"
)

// CreateUser relies on the unique index on email (and username) instead of a
// lookup before insert, so two concurrent signups cannot both succeed.
func (r *GormRepo) CreateUser(ctx context.Context, u *models.User) error {
	if err := r.DB.WithContext(ctx).Create(u).Error; err != nil {
		if db.IsUniqueViolation(err) {
			return ErrUserExists
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *GormRepo) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("email = ?", email).Take(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}
