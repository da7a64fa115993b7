package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Skotchmaster/catalog/internal/models"
	"github.com/Skotchmaster/catalog/pkg/db"
)

func (r *GormRepo) RecordToken(ctx context.Context, t *models.IssuedToken) error {
	t.Revoked = false
	if err := r.DB.WithContext(ctx).Create(t).Error; err != nil {
		if db.IsUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrDuplicateToken, t.JTI)
		}
		return fmt.Errorf("record token: %w", err)
	}
	return nil
}

func (r *GormRepo) FindTokenByJTI(ctx context.Context, jti string) (*models.IssuedToken, error) {
	var token models.IssuedToken
	if err := r.DB.WithContext(ctx).Where("jti = ?", jti).Take(&token).Error; err != nil {
		return nil, notFound(err)
	}
	return &token, nil
}

func (r *GormRepo) FindTokenByID(ctx context.Context, id uint) (*models.IssuedToken, error) {
	var token models.IssuedToken
	if err := r.DB.WithContext(ctx).Take(&token, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &token, nil
}

func (r *GormRepo) ListTokensByOwner(ctx context.Context, owner string) ([]models.IssuedToken, error) {
	tokens := make([]models.IssuedToken, 0)
	if err := r.DB.WithContext(ctx).
		Where("owner = ?", owner).
		Order("id DESC").
		Find(&tokens).Error; err != nil {
		return nil, err
	}
	return tokens, nil
}

// SetRevoked flips the flag on a row owned by owner. Setting the value a row
// already has is a successful no-op. Rows of other owners are reported as
// ErrNotFound.
func (r *GormRepo) SetRevoked(ctx context.Context, id uint, owner string, revoked bool) (*models.IssuedToken, error) {
	token, err := r.FindTokenByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if token.Owner != owner {
		return nil, ErrNotFound
	}

	if err := r.DB.WithContext(ctx).
		Model(&models.IssuedToken{}).
		Where("id = ?", token.ID).
		Update("revoked", revoked).Error; err != nil {
		return nil, fmt.Errorf("set revoked: %w", err)
	}

	token.Revoked = revoked
	return token, nil
}

func (r *GormRepo) DeleteExpiredTokens(ctx context.Context, before time.Time) (int64, error) {
	res := r.DB.WithContext(ctx).
		Where("expires_at < ?", before).
		Delete(&models.IssuedToken{})
	return res.RowsAffected, res.Error
}
