package postgres

import (
	"context"
	"errors"

	"github.com/lazypos/admin-api/internal/auth"
	roleDatamodel "github.com/lazypos/admin-api/internal/core/datamodel/role"
	userDatamodel "github.com/lazypos/admin-api/internal/core/datamodel/user"
	"gorm.io/gorm"
)

type AuthRepository struct {
	db *gorm.DB
}

func NewAuthRepository(db *gorm.DB) auth.UserRepository {
	return &AuthRepository{db: db}
}

func (r *AuthRepository) GetByUserName(ctx context.Context, userName string) (*userDatamodel.User, error) {
	var user userDatamodel.User
	err := r.db.WithContext(ctx).Where("user_name = ?", userName).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *AuthRepository) GetByID(ctx context.Context, userID int64) (*userDatamodel.User, error) {
	var user userDatamodel.User
	err := r.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *AuthRepository) ActiveRoleIDs(ctx context.Context, userID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&roleDatamodel.UserRole{}).
		Where("user_id = ? AND status = ?", userID, 1).
		Pluck("role_id", &ids).Error
	return ids, err
}
