package postgres

import (
	"context"
	"errors"

	teamDatamodel "github.com/lazypos/admin-api/internal/core/datamodel/team"
	"github.com/lazypos/admin-api/internal/team"
	"gorm.io/gorm"
)

type TeamRepository struct {
	db *gorm.DB
}

func NewTeamRepository(db *gorm.DB) team.RepositoryAPI {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) ActiveTeamIDs(ctx context.Context, userID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&teamDatamodel.UserTeam{}).
		Where("user_id = ? AND status = 1", userID).
		Pluck("team_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *TeamRepository) GetByID(ctx context.Context, id int64) (*teamDatamodel.Team, error) {
	var row teamDatamodel.Team
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *TeamRepository) Create(ctx context.Context, row *teamDatamodel.Team) error {
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *TeamRepository) Update(ctx context.Context, row *teamDatamodel.Team) error {
	return r.db.WithContext(ctx).Save(row).Error
}
