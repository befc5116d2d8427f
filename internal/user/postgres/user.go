package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	roleDatamodel "github.com/lazypos/admin-api/internal/core/datamodel/role"
	teamDatamodel "github.com/lazypos/admin-api/internal/core/datamodel/team"
	userDatamodel "github.com/lazypos/admin-api/internal/core/datamodel/user"
	"github.com/lazypos/admin-api/internal/membership"
	"github.com/lazypos/admin-api/internal/user"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*userDatamodel.User, error) {
	var row userDatamodel.User
	err := r.db.WithContext(ctx).First(&row, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *UserRepository) Create(ctx context.Context, u *userDatamodel.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *UserRepository) Update(ctx context.Context, u *userDatamodel.User) error {
	return r.db.WithContext(ctx).Save(u).Error
}

// RoleAssignments lists all of the user's user_roles rows. Member.UserID
// carries the role id here; the diff engine only compares ids.
func (r *UserRepository) RoleAssignments(ctx context.Context, userID int64) ([]membership.Member, error) {
	var rows []roleDatamodel.UserRole
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	members := make([]membership.Member, 0, len(rows))
	for _, row := range rows {
		members = append(members, membership.Member{UserID: row.RoleID, Status: membership.Status(row.Status)})
	}
	return members, nil
}

func (r *UserRepository) ApplyRoles(ctx context.Context, userID int64, reactivate, insert []int64, actorID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&roleDatamodel.UserRole{}).
			Where("user_id = ? AND status = ?", userID, 1).
			Update("status", 0).Error; err != nil {
			return err
		}
		if len(reactivate) > 0 {
			if err := tx.Model(&roleDatamodel.UserRole{}).
				Where("user_id = ? AND role_id IN ?", userID, reactivate).
				Update("status", 1).Error; err != nil {
				return err
			}
		}
		for _, roleID := range insert {
			row := roleDatamodel.UserRole{
				UserID:    userID,
				RoleID:    roleID,
				Status:    1,
				CreatedBy: actorID,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *UserRepository) TeamAssignments(ctx context.Context, userID int64) ([]membership.Member, error) {
	var rows []teamDatamodel.UserTeam
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	members := make([]membership.Member, 0, len(rows))
	for _, row := range rows {
		members = append(members, membership.Member{UserID: row.TeamID, Status: membership.Status(row.Status)})
	}
	return members, nil
}

func (r *UserRepository) ApplyTeams(ctx context.Context, userID int64, reactivate, insert []int64, actorID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&teamDatamodel.UserTeam{}).
			Where("user_id = ? AND status = ?", userID, 1).
			Update("status", 0).Error; err != nil {
			return err
		}
		if len(reactivate) > 0 {
			if err := tx.Model(&teamDatamodel.UserTeam{}).
				Where("user_id = ? AND team_id IN ?", userID, reactivate).
				Update("status", 1).Error; err != nil {
				return err
			}
		}
		for _, teamID := range insert {
			row := teamDatamodel.UserTeam{
				UserID:    userID,
				TeamID:    teamID,
				Status:    1,
				CreatedBy: actorID,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *UserRepository) ActivePermissionIDs(ctx context.Context, userID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).Model(&roleDatamodel.UserPermission{}).
		Where("user_id = ? AND allow = ? AND status = ?", userID, true, 1).
		Pluck("permission_id", &ids).Error
	return ids, err
}

// UpsertPermissions writes the user's direct grant rows. A row is created on
// the first grant and toggled through Allow afterwards, never deleted.
func (r *UserRepository) UpsertPermissions(ctx context.Context, userID int64, grants []user.Grant, actorID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, g := range grants {
			var row roleDatamodel.UserPermission
			err := tx.Where("user_id = ? AND permission_id = ?", userID, g.PermissionID).First(&row).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				row = roleDatamodel.UserPermission{
					UserID:       userID,
					PermissionID: g.PermissionID,
					Allow:        g.Allow,
					Type:         g.Type,
					Status:       1,
					GrantedBy:    &actorID,
				}
				if err := tx.Create(&row).Error; err != nil {
					return err
				}
				continue
			}
			if err != nil {
				return err
			}
			row.Allow = g.Allow
			row.Type = g.Type
			row.Status = 1
			row.GrantedBy = &actorID
			if err := tx.Save(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
