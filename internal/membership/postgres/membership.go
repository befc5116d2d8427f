package postgres

import (
	"context"

	roleDatamodel "github.com/lazypos/admin-api/internal/core/datamodel/role"
	teamDatamodel "github.com/lazypos/admin-api/internal/core/datamodel/team"
	userDatamodel "github.com/lazypos/admin-api/internal/core/datamodel/user"
	"github.com/lazypos/admin-api/internal/membership"
	"gorm.io/gorm"
)

// RoleMemberRepository stores role membership as user_roles rows.
type RoleMemberRepository struct {
	db *gorm.DB
}

func NewRoleMemberRepository(db *gorm.DB) membership.Repository {
	return &RoleMemberRepository{db: db}
}

func (r *RoleMemberRepository) Members(ctx context.Context, roleID int64) ([]membership.Member, error) {
	var rows []roleDatamodel.UserRole
	err := r.db.WithContext(ctx).Where("role_id = ?", roleID).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	members := make([]membership.Member, 0, len(rows))
	for _, row := range rows {
		members = append(members, membership.Member{UserID: row.UserID, Status: membership.Status(row.Status)})
	}
	return members, nil
}

func (r *RoleMemberRepository) Apply(ctx context.Context, roleID int64, reactivate, insert []int64, actorID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&roleDatamodel.UserRole{}).
			Where("role_id = ? AND status = ?", roleID, 1).
			Update("status", 0).Error; err != nil {
			return err
		}
		if len(reactivate) > 0 {
			if err := tx.Model(&roleDatamodel.UserRole{}).
				Where("role_id = ? AND user_id IN ?", roleID, reactivate).
				Update("status", 1).Error; err != nil {
				return err
			}
		}
		for _, userID := range insert {
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

func (r *RoleMemberRepository) ActiveCount(ctx context.Context, roleID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&roleDatamodel.UserRole{}).
		Where("role_id = ? AND status = ?", roleID, 1).
		Count(&count).Error
	return count, err
}

// TeamMemberRepository stores team membership as user_teams rows.
type TeamMemberRepository struct {
	db *gorm.DB
}

func NewTeamMemberRepository(db *gorm.DB) membership.Repository {
	return &TeamMemberRepository{db: db}
}

func (r *TeamMemberRepository) Members(ctx context.Context, teamID int64) ([]membership.Member, error) {
	var rows []teamDatamodel.UserTeam
	err := r.db.WithContext(ctx).Where("team_id = ?", teamID).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	members := make([]membership.Member, 0, len(rows))
	for _, row := range rows {
		members = append(members, membership.Member{UserID: row.UserID, Status: membership.Status(row.Status)})
	}
	return members, nil
}

func (r *TeamMemberRepository) Apply(ctx context.Context, teamID int64, reactivate, insert []int64, actorID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&teamDatamodel.UserTeam{}).
			Where("team_id = ? AND status = ?", teamID, 1).
			Update("status", 0).Error; err != nil {
			return err
		}
		if len(reactivate) > 0 {
			if err := tx.Model(&teamDatamodel.UserTeam{}).
				Where("team_id = ? AND user_id IN ?", teamID, reactivate).
				Update("status", 1).Error; err != nil {
				return err
			}
		}
		for _, userID := range insert {
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

func (r *TeamMemberRepository) ActiveCount(ctx context.Context, teamID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&teamDatamodel.UserTeam{}).
		Where("team_id = ? AND status = ?", teamID, 1).
		Count(&count).Error
	return count, err
}

// DepartmentMemberRepository treats the users.department_id column as the
// membership table, so there are no inactive rows to reactivate.
type DepartmentMemberRepository struct {
	db *gorm.DB
}

func NewDepartmentMemberRepository(db *gorm.DB) membership.Repository {
	return &DepartmentMemberRepository{db: db}
}

func (r *DepartmentMemberRepository) Members(ctx context.Context, departmentID int64) ([]membership.Member, error) {
	var ids []int64
	err := r.db.WithContext(ctx).Model(&userDatamodel.User{}).
		Where("department_id = ? AND status <> ?", departmentID, -1).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	members := make([]membership.Member, 0, len(ids))
	for _, id := range ids {
		members = append(members, membership.Member{UserID: id, Status: membership.StatusActive})
	}
	return members, nil
}

func (r *DepartmentMemberRepository) Apply(ctx context.Context, departmentID int64, reactivate, insert []int64, actorID int64) error {
	next := append(append([]int64{}, reactivate...), insert...)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		clear := tx.Model(&userDatamodel.User{}).Where("department_id = ?", departmentID)
		if len(next) > 0 {
			clear = clear.Where("id NOT IN ?", next)
		}
		if err := clear.Update("department_id", nil).Error; err != nil {
			return err
		}
		if len(next) > 0 {
			if err := tx.Model(&userDatamodel.User{}).
				Where("id IN ?", next).
				Update("department_id", departmentID).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *DepartmentMemberRepository) ActiveCount(ctx context.Context, departmentID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&userDatamodel.User{}).
		Where("department_id = ? AND status <> ?", departmentID, -1).
		Count(&count).Error
	return count, err
}
