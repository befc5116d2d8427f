package team

import (
	"context"
	"log/slog"

	"github.com/lazypos/admin-api/internal"
	"github.com/lazypos/admin-api/internal/cache"
	teamDatamodel "github.com/lazypos/admin-api/internal/core/datamodel/team"
	"github.com/lazypos/admin-api/internal/membership"
)

type RepositoryAPI interface {
	GetByID(ctx context.Context, id int64) (*teamDatamodel.Team, error)
	Create(ctx context.Context, team *teamDatamodel.Team) error
	Update(ctx context.Context, team *teamDatamodel.Team) error
	ActiveTeamIDs(ctx context.Context, userID int64) ([]int64, error)
}

type CacheStore interface {
	Teams(ctx context.Context) ([]teamDatamodel.Team, error)
	Reset(ctx context.Context, types ...cache.EntityType) error
}

type Service struct {
	repo    RepositoryAPI
	members *membership.Manager
	cache   CacheStore
	logger  *slog.Logger
}

func NewService(repo RepositoryAPI, members *membership.Manager, cacheStore CacheStore, logger *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		members: members,
		cache:   cacheStore,
		logger:  logger,
	}
}

// AllTeams lists active teams from the cache snapshot. When forUserID is
// non-nil each row is annotated with whether that user actively belongs.
func (s *Service) AllTeams(ctx context.Context, forUserID *int64) ([]TeamResponse, error) {
	teams, err := s.cache.Teams(ctx)
	if err != nil {
		s.logger.Error("failed to load teams", "error", err)
		return nil, err
	}

	var assigned map[int64]struct{}
	if forUserID != nil {
		ids, err := s.repo.ActiveTeamIDs(ctx, *forUserID)
		if err != nil {
			return nil, err
		}
		assigned = make(map[int64]struct{}, len(ids))
		for _, id := range ids {
			assigned[id] = struct{}{}
		}
	}

	responses := make([]TeamResponse, 0, len(teams))
	for i := range teams {
		if teams[i].Status != 1 {
			continue
		}
		resp := toResponse(&teams[i])
		if assigned != nil {
			member := false
			if _, ok := assigned[resp.ID]; ok {
				member = true
			}
			resp.Assigned = &member
		}
		responses = append(responses, resp)
	}
	return responses, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*TeamResponse, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if row == nil || row.Status == -1 {
		return nil, internal.ErrTeamNotFound
	}
	resp := toResponse(row)
	return &resp, nil
}

func (s *Service) AddOrUpdate(ctx context.Context, principal *internal.Principal, dto TeamDTO) (*TeamResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.ErrDataInvalid
	}

	var row *teamDatamodel.Team
	if dto.ID == 0 {
		row = &teamDatamodel.Team{
			Code:        dto.Code,
			Name:        dto.Name,
			Description: dto.Description,
			LeaderID:    dto.LeaderID,
			Status:      1,
			CreatedBy:   principal.UserID,
		}
		if err := s.repo.Create(ctx, row); err != nil {
			s.logger.Error("failed to create team", "error", err, "code", dto.Code)
			return nil, err
		}
	} else {
		existing, err := s.repo.GetByID(ctx, dto.ID)
		if err != nil {
			return nil, err
		}
		if existing == nil || existing.Status == -1 {
			return nil, internal.ErrTeamNotFound
		}
		existing.Code = dto.Code
		existing.Name = dto.Name
		existing.Description = dto.Description
		existing.LeaderID = dto.LeaderID
		if err := s.repo.Update(ctx, existing); err != nil {
			s.logger.Error("failed to update team", "error", err, "team_id", dto.ID)
			return nil, err
		}
		row = existing
	}

	if err := s.cache.Reset(ctx, cache.TypeTeam); err != nil {
		s.logger.Error("failed to refresh team cache", "error", err)
		return nil, err
	}

	resp := toResponse(row)
	return &resp, nil
}

// Trash soft-deletes or restores a team, refusing deletion while active
// members remain.
func (s *Service) Trash(ctx context.Context, id int64, deleted bool) error {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if row == nil {
		return internal.ErrTeamNotFound
	}

	if deleted {
		count, err := s.members.ActiveMemberCount(ctx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return internal.NewGroupHasMembersError(count)
		}
		row.Status = -1
	} else {
		row.Status = 1
	}

	if err := s.repo.Update(ctx, row); err != nil {
		return err
	}
	return s.cache.Reset(ctx, cache.TypeTeam)
}

// UpdateUsers replaces the team's member set.
func (s *Service) UpdateUsers(ctx context.Context, principal *internal.Principal, teamID int64, userIDs []int64) (bool, error) {
	row, err := s.repo.GetByID(ctx, teamID)
	if err != nil {
		return false, err
	}
	if row == nil || row.Status == -1 {
		return false, internal.ErrTeamNotFound
	}

	group := membership.Group{Kind: "team", ID: row.ID, Name: row.Name}
	return s.members.SetMembers(ctx, group, userIDs, principal.UserID)
}
