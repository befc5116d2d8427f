package cache

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	departmentmodel "github.com/lazypos/admin-api/internal/core/datamodel/department"
	permissionmodel "github.com/lazypos/admin-api/internal/core/datamodel/permission"
	rolemodel "github.com/lazypos/admin-api/internal/core/datamodel/role"
	teammodel "github.com/lazypos/admin-api/internal/core/datamodel/team"
	usermodel "github.com/lazypos/admin-api/internal/core/datamodel/user"
)

// EntityType names a cached entity family. Reset accepts any subset; an
// empty set means everything.
type EntityType string

const (
	TypeUser       EntityType = "user"
	TypeTeam       EntityType = "team"
	TypeRole       EntityType = "role"
	TypeDepartment EntityType = "department"
	TypePermission EntityType = "permission"
	TypeLink       EntityType = "link"
)

var allTypes = []EntityType{TypeUser, TypeTeam, TypeRole, TypeDepartment, TypePermission, TypeLink}

func ParseEntityType(s string) (EntityType, error) {
	t := EntityType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range allTypes {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown cache entity type %q", s)
}

// Loader fetches full snapshots from the backing store. Each method returns
// every row the cache should hold, including inactive ones; filtering is the
// reader's concern.
type Loader interface {
	LoadUsers(ctx context.Context) ([]usermodel.User, error)
	LoadTeams(ctx context.Context) ([]teammodel.Team, error)
	LoadRoles(ctx context.Context) ([]rolemodel.Role, error)
	LoadDepartments(ctx context.Context) ([]departmentmodel.Department, error)
	LoadPermissions(ctx context.Context) ([]permissionmodel.Permission, error)
	LoadLinks(ctx context.Context) ([]permissionmodel.Link, error)
}

type userSnapshot struct {
	list []usermodel.User
	byID map[int64]*usermodel.User
}

type teamSnapshot struct {
	list []teammodel.Team
	byID map[int64]*teammodel.Team
}

type roleSnapshot struct {
	list   []rolemodel.Role
	byID   map[int64]*rolemodel.Role
	byCode map[string]*rolemodel.Role
}

type departmentSnapshot struct {
	list []departmentmodel.Department
	byID map[int64]*departmentmodel.Department
}

type permissionSnapshot struct {
	list    []permissionmodel.Permission
	byID    map[int64]*permissionmodel.Permission
	byRoute map[string]*permissionmodel.Permission
}

type linkSnapshot struct {
	list []permissionmodel.Link
	byID map[int64]*permissionmodel.Link
}

// Store holds one immutable snapshot per entity family. Readers get the
// current snapshot without locking; Reset swaps in a freshly loaded one.
// Snapshots are loaded lazily on first access.
type Store struct {
	loader Loader
	logger *slog.Logger

	users       atomic.Pointer[userSnapshot]
	teams       atomic.Pointer[teamSnapshot]
	roles       atomic.Pointer[roleSnapshot]
	departments atomic.Pointer[departmentSnapshot]
	permissions atomic.Pointer[permissionSnapshot]
	links       atomic.Pointer[linkSnapshot]

	// serializes loads so concurrent first readers do not hit the
	// database with duplicate snapshot queries
	loadMu sync.Mutex
}

func NewStore(loader Loader, logger *slog.Logger) *Store {
	return &Store{loader: loader, logger: logger}
}

// Reset reloads the named entity families and atomically replaces their
// snapshots. With no arguments every family is reloaded. Readers holding an
// old snapshot keep a consistent view until their next access.
func (s *Store) Reset(ctx context.Context, types ...EntityType) error {
	if len(types) == 0 {
		types = allTypes
	}

	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	for _, t := range types {
		if err := s.reload(ctx, t); err != nil {
			return fmt.Errorf("reset cache for %s: %w", t, err)
		}
		s.logger.Info("cache snapshot replaced", "entity_type", string(t))
	}
	return nil
}

func (s *Store) reload(ctx context.Context, t EntityType) error {
	switch t {
	case TypeUser:
		rows, err := s.loader.LoadUsers(ctx)
		if err != nil {
			return err
		}
		s.users.Store(newUserSnapshot(rows))
	case TypeTeam:
		rows, err := s.loader.LoadTeams(ctx)
		if err != nil {
			return err
		}
		s.teams.Store(newTeamSnapshot(rows))
	case TypeRole:
		rows, err := s.loader.LoadRoles(ctx)
		if err != nil {
			return err
		}
		s.roles.Store(newRoleSnapshot(rows))
	case TypeDepartment:
		rows, err := s.loader.LoadDepartments(ctx)
		if err != nil {
			return err
		}
		s.departments.Store(newDepartmentSnapshot(rows))
	case TypePermission:
		rows, err := s.loader.LoadPermissions(ctx)
		if err != nil {
			return err
		}
		s.permissions.Store(newPermissionSnapshot(rows))
	case TypeLink:
		rows, err := s.loader.LoadLinks(ctx)
		if err != nil {
			return err
		}
		s.links.Store(newLinkSnapshot(rows))
	default:
		return fmt.Errorf("unknown cache entity type %q", t)
	}
	return nil
}

func newUserSnapshot(rows []usermodel.User) *userSnapshot {
	snap := &userSnapshot{list: rows, byID: make(map[int64]*usermodel.User, len(rows))}
	for i := range rows {
		snap.byID[rows[i].ID] = &rows[i]
	}
	return snap
}

func newTeamSnapshot(rows []teammodel.Team) *teamSnapshot {
	snap := &teamSnapshot{list: rows, byID: make(map[int64]*teammodel.Team, len(rows))}
	for i := range rows {
		snap.byID[rows[i].ID] = &rows[i]
	}
	return snap
}

func newRoleSnapshot(rows []rolemodel.Role) *roleSnapshot {
	snap := &roleSnapshot{
		list:   rows,
		byID:   make(map[int64]*rolemodel.Role, len(rows)),
		byCode: make(map[string]*rolemodel.Role, len(rows)),
	}
	for i := range rows {
		snap.byID[rows[i].ID] = &rows[i]
		snap.byCode[rows[i].Code] = &rows[i]
	}
	return snap
}

func newDepartmentSnapshot(rows []departmentmodel.Department) *departmentSnapshot {
	snap := &departmentSnapshot{list: rows, byID: make(map[int64]*departmentmodel.Department, len(rows))}
	for i := range rows {
		snap.byID[rows[i].ID] = &rows[i]
	}
	return snap
}

func routeKey(controller, action string) string {
	return strings.ToLower(controller) + "/" + strings.ToLower(action)
}

func newPermissionSnapshot(rows []permissionmodel.Permission) *permissionSnapshot {
	snap := &permissionSnapshot{
		list:    rows,
		byID:    make(map[int64]*permissionmodel.Permission, len(rows)),
		byRoute: make(map[string]*permissionmodel.Permission, len(rows)),
	}
	for i := range rows {
		snap.byID[rows[i].ID] = &rows[i]
		snap.byRoute[routeKey(rows[i].Controller, rows[i].Action)] = &rows[i]
	}
	return snap
}

func newLinkSnapshot(rows []permissionmodel.Link) *linkSnapshot {
	snap := &linkSnapshot{list: rows, byID: make(map[int64]*permissionmodel.Link, len(rows))}
	for i := range rows {
		snap.byID[rows[i].ID] = &rows[i]
	}
	return snap
}

// ----------------- LAZY ACCESSORS -----------------

func (s *Store) userSnap(ctx context.Context) (*userSnapshot, error) {
	if snap := s.users.Load(); snap != nil {
		return snap, nil
	}
	s.loadMu.Lock()
	defer s.loadMu.Unlock()
	if snap := s.users.Load(); snap != nil {
		return snap, nil
	}
	if err := s.reload(ctx, TypeUser); err != nil {
		return nil, err
	}
	return s.users.Load(), nil
}

func (s *Store) teamSnap(ctx context.Context) (*teamSnapshot, error) {
	if snap := s.teams.Load(); snap != nil {
		return snap, nil
	}
	s.loadMu.Lock()
	defer s.loadMu.Unlock()
	if snap := s.teams.Load(); snap != nil {
		return snap, nil
	}
	if err := s.reload(ctx, TypeTeam); err != nil {
		return nil, err
	}
	return s.teams.Load(), nil
}

func (s *Store) roleSnap(ctx context.Context) (*roleSnapshot, error) {
	if snap := s.roles.Load(); snap != nil {
		return snap, nil
	}
	s.loadMu.Lock()
	defer s.loadMu.Unlock()
	if snap := s.roles.Load(); snap != nil {
		return snap, nil
	}
	if err := s.reload(ctx, TypeRole); err != nil {
		return nil, err
	}
	return s.roles.Load(), nil
}

func (s *Store) departmentSnap(ctx context.Context) (*departmentSnapshot, error) {
	if snap := s.departments.Load(); snap != nil {
		return snap, nil
	}
	s.loadMu.Lock()
	defer s.loadMu.Unlock()
	if snap := s.departments.Load(); snap != nil {
		return snap, nil
	}
	if err := s.reload(ctx, TypeDepartment); err != nil {
		return nil, err
	}
	return s.departments.Load(), nil
}

func (s *Store) permissionSnap(ctx context.Context) (*permissionSnapshot, error) {
	if snap := s.permissions.Load(); snap != nil {
		return snap, nil
	}
	s.loadMu.Lock()
	defer s.loadMu.Unlock()
	if snap := s.permissions.Load(); snap != nil {
		return snap, nil
	}
	if err := s.reload(ctx, TypePermission); err != nil {
		return nil, err
	}
	return s.permissions.Load(), nil
}

func (s *Store) linkSnap(ctx context.Context) (*linkSnapshot, error) {
	if snap := s.links.Load(); snap != nil {
		return snap, nil
	}
	s.loadMu.Lock()
	defer s.loadMu.Unlock()
	if snap := s.links.Load(); snap != nil {
		return snap, nil
	}
	if err := s.reload(ctx, TypeLink); err != nil {
		return nil, err
	}
	return s.links.Load(), nil
}

// ----------------- READ API -----------------

func (s *Store) Users(ctx context.Context) ([]usermodel.User, error) {
	snap, err := s.userSnap(ctx)
	if err != nil {
		return nil, err
	}
	return snap.list, nil
}

func (s *Store) UserByID(ctx context.Context, id int64) (*usermodel.User, error) {
	snap, err := s.userSnap(ctx)
	if err != nil {
		return nil, err
	}
	return snap.byID[id], nil
}

func (s *Store) Teams(ctx context.Context) ([]teammodel.Team, error) {
	snap, err := s.teamSnap(ctx)
	if err != nil {
		return nil, err
	}
	return snap.list, nil
}

func (s *Store) TeamByID(ctx context.Context, id int64) (*teammodel.Team, error) {
	snap, err := s.teamSnap(ctx)
	if err != nil {
		return nil, err
	}
	return snap.byID[id], nil
}

func (s *Store) Roles(ctx context.Context) ([]rolemodel.Role, error) {
	snap, err := s.roleSnap(ctx)
	if err != nil {
		return nil, err
	}
	return snap.list, nil
}

func (s *Store) RoleByID(ctx context.Context, id int64) (*rolemodel.Role, error) {
	snap, err := s.roleSnap(ctx)
	if err != nil {
		return nil, err
	}
	return snap.byID[id], nil
}

func (s *Store) RoleByCode(ctx context.Context, code string) (*rolemodel.Role, error) {
	snap, err := s.roleSnap(ctx)
	if err != nil {
		return nil, err
	}
	return snap.byCode[code], nil
}

func (s *Store) Departments(ctx context.Context) ([]departmentmodel.Department, error) {
	snap, err := s.departmentSnap(ctx)
	if err != nil {
		return nil, err
	}
	return snap.list, nil
}

func (s *Store) DepartmentByID(ctx context.Context, id int64) (*departmentmodel.Department, error) {
	snap, err := s.departmentSnap(ctx)
	if err != nil {
		return nil, err
	}
	return snap.byID[id], nil
}

func (s *Store) Permissions(ctx context.Context) ([]permissionmodel.Permission, error) {
	snap, err := s.permissionSnap(ctx)
	if err != nil {
		return nil, err
	}
	return snap.list, nil
}

func (s *Store) PermissionByID(ctx context.Context, id int64) (*permissionmodel.Permission, error) {
	snap, err := s.permissionSnap(ctx)
	if err != nil {
		return nil, err
	}
	return snap.byID[id], nil
}

// PermissionByRoute matches controller and action case-insensitively.
func (s *Store) PermissionByRoute(ctx context.Context, controller, action string) (*permissionmodel.Permission, error) {
	snap, err := s.permissionSnap(ctx)
	if err != nil {
		return nil, err
	}
	return snap.byRoute[routeKey(controller, action)], nil
}

func (s *Store) Links(ctx context.Context) ([]permissionmodel.Link, error) {
	snap, err := s.linkSnap(ctx)
	if err != nil {
		return nil, err
	}
	return snap.list, nil
}

func (s *Store) LinkByID(ctx context.Context, id int64) (*permissionmodel.Link, error) {
	snap, err := s.linkSnap(ctx)
	if err != nil {
		return nil, err
	}
	return snap.byID[id], nil
}
