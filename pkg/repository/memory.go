package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vigia/pkg/domain/interfaces"
	"github.com/secmon-lab/vigia/pkg/domain/model"
	"github.com/secmon-lab/vigia/pkg/domain/types"
)

// Memory implements Repository interface with in-memory storage
type Memory struct {
	mu            sync.RWMutex
	reports       map[types.ReportID]*model.IncidentReport
	sectors       map[types.SectorID]*model.Sector
	users         map[types.UserID]*model.User
	roles         map[types.RoleID]*model.Role
	reportCounter int
}

// NewMemory creates a new memory repository. Its content is lost on restart.
func NewMemory() interfaces.Repository {
	return &Memory{
		reports: make(map[types.ReportID]*model.IncidentReport),
		sectors: make(map[types.SectorID]*model.Sector),
		users:   make(map[types.UserID]*model.User),
		roles:   make(map[types.RoleID]*model.Role),
	}
}

// PutReport saves a report to memory
func (m *Memory) PutReport(ctx context.Context, report *model.IncidentReport) error {
	if report == nil {
		return goerr.New("report is nil")
	}
	if err := report.Validate(); err != nil {
		return goerr.Wrap(err, "invalid report")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.reports[report.ID] = report.Clone()
	return nil
}

// GetReport retrieves a report by ID
func (m *Memory) GetReport(ctx context.Context, id types.ReportID) (*model.IncidentReport, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	report, exists := m.reports[id]
	if !exists {
		return nil, goerr.Wrap(model.ErrReportNotFound, "failed to get report", goerr.V("id", id))
	}

	// Return a copy to prevent external modification
	return report.Clone(), nil
}

// ListReports lists all reports in creation order
func (m *Memory) ListReports(ctx context.Context) ([]*model.IncidentReport, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	reports := make([]*model.IncidentReport, 0, len(m.reports))
	for _, r := range m.reports {
		reports = append(reports, r.Clone())
	}
	sortReports(reports)

	return reports, nil
}

// GetNextReportNumber returns the next display number
func (m *Memory) GetNextReportNumber(ctx context.Context) (types.NotificationNumber, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := types.FirstNotificationNumber + types.NotificationNumber(m.reportCounter)
	m.reportCounter++
	return next, nil
}

// PutSector saves a sector to memory
func (m *Memory) PutSector(ctx context.Context, sector *model.Sector) error {
	if sector == nil {
		return goerr.New("sector is nil")
	}
	if sector.ID == "" {
		return goerr.New("sector ID is empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	s := *sector
	m.sectors[sector.ID] = &s
	return nil
}

// GetSector retrieves a sector by ID
func (m *Memory) GetSector(ctx context.Context, id types.SectorID) (*model.Sector, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sector, exists := m.sectors[id]
	if !exists {
		return nil, goerr.Wrap(model.ErrSectorNotFound, "failed to get sector", goerr.V("id", id))
	}

	s := *sector
	return &s, nil
}

// ListSectors lists sectors in creation order
func (m *Memory) ListSectors(ctx context.Context) ([]*model.Sector, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sectors := make([]*model.Sector, 0, len(m.sectors))
	for _, s := range m.sectors {
		c := *s
		sectors = append(sectors, &c)
	}
	sortSectors(sectors)

	return sectors, nil
}

// PutUser saves a user to memory
func (m *Memory) PutUser(ctx context.Context, user *model.User) error {
	if user == nil {
		return goerr.New("user is nil")
	}
	if user.ID == "" {
		return goerr.New("user ID is empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.users[user.ID] = user.Clone()
	return nil
}

// GetUser retrieves a user by ID
func (m *Memory) GetUser(ctx context.Context, id types.UserID) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, exists := m.users[id]
	if !exists {
		return nil, goerr.Wrap(model.ErrUserNotFound, "failed to get user", goerr.V("id", id))
	}

	return user.Clone(), nil
}

// ListUsers lists users in creation order
func (m *Memory) ListUsers(ctx context.Context) ([]*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	users := make([]*model.User, 0, len(m.users))
	for _, u := range m.users {
		users = append(users, u.Clone())
	}
	sortUsers(users)

	return users, nil
}

// PutRole saves a role to memory
func (m *Memory) PutRole(ctx context.Context, role *model.Role) error {
	if role == nil {
		return goerr.New("role is nil")
	}
	if role.ID == "" {
		return goerr.New("role ID is empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.roles[role.ID] = role.Clone()
	return nil
}

// GetRole retrieves a role by ID
func (m *Memory) GetRole(ctx context.Context, id types.RoleID) (*model.Role, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	role, exists := m.roles[id]
	if !exists {
		return nil, goerr.Wrap(model.ErrRoleNotFound, "failed to get role", goerr.V("id", id))
	}

	return role.Clone(), nil
}

// ListRoles lists roles in creation order
func (m *Memory) ListRoles(ctx context.Context) ([]*model.Role, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	roles := make([]*model.Role, 0, len(m.roles))
	for _, r := range m.roles {
		roles = append(roles, r.Clone())
	}
	sortRoles(roles)

	return roles, nil
}

// Close is a no-op for memory repository
func (m *Memory) Close() error {
	return nil
}

// Clear removes all data and resets the report counter (useful for testing)
func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.reports = make(map[types.ReportID]*model.IncidentReport)
	m.sectors = make(map[types.SectorID]*model.Sector)
	m.users = make(map[types.UserID]*model.User)
	m.roles = make(map[types.RoleID]*model.Role)
	m.reportCounter = 0
}

func sortReports(reports []*model.IncidentReport) {
	sort.Slice(reports, func(i, j int) bool {
		if reports[i].Number != reports[j].Number {
			return reports[i].Number < reports[j].Number
		}
		return reports[i].CreatedAt.Before(reports[j].CreatedAt)
	})
}

func sortSectors(sectors []*model.Sector) {
	sort.Slice(sectors, func(i, j int) bool {
		if !sectors[i].CreatedAt.Equal(sectors[j].CreatedAt) {
			return sectors[i].CreatedAt.Before(sectors[j].CreatedAt)
		}
		return sectors[i].Name < sectors[j].Name
	})
}

func sortUsers(users []*model.User) {
	sort.Slice(users, func(i, j int) bool {
		if !users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].CreatedAt.Before(users[j].CreatedAt)
		}
		return users[i].Name < users[j].Name
	})
}

func sortRoles(roles []*model.Role) {
	sort.Slice(roles, func(i, j int) bool {
		if !roles[i].CreatedAt.Equal(roles[j].CreatedAt) {
			return roles[i].CreatedAt.Before(roles[j].CreatedAt)
		}
		return roles[i].Name < roles[j].Name
	})
}
