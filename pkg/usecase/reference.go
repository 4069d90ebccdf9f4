package usecase

import (
	"context"
	"sync"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vigia/pkg/domain/interfaces"
	"github.com/secmon-lab/vigia/pkg/domain/model"
	"github.com/secmon-lab/vigia/pkg/domain/types"
)

// Reference manages users, sectors and roles. Reports refer to them by name
// only, so toggling or renaming never touches existing reports.
type Reference struct {
	mu      sync.Mutex
	repo    interfaces.Repository
	catalog *model.Catalog
}

// NewReference creates a new Reference instance
func NewReference(repo interfaces.Repository, catalog *model.Catalog) *Reference {
	if catalog == nil {
		catalog = model.DefaultCatalog()
	}
	return &Reference{
		repo:    repo,
		catalog: catalog,
	}
}

// Seed stores the catalog's sectors, roles and users. Each collection is seeded only when empty.
func (u *Reference) Seed(ctx context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	logger := ctxlog.From(ctx)

	sectors, err := u.repo.ListSectors(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to list sectors")
	}
	if len(sectors) == 0 {
		for _, seed := range u.catalog.Sectors {
			sector, err := model.NewSector(seed.Name)
			if err != nil {
				return goerr.Wrap(err, "invalid seed sector", goerr.V("name", seed.Name))
			}
			if seed.Active != nil {
				sector.Active = *seed.Active
			}
			if err := u.repo.PutSector(ctx, sector); err != nil {
				return goerr.Wrap(err, "failed to seed sector", goerr.V("name", seed.Name))
			}
		}
		logger.Info("sectors seeded", "count", len(u.catalog.Sectors))
	}

	roles, err := u.repo.ListRoles(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to list roles")
	}
	if len(roles) == 0 {
		for _, seed := range u.catalog.Roles {
			role, err := model.NewRole(seed.Name, seed.Permissions)
			if err != nil {
				return goerr.Wrap(err, "invalid seed role", goerr.V("name", seed.Name))
			}
			if err := u.repo.PutRole(ctx, role); err != nil {
				return goerr.Wrap(err, "failed to seed role", goerr.V("name", seed.Name))
			}
		}
		logger.Info("roles seeded", "count", len(u.catalog.Roles))
	}

	users, err := u.repo.ListUsers(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to list users")
	}
	if len(users) == 0 {
		for _, seed := range u.catalog.Users {
			user, err := model.NewUser(&model.CreateUserRequest{
				Name:    seed.Name,
				Email:   seed.Email,
				Role:    seed.Role,
				Sectors: seed.Sectors,
			})
			if err != nil {
				return goerr.Wrap(err, "invalid seed user", goerr.V("name", seed.Name))
			}
			if err := u.repo.PutUser(ctx, user); err != nil {
				return goerr.Wrap(err, "failed to seed user", goerr.V("name", seed.Name))
			}
		}
		logger.Info("users seeded", "count", len(u.catalog.Users))
	}

	return nil
}

// CreateSector creates an active sector with a unique name
func (u *Reference) CreateSector(ctx context.Context, name string) (*model.Sector, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	sector, err := model.NewSector(name)
	if err != nil {
		return nil, err
	}

	sectors, err := u.repo.ListSectors(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list sectors")
	}
	for _, s := range sectors {
		if s.Name == sector.Name {
			return nil, goerr.New("sector already exists",
				goerr.T(model.ErrTagValidation),
				goerr.V("field", "name"),
				goerr.V("name", sector.Name))
		}
	}

	if err := u.repo.PutSector(ctx, sector); err != nil {
		return nil, goerr.Wrap(err, "failed to save sector")
	}

	ctxlog.From(ctx).Info("sector created", "id", sector.ID, "name", sector.Name)
	return sector, nil
}

// ToggleSector flips a sector's active flag
func (u *Reference) ToggleSector(ctx context.Context, id types.SectorID) (*model.Sector, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	sector, err := u.repo.GetSector(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get sector", goerr.V("id", id))
	}

	sector.Toggle()
	if err := u.repo.PutSector(ctx, sector); err != nil {
		return nil, goerr.Wrap(err, "failed to save sector", goerr.V("id", id))
	}

	ctxlog.From(ctx).Info("sector toggled", "id", sector.ID, "name", sector.Name, "active", sector.Active)
	return sector, nil
}

// ListSectors lists all sectors
func (u *Reference) ListSectors(ctx context.Context) ([]*model.Sector, error) {
	sectors, err := u.repo.ListSectors(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list sectors")
	}
	return sectors, nil
}

// ActiveSectorNames returns the names offered on the intake form and manager tabs
func (u *Reference) ActiveSectorNames(ctx context.Context) ([]string, error) {
	sectors, err := u.ListSectors(ctx)
	if err != nil {
		return nil, err
	}

	names := []string{}
	for _, s := range sectors {
		if s.Active {
			names = append(names, s.Name)
		}
	}
	return names, nil
}

// CreateRole creates a role with a unique name
func (u *Reference) CreateRole(ctx context.Context, name string, permissions []string) (*model.Role, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	role, err := model.NewRole(name, permissions)
	if err != nil {
		return nil, err
	}

	existing, err := u.findRole(ctx, role.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, goerr.New("role already exists",
			goerr.T(model.ErrTagValidation),
			goerr.V("field", "name"),
			goerr.V("name", role.Name))
	}

	if err := u.repo.PutRole(ctx, role); err != nil {
		return nil, goerr.Wrap(err, "failed to save role")
	}

	ctxlog.From(ctx).Info("role created", "id", role.ID, "name", role.Name)
	return role, nil
}

// ListRoles lists all roles
func (u *Reference) ListRoles(ctx context.Context) ([]*model.Role, error) {
	roles, err := u.repo.ListRoles(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list roles")
	}
	return roles, nil
}

func (u *Reference) findRole(ctx context.Context, name string) (*model.Role, error) {
	roles, err := u.repo.ListRoles(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list roles")
	}
	for _, r := range roles {
		if r.Name == name {
			return r, nil
		}
	}
	return nil, nil
}

// CreateUser creates an active user. The role must exist and every sector must be active.
func (u *Reference) CreateUser(ctx context.Context, req *model.CreateUserRequest) (*model.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	user, err := model.NewUser(req)
	if err != nil {
		return nil, err
	}

	role, err := u.findRole(ctx, user.Role)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, goerr.New("role does not exist",
			goerr.T(model.ErrTagValidation),
			goerr.V("field", "role"),
			goerr.V("role", user.Role))
	}

	if len(user.Sectors) > 0 {
		sectors, err := u.repo.ListSectors(ctx)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list sectors")
		}
		active := make(map[string]bool, len(sectors))
		for _, s := range sectors {
			active[s.Name] = s.Active
		}
		for _, name := range user.Sectors {
			if !active[name] {
				return nil, goerr.New("user sector is not an active sector",
					goerr.T(model.ErrTagValidation),
					goerr.V("field", "sectors"),
					goerr.V("sector", name))
			}
		}
	}

	if err := u.repo.PutUser(ctx, user); err != nil {
		return nil, goerr.Wrap(err, "failed to save user")
	}

	ctxlog.From(ctx).Info("user created", "id", user.ID, "name", user.Name, "role", user.Role)
	return user, nil
}

// ToggleUser flips a user's active flag
func (u *Reference) ToggleUser(ctx context.Context, id types.UserID) (*model.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	user, err := u.repo.GetUser(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get user", goerr.V("id", id))
	}

	user.Toggle()
	if err := u.repo.PutUser(ctx, user); err != nil {
		return nil, goerr.Wrap(err, "failed to save user", goerr.V("id", id))
	}

	ctxlog.From(ctx).Info("user toggled", "id", user.ID, "name", user.Name, "active", user.Active)
	return user, nil
}

// ListUsers lists all users
func (u *Reference) ListUsers(ctx context.Context) ([]*model.User, error) {
	users, err := u.repo.ListUsers(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list users")
	}
	return users, nil
}

// ActiveUsers returns the users shown on the login list
func (u *Reference) ActiveUsers(ctx context.Context) ([]*model.User, error) {
	users, err := u.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	active := []*model.User{}
	for _, user := range users {
		if user.Active {
			active = append(active, user)
		}
	}
	return active, nil
}

// SelectUser picks the user for the current session. This is a convenience
// selection, not an authentication step.
func (u *Reference) SelectUser(ctx context.Context, id types.UserID) (*model.User, error) {
	user, err := u.repo.GetUser(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get user", goerr.V("id", id))
	}
	if !user.Active {
		return nil, goerr.New("user is inactive",
			goerr.T(model.ErrTagValidation),
			goerr.V("id", id))
	}

	ctxlog.From(ctx).Info("user selected", "id", user.ID, "name", user.Name, "role", user.Role)
	return user, nil
}

// IntakeOptions returns the choices offered by the intake and analysis forms
func (u *Reference) IntakeOptions(ctx context.Context) (*model.IntakeOptions, error) {
	sectors, err := u.ActiveSectorNames(ctx)
	if err != nil {
		return nil, err
	}

	return &model.IntakeOptions{
		Sectors:         sectors,
		IncidentTypes:   append([]string{}, u.catalog.IncidentTypes...),
		Origins:         types.AllOrigins,
		Periods:         types.AllPeriods,
		Classifications: types.AllClassifications,
		DamageGrades:    types.AllDamageGrades,
		Months:          model.MonthLabels(),
		IshikawaCauses:  model.IshikawaCauses,
	}, nil
}
