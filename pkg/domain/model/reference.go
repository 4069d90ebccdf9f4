package model

import (
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vigia/pkg/domain/types"
)

// Sector is a hospital sector. Reports reference sectors by name only.
type Sector struct {
	ID        types.SectorID `json:"id"`
	Name      string         `json:"name"`
	Active    bool           `json:"active"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// NewSector creates a new active sector
func NewSector(name string) (*Sector, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationError("name", "sector name is required")
	}

	now := time.Now()
	return &Sector{
		ID:        types.NewSectorID(),
		Name:      name,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Toggle flips the active flag
func (s *Sector) Toggle() {
	s.Active = !s.Active
	s.UpdatedAt = time.Now()
}

// Role is a named permission set
type Role struct {
	ID          types.RoleID `json:"id"`
	Name        string       `json:"name"`
	Permissions []string     `json:"permissions"`
	CreatedAt   time.Time    `json:"createdAt"`
}

// NewRole creates a new role
func NewRole(name string, permissions []string) (*Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationError("name", "role name is required")
	}
	if permissions == nil {
		permissions = []string{}
	}

	return &Role{
		ID:          types.NewRoleID(),
		Name:        name,
		Permissions: permissions,
		CreatedAt:   time.Now(),
	}, nil
}

// User is a staff member who can select themselves on the login list
type User struct {
	ID        types.UserID `json:"id"`
	Name      string       `json:"name"`
	Email     string       `json:"email"`
	Role      string       `json:"role"`
	Sectors   []string     `json:"sectors"`
	Active    bool         `json:"active"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// CreateUserRequest carries the fields of the admin user form
type CreateUserRequest struct {
	Name    string   `json:"name"`
	Email   string   `json:"email"`
	Role    string   `json:"role"`
	Sectors []string `json:"sectors"`
}

// NewUser creates a new active user
func NewUser(req *CreateUserRequest) (*User, error) {
	if req == nil {
		return nil, goerr.New("user request is nil", goerr.T(ErrTagValidation))
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, validationError("name", "user name is required")
	}
	email := strings.TrimSpace(req.Email)
	if email == "" {
		return nil, validationError("email", "user email is required")
	}
	role := req.Role
	if role == "" {
		role = RoleManager
	}
	sectors := req.Sectors
	if sectors == nil {
		sectors = []string{}
	}

	now := time.Now()
	return &User{
		ID:        types.NewUserID(),
		Name:      name,
		Email:     email,
		Role:      role,
		Sectors:   sectors,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Toggle flips the active flag
func (u *User) Toggle() {
	u.Active = !u.Active
	u.UpdatedAt = time.Now()
}

// Clone returns a deep copy of the user
func (u *User) Clone() *User {
	c := *u
	c.Sectors = append([]string{}, u.Sectors...)
	return &c
}

// Clone returns a deep copy of the role
func (r *Role) Clone() *Role {
	c := *r
	c.Permissions = append([]string{}, r.Permissions...)
	return &c
}
