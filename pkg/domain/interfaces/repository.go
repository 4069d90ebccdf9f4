package interfaces

import (
	"context"

	"github.com/secmon-lab/vigia/pkg/domain/model"
	"github.com/secmon-lab/vigia/pkg/domain/types"
)

// Repository defines the interface for data persistence
type Repository interface {
	// Incident report operations. ListReports returns reports in creation order.
	PutReport(ctx context.Context, report *model.IncidentReport) error
	GetReport(ctx context.Context, id types.ReportID) (*model.IncidentReport, error)
	ListReports(ctx context.Context) ([]*model.IncidentReport, error)
	// GetNextReportNumber atomically allocates the next display number, starting at 1000
	GetNextReportNumber(ctx context.Context) (types.NotificationNumber, error)

	// Sector operations
	PutSector(ctx context.Context, sector *model.Sector) error
	GetSector(ctx context.Context, id types.SectorID) (*model.Sector, error)
	ListSectors(ctx context.Context) ([]*model.Sector, error)

	// User operations
	PutUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id types.UserID) (*model.User, error)
	ListUsers(ctx context.Context) ([]*model.User, error)

	// Role operations
	PutRole(ctx context.Context, role *model.Role) error
	GetRole(ctx context.Context, id types.RoleID) (*model.Role, error)
	ListRoles(ctx context.Context) ([]*model.Role, error)

	// Close closes the repository connection
	Close() error
}
