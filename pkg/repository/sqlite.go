package repository

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/pressly/goose/v3"
	"github.com/secmon-lab/vigia/pkg/domain/interfaces"
	"github.com/secmon-lab/vigia/pkg/domain/model"
	"github.com/secmon-lab/vigia/pkg/domain/types"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const reportCounterName = "report"

// SQLite implements Repository interface with a local SQLite database.
// Each record is stored as its JSON document; a few columns are duplicated for indexing.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens or creates the database at path and applies pending migrations
func NewSQLite(ctx context.Context, path string) (interfaces.Repository, error) {
	logger := ctxlog.From(ctx)

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, goerr.Wrap(err, "failed to create database directory", goerr.V("dir", dir))
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open sqlite", goerr.V("path", path))
	}
	// SQLite allows a single writer
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, goerr.Wrap(err, "failed to ping sqlite", goerr.V("path", path))
	}

	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Info("SQLite repository initialized successfully", "path", path)

	return &SQLite{db: db}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	fsys, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return goerr.Wrap(err, "failed to open embedded migrations")
	}

	provider, err := goose.NewProvider(goose.DialectSQLite3, db, fsys)
	if err != nil {
		return goerr.Wrap(err, "failed to create migration provider")
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to apply migrations")
	}

	logger := ctxlog.From(ctx)
	for _, r := range results {
		logger.Debug("migration applied",
			"version", r.Source.Version,
			"path", r.Source.Path,
			"duration", r.Duration,
		)
	}
	return nil
}

// PutReport inserts or replaces a report
func (s *SQLite) PutReport(ctx context.Context, report *model.IncidentReport) error {
	if report == nil {
		return goerr.New("report is nil")
	}
	if err := report.Validate(); err != nil {
		return goerr.Wrap(err, "invalid report")
	}

	body, err := json.Marshal(report)
	if err != nil {
		return goerr.Wrap(err, "failed to encode report", goerr.V("id", report.ID))
	}

	var deadline sql.NullString
	if report.Deadline != nil {
		deadline = sql.NullString{String: report.Deadline.UTC().Format(time.RFC3339), Valid: true}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO reports (id, number, notified_sector, status, deadline, body)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			notified_sector = excluded.notified_sector,
			status = excluded.status,
			deadline = excluded.deadline,
			body = excluded.body`,
		report.ID.String(), report.Number.Int(), report.NotifiedSector, report.Status.String(), deadline, string(body),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to save report to sqlite", goerr.V("id", report.ID))
	}
	return nil
}

// GetReport retrieves a report by ID
func (s *SQLite) GetReport(ctx context.Context, id types.ReportID) (*model.IncidentReport, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var report model.IncidentReport
	row := s.db.QueryRowContext(ctx, `SELECT body FROM reports WHERE id = ?`, id.String())
	if err := scanBody(row, &report); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, goerr.Wrap(model.ErrReportNotFound, "failed to get report", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get report from sqlite", goerr.V("id", id))
	}
	return &report, nil
}

// ListReports lists all reports in creation order
func (s *SQLite) ListReports(ctx context.Context) ([]*model.IncidentReport, error) {
	reports, err := queryBodies[model.IncidentReport](ctx, s.db, `SELECT body FROM reports ORDER BY number`)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list reports")
	}
	return reports, nil
}

// GetNextReportNumber allocates the next display number with a single upsert
func (s *SQLite) GetNextReportNumber(ctx context.Context) (types.NotificationNumber, error) {
	var allocated int
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO counters (name, value) VALUES (?, 1)
		ON CONFLICT(name) DO UPDATE SET value = value + 1
		RETURNING value`, reportCounterName).Scan(&allocated)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to get next report number")
	}

	return types.FirstNotificationNumber + types.NotificationNumber(allocated-1), nil
}

// PutSector inserts or replaces a sector
func (s *SQLite) PutSector(ctx context.Context, sector *model.Sector) error {
	if sector == nil {
		return goerr.New("sector is nil")
	}
	if sector.ID == "" {
		return goerr.New("sector ID is empty")
	}

	return s.upsertNamed(ctx, "sectors", sector.ID.String(), sector.Name, &sector.Active, sector)
}

// GetSector retrieves a sector by ID
func (s *SQLite) GetSector(ctx context.Context, id types.SectorID) (*model.Sector, error) {
	var sector model.Sector
	if err := s.getByID(ctx, "sectors", id.String(), &sector, model.ErrSectorNotFound); err != nil {
		return nil, err
	}
	return &sector, nil
}

// ListSectors lists sectors in creation order
func (s *SQLite) ListSectors(ctx context.Context) ([]*model.Sector, error) {
	sectors, err := queryBodies[model.Sector](ctx, s.db, `SELECT body FROM sectors ORDER BY rowid`)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list sectors")
	}
	return sectors, nil
}

// PutUser inserts or replaces a user
func (s *SQLite) PutUser(ctx context.Context, user *model.User) error {
	if user == nil {
		return goerr.New("user is nil")
	}
	if user.ID == "" {
		return goerr.New("user ID is empty")
	}

	return s.upsertNamed(ctx, "users", user.ID.String(), user.Name, &user.Active, user)
}

// GetUser retrieves a user by ID
func (s *SQLite) GetUser(ctx context.Context, id types.UserID) (*model.User, error) {
	var user model.User
	if err := s.getByID(ctx, "users", id.String(), &user, model.ErrUserNotFound); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUsers lists users in creation order
func (s *SQLite) ListUsers(ctx context.Context) ([]*model.User, error) {
	users, err := queryBodies[model.User](ctx, s.db, `SELECT body FROM users ORDER BY rowid`)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list users")
	}
	return users, nil
}

// PutRole inserts or replaces a role
func (s *SQLite) PutRole(ctx context.Context, role *model.Role) error {
	if role == nil {
		return goerr.New("role is nil")
	}
	if role.ID == "" {
		return goerr.New("role ID is empty")
	}

	return s.upsertNamed(ctx, "roles", role.ID.String(), role.Name, nil, role)
}

// GetRole retrieves a role by ID
func (s *SQLite) GetRole(ctx context.Context, id types.RoleID) (*model.Role, error) {
	var role model.Role
	if err := s.getByID(ctx, "roles", id.String(), &role, model.ErrRoleNotFound); err != nil {
		return nil, err
	}
	return &role, nil
}

// ListRoles lists roles in creation order
func (s *SQLite) ListRoles(ctx context.Context) ([]*model.Role, error) {
	roles, err := queryBodies[model.Role](ctx, s.db, `SELECT body FROM roles ORDER BY rowid`)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list roles")
	}
	return roles, nil
}

// Close closes the database
func (s *SQLite) Close() error {
	return s.db.Close()
}

// upsertNamed stores a reference record. table is always a package constant.
func (s *SQLite) upsertNamed(ctx context.Context, table, id, name string, active *bool, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return goerr.Wrap(err, "failed to encode record", goerr.V("table", table), goerr.V("id", id))
	}

	if active == nil {
		_, err = s.db.ExecContext(ctx,
			`INSERT INTO `+table+` (id, name, body) VALUES (?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET name = excluded.name, body = excluded.body`,
			id, name, string(body))
	} else {
		_, err = s.db.ExecContext(ctx,
			`INSERT INTO `+table+` (id, name, active, body) VALUES (?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET name = excluded.name, active = excluded.active, body = excluded.body`,
			id, name, *active, string(body))
	}
	if err != nil {
		return goerr.Wrap(err, "failed to save record to sqlite", goerr.V("table", table), goerr.V("id", id))
	}
	return nil
}

func (s *SQLite) getByID(ctx context.Context, table, id string, dst any, notFound error) error {
	if id == "" {
		return goerr.New("record ID is empty", goerr.V("table", table))
	}

	row := s.db.QueryRowContext(ctx, `SELECT body FROM `+table+` WHERE id = ?`, id)
	if err := scanBody(row, dst); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return goerr.Wrap(notFound, "record not found", goerr.V("table", table), goerr.V("id", id))
		}
		return goerr.Wrap(err, "failed to get record from sqlite", goerr.V("table", table), goerr.V("id", id))
	}
	return nil
}

func scanBody(row *sql.Row, dst any) error {
	var body string
	if err := row.Scan(&body); err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(body), dst); err != nil {
		return goerr.Wrap(err, "failed to decode record")
	}
	return nil
}

func queryBodies[T any](ctx context.Context, db *sql.DB, query string) ([]*T, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query sqlite")
	}
	defer rows.Close()

	out := []*T{}
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, goerr.Wrap(err, "failed to scan row")
		}
		var v T
		if err := json.Unmarshal([]byte(body), &v); err != nil {
			return nil, goerr.Wrap(err, "failed to decode row")
		}
		out = append(out, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate rows")
	}
	return out, nil
}
