package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vigia/pkg/domain/interfaces"
	"github.com/secmon-lab/vigia/pkg/repository"
	"github.com/urfave/cli/v3"
)

// Repository backends
const (
	BackendMemory    = "memory"
	BackendSQLite    = "sqlite"
	BackendFirestore = "firestore"
)

// Repository holds storage backend configuration
type Repository struct {
	Backend    string
	SQLitePath string
	ProjectID  string
	DatabaseID string
}

// Flags returns CLI flags for Repository configuration
func (r *Repository) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "repository",
			Usage:       "Storage backend (memory, sqlite, firestore)",
			Category:    "Repository",
			Value:       BackendMemory,
			Sources:     cli.EnvVars("VIGIA_REPOSITORY"),
			Destination: &r.Backend,
		},
		&cli.StringFlag{
			Name:        "sqlite-path",
			Usage:       "Database file for the sqlite backend",
			Category:    "Repository",
			Value:       "vigia.db",
			Sources:     cli.EnvVars("VIGIA_SQLITE_PATH"),
			Destination: &r.SQLitePath,
		},
		&cli.StringFlag{
			Name:        "firestore-project",
			Usage:       "GCP project ID for Firestore",
			Category:    "Repository",
			Sources:     cli.EnvVars("VIGIA_FIRESTORE_PROJECT"),
			Destination: &r.ProjectID,
		},
		&cli.StringFlag{
			Name:        "firestore-database",
			Usage:       "Firestore database ID",
			Category:    "Repository",
			Value:       "(default)",
			Sources:     cli.EnvVars("VIGIA_FIRESTORE_DATABASE"),
			Destination: &r.DatabaseID,
		},
	}
}

// Persistent reports whether the selected backend keeps data outside this process
func (r *Repository) Persistent() bool {
	return r.Backend == BackendSQLite || r.Backend == BackendFirestore
}

// Configure creates the repository for the selected backend
func (r *Repository) Configure(ctx context.Context) (interfaces.Repository, error) {
	logger := ctxlog.From(ctx)

	switch r.Backend {
	case BackendMemory, "":
		logger.Warn("Using memory repository. The data will be removed when shutting down")
		return repository.NewMemory(), nil

	case BackendSQLite:
		if r.SQLitePath == "" {
			return nil, goerr.New("sqlite path is required for sqlite backend")
		}
		repo, err := repository.NewSQLite(ctx, r.SQLitePath)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to init sqlite", goerr.V("path", r.SQLitePath))
		}
		return repo, nil

	case BackendFirestore:
		if r.ProjectID == "" {
			return nil, goerr.New("firestore project is required for firestore backend")
		}
		repo, err := repository.NewFirestore(ctx, r.ProjectID, r.DatabaseID)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to init firestore",
				goerr.V("project", r.ProjectID),
				goerr.V("database", r.DatabaseID),
			)
		}
		return repo, nil

	default:
		return nil, goerr.New("unknown repository backend", goerr.V("backend", r.Backend))
	}
}

// LogValue returns structured log value
func (r Repository) LogValue() slog.Value {
	attrs := []slog.Attr{slog.String("backend", r.Backend)}
	switch r.Backend {
	case BackendSQLite:
		attrs = append(attrs, slog.String("path", r.SQLitePath))
	case BackendFirestore:
		attrs = append(attrs,
			slog.String("project", r.ProjectID),
			slog.String("database", r.DatabaseID),
		)
	}
	return slog.GroupValue(attrs...)
}
