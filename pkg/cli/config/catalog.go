package config

import (
	"log/slog"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vigia/pkg/domain/model"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Catalog holds the path of an optional catalog file
type Catalog struct {
	Path string
}

// Flags returns CLI flags for Catalog configuration
func (c *Catalog) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "catalog",
			Usage:       "YAML file with incident types and seed sectors, roles and users (built-in catalog if empty)",
			Sources:     cli.EnvVars("VIGIA_CATALOG"),
			Destination: &c.Path,
		},
	}
}

// Configure returns the catalog from file, or the built-in one when no path is set
func (c *Catalog) Configure() (*model.Catalog, error) {
	if c.Path == "" {
		return model.DefaultCatalog(), nil
	}
	return LoadCatalogFromFile(c.Path)
}

// LogValue returns structured log value
func (c Catalog) LogValue() slog.Value {
	path := c.Path
	if path == "" {
		path = "(built-in)"
	}
	return slog.GroupValue(slog.String("path", path))
}

// LoadCatalogFromFile loads a catalog from YAML file
func LoadCatalogFromFile(path string) (*model.Catalog, error) {
	if path == "" {
		return nil, goerr.New("catalog file path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, goerr.Wrap(err, "catalog file not found",
				goerr.V("path", path))
		}
		return nil, goerr.Wrap(err, "failed to read catalog file",
			goerr.V("path", path))
	}

	var catalog model.Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, goerr.Wrap(err, "failed to parse YAML catalog",
			goerr.V("path", path))
	}

	if err := catalog.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid catalog",
			goerr.V("path", path))
	}

	return &catalog, nil
}
