package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/vigia/pkg/cli/config"
)

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	gt.NoError(t, os.WriteFile(path, []byte(content), 0o600)).Required()
	return path
}

func TestLoadCatalogFromFile(t *testing.T) {
	t.Run("valid catalog", func(t *testing.T) {
		path := writeCatalog(t, `
incident_types:
  - Queda do paciente
  - Flebite
sectors:
  - name: Pronto Socorro
  - name: Lavanderia
    active: false
roles:
  - name: Qualidade
    permissions: [all]
users:
  - name: Ana Qualidade
    email: ana@hospital.com
    role: Qualidade
`)
		catalog, err := config.LoadCatalogFromFile(path)
		gt.NoError(t, err).Required()
		gt.A(t, catalog.IncidentTypes).Length(2)
		gt.True(t, catalog.HasIncidentType("Flebite"))
		gt.A(t, catalog.Sectors).Length(2)
		gt.V(t, catalog.Sectors[0].Active).Nil()
		gt.False(t, *catalog.Sectors[1].Active)
		gt.Equal(t, "Qualidade", catalog.Users[0].Role)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := config.LoadCatalogFromFile(filepath.Join(t.TempDir(), "none.yaml"))
		gt.Error(t, err)
	})

	t.Run("empty path", func(t *testing.T) {
		_, err := config.LoadCatalogFromFile("")
		gt.Error(t, err)
	})

	t.Run("malformed YAML", func(t *testing.T) {
		_, err := config.LoadCatalogFromFile(writeCatalog(t, "incident_types: [unterminated"))
		gt.Error(t, err)
	})

	t.Run("no incident types", func(t *testing.T) {
		_, err := config.LoadCatalogFromFile(writeCatalog(t, "sectors:\n  - name: OPME\n"))
		gt.Error(t, err)
	})

	t.Run("user with unknown role", func(t *testing.T) {
		_, err := config.LoadCatalogFromFile(writeCatalog(t, `
incident_types: [Flebite]
users:
  - name: Carlos
    email: carlos@hospital.com
    role: Gestor
`))
		gt.Error(t, err)
	})
}

func TestCatalogConfigure(t *testing.T) {
	var c config.Catalog
	catalog, err := c.Configure()
	gt.NoError(t, err)
	gt.A(t, catalog.IncidentTypes).Length(41)
}

func TestLoggerValidate(t *testing.T) {
	testCases := []struct {
		name   string
		logger config.Logger
		valid  bool
	}{
		{"defaults", config.Logger{Level: "info", Format: "auto"}, true},
		{"upper case level", config.Logger{Level: "DEBUG", Format: "json"}, true},
		{"console", config.Logger{Level: "warn", Format: "console"}, true},
		{"unknown level", config.Logger{Level: "trace", Format: "auto"}, false},
		{"unknown format", config.Logger{Level: "info", Format: "xml"}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.logger.Validate()
			if tc.valid {
				gt.NoError(t, err)
			} else {
				gt.Error(t, err)
			}
		})
	}
}

func TestLifecycleConfigure(t *testing.T) {
	cfg, err := (&config.Lifecycle{SLADays: 3}).Configure()
	gt.NoError(t, err).Required()
	gt.Equal(t, "72h0m0s", cfg.SLAWindow().String())

	_, err = (&config.Lifecycle{SLADays: 0}).Configure()
	gt.Error(t, err)
}
