package config

import (
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vigia/pkg/usecase"
	"github.com/urfave/cli/v3"
)

// Lifecycle holds incident lifecycle configuration
type Lifecycle struct {
	SLADays        int
	StrictAnalysis bool
}

// Flags returns CLI flags for Lifecycle configuration
func (l *Lifecycle) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:        "sla-days",
			Usage:       "Days a sector has to analyze a dispatched report",
			Category:    "Lifecycle",
			Value:       7,
			Sources:     cli.EnvVars("VIGIA_SLA_DAYS"),
			Destination: &l.SLADays,
		},
		&cli.BoolFlag{
			Name:        "strict-analysis",
			Usage:       "Require a cause for every 6M category and a stated action to complete an analysis",
			Category:    "Lifecycle",
			Sources:     cli.EnvVars("VIGIA_STRICT_ANALYSIS"),
			Destination: &l.StrictAnalysis,
		},
	}
}

// Configure builds the lifecycle configuration
func (l *Lifecycle) Configure() (*usecase.LifecycleConfig, error) {
	if l.SLADays <= 0 {
		return nil, goerr.New("sla-days must be positive", goerr.V("sla_days", l.SLADays))
	}

	return usecase.NewLifecycleConfig(
		usecase.WithSLAWindow(time.Duration(l.SLADays)*24*time.Hour),
		usecase.WithStrictAnalysis(l.StrictAnalysis),
	), nil
}

// LogValue returns structured log value
func (l Lifecycle) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("sla_days", l.SLADays),
		slog.Bool("strict_analysis", l.StrictAnalysis),
	)
}
