package cli

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vigia/pkg/cli/config"
	"github.com/secmon-lab/vigia/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdOverdue() *cli.Command {
	var repoCfg config.Repository

	return &cli.Command{
		Name:  "overdue",
		Usage: "List reports whose analysis deadline has passed",
		Flags: repoCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			// a fresh memory repository never holds reports
			if !repoCfg.Persistent() {
				return goerr.New("overdue requires a persistent repository backend",
					goerr.V("backend", repoCfg.Backend))
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return err
			}
			defer repo.Close()

			lifecycleUC := usecase.NewLifecycle(repo, nil, nil, nil)
			reports, err := lifecycleUC.OverdueReports(ctx)
			if err != nil {
				return err
			}

			now := lifecycleUC.Now()
			for _, r := range reports {
				days, _ := r.RemainingDays(now)
				logger.Info("overdue report",
					slog.String("id", r.ID.String()),
					slog.Int("number", r.Number.Int()),
					slog.String("sector", r.NotifiedSector),
					slog.String("status", r.Status.String()),
					slog.Int("remaining_days", days),
					slog.Bool("priority_requested", r.PriorityRequested),
				)
			}

			logger.Info("overdue reports listed", slog.Int("count", len(reports)))
			return nil
		},
	}
}
