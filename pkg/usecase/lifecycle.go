package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vigia/pkg/domain/interfaces"
	"github.com/secmon-lab/vigia/pkg/domain/model"
	"github.com/secmon-lab/vigia/pkg/domain/types"
	"github.com/secmon-lab/vigia/pkg/utils/async"
)

// LifecycleConfig holds configuration for the Lifecycle use case
type LifecycleConfig struct {
	slaWindow      time.Duration
	strictAnalysis bool
	clock          func() time.Time
}

// LifecycleOption is a functional option for configuring Lifecycle
type LifecycleOption func(*LifecycleConfig)

// WithSLAWindow sets the time a sector has to analyze a dispatched report
func WithSLAWindow(d time.Duration) LifecycleOption {
	return func(c *LifecycleConfig) {
		c.slaWindow = d
	}
}

// WithStrictAnalysis makes CompleteAnalysis require a cause for every 6M category and a stated action
func WithStrictAnalysis(strict bool) LifecycleOption {
	return func(c *LifecycleConfig) {
		c.strictAnalysis = strict
	}
}

// WithClock replaces the time source
func WithClock(clock func() time.Time) LifecycleOption {
	return func(c *LifecycleConfig) {
		c.clock = clock
	}
}

// NewLifecycleConfig creates a new LifecycleConfig with default values and optional settings
func NewLifecycleConfig(opts ...LifecycleOption) *LifecycleConfig {
	config := &LifecycleConfig{
		slaWindow: model.DefaultSLAWindow,
		clock:     time.Now,
	}

	for _, opt := range opts {
		opt(config)
	}

	return config
}

// SLAWindow returns the configured SLA window
func (c *LifecycleConfig) SLAWindow() time.Duration {
	return c.slaWindow
}

// Lifecycle owns the incident report collection and performs every lifecycle
// operation on it. Mutations are serialized so that each one is atomic.
type Lifecycle struct {
	mu       sync.Mutex
	repo     interfaces.Repository
	notifier interfaces.Notifier
	catalog  *model.Catalog
	config   *LifecycleConfig
}

// NewLifecycle creates a new Lifecycle instance. notifier may be nil.
func NewLifecycle(repo interfaces.Repository, notifier interfaces.Notifier, catalog *model.Catalog, config *LifecycleConfig) *Lifecycle {
	if catalog == nil {
		catalog = model.DefaultCatalog()
	}
	if config == nil {
		config = NewLifecycleConfig()
	}
	return &Lifecycle{
		repo:     repo,
		notifier: notifier,
		catalog:  catalog,
		config:   config,
	}
}

// Now returns the current time of the lifecycle clock
func (u *Lifecycle) Now() time.Time {
	return u.config.clock()
}

// CreateReport validates an intake submission and stores it as PENDING with the next display number
func (u *Lifecycle) CreateReport(ctx context.Context, req *model.CreateReportRequest) (*model.IncidentReport, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	now := u.Now()

	// Validate with a placeholder number so that rejected submissions do not consume one
	report, err := model.NewReport(req, types.FirstNotificationNumber, now)
	if err != nil {
		return nil, err
	}

	if !u.catalog.HasIncidentType(report.IncidentType) {
		return nil, goerr.New("incident type is not in the catalog",
			goerr.T(model.ErrTagValidation),
			goerr.V("field", "incidentType"),
			goerr.V("incidentType", report.IncidentType))
	}

	if err := u.requireActiveSector(ctx, report.NotifiedSector); err != nil {
		return nil, err
	}

	number, err := u.repo.GetNextReportNumber(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to allocate report number")
	}
	report.Number = number

	if err := u.repo.PutReport(ctx, report); err != nil {
		return nil, goerr.Wrap(err, "failed to save report", goerr.V("number", number))
	}

	ctxlog.From(ctx).Info("report created",
		"id", report.ID,
		"number", report.Number,
		"sector", report.NotifiedSector,
		"classification", report.Classification,
		"damageGrade", report.DamageGrade,
	)

	return report, nil
}

func (u *Lifecycle) requireActiveSector(ctx context.Context, name string) error {
	sectors, err := u.repo.ListSectors(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to list sectors")
	}

	for _, s := range sectors {
		if s.Name == name {
			if !s.Active {
				return goerr.New("notified sector is inactive",
					goerr.T(model.ErrTagValidation),
					goerr.V("field", "notifiedSector"),
					goerr.V("sector", name))
			}
			return nil
		}
	}

	return goerr.New("notified sector does not exist",
		goerr.T(model.ErrTagValidation),
		goerr.V("field", "notifiedSector"),
		goerr.V("sector", name))
}

// mutate loads a report, applies op and stores the result. A rejected op leaves the stored report untouched.
func (u *Lifecycle) mutate(ctx context.Context, id types.ReportID, op func(r *model.IncidentReport, now time.Time) error) (*model.IncidentReport, time.Time, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	report, err := u.repo.GetReport(ctx, id)
	if err != nil {
		return nil, time.Time{}, goerr.Wrap(err, "failed to get report", goerr.V("id", id))
	}

	now := u.Now()
	if err := op(report, now); err != nil {
		return nil, time.Time{}, err
	}

	if err := u.repo.PutReport(ctx, report); err != nil {
		return nil, time.Time{}, goerr.Wrap(err, "failed to save report", goerr.V("id", id))
	}

	return report, now, nil
}

// DispatchToArea sends a PENDING report to its notified sector and starts the SLA clock
func (u *Lifecycle) DispatchToArea(ctx context.Context, id types.ReportID) (*model.IncidentReport, error) {
	report, now, err := u.mutate(ctx, id, func(r *model.IncidentReport, now time.Time) error {
		return r.Dispatch(now, u.config.slaWindow)
	})
	if err != nil {
		return nil, err
	}

	ctxlog.From(ctx).Info("report dispatched to area",
		"id", report.ID,
		"number", report.Number,
		"sector", report.NotifiedSector,
		"deadline", report.Deadline,
	)
	u.notify(ctx, model.EventDispatched, report, now)

	return report, nil
}

// SaveAnalysisDraft stores a partial analysis. The payload is not validated.
func (u *Lifecycle) SaveAnalysisDraft(ctx context.Context, id types.ReportID, analysis *model.Analysis) (*model.IncidentReport, error) {
	report, _, err := u.mutate(ctx, id, func(r *model.IncidentReport, now time.Time) error {
		return r.SaveDraft(analysis, now)
	})
	if err != nil {
		return nil, err
	}

	ctxlog.From(ctx).Info("analysis draft saved",
		"id", report.ID,
		"number", report.Number,
		"missingCategories", report.Analysis.Ishikawa.MissingCategories(),
	)

	return report, nil
}

// CompleteAnalysis stores the final analysis and closes the investigation
func (u *Lifecycle) CompleteAnalysis(ctx context.Context, id types.ReportID, analysis *model.Analysis) (*model.IncidentReport, error) {
	report, now, err := u.mutate(ctx, id, func(r *model.IncidentReport, now time.Time) error {
		if u.config.strictAnalysis {
			if err := analysis.ValidateComplete(); err != nil {
				return goerr.Wrap(err, "analysis is incomplete", goerr.V("id", r.ID))
			}
		}
		return r.Complete(analysis, now)
	})
	if err != nil {
		return nil, err
	}

	ctxlog.From(ctx).Info("analysis completed",
		"id", report.ID,
		"number", report.Number,
		"londonProtocol", report.Analysis.LondonProtocolRequired,
	)
	u.notify(ctx, model.EventAnalysisCompleted, report, now)

	return report, nil
}

// RequestPriority escalates an overdue report once
func (u *Lifecycle) RequestPriority(ctx context.Context, id types.ReportID) (*model.IncidentReport, error) {
	report, now, err := u.mutate(ctx, id, func(r *model.IncidentReport, now time.Time) error {
		return r.RequestPriority(now)
	})
	if err != nil {
		return nil, err
	}

	ctxlog.From(ctx).Info("priority requested",
		"id", report.ID,
		"number", report.Number,
		"sector", report.NotifiedSector,
	)
	u.notify(ctx, model.EventPriorityRequested, report, now)

	return report, nil
}

// CloseWithoutAction archives an overdue report
func (u *Lifecycle) CloseWithoutAction(ctx context.Context, id types.ReportID) (*model.IncidentReport, error) {
	report, now, err := u.mutate(ctx, id, func(r *model.IncidentReport, now time.Time) error {
		return r.CloseWithoutAction(now)
	})
	if err != nil {
		return nil, err
	}

	ctxlog.From(ctx).Info("report closed without action",
		"id", report.ID,
		"number", report.Number,
		"sector", report.NotifiedSector,
	)
	u.notify(ctx, model.EventClosedWithoutAction, report, now)

	return report, nil
}

func (u *Lifecycle) notify(ctx context.Context, kind model.EventKind, report *model.IncidentReport, now time.Time) {
	if u.notifier == nil {
		return
	}

	event := model.NewLifecycleEvent(kind, report, now)
	async.Dispatch(ctx, func(ctx context.Context) error {
		if err := u.notifier.Notify(ctx, event); err != nil {
			return goerr.Wrap(err, "failed to notify lifecycle event", goerr.V("kind", kind), goerr.V("id", event.ReportID))
		}
		return nil
	})
}

// GetReport retrieves a report by ID
func (u *Lifecycle) GetReport(ctx context.Context, id types.ReportID) (*model.IncidentReport, error) {
	report, err := u.repo.GetReport(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get report", goerr.V("id", id))
	}
	return report, nil
}

// ListReports lists all reports in creation order
func (u *Lifecycle) ListReports(ctx context.Context) ([]*model.IncidentReport, error) {
	reports, err := u.repo.ListReports(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list reports")
	}
	return reports, nil
}

// QualityQueue returns the reports shown on the quality dashboard for the given filters
func (u *Lifecycle) QualityQueue(ctx context.Context, filter model.QualityFilter) ([]*model.IncidentReport, error) {
	reports, err := u.ListReports(ctx)
	if err != nil {
		return nil, err
	}
	return model.ApplyQualityFilter(reports, filter, u.Now()), nil
}

// SectorQueue returns the reports a sector manager sees on a tab
func (u *Lifecycle) SectorQueue(ctx context.Context, sector string, tab types.SectorTab) ([]*model.IncidentReport, error) {
	reports, err := u.ListReports(ctx)
	if err != nil {
		return nil, err
	}
	return model.FilterBySectorTabAndStatus(reports, sector, tab, u.Now()), nil
}

// TopSectors returns the n sectors with most reports
func (u *Lifecycle) TopSectors(ctx context.Context, n int) ([]model.SectorCount, error) {
	reports, err := u.ListReports(ctx)
	if err != nil {
		return nil, err
	}
	return model.TopSectorsByVolume(reports, n), nil
}

// Indicators returns the dashboard counters
func (u *Lifecycle) Indicators(ctx context.Context) (model.Indicators, error) {
	reports, err := u.ListReports(ctx)
	if err != nil {
		return model.Indicators{}, err
	}
	return model.SummarizeIndicators(reports, u.Now()), nil
}

// OverdueReports returns every report whose SLA deadline has passed without a completed analysis
func (u *Lifecycle) OverdueReports(ctx context.Context) ([]*model.IncidentReport, error) {
	reports, err := u.ListReports(ctx)
	if err != nil {
		return nil, err
	}
	return model.FilterByQueryMonthAndIndicator(reports, "", "", types.IndicatorOverdue, u.Now()), nil
}
