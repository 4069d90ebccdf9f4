package graphql

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vigia/pkg/domain/model"
	"github.com/secmon-lab/vigia/pkg/domain/types"
	"github.com/secmon-lab/vigia/pkg/usecase"
)

// Resolver serves as dependency injection point for the application
type Resolver struct {
	lifecycle *usecase.Lifecycle
	reference *usecase.Reference
}

// NewResolver creates a new resolver instance
func NewResolver(lifecycle *usecase.Lifecycle, reference *usecase.Reference) *Resolver {
	return &Resolver{
		lifecycle: lifecycle,
		reference: reference,
	}
}

// rootField resolves a top level field from its coerced arguments
type rootField func(ctx context.Context, args map[string]any) (any, error)

func (r *Resolver) queryFields() map[string]rootField {
	return map[string]rootField{
		"report":         r.report,
		"reports":        r.reports,
		"sectorReports":  r.sectorReports,
		"overdueReports": r.overdueReports,
		"topSectors":     r.topSectors,
		"indicators":     r.indicators,
		"sectors":        r.sectors,
		"users":          r.users,
		"roles":          r.roles,
	}
}

func (r *Resolver) mutationFields() map[string]rootField {
	return map[string]rootField{
		"createReport":       r.createReport,
		"dispatchToArea":     r.dispatchToArea,
		"saveAnalysisDraft":  r.saveAnalysisDraft,
		"completeAnalysis":   r.completeAnalysis,
		"requestPriority":    r.requestPriority,
		"closeWithoutAction": r.closeWithoutAction,
	}
}

type idArgs struct {
	ID types.ReportID `json:"id"`
}

type analysisArgs struct {
	ID       types.ReportID `json:"id"`
	Analysis model.Analysis `json:"analysis"`
}

func (r *Resolver) view(report *model.IncidentReport) *model.ReportView {
	return model.NewReportView(report, r.lifecycle.Now())
}

func (r *Resolver) views(reports []*model.IncidentReport) []*model.ReportView {
	return model.NewReportViews(reports, r.lifecycle.Now())
}

// Query resolvers

func (r *Resolver) report(ctx context.Context, args map[string]any) (any, error) {
	var a idArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	report, err := r.lifecycle.GetReport(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	return r.view(report), nil
}

func (r *Resolver) reports(ctx context.Context, args map[string]any) (any, error) {
	var a struct {
		Query     string `json:"q"`
		Month     string `json:"month"`
		Tab       string `json:"tab"`
		Indicator string `json:"indicator"`
	}
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	filter, err := model.ParseQualityFilter(a.Query, a.Month, a.Tab, a.Indicator)
	if err != nil {
		return nil, err
	}
	reports, err := r.lifecycle.QualityQueue(ctx, filter)
	if err != nil {
		return nil, err
	}
	return r.views(reports), nil
}

func (r *Resolver) sectorReports(ctx context.Context, args map[string]any) (any, error) {
	var a struct {
		Sector string `json:"sector"`
		Tab    string `json:"tab"`
	}
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	tab, err := types.ParseSectorTab(a.Tab)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid argument", goerr.T(model.ErrTagValidation), goerr.V("field", "tab"))
	}
	reports, err := r.lifecycle.SectorQueue(ctx, a.Sector, tab)
	if err != nil {
		return nil, err
	}
	return r.views(reports), nil
}

func (r *Resolver) overdueReports(ctx context.Context, _ map[string]any) (any, error) {
	reports, err := r.lifecycle.OverdueReports(ctx)
	if err != nil {
		return nil, err
	}
	return r.views(reports), nil
}

func (r *Resolver) topSectors(ctx context.Context, args map[string]any) (any, error) {
	var a struct {
		N int `json:"n"`
	}
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.N < 0 {
		return nil, goerr.New("n must be a non-negative integer",
			goerr.T(model.ErrTagValidation),
			goerr.V("field", "n"),
			goerr.V("n", a.N))
	}
	return r.lifecycle.TopSectors(ctx, a.N)
}

func (r *Resolver) indicators(ctx context.Context, _ map[string]any) (any, error) {
	return r.lifecycle.Indicators(ctx)
}

func (r *Resolver) sectors(ctx context.Context, _ map[string]any) (any, error) {
	return r.reference.ListSectors(ctx)
}

func (r *Resolver) users(ctx context.Context, _ map[string]any) (any, error) {
	return r.reference.ListUsers(ctx)
}

func (r *Resolver) roles(ctx context.Context, _ map[string]any) (any, error) {
	return r.reference.ListRoles(ctx)
}

// Mutation resolvers

func (r *Resolver) createReport(ctx context.Context, args map[string]any) (any, error) {
	var a struct {
		Input model.CreateReportRequest `json:"input"`
	}
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	report, err := r.lifecycle.CreateReport(ctx, &a.Input)
	if err != nil {
		return nil, err
	}
	return r.view(report), nil
}

func (r *Resolver) dispatchToArea(ctx context.Context, args map[string]any) (any, error) {
	return r.transition(ctx, args, r.lifecycle.DispatchToArea)
}

func (r *Resolver) requestPriority(ctx context.Context, args map[string]any) (any, error) {
	return r.transition(ctx, args, r.lifecycle.RequestPriority)
}

func (r *Resolver) closeWithoutAction(ctx context.Context, args map[string]any) (any, error) {
	return r.transition(ctx, args, r.lifecycle.CloseWithoutAction)
}

func (r *Resolver) transition(ctx context.Context, args map[string]any, op func(context.Context, types.ReportID) (*model.IncidentReport, error)) (any, error) {
	var a idArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	report, err := op(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	return r.view(report), nil
}

func (r *Resolver) saveAnalysisDraft(ctx context.Context, args map[string]any) (any, error) {
	var a analysisArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	report, err := r.lifecycle.SaveAnalysisDraft(ctx, a.ID, &a.Analysis)
	if err != nil {
		return nil, err
	}
	return r.view(report), nil
}

func (r *Resolver) completeAnalysis(ctx context.Context, args map[string]any) (any, error) {
	var a analysisArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	report, err := r.lifecycle.CompleteAnalysis(ctx, a.ID, &a.Analysis)
	if err != nil {
		return nil, err
	}
	return r.view(report), nil
}
