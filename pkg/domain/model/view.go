package model

import (
	"time"

	"github.com/secmon-lab/vigia/pkg/domain/types"
)

// ReportView is a report with its read-time projections. RemainingDays is nil when no deadline was set.
type ReportView struct {
	*IncidentReport
	EffectiveStatus types.ReportStatus `json:"effectiveStatus"`
	StatusLabel     string             `json:"statusLabel"`
	RemainingDays   *int               `json:"remainingDays"`
}

// NewReportView computes the projections of r at now
func NewReportView(r *IncidentReport, now time.Time) *ReportView {
	status := EffectiveStatus(r, now)
	v := &ReportView{
		IncidentReport:  r,
		EffectiveStatus: status,
		StatusLabel:     status.Label(),
	}
	if days, ok := r.RemainingDays(now); ok {
		v.RemainingDays = &days
	}
	return v
}

// NewReportViews converts a list of reports
func NewReportViews(reports []*IncidentReport, now time.Time) []*ReportView {
	views := make([]*ReportView, 0, len(reports))
	for _, r := range reports {
		views = append(views, NewReportView(r, now))
	}
	return views
}

// IntakeOptions is everything the intake form needs to render its choices
type IntakeOptions struct {
	Sectors         []string                      `json:"sectors"`
	IncidentTypes   []string                      `json:"incidentTypes"`
	Origins         []types.Origin                `json:"origins"`
	Periods         []types.Period                `json:"periods"`
	Classifications []types.Classification        `json:"classifications"`
	DamageGrades    []types.DamageGrade           `json:"damageGrades"`
	Months          []string                      `json:"months"`
	IshikawaCauses  map[IshikawaCategory][]string `json:"ishikawaCauses"`
}
