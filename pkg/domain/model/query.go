package model

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vigia/pkg/domain/types"
)

// QualityFilter holds the quality dashboard filters. Zero values match everything.
type QualityFilter struct {
	Query     string
	Month     string
	Tab       types.QualityTab
	Indicator types.Indicator
}

// ParseQualityFilter validates raw quality queue parameters. Empty values select everything.
func ParseQualityFilter(query, month, tab, indicator string) (QualityFilter, error) {
	qualityTab, err := types.ParseQualityTab(tab)
	if err != nil {
		return QualityFilter{}, goerr.Wrap(err, "invalid query", goerr.T(ErrTagValidation), goerr.V("field", "tab"))
	}
	ind, err := types.ParseIndicator(indicator)
	if err != nil {
		return QualityFilter{}, goerr.Wrap(err, "invalid query", goerr.T(ErrTagValidation), goerr.V("field", "indicator"))
	}
	if month != "" && !IsMonthLabel(month) {
		return QualityFilter{}, goerr.New("unknown month label",
			goerr.T(ErrTagValidation),
			goerr.V("field", "month"),
			goerr.V("month", month))
	}

	return QualityFilter{
		Query:     query,
		Month:     month,
		Tab:       qualityTab,
		Indicator: ind,
	}, nil
}

// FilterByQueryMonthAndIndicator returns the reports matching a free-text query,
// an exact month label and an indicator tag. Input order is preserved.
func FilterByQueryMonthAndIndicator(reports []*IncidentReport, query, month string, indicator types.Indicator, now time.Time) []*IncidentReport {
	q := strings.ToLower(strings.TrimSpace(query))

	var out []*IncidentReport
	for _, r := range reports {
		if q != "" && !matchesQuery(r, q) {
			continue
		}
		if month != "" && r.Month != month {
			continue
		}
		if !MatchesIndicator(r, indicator, now) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func matchesQuery(r *IncidentReport, q string) bool {
	return strings.Contains(strings.ToLower(r.Description), q) ||
		strings.Contains(strings.ToLower(r.NotifiedSector), q) ||
		strings.Contains(strings.ToLower(r.PatientName), q) ||
		strings.Contains(strconv.Itoa(r.Number.Int()), q)
}

// MatchesIndicator evaluates an indicator tag against a report. IndicatorNone matches everything.
func MatchesIndicator(r *IncidentReport, indicator types.Indicator, now time.Time) bool {
	switch indicator {
	case types.IndicatorSevereHarm:
		return r.DamageGrade == types.DamageGradeSevere
	case types.IndicatorNearMiss:
		return r.Classification == types.ClassificationNearMiss
	case types.IndicatorOverdue:
		return EffectiveStatus(r, now) == types.ReportStatusOverdue
	default:
		return true
	}
}

// FilterByQualityTab keeps the reports shown on a quality dashboard tab
func FilterByQualityTab(reports []*IncidentReport, tab types.QualityTab, now time.Time) []*IncidentReport {
	var out []*IncidentReport
	for _, r := range reports {
		if matchesQualityTab(EffectiveStatus(r, now), tab) {
			out = append(out, r)
		}
	}
	return out
}

func matchesQualityTab(status types.ReportStatus, tab types.QualityTab) bool {
	switch tab {
	case types.QualityTabAll:
		return true
	case types.QualityTabPending:
		return status == types.ReportStatusPending
	case types.QualityTabAnalyzing:
		return status == types.ReportStatusSentToArea ||
			status == types.ReportStatusAnalyzing ||
			status == types.ReportStatusOverdue
	case types.QualityTabCompleted:
		return status == types.ReportStatusCompleted
	default:
		return false
	}
}

// ApplyQualityFilter applies every quality dashboard filter at once
func ApplyQualityFilter(reports []*IncidentReport, f QualityFilter, now time.Time) []*IncidentReport {
	matched := FilterByQueryMonthAndIndicator(reports, f.Query, f.Month, f.Indicator, now)
	return FilterByQualityTab(matched, f.Tab, now)
}

// FilterBySectorTabAndStatus returns the reports a sector manager sees on a tab:
// only reports already sent to that sector, split by effective status.
func FilterBySectorTabAndStatus(reports []*IncidentReport, sector string, tab types.SectorTab, now time.Time) []*IncidentReport {
	var out []*IncidentReport
	for _, r := range reports {
		if r.NotifiedSector != sector || !r.IsSentToArea {
			continue
		}

		status := EffectiveStatus(r, now)
		var match bool
		switch tab {
		case types.SectorTabPending:
			match = !status.IsTerminal()
		case types.SectorTabCompleted:
			match = status == types.ReportStatusCompleted
		case types.SectorTabArchived:
			match = status == types.ReportStatusArchived
		}
		if match {
			out = append(out, r)
		}
	}
	return out
}

// SectorCount is the number of reports notified to a sector
type SectorCount struct {
	Sector string `json:"sector"`
	Count  int    `json:"count"`
}

// TopSectorsByVolume groups reports by notified sector and returns the n sectors
// with most reports, ties broken by the order in which sectors first appear.
func TopSectorsByVolume(reports []*IncidentReport, n int) []SectorCount {
	if n <= 0 {
		return []SectorCount{}
	}

	index := make(map[string]int)
	var counts []SectorCount
	for _, r := range reports {
		i, ok := index[r.NotifiedSector]
		if !ok {
			i = len(counts)
			index[r.NotifiedSector] = i
			counts = append(counts, SectorCount{Sector: r.NotifiedSector})
		}
		counts[i].Count++
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})

	if len(counts) > n {
		counts = counts[:n]
	}
	if counts == nil {
		counts = []SectorCount{}
	}
	return counts
}

// Indicators is the set of counters shown on the quality dashboard
type Indicators struct {
	Total      int `json:"total"`
	SevereHarm int `json:"severeHarm"`
	NearMiss   int `json:"nearMiss"`
	Overdue    int `json:"overdue"`
}

// SummarizeIndicators counts reports per indicator tag
func SummarizeIndicators(reports []*IncidentReport, now time.Time) Indicators {
	s := Indicators{Total: len(reports)}
	for _, r := range reports {
		if MatchesIndicator(r, types.IndicatorSevereHarm, now) {
			s.SevereHarm++
		}
		if MatchesIndicator(r, types.IndicatorNearMiss, now) {
			s.NearMiss++
		}
		if MatchesIndicator(r, types.IndicatorOverdue, now) {
			s.Overdue++
		}
	}
	return s
}
