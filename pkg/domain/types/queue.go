package types

import "github.com/m-mizutani/goerr/v2"

// QualityTab selects the quality team's triage queue
type QualityTab string

const (
	QualityTabAll       QualityTab = ""
	QualityTabPending   QualityTab = "pending"
	QualityTabAnalyzing QualityTab = "analyzing"
	QualityTabCompleted QualityTab = "completed"
)

// ParseQualityTab converts a query parameter into a QualityTab
func ParseQualityTab(s string) (QualityTab, error) {
	switch tab := QualityTab(s); tab {
	case QualityTabAll, QualityTabPending, QualityTabAnalyzing, QualityTabCompleted:
		return tab, nil
	default:
		return "", goerr.New("unknown quality tab", goerr.V("tab", s))
	}
}

// SectorTab selects a sector manager's queue
type SectorTab string

const (
	SectorTabPending   SectorTab = "pending"
	SectorTabCompleted SectorTab = "completed"
	SectorTabArchived  SectorTab = "archived"
)

// ParseSectorTab converts a query parameter into a SectorTab. Empty means pending.
func ParseSectorTab(s string) (SectorTab, error) {
	switch tab := SectorTab(s); tab {
	case "":
		return SectorTabPending, nil
	case SectorTabPending, SectorTabCompleted, SectorTabArchived:
		return tab, nil
	default:
		return "", goerr.New("unknown sector tab", goerr.V("tab", s))
	}
}

// Indicator is one of the dashboard indicator tags usable as a filter
type Indicator string

const (
	IndicatorNone       Indicator = ""
	IndicatorSevereHarm Indicator = "severe-harm"
	IndicatorNearMiss   Indicator = "near-miss"
	IndicatorOverdue    Indicator = "overdue"
)

// ParseIndicator converts a query parameter into an Indicator
func ParseIndicator(s string) (Indicator, error) {
	switch ind := Indicator(s); ind {
	case IndicatorNone, IndicatorSevereHarm, IndicatorNearMiss, IndicatorOverdue:
		return ind, nil
	default:
		return "", goerr.New("unknown indicator", goerr.V("indicator", s))
	}
}
