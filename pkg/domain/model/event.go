package model

import (
	"log/slog"
	"time"

	"github.com/secmon-lab/vigia/pkg/domain/types"
)

// EventKind identifies a lifecycle change worth telling someone about
type EventKind string

const (
	EventDispatched          EventKind = "dispatched"
	EventAnalysisCompleted   EventKind = "analysis_completed"
	EventPriorityRequested   EventKind = "priority_requested"
	EventClosedWithoutAction EventKind = "closed_without_action"
)

// LifecycleEvent is emitted after a lifecycle operation has been stored
type LifecycleEvent struct {
	Kind       EventKind
	ReportID   types.ReportID
	Number     types.NotificationNumber
	Sector     string
	Deadline   *time.Time
	OccurredAt time.Time
}

// NewLifecycleEvent builds an event from the stored report
func NewLifecycleEvent(kind EventKind, r *IncidentReport, now time.Time) *LifecycleEvent {
	return &LifecycleEvent{
		Kind:       kind,
		ReportID:   r.ID,
		Number:     r.Number,
		Sector:     r.NotifiedSector,
		Deadline:   copyTime(r.Deadline),
		OccurredAt: now,
	}
}

// LogValue implements slog.LogValuer
func (e *LifecycleEvent) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("kind", string(e.Kind)),
		slog.String("report_id", e.ReportID.String()),
		slog.Int("number", e.Number.Int()),
		slog.String("sector", e.Sector),
		slog.Time("occurred_at", e.OccurredAt),
	}
	if e.Deadline != nil {
		attrs = append(attrs, slog.Time("deadline", *e.Deadline))
	}
	return slog.GroupValue(attrs...)
}
