package notify

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vigia/pkg/domain/interfaces"
	"github.com/secmon-lab/vigia/pkg/domain/model"
)

// Log is a Notifier that only records lifecycle events in the structured log.
// SMS or e-mail delivery would be another Notifier implementation.
type Log struct{}

var _ interfaces.Notifier = (*Log)(nil)

// NewLog creates a log-only notifier
func NewLog() *Log {
	return &Log{}
}

// Notify writes the event to the logger carried by ctx
func (n *Log) Notify(ctx context.Context, event *model.LifecycleEvent) error {
	if event == nil {
		return goerr.New("event is nil")
	}

	logger := ctxlog.From(ctx)
	switch event.Kind {
	case model.EventPriorityRequested, model.EventClosedWithoutAction:
		logger.Warn("lifecycle notification", "event", event)
	default:
		logger.Info("lifecycle notification", "event", event)
	}
	return nil
}
