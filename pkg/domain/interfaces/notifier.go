package interfaces

import (
	"context"

	"github.com/secmon-lab/vigia/pkg/domain/model"
)

// Notifier delivers lifecycle events to the people responsible for a report
type Notifier interface {
	Notify(ctx context.Context, event *model.LifecycleEvent) error
}
