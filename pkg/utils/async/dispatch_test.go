package async_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/vigia/pkg/utils/async"
)

func waitFor(t *testing.T, d *async.Dispatcher) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	gt.NoError(t, d.Wait(ctx))
}

func TestDispatcher(t *testing.T) {
	t.Run("Execute handler asynchronously", func(t *testing.T) {
		var d async.Dispatcher
		var executed atomic.Bool

		d.Dispatch(context.Background(), func(ctx context.Context) error {
			executed.Store(true)
			return nil
		})

		waitFor(t, &d)
		gt.True(t, executed.Load())
	})

	t.Run("Handle errors in async handler", func(t *testing.T) {
		var d async.Dispatcher
		d.Dispatch(context.Background(), func(ctx context.Context) error {
			return goerr.New("test error")
		})
		waitFor(t, &d)
	})

	t.Run("Recover from panic in async handler", func(t *testing.T) {
		var d async.Dispatcher
		d.Dispatch(context.Background(), func(ctx context.Context) error {
			panic("test panic")
		})
		waitFor(t, &d)
	})

	t.Run("Multiple async dispatches", func(t *testing.T) {
		var d async.Dispatcher
		var counter atomic.Int32

		for i := 0; i < 10; i++ {
			d.Dispatch(context.Background(), func(ctx context.Context) error {
				counter.Add(1)
				return nil
			})
		}

		waitFor(t, &d)
		gt.Equal(t, int32(10), counter.Load())
	})

	t.Run("Wait gives up when context is done", func(t *testing.T) {
		var d async.Dispatcher
		release := make(chan struct{})
		defer close(release)

		d.Dispatch(context.Background(), func(ctx context.Context) error {
			<-release
			return nil
		})

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		gt.Error(t, d.Wait(ctx))
	})
}

func TestContextPreservation(t *testing.T) {
	t.Run("Cancellation is not propagated", func(t *testing.T) {
		var d async.Dispatcher
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		var ctxErr atomic.Value
		d.Dispatch(ctx, func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				ctxErr.Store(err)
			}
			return nil
		})

		waitFor(t, &d)
		gt.V(t, ctxErr.Load()).Nil()
	})

	t.Run("Logger is preserved in background context", func(t *testing.T) {
		var d async.Dispatcher
		ctx := ctxlog.With(context.Background(), ctxlog.From(context.Background()))

		var hasLogger atomic.Bool
		d.Dispatch(ctx, func(ctx context.Context) error {
			hasLogger.Store(ctxlog.From(ctx) != nil)
			return nil
		})

		waitFor(t, &d)
		gt.True(t, hasLogger.Load())
	})

	t.Run("Request ID is preserved", func(t *testing.T) {
		var d async.Dispatcher
		ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-42")

		var got atomic.Value
		d.Dispatch(ctx, func(ctx context.Context) error {
			got.Store(middleware.GetReqID(ctx))
			return nil
		})

		waitFor(t, &d)
		gt.Equal(t, "req-42", got.Load().(string))
	})
}

func TestDefaultDispatcher(t *testing.T) {
	var executed atomic.Bool
	async.Dispatch(context.Background(), func(ctx context.Context) error {
		executed.Store(true)
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	gt.NoError(t, async.Wait(ctx))
	gt.True(t, executed.Load())
}
