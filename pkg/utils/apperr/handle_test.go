package apperr_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/vigia/pkg/domain/model"
	"github.com/secmon-lab/vigia/pkg/utils/apperr"
)

func TestHandle(t *testing.T) {
	t.Run("rejection is logged as warning", func(t *testing.T) {
		var buf bytes.Buffer
		ctx := ctxlog.With(context.Background(), slog.New(slog.NewJSONHandler(&buf, nil)))

		err := goerr.New("priority already requested", goerr.T(model.ErrTagAlreadyRequested))
		apperr.Handle(ctx, err)
		gt.S(t, buf.String()).Contains(`"level":"WARN"`)
		gt.S(t, buf.String()).Contains("request rejected")
	})

	t.Run("unexpected error is logged as error", func(t *testing.T) {
		var buf bytes.Buffer
		ctx := ctxlog.With(context.Background(), slog.New(slog.NewJSONHandler(&buf, nil)))

		apperr.Handle(ctx, goerr.New("disk full"))
		gt.S(t, buf.String()).Contains(`"level":"ERROR"`)
	})

	t.Run("nil error", func(t *testing.T) {
		var buf bytes.Buffer
		ctx := ctxlog.With(context.Background(), slog.New(slog.NewJSONHandler(&buf, nil)))

		apperr.Handle(ctx, nil)
		gt.Equal(t, 0, buf.Len())
	})
}

func TestIsRejection(t *testing.T) {
	gt.True(t, apperr.IsRejection(goerr.Wrap(model.ErrReportNotFound, "failed to get report")))
	gt.True(t, apperr.IsRejection(goerr.New("bad", goerr.T(model.ErrTagValidation))))
	gt.True(t, apperr.IsRejection(goerr.New("bad", goerr.T(model.ErrTagInvalidTransition))))
	gt.False(t, apperr.IsRejection(goerr.New("boom")))
}
