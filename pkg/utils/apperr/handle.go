package apperr

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vigia/pkg/domain/model"
)

// Handle logs an error. Rejections caused by the caller's input are expected
// and logged at warn level; anything else is an application error.
func Handle(ctx context.Context, err error) {
	if err == nil {
		return
	}

	logger := ctxlog.From(ctx)
	if IsRejection(err) {
		logger.Warn("request rejected", "error", err)
		return
	}
	logger.Error("application error", "error", err)
}

// IsRejection reports whether err is a recoverable domain rejection
func IsRejection(err error) bool {
	return goerr.HasTag(err, model.ErrTagValidation) ||
		goerr.HasTag(err, model.ErrTagInvalidTransition) ||
		goerr.HasTag(err, model.ErrTagAlreadyRequested) ||
		goerr.HasTag(err, model.ErrTagNotFound)
}
