package graphql

import (
	"context"
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vigia/pkg/domain/model"
	"github.com/secmon-lab/vigia/pkg/utils/apperr"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

// Error codes reported in the "extensions" of a GraphQL error
const (
	CodeBadUserInput = "BAD_USER_INPUT"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeInternal     = "INTERNAL_SERVER_ERROR"
)

// decodeArgs converts coerced field arguments into v through their JSON shape
func decodeArgs(args map[string]any, v any) error {
	raw, err := json.Marshal(args)
	if err != nil {
		return goerr.Wrap(err, "failed to encode arguments", goerr.T(model.ErrTagValidation))
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return goerr.Wrap(err, "invalid arguments", goerr.T(model.ErrTagValidation))
	}
	return nil
}

func errorCode(err error) string {
	switch {
	case goerr.HasTag(err, model.ErrTagValidation):
		return CodeBadUserInput
	case goerr.HasTag(err, model.ErrTagNotFound):
		return CodeNotFound
	case goerr.HasTag(err, model.ErrTagInvalidTransition),
		goerr.HasTag(err, model.ErrTagAlreadyRequested):
		return CodeConflict
	default:
		return CodeInternal
	}
}

// toGQLError logs err and converts it into a field error at path
func toGQLError(ctx context.Context, path ast.Path, err error) *gqlerror.Error {
	apperr.Handle(ctx, err)

	code := errorCode(err)
	gqlErr := &gqlerror.Error{
		Err:        err,
		Message:    "internal server error",
		Path:       path,
		Extensions: map[string]any{"code": code},
	}
	if code != CodeInternal {
		gqlErr.Message = err.Error()
		if field, ok := goerr.Values(err)["field"].(string); ok {
			gqlErr.Extensions["field"] = field
		}
	}
	return gqlErr
}
