package model

import "github.com/m-mizutani/goerr/v2"

// Error tags for categorization. Callers check them with goerr.HasTag.
var (
	// ErrTagValidation marks malformed or missing input, rejected before any state change
	ErrTagValidation = goerr.NewTag("validation")
	// ErrTagInvalidTransition marks an operation requested in a status that does not allow it
	ErrTagInvalidTransition = goerr.NewTag("invalid_transition")
	// ErrTagAlreadyRequested marks a duplicate priority escalation
	ErrTagAlreadyRequested = goerr.NewTag("already_requested")
	ErrTagNotFound         = goerr.NewTag("not_found")
)

// Sentinel errors for domain operations
var (
	ErrReportNotFound = goerr.New("report not found", goerr.T(ErrTagNotFound))
	ErrSectorNotFound = goerr.New("sector not found", goerr.T(ErrTagNotFound))
	ErrUserNotFound   = goerr.New("user not found", goerr.T(ErrTagNotFound))
	ErrRoleNotFound   = goerr.New("role not found", goerr.T(ErrTagNotFound))
)
