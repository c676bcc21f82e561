package apperrors

import "errors"

var (
	// ErrNoAccessibleStores means the caller's requested store filter had an
	// empty intersection with their authorized store set.
	ErrNoAccessibleStores = errors.New("no accessible stores match the request")

	// ErrNoValidIntegrations means authorized stores exist but none has an
	// analytics account configured.
	ErrNoValidIntegrations = errors.New("no valid analytics integrations found for requested stores")

	// ErrNoAuthorizedAccounts means a query was attempted with zero authorized
	// account identifiers; the query builder refuses to execute in this case.
	ErrNoAuthorizedAccounts = errors.New("no authorized account identifiers")

	// ErrBothModelsUnavailable means the primary model call and its single
	// fallback attempt both failed.
	ErrBothModelsUnavailable = errors.New("both primary and fallback models failed")

	// ErrBlockedInput means input contained blocked patterns and cannot be
	// processed.
	ErrBlockedInput = errors.New("input contains blocked patterns")
)
