// Package stores resolves a caller's accessible store set to analytics
// account identifiers. This is the access-control boundary in front of the
// query builder: no query executes with an account ID that was not resolved
// here or supplied by an already-authorized internal caller.
package stores

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/wizel-ai/insight-engine/pkg/apperrors"
	"github.com/wizel-ai/insight-engine/pkg/models"
)

// Directory lists the stores a caller may query. Implementations must reflect
// current authorization state; results are fetched fresh per request and
// never cached by this core.
type Directory interface {
	ListAccessibleStores(ctx context.Context, callerID string) ([]models.AccessibleStore, error)
}

// Request describes which stores the caller wants to query.
type Request struct {
	// AccountIDs, when set, are used as-is. This is the internal trusted call
	// path: the caller has already been authorized upstream.
	AccountIDs []string

	// StorePublicIDs restrict the query to specific stores. Empty means all
	// stores the caller can access.
	StorePublicIDs []string
}

// Resolution is the outcome of resolving a request against the caller's
// accessible stores.
type Resolution struct {
	// AccountIDs are the analytics account identifiers authorized for this
	// request.
	AccountIDs []string

	// Stores are the authorized stores backing AccountIDs, used to enrich
	// query rows with display names. Empty on the trusted AccountIDs path.
	Stores []models.AccessibleStore
}

// Resolver maps store requests to authorized analytics account identifiers.
type Resolver struct {
	logger *zap.Logger
}

// NewResolver creates a Resolver.
func NewResolver(logger *zap.Logger) *Resolver {
	return &Resolver{logger: logger.Named("stores")}
}

// ResolveAccountIDs intersects the request with the caller's accessible store
// set and maps the authorized stores to their analytics account identifiers.
//
// Stores without an analytics account configured are silently excluded; they
// simply contribute no data. An empty intersection fails with
// apperrors.ErrNoAccessibleStores (the caller can correct their request using
// the accessible roster); an authorized set that resolves to zero usable
// account IDs fails with apperrors.ErrNoValidIntegrations.
func (r *Resolver) ResolveAccountIDs(req Request, accessible []models.AccessibleStore) (*Resolution, error) {
	// Trusted path: account IDs were authorized upstream.
	if len(req.AccountIDs) > 0 {
		return &Resolution{AccountIDs: req.AccountIDs}, nil
	}

	authorized := accessible
	if len(req.StorePublicIDs) > 0 {
		authorized = intersect(req.StorePublicIDs, accessible)
		if len(authorized) == 0 {
			r.logger.Warn("requested stores outside accessible set",
				zap.Strings("requested", req.StorePublicIDs),
				zap.Int("accessible_count", len(accessible)))
			// The roster lets the caller correct their request.
			return nil, fmt.Errorf("%w (accessible: %s)",
				apperrors.ErrNoAccessibleStores, strings.Join(publicIDs(accessible), ", "))
		}
	}

	var accountIDs []string
	var connected []models.AccessibleStore
	for _, store := range authorized {
		if !store.Connected() {
			continue
		}
		accountIDs = append(accountIDs, store.AnalyticsAccountID)
		connected = append(connected, store)
	}

	if len(accountIDs) == 0 {
		return nil, apperrors.ErrNoValidIntegrations
	}

	return &Resolution{AccountIDs: accountIDs, Stores: connected}, nil
}

func intersect(requested []string, accessible []models.AccessibleStore) []models.AccessibleStore {
	byID := make(map[string]models.AccessibleStore, len(accessible))
	for _, store := range accessible {
		byID[store.PublicID] = store
	}

	var matched []models.AccessibleStore
	for _, id := range requested {
		if store, ok := byID[id]; ok {
			matched = append(matched, store)
		}
	}
	return matched
}

func publicIDs(accessible []models.AccessibleStore) []string {
	ids := make([]string, 0, len(accessible))
	for _, store := range accessible {
		ids = append(ids, store.PublicID)
	}
	return ids
}
