// Package models holds the shared request/response types passed between the
// chat handler, resolver, query builder, and orchestrator.
package models

// AccessibleStore is one store the requesting user may read, as supplied by
// the caller's directory. AnalyticsAccountID is empty when the store has no
// connected analytics integration.
type AccessibleStore struct {
	PublicID           string `json:"public_id"`
	Name               string `json:"name"`
	AnalyticsAccountID string `json:"analytics_account_id,omitempty"`
}

// Connected reports whether the store has an analytics integration and can
// therefore contribute rows to a query.
func (s AccessibleStore) Connected() bool {
	return s.AnalyticsAccountID != ""
}
