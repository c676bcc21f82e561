package stores

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wizel-ai/insight-engine/pkg/apperrors"
	"github.com/wizel-ai/insight-engine/pkg/models"
)

var testStores = []models.AccessibleStore{
	{PublicID: "st_alpha", Name: "Alpha Outfitters", AnalyticsAccountID: "ka_001"},
	{PublicID: "st_bravo", Name: "Bravo Beauty", AnalyticsAccountID: "ka_002"},
	{PublicID: "st_charlie", Name: "Charlie Coffee"}, // no integration
}

func newTestResolver() *Resolver {
	return NewResolver(zap.NewNop())
}

func TestResolveAccountIDs_TrustedPathBypassesStoreFiltering(t *testing.T) {
	r := newTestResolver()

	res, err := r.ResolveAccountIDs(Request{AccountIDs: []string{"ka_999"}}, testStores)
	require.NoError(t, err)
	assert.Equal(t, []string{"ka_999"}, res.AccountIDs)
	assert.Empty(t, res.Stores)
}

func TestResolveAccountIDs_DefaultsToAllAccessible(t *testing.T) {
	r := newTestResolver()

	res, err := r.ResolveAccountIDs(Request{}, testStores)
	require.NoError(t, err)
	assert.Equal(t, []string{"ka_001", "ka_002"}, res.AccountIDs)
	// The unconnected store is excluded, not an error.
	require.Len(t, res.Stores, 2)
	assert.Equal(t, "Alpha Outfitters", res.Stores[0].Name)
}

func TestResolveAccountIDs_IntersectsRequestedStores(t *testing.T) {
	r := newTestResolver()

	res, err := r.ResolveAccountIDs(Request{StorePublicIDs: []string{"st_bravo", "st_unknown"}}, testStores)
	require.NoError(t, err)
	assert.Equal(t, []string{"ka_002"}, res.AccountIDs)
}

func TestResolveAccountIDs_NoAccessibleStores(t *testing.T) {
	r := newTestResolver()

	_, err := r.ResolveAccountIDs(Request{StorePublicIDs: []string{"st_other"}}, testStores)
	assert.ErrorIs(t, err, apperrors.ErrNoAccessibleStores)
}

func TestResolveAccountIDs_NoValidIntegrations(t *testing.T) {
	r := newTestResolver()

	// Authorized store exists but has no analytics account configured.
	_, err := r.ResolveAccountIDs(Request{StorePublicIDs: []string{"st_charlie"}}, testStores)
	assert.ErrorIs(t, err, apperrors.ErrNoValidIntegrations)

	// Same when the caller has no connected stores at all.
	_, err = r.ResolveAccountIDs(Request{}, []models.AccessibleStore{{PublicID: "st_x", Name: "X"}})
	assert.ErrorIs(t, err, apperrors.ErrNoValidIntegrations)
}
