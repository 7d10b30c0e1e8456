package badger_discovery_endpoint_test

import (
	"errors"
	"testing"

	"github.com/dgraph-io/badger"
	"github.com/horockey/regclient/internal/model"
	"github.com/horockey/regclient/internal/repository/discovery_endpoint"
	"github.com/horockey/regclient/internal/repository/discovery_endpoint/badger_discovery_endpoint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openDB(t *testing.T, dir string) *badger.DB {
	db, err := badger.Open(badger.DefaultOptions(dir))
	if err != nil {
		t.Fatalf("failed to open badger db: %v", err)
	}
	return db
}

func Test_Get_NotStored(t *testing.T) {
	db := openDB(t, t.TempDir())
	defer func() { _ = db.Close() }()

	repo := badger_discovery_endpoint.New(db)

	ep, err := repo.Get()

	assert.Empty(t, ep)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, discovery_endpoint.EndpointNotFoundError{}))
}

func Test_SetGet(t *testing.T) {
	db := openDB(t, t.TempDir())
	defer func() { _ = db.Close() }()

	repo := badger_discovery_endpoint.New(db)
	want := model.DiscoveryEndpoint{Host: "10.0.0.2", Port: 50055, Valid: true}

	require.NoError(t, repo.Set(want))

	got, err := repo.Get()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func Test_Set_Invalidation(t *testing.T) {
	db := openDB(t, t.TempDir())
	defer func() { _ = db.Close() }()

	repo := badger_discovery_endpoint.New(db)
	ep := model.DiscoveryEndpoint{Host: "10.0.0.2", Port: 50055, Valid: true}

	require.NoError(t, repo.Set(ep))
	ep.Valid = false
	require.NoError(t, repo.Set(ep))

	got, err := repo.Get()
	require.NoError(t, err)
	assert.False(t, got.Valid)
	assert.Equal(t, "10.0.0.2", got.Host)
}

func Test_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	want := model.DiscoveryEndpoint{Host: "registry.local", Port: 50055, Valid: true}

	db := openDB(t, dir)
	require.NoError(t, badger_discovery_endpoint.New(db).Set(want))
	require.NoError(t, db.Close())

	db = openDB(t, dir)
	defer func() { _ = db.Close() }()

	got, err := badger_discovery_endpoint.New(db).Get()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
