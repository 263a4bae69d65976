package memory

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/tenant-booking/internal/errs"
	"github.com/iliyamo/tenant-booking/internal/repository"
)

func TestLoadSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"spaces": [{"id": 1, "tenant_id": 7, "name": "Loft"}],
		"tables": [{"id": 2, "tenant_id": 7, "label": "T2", "capacity": 6}]
	}`), 0o600))

	s := New()
	require.NoError(t, s.LoadFile(path))

	err := s.View(context.Background(), func(tx repository.Tx) error {
		sp, err := tx.Resources().GetSpace(context.Background(), 7, 1)
		require.NoError(t, err)
		assert.Equal(t, "Loft", sp.Name)
		tb, err := tx.Resources().GetTable(context.Background(), 7, 2)
		require.NoError(t, err)
		assert.Equal(t, 6, tb.Capacity)
		_, err = tx.Resources().GetTable(context.Background(), 8, 2)
		assert.ErrorIs(t, err, errs.ErrNotFound)
		return nil
	})
	require.NoError(t, err)
}

func TestLoadSeedRejectsIncompleteResources(t *testing.T) {
	s := New()
	assert.Error(t, s.Load(strings.NewReader(`{"spaces":[{"id":1,"name":"no tenant"}]}`)))
	assert.Error(t, s.Load(strings.NewReader(`{"tables":[{"tenant_id":1,"label":"no id"}]}`)))
	assert.Error(t, s.Load(strings.NewReader(`not json`)))
	assert.Error(t, s.LoadFile(filepath.Join(t.TempDir(), "missing.json")))
}
