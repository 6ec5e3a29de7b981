package daemon

import (
	"path/filepath"
	"testing"

	"github.com/foundryhq/workbay/internal/changeset"
	"github.com/foundryhq/workbay/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemRegistryAddRemoveList(t *testing.T) {
	reg := NewMemRegistry()
	require.NoError(t, reg.Add("core", "/repo/core"))
	require.NoError(t, reg.Add("util", "/repo/util"))

	err := reg.Add("core", "/repo/core-again")
	require.Error(t, err)

	list := reg.List()
	require.Len(t, list, 2)
	assert.Equal(t, "core", list[0].Name)
	assert.Equal(t, "util", list[1].Name)

	require.NoError(t, reg.Remove("core"))
	list = reg.List()
	require.Len(t, list, 1)
	assert.Equal(t, "util", list[0].Name)

	require.Error(t, reg.Remove("core"))
}

func TestMemRegistryChangesWithoutStoreReturnsEmpty(t *testing.T) {
	reg := NewMemRegistry()
	require.NoError(t, reg.Add("core", "/repo/core"))

	changes, err := reg.Changes("core")
	require.NoError(t, err)
	assert.Empty(t, changes)
}

func TestMemRegistryChangesUnregisteredReposErrors(t *testing.T) {
	reg := NewMemRegistry()
	_, err := reg.Changes("missing")
	require.Error(t, err)
}

func TestMemRegistryWithChangesetDirReportsBranches(t *testing.T) {
	reg := NewMemRegistry()
	require.NoError(t, reg.Add("core", "/repo/core"))

	dir := filepath.Join(t.TempDir(), "changesets")
	require.NoError(t, reg.WithChangesetDir("core", dir))

	store, err := changeset.NewStore(dir)
	require.NoError(t, err)
	cs, err := changeset.New("feature/a", types.ChangeTypePatch, []string{"core"}, nil, "")
	require.NoError(t, err)
	require.NoError(t, store.Create(cs))

	changes, err := reg.Changes("core")
	require.NoError(t, err)
	assert.Equal(t, []string{"feature/a"}, changes)
}
