package platform

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupKnownSystem(t *testing.T) {
	t.Parallel()

	table := Default()
	s, ok := table.Lookup("megadrive")
	require.True(t, ok)
	assert.Equal(t, "megadrive", s.Canonical)
	assert.Equal(t, "megadrive", s.Subdir)
	assert.False(t, s.Pseudo())
	assert.Empty(t, s.Extensions)
}

func TestLookupUnknownSystem(t *testing.T) {
	t.Parallel()

	_, ok := Default().Lookup("gamecube")
	assert.False(t, ok)
}

func TestPseudoSystemsAliasCanonicalName(t *testing.T) {
	t.Parallel()

	table := Default()

	ports, ok := table.Lookup("ports")
	require.True(t, ok)
	assert.True(t, ports.Pseudo())
	assert.Equal(t, "pc", ports.Canonical)
	assert.Equal(t, "ports", ports.Subdir, "pseudo-system must keep its own on-disk path")
	assert.Equal(t, []string{"*.sh"}, ports.Extensions)

	mdjp, ok := table.Lookup("megadrive-jp")
	require.True(t, ok)
	assert.True(t, mdjp.Pseudo())
	assert.Equal(t, "megadrive", mdjp.Canonical)
	assert.Equal(t, "megadrive-jp", mdjp.Subdir)
}

func TestNamesSortedAndComplete(t *testing.T) {
	t.Parallel()

	table := Default()
	names := table.Names()
	assert.Len(t, names, len(table))
	assert.True(t, sort.StringsAreSorted(names))
	assert.Contains(t, names, "ports")
}
