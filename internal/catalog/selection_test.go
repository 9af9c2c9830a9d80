package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSelectionToggleAllIsPageScoped(t *testing.T) {
	t.Parallel()

	var s Selection
	s.Toggle("other-page")
	s.Toggle("a")

	s.ToggleAll([]string{"a", "b", "c"})
	require.Equal(t, []string{"a", "b", "c"}, s.IDs(), "select-all replaces selection with the page")

	s.ToggleAll([]string{"a", "b", "c"})
	require.Equal(t, 0, s.Len(), "second select-all clears")
}

func TestSelectionToggleAllTwiceReturnsToEmpty(t *testing.T) {
	t.Parallel()

	var s Selection
	page := []string{"x", "y"}
	s.ToggleAll(page)
	s.ToggleAll(page)
	require.Empty(t, s.IDs())
}

func TestSelectionToggleAndRetain(t *testing.T) {
	t.Parallel()

	var s Selection
	require.True(t, s.Toggle("a"))
	require.True(t, s.Toggle("b"))
	require.False(t, s.Toggle("a"))
	require.True(t, s.Contains("b"))

	s.Toggle("c")
	s.Retain([]string{"c"})
	require.Equal(t, []string{"c"}, s.IDs())
}
