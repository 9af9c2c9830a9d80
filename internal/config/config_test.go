package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Setenv("BUDREGISTRY_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))

	c, err := Load()
	require.NoError(t, err)
	require.Equal(t, Default(), c)
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	doc := `
[catalog]
page_size = 12
layout = "LIST"

[wizard]
use_case = "require-markets"
search_delay = "50ms"

[assistant]
mode = "llm"

[ui]
theme = "light"
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))
	t.Setenv("BUDREGISTRY_CONFIG", path)
	t.Setenv("BUDREGISTRY_LLM_PROVIDER", "OpenAI")
	t.Setenv("BUDREGISTRY_CATALOG_PAGE_SIZE", "24")

	c, err := Load()
	require.NoError(t, err)
	require.Equal(t, 24, c.Catalog.PageSize, "env wins over file")
	require.Equal(t, "list", c.Catalog.Layout)
	require.Equal(t, "require-markets", c.Wizard.UseCase)
	require.Equal(t, 50*time.Millisecond, c.Wizard.SearchDelay)
	require.Equal(t, AssistantLLM, c.Assistant.Mode)
	require.Equal(t, "openai", c.LLM.Provider)
	require.Equal(t, ThemeLight, c.UI.Theme)
}

func TestLoadNormalizesInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	doc := `
[catalog]
page_size = 10
layout = "mosaic"

[wizard]
use_case = "party"

[assistant]
mode = "psychic"

[ui]
theme = "neon"
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))
	t.Setenv("BUDREGISTRY_CONFIG", path)

	c, err := Load()
	require.NoError(t, err)
	d := Default()
	require.Equal(t, d.Catalog, c.Catalog)
	require.Equal(t, d.Wizard.UseCase, c.Wizard.UseCase)
	require.Equal(t, d.Assistant.Mode, c.Assistant.Mode)
	require.Equal(t, d.UI.Theme, c.UI.Theme)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	t.Setenv("BUDREGISTRY_CONFIG", path)

	want := Default()
	want.Catalog.PageSize = 12
	want.Wizard.UseCase = "empty-search"
	want.Assistant.ReplyDelay = 2 * time.Second
	want.Log.File = "/tmp/budregistry.log"
	require.NoError(t, Save(want))

	got, err := Load()
	require.NoError(t, err)
	require.Equal(t, want, got)
}
