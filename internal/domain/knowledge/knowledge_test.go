package knowledge

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vcbot/internal/core/apperror"
)

func writeConfig(t *testing.T, yamlBody string, docs map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range docs {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	cfgPath := filepath.Join(dir, "knowledge.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(yamlBody), 0o644))
	return cfgPath
}

func TestLoadConfigAndGet(t *testing.T) {
	cfgPath := writeConfig(t, `
files:
  rules: rules.md
  constitution: constitution.md
`, map[string]string{
		"rules.md":        "# Server Rules\nBe nice.",
		"constitution.md": "We the people...",
	})

	base, err := LoadConfig(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"constitution", "rules"}, base.Names())

	content, err := base.Get(context.Background(), "rules")
	require.NoError(t, err)
	assert.Contains(t, content, "Be nice.")
}

func TestLoadConfigRejectsUnknownName(t *testing.T) {
	cfgPath := writeConfig(t, `
files:
  grimoire: rules.md
`, map[string]string{"rules.md": "x"})

	_, err := LoadConfig(cfgPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "grimoire")
}

func TestLoadConfigRejectsMissingTarget(t *testing.T) {
	cfgPath := writeConfig(t, `
files:
  rules: does-not-exist.md
`, nil)

	_, err := LoadConfig(cfgPath)
	require.Error(t, err)
}

func TestGetUnknownAndUnconfigured(t *testing.T) {
	cfgPath := writeConfig(t, `
files:
  rules: rules.md
`, map[string]string{"rules.md": "x"})
	base, err := LoadConfig(cfgPath)
	require.NoError(t, err)

	_, err = base.Get(context.Background(), "spellbook")
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))

	_, err = base.Get(context.Background(), "senate_rules")
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}
