package convert

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for manifest rewriting:
// - Framework packages removed, target packages added
// - Existing target versions are kept
// - Manifests without the framework pass through untouched
// - Invalid JSON reports an error with the original text preserved

func TestRewriteDependencies(t *testing.T) {
	t.Parallel()

	manifest := []byte(`{
  "name": "demo",
  "version": "1.0.0",
  "dependencies": {
    "next": "14.0.0",
    "eslint-config-next": "14.0.0",
    "react": "^18.2.0",
    "react-helmet": "^5.0.0"
  }
}`)

	result, err := rewriteDependencies(manifest)
	require.NoError(t, err)
	require.True(t, result.Modified())

	var out struct {
		Name         string            `json:"name"`
		Dependencies map[string]string `json:"dependencies"`
	}
	require.NoError(t, json.Unmarshal([]byte(result.Code), &out))

	assert.Equal(t, "demo", out.Name)
	assert.NotContains(t, out.Dependencies, "next")
	assert.NotContains(t, out.Dependencies, "eslint-config-next")
	assert.Equal(t, "^18.2.0", out.Dependencies["react"])
	assert.Equal(t, "^6.26.0", out.Dependencies["react-router-dom"])
	assert.Equal(t, "^5.51.0", out.Dependencies["@tanstack/react-query"])
	// An existing pin wins over the default version.
	assert.Equal(t, "^5.0.0", out.Dependencies["react-helmet"])

	// One change entry per dependency actually added or removed.
	assert.Contains(t, result.Changes, "Removed dependency next")
	assert.Contains(t, result.Changes, "Removed dependency eslint-config-next")
	assert.Contains(t, result.Changes, "Added dependency react-router-dom")
	assert.Contains(t, result.Changes, "Added dependency @tanstack/react-query")
	assert.NotContains(t, result.Changes, "Added dependency react-helmet")
}

func TestRewriteDependencies_NoFramework(t *testing.T) {
	t.Parallel()

	manifest := []byte(`{"dependencies": {"react": "^18.2.0"}}`)
	result, err := rewriteDependencies(manifest)
	require.NoError(t, err)

	assert.False(t, result.Modified())
	assert.Equal(t, string(manifest), result.Code)
}

func TestRewriteDependencies_InvalidJSON(t *testing.T) {
	t.Parallel()

	result, err := rewriteDependencies([]byte("{not json"))
	require.Error(t, err)
	assert.Equal(t, "{not json", result.Code)
	assert.False(t, result.Modified())
}
