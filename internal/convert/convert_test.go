package convert

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crossframe-dev/reroute/internal/config"
)

// Test Plan for the batch orchestrator:
// - Accounting: ModifiedCount always equals len(TransformedFiles)
// - TransformationRate over all inputs, 0 for an empty batch
// - Per-file failures stay isolated; healthy files still convert
// - Results come back in input order across batch boundaries
// - Assets and ignored paths are skipped without parsing
// - Destination collisions warn and suffix deterministically
// - package.json is rewritten only when the toggle is on
// - A cancelled context aborts with BatchFatalError

const linkPage = `import Link from "next/link";

export default function Nav() {
  return <Link href="/">Home</Link>;
}
`

const plainModule = `export function helper() {
  return 1;
}
`

func newTestConverter(t *testing.T, opts config.ConversionOptions) *Converter {
	t.Helper()
	c, err := New(opts, nil)
	require.NoError(t, err)
	return c
}

func TestFiles_Accounting(t *testing.T) {
	t.Parallel()

	c := newTestConverter(t, config.DefaultOptions())
	files := []SourceFile{
		{Path: "pages/index.tsx", Content: []byte(linkPage)},
		{Path: "lib/helper.ts", Content: []byte(plainModule)},
		{Path: "pages/about.tsx", Content: []byte(linkPage)},
		{Path: "assets/logo.png", Content: []byte{0x89, 'P', 'N', 'G'}},
	}

	result, err := c.Files(context.Background(), files)
	require.NoError(t, err)

	assert.Equal(t, result.ModifiedCount, len(result.TransformedFiles))
	assert.Equal(t, 2, result.ModifiedCount)
	assert.InDelta(t, 0.5, result.TransformationRate, 1e-9)
	assert.Empty(t, result.Errors)

	assert.Equal(t, "src/pages/Home.tsx", result.TransformedFiles[0].Dest)
	assert.Equal(t, "src/pages/About.tsx", result.TransformedFiles[1].Dest)
	assert.Contains(t, result.Details, "Unchanged lib/helper.ts")
	assert.Contains(t, result.Details, "Skipped assets/logo.png")
}

func TestFiles_EmptyBatch(t *testing.T) {
	t.Parallel()

	c := newTestConverter(t, config.DefaultOptions())
	result, err := c.Files(context.Background(), nil)
	require.NoError(t, err)

	assert.Zero(t, result.ModifiedCount)
	assert.Zero(t, result.TransformationRate)
	assert.Empty(t, result.Errors)
}

func TestFiles_IsolatesFailures(t *testing.T) {
	t.Parallel()

	c := newTestConverter(t, config.DefaultOptions())
	files := []SourceFile{
		{Path: "pages/good.tsx", Content: []byte(linkPage)},
		{Path: "pages/broken.tsx", Content: []byte("const = {\n")},
		{Path: "pages/also-good.tsx", Content: []byte(linkPage)},
	}

	result, err := c.Files(context.Background(), files)
	require.NoError(t, err)

	require.Len(t, result.Errors, 1)
	assert.Equal(t, "pages/broken.tsx", result.Errors[0].Path)
	assert.Equal(t, 2, result.ModifiedCount)
	assert.Equal(t, result.ModifiedCount, len(result.TransformedFiles))
}

func TestFiles_InputOrderAcrossBatches(t *testing.T) {
	t.Parallel()

	c := newTestConverter(t, config.DefaultOptions())

	// More files than one batch holds, so ordering must survive the
	// batch boundary.
	var files []SourceFile
	for i := 0; i < batchSize*2+3; i++ {
		files = append(files, SourceFile{
			Path:    fmt.Sprintf("components/Widget%02d.tsx", i),
			Content: []byte(linkPage),
		})
	}

	result, err := c.Files(context.Background(), files)
	require.NoError(t, err)

	require.Len(t, result.TransformedFiles, len(files))
	for i, mapping := range result.TransformedFiles {
		assert.Equal(t, files[i].Path, mapping.Source)
	}
}

func TestFiles_CollisionSuffix(t *testing.T) {
	t.Parallel()

	c := newTestConverter(t, config.DefaultOptions())
	files := []SourceFile{
		{Path: "pages/index.tsx", Content: []byte(linkPage)},
		{Path: "pages/Home.tsx", Content: []byte(linkPage)},
	}

	result, err := c.Files(context.Background(), files)
	require.NoError(t, err)

	require.Len(t, result.TransformedFiles, 2)
	assert.Equal(t, "src/pages/Home.tsx", result.TransformedFiles[0].Dest)
	assert.Equal(t, "src/pages/Home-2.tsx", result.TransformedFiles[1].Dest)

	var collisionNoted bool
	for _, detail := range result.Details {
		if strings.Contains(detail, "pages/Home.tsx") && strings.Contains(detail, "src/pages/Home-2.tsx") {
			collisionNoted = true
		}
	}
	assert.True(t, collisionNoted, "expected a collision warning naming the suffixed destination")
}

func TestFiles_PackageJSON(t *testing.T) {
	t.Parallel()

	manifest := []byte(`{
  "name": "demo",
  "dependencies": {
    "next": "14.0.0",
    "react": "^18.2.0"
  }
}
`)

	opts := config.DefaultOptions()
	opts.UpdateDependencies = true
	c := newTestConverter(t, opts)

	result, err := c.Files(context.Background(), []SourceFile{{Path: "package.json", Content: manifest}})
	require.NoError(t, err)

	require.Len(t, result.TransformedFiles, 1)
	code := result.TransformedFiles[0].Code
	assert.Equal(t, "package.json", result.TransformedFiles[0].Dest)
	assert.NotContains(t, code, `"next"`)
	assert.Contains(t, code, "react-router-dom")
	assert.Contains(t, code, "@tanstack/react-query")
	assert.Contains(t, code, `"react"`)
}

func TestFiles_PackageJSONToggleOff(t *testing.T) {
	t.Parallel()

	c := newTestConverter(t, config.DefaultOptions())
	result, err := c.Files(context.Background(), []SourceFile{
		{Path: "package.json", Content: []byte(`{"dependencies":{"next":"14.0.0"}}`)},
	})
	require.NoError(t, err)

	assert.Empty(t, result.TransformedFiles)
	assert.Contains(t, result.Details, "Skipped package.json")
}

func TestFiles_CancelledContext(t *testing.T) {
	t.Parallel()

	c := newTestConverter(t, config.DefaultOptions())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := c.Files(ctx, []SourceFile{{Path: "pages/index.tsx", Content: []byte(linkPage)}})
	assert.Nil(t, result)

	var fatal *BatchFatalError
	require.ErrorAs(t, err, &fatal)
}

func TestFiles_IgnoredPaths(t *testing.T) {
	t.Parallel()

	c, err := New(config.DefaultOptions(), []string{"vendor/**"})
	require.NoError(t, err)

	result, err := c.Files(context.Background(), []SourceFile{
		{Path: "vendor/lib.tsx", Content: []byte(linkPage)},
		{Path: "pages/index.tsx", Content: []byte(linkPage)},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.ModifiedCount)
	assert.Contains(t, result.Details, "Skipped vendor/lib.tsx")
}
