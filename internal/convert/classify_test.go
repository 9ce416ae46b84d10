package convert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crossframe-dev/reroute/internal/config"
)

// Test Plan for path classification and destination mapping:
// - Page, app-shell, document, module and manifest buckets
// - Asset extensions and ignored paths are skipped
// - Home page and app shell land on their fixed destinations
// - Dynamic-route pages get component-style names
// - Dropping types also drops the TypeScript extension
// - Collision suffixing walks -2, -3, ...

func TestClassify(t *testing.T) {
	t.Parallel()

	opts := config.DefaultOptions()
	opts.UpdateDependencies = true
	c := newTestConverter(t, opts)

	cases := map[string]Classification{
		"pages/index.tsx":       ClassPage,
		"src/pages/about.tsx":   ClassPage,
		"pages/_app.tsx":        ClassAppShell,
		"pages/_document.tsx":   ClassSkip,
		"package.json":          ClassPackageJSON,
		"tsconfig.json":         ClassSkip,
		"components/NavBar.tsx": ClassModule,
		"lib/api.ts":            ClassModule,
		"public/logo.png":       ClassSkip,
		"public/font.woff2":     ClassSkip,
	}
	for p, want := range cases {
		assert.Equal(t, want, c.Classify(p), p)
	}
}

func TestClassify_IgnorePatterns(t *testing.T) {
	t.Parallel()

	c, err := New(config.DefaultOptions(), []string{"node_modules/**", "generated/*.ts"})
	require.NoError(t, err)

	assert.Equal(t, ClassSkip, c.Classify("node_modules/react/index.js"))
	assert.Equal(t, ClassSkip, c.Classify("generated/types.ts"))
	assert.Equal(t, ClassModule, c.Classify("src/types.ts"))
}

func TestDestPath(t *testing.T) {
	t.Parallel()

	c := newTestConverter(t, config.DefaultOptions())

	assert.Equal(t, "src/pages/Home.tsx", c.DestPath("pages/index.tsx", ClassPage))
	assert.Equal(t, "src/pages/About.tsx", c.DestPath("pages/about.tsx", ClassPage))
	assert.Equal(t, "src/pages/Id.tsx", c.DestPath("pages/[id].tsx", ClassPage))
	assert.Equal(t, "src/pages/Slug.tsx", c.DestPath("pages/[...slug].tsx", ClassPage))
	assert.Equal(t, "src/App.tsx", c.DestPath("pages/_app.tsx", ClassAppShell))
	assert.Equal(t, "package.json", c.DestPath("package.json", ClassPackageJSON))
	assert.Equal(t, "src/components/NavBar.tsx", c.DestPath("components/NavBar.tsx", ClassModule))
}

func TestDestPath_DroppedTypesDropExtension(t *testing.T) {
	t.Parallel()

	opts := config.DefaultOptions()
	opts.PreserveTypes = false
	c := newTestConverter(t, opts)

	assert.Equal(t, "src/pages/Home.jsx", c.DestPath("pages/index.tsx", ClassPage))
	assert.Equal(t, "src/lib/api.js", c.DestPath("lib/api.ts", ClassModule))
	assert.Equal(t, "src/lib/legacy.jsx", c.DestPath("lib/legacy.jsx", ClassModule))
}

func TestSuffixDest(t *testing.T) {
	t.Parallel()

	taken := map[string]string{
		"src/pages/Home.tsx":   "pages/index.tsx",
		"src/pages/Home-2.tsx": "pages/home.tsx",
	}
	assert.Equal(t, "src/pages/Home-3.tsx", suffixDest("src/pages/Home.tsx", taken))
}

func TestComponentName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "About", componentName("about"))
	assert.Equal(t, "Id", componentName("[id]"))
	assert.Equal(t, "Slug", componentName("[...slug]"))
	assert.Equal(t, "Page", componentName(""))
}
