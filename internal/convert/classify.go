package convert

import (
	"fmt"
	"path"
	"strings"
	"unicode"

	"github.com/gobwas/glob"
)

// Classification buckets one input path by the source framework's file
// layout conventions.
type Classification int

const (
	ClassModule Classification = iota
	ClassPage
	ClassAppShell
	ClassPackageJSON
	ClassSkip
)

func (c Classification) String() string {
	switch c {
	case ClassPage:
		return "page"
	case ClassAppShell:
		return "app-shell"
	case ClassPackageJSON:
		return "package-manifest"
	case ClassSkip:
		return "skip"
	default:
		return "module"
	}
}

// skipExtensions lists binary and asset extensions that are never parsed.
var skipExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".svg": true, ".ico": true, ".webp": true, ".avif": true,
	".woff": true, ".woff2": true, ".ttf": true, ".eot": true,
	".mp4": true, ".mp3": true, ".pdf": true, ".zip": true,
}

// HomePagePath is the fixed destination of the source home page.
const HomePagePath = "src/pages/Home"

// AppShellPath is the fixed destination of the application shell.
const AppShellPath = "src/App"

type ignoreMatcher []glob.Glob

func newIgnoreMatcher(patterns []string) (ignoreMatcher, error) {
	var matcher ignoreMatcher
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", pattern, err)
		}
		matcher = append(matcher, g)
	}
	return matcher, nil
}

func (m ignoreMatcher) matches(relPath string) bool {
	for _, g := range m {
		if g.Match(relPath) {
			return true
		}
	}
	return false
}

// Classify buckets one project-relative path.
func (c *Converter) Classify(p string) Classification {
	p = path.Clean(strings.ReplaceAll(p, "\\", "/"))
	base := path.Base(p)
	ext := strings.ToLower(path.Ext(base))
	stem := strings.TrimSuffix(base, path.Ext(base))

	switch {
	case c.ignored.matches(p), skipExtensions[ext]:
		return ClassSkip
	case stem == "_document":
		// The document shell has no component-routing equivalent.
		return ClassSkip
	case base == "package.json" && c.opts.UpdateDependencies:
		return ClassPackageJSON
	case ext == ".json":
		// Other manifests have no source rewrite.
		return ClassSkip
	case stem == "_app" && inPagesDir(p):
		return ClassAppShell
	case inPagesDir(p):
		return ClassPage
	default:
		return ClassModule
	}
}

func inPagesDir(p string) bool {
	for _, seg := range strings.Split(path.Dir(p), "/") {
		if seg == "pages" {
			return true
		}
	}
	return false
}

// DestPath computes the deterministic destination path for a converted
// module under the target layout.
func (c *Converter) DestPath(p string, class Classification) string {
	p = path.Clean(strings.ReplaceAll(p, "\\", "/"))
	ext := c.targetExt(path.Ext(p))
	stem := strings.TrimSuffix(path.Base(p), path.Ext(p))

	switch class {
	case ClassAppShell:
		return AppShellPath + ext
	case ClassPage:
		if stem == "index" {
			return HomePagePath + ext
		}
		return "src/pages/" + componentName(stem) + ext
	case ClassPackageJSON:
		return "package.json"
	default:
		return "src/" + strings.TrimSuffix(p, path.Ext(p)) + ext
	}
}

// targetExt maps a source extension to the emitted one. Dropping type
// annotations also drops the TypeScript extension.
func (c *Converter) targetExt(ext string) string {
	if c.opts.PreserveTypes {
		return ext
	}
	switch ext {
	case ".tsx":
		return ".jsx"
	case ".ts":
		return ".js"
	default:
		return ext
	}
}

// componentName capitalizes a page basename into a component-style name,
// stripping the source framework's dynamic-route brackets
// ("[id]" → "Id").
func componentName(stem string) string {
	stem = strings.Trim(stem, "[]")
	stem = strings.TrimPrefix(stem, "...")
	r := []rune(stem)
	if len(r) == 0 {
		return "Page"
	}
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// suffixDest resolves a destination collision by appending -2, -3, ...
// before the extension until the path is free.
func suffixDest(dest string, taken map[string]string) string {
	ext := path.Ext(dest)
	stem := strings.TrimSuffix(dest, ext)
	for i := 2; ; i++ {
		cand := fmt.Sprintf("%s-%d%s", stem, i, ext)
		if _, ok := taken[cand]; !ok {
			return cand
		}
	}
}
