package convert

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/crossframe-dev/reroute/internal/rewrite"
)

// targetDependencies are added to a rewritten package manifest in place
// of the source framework.
var targetDependencies = map[string]string{
	"react-router-dom":      "^6.26.0",
	"react-helmet":          "^6.1.0",
	"@tanstack/react-query": "^5.51.0",
}

// removedDependencies are source-framework packages dropped from the
// manifest.
var removedDependencies = []string{"next", "eslint-config-next", "@next/font"}

// rewriteDependencies retargets a package.json dependency list. The
// original text is returned unchanged when the manifest does not depend
// on the source framework.
func rewriteDependencies(content []byte) (rewrite.TransformResult, error) {
	result := rewrite.TransformResult{Code: string(content)}

	var manifest map[string]json.RawMessage
	if err := json.Unmarshal(content, &manifest); err != nil {
		return result, fmt.Errorf("invalid package.json: %w", err)
	}

	deps := map[string]string{}
	if raw, ok := manifest["dependencies"]; ok {
		if err := json.Unmarshal(raw, &deps); err != nil {
			return result, fmt.Errorf("invalid dependencies section: %w", err)
		}
	}
	if _, hasNext := deps["next"]; !hasNext {
		return result, nil
	}

	for _, name := range removedDependencies {
		if _, ok := deps[name]; ok {
			delete(deps, name)
			result.Changes = append(result.Changes, fmt.Sprintf("Removed dependency %s", name))
		}
	}
	var added []string
	for name := range targetDependencies {
		if _, ok := deps[name]; !ok {
			added = append(added, name)
		}
	}
	sort.Strings(added)
	for _, name := range added {
		deps[name] = targetDependencies[name]
		result.Changes = append(result.Changes, fmt.Sprintf("Added dependency %s", name))
	}

	raw, err := json.Marshal(deps)
	if err != nil {
		return result, err
	}
	manifest["dependencies"] = raw

	out, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return result, err
	}
	result.Code = string(out) + "\n"
	return result, nil
}
