package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/crossframe-dev/reroute/internal/analyzer"
	"github.com/crossframe-dev/reroute/internal/parser"
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze [file...]",
	Short: "Print the fact sheet for one or more source files",
	Long: `Analyze parses each file and prints its fact sheet as JSON: imports,
exports, components, hooks, and whether Next.js features are in use.

Examples:
  reroute analyze src/pages/index.tsx
  reroute analyze src/pages/*.tsx
`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	sheets := make(map[string]json.RawMessage, len(args))

	for _, path := range args {
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		tree, err := parser.Parse(content, path, parser.OptionsForFile(path))
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}

		facts := analyzer.Analyze(tree)
		data, err := json.Marshal(facts)
		if err != nil {
			return fmt.Errorf("failed to encode fact sheet for %s: %w", path, err)
		}
		sheets[path] = data
	}

	out, err := json.MarshalIndent(sheets, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
