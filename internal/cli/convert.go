package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/crossframe-dev/reroute/internal/config"
	"github.com/crossframe-dev/reroute/internal/convert"
	"github.com/crossframe-dev/reroute/internal/report"
	"github.com/crossframe-dev/reroute/internal/watcher"
)

var (
	quietFlag  bool
	watchFlag  bool
	dryRunFlag bool
	outFlag    string
)

// convertCmd represents the convert command
var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert a Next.js project to React",
	Long: `Convert discovers source files under the current directory, rewrites
Next.js constructs into their React equivalents, and writes the results
under the output directory.

The converter:
  - Translates next/link, next/head, next/image and next/dynamic markup
  - Rewrites useRouter calls to react-router-dom hooks
  - Converts data-fetching exports into react-query hooks
  - Re-homes pages/ files under the target src/ layout

Examples:
  # Convert the current directory into ./converted
  reroute convert

  # Convert into a specific directory
  reroute convert --out ../my-react-app

  # Show what would change without writing files
  reroute convert --dry-run

  # Keep converting as source files change
  reroute convert --watch
`,
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)
	convertCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "Disable progress bars and non-error output")
	convertCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Watch for file changes and reconvert")
	convertCmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "Report changes without writing any files")
	convertCmd.Flags().StringVarP(&outFlag, "out", "o", "converted", "Output directory for converted files")
}

func runConvert(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nInterrupted! Cancelling conversion...")
		cancel()
	}()

	rootDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	cfg, err := config.LoadConfigFromDir(rootDir)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	reporter := NewCLIProgressReporter(quietFlag)
	converter, err := convert.NewWithReporter(cfg.Options(), cfg.Paths.Ignore, reporter)
	if err != nil {
		return fmt.Errorf("failed to create converter: %w", err)
	}

	var store *report.Store
	if cfg.Report.Database != "" {
		store, err = report.Open(cfg.Report.Database)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	run := func() error {
		return runOnce(ctx, rootDir, cfg, converter, store)
	}

	if err := run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("conversion cancelled")
		}
		return err
	}

	if !watchFlag {
		return nil
	}

	if !quietFlag {
		log.Println("Starting watch mode...")
	}
	return watchAndConvert(ctx, rootDir, cfg, run)
}

// runOnce discovers, converts, and (unless dry-run) writes one pass over
// the project.
func runOnce(ctx context.Context, rootDir string, cfg *config.Config, converter *convert.Converter, store *report.Store) error {
	discovery, err := newFileDiscovery(rootDir, cfg.Paths.Include, cfg.Paths.Ignore)
	if err != nil {
		return fmt.Errorf("invalid path patterns: %w", err)
	}
	files, err := discovery.discover()
	if err != nil {
		return fmt.Errorf("file discovery failed: %w", err)
	}
	if !quietFlag {
		log.Printf("Discovered %d source files\n", len(files))
	}

	result, err := converter.Files(ctx, files)
	if err != nil {
		return err
	}

	if verbose || dryRunFlag {
		for _, detail := range result.Details {
			fmt.Println(detail)
		}
	}

	if !dryRunFlag {
		outDir := outFlag
		if !filepath.IsAbs(outDir) {
			outDir = filepath.Join(rootDir, outDir)
		}
		for _, mapping := range result.TransformedFiles {
			dest := filepath.Join(outDir, filepath.FromSlash(mapping.Dest))
			if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
			if err := os.WriteFile(dest, []byte(mapping.Code), 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", dest, err)
			}
		}
	}

	if store != nil {
		runID, err := store.SaveRun(result, len(files))
		if err != nil {
			log.Printf("Warning: failed to save run report: %v", err)
		} else if verbose {
			fmt.Printf("Run report saved: %s\n", runID)
		}
	}

	if quietFlag {
		fmt.Printf("Conversion complete: %d files converted, %d errors\n",
			result.ModifiedCount, len(result.Errors))
	}
	return nil
}

// watchAndConvert blocks, re-running the conversion after each debounced
// change set, until the context is cancelled.
func watchAndConvert(ctx context.Context, rootDir string, cfg *config.Config, run func() error) error {
	extensions := []string{".js", ".jsx", ".ts", ".tsx", ".json"}
	skipDirs := append(skipDirNames(cfg.Paths.Ignore), ".reroute", outFlag)

	w, err := watcher.New([]string{rootDir}, extensions, skipDirs)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer w.Stop()

	err = w.Start(ctx, func(files []string) {
		if !quietFlag {
			log.Printf("Detected %d changed files, reconverting...\n", len(files))
		}
		w.Pause()
		defer w.Resume()
		if err := run(); err != nil && ctx.Err() == nil {
			log.Printf("Warning: reconversion failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	<-ctx.Done()
	return nil
}

// skipDirNames extracts plain directory names from ignore patterns of
// the form "name/**".
func skipDirNames(ignorePatterns []string) []string {
	var names []string
	for _, pattern := range ignorePatterns {
		name := strings.TrimSuffix(pattern, "/**")
		if name != pattern && !strings.ContainsAny(name, "*?[{") {
			names = append(names, name)
		}
	}
	return names
}
