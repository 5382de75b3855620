package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gosimple/slug"
	"github.com/spf13/cobra"

	"github.com/ppiankov/planets/internal/model"
	"github.com/ppiankov/planets/internal/pipeline"
	"github.com/ppiankov/planets/internal/worker"
)

var (
	batchList        string
	concurrency      int
	outputDir        string
	batchFormat      string
	batchUnits       bool
	batchMetricsFile string
	batchTimeout     time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch [file|url...]",
	Short: "Parse many kernels in parallel",
	Long: `Batch parses several kernels concurrently:
- Sources come from the arguments and/or a list file (one per line, # comments)
- A failing kernel is reported and skipped; the others still complete
- Each parsed kernel can be written to its own file in --output-dir
- Parse statistics can be exported to a Prometheus textfile

Example:
  planets batch pck00010.tpc pck00011.tpc
  planets batch --list kernels.txt --concurrency 8 --output-dir ./parsed
  planets batch --list kernels.txt --metrics-file /var/lib/node_exporter/planets.prom`,
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVarP(&batchList, "list", "l", "", "file listing kernel paths or URLs")
	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default from concurrency.workers)")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "", "write one rendered file per kernel to this directory")
	batchCmd.Flags().StringVarP(&batchFormat, "format", "f", "", "output format for --output-dir: json, yaml or text")
	batchCmd.Flags().BoolVar(&batchUnits, "units", false, "attach units in rendered files")
	batchCmd.Flags().StringVar(&batchMetricsFile, "metrics-file", "", "write Prometheus metrics to this textfile")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
}

func runBatch(cmd *cobra.Command, args []string) error {
	sources, err := batchSources(args, batchList)
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		return fmt.Errorf("no kernels given (pass paths or --list)")
	}

	e, err := setup(func(cfg *model.Config) {
		if concurrency > 0 {
			cfg.Concurrency.Workers = concurrency
		}
		if batchFormat != "" {
			cfg.Output.Format = batchFormat
		}
		if batchUnits {
			cfg.Output.Units = true
		}
	})
	if err != nil {
		return err
	}
	defer e.close()

	renderer, err := pipeline.NewRenderer(e.cfg.Output.Format, e.cfg.Output.Units)
	if err != nil {
		return err
	}
	if outputDir != "" {
		if err := os.MkdirAll(outputDir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	stderr := cmd.ErrOrStderr()
	out := cmd.OutOrStdout()
	fmt.Fprintf(stderr, "⚙️  Parsing %d kernels with %d workers...\n", len(sources), e.cfg.Concurrency.Workers)

	results := e.pipeline.Batch(ctx, sources, e.cfg.Concurrency.Workers)

	successCount := 0
	names := make(map[string]int)
	for _, result := range results {
		if result.Error != nil {
			fmt.Fprintf(stderr, "✗ %s: %v\n", result.Source, result.Error)
			continue
		}
		successCount++

		line := fmt.Sprintf("✓ %s (%d constants, %d segments)", result.Source, result.Result.Constants.Len(), result.Result.Segments)
		if outputDir != "" {
			path := filepath.Join(outputDir, outputName(result.Source, names)+renderer.Ext())
			if err := renderer.RenderFile(path, result.Result); err != nil {
				fmt.Fprintf(stderr, "✗ %s: failed to write output: %v\n", result.Source, err)
				continue
			}
			line += " -> " + path
		}
		fmt.Fprintln(out, line)
	}

	fmt.Fprintf(stderr, "\n  Total:     %d kernels\n", len(results))
	fmt.Fprintf(stderr, "  Success:   %d\n", successCount)
	fmt.Fprintf(stderr, "  Failures:  %d\n", len(results)-successCount)

	if batchMetricsFile != "" {
		if err := e.metrics.WriteTextfile(batchMetricsFile); err != nil {
			return err
		}
	}

	if successCount == 0 {
		return fmt.Errorf("all kernels failed: %w", worker.Errors(results))
	}
	return nil
}

// batchSources merges argument sources with the list file, keeping the
// first occurrence of each
func batchSources(args []string, listFile string) ([]string, error) {
	all := append([]string(nil), args...)
	if listFile != "" {
		listed, err := worker.ReadSourcesFromFile(listFile)
		if err != nil {
			return nil, err
		}
		all = append(all, listed...)
	}

	seen := make(map[string]bool, len(all))
	out := all[:0]
	for _, src := range all {
		if !seen[src] {
			seen[src] = true
			out = append(out, src)
		}
	}
	return out, nil
}

// outputName slugs the source's base name; repeated names get a numeric suffix
func outputName(source string, used map[string]int) string {
	name := slug.Make(pipeline.BaseName(source))
	if name == "" {
		name = "kernel"
	}
	used[name]++
	if n := used[name]; n > 1 {
		name += "-" + strconv.Itoa(n)
	}
	return name
}
