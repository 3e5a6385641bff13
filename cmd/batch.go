// File: cmd/batch.go
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xkilldash9x/stylebox/internal/browser/layout"
	"github.com/xkilldash9x/stylebox/internal/browser/units"
	"github.com/xkilldash9x/stylebox/internal/config"
	"github.com/xkilldash9x/stylebox/internal/observability"
)

func newBatchCmd() *cobra.Command {
	var (
		opts   layoutOptions
		output string
		pretty bool
	)

	batchCmd := &cobra.Command{
		Use:   "batch <file.html>...",
		Short: "Lay out several HTML documents concurrently",
		Long: `Lays out every document on its own goroutine with its own engine and
prints a JSON array of results in argument order. The first failure cancels
the remaining documents.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configFromContext(cmd.Context())
			if err != nil {
				return err
			}
			results, err := runBatch(cmd.Context(), cfg, args, opts)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), output, results, pretty)
		},
	}

	batchCmd.Flags().StringVar(&opts.cssFile, "css", "", "extra stylesheet applied to every document")
	batchCmd.Flags().StringVar(&opts.xpath, "xpath", "", "only report elements matching this XPath expression")
	batchCmd.Flags().StringVarP(&output, "output", "o", "", "write JSON to this file instead of stdout")
	batchCmd.Flags().BoolVar(&pretty, "pretty", false, "indent JSON output")
	batchCmd.Flags().Int("concurrency", 0, "documents laid out in parallel")
	addLayoutFlags(batchCmd)
	return batchCmd
}

// runBatch lays out paths with at most cfg.Batch().Concurrency documents in
// flight. Engines are not shared: each goroutine owns one.
func runBatch(ctx context.Context, cfg config.Interface, paths []string, opts layoutOptions) ([]*DocumentOutput, error) {
	logger := observability.Component("batch")
	vp := viewportFromConfig(cfg.Viewport())
	results := make([]*DocumentOutput, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Batch().Concurrency)

	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out, err := layoutOne(cfg.Layout(), logger, path, opts, vp)
			if err != nil {
				return err
			}
			results[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("batch layout failed: %w", err)
	}

	logger.Info("Batch layout complete", zap.Int("documents", len(paths)))
	return results, nil
}

func layoutOne(lc config.LayoutConfig, logger *zap.Logger, path string, opts layoutOptions, vp units.Viewport) (*DocumentOutput, error) {
	engine := layout.NewEngine(lc, layout.WithLogger(logger.With(zap.String("source", path))))
	out, err := layoutFile(engine, path, opts, vp)
	if err != nil {
		return nil, err
	}
	logger.Debug("Document laid out",
		zap.String("source", path),
		zap.Int("nodes", out.Metrics.NodeCount),
		zap.Duration("elapsed", out.Metrics.Elapsed),
	)
	return out, nil
}
