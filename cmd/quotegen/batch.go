package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/locvowork/quotes_service/internal/service"
	"github.com/locvowork/quotes_service/pkg/dataflow"
	"github.com/locvowork/quotes_service/pkg/quotexlsx"
	"github.com/spf13/cobra"
)

type batchOptions struct {
	renderOptions
	outDir  string
	workers int
}

func newRenderBatchCmd() *cobra.Command {
	opts := &batchOptions{}
	cmd := &cobra.Command{
		Use:   "render-batch [payload.json...]",
		Short: "Render several payloads concurrently",
		Long: `render-batch renders every payload into --out-dir, naming each workbook
after its payload file. Failures are reported per payload.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRenderBatch(cmd, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.outDir, "out-dir", ".", "Directory for the rendered workbooks")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", runtime.NumCPU(), "Concurrent renders")
	cmd.Flags().StringSliceVar(&opts.templateDirs, "templates", []string{"templates"}, "Template directories, searched in order")
	cmd.Flags().StringVar(&opts.layoutsDir, "layouts", "", "Directory of per-variant layout YAML files")
	cmd.Flags().StringVar(&opts.archiveDir, "archive", "", "Also archive each quote under this directory")
	cmd.Flags().IntVar(&opts.anchorMaxRow, "anchor-max-row", quotexlsx.DefaultAnchorMaxRow, "Largest drawing row shifted with the items table")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Debug logging")
	return cmd
}

type batchOutput struct {
	path string
	res  *service.ExportResult
}

func runRenderBatch(cmd *cobra.Command, payloads []string, opts *batchOptions) error {
	ctx, svc, err := opts.setup()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(opts.outDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	render := func(ctx context.Context, payloadPath string) (batchOutput, error) {
		req, err := loadPayload(payloadPath)
		if err != nil {
			return batchOutput{}, err
		}
		res, err := svc.Export(ctx, req)
		if err != nil {
			return batchOutput{}, fmt.Errorf("render failed: %w", err)
		}
		name := strings.TrimSuffix(filepath.Base(payloadPath), filepath.Ext(payloadPath)) + ".xlsx"
		out := filepath.Join(opts.outDir, name)
		if err := os.WriteFile(out, res.Data, 0644); err != nil {
			return batchOutput{}, fmt.Errorf("failed to write output: %w", err)
		}
		return batchOutput{path: out, res: res}, nil
	}

	results := dataflow.Collect(dataflow.Map(ctx, dataflow.From(ctx, payloads...), render,
		dataflow.WithWorkers(opts.workers),
		dataflow.WithBufferSize(len(payloads)),
	))

	failed := 0
	w := cmd.OutOrStdout()
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(w, "%s  FAILED: %v\n", r.Input, r.Err)
			continue
		}
		printResult(w, r.Value.path, r.Value.res)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d payloads failed", failed, len(payloads))
	}
	return nil
}
