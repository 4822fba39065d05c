package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/locvowork/quotes_service/internal/domain"
	"github.com/locvowork/quotes_service/internal/logger"
	"github.com/locvowork/quotes_service/internal/service"
	"github.com/locvowork/quotes_service/pkg/quotexlsx"
	"github.com/spf13/cobra"
)

type renderOptions struct {
	outputPath   string
	templateDirs []string
	layoutsDir   string
	archiveDir   string
	number       string
	anchorMaxRow int
	verbose      bool
}

func newRenderCmd() *cobra.Command {
	opts := &renderOptions{}
	cmd := &cobra.Command{
		Use:   "render [payload.json]",
		Short: "Render a quotation workbook from a JSON payload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.outputPath, "output", "o", "", "Output file path (default: COT-<year>-<number>.xlsx)")
	cmd.Flags().StringSliceVar(&opts.templateDirs, "templates", []string{"templates"}, "Template directories, searched in order")
	cmd.Flags().StringVar(&opts.layoutsDir, "layouts", "", "Directory of per-variant layout YAML files")
	cmd.Flags().StringVar(&opts.archiveDir, "archive", "", "Also archive the quote under this directory")
	cmd.Flags().StringVar(&opts.number, "number", "", "Quote number, overrides the payload")
	cmd.Flags().IntVar(&opts.anchorMaxRow, "anchor-max-row", quotexlsx.DefaultAnchorMaxRow, "Largest drawing row shifted with the items table")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Debug logging")
	return cmd
}

func (o *renderOptions) setup() (context.Context, service.QuoteService, error) {
	level := "warn"
	if o.verbose {
		level = "debug"
	}
	logger.InitLogging("", level)
	ctx := logger.WithLogger(context.Background(), map[string]interface{}{"cmd": "quotegen"})

	layouts, err := quotexlsx.NewLayoutSet(o.layoutsDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load layouts: %w", err)
	}
	exporter := quotexlsx.NewExporter(
		quotexlsx.NewTemplateSet(o.templateDirs...),
		layouts,
		quotexlsx.WithAnchorMaxRow(o.anchorMaxRow),
	)
	// Offline rendering has no numbering store: quotes without a number get
	// the placeholder.
	return ctx, service.NewQuoteService(exporter, nil, nil, service.Config{OutputDir: o.archiveDir}), nil
}

func loadPayload(path string) (*domain.QuoteExportRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read payload: %w", err)
	}
	var req domain.QuoteExportRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse payload %s: %w", path, err)
	}
	return &req, nil
}

func runRender(cmd *cobra.Command, payloadPath string, opts *renderOptions) error {
	req, err := loadPayload(payloadPath)
	if err != nil {
		return err
	}
	if opts.number != "" {
		req.QuoteNumber = opts.number
	}

	ctx, svc, err := opts.setup()
	if err != nil {
		return err
	}
	res, err := svc.Export(ctx, req)
	if err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	out := opts.outputPath
	if out == "" {
		out = res.FileName
	}
	if err := os.WriteFile(out, res.Data, 0644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	printResult(cmd.OutOrStdout(), out, res)
	return nil
}

func printResult(w io.Writer, path string, res *service.ExportResult) {
	fmt.Fprintf(w, "%s  %s  total %.2f\n", path, res.Token, res.Totals.Total)
	if res.SavedPath != "" {
		fmt.Fprintf(w, "archived at %s\n", res.SavedPath)
	}
}
