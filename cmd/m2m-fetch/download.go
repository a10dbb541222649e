package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/m2m-fetch/internal/catalog"
	"github.com/pdiddy/m2m-fetch/internal/download"
	"github.com/pdiddy/m2m-fetch/pkg/types"
)

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download the items saved by search --save",
	Long: `Download fetches every item in an item file into the output directory as
<downloadId>.tar, with bounded concurrency. A failed item does not stop the
others; the command exits non-zero if any item failed.`,
	Args: cobra.NoArgs,
	RunE: runDownload,
}

func init() {
	downloadCmd.Flags().String("items", "", "item file written by search --save (required)")
	_ = downloadCmd.MarkFlagRequired("items")
	addDownloadFlags(downloadCmd)

	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, args []string) error {
	if err := bindFlags(cmd, downloadFlagKeys); err != nil {
		return err
	}
	cfg, err := pipelineConfig()
	if err != nil {
		return err
	}

	path, _ := cmd.Flags().GetString("items")
	file, err := catalog.ReadItemFile(path)
	if err != nil {
		return err
	}
	reportPath, _ := cmd.Flags().GetString("report")
	return downloadItems(cmd.Context(), cfg.Download, file.Items, reportPath)
}

// downloadItems runs the download stage and turns item failures into a
// non-nil error for the exit status.
func downloadItems(ctx context.Context, cfg types.DownloadConfig, items []types.DownloadableItem, reportPath string) error {
	if len(items) == 0 {
		printer.Warning("nothing to download")
		return nil
	}

	m := download.NewManager(cfg, printer.Status())
	results, err := m.DownloadAll(ctx, items)
	if err != nil {
		return err
	}

	if reportPath != "" {
		if err := download.WriteReport(reportPath, results); err != nil {
			return err
		}
		printer.Info("wrote download report to %s", reportPath)
	}

	s := download.Summarize(results)
	if s.HasFailures() {
		return fmt.Errorf("%d of %d download(s) did not complete", s.Failed+s.Interrupted, s.Total())
	}
	printer.Success("downloaded %d archive(s), %d bytes", s.Succeeded, s.Bytes)
	return nil
}
