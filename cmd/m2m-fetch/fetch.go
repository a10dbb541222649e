package main

import (
	"github.com/spf13/cobra"

	"github.com/pdiddy/m2m-fetch/internal/catalog"
	"github.com/pdiddy/m2m-fetch/internal/m2m"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Log in, resolve a filter, download the scenes, and log out",
	Long: `Fetch runs the whole pipeline in one session: the catalog query of
"m2m-fetch search" followed by the downloads of "m2m-fetch download". The
session is logged out when fetch finishes, fails, or is interrupted.

Example:

  m2m-fetch fetch --dataset landsat_ot_c2_l1 --path 201 --row 32 \
    --start 2013-01-01 --end 2020-12-31 --months 5,6,7,8,9 --cloud-max 5`,
	Args: cobra.NoArgs,
	RunE: runFetch,
}

func init() {
	addFilterFlags(fetchCmd)
	addQueryFlags(fetchCmd)
	addDownloadFlags(fetchCmd)
	fetchCmd.Flags().String("save", "", "also write the resolved items to this YAML file")

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	if err := bindFlags(cmd, queryFlagKeys); err != nil {
		return err
	}
	if err := bindFlags(cmd, downloadFlagKeys); err != nil {
		return err
	}
	filter, err := filterFromFlags(cmd)
	if err != nil {
		return err
	}
	cfg, err := pipelineConfig()
	if err != nil {
		return err
	}
	savePath, _ := cmd.Flags().GetString("save")
	reportPath, _ := cmd.Flags().GetString("report")

	return withSession(cmd, cfg, func(s *m2m.Session) error {
		res, err := catalog.NewQuery(s, cfg.Query, printer.Status()).Resolve(cmd.Context(), filter)
		if err != nil {
			return err
		}
		if savePath != "" {
			if err := catalog.WriteItemFile(savePath, filter, res); err != nil {
				return err
			}
		}
		return downloadItems(cmd.Context(), cfg.Download, res.Items, reportPath)
	})
}
