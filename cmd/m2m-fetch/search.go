package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/pdiddy/m2m-fetch/internal/catalog"
	"github.com/pdiddy/m2m-fetch/internal/m2m"
	"github.com/pdiddy/m2m-fetch/internal/output"
	"github.com/pdiddy/m2m-fetch/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Resolve a filter to downloadable scene bundles",
	Long: `Search runs the catalog query for a filter: it resolves the WRS path/row
to a point, finds every matching scene, keeps the available Level-1 T1
product bundles, and requests their download URLs. Nothing is downloaded;
use --save to write the items for a later "m2m-fetch download".`,
	Args: cobra.NoArgs,
	RunE: runSearch,
}

func init() {
	addFilterFlags(searchCmd)
	addQueryFlags(searchCmd)
	searchCmd.Flags().String("save", "", "write the resolved items to this YAML file")
	searchCmd.Flags().Bool("json", false, "print the resolved items as JSON")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if err := bindFlags(cmd, queryFlagKeys); err != nil {
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
	asJSON, _ := cmd.Flags().GetBool("json")
	savePath, _ := cmd.Flags().GetString("save")

	status := printer.Status()
	if asJSON {
		status = cmd.ErrOrStderr()
	}

	return withSession(cmd, cfg, func(s *m2m.Session) error {
		res, err := catalog.NewQuery(s, cfg.Query, status).Resolve(cmd.Context(), filter)
		if err != nil {
			return err
		}

		if savePath != "" {
			if err := catalog.WriteItemFile(savePath, filter, res); err != nil {
				return err
			}
			if !asJSON {
				printer.Success("saved %d item(s) to %s", len(res.Items), savePath)
			}
		}
		if asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			items := res.Items
			if items == nil {
				items = []types.DownloadableItem{}
			}
			return enc.Encode(items)
		}
		return printItems(res.Items)
	})
}

func printItems(items []types.DownloadableItem) error {
	if len(items) == 0 {
		printer.Warning("no downloadable items")
		return nil
	}
	tbl := output.NewTable(printer.Out(), "download id", "entity id", "display id", "url")
	for _, it := range items {
		tbl.AddRow(it.DownloadID, it.EntityID, it.DisplayID, it.URL)
	}
	return tbl.Render()
}
