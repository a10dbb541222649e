package main

import (
	"github.com/spf13/cobra"

	"github.com/pdiddy/m2m-fetch/internal/catalog"
	"github.com/pdiddy/m2m-fetch/internal/m2m"
	"github.com/pdiddy/m2m-fetch/internal/output"
)

var datasetsCmd = &cobra.Command{
	Use:   "datasets <name>",
	Short: "List catalog datasets matching a name",
	Long: `Datasets searches the catalog for datasets whose name matches the argument
(e.g. LANDSAT_8 or landsat_ot_c2) and prints their aliases. Pass the alias
to search or fetch with --dataset.`,
	Args: cobra.ExactArgs(1),
	RunE: runDatasets,
}

func init() {
	rootCmd.AddCommand(datasetsCmd)
}

func runDatasets(cmd *cobra.Command, args []string) error {
	cfg, err := pipelineConfig()
	if err != nil {
		return err
	}

	return withSession(cmd, cfg, func(s *m2m.Session) error {
		q := catalog.NewQuery(s, cfg.Query, printer.Status())
		datasets, err := q.Datasets(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if len(datasets) == 0 {
			printer.Warning("no datasets match %q", args[0])
			return nil
		}

		tbl := output.NewTable(printer.Out(), "alias", "collection", "id")
		for _, d := range datasets {
			tbl.AddRow(d.Alias, d.CollectionName, d.ID)
		}
		return tbl.Render()
	})
}
