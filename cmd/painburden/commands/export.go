package commands

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"painburden/internal/report"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Run the simulation and write the results to an xlsx workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := runOnce(cmd)
		if err != nil {
			return err
		}

		f, err := os.Create(exportOut)
		if err != nil {
			return fmt.Errorf("create %s: %w", exportOut, err)
		}
		if err := report.WriteXLSX(f, res); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}

		log.Info().Str("path", exportOut).Str("run_id", res.RunID).Msg("Workbook written")
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", exportOut)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "painburden.xlsx", "output workbook path")
	exportCmd.Flags().Uint64Var(&runSeed, "seed", 0, "random seed")
	rootCmd.AddCommand(exportCmd)
}
