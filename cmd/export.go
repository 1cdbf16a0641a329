package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/eunjilab/saju-admin/internal/export"
	"github.com/eunjilab/saju-admin/internal/model"
	"github.com/eunjilab/saju-admin/internal/store"
)

var exportCmd = &cobra.Command{
	Use:   "export <file.xlsx>",
	Short: "Export run history to an XLSX workbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		status, _ := cmd.Flags().GetString("status")
		since, _ := cmd.Flags().GetDuration("since")
		limit, _ := cmd.Flags().GetInt("limit")

		filter := store.RunFilter{
			Status: model.RunStatus(status),
			Limit:  limit,
		}
		if since > 0 {
			filter.CreatedAfter = time.Now().Add(-since)
		}

		n, err := export.Runs(ctx, st, filter, args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Exported %d runs to %s\n", n, args[0])
		return nil
	},
}

func init() {
	exportCmd.Flags().String("status", "", "filter by run status")
	exportCmd.Flags().Duration("since", 0, "only include runs newer than this (e.g. 168h)")
	exportCmd.Flags().Int("limit", 10000, "max number of runs to export")
	rootCmd.AddCommand(exportCmd)
}
