package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"rpki-ca.dev/core/internal/eventsourcing"
)

func newHistoryCmd(rootDir *string, defaultRows func() int) *cobra.Command {
	var handleFlag string
	var offsetFlag int
	var rowsFlag int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List the paginated command history for one aggregate",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(*rootDir)
			if err != nil {
				return err
			}
			handle, err := eventsourcing.NewHandle(handleFlag)
			if err != nil {
				return err
			}

			rows := rowsFlag
			if !cmd.Flags().Changed("rows") {
				rows = defaultRows()
			}
			crit := eventsourcing.CommandHistoryCriteria{Offset: offsetFlag}
			if rows > 0 {
				crit.Rows = &rows
			}

			history, err := store.CommandHistory(handle, crit)
			if err != nil {
				return fmt.Errorf("command history for %q: %w", handle, err)
			}

			fmt.Printf("offset=%d total=%d returned=%d\n", history.Offset, history.Total, len(history.Records))
			for _, rec := range history.Records {
				fmt.Printf("  #%d %s  %s  %s\n", rec.Sequence, rec.ID, rec.Time.Format("2006-01-02T15:04:05Z07:00"), rec.Summary)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&handleFlag, "handle", demoHandleName, "aggregate handle to query")
	cmd.Flags().IntVar(&offsetFlag, "offset", 0, "pagination offset")
	cmd.Flags().IntVar(&rowsFlag, "rows", 0, "max rows to return (defaults to config history.default_rows)")
	return cmd
}
