package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"rpki-ca.dev/core/internal/eventsourcing"
)

func newReplayCmd(rootDir *string) *cobra.Command {
	var handleFlag string

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Reconstruct one aggregate from its snapshot/init event plus later deltas",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(*rootDir)
			if err != nil {
				return err
			}
			handle, err := eventsourcing.NewHandle(handleFlag)
			if err != nil {
				return err
			}
			aggregate, found, err := store.GetAggregate(handle)
			if err != nil {
				return fmt.Errorf("replay %q: %w", handle, err)
			}
			if !found {
				return fmt.Errorf("no aggregate found for handle %q", handle)
			}
			out, err := json.MarshalIndent(aggregate, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
	cmd.Flags().StringVar(&handleFlag, "handle", demoHandleName, "aggregate handle to replay")
	return cmd
}
