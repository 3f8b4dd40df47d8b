// Command casim drives the RPKI CA core's event-sourced store and resource
// limiter directly against a filesystem root, without a network front end
// or signing key custody — both out of scope per spec §1. It exists to
// exercise the EventStore, ResourceLimiter and provisioning value types
// end to end, the way the teacher's cmd/seed exercised its domain layer
// directly rather than through an HTTP listener.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"rpki-ca.dev/core/internal/config"
	"rpki-ca.dev/core/internal/eventsourcing/diskstore"
	"rpki-ca.dev/core/internal/pkg/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var rootDir string
	var cfg *config.Config

	root := &cobra.Command{
		Use:           "casim",
		Short:         "Drive the RPKI CA core's event store and resource limiter directly",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			cfg = loaded
			if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			if rootDir == "" {
				rootDir = cfg.Store.RootDir
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&rootDir, "root", "", "store root directory (defaults to config store.root_dir)")

	root.AddCommand(
		newInitCmd(&rootDir),
		newReplayCmd(&rootDir),
		newHistoryCmd(&rootDir, func() int { return cfg.History.DefaultRows }),
		newVerifyAllCmd(&rootDir),
	)
	return root
}

func openStore(rootDir string) (*diskstore.Store[*caAggregate], error) {
	return diskstore.Under[*caAggregate](afero.NewOsFs(), rootDir, initCaAggregate)
}
