package main

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"rpki-ca.dev/core/internal/pkg/worker"
)

func newVerifyAllCmd(rootDir *string) *cobra.Command {
	var poolSize int

	cmd := &cobra.Command{
		Use:   "verify-all",
		Short: "Replay every aggregate in the store concurrently and report failures",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(*rootDir)
			if err != nil {
				return err
			}
			handles, err := store.Aggregates()
			if err != nil {
				return fmt.Errorf("list aggregates: %w", err)
			}
			if len(handles) == 0 {
				fmt.Println("no aggregates found")
				return nil
			}

			pool, err := worker.New("verify-all", poolSize)
			if err != nil {
				return fmt.Errorf("start worker pool: %w", err)
			}
			defer func() { _ = pool.Release(30 * time.Second) }()

			ctx := cmd.Context()
			var (
				mu      sync.Mutex
				wg      sync.WaitGroup
				okCount int
				failed  []string
			)

			for _, h := range handles {
				h := h
				wg.Add(1)
				err := pool.Submit(ctx, func(ctx context.Context) {
					defer wg.Done()
					_, found, err := store.GetAggregate(h)
					mu.Lock()
					defer mu.Unlock()
					switch {
					case err != nil:
						failed = append(failed, fmt.Sprintf("%s: %v", h, err))
					case !found:
						failed = append(failed, fmt.Sprintf("%s: no state found", h))
					default:
						okCount++
					}
				})
				if err != nil {
					wg.Done()
					mu.Lock()
					failed = append(failed, fmt.Sprintf("%s: submit failed: %v", h, err))
					mu.Unlock()
				}
			}
			wg.Wait()

			sort.Strings(failed)
			fmt.Printf("verified %d/%d aggregates\n", okCount, len(handles))
			for _, f := range failed {
				fmt.Printf("  FAIL %s\n", f)
			}
			if len(failed) > 0 {
				return fmt.Errorf("%d aggregate(s) failed verification", len(failed))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&poolSize, "workers", 4, "concurrency for replaying aggregates")
	return cmd
}
