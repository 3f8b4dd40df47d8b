package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"rpki-ca.dev/core/internal/eventsourcing"
	"rpki-ca.dev/core/internal/limiter"
	"rpki-ca.dev/core/internal/provisioning"
	"rpki-ca.dev/core/internal/provisioning/resources"
)

const demoHandleName = "demo-ca"

func newInitCmd(rootDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize a store root and seed one demo aggregate",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(*rootDir)
			if err != nil {
				return err
			}
			if err := store.SetVersion(eventsourcing.V0_6); err != nil {
				return fmt.Errorf("set store version: %w", err)
			}

			handle, err := eventsourcing.NewHandle(demoHandleName)
			if err != nil {
				return err
			}
			if store.HasAggregate(handle) {
				fmt.Printf("aggregate %q already exists under %s, leaving it as-is\n", handle, *rootDir)
				return nil
			}

			v4, err := resources.IPv4Prefix("192.0.2.0/24")
			if err != nil {
				return err
			}
			v6, err := resources.IPv6Prefix("2001:db8::/32")
			if err != nil {
				return err
			}
			parent := resources.ResourceSet{
				ASN: resources.ASBlock(64496, 64511),
				V4:  v4,
				V6:  v6,
			}

			if err := store.StoreEvent(eventsourcing.Event[any]{
				Handle: handle, Version: 0,
				Payload: caEventPayload{Resources: parent, Note: "initial certification"},
			}); err != nil {
				return fmt.Errorf("store init event: %w", err)
			}

			issuance := provisioning.NewIssuanceRequest(
				provisioning.DefaultClassName,
				provisioning.NoLimit().WithASN(resources.ASNumber(64500)),
				rawCanonicalBytes("demo-csr"),
			)
			className, limit, _ := issuance.Unwrap()
			resolved, ok := limiter.Resolve(limit, parent)
			if !ok {
				return fmt.Errorf("resolve narrowing request for class %q: overclaim or unresolvable inherit leg", className)
			}

			if err := store.StoreEvent(eventsourcing.Event[any]{
				Handle: handle, Version: 1,
				Payload: caEventPayload{Resources: resolved, Note: "narrowed to child issuance request"},
			}); err != nil {
				return fmt.Errorf("store narrowing event: %w", err)
			}

			createCmd, err := eventsourcing.NewStoredCommand(handle, 1, "create", "created demo-ca with initial certification",
				[]eventsourcing.CommandEffect{{EventVersions: []uint64{0}}})
			if err != nil {
				return err
			}
			if err := store.StoreCommand(createCmd); err != nil {
				return fmt.Errorf("store create command: %w", err)
			}

			narrowCmd, err := eventsourcing.NewStoredCommand(handle, 2, "narrow", "narrowed demo-ca resources to ASN64500",
				[]eventsourcing.CommandEffect{{EventVersions: []uint64{1}}})
			if err != nil {
				return err
			}
			if err := store.StoreCommand(narrowCmd); err != nil {
				return fmt.Errorf("store narrow command: %w", err)
			}

			if err := store.SaveInfo(handle, eventsourcing.StoredValueInfo{LastEvent: 1, LastCommand: 2}); err != nil {
				return fmt.Errorf("save info: %w", err)
			}

			fmt.Printf("initialized store at %s and seeded aggregate %q\n", *rootDir, handle)
			return nil
		},
	}
}
