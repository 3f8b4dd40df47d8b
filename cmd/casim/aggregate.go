package main

import (
	"encoding/json"

	"rpki-ca.dev/core/internal/eventsourcing"
	"rpki-ca.dev/core/internal/provisioning/resources"
)

// caEventPayload is the one event shape this demo aggregate understands:
// the resource set certified to it as of that event.
type caEventPayload struct {
	Resources resources.ResourceSet `json:"resources"`
	Note      string                `json:"note"`
}

// caAggregate is a minimal stand-in for the real business Aggregate spec.md
// leaves out of scope (§1): it tracks nothing but the resource set a CA is
// currently certified for, just enough to exercise the EventStore's
// reconstruction protocol end to end.
type caAggregate struct {
	Ver       uint64                `json:"version"`
	Resources resources.ResourceSet `json:"resources"`
}

func (a *caAggregate) Version() uint64 { return a.Ver }

// Apply re-decodes the type-erased payload into caEventPayload. The store
// hands Apply an Event[any] whose Payload was JSON-decoded generically (a
// map[string]any), so a round trip through json.Marshal/Unmarshal recovers
// the concrete shape — the per-aggregate-kind decode step Design Note 1
// calls for.
func (a *caAggregate) Apply(ev eventsourcing.Event[any]) {
	data, err := json.Marshal(ev.Payload)
	if err == nil {
		var payload caEventPayload
		if json.Unmarshal(data, &payload) == nil {
			a.Resources = payload.Resources
		}
	}
	a.Ver = ev.Version
}

func initCaAggregate(ev eventsourcing.Event[any]) (*caAggregate, error) {
	a := &caAggregate{}
	a.Apply(ev)
	return a, nil
}

// rawCanonicalBytes is a trivial CanonicalBytes implementation for demo
// CSR/certificate values — the real encoders are out of scope (spec §1).
type rawCanonicalBytes []byte

func (r rawCanonicalBytes) CanonicalBytes() []byte { return r }
