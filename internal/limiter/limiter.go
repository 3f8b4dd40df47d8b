// Package limiter implements the ResourceLimiter: resolving a child CA's
// requested resource scope against its parent's certified resources
// (spec §4.B).
package limiter

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"rpki-ca.dev/core/internal/pkg/logger"
	"rpki-ca.dev/core/internal/provisioning"
	"rpki-ca.dev/core/internal/provisioning/resources"
)

// Resolve narrows parent against limit, leg by leg. An absent leg in limit
// passes the parent leg through unchanged; a present leg must be contained
// in the parent's leg, which must itself be concrete (not inherit).
//
// The bool result is Go's substitute for Option: false means resolution
// failed on at least one leg — either an overclaim or an attempt to narrow
// an inherit parent leg — and the returned ResourceSet is the zero value.
// Every failing leg is recorded in a multierr-joined diagnostic and logged
// at Warn before collapsing to this boolean, so operators can see which
// leg and why even though the public contract only returns success/fail.
func Resolve(limit provisioning.RequestResourceLimit, parent resources.ResourceSet) (resources.ResourceSet, bool) {
	asn, asnErr := resolveBitmapLeg("asn", limit.ASN, parent.ASN)
	v4, v4Err := resolveBitmapLeg("v4", limit.V4, parent.V4)
	v6, v6Err := resolveRangeLeg("v6", limit.V6, parent.V6)

	if err := multierr.Combine(asnErr, v4Err, v6Err); err != nil {
		logger.Warn("resource limit resolution failed", zap.Error(err))
		return resources.ResourceSet{}, false
	}
	return resources.ResourceSet{ASN: asn, V4: v4, V6: v6}, true
}

var errInheritUnresolvable = errors.New("parent leg is inherit; cannot resolve a concrete request against it")

func resolveBitmapLeg(name string, requested, parent *resources.BitmapLeg) (*resources.BitmapLeg, error) {
	if requested == nil {
		return parent, nil
	}
	if parent == nil {
		return nil, fmt.Errorf("leg %s: %w", name, errInheritUnresolvable)
	}
	if parent.Overclaims(requested) {
		return nil, fmt.Errorf("leg %s: requested resources are not contained in parent certification", name)
	}
	return requested, nil
}

func resolveRangeLeg(name string, requested, parent *resources.RangeLeg) (*resources.RangeLeg, error) {
	if requested == nil {
		return parent, nil
	}
	if parent == nil {
		return nil, fmt.Errorf("leg %s: %w", name, errInheritUnresolvable)
	}
	if parent.Overclaims(requested) {
		return nil, fmt.Errorf("leg %s: requested resources are not contained in parent certification", name)
	}
	return requested, nil
}
