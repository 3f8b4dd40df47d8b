package provisioning

import "rpki-ca.dev/core/internal/provisioning/resources"

// RequestResourceLimit narrows an IssuanceRequest to a subset of the
// issuer's current entitlement (spec §3.1, §4.B). Unlike ResourceSet, a nil
// leg here means "no narrowing requested" for that resource type, not
// "inherit" — the distinction matters during resolution: an absent leg
// passes the full parent allocation through unchanged, while a present leg
// must be checked against it for overclaim.
type RequestResourceLimit struct {
	ASN *resources.BitmapLeg
	V4  *resources.BitmapLeg
	V6  *resources.RangeLeg
}

// NoLimit returns a RequestResourceLimit that narrows nothing: resolving it
// against any parent ResourceSet yields that ResourceSet unchanged.
func NoLimit() RequestResourceLimit {
	return RequestResourceLimit{}
}

// IsEmpty reports whether the request narrows no resource type at all
// (spec §3.1 invariant 1: is_empty() iff asn, v4, v6 are all absent). A
// present-but-content-empty leg (e.g. WithIPv4(NewBitmapLeg())) is still a
// narrowing request — "certify me to nothing" — not absence, so this
// checks leg presence, not leg content.
func (l RequestResourceLimit) IsEmpty() bool {
	return l.ASN == nil && l.V4 == nil && l.V6 == nil
}

// Equal compares two limits leg-wise, including absence.
func (l RequestResourceLimit) Equal(other RequestResourceLimit) bool {
	return l.ASN.Equal(other.ASN) && l.V4.Equal(other.V4) && l.V6.Equal(other.V6)
}

// WithASN returns a copy of l with its ASN leg set, for builder-style
// construction.
func (l RequestResourceLimit) WithASN(asn *resources.BitmapLeg) RequestResourceLimit {
	l.ASN = asn
	return l
}

// WithIPv4 returns a copy of l with its IPv4 leg set.
func (l RequestResourceLimit) WithIPv4(v4 *resources.BitmapLeg) RequestResourceLimit {
	l.V4 = v4
	return l
}

// WithIPv6 returns a copy of l with its IPv6 leg set.
func (l RequestResourceLimit) WithIPv6(v6 *resources.RangeLeg) RequestResourceLimit {
	l.V6 = v6
	return l
}
