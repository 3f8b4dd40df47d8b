package resources

import (
	"encoding/binary"
	"fmt"
	"net/netip"
)

// IPv4Prefix constructs a BitmapLeg representing a single IPv4 CIDR block,
// e.g. "192.0.2.0/24".
func IPv4Prefix(cidr string) (*BitmapLeg, error) {
	p, err := netip.ParsePrefix(cidr)
	if err != nil {
		return nil, fmt.Errorf("resources: parse IPv4 prefix %q: %w", cidr, err)
	}
	if !p.Addr().Is4() {
		return nil, fmt.Errorf("resources: %q is not an IPv4 prefix", cidr)
	}
	lo, hi := ipv4Range(p)
	return NewBitmapLeg().AddRange(lo, hi), nil
}

// ipv4Range returns the inclusive [lo, hi] uint32 range a prefix covers.
func ipv4Range(p netip.Prefix) (lo, hi uint32) {
	addr := p.Masked().Addr().As4()
	lo = binary.BigEndian.Uint32(addr[:])
	hostBits := 32 - p.Bits()
	if hostBits >= 32 {
		return 0, 0xFFFFFFFF
	}
	hi = lo | (uint32(1)<<hostBits - 1)
	return lo, hi
}
