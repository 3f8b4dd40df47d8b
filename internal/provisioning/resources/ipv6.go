package resources

import (
	"encoding/json"
	"fmt"
	"math/big"
	"net/netip"
	"sort"
)

// v6Range is an inclusive [lo, hi] 128-bit address range.
type v6Range struct {
	lo, hi *big.Int
}

// RangeLeg is a concrete IPv6 block set: a sorted, merged, non-overlapping
// list of 128-bit address ranges. Roaring bitmaps only address a 32/64-bit
// key space, so IPv6's 128-bit ranges are handled with math/big instead —
// see DESIGN.md for why no pack dependency covers this.
type RangeLeg struct {
	ranges []v6Range
}

// NewRangeLeg returns an empty RangeLeg.
func NewRangeLeg() *RangeLeg {
	return &RangeLeg{}
}

// IPv6Prefix constructs a RangeLeg representing a single IPv6 CIDR block,
// e.g. "2001:db8::/32".
func IPv6Prefix(cidr string) (*RangeLeg, error) {
	p, err := netip.ParsePrefix(cidr)
	if err != nil {
		return nil, fmt.Errorf("resources: parse IPv6 prefix %q: %w", cidr, err)
	}
	if !p.Addr().Is6() {
		return nil, fmt.Errorf("resources: %q is not an IPv6 prefix", cidr)
	}
	lo, hi := prefixToRange(p)
	return NewRangeLeg().addRange(lo, hi), nil
}

func prefixToRange(p netip.Prefix) (lo, hi *big.Int) {
	bytes := p.Masked().Addr().As16()
	lo = new(big.Int).SetBytes(bytes[:])
	hostBits := 128 - p.Bits()
	span := new(big.Int).Lsh(big.NewInt(1), uint(hostBits))
	span.Sub(span, big.NewInt(1))
	hi = new(big.Int).Add(lo, span)
	return lo, hi
}

// addRange inserts [lo, hi] and re-merges the range list, returning the
// receiver for chaining.
func (r *RangeLeg) addRange(lo, hi *big.Int) *RangeLeg {
	r.ranges = append(r.ranges, v6Range{lo: lo, hi: hi})
	r.normalize()
	return r
}

func (r *RangeLeg) normalize() {
	sort.Slice(r.ranges, func(i, j int) bool {
		return r.ranges[i].lo.Cmp(r.ranges[j].lo) < 0
	})
	merged := r.ranges[:0]
	for _, cur := range r.ranges {
		if len(merged) > 0 {
			last := &merged[len(merged)-1]
			// Merge if cur starts within or immediately after last.
			nextAfterLastHi := new(big.Int).Add(last.hi, big.NewInt(1))
			if cur.lo.Cmp(nextAfterLastHi) <= 0 {
				if cur.hi.Cmp(last.hi) > 0 {
					last.hi = cur.hi
				}
				continue
			}
		}
		merged = append(merged, cur)
	}
	r.ranges = merged
}

// IsEmpty reports whether the set contains no addresses.
func (r *RangeLeg) IsEmpty() bool {
	return r == nil || len(r.ranges) == 0
}

// Equal reports whether r and other cover exactly the same addresses.
func (r *RangeLeg) Equal(other *RangeLeg) bool {
	if r == nil || other == nil {
		return r == nil && other == nil
	}
	if len(r.ranges) != len(other.ranges) {
		return false
	}
	for i := range r.ranges {
		if r.ranges[i].lo.Cmp(other.ranges[i].lo) != 0 || r.ranges[i].hi.Cmp(other.ranges[i].hi) != 0 {
			return false
		}
	}
	return true
}

// Overclaims reports whether requested contains any address not present in
// r — i.e. whether requested is NOT a subset of r. Since r's ranges are
// merged and disjoint, a requested range is covered iff it falls entirely
// within a single one of r's ranges.
func (r *RangeLeg) Overclaims(requested *RangeLeg) bool {
	if requested.IsEmpty() {
		return false
	}
	if r == nil {
		return true
	}
	for _, want := range requested.ranges {
		if !r.coversRange(want) {
			return true
		}
	}
	return false
}

func (r *RangeLeg) coversRange(want v6Range) bool {
	// Binary search for the last range whose lo <= want.lo.
	idx := sort.Search(len(r.ranges), func(i int) bool {
		return r.ranges[i].lo.Cmp(want.lo) > 0
	}) - 1
	if idx < 0 {
		return false
	}
	return r.ranges[idx].hi.Cmp(want.hi) >= 0
}

// MarshalJSON serializes the set as a sorted array of minimal CIDR strings
// covering exactly the merged ranges — the canonical form every equal
// RangeLeg produces.
func (r *RangeLeg) MarshalJSON() ([]byte, error) {
	out := []string{}
	for _, rg := range r.ranges {
		for _, p := range rangeToPrefixes(rg.lo, rg.hi) {
			out = append(out, p.String())
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON restores a RangeLeg from the form MarshalJSON produces.
func (r *RangeLeg) UnmarshalJSON(data []byte) error {
	var parts []string
	if err := json.Unmarshal(data, &parts); err != nil {
		return err
	}
	r.ranges = nil
	for _, part := range parts {
		p, err := netip.ParsePrefix(part)
		if err != nil {
			return fmt.Errorf("resources: invalid IPv6 prefix %q: %w", part, err)
		}
		lo, hi := prefixToRange(p)
		r.ranges = append(r.ranges, v6Range{lo: lo, hi: hi})
	}
	r.normalize()
	return nil
}

// rangeToPrefixes decomposes an inclusive [lo, hi] range into the minimal
// set of CIDR prefixes that together cover exactly that range (the
// standard greedy largest-aligned-block algorithm).
func rangeToPrefixes(lo, hi *big.Int) []netip.Prefix {
	var out []netip.Prefix
	cur := new(big.Int).Set(lo)
	one := big.NewInt(1)
	for cur.Cmp(hi) <= 0 {
		maxHostBits := trailingZeroBits(cur, 128)
		remaining := new(big.Int).Sub(hi, cur)
		remaining.Add(remaining, one)
		for maxHostBits > 0 {
			blockSize := new(big.Int).Lsh(one, uint(maxHostBits))
			if blockSize.Cmp(remaining) <= 0 {
				break
			}
			maxHostBits--
		}
		bits := 128 - maxHostBits
		addr := bigIntToAddr16(cur)
		out = append(out, netip.PrefixFrom(addr, bits))

		blockSize := new(big.Int).Lsh(one, uint(maxHostBits))
		cur.Add(cur, blockSize)
	}
	return out
}

// trailingZeroBits returns the number of trailing zero bits in v, bounded
// by max (the most an address with max-bit alignment could have).
func trailingZeroBits(v *big.Int, max int) int {
	if v.Sign() == 0 {
		return max
	}
	n := 0
	tmp := new(big.Int).Set(v)
	two := big.NewInt(2)
	mod := new(big.Int)
	for n < max {
		tmp.DivMod(tmp, two, mod)
		if mod.Sign() != 0 {
			break
		}
		n++
	}
	return n
}

func bigIntToAddr16(v *big.Int) netip.Addr {
	var buf [16]byte
	b := v.Bytes()
	copy(buf[16-len(b):], b)
	return netip.AddrFrom16(buf)
}
