package resources

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"
)

// BitmapLeg is a concrete set of 32-bit integers, backed by a compressed
// roaring bitmap. It serves both the ASN leg (AS numbers map directly onto
// the bitmap's domain) and the IPv4 leg (addresses map onto their uint32
// big-endian representation) — the two legs share identical containment
// algebra, so they share one implementation; only the constructors differ
// in how they turn domain values into bitmap ranges.
type BitmapLeg struct {
	bitmap *roaring.Bitmap
}

// NewBitmapLeg returns an empty BitmapLeg.
func NewBitmapLeg() *BitmapLeg {
	return &BitmapLeg{bitmap: roaring.New()}
}

// AddRange adds the inclusive range [lo, hi] to the set and returns the
// receiver for chaining.
func (b *BitmapLeg) AddRange(lo, hi uint32) *BitmapLeg {
	if lo > hi {
		return b
	}
	b.bitmap.AddRange(uint64(lo), uint64(hi)+1)
	return b
}

// AddValue adds a single value to the set and returns the receiver for
// chaining.
func (b *BitmapLeg) AddValue(v uint32) *BitmapLeg {
	b.bitmap.Add(v)
	return b
}

// IsEmpty reports whether the set contains no values.
func (b *BitmapLeg) IsEmpty() bool {
	return b == nil || b.bitmap.IsEmpty()
}

// Equal reports whether b and other contain exactly the same values.
func (b *BitmapLeg) Equal(other *BitmapLeg) bool {
	if b == nil || other == nil {
		return b == nil && other == nil
	}
	diff := roaring.Xor(b.bitmap, other.bitmap)
	return diff.IsEmpty()
}

// Overclaims reports whether requested contains any value not present in
// b — i.e. whether requested is NOT a subset of b.
func (b *BitmapLeg) Overclaims(requested *BitmapLeg) bool {
	if requested == nil || requested.IsEmpty() {
		return false
	}
	if b == nil {
		return true
	}
	diff := roaring.AndNot(requested.bitmap, b.bitmap)
	return !diff.IsEmpty()
}

// ranges returns the sorted, maximally-merged contiguous runs in the set.
func (b *BitmapLeg) ranges() [][2]uint32 {
	if b == nil || b.bitmap.IsEmpty() {
		return nil
	}
	values := b.bitmap.ToArray() // ascending order, guaranteed by roaring
	var out [][2]uint32
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v == hi+1 {
			hi = v
			continue
		}
		out = append(out, [2]uint32{lo, hi})
		lo, hi = v, v
	}
	out = append(out, [2]uint32{lo, hi})
	return out
}

// MarshalJSON serializes the set as a sorted array of "lo-hi" (or bare "n"
// for singleton) range strings — the canonical form every equal BitmapLeg
// produces, regardless of how its ranges were originally added.
func (b *BitmapLeg) MarshalJSON() ([]byte, error) {
	ranges := b.ranges()
	out := make([]string, 0, len(ranges))
	for _, r := range ranges {
		if r[0] == r[1] {
			out = append(out, strconv.FormatUint(uint64(r[0]), 10))
		} else {
			out = append(out, fmt.Sprintf("%d-%d", r[0], r[1]))
		}
	}
	sort.Strings(out)
	return json.Marshal(out)
}

// UnmarshalJSON restores a BitmapLeg from the form MarshalJSON produces.
func (b *BitmapLeg) UnmarshalJSON(data []byte) error {
	var parts []string
	if err := json.Unmarshal(data, &parts); err != nil {
		return err
	}
	b.bitmap = roaring.New()
	for _, part := range parts {
		lo, hi, err := parseRangeToken(part)
		if err != nil {
			return fmt.Errorf("resources: invalid range token %q: %w", part, err)
		}
		b.AddRange(lo, hi)
	}
	return nil
}

func parseRangeToken(token string) (lo, hi uint32, err error) {
	if i := strings.IndexByte(token, '-'); i >= 0 {
		loVal, err := strconv.ParseUint(token[:i], 10, 32)
		if err != nil {
			return 0, 0, err
		}
		hiVal, err := strconv.ParseUint(token[i+1:], 10, 32)
		if err != nil {
			return 0, 0, err
		}
		return uint32(loVal), uint32(hiVal), nil
	}
	v, err := strconv.ParseUint(token, 10, 32)
	if err != nil {
		return 0, 0, err
	}
	return uint32(v), uint32(v), nil
}
