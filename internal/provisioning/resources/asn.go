package resources

// ASBlock constructs a BitmapLeg representing a single AS number range
// [lo, hi], following RFC 6492's "ASN" leg notation (e.g. AS64496-AS64511).
func ASBlock(lo, hi uint32) *BitmapLeg {
	return NewBitmapLeg().AddRange(lo, hi)
}

// ASNumber constructs a BitmapLeg representing a single AS number.
func ASNumber(asn uint32) *BitmapLeg {
	return NewBitmapLeg().AddValue(asn)
}
