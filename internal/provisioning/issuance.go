package provisioning

import "bytes"

// IssuanceRequest is a child CA's request to be issued a certificate under
// a named resource class, optionally narrowed to a subset of its current
// entitlement (spec §3.1, §4.C, RFC 6492 section 3.4).
type IssuanceRequest struct {
	ClassName string
	Limit     RequestResourceLimit
	CSR       CanonicalBytes
}

// NewIssuanceRequest constructs an IssuanceRequest for the given class,
// limit and certificate signing request.
func NewIssuanceRequest(className string, limit RequestResourceLimit, csr CanonicalBytes) IssuanceRequest {
	return IssuanceRequest{ClassName: className, Limit: limit, CSR: csr}
}

// Unwrap destructures the request into its three independent parts, for
// callers that only need to thread them separately into a resolution or
// signing step.
func (r IssuanceRequest) Unwrap() (className string, limit RequestResourceLimit, csr CanonicalBytes) {
	return r.ClassName, r.Limit, r.CSR
}

// Equal compares class name, limit and canonical CSR bytes — never Go
// struct equality of the CSR itself, per spec §3.1 invariant 2.
func (r IssuanceRequest) Equal(other IssuanceRequest) bool {
	return r.ClassName == other.ClassName &&
		r.Limit.Equal(other.Limit) &&
		bytes.Equal(canonicalBytesOf(r.CSR), canonicalBytesOf(other.CSR))
}
