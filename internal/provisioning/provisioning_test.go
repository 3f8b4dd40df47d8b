package provisioning

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"rpki-ca.dev/core/internal/provisioning/resources"
)

// fakeCert is a test double for CanonicalBytes: two fakeCerts with
// different Tag values but identical Bytes must compare equal, and vice
// versa — this is what distinguishes canonical-byte equality from Go
// struct equality.
type fakeCert struct {
	Tag   string
	Bytes []byte
}

func (f fakeCert) CanonicalBytes() []byte { return f.Bytes }

func TestSigningCert_Equal_IgnoresStructShape(t *testing.T) {
	a := SigningCert{RsyncURI: "rsync://example/a.cer", Cert: fakeCert{Tag: "a", Bytes: []byte("der-bytes")}}
	b := SigningCert{RsyncURI: "rsync://example/a.cer", Cert: fakeCert{Tag: "b", Bytes: []byte("der-bytes")}}
	require.True(t, a.Equal(b))

	c := SigningCert{RsyncURI: "rsync://example/a.cer", Cert: fakeCert{Tag: "a", Bytes: []byte("other-bytes")}}
	require.False(t, a.Equal(c))
}

func TestIssuanceRequest_Equal(t *testing.T) {
	limit := NoLimit().WithASN(resources.ASBlock(1, 10))
	csr := fakeCert{Bytes: []byte("csr-der")}

	a := NewIssuanceRequest("all", limit, csr)
	b := NewIssuanceRequest("all", NoLimit().WithASN(resources.ASBlock(1, 10)), fakeCert{Tag: "different", Bytes: []byte("csr-der")})
	require.True(t, a.Equal(b))

	className, gotLimit, gotCSR := a.Unwrap()
	require.Equal(t, "all", className)
	require.True(t, gotLimit.Equal(limit))
	require.Equal(t, csr.CanonicalBytes(), gotCSR.CanonicalBytes())
}

func TestRequestResourceLimit_EmptyMeansNoNarrowing(t *testing.T) {
	require.True(t, NoLimit().IsEmpty())

	limit := NoLimit().WithIPv4(resources.NewBitmapLeg())
	require.False(t, limit.IsEmpty(), "a present-but-empty leg is still a narrowing request, not absence")
}

func TestEntitlements_WithDefaultClass(t *testing.T) {
	issuer := SigningCert{RsyncURI: "rsync://parent/ca.cer", Cert: fakeCert{Bytes: []byte("issuer-der")}}
	rs := resources.ResourceSet{ASN: resources.ASBlock(64496, 64511)}
	notAfter := time.Now().Add(24 * time.Hour)

	ents := WithDefaultClass(issuer, rs, notAfter, nil)
	require.Len(t, ents.Classes, 1)

	class, ok := ents.Class(DefaultClassName)
	require.True(t, ok)
	require.Equal(t, DefaultClassName, class.Name)
	require.True(t, class.ResourceSet.Equal(rs))

	_, ok = ents.Class("nonexistent")
	require.False(t, ok)
}

func TestEntitlementClass_Equal(t *testing.T) {
	issuer := SigningCert{RsyncURI: "rsync://parent/ca.cer", Cert: fakeCert{Bytes: []byte("issuer-der")}}
	notAfter := time.Now().Add(24 * time.Hour)
	issued := []IssuedCert{{RsyncURI: "rsync://parent/child.cer", Cert: fakeCert{Bytes: []byte("child-der")}}}

	a := EntitlementClass{Name: "all", Issuer: issuer, NotAfter: notAfter, Issued: issued}
	b := EntitlementClass{Name: "all", Issuer: issuer, NotAfter: notAfter, Issued: []IssuedCert{{RsyncURI: "rsync://parent/child.cer", Cert: fakeCert{Tag: "other-tag", Bytes: []byte("child-der")}}}}
	require.True(t, a.Equal(b))

	c := b
	c.Issued = []IssuedCert{{RsyncURI: "rsync://parent/child.cer", Cert: fakeCert{Bytes: []byte("different-der")}}}
	require.False(t, a.Equal(c))
}

func TestProvisioningMessages_SealedInterfaces(t *testing.T) {
	var req ProvisioningRequest = NewListRequest()
	_, isList := req.(ListRequest)
	require.True(t, isList)

	issuance := NewIssuanceRequest("all", NoLimit(), fakeCert{Bytes: []byte("csr")})
	req = NewIssueRequest(issuance)
	issueReq, isIssue := req.(IssueRequest)
	require.True(t, isIssue)
	require.True(t, issueReq.Issuance.Equal(issuance))

	var resp ProvisioningResponse = NewListResponse(Entitlements{})
	_, isListResp := resp.(ListResponse)
	require.True(t, isListResp)
}
