package provisioning

import (
	"time"

	"rpki-ca.dev/core/internal/provisioning/resources"
)

// EntitlementClass describes one resource class a parent CA offers a child:
// the issuer identity the child must chain up to, the resource set the
// child may request against, the class's current expiry, and any
// certificates already issued under it (spec §3.1, RFC 6492 section 3.3.1).
type EntitlementClass struct {
	Name        string
	Issuer      SigningCert
	ResourceSet resources.ResourceSet
	NotAfter    time.Time
	Issued      []IssuedCert
}

// Equal compares two classes field-wise, using canonical-byte equality for
// the issuer and issued certificates.
func (c EntitlementClass) Equal(other EntitlementClass) bool {
	if c.Name != other.Name || !c.NotAfter.Equal(other.NotAfter) {
		return false
	}
	if !c.Issuer.Equal(other.Issuer) {
		return false
	}
	if !c.ResourceSet.Equal(other.ResourceSet) {
		return false
	}
	if len(c.Issued) != len(other.Issued) {
		return false
	}
	for i := range c.Issued {
		if !c.Issued[i].Equal(other.Issued[i]) {
			return false
		}
	}
	return true
}

// Entitlements is the full response to a "list" request: every resource
// class the parent currently offers the child (spec §3.1, §4.C).
type Entitlements struct {
	Classes []EntitlementClass
}

// WithDefaultClass builds an Entitlements holding a single class named
// DefaultClassName — the common case for a parent that does not partition
// its children's resources into multiple classes.
func WithDefaultClass(issuer SigningCert, resourceSet resources.ResourceSet, notAfter time.Time, issued []IssuedCert) Entitlements {
	return Entitlements{
		Classes: []EntitlementClass{
			{
				Name:        DefaultClassName,
				Issuer:      issuer,
				ResourceSet: resourceSet,
				NotAfter:    notAfter,
				Issued:      issued,
			},
		},
	}
}

// Class looks up a class by name.
func (e Entitlements) Class(name string) (EntitlementClass, bool) {
	for _, c := range e.Classes {
		if c.Name == name {
			return c, true
		}
	}
	return EntitlementClass{}, false
}
