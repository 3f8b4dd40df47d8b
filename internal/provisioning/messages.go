package provisioning

// ProvisioningRequest is the RFC 6492 message a child CA sends its parent:
// either a "list" request for current entitlements, or an "issue" request
// for a certificate under a named class (spec §3.1, §4.C).
//
// Go has no native sum type, so this follows the sealed-interface pattern:
// an unexported marker method restricts implementations to this package.
type ProvisioningRequest interface {
	isProvisioningRequest()
}

// ListRequest asks the parent for the child's current entitlements.
type ListRequest struct{}

func (ListRequest) isProvisioningRequest() {}

// NewListRequest builds a ListRequest.
func NewListRequest() ProvisioningRequest { return ListRequest{} }

// IssueRequest asks the parent to issue a certificate per the wrapped
// IssuanceRequest.
type IssueRequest struct {
	Issuance IssuanceRequest
}

func (IssueRequest) isProvisioningRequest() {}

// NewIssueRequest builds an IssueRequest wrapping the given IssuanceRequest.
func NewIssueRequest(req IssuanceRequest) ProvisioningRequest {
	return IssueRequest{Issuance: req}
}

// ProvisioningResponse is the message a parent CA sends back: the
// entitlements list, or the result of an issuance.
type ProvisioningResponse interface {
	isProvisioningResponse()
}

// ListResponse carries the child's current entitlements.
type ListResponse struct {
	Entitlements Entitlements
}

func (ListResponse) isProvisioningResponse() {}

// NewListResponse builds a ListResponse.
func NewListResponse(e Entitlements) ProvisioningResponse {
	return ListResponse{Entitlements: e}
}

// IssueResponse carries the single class affected by an issuance, with the
// newly issued certificate included in its Issued list.
type IssueResponse struct {
	Class EntitlementClass
}

func (IssueResponse) isProvisioningResponse() {}

// NewIssueResponse builds an IssueResponse for the given class.
func NewIssueResponse(class EntitlementClass) ProvisioningResponse {
	return IssueResponse{Class: class}
}
