// Package soap implements the SOAP request envelope parsing, action
// dispatch, and fault/response rendering for the ContentDirectory and
// ConnectionManager control points.
package soap

import "encoding/xml"

// Envelope is the outer SOAP-1.1 envelope every control request arrives in.
type Envelope struct {
	XMLName xml.Name `xml:"Envelope"`
	Body    Body     `xml:"Body"`
}

// Body holds every action this server understands as optional pointers;
// exactly one is set per request. Unmarshal leaves the rest nil regardless
// of which service's WSDL namespace the client used, since UPnP clients
// are inconsistent about echoing namespaces on the wire.
type Body struct {
	Browse                   *BrowseRequest                   `xml:"Browse"`
	Search                   *SearchRequest                   `xml:"Search"`
	GetSearchCapabilities    *struct{}                        `xml:"GetSearchCapabilities"`
	GetSortCapabilities      *struct{}                        `xml:"GetSortCapabilities"`
	GetSystemUpdateID        *struct{}                        `xml:"GetSystemUpdateID"`
	QueryStateVariable       *QueryStateVariableRequest        `xml:"QueryStateVariable"`
	GetProtocolInfo          *struct{}                        `xml:"GetProtocolInfo"`
	GetCurrentConnectionIDs  *struct{}                        `xml:"GetCurrentConnectionIDs"`
	GetCurrentConnectionInfo *GetCurrentConnectionInfoRequest  `xml:"GetCurrentConnectionInfo"`
}

// BrowseRequest is ContentDirectory's Browse action input.
type BrowseRequest struct {
	ObjectID       string `xml:"ObjectID"`
	BrowseFlag     string `xml:"BrowseFlag"` // "BrowseMetadata" or "BrowseDirectChildren"
	Filter         string `xml:"Filter"`
	StartingIndex  int    `xml:"StartingIndex"`
	RequestedCount int    `xml:"RequestedCount"`
	SortCriteria   string `xml:"SortCriteria"`
}

// SearchRequest is ContentDirectory's Search action input.
type SearchRequest struct {
	ContainerID    string `xml:"ContainerID"`
	SearchCriteria string `xml:"SearchCriteria"`
	Filter         string `xml:"Filter"`
	StartingIndex  int    `xml:"StartingIndex"`
	RequestedCount int    `xml:"RequestedCount"`
	SortCriteria   string `xml:"SortCriteria"`
}

// QueryStateVariableRequest is the legacy eventing introspection action;
// only the "ConnectionStatus" variable name is accepted here.
type QueryStateVariableRequest struct {
	VarName string `xml:"varName"`
}

// GetCurrentConnectionInfoRequest is ConnectionManager's connection-info
// lookup input.
type GetCurrentConnectionInfoRequest struct {
	ConnectionID int `xml:"ConnectionID"`
}
