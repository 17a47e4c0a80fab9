package soap

import "fmt"

// FaultCode is one of the UPnP-defined control error codes this server can
// emit, per spec.md's fault taxonomy.
type FaultCode int

const (
	FaultInvalidAction     FaultCode = 401
	FaultInvalidArgs       FaultCode = 402
	FaultInvalidVar        FaultCode = 404 // unsupported QueryStateVariable name
	FaultActionFailed      FaultCode = 501
	FaultNoSuchObject      FaultCode = 701
	FaultBadSearchCriteria FaultCode = 708 // unsupported or invalid search criteria
	FaultBadSortCriteria   FaultCode = 709 // unsupported or invalid sort criteria
	FaultNoSuchContainer   FaultCode = 710
)

// Fault is a UPnP SOAP control error: an HTTP 500 response whose body is a
// SOAP Fault carrying a upnp:errorCode/errorDescription detail block.
type Fault struct {
	Code FaultCode
	Desc string
}

func (f *Fault) Error() string {
	return fmt.Sprintf("soap fault %d: %s", f.Code, f.Desc)
}

// NewFault builds a Fault with the given code and description.
func NewFault(code FaultCode, desc string) *Fault {
	return &Fault{Code: code, Desc: desc}
}

// Render produces the SOAP-1.1 fault envelope body, grounded on minidlna's
// SoapError template in upnpsoap.c.
func (f *Fault) Render() []byte {
	return []byte(fmt.Sprintf(`<?xml version="1.0"?>
<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/" s:encodingStyle="http://schemas.xmlsoap.org/soap/encoding/">
<s:Body>
<s:Fault>
<faultcode>s:Client</faultcode>
<faultstring>UPnPError</faultstring>
<detail>
<UPnPError xmlns="urn:schemas-upnp-org:control-1-0">
<errorCode>%d</errorCode>
<errorDescription>%s</errorDescription>
</UPnPError>
</detail>
</s:Fault>
</s:Body>
</s:Envelope>`, f.Code, escapeXML(f.Desc)))
}

func escapeXML(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '&':
			out = append(out, "&amp;"...)
		case '<':
			out = append(out, "&lt;"...)
		case '>':
			out = append(out, "&gt;"...)
		default:
			out = append(out, s[i])
		}
	}
	return string(out)
}
