package soap

import (
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"gomediaserver/internal/catalog"
	"gomediaserver/internal/didl"
	"gomediaserver/internal/observability"
)

// Dispatcher routes parsed SOAP actions to ContentDirectory/ConnectionManager
// handlers and renders both successful responses and faults. It replaces
// the teacher's `if envelope.Body.X != nil` chain with a static action
// table, which scales past the handful of actions a minimal DLNA renderer
// implements.
type Dispatcher struct {
	Store       *catalog.Store
	Log         *slog.Logger
	IfaceIP     string
	Port        int
	StrictDLNA  bool
	contentMap  map[string]func(*Dispatcher, *http.Request, *Body) ([]byte, *Fault)
	connMap     map[string]func(*Dispatcher, *http.Request, *Body) ([]byte, *Fault)
}

// NewDispatcher builds a Dispatcher wired to store for catalog access and
// the given renderer context values (the interface address/port that
// res elements are synthesized against).
func NewDispatcher(store *catalog.Store, ifaceIP string, port int, strictDLNA bool, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	d := &Dispatcher{Store: store, Log: log, IfaceIP: ifaceIP, Port: port, StrictDLNA: strictDLNA}
	d.contentMap = map[string]func(*Dispatcher, *http.Request, *Body) ([]byte, *Fault){
		"Browse":                (*Dispatcher).handleBrowse,
		"Search":                (*Dispatcher).handleSearch,
		"GetSearchCapabilities": (*Dispatcher).handleGetSearchCapabilities,
		"GetSortCapabilities":   (*Dispatcher).handleGetSortCapabilities,
		"GetSystemUpdateID":     (*Dispatcher).handleGetSystemUpdateID,
		"QueryStateVariable":    (*Dispatcher).handleQueryStateVariable,
	}
	d.connMap = map[string]func(*Dispatcher, *http.Request, *Body) ([]byte, *Fault){
		"GetProtocolInfo":          (*Dispatcher).handleGetProtocolInfo,
		"GetCurrentConnectionIDs":  (*Dispatcher).handleGetCurrentConnectionIDs,
		"GetCurrentConnectionInfo": (*Dispatcher).handleGetCurrentConnectionInfo,
	}
	return d
}

// ServeContentDirectory is the http.HandlerFunc for ContentDirectory's
// control URL.
func (d *Dispatcher) ServeContentDirectory(w http.ResponseWriter, r *http.Request) {
	d.serve(w, r, "ContentDirectory", d.contentMap)
}

// ServeConnectionManager is the http.HandlerFunc for ConnectionManager's
// control URL.
func (d *Dispatcher) ServeConnectionManager(w http.ResponseWriter, r *http.Request) {
	d.serve(w, r, "ConnectionManager", d.connMap)
}

func (d *Dispatcher) serve(w http.ResponseWriter, r *http.Request, service string, actions map[string]func(*Dispatcher, *http.Request, *Body) ([]byte, *Fault)) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		d.writeFault(w, NewFault(FaultActionFailed, "failed to read request body"))
		return
	}
	defer r.Body.Close()

	var envelope Envelope
	if err := xml.Unmarshal(body, &envelope); err != nil {
		d.Log.Warn("malformed SOAP envelope", "err", err)
		d.writeFault(w, NewFault(FaultInvalidArgs, "malformed SOAP envelope"))
		return
	}

	action := actionName(r.Header.Get("SOAPAction"))
	handler, ok := actions[action]
	if !ok {
		observability.SOAPActionsTotal.WithLabelValues(service, action, "invalid_action").Inc()
		d.writeFault(w, NewFault(FaultInvalidAction, "unrecognized action: "+action))
		return
	}

	respBody, fault := handler(d, r, &envelope.Body)
	if fault != nil {
		observability.SOAPActionsTotal.WithLabelValues(service, action, "fault").Inc()
		d.writeFault(w, fault)
		return
	}

	observability.SOAPActionsTotal.WithLabelValues(service, action, "ok").Inc()
	w.Header().Set("Content-Type", `text/xml; charset="utf-8"`)
	w.Header().Set("Ext", "")
	w.WriteHeader(http.StatusOK)
	w.Write(wrapEnvelope(respBody))
}

func (d *Dispatcher) writeFault(w http.ResponseWriter, f *Fault) {
	w.Header().Set("Content-Type", `text/xml; charset="utf-8"`)
	w.WriteHeader(http.StatusInternalServerError)
	w.Write(f.Render())
}

// actionName extracts the action fragment from a SOAPAction header, which
// arrives as `"urn:schemas-upnp-org:service:ContentDirectory:1#Browse"`.
func actionName(header string) string {
	header = strings.Trim(header, `"`)
	if i := strings.LastIndex(header, "#"); i >= 0 {
		return header[i+1:]
	}
	return header
}

func wrapEnvelope(body []byte) []byte {
	return []byte(fmt.Sprintf(`<?xml version="1.0"?>
<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/" s:encodingStyle="http://schemas.xmlsoap.org/soap/encoding/">
<s:Body>
%s
</s:Body>
</s:Envelope>`, body))
}

func renderContext(d *Dispatcher, filter string) didl.RenderContext {
	return didl.RenderContext{IfaceIP: d.IfaceIP, Port: d.Port, Filter: didl.ParseFilter(filter)}
}
