package httpcore

import (
	"net/http"

	"gomediaserver/internal/middleware"
	"gomediaserver/internal/soap"
)

// WebUI serves the non-DLNA browser conveniences (playlist export, plain
// file listing) layered on top of the catalog. internal/webui.Handler
// satisfies this.
type WebUI interface {
	HandleM3U(w http.ResponseWriter, r *http.Request)
	HandleIndex(w http.ResponseWriter, r *http.Request)
}

// Router holds the pieces NewMux wires into the resource map from spec §6.
type Router struct {
	Descriptors *Descriptors
	Dispatcher  *soap.Dispatcher
	Stream      *StreamHandler
	WebUI       WebUI // optional; nil disables the playlist/browse routes
	SOAPPath    string // control URL ContentDirectory is mounted at, e.g. "/ctl/ContentDirectory"
	Middlewares []middleware.Middleware
}

// NewMux builds the server's http.Handler: static descriptors, ranged media
// streaming, and the two SOAP control endpoints, each wrapped in the same
// middleware chain (logging, observability, rate limiting — whatever the
// caller configured).
func NewMux(rt Router) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/rootDesc.xml", rt.Descriptors.ServeRootDesc)
	mux.HandleFunc("/ContentDirectory.xml", rt.Descriptors.ServeContentDirectorySCPD)
	mux.HandleFunc("/ConnectionManager.xml", rt.Descriptors.ServeConnectionManagerSCPD)

	mux.HandleFunc("/MediaItems/", rt.Stream.ServeHTTP)

	if rt.WebUI != nil {
		mux.HandleFunc("/playlist.m3u", rt.WebUI.HandleM3U)
		mux.HandleFunc("/browse", rt.WebUI.HandleIndex)
	}

	soapPath := rt.SOAPPath
	if soapPath == "" {
		soapPath = "/ctl/ContentDirectory"
	}
	mux.HandleFunc(soapPath, rt.Dispatcher.ServeContentDirectory)
	mux.HandleFunc("/ctl/ConnectionManager", rt.Dispatcher.ServeConnectionManager)

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})

	return middleware.Chain(mux, rt.Middlewares...)
}
