package soap

import (
	"context"
	"fmt"
	"net/http"

	"gomediaserver/internal/catalog"
	"gomediaserver/internal/didl"
	"gomediaserver/internal/search"
)

const (
	browseMetadata       = "BrowseMetadata"
	browseDirectChildren = "BrowseDirectChildren"
)

func (d *Dispatcher) handleBrowse(r *http.Request, body *Body) ([]byte, *Fault) {
	req := body.Browse
	if req == nil {
		return nil, NewFault(FaultInvalidArgs, "missing Browse arguments")
	}
	ctx := r.Context()

	order, fault := parseSortCriteria(req.SortCriteria, d.StrictDLNA)
	if fault != nil {
		return nil, fault
	}
	rc := renderContext(d, req.Filter)

	switch req.BrowseFlag {
	case browseMetadata:
		return d.browseMetadata(ctx, req.ObjectID, rc)
	case browseDirectChildren:
		return d.browseChildren(ctx, req.ObjectID, rc, req.StartingIndex, req.RequestedCount, order)
	default:
		return nil, NewFault(FaultInvalidArgs, "invalid BrowseFlag: "+req.BrowseFlag)
	}
}

func (d *Dispatcher) browseMetadata(ctx context.Context, objectID string, rc didl.RenderContext) ([]byte, *Fault) {
	obj, err := d.Store.GetObject(ctx, objectID)
	if err != nil {
		return nil, NewFault(FaultNoSuchObject, "no such object: "+objectID)
	}

	detail, fault := d.detailFor(ctx, obj)
	if fault != nil {
		return nil, fault
	}

	buf := didl.NewBuffer(0)
	didl.Header(buf, rc)
	if err := didl.RenderNode(buf, rc, *obj, detail); err != nil {
		return nil, NewFault(FaultActionFailed, "render failed: "+err.Error())
	}
	didl.Footer(buf)

	return browseResponseXML(buf.String(), 1, 1, d.Store.SystemUpdateID()), nil
}

func (d *Dispatcher) browseChildren(ctx context.Context, parentID string, rc didl.RenderContext, start, count int, order catalog.Order) ([]byte, *Fault) {
	if _, err := d.Store.GetObject(ctx, parentID); err != nil {
		return nil, NewFault(FaultNoSuchObject, "no such object: "+parentID)
	}

	total, err := d.Store.CountChildren(ctx, parentID)
	if err != nil {
		return nil, NewFault(FaultActionFailed, "count children: "+err.Error())
	}

	children, err := d.Store.ListChildren(ctx, parentID, start, count, order)
	if err != nil {
		return nil, NewFault(FaultActionFailed, "list children: "+err.Error())
	}

	buf := didl.NewBuffer(0)
	didl.Header(buf, rc)
	returned := 0
	for _, obj := range children {
		detail, fault := d.detailFor(ctx, &obj)
		if fault != nil {
			return nil, fault
		}
		if err := didl.RenderNode(buf, rc, obj, detail); err != nil {
			d.Log.Warn("skipping object that failed to render", "object_id", obj.ObjectID, "err", err)
			continue
		}
		returned++
	}
	didl.Footer(buf)

	return browseResponseXML(buf.String(), returned, total, d.Store.SystemUpdateID()), nil
}

func (d *Dispatcher) handleSearch(r *http.Request, body *Body) ([]byte, *Fault) {
	req := body.Search
	if req == nil {
		return nil, NewFault(FaultInvalidArgs, "missing Search arguments")
	}
	ctx := r.Context()

	if _, err := d.Store.GetObject(ctx, req.ContainerID); err != nil {
		return nil, NewFault(FaultNoSuchContainer, "no such container: "+req.ContainerID)
	}

	order, fault := parseSortCriteria(req.SortCriteria, d.StrictDLNA)
	if fault != nil {
		return nil, fault
	}

	criteriaPred, err := search.Translate(req.SearchCriteria)
	if err != nil {
		return nil, NewFault(FaultBadSearchCriteria, err.Error())
	}
	scope := search.ContainerScope(req.ContainerID)
	predicate := scope.And(criteriaPred)

	total, err := d.Store.CountByGlob(ctx, "*", predicate)
	if err != nil {
		return nil, NewFault(FaultActionFailed, "count search results: "+err.Error())
	}

	matches, err := d.Store.FindByGlob(ctx, "*", predicate, order, req.StartingIndex, req.RequestedCount)
	if err != nil {
		return nil, NewFault(FaultActionFailed, "search: "+err.Error())
	}

	rc := renderContext(d, req.Filter)
	buf := didl.NewBuffer(0)
	didl.Header(buf, rc)
	returned := 0
	for _, obj := range matches {
		detail, fault := d.detailFor(ctx, &obj)
		if fault != nil {
			return nil, fault
		}
		if err := didl.RenderNode(buf, rc, obj, detail); err != nil {
			d.Log.Warn("skipping search match that failed to render", "object_id", obj.ObjectID, "err", err)
			continue
		}
		returned++
	}
	didl.Footer(buf)

	return searchResponseXML(buf.String(), returned, total, d.Store.SystemUpdateID()), nil
}

func (d *Dispatcher) detailFor(ctx context.Context, obj *catalog.Object) (*catalog.Detail, *Fault) {
	if obj.DetailID == nil {
		return nil, nil
	}
	detail, err := d.Store.GetDetail(ctx, *obj.DetailID)
	if err != nil {
		return nil, NewFault(FaultActionFailed, fmt.Sprintf("load detail %d: %v", *obj.DetailID, err))
	}
	return detail, nil
}

func (d *Dispatcher) handleGetSearchCapabilities(*http.Request, *Body) ([]byte, *Fault) {
	return []byte(`<u:GetSearchCapabilitiesResponse xmlns:u="urn:schemas-upnp-org:service:ContentDirectory:1">` +
		`<SearchCaps>@id,@parentID,@refID,dc:title,dc:date,dc:creator,upnp:class,upnp:album,upnp:artist,upnp:actor,upnp:genre</SearchCaps>` +
		`</u:GetSearchCapabilitiesResponse>`), nil
}

func (d *Dispatcher) handleGetSortCapabilities(*http.Request, *Body) ([]byte, *Fault) {
	return []byte(`<u:GetSortCapabilitiesResponse xmlns:u="urn:schemas-upnp-org:service:ContentDirectory:1">` +
		`<SortCaps>dc:title,dc:date,dc:creator,upnp:class,upnp:album,@id</SortCaps>` +
		`</u:GetSortCapabilitiesResponse>`), nil
}

func (d *Dispatcher) handleGetSystemUpdateID(*http.Request, *Body) ([]byte, *Fault) {
	return []byte(fmt.Sprintf(`<u:GetSystemUpdateIDResponse xmlns:u="urn:schemas-upnp-org:service:ContentDirectory:1">`+
		`<Id>%d</Id>`+
		`</u:GetSystemUpdateIDResponse>`, d.Store.SystemUpdateID())), nil
}

func (d *Dispatcher) handleQueryStateVariable(r *http.Request, body *Body) ([]byte, *Fault) {
	req := body.QueryStateVariable
	if req == nil || req.VarName != "ConnectionStatus" {
		return nil, NewFault(FaultInvalidVar, "Invalid Var")
	}
	return []byte(`<u:QueryStateVariableResponse xmlns:u="urn:schemas-upnp-org:control-1-0">` +
		`<return>OK</return>` +
		`</u:QueryStateVariableResponse>`), nil
}

func (d *Dispatcher) handleGetProtocolInfo(*http.Request, *Body) ([]byte, *Fault) {
	return []byte(`<u:GetProtocolInfoResponse xmlns:u="urn:schemas-upnp-org:service:ConnectionManager:1">` +
		`<Source>http-get:*:video/mp4:*,http-get:*:video/x-matroska:*,http-get:*:audio/mpeg:*,http-get:*:image/jpeg:*</Source>` +
		`<Sink></Sink>` +
		`</u:GetProtocolInfoResponse>`), nil
}

func (d *Dispatcher) handleGetCurrentConnectionIDs(*http.Request, *Body) ([]byte, *Fault) {
	return []byte(`<u:GetCurrentConnectionIDsResponse xmlns:u="urn:schemas-upnp-org:service:ConnectionManager:1">` +
		`<ConnectionIDs>0</ConnectionIDs>` +
		`</u:GetCurrentConnectionIDsResponse>`), nil
}

func (d *Dispatcher) handleGetCurrentConnectionInfo(*http.Request, *Body) ([]byte, *Fault) {
	return []byte(`<u:GetCurrentConnectionInfoResponse xmlns:u="urn:schemas-upnp-org:service:ConnectionManager:1">` +
		`<RcsID>-1</RcsID><AVTransportID>-1</AVTransportID><ProtocolInfo></ProtocolInfo>` +
		`<PeerConnectionManager></PeerConnectionManager><PeerConnectionID>-1</PeerConnectionID>` +
		`<Direction>Output</Direction><Status>OK</Status>` +
		`</u:GetCurrentConnectionInfoResponse>`), nil
}

func browseResponseXML(result string, numberReturned, totalMatches int, systemUpdateID uint32) []byte {
	return []byte(fmt.Sprintf(`<u:BrowseResponse xmlns:u="urn:schemas-upnp-org:service:ContentDirectory:1">`+
		`<Result>%s</Result><NumberReturned>%d</NumberReturned><TotalMatches>%d</TotalMatches>`+
		`<UpdateID>%d</UpdateID></u:BrowseResponse>`,
		escapeXML(result), numberReturned, totalMatches, systemUpdateID))
}

func searchResponseXML(result string, numberReturned, totalMatches int, systemUpdateID uint32) []byte {
	return []byte(fmt.Sprintf(`<u:SearchResponse xmlns:u="urn:schemas-upnp-org:service:ContentDirectory:1">`+
		`<Result>%s</Result><NumberReturned>%d</NumberReturned><TotalMatches>%d</TotalMatches>`+
		`<UpdateID>%d</UpdateID></u:SearchResponse>`,
		escapeXML(result), numberReturned, totalMatches, systemUpdateID))
}
