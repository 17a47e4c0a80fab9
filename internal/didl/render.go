package didl

import (
	"fmt"
	"strings"

	"gomediaserver/internal/catalog"
)

// RenderContext carries the request-scoped values the renderer needs to
// synthesize URLs and apply filtering, kept separate from the Object/Detail
// data itself.
type RenderContext struct {
	IfaceIP string
	Port    int
	Filter  FilterMask
}

// Header writes the opening <DIDL-Lite> tag with its namespace
// declarations, optionally including the DLNA metadata namespace when the
// "dlna" filter token is set.
func Header(b *Buffer, rc RenderContext) error {
	if rc.Filter.has(FilterDLNANamespace) {
		return b.AppendString(`<DIDL-Lite xmlns:dc="http://purl.org/dc/elements/1.1/" ` +
			`xmlns:upnp="urn:schemas-upnp-org:metadata-1-0/upnp/" ` +
			`xmlns:sec="http://www.sec.co.kr/dlna" ` +
			`xmlns:dlna="urn:schemas-dlna-org:metadata-1-0/" ` +
			`xmlns="urn:schemas-upnp-org:metadata-1-0/DIDL-Lite/">`)
	}
	return b.AppendString(`<DIDL-Lite xmlns:dc="http://purl.org/dc/elements/1.1/" ` +
		`xmlns:upnp="urn:schemas-upnp-org:metadata-1-0/upnp/" ` +
		`xmlns:sec="http://www.sec.co.kr/dlna" ` +
		`xmlns="urn:schemas-upnp-org:metadata-1-0/DIDL-Lite/">`)
}

// Footer writes the closing tag.
func Footer(b *Buffer) error {
	return b.AppendString(`</DIDL-Lite>`)
}

// RenderNode appends one <container> or <item> element for obj, pulling
// optional fields from detail according to rc.Filter. detail is nil for
// pure containers. Output is entity-escaped exactly once.
func RenderNode(b *Buffer, rc RenderContext, obj catalog.Object, detail *catalog.Detail) error {
	mark := b.Len()
	var err error
	if isContainerClass(obj.Class) {
		err = renderContainer(b, rc, obj)
	} else {
		err = renderItem(b, rc, obj, detail)
	}
	if err != nil {
		b.Truncate(mark)
		return err
	}
	return nil
}

func isContainerClass(class string) bool {
	return strings.HasPrefix(class, "container")
}

func renderContainer(b *Buffer, rc RenderContext, obj catalog.Object) error {
	parentID := obj.ParentID
	if obj.ObjectID == catalog.RootObjectID {
		parentID = catalog.RootParentID
	}

	if err := b.AppendString(fmt.Sprintf(
		`<container id="%s" parentID="%s" restricted="1" searchable="1">`,
		escapeAttr(obj.ObjectID), escapeAttr(parentID))); err != nil {
		return err
	}
	if err := b.AppendString(fmt.Sprintf(`<dc:title>%s</dc:title>`, escapeText(obj.Name))); err != nil {
		return err
	}
	if err := b.AppendString(fmt.Sprintf(`<upnp:class>%s</upnp:class>`, escapeText("object."+obj.Class))); err != nil {
		return err
	}
	if rc.Filter.has(FilterSearchClass) {
		if err := b.AppendString(`<upnp:searchClass includeDerived="1">object.item</upnp:searchClass>`); err != nil {
			return err
		}
	}
	return b.AppendString(`</container>`)
}

func renderItem(b *Buffer, rc RenderContext, obj catalog.Object, d *catalog.Detail) error {
	attrs := fmt.Sprintf(`id="%s" parentID="%s" restricted="1"`, escapeAttr(obj.ObjectID), escapeAttr(obj.ParentID))
	if rc.Filter.has(FilterRefID) && obj.RefID != nil {
		attrs += fmt.Sprintf(` refID="%s"`, escapeAttr(*obj.RefID))
	}
	if err := b.AppendString(fmt.Sprintf(`<item %s>`, attrs)); err != nil {
		return err
	}

	if err := b.AppendString(fmt.Sprintf(`<dc:title>%s</dc:title>`, escapeText(obj.Name))); err != nil {
		return err
	}
	if err := b.AppendString(fmt.Sprintf(`<upnp:class>%s</upnp:class>`, escapeText("object."+obj.Class))); err != nil {
		return err
	}

	if d != nil {
		if err := renderDetailElements(b, rc, d); err != nil {
			return err
		}
		if rc.Filter.has(FilterRes) {
			if err := renderRes(b, rc, d); err != nil {
				return err
			}
		}
		if rc.Filter.has(FilterCaptionInfoEx) && d.CaptionPath != "" {
			if err := renderCaptionInfo(b, rc, d); err != nil {
				return err
			}
		}
	}

	return b.AppendString(`</item>`)
}

func renderDetailElements(b *Buffer, rc RenderContext, d *catalog.Detail) error {
	type elem struct {
		enabled bool
		tag     string
		value   string
	}
	elems := []elem{
		{rc.Filter.has(FilterDate) && d.Date != "", "dc:date", d.Date},
		{rc.Filter.has(FilterCreator) && d.Creator != "", "dc:creator", d.Creator},
		{rc.Filter.has(FilterDescription) && d.Comment != "", "dc:description", d.Comment},
		{rc.Filter.has(FilterGenre) && d.Genre != "", "upnp:genre", d.Genre},
		{rc.Filter.has(FilterArtist) && d.Artist != "", "upnp:artist", d.Artist},
		{rc.Filter.has(FilterAlbum) && d.Album != "", "upnp:album", d.Album},
	}
	for _, e := range elems {
		if !e.enabled {
			continue
		}
		if err := b.AppendString(fmt.Sprintf(`<%s>%s</%s>`, e.tag, escapeText(e.value), e.tag)); err != nil {
			return err
		}
	}
	return nil
}

func renderRes(b *Buffer, rc RenderContext, d *catalog.Detail) error {
	url := MediaURL(rc.IfaceIP, rc.Port, d.ID, d.MIME)

	attrs := ""
	if rc.Filter.has(FilterSize) && d.Size > 0 {
		attrs += fmt.Sprintf(` size="%d"`, d.Size)
	}
	if rc.Filter.has(FilterDuration) && d.DurationMs > 0 {
		attrs += fmt.Sprintf(` duration="%s"`, formatDuration(d.DurationMs))
	}
	if rc.Filter.has(FilterBitrate) && d.BitrateBps > 0 {
		attrs += fmt.Sprintf(` bitrate="%d"`, d.BitrateBps/8)
	}
	if rc.Filter.has(FilterResolution) && d.Resolution != "" {
		attrs += fmt.Sprintf(` resolution="%s"`, escapeAttr(d.Resolution))
	}
	if rc.Filter.has(FilterNrAudioChannels) && d.Channels > 0 {
		attrs += fmt.Sprintf(` nrAudioChannels="%d"`, d.Channels)
	}
	if rc.Filter.has(FilterSampleFrequency) && d.SampleRateHz > 0 {
		attrs += fmt.Sprintf(` sampleFrequency="%d"`, d.SampleRateHz)
	}

	protocolInfo := protocolInfoFor(d)
	return b.AppendString(fmt.Sprintf(`<res protocolInfo="%s"%s>%s</res>`, escapeAttr(protocolInfo), attrs, escapeText(url)))
}

func renderCaptionInfo(b *Buffer, rc RenderContext, d *catalog.Detail) error {
	url := fmt.Sprintf("http://%s:%d/Captions/%d.srt", rc.IfaceIP, rc.Port, d.ID)
	return b.AppendString(fmt.Sprintf(
		`<sec:CaptionInfoEx sec:type="srt">%s</sec:CaptionInfoEx>`, escapeText(url)))
}

func protocolInfoFor(d *catalog.Detail) string {
	if d.DLNAProfile == "" {
		return fmt.Sprintf("http-get:*:%s:*", d.MIME)
	}
	return fmt.Sprintf("http-get:*:%s:DLNA.ORG_PN=%s;DLNA.ORG_OP=01;DLNA.ORG_CI=0;DLNA.ORG_FLAGS=01700000000000000000000000000000",
		d.MIME, d.DLNAProfile)
}

func formatDuration(ms int64) string {
	total := ms / 1000
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	frac := ms % 1000
	return fmt.Sprintf("%d:%02d:%02d.%03d", h, m, s, frac)
}
