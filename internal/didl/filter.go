// Package didl renders DIDL-Lite XML fragments for ContentDirectory Browse
// and Search responses.
package didl

import "strings"

// FilterMask is the 32-bit bitmap of optional DIDL fields a Browse/Search
// request's Filter argument selects. Bit assignment is internal; only the
// token names are part of the UPnP ContentDirectory contract.
type FilterMask uint32

const (
	FilterRes FilterMask = 1 << iota
	FilterSize
	FilterDuration
	FilterBitrate
	FilterResolution
	FilterNrAudioChannels
	FilterSampleFrequency
	FilterDate
	FilterCreator
	FilterDescription
	FilterGenre
	FilterArtist
	FilterAlbum
	FilterOriginalTrackNumber
	FilterSearchClass
	FilterStorageUsed
	FilterRefID
	FilterDLNANamespace
	FilterCaptionInfoEx
)

// FilterAll selects every standard (non-vendor) field, the behavior for a
// missing, empty, or "*" Filter argument.
const FilterAll = FilterRes | FilterSize | FilterDuration | FilterBitrate |
	FilterResolution | FilterNrAudioChannels | FilterSampleFrequency |
	FilterDate | FilterCreator | FilterDescription | FilterGenre |
	FilterArtist | FilterAlbum | FilterOriginalTrackNumber |
	FilterSearchClass | FilterStorageUsed | FilterRefID | FilterDLNANamespace

var filterTokens = map[string]FilterMask{
	"res":                      FilterRes,
	"@size":                    FilterSize,
	"@duration":                FilterDuration,
	"@bitrate":                 FilterBitrate,
	"@resolution":              FilterResolution,
	"@nrAudioChannels":         FilterNrAudioChannels,
	"@sampleFrequency":         FilterSampleFrequency,
	"dc:date":                  FilterDate,
	"dc:creator":               FilterCreator,
	"dc:description":           FilterDescription,
	"upnp:genre":               FilterGenre,
	"upnp:artist":              FilterArtist,
	"upnp:album":               FilterAlbum,
	"upnp:originalTrackNumber": FilterOriginalTrackNumber,
	"upnp:searchClass":         FilterSearchClass,
	"upnp:storageUsed":         FilterStorageUsed,
	"@refID":                   FilterRefID,
	"dlna":                     FilterDLNANamespace,
	"sec:CaptionInfoEx":        FilterCaptionInfoEx,
}

// ParseFilter translates a comma-separated Filter argument into a mask. An
// empty string or "*" means "all standard fields".
func ParseFilter(filter string) FilterMask {
	filter = strings.TrimSpace(filter)
	if filter == "" || filter == "*" {
		return FilterAll
	}

	var mask FilterMask
	for _, tok := range strings.Split(filter, ",") {
		tok = strings.TrimSpace(tok)
		if bit, ok := filterTokens[tok]; ok {
			mask |= bit
		}
	}
	return mask
}

func (m FilterMask) has(bit FilterMask) bool {
	return m&bit != 0
}
