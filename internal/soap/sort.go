package soap

import (
	"strings"

	"gomediaserver/internal/catalog"
)

// sortColumn maps the subset of SortCriteria properties this server accepts
// to catalog columns, mirroring the property set internal/search supports.
var sortColumn = map[string]string{
	"dc:title":   "name",
	"dc:date":    "d.date",
	"dc:creator": "d.creator",
	"upnp:class": "class",
	"upnp:album": "d.album",
	"@id":        "object_id",
}

// parseSortCriteria translates a comma-separated `+property`/`-property`
// SortCriteria string into catalog.SortOrder terms, appending a `dc:title
// ASC` tiebreaker when the client didn't already sort on title — ties would
// otherwise surface in whatever order SQLite happens to return them, which
// isn't deterministic across runs, and clients expect stable paging.
//
// An unsupported sort property only faults 709 when strict is set. Lenient
// clients instead get the terms parsed so far with the offending property
// skipped, matching minidlna's GETFLAG(DLNA_STRICT_MASK) gate around the
// same check.
func parseSortCriteria(criteria string, strict bool) (catalog.Order, *Fault) {
	criteria = strings.TrimSpace(criteria)
	if criteria == "" {
		return catalog.Order{Terms: []catalog.SortOrder{{Column: "name"}}}, nil
	}

	var terms []catalog.SortOrder
	sawTitle := false
	for _, field := range strings.Split(criteria, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}

		descending := false
		switch field[0] {
		case '-':
			descending = true
			field = field[1:]
		case '+':
			field = field[1:]
		}

		col, ok := sortColumn[field]
		if !ok {
			if strict {
				return catalog.Order{}, NewFault(FaultBadSortCriteria, "unsupported sort property: "+field)
			}
			continue
		}
		if field == "dc:title" {
			sawTitle = true
		}
		terms = append(terms, catalog.SortOrder{Column: col, Descending: descending})
	}

	if !sawTitle {
		terms = append(terms, catalog.SortOrder{Column: "name"})
	}
	return catalog.Order{Terms: terms}, nil
}
