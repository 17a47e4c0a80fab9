package catalog

import (
	"strconv"
	"strings"

	"gomediaserver/internal/probe"
)

// MintChildID appends a `$<hex>` ordinal segment to parentID, the scheme
// that guarantees prefix ordering and lets "descendants of X" be expressed
// as the GLOB pattern "X$*".
func MintChildID(parentID string, ordinal int) string {
	return parentID + "$" + strconv.FormatInt(int64(ordinal), 16)
}

// DescendantGlob returns the GLOB pattern matching all descendants of id.
func DescendantGlob(id string) string {
	return id + "$*"
}

// lastOrdinal extracts and parses the final `$<hex>` segment of an
// object_id, returning ok=false if the id has no such segment (e.g. a
// well-known root id).
func lastOrdinal(objectID string) (int, bool) {
	idx := strings.LastIndexByte(objectID, '$')
	if idx < 0 || idx == len(objectID)-1 {
		return 0, false
	}
	v, err := strconv.ParseInt(objectID[idx+1:], 16, 64)
	if err != nil {
		return 0, false
	}
	return int(v), true
}

func detailMediaKindFromInt(v int) probe.MediaKind {
	return probe.MediaKind(v)
}
