package search

import "gomediaserver/internal/catalog"

// ContainerScope implements the container-scoping rule: Search(ContainerID=C)
// matches C itself plus every descendant of C, unioned. FindByGlob/
// CountByGlob only accept a single GLOB pattern for the primary match, so
// callers pass ContainerScope's predicate alongside an unrestricted "*"
// pattern and let it carry both halves of the union.
//
// ContainerID "0" (the DIDL root) means "anywhere": it is rewritten to the
// always-true predicate rather than a literal `object_id = '0' OR object_id
// GLOB '0$*'`, since root's own row is never a Search match target in
// practice but every other object is.
func ContainerScope(containerID string) catalog.Predicate {
	if containerID == "" || containerID == catalog.RootObjectID {
		return catalog.Predicate{}
	}
	return catalog.Predicate{
		SQL:  "o.object_id = ? OR o.object_id GLOB ?",
		Args: []any{containerID, containerID + "$*"},
	}
}
