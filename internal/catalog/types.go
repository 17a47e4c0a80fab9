// Package catalog implements the hierarchical object store backing
// ContentDirectory browsing: Detail rows (probed media metadata) and Object
// rows (DIDL nodes), persisted in a single embedded SQL database.
package catalog

import (
	"gomediaserver/internal/probe"
)

// Detail is a stored probe.Detail plus the row id assigned on insert. Detail
// rows are never mutated after insert; a rescan deletes and reinserts.
type Detail struct {
	ID int64
	probe.Detail
}

// Object is one DIDL-Lite node: either a container (folder) or an item
// referencing a Detail row.
type Object struct {
	ObjectID string
	ParentID string
	RefID    *string
	Class    string
	Name     string
	DetailID *int64
}

// IsVirtual reports whether this Object is a shortcut view of another
// object rather than the canonical node for its Detail row.
func (o Object) IsVirtual() bool {
	return o.RefID != nil
}

// RootObjectID is the well-known id of the DIDL root container.
const RootObjectID = "0"

// RootParentID is the parentID UPnP clients expect on the root container.
const RootParentID = "-1"

// SortOrder is one translated `+field`/`-field` term from a SortCriteria
// string, already mapped to a catalog column expression.
type SortOrder struct {
	Column     string
	Descending bool
}

// Predicate is a WHERE-clause fragment plus its bound arguments, built by
// internal/search (or scoped internally, e.g. for ListChildren) and passed
// opaquely into FindByGlob. Callers own the SQL fragment; the store never
// parses it, only splices it after a parameterized base query.
type Predicate struct {
	SQL  string
	Args []any
}

// And combines two predicates with SQL AND, short-circuiting empty sides.
func (p Predicate) And(other Predicate) Predicate {
	switch {
	case p.SQL == "":
		return other
	case other.SQL == "":
		return p
	default:
		return Predicate{
			SQL:  "(" + p.SQL + ") AND (" + other.SQL + ")",
			Args: append(append([]any{}, p.Args...), other.Args...),
		}
	}
}
