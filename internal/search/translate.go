package search

import (
	"fmt"
	"strings"

	"gomediaserver/internal/catalog"
)

// propertyColumn maps a grammar property to the SQL column expression it
// reads from in the joined `object o LEFT JOIN detail d` query FindByGlob
// and CountByGlob run against. upnp:actor has no dedicated storage; the
// scanner folds NFO actor names into Detail.Creator (see internal/probe's
// applyNFOOverride), so it aliases to the same column as dc:creator.
var propertyColumn = map[string]string{
	"@id":          "o.object_id",
	"@parentID":    "o.parent_id",
	"@refID":       "o.ref_id",
	"dc:title":     "d.title",
	"dc:date":      "d.date",
	"dc:creator":   "d.creator",
	"upnp:class":   "o.class",
	"upnp:album":   "d.album",
	"upnp:artist":  "d.artist",
	"upnp:actor":   "d.creator",
	"upnp:genre":   "d.genre",
}

// Translate parses a SearchCriteria string and converts it into a
// catalog.Predicate. An empty string (UPnP's "match everything" shorthand,
// sometimes sent as `*`) yields the zero Predicate, which And() treats as
// "no constraint".
func Translate(criteria string) (catalog.Predicate, error) {
	trimmed := strings.TrimSpace(criteria)
	if trimmed == "" || trimmed == "*" {
		return catalog.Predicate{}, nil
	}

	tree, err := Parse(trimmed)
	if err != nil {
		return catalog.Predicate{}, err
	}
	return translate(tree)
}

func translate(e *expr) (catalog.Predicate, error) {
	switch e.kind {
	case exprAnd:
		return combine(e, "AND")
	case exprOr:
		return combine(e, "OR")
	case exprExists:
		return translateExists(e)
	case exprCompare:
		return translateCompare(e)
	default:
		return catalog.Predicate{}, fmt.Errorf("search: unhandled expression node")
	}
}

func combine(e *expr, joiner string) (catalog.Predicate, error) {
	left, err := translate(e.left)
	if err != nil {
		return catalog.Predicate{}, err
	}
	right, err := translate(e.right)
	if err != nil {
		return catalog.Predicate{}, err
	}
	return catalog.Predicate{
		SQL:  "(" + left.SQL + ") " + joiner + " (" + right.SQL + ")",
		Args: append(append([]any{}, left.Args...), right.Args...),
	}, nil
}

func translateExists(e *expr) (catalog.Predicate, error) {
	col, ok := propertyColumn[e.property]
	if !ok {
		return catalog.Predicate{}, fmt.Errorf("%w: %q", ErrUnknownProperty, e.property)
	}
	if e.existsOK {
		return catalog.Predicate{SQL: col + " IS NOT NULL AND " + col + " != ''"}, nil
	}
	return catalog.Predicate{SQL: col + " IS NULL OR " + col + " = ''"}, nil
}

func translateCompare(e *expr) (catalog.Predicate, error) {
	col, ok := propertyColumn[e.property]
	if !ok {
		return catalog.Predicate{}, fmt.Errorf("%w: %q", ErrUnknownProperty, e.property)
	}

	value := e.value
	// upnp:class literals are written "object.item.videoItem" in the
	// grammar but stored without the leading "object." segment.
	if e.property == "upnp:class" {
		value = strings.TrimPrefix(value, "object.")
	}

	switch e.op {
	case "=":
		return catalog.Predicate{SQL: col + " = ?", Args: []any{value}}, nil
	case "!=":
		return catalog.Predicate{SQL: col + " != ?", Args: []any{value}}, nil
	case "<":
		return catalog.Predicate{SQL: col + " < ?", Args: []any{value}}, nil
	case "<=":
		return catalog.Predicate{SQL: col + " <= ?", Args: []any{value}}, nil
	case ">":
		return catalog.Predicate{SQL: col + " > ?", Args: []any{value}}, nil
	case ">=":
		return catalog.Predicate{SQL: col + " >= ?", Args: []any{value}}, nil
	case "contains":
		return catalog.Predicate{SQL: col + ` LIKE ? ESCAPE '\'`, Args: []any{"%" + escapeLike(value) + "%"}}, nil
	case "derivedfrom":
		return catalog.Predicate{SQL: col + ` LIKE ? ESCAPE '\'`, Args: []any{escapeLike(value) + "%"}}, nil
	default:
		return catalog.Predicate{}, fmt.Errorf("%w: %q", ErrUnknownOp, e.op)
	}
}

// escapeLike escapes SQLite LIKE wildcard characters in a literal so a
// contains/derivedfrom value containing '%' or '_' is matched verbatim
// rather than as a wildcard. SQLite LIKE has no default escape character,
// so every caller site declares ESCAPE '\' and values are escaped here
// before the surrounding '%' wildcards are added.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
