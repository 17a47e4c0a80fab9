package catalog

import "errors"

var (
	// ErrDuplicateID is returned by PutObject when object_id already exists.
	ErrDuplicateID = errors.New("catalog: duplicate object id")

	// ErrNotFound is returned by lookups that find no matching row.
	ErrNotFound = errors.New("catalog: not found")

	// ErrSchemaMismatch signals the on-disk schema_version does not match
	// the version this binary expects; the caller should rebuild the catalog.
	ErrSchemaMismatch = errors.New("catalog: schema version mismatch")
)
