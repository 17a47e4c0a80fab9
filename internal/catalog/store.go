package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"gomediaserver/internal/observability"
)

// Store is the transactional, key-addressable catalog described in the
// system's data model: Detail rows (probed metadata) and Object rows (DIDL
// nodes), indexed by object_id and by parent_id.
//
// Writers are serialized with writeMu, matching the "embedded engine,
// serialized writers, consistent-snapshot readers" contract; readers use
// the database connection directly since modernc.org/sqlite gives
// consistent read views without extra locking on our single-connection pool.
type Store struct {
	db      *sql.DB
	writeMu sync.Mutex

	totalChanges   atomic.Int64
	systemUpdateID atomic.Uint32
	lastBump       atomic.Int64 // unix nanos of last SystemUpdateID bump
}

func newStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// PutDetail inserts a Detail row and returns its assigned id. Detail rows
// are immutable once inserted.
func (s *Store) PutDetail(ctx context.Context, d Detail) (int64, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var dlnaProfile any
	if d.DLNAProfile != "" {
		dlnaProfile = d.DLNAProfile
	}

	var captionPath any
	if d.CaptionPath != "" {
		captionPath = d.CaptionPath
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO detail (
			path, size, modified_at, title, creator, artist, album, genre,
			comment, date, duration_ms, channels, sample_rate_hz, bitrate_bps,
			resolution, mime, dlna_profile, media_kind, caption_path
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.Path, d.Size, d.ModifiedAt.Unix(), d.Title, d.Creator, d.Artist, d.Album,
		d.Genre, d.Comment, d.Date, d.DurationMs, d.Channels, d.SampleRateHz,
		d.BitrateBps, d.Resolution, d.MIME, dlnaProfile, int(d.MediaKind), captionPath,
	)
	if err != nil {
		return 0, fmt.Errorf("catalog: put detail: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("catalog: put detail: read id: %w", err)
	}
	s.totalChanges.Add(1)
	return id, nil
}

// PutObject inserts an Object row, failing with ErrDuplicateID if object_id
// is already present.
func (s *Store) PutObject(ctx context.Context, o Object) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM object WHERE object_id = ?`, o.ObjectID).Scan(&exists)
	if err == nil {
		return ErrDuplicateID
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("catalog: put object: check existing: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO object (object_id, parent_id, ref_id, class, name, detail_id) VALUES (?, ?, ?, ?, ?, ?)`,
		o.ObjectID, o.ParentID, o.RefID, o.Class, o.Name, o.DetailID)
	if err != nil {
		return fmt.Errorf("catalog: put object: %w", err)
	}
	s.totalChanges.Add(1)
	observability.CatalogObjectsCurrent.Inc()
	return nil
}

// DeleteObject removes an Object row (used by the filesystem monitor
// collaborator when the underlying file vanishes). object_ids are not
// reused when the file reappears.
func (s *Store) DeleteObject(ctx context.Context, objectID string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM object WHERE object_id = ?`, objectID)
	if err != nil {
		return fmt.Errorf("catalog: delete object: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		s.totalChanges.Add(1)
		observability.CatalogObjectsCurrent.Dec()
	}
	return nil
}

// GetObject looks up a single Object by id.
func (s *Store) GetObject(ctx context.Context, objectID string) (*Object, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT object_id, parent_id, ref_id, class, name, detail_id FROM object WHERE object_id = ?`,
		objectID)
	o, err := scanObject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: get object: %w", err)
	}
	return o, nil
}

// GetDetail looks up a single Detail by id.
func (s *Store) GetDetail(ctx context.Context, id int64) (*Detail, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, path, size, modified_at, title, creator, artist, album, genre,
			comment, date, duration_ms, channels, sample_rate_hz, bitrate_bps,
			resolution, mime, dlna_profile, media_kind, caption_path
		 FROM detail WHERE id = ?`, id)
	d, err := scanDetail(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: get detail: %w", err)
	}
	return d, nil
}

// Order enumerates the ordering ListChildren/FindByGlob apply.
type Order struct {
	Terms []SortOrder
}

func (o Order) orderByClause() string {
	if len(o.Terms) == 0 {
		return "name ASC"
	}
	clause := ""
	for i, t := range o.Terms {
		if i > 0 {
			clause += ", "
		}
		dir := "ASC"
		if t.Descending {
			dir = "DESC"
		}
		clause += t.Column + " " + dir
	}
	return clause
}

// ListChildren returns the immediate children of parentID. The query joins
// detail so SortCriteria terms on detail columns (dc:date, dc:creator, …)
// resolve the same way they do in FindByGlob.
func (s *Store) ListChildren(ctx context.Context, parentID string, offset, limit int, order Order) ([]Object, error) {
	query := fmt.Sprintf(
		`SELECT o.object_id, o.parent_id, o.ref_id, o.class, o.name, o.detail_id
		 FROM object o LEFT JOIN detail d ON d.id = o.detail_id
		 WHERE o.parent_id = ? ORDER BY %s LIMIT ? OFFSET ?`,
		order.orderByClause())
	rows, err := s.db.QueryContext(ctx, query, parentID, limitOrAll(limit), offset)
	if err != nil {
		return nil, fmt.Errorf("catalog: list children: %w", err)
	}
	defer rows.Close()
	return scanObjects(rows)
}

// CountChildren returns the number of immediate children of parentID.
func (s *Store) CountChildren(ctx context.Context, parentID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM object WHERE parent_id = ?`, parentID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("catalog: count children: %w", err)
	}
	return n, nil
}

// FindByGlob returns objects whose object_id matches pattern (a SQLite GLOB
// expression) and which satisfy predicate, a caller-built WHERE fragment —
// typically assembled by internal/search from a parsed SearchCriteria.
func (s *Store) FindByGlob(ctx context.Context, pattern string, predicate Predicate, order Order, offset, limit int) ([]Object, error) {
	where := "object_id GLOB ?"
	args := []any{pattern}
	if predicate.SQL != "" {
		where += " AND (" + predicate.SQL + ")"
		args = append(args, predicate.Args...)
	}

	query := fmt.Sprintf(
		`SELECT o.object_id, o.parent_id, o.ref_id, o.class, o.name, o.detail_id
		 FROM object o LEFT JOIN detail d ON d.id = o.detail_id
		 WHERE %s ORDER BY %s LIMIT ? OFFSET ?`,
		where, order.orderByClause())
	args = append(args, limitOrAll(limit), offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("catalog: find by glob: %w", err)
	}
	defer rows.Close()
	return scanObjects(rows)
}

// CountByGlob mirrors FindByGlob but returns only the match count, used to
// populate Search's TotalMatches without paging the full result set.
func (s *Store) CountByGlob(ctx context.Context, pattern string, predicate Predicate) (int, error) {
	where := "object_id GLOB ?"
	args := []any{pattern}
	if predicate.SQL != "" {
		where += " AND (" + predicate.SQL + ")"
		args = append(args, predicate.Args...)
	}

	query := fmt.Sprintf(
		`SELECT COUNT(*) FROM object o LEFT JOIN detail d ON d.id = o.detail_id WHERE %s`, where)
	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("catalog: count by glob: %w", err)
	}
	return n, nil
}

// MaxChildOrdinal returns the highest `$<hex>` ordinal minted under
// parentID so far, or -1 if parentID has no children yet. Scanner's id
// minter uses this to resume numbering deterministically.
func (s *Store) MaxChildOrdinal(ctx context.Context, parentID string) (int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT object_id FROM object WHERE parent_id = ?`, parentID)
	if err != nil {
		return -1, fmt.Errorf("catalog: max child ordinal: %w", err)
	}
	defer rows.Close()

	max := -1
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return -1, fmt.Errorf("catalog: max child ordinal: scan: %w", err)
		}
		if ord, ok := lastOrdinal(id); ok && ord > max {
			max = ord
		}
	}
	return max, rows.Err()
}

// TotalChanges returns the monotonically increasing count of committed
// row changes (inserts and deletes) since the store was opened.
func (s *Store) TotalChanges() int64 {
	return s.totalChanges.Load()
}

// SystemUpdateID returns the current published SystemUpdateID.
func (s *Store) SystemUpdateID() uint32 {
	return s.systemUpdateID.Load()
}

// BumpSystemUpdateIDIfDue implements the "bumped at most once every 2
// seconds when changes are pending" rule from the data model. Writes do not
// call it. Nothing calls it periodically: cmd/server calls it only on
// SIGUSR1, with a zero interval.
func (s *Store) BumpSystemUpdateIDIfDue(minInterval time.Duration) (bumped bool, id uint32) {
	now := time.Now().UnixNano()
	last := s.lastBump.Load()
	if time.Duration(now-last) < minInterval {
		return false, s.systemUpdateID.Load()
	}
	if !s.lastBump.CompareAndSwap(last, now) {
		return false, s.systemUpdateID.Load() // another poller won the race
	}
	if s.totalChanges.Load() == 0 {
		return false, s.systemUpdateID.Load()
	}
	return true, s.systemUpdateID.Add(1)
}

func limitOrAll(limit int) int64 {
	if limit <= 0 {
		return -1 // SQLite: LIMIT -1 means unbounded
	}
	return int64(limit)
}

func scanObject(row *sql.Row) (*Object, error) {
	var o Object
	if err := row.Scan(&o.ObjectID, &o.ParentID, &o.RefID, &o.Class, &o.Name, &o.DetailID); err != nil {
		return nil, err
	}
	return &o, nil
}

func scanObjects(rows *sql.Rows) ([]Object, error) {
	var out []Object
	for rows.Next() {
		var o Object
		if err := rows.Scan(&o.ObjectID, &o.ParentID, &o.RefID, &o.Class, &o.Name, &o.DetailID); err != nil {
			return nil, fmt.Errorf("catalog: scan object: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func scanDetail(row *sql.Row) (*Detail, error) {
	var d Detail
	var modifiedAt int64
	var dlnaProfile, captionPath sql.NullString
	var mediaKind int
	err := row.Scan(&d.ID, &d.Path, &d.Size, &modifiedAt, &d.Title, &d.Creator,
		&d.Artist, &d.Album, &d.Genre, &d.Comment, &d.Date, &d.DurationMs,
		&d.Channels, &d.SampleRateHz, &d.BitrateBps, &d.Resolution, &d.MIME,
		&dlnaProfile, &mediaKind, &captionPath)
	if err != nil {
		return nil, err
	}
	d.ModifiedAt = time.Unix(modifiedAt, 0)
	d.DLNAProfile = dlnaProfile.String
	d.CaptionPath = captionPath.String
	d.MediaKind = detailMediaKindFromInt(mediaKind)
	return &d, nil
}
