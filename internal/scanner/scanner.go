// Package scanner walks configured media roots and populates the catalog
// store with Detail and Object rows that mirror the filesystem hierarchy.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"gomediaserver/internal/catalog"
	"gomediaserver/internal/observability"
	"gomediaserver/internal/probe"
)

// Root is one configured media root: a filesystem path plus the media
// kinds Scanner should pick up under it.
type Root struct {
	Path       string
	Kinds      probe.KindMask
	ObjectID   string // well-known top-level container id for this root, e.g. "0$0"
	AllObjects string // id of a virtual "All <Kind>" container this root feeds, or ""
}

// Scanner walks Roots and populates a catalog.Store, mirroring the
// filesystem tree as Object/Detail rows.
type Scanner struct {
	store  *catalog.Store
	probe  *probe.Probe
	log    *slog.Logger
	roots  []Root
	active atomic.Bool
}

func New(store *catalog.Store, prober *probe.Probe, roots []Root, log *slog.Logger) *Scanner {
	if log == nil {
		log = slog.Default()
	}
	return &Scanner{store: store, probe: prober, roots: roots, log: log}
}

// Scanning reports whether a scan is currently in progress. Readers use
// this as the single-writer multi-reader SCANNING flag from the resource
// model.
func (s *Scanner) Scanning() bool {
	return s.active.Load()
}

// Run walks every configured root once. Per-file errors are logged and
// skipped; Run only returns an error for catalog-store failures severe
// enough to abort the whole pass.
func (s *Scanner) Run(ctx context.Context) error {
	if !s.active.CompareAndSwap(false, true) {
		return errors.New("scanner: scan already in progress")
	}
	defer s.active.Store(false)

	for _, root := range s.roots {
		if err := s.scanRoot(ctx, root); err != nil {
			s.log.Error("scan root failed", "root", root.Path, "err", err)
			return fmt.Errorf("scanner: scan root %q: %w", root.Path, err)
		}
	}
	return nil
}

func (s *Scanner) scanRoot(ctx context.Context, root Root) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	defer func() {
		observability.ScanDuration.WithLabelValues(root.ObjectID).Observe(time.Since(start).Seconds())
	}()

	fi, err := os.Stat(root.Path)
	if err != nil {
		return fmt.Errorf("stat root: %w", err)
	}
	if !fi.IsDir() {
		return fmt.Errorf("root %q is not a directory", root.Path)
	}

	if err := s.ensureContainer(ctx, root.ObjectID, catalog.RootObjectID, filepath.Base(root.Path)); err != nil {
		return err
	}

	return s.scanDir(ctx, root, root.Path, root.ObjectID)
}

// ensureContainer inserts a storage-folder Object if it isn't already
// present; re-running a scan against an already-populated catalog is a
// no-op for existing containers.
func (s *Scanner) ensureContainer(ctx context.Context, id, parentID, name string) error {
	_, err := s.store.GetObject(ctx, id)
	if err == nil {
		return nil
	}
	if !errors.Is(err, catalog.ErrNotFound) {
		return err
	}
	return s.store.PutObject(ctx, catalog.Object{
		ObjectID: id,
		ParentID: parentID,
		Class:    "container.storageFolder",
		Name:     name,
	})
}

func (s *Scanner) scanDir(ctx context.Context, root Root, dirPath, containerID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	entries, err := os.ReadDir(dirPath)
	if err != nil {
		s.log.Warn("read dir failed, skipping", "path", dirPath, "err", err)
		return nil
	}

	accepted := filterEntries(entries, root.Kinds)
	sort.Slice(accepted, func(i, j int) bool { return accepted[i].Name() < accepted[j].Name() })

	nextOrdinal, err := s.store.MaxChildOrdinal(ctx, containerID)
	if err != nil {
		return fmt.Errorf("max child ordinal: %w", err)
	}
	nextOrdinal++

	for _, entry := range accepted {
		childPath := filepath.Join(dirPath, entry.Name())

		if entry.IsDir() {
			childID := catalog.MintChildID(containerID, nextOrdinal)
			if err := s.ensureContainer(ctx, childID, containerID, entry.Name()); err != nil {
				s.log.Warn("create container failed, skipping", "path", childPath, "err", err)
				continue
			}
			if err := s.scanDir(ctx, root, childPath, childID); err != nil {
				return err
			}
			nextOrdinal++
			continue
		}

		kind := classify(entry.Name())
		if !root.Kinds.Allows(kind) {
			continue
		}

		if err := s.scanFile(ctx, childPath, entry, kind, containerID, root, &nextOrdinal); err != nil {
			s.log.Warn("probe failed, skipping file", "path", childPath, "err", err)
		}
	}
	return nil
}

func (s *Scanner) scanFile(ctx context.Context, path string, entry os.DirEntry, kind probe.MediaKind, containerID string, root Root, nextOrdinal *int) error {
	detail, err := s.probe.Run(path, kind)
	if err != nil {
		return err
	}

	if kind == probe.KindVideo {
		if capPath, ok := findCaption(path); ok {
			detail.CaptionPath = capPath
		}
	}

	id, err := s.store.PutDetail(ctx, catalog.Detail{Detail: *detail})
	if err != nil {
		return fmt.Errorf("put detail: %w", err)
	}

	childID := catalog.MintChildID(containerID, *nextOrdinal)
	*nextOrdinal++

	if err := s.store.PutObject(ctx, catalog.Object{
		ObjectID: childID,
		ParentID: containerID,
		Class:    itemClass(detail.MediaKind),
		Name:     detail.Title,
		DetailID: &id,
	}); err != nil {
		return fmt.Errorf("put object: %w", err)
	}

	if root.AllObjects != "" && detail.MediaKind == probe.KindVideo {
		if err := s.addVirtualView(ctx, root.AllObjects, childID, id, detail.Title); err != nil {
			s.log.Warn("add virtual view failed", "path", path, "err", err)
		}
	}

	return nil
}

// addVirtualView mints a shortcut Object under an "All <Kind>" container
// referencing the same Detail row as the original item.
func (s *Scanner) addVirtualView(ctx context.Context, allContainerID, refID string, detailID int64, name string) error {
	max, err := s.store.MaxChildOrdinal(ctx, allContainerID)
	if err != nil {
		return err
	}
	id := catalog.MintChildID(allContainerID, max+1)
	ref := refID
	return s.store.PutObject(ctx, catalog.Object{
		ObjectID: id,
		ParentID: allContainerID,
		RefID:    &ref,
		Class:    itemClass(probe.KindVideo),
		Name:     name,
		DetailID: &detailID,
	})
}

func itemClass(kind probe.MediaKind) string {
	switch kind {
	case probe.KindVideo:
		return "item.videoItem"
	case probe.KindAudio:
		return "item.audioItem.musicTrack"
	case probe.KindImage:
		return "item.imageItem.photo"
	default:
		return "item"
	}
}

// filterEntries keeps non-hidden directories/symlinks plus non-hidden
// regular files whose extension names a kind in mask.
func filterEntries(entries []os.DirEntry, mask probe.KindMask) []os.DirEntry {
	out := make([]os.DirEntry, 0, len(entries))
	for _, e := range entries {
		if isHidden(e.Name()) {
			continue
		}
		if e.IsDir() || e.Type()&fs.ModeSymlink != 0 {
			out = append(out, e)
			continue
		}
		if e.Type().IsRegular() && mask.Allows(classify(e.Name())) {
			out = append(out, e)
		}
	}
	return out
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

func classify(name string) probe.MediaKind {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == ".nfo" {
		return probe.KindNFO
	}
	for _, e := range probe.VideoExtensions {
		if e == ext {
			return probe.KindVideo
		}
	}
	for _, e := range probe.AudioExtensions {
		if e == ext {
			return probe.KindAudio
		}
	}
	for _, e := range probe.ImageExtensions {
		if e == ext {
			return probe.KindImage
		}
	}
	return probe.KindNone
}
