package media

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// ResourceMode determines how a root-relative path is turned into a Resource.
type ResourceMode int

const (
	ModeUnknown ResourceMode = iota
	ModeFileDirect
	ModeFileBuffered
)

// Root resolves root-relative paths to Resources, rejecting any path whose
// resolution escapes rootPath (a "wide link" per the DLNA wide-link policy).
type Root struct {
	RootPath   string
	Mode       ResourceMode
	BufferSize int
}

func NewRoot(rootPath string, mode ResourceMode, bufferSize int) *Root {
	return &Root{RootPath: rootPath, Mode: mode, BufferSize: bufferSize}
}

// Open resolves relPath under RootPath and returns a streamable Resource.
func (r *Root) Open(relPath string) (Resource, error) {
	file, err := r.openFile(relPath)
	if err != nil {
		return nil, err
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("stat %q: %w", relPath, err)
	}

	switch r.Mode {
	case ModeFileDirect:
		return newFileResource(file, info), nil
	case ModeFileBuffered:
		return newBufferedFileResource(file, info, r.BufferSize), nil
	default:
		file.Close()
		return nil, fmt.Errorf("open resource: %w (mode: %d)", ErrUnsupportedMode, r.Mode)
	}
}

func (r *Root) openFile(relPath string) (*os.File, error) {
	f, err := os.OpenInRoot(r.RootPath, relPath)
	if err != nil {
		switch {
		// os.OpenInRoot reports an unexported "path escapes from parent" error
		// when the resolved path escapes root, and fs.ErrInvalid for invalid names.
		case errors.Is(err, fs.ErrInvalid), strings.Contains(err.Error(), "path escapes from parent"):
			return nil, fmt.Errorf("%w (%w)", ErrPathOutsideRoot, err)
		default:
			return nil, err
		}
	}
	return f, nil
}
