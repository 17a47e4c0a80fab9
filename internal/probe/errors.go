package probe

import "errors"

var (
	// ErrProbeFailed means the container prober could not open or parse the
	// file at all. Per spec.md §4.1 step 8, this is not fatal to scanning:
	// the caller falls back to a MIME sniff and an "unrecognized" profile.
	ErrProbeFailed = errors.New("probe: container probe failed")

	// ErrNoVideoStream means the prober succeeded but found no video
	// elementary stream in a file that was scanned as a video candidate.
	ErrNoVideoStream = errors.New("probe: no video stream")

	// ErrUnsupportedKind is returned when Probe is asked to handle a
	// MediaKind it has no pipeline for.
	ErrUnsupportedKind = errors.New("probe: unsupported media kind")
)
