package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// =============================================================================
// Core Organization Logic
// =============================================================================

// Organizer moves the photos at the top level of a directory into
// YEAR/MONTH subdirectories of that same directory.
type Organizer struct {
	fs  afero.Fs // Rooted at the photo directory
	log *zap.Logger
	cfg Config
}

// NewOrganizer returns an Organizer working on fsys, whose root is the photo
// directory.
func NewOrganizer(fsys afero.Fs, logger *zap.Logger, cfg Config) *Organizer {
	return &Organizer{fs: fsys, log: logger, cfg: cfg}
}

// Summary counts what a run did.
type Summary struct {
	Found   int // Photo files found at the top level
	Moved   int // Photos moved (or that would be moved, in a dry run)
	Skipped int // Photos left in place
}

// outcome is the result of organizing a single photo.
type outcome int

const (
	skipped outcome = iota
	moved
)

// Run organizes every photo found at the top level of the photo directory.
//
// Photos without a usable timestamp, or that cannot be opened, are skipped
// and the run continues. Failing to create a directory or move a file stops
// the run; photos moved up to that point stay moved.
func (o *Organizer) Run() (Summary, error) {
	var sum Summary

	photos, err := o.findPhotos()
	if err != nil {
		return sum, err
	}
	sum.Found = len(photos)

	for _, name := range photos {
		res, err := o.organize(name)
		if err != nil {
			return sum, err
		}
		switch res {
		case moved:
			sum.Moved++
		default:
			sum.Skipped++
		}
	}
	return sum, nil
}

// findPhotos returns the names of the regular files at the top level of the
// photo directory with a recognized extension, sorted by name. Names keep
// their original case.
func (o *Organizer) findPhotos() ([]string, error) {
	entries, err := afero.ReadDir(o.fs, ".")
	if err != nil {
		return nil, fmt.Errorf("reading photo directory: %w", err)
	}

	var photos []string
	for _, entry := range entries {
		if !entry.Mode().IsRegular() {
			continue
		}
		if isPhotoFile(entry.Name()) {
			photos = append(photos, entry.Name())
		}
	}
	return photos, nil
}

// organize moves a single photo into place. A returned error is fatal for
// the whole run; per-file problems are logged and reported as skipped.
func (o *Organizer) organize(name string) (outcome, error) {
	ts, err := o.captureTime(name)
	if err != nil {
		var unreadable UnreadableError
		if errors.As(err, &unreadable) {
			o.log.Error("unable to open photo file", zap.String("file", name), zap.Error(err))
		}
		return skipped, nil
	}

	ct, err := parseCaptureTime(ts)
	if err != nil {
		o.log.Warn("unusable capture time", zap.String("file", name), zap.Error(err))
		return skipped, nil
	}

	ext := strings.ToLower(filepath.Ext(name))
	dest, err := o.destination(name, ct, ext)
	if err != nil {
		return skipped, err
	}

	if o.cfg.DryRun {
		o.log.Info("would move", zap.String("from", name), zap.String("to", dest))
		return moved, nil
	}

	if err := o.ensureDirs(ct); err != nil {
		return skipped, err
	}
	if err := o.move(name, dest); err != nil {
		return skipped, err
	}
	return moved, nil
}
