package main

import (
	"fmt"
	"io/fs"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// =============================================================================
// File Operations
// =============================================================================

// ensureDirs creates the YEAR and YEAR/MONTH directories of ct if they do not
// exist yet, year first. Each creation is logged; existing directories are
// left alone silently.
func (o *Organizer) ensureDirs(ct CaptureTime) error {
	created, err := o.mkdirIfMissing(ct.Year)
	if err != nil {
		return fmt.Errorf("creating year dir %s: %w", ct.Year, err)
	}
	if created {
		o.log.Info("created year dir", zap.String("dir", ct.Year))
	}

	monthDir := ct.Dir()
	created, err = o.mkdirIfMissing(monthDir)
	if err != nil {
		return fmt.Errorf("creating month dir %s: %w", monthDir, err)
	}
	if created {
		o.log.Info("created month dir", zap.String("dir", monthDir))
	}
	return nil
}

// mkdirIfMissing creates dir unless it already exists, and reports whether it
// did. The parent must exist.
func (o *Organizer) mkdirIfMissing(dir string) (bool, error) {
	exists, err := afero.DirExists(o.fs, dir)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	if err := o.fs.Mkdir(dir, 0o755); err != nil {
		return false, err
	}
	return true, nil
}

// move renames name to dest. It never overwrites: a destination that appeared
// after it was resolved is an error.
func (o *Organizer) move(name, dest string) error {
	o.log.Info("moving", zap.String("from", name), zap.String("to", dest))

	exists, err := afero.Exists(o.fs, dest)
	if err != nil {
		return fmt.Errorf("checking %s: %w", dest, err)
	}
	if exists {
		return fmt.Errorf("moving %s to %s: %w", name, dest, fs.ErrExist)
	}
	if err := o.fs.Rename(name, dest); err != nil {
		return fmt.Errorf("moving %s to %s: %w", name, dest, err)
	}
	return nil
}
