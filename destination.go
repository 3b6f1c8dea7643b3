package main

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// =============================================================================
// Path Generation
// =============================================================================

// maxNameAttempts bounds the counter appended after the name hash when even
// the hash-suffixed destination is taken.
const maxNameAttempts = 10000

// CaptureTime is a capture timestamp split into its zero-padded fields.
type CaptureTime struct {
	Year   string // 4 digits
	Month  string // 2 digits
	Day    string
	Hour   string
	Minute string
	Second string
}

// parseCaptureTime splits a "YYYY:MM:DD HH:MM:SS" timestamp into its fields.
func parseCaptureTime(ts string) (CaptureTime, error) {
	date, clock, ok := strings.Cut(ts, " ")
	if !ok {
		return CaptureTime{}, fmt.Errorf("malformed capture time %q: missing space", ts)
	}
	d := strings.Split(date, ":")
	c := strings.Split(clock, ":")
	if len(d) != 3 || len(c) != 3 {
		return CaptureTime{}, fmt.Errorf("malformed capture time %q", ts)
	}

	ct := CaptureTime{
		Year:   d[0],
		Month:  d[1],
		Day:    d[2],
		Hour:   c[0],
		Minute: c[1],
		Second: c[2],
	}
	for _, field := range []struct {
		val   string
		width int
	}{
		{ct.Year, 4}, {ct.Month, 2}, {ct.Day, 2},
		{ct.Hour, 2}, {ct.Minute, 2}, {ct.Second, 2},
	} {
		if len(field.val) != field.width || strings.Trim(field.val, "0123456789") != "" {
			return CaptureTime{}, fmt.Errorf("malformed capture time %q: bad field %q", ts, field.val)
		}
	}
	return ct, nil
}

// Dir returns the YEAR/MONTH directory the photo belongs in.
func (ct CaptureTime) Dir() string {
	return filepath.Join(ct.Year, ct.Month)
}

// BaseName returns YYYYMMDD_HHMMSS.
func (ct CaptureTime) BaseName() string {
	return ct.Year + ct.Month + ct.Day + "_" + ct.Hour + ct.Minute + ct.Second
}

// nameHash returns the first 4 hex characters of the MD5 of a file name.
func nameHash(name string) string {
	sum := md5.Sum([]byte(name))
	return hex.EncodeToString(sum[:])[:4]
}

// destination calculates where the photo called name should be moved to,
// relative to the photo directory: YEAR/MONTH/YYYYMMDD_HHMMSS<ext>.
//
// If that file already exists (several photos taken in the same second) a
// hash of the original file name is inserted before the extension. If the
// hashed name is taken as well, a counter follows the hash.
func (o *Organizer) destination(name string, ct CaptureTime, ext string) (string, error) {
	dir := ct.Dir()
	base := ct.BaseName()

	dest := filepath.Join(dir, base+ext)
	taken, err := afero.Exists(o.fs, dest)
	if err != nil {
		return "", fmt.Errorf("checking %s: %w", dest, err)
	}
	if !taken {
		return dest, nil
	}

	base += "_" + nameHash(name)
	dest = filepath.Join(dir, base+ext)
	for i := 1; i < maxNameAttempts; i++ {
		taken, err = afero.Exists(o.fs, dest)
		if err != nil {
			return "", fmt.Errorf("checking %s: %w", dest, err)
		}
		if !taken {
			return dest, nil
		}
		dest = filepath.Join(dir, fmt.Sprintf("%s_%d%s", base, i, ext))
	}
	return "", fmt.Errorf("%w for %q in %s", ErrNoFreeName, name, dir)
}
