package main

import (
	"errors"
	"fmt"
)

// Per-file metadata errors. These never abort a run: the driver logs them
// and either falls back to the file modification time or leaves the file
// where it is.
var (
	// ErrNoEXIF means no EXIF block could be found in the file.
	ErrNoEXIF = errors.New("no EXIF content")

	// ErrNoCaptureTime means EXIF was found but it has no usable
	// DateTimeOriginal field.
	ErrNoCaptureTime = errors.New("no capture time in EXIF")

	// ErrNoMetadataSupport is returned for formats that cannot carry
	// EXIF at all (SVG).
	ErrNoMetadataSupport = errors.New("no EXIF method for format")

	// ErrNoFreeName means every candidate destination name was taken.
	ErrNoFreeName = errors.New("no free destination name")
)

// UnreadableError is for files that could not be opened or that do
// not decode as an image.
type UnreadableError struct {
	Path string
	Err  error
}

func (e UnreadableError) Error() string {
	return fmt.Sprintf("unable to open photo file %q: %v", e.Path, e.Err)
}

func (e UnreadableError) Unwrap() error {
	return e.Err
}
