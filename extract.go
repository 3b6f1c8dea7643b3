package main

import (
	"encoding/xml"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"io"
	"path/filepath"
	"strings"
	"time"

	exifv3 "github.com/dsoprea/go-exif/v3"
	"github.com/gabriel-vasile/mimetype"
	"github.com/rwcarlsen/goexif/exif"
	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"  // Register BMP decoder
	_ "golang.org/x/image/tiff" // Register TIFF decoder
	_ "golang.org/x/image/webp" // Register WebP decoder
)

// =============================================================================
// Supported File Types
// =============================================================================

// photoFormats contains the recognized photo file extensions.
// Matching is done on the lower-cased extension.
var photoFormats = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".bmp":  true,
	".svg":  true,
}

// svgMIME is accepted without raster decoding; it never carries EXIF.
const svgMIME = "image/svg+xml"

// isPhotoFile returns true if the file name has a recognized photo extension.
func isPhotoFile(name string) bool {
	return photoFormats[strings.ToLower(filepath.Ext(name))]
}

// =============================================================================
// Capture Time Extraction
// =============================================================================

// captureTimeLayout is the EXIF DateTimeOriginal format. Times taken from the
// file system are formatted the same way.
const captureTimeLayout = "2006:01:02 15:04:05"

// captureTime determines the capture timestamp of the photo called name.
//
// Priority:
//  1. EXIF DateTimeOriginal
//  2. File modification time, only if UseFileCreationTime is set
//
// An UnreadableError means the file could not be opened as an image; no
// fallback is attempted for those. Any other error means the photo has no
// usable timestamp and should be left in place.
func (o *Organizer) captureTime(name string) (string, error) {
	logger := o.log.With(zap.String("file", name))

	ts, err := o.embeddedCaptureTime(name)
	if err == nil {
		return ts, nil
	}
	var unreadable UnreadableError
	if errors.As(err, &unreadable) {
		return "", err
	}
	logger.Warn("error reading photo file", zap.Error(err))

	if !o.cfg.UseFileCreationTime {
		return "", err
	}

	info, err := o.fs.Stat(name)
	if err != nil {
		return "", UnreadableError{Path: name, Err: err}
	}
	logger.Info("using file modification time")
	return info.ModTime().Local().Format(captureTimeLayout), nil
}

// embeddedCaptureTime opens the photo, checks that it really is an image and
// reads DateTimeOriginal from its EXIF block.
func (o *Organizer) embeddedCaptureTime(name string) (string, error) {
	f, err := o.fs.Open(name)
	if err != nil {
		return "", UnreadableError{Path: name, Err: err}
	}
	defer f.Close()

	mime, err := checkImage(f, strings.ToLower(filepath.Ext(name)))
	if err != nil {
		return "", UnreadableError{Path: name, Err: err}
	}
	if mime.Is(svgMIME) {
		return "", ErrNoMetadataSupport
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", UnreadableError{Path: name, Err: fmt.Errorf("couldn't seek back in file: %w", err)}
	}
	return readDateTimeOriginal(f)
}

// checkImage sniffs the content type of r and, for raster formats, decodes
// the image header. It returns the detected type. Content behind a raster
// extension only has to be a decodable image, not one of the extension's
// format. ext is the lower-cased file extension.
func checkImage(r io.ReadSeeker, ext string) (*mimetype.MIME, error) {
	mime, err := mimetype.DetectReader(r)
	if err != nil {
		return nil, fmt.Errorf("detecting content type: %w", err)
	}
	if mime.Is(svgMIME) {
		return mime, nil
	}

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("couldn't seek back in file: %w", err)
	}
	if ext == ".svg" && isText(mime) {
		// The sniffer only sees the head of the file; a long prolog hides <svg.
		if err := checkSVGRoot(r); err != nil {
			return nil, err
		}
		return mimetype.Lookup(svgMIME), nil
	}
	if _, _, err := image.DecodeConfig(r); err != nil {
		return nil, fmt.Errorf("decoding %s image: %w", mime, err)
	}
	return mime, nil
}

func isText(mime *mimetype.MIME) bool {
	for m := mime; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}

// checkSVGRoot reads r as XML and fails unless its root element is svg.
func checkSVGRoot(r io.Reader) error {
	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("looking for svg root element: %w", err)
		}
		if start, ok := tok.(xml.StartElement); ok {
			if start.Name.Local != "svg" {
				return fmt.Errorf("root element is %q, not svg", start.Name.Local)
			}
			return nil
		}
	}
}

// readDateTimeOriginal returns the canonical DateTimeOriginal of the EXIF
// data in r. JPEG and TIFF layouts are handled by goexif; anything else
// (PNG eXIf chunks, for example) is found by scanning for a TIFF header.
func readDateTimeOriginal(r io.ReadSeeker) (string, error) {
	x, err := exif.Decode(r)
	if x != nil && (err == nil || !exif.IsCriticalError(err)) {
		tag, err := x.Get(exif.DateTimeOriginal)
		if err != nil {
			return "", ErrNoCaptureTime
		}
		val, err := tag.StringVal()
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrNoCaptureTime, err)
		}
		return normalizeCaptureTime(val)
	}

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("couldn't seek back in file: %w", err)
	}
	raw, err := exifv3.SearchAndExtractExifWithReader(r)
	if err != nil {
		if errors.Is(err, exifv3.ErrNoExif) {
			return "", ErrNoEXIF
		}
		return "", fmt.Errorf("%w: %v", ErrNoEXIF, err)
	}

	entries, _, err := exifv3.GetFlatExifDataUniversalSearch(raw, nil, true)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoEXIF, err)
	}
	for _, entry := range entries {
		if entry.TagName != "DateTimeOriginal" {
			continue
		}
		if val, ok := entry.Value.(string); ok {
			return normalizeCaptureTime(val)
		}
	}
	return "", ErrNoCaptureTime
}

// normalizeCaptureTime validates an EXIF date-time string and returns it in
// canonical form. Placeholder values such as "0000:00:00 00:00:00" are
// rejected.
func normalizeCaptureTime(val string) (string, error) {
	val = strings.TrimSpace(strings.TrimRight(val, "\x00"))
	t, err := time.Parse(captureTimeLayout, val)
	if err != nil {
		return "", fmt.Errorf("%w: invalid DateTimeOriginal %q", ErrNoCaptureTime, val)
	}
	return t.Format(captureTimeLayout), nil
}
