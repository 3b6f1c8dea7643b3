package main

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/image/bmp"
)

// testImage returns a small solid image.
func testImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			img.Set(x, y, color.RGBA{R: 40, G: 90, B: 160, A: 255})
		}
	}
	return img
}

// tiffEntry writes a single 12-byte little-endian IFD entry.
func tiffEntry(buf *bytes.Buffer, tag, typ uint16, count, value uint32) {
	le := binary.LittleEndian
	_ = binary.Write(buf, le, tag)
	_ = binary.Write(buf, le, typ)
	_ = binary.Write(buf, le, count)
	_ = binary.Write(buf, le, value)
}

// exifWithDateTimeOriginal builds a little-endian TIFF structure with an
// IFD0 that points at an Exif IFD holding only DateTimeOriginal.
func exifWithDateTimeOriginal(ts string) []byte {
	const (
		ifd0Offset = 8
		exifOffset = ifd0Offset + 18
		dataOffset = exifOffset + 18
	)
	val := append([]byte(ts), 0)
	le := binary.LittleEndian

	buf := new(bytes.Buffer)
	buf.WriteString("II")
	_ = binary.Write(buf, le, uint16(42))
	_ = binary.Write(buf, le, uint32(ifd0Offset))

	_ = binary.Write(buf, le, uint16(1))
	tiffEntry(buf, 0x8769, 4, 1, exifOffset) // ExifIFDPointer, LONG
	_ = binary.Write(buf, le, uint32(0))

	_ = binary.Write(buf, le, uint16(1))
	tiffEntry(buf, 0x9003, 2, uint32(len(val)), dataOffset) // DateTimeOriginal, ASCII
	_ = binary.Write(buf, le, uint32(0))

	buf.Write(val)
	return buf.Bytes()
}

// exifWithoutDateTimeOriginal builds a TIFF structure whose IFD0 only
// carries a Make tag.
func exifWithoutDateTimeOriginal() []byte {
	le := binary.LittleEndian
	buf := new(bytes.Buffer)
	buf.WriteString("II")
	_ = binary.Write(buf, le, uint16(42))
	_ = binary.Write(buf, le, uint32(8))

	_ = binary.Write(buf, le, uint16(1))
	tiffEntry(buf, 0x010f, 2, 4, le.Uint32([]byte("abc\x00"))) // Make, ASCII, inline
	_ = binary.Write(buf, le, uint32(0))
	return buf.Bytes()
}

// jpegBytes encodes testImage as a JPEG. If tiff is not nil it is embedded
// as an APP1 Exif segment right after SOI.
func jpegBytes(t *testing.T, tiff []byte) []byte {
	t.Helper()
	var img bytes.Buffer
	require.NoError(t, jpeg.Encode(&img, testImage(), nil))
	if tiff == nil {
		return img.Bytes()
	}

	out := new(bytes.Buffer)
	out.Write([]byte{0xFF, 0xD8, 0xFF, 0xE1})
	_ = binary.Write(out, binary.BigEndian, uint16(2+6+len(tiff)))
	out.WriteString("Exif\x00\x00")
	out.Write(tiff)
	out.Write(img.Bytes()[2:])
	return out.Bytes()
}

// pngBytes encodes testImage as a PNG. If tiff is not nil it is stored in an
// eXIf chunk right after IHDR.
func pngBytes(t *testing.T, tiff []byte) []byte {
	t.Helper()
	var img bytes.Buffer
	require.NoError(t, png.Encode(&img, testImage()))
	if tiff == nil {
		return img.Bytes()
	}

	const ihdrEnd = 8 + 4 + 4 + 13 + 4
	raw := img.Bytes()
	chunk := new(bytes.Buffer)
	_ = binary.Write(chunk, binary.BigEndian, uint32(len(tiff)))
	typeAndData := append([]byte("eXIf"), tiff...)
	chunk.Write(typeAndData)
	_ = binary.Write(chunk, binary.BigEndian, crc32.ChecksumIEEE(typeAndData))

	out := new(bytes.Buffer)
	out.Write(raw[:ihdrEnd])
	out.Write(chunk.Bytes())
	out.Write(raw[ihdrEnd:])
	return out.Bytes()
}

func bmpBytes(t *testing.T) []byte {
	t.Helper()
	var img bytes.Buffer
	require.NoError(t, bmp.Encode(&img, testImage()))
	return img.Bytes()
}

func gifBytes(t *testing.T) []byte {
	t.Helper()
	var img bytes.Buffer
	require.NoError(t, gif.Encode(&img, testImage(), nil))
	return img.Bytes()
}

const svgDoc = `<svg xmlns="http://www.w3.org/2000/svg" width="4" height="4"><rect width="4" height="4"/></svg>`

// svgLongPrologDoc puts svgDoc behind a doctype and a comment longer than
// the content sniffer reads.
var svgLongPrologDoc = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE svg PUBLIC "-//W3C//DTD SVG 1.1//EN" "http://www.w3.org/Graphics/SVG/1.1/DTD/svg11.dtd">
<!-- ` + strings.Repeat("x", 4000) + ` -->
` + svgDoc

var zeroTime time.Time

// writeFile creates name in dir with the given content and modification time.
// A zero mtime leaves the current time.
func writeFile(t *testing.T, dir, name string, data []byte, mtime time.Time) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	if !mtime.IsZero() {
		require.NoError(t, os.Chtimes(path, mtime, mtime))
	}
}

// newTestOrganizer returns an Organizer rooted at a fresh temporary directory
// and the observed log entries it emits.
func newTestOrganizer(t *testing.T, cfg Config) (*Organizer, string, *observer.ObservedLogs) {
	t.Helper()
	dir := t.TempDir()
	core, logs := observer.New(zap.InfoLevel)
	return NewOrganizer(afero.NewBasePathFs(afero.NewOsFs(), dir), zap.New(core), cfg), dir, logs
}
