// Organise Photos - A tool to sort a directory of photos by capture date
//
// This tool scans the top level of a directory for photos, extracts their
// capture dates from EXIF metadata (or, optionally, the file modification
// time), and moves them into a YEAR/MONTH/ hierarchy inside that same
// directory, renamed after the capture time.
//
// Features:
//   - EXIF DateTimeOriginal extraction (JPEG, TIFF-style EXIF in PNG)
//   - Optional file modification time fallback
//   - Deterministic collision handling via a hash of the original name
//   - Run log file plus console output
//   - Dry-run mode
//
// Usage:
//
//	organise-photos ~/Pictures/Inbox       # Organize photos
//	organise-photos -c ~/Pictures/Inbox    # Also organize photos without EXIF
//	organise-photos -n ~/Pictures/Inbox    # Preview only
//
// Resulting directory structure:
//
//	Inbox/
//	├── 2020/
//	│   └── 05/
//	│       ├── 20200517_140322.jpg
//	│       └── 20200517_140322_3f2a.jpg
//	└── notes.txt   <- non-photos are never touched
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

// Process exit codes.
const (
	exitOK     = 0
	exitFailed = 1 // Missing argument, bad flags or a failed run
	exitNotDir = 2 // Argument is not a directory
)

// =============================================================================
// Main Entry Point
// =============================================================================

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one organise-photos invocation and returns the exit code.
func run(args []string, stdout, stderr io.Writer) int {
	cfg, err := loadConfig(args, stderr)
	switch {
	case errors.Is(err, pflag.ErrHelp):
		return exitOK
	case errors.Is(err, errMissingDir):
		printError(stderr, "Error! Please specify directory to process.")
		return exitFailed
	case err != nil:
		printError(stderr, "Error! %v", err)
		return exitFailed
	}

	if info, err := os.Stat(cfg.PhotoDir); err != nil || !info.IsDir() {
		printError(stderr, "Error! '%s' is not a directory.", cfg.PhotoDir)
		return exitNotDir
	}
	root, err := filepath.Abs(cfg.PhotoDir)
	if err != nil {
		printError(stderr, "Error! %v", err)
		return exitFailed
	}

	fmt.Fprintln(stdout, "---- Start ----")

	logger, closeLog, err := newRunLogger(cfg.LogDir, time.Now(), stderr)
	if err != nil {
		printError(stderr, "Error! %v", err)
		return exitFailed
	}
	defer closeLog()

	logger.Info("organizing photos",
		zap.String("dir", root),
		zap.Bool("use_file_creation_time", cfg.UseFileCreationTime),
		zap.Bool("dry_run", cfg.DryRun))

	org := NewOrganizer(afero.NewBasePathFs(afero.NewOsFs(), root), logger, cfg)
	sum, err := org.Run()
	if err != nil {
		logger.Error("organizing photos failed", zap.Error(err))
		return exitFailed
	}

	logger.Info("finished",
		zap.Int("found", sum.Found),
		zap.Int("moved", sum.Moved),
		zap.Int("skipped", sum.Skipped),
		zap.Bool("dry_run", cfg.DryRun))

	fmt.Fprintln(stdout, "---- End ----")
	return exitOK
}

// printError writes a red error line to w.
func printError(w io.Writer, format string, args ...any) {
	color.New(color.FgRed).Fprintf(w, format+"\n", args...)
}
