package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// =============================================================================
// Configuration
// =============================================================================

// envPrefix is prepended to every flag name (upper-cased, dashes replaced by
// underscores) to form its environment variable, e.g.
// ORGANISE_PHOTOS_USE_FILE_CREATION_TIME.
const envPrefix = "ORGANISE_PHOTOS"

// errMissingDir is returned by loadConfig when no photo directory is given.
var errMissingDir = errors.New("photo directory not specified")

// Config holds the settings for a single run.
type Config struct {
	PhotoDir            string // Directory whose top-level photos are organized
	UseFileCreationTime bool   // Fall back to the file modification time when EXIF has no capture time
	DryRun              bool   // Log what would happen without touching any file
	LogDir              string // Directory the run log is written to
}

// loadConfig parses the command line and environment into a Config.
// Flags win over environment variables, which win over flag defaults.
// There is deliberately no configuration file.
func loadConfig(args []string, output io.Writer) (Config, error) {
	flags := pflag.NewFlagSet("organise-photos", pflag.ContinueOnError)
	flags.SetOutput(output)
	flags.BoolP("use-file-creation-time", "c", false, "Use the file modification time for photos without EXIF capture time")
	flags.BoolP("dry-run", "n", false, "Only log what would be moved")
	flags.String("log-dir", ".", "Directory to write the run log file to")
	flags.Usage = func() {
		fmt.Fprintf(output, "Usage: organise-photos [options] <photo-dir>\n\nOptions:\n")
		flags.PrintDefaults()
	}

	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(flags); err != nil {
		return Config{}, fmt.Errorf("binding flags: %w", err)
	}

	switch flags.NArg() {
	case 0:
		return Config{}, errMissingDir
	case 1:
	default:
		return Config{}, fmt.Errorf("expected one photo directory, got %d arguments", flags.NArg())
	}

	return Config{
		PhotoDir:            flags.Arg(0),
		UseFileCreationTime: v.GetBool("use-file-creation-time"),
		DryRun:              v.GetBool("dry-run"),
		LogDir:              v.GetString("log-dir"),
	}, nil
}
