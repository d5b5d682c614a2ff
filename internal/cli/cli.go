// Package cli is responsible for parsing command-line arguments, validating
// user input, and handling process-level concerns like exit codes. It
// translates CLI flags into the application's internal configuration.
package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mfeller/skybatch/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated
// app.Config, a boolean indicating if the program should exit cleanly,
// or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	flagSet := flag.NewFlagSet("skybatch", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
skybatch - batch-scrape one gaming system across every online source,
dedup the shared cache, then rebuild the local gamelist and media.

Usage:
  skybatch [options] SYSTEM

Arguments:
  SYSTEM
    Name of the system to scrape (e.g. megadrive, snes, ports).

Options:
`)
		flagSet.PrintDefaults()
	}

	debugFlag := flagSet.Bool("debug", false, "Print every constructed command line before execution.")
	dryRunFlag := flagSet.Bool("dry-run", false, "Print the commands that would run, execute nothing.")
	videosFlag := flagSet.Bool("videos", false, "Include video assets in scraping and rebuild.")
	romRootFlag := flagSet.String("s", "", "ROM root override; the system's subdirectory is appended.")
	romPathFlag := flagSet.String("p", "", "ROM path override, used verbatim (excludes -s).")
	localOnlyFlag := flagSet.Bool("local-only", false, "Run only the local gamelist rebuild.")
	onlineOnlyFlag := flagSet.Bool("online-only", false, "Run only the online fan-out and dedup phases.")
	workersFlag := flagSet.Int("workers", 0, "Concurrency ceiling for the fan-out phase. 0 keeps the configured default.")
	configFlag := flagSet.String("config", "", "Path to an HCL config override file (default $SKYBATCH_CONFIG).")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	if flagSet.NArg() == 0 {
		flagSet.Usage()
		return nil, true, nil
	}
	if flagSet.NArg() > 1 {
		return nil, false, &ExitError{Code: 2, Message: "exactly one SYSTEM argument is expected"}
	}
	system := flagSet.Arg(0)

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	if *workersFlag < 0 {
		return nil, false, &ExitError{Code: 2, Message: "workers must not be negative"}
	}

	configPath := *configFlag
	if configPath == "" {
		configPath = os.Getenv("SKYBATCH_CONFIG")
	}

	config, err := app.NewConfig(app.Config{
		System:     system,
		RomRoot:    *romRootFlag,
		RomPath:    *romPathFlag,
		LocalOnly:  *localOnlyFlag,
		OnlineOnly: *onlineOnlyFlag,
		Debug:      *debugFlag,
		DryRun:     *dryRunFlag,
		Videos:     *videosFlag,
		Workers:    *workersFlag,
		ConfigPath: configPath,
		LogFormat:  logFormat,
		LogLevel:   logLevel,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	return config, false, nil
}
