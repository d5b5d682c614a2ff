// Package scraper builds command lines for the external scraping binary
// and the cache deduplication tool. Construction is pure: the same inputs
// always produce the same argv, and nothing here touches the filesystem
// or starts a process.
package scraper

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mfeller/skybatch/internal/platform"
)

// Options is the full set of knobs for one scraper invocation. The zero
// value is not meaningful; start from DefaultOptions.
type Options struct {
	// Source selects the online metadata provider. Empty means "use only
	// the locally cached database", i.e. no network access.
	Source string

	// FetchVideos asks the scraper to also fetch video assets.
	FetchVideos bool

	// ForceRefresh bypasses cached entries and re-fetches from the source.
	ForceRefresh bool

	// ResumeFrom names the game at which to resume an interrupted pass.
	ResumeFrom string

	// InputOutputPath overrides the scraper's input, gamelist and media
	// directories. Empty leaves all three at the tool's own defaults.
	InputOutputPath string

	// ExtensionFilters restricts scraping to matching files. The patterns
	// are joined into a single space-separated argument.
	ExtensionFilters []string

	// Unattended suppresses interactive prompts.
	Unattended bool

	// SkipOnUnattendedPrompt skips entries that would have prompted
	// instead of taking the default answer. Only meaningful when
	// Unattended is set.
	SkipOnUnattendedPrompt bool

	// UseRelativePaths writes gamelist entries relative to the ROM dir.
	UseRelativePaths bool

	// ShowHints leaves the scraper's hint banners enabled.
	ShowHints bool

	// Verbose raises the scraper's verbosity from 0 to 3.
	Verbose bool
}

// DefaultOptions returns the option set every invocation starts from:
// unattended with relative paths and hints suppressed.
func DefaultOptions() Options {
	return Options{
		Unattended:       true,
		UseRelativePaths: true,
	}
}

// Command is one ready-to-execute external command.
type Command struct {
	Program string
	Args    []string
}

// String renders the command for log and --debug output, quoting arguments
// that contain spaces.
func (c Command) String() string {
	var b strings.Builder
	b.WriteString(c.Program)
	for _, arg := range c.Args {
		b.WriteByte(' ')
		if strings.ContainsAny(arg, " \t") {
			b.WriteString(strconv.Quote(arg))
		} else {
			b.WriteString(arg)
		}
	}
	return b.String()
}

// Build constructs the scraper invocation for one system. The system's
// canonical name goes to the platform flag; on-disk paths, when given,
// come from opts.InputOutputPath so pseudo-systems keep their own tree.
func Build(bin string, sys platform.System, cacheRoot string, opts Options) Command {
	args := []string{"-p", sys.Canonical}

	if opts.Source != "" {
		args = append(args, "-s", opts.Source)
	}
	if cacheRoot != "" {
		args = append(args, "-d", cacheRoot)
	}
	if opts.InputOutputPath != "" {
		args = append(args,
			"-i", opts.InputOutputPath,
			"-g", opts.InputOutputPath,
			"-o", opts.InputOutputPath+"/media",
		)
	}
	if len(opts.ExtensionFilters) > 0 {
		args = append(args, "-e", strings.Join(opts.ExtensionFilters, " "))
	}
	if opts.ResumeFrom != "" {
		args = append(args, "--startat", opts.ResumeFrom)
	}
	if opts.ForceRefresh {
		args = append(args, "--cache", "refresh")
	}
	if flags := flagList(opts); len(flags) > 0 {
		args = append(args, "--flags", strings.Join(flags, ","))
	}

	verbosity := 0
	if opts.Verbose {
		verbosity = 3
	}
	args = append(args, "--verbosity", fmt.Sprint(verbosity))

	return Command{Program: bin, Args: args}
}

// flagList assembles the scraper's comma-separated --flags argument.
func flagList(opts Options) []string {
	var flags []string
	if opts.FetchVideos {
		flags = append(flags, "videos")
	}
	if opts.Unattended {
		if opts.SkipOnUnattendedPrompt {
			flags = append(flags, "unattendskip")
		} else {
			flags = append(flags, "unattend")
		}
	}
	if opts.UseRelativePaths {
		flags = append(flags, "relative")
	}
	if !opts.ShowHints {
		flags = append(flags, "nohints")
	}
	return flags
}

// Dedup constructs the hard-link deduplication pass over root. The tool
// collapses byte-identical files in place, recursively.
func Dedup(bin, root string) Command {
	return Command{
		Program: bin,
		Args:    []string{"-makehardlinks", "true", "-makeresultsfile", "false", root},
	}
}
