package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfeller/skybatch/internal/app"
	"github.com/mfeller/skybatch/internal/cli"
)

func TestRun_ShouldExit(t *testing.T) {
	// The "-h" (help) flag should cause cli.Parse to return shouldExit=true.
	out := &bytes.Buffer{}
	err := run(out, []string{"-h"})
	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	assert.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_NoArgsPrintsUsage(t *testing.T) {
	out := &bytes.Buffer{}
	err := run(out, nil)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "SYSTEM")
}

func TestRun_UnknownSystemIsUsageError(t *testing.T) {
	out := &bytes.Buffer{}
	err := run(out, []string{"gamecube"})
	require.Error(t, err)

	var usageErr *app.UsageError
	require.True(t, errors.As(err, &usageErr))
	assert.Contains(t, usageErr.Message, "gamecube")
	assert.Contains(t, usageErr.Message, "megadrive", "the message should list supported systems")
}

func TestRun_FlagErrorCarriesExitCode(t *testing.T) {
	out := &bytes.Buffer{}
	err := run(out, []string{"--local-only", "--online-only", "snes"})
	require.Error(t, err)

	var exitErr *cli.ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 2, exitErr.Code)
}

func TestRun_DryRunEndToEnd(t *testing.T) {
	// A dry run needs no external binaries and must not touch anything,
	// which makes it the one full path safe to drive from main's run().
	out := &bytes.Buffer{}
	err := run(out, []string{"--dry-run", "--debug", "-p", t.TempDir(), "ports"})
	require.NoError(t, err)

	logged := out.String()
	assert.Contains(t, logged, "Would run.")
	assert.Contains(t, logged, "-p pc", "pseudo-system must be scraped under its canonical platform")
}
