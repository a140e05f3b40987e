package main

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

// runApp runs the CLI against a fresh database directory and returns stdout.
func runApp(t *testing.T, dbDir string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	full := append([]string{"memlane", "--config", filepath.Join(dbDir, "missing.yaml"), "--db", dbDir}, args...)
	err := app.Run(full)
	return out.String(), err
}

func isolate(t *testing.T) string {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("MEMLANE_LIVE", "false")
	return filepath.Join(t.TempDir(), "db")
}

func TestCaptureSearchStatusInsights(t *testing.T) {
	dbDir := isolate(t)

	out, err := runApp(t, dbDir, "capture", "--user", "5", "--title", "Garden notes", "--url", "https://www.example.com/x",
		"The tomatoes are finally ripening in the garden.")
	require.NoError(t, err)
	assert.Contains(t, out, "Garden notes")
	assert.Contains(t, out, "source: example.com (web)")
	assert.Contains(t, out, "processed: true")

	out, err = runApp(t, dbDir, "search", "--user", "5", "garden")
	require.NoError(t, err)
	assert.Contains(t, out, "1 results (semantic used: false)")
	assert.Contains(t, out, "Garden notes")

	out, err = runApp(t, dbDir, "search", "--user", "6", "garden")
	require.NoError(t, err)
	assert.Contains(t, out, "0 results")

	out, err = runApp(t, dbDir, "status", "--user", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "pending: false")

	out, err = runApp(t, dbDir, "insights", "--user", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "Total items: 1")
	assert.Contains(t, out, "web: 1")
}

func TestCaptureRequiresContentAndUser(t *testing.T) {
	dbDir := isolate(t)

	_, err := runApp(t, dbDir, "capture", "--user", "5")
	assert.ErrorContains(t, err, "content is required")

	_, err = runApp(t, dbDir, "capture", "some text")
	assert.ErrorContains(t, err, "user")
}

func TestReenrichCommand(t *testing.T) {
	dbDir := isolate(t)

	out, err := runApp(t, dbDir, "reenrich")
	require.NoError(t, err)
	assert.Contains(t, out, "0 items")

	_, err = runApp(t, dbDir, "reenrich", "--batch-size", "0")
	assert.ErrorContains(t, err, "batch-size must be greater than 0")

	_, err = runApp(t, dbDir, "reenrich", "--max-retries", "0")
	assert.ErrorContains(t, err, "max-retries must be greater than 0")
}

func TestReenrichCommandFlags(t *testing.T) {
	cmd := findCommand(t, newApp(), "reenrich")

	var batchFlag *cli.IntFlag
	for _, flag := range cmd.Flags {
		if f, ok := flag.(*cli.IntFlag); ok && f.Name == "batch-size" {
			batchFlag = f
			break
		}
	}
	require.NotNil(t, batchFlag)
	assert.Equal(t, 50, batchFlag.Value)
}

func TestSetupLogger(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	tests := []struct {
		level   string
		wantErr bool
	}{
		{"debug", false},
		{"INFO", false},
		{"warn", false},
		{"error", false},
		{"verbose", true},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			app := newApp()
			app.Commands = nil
			app.Action = func(*cli.Context) error { return nil }
			err := app.Run([]string{"memlane", "--log-level", tt.level})
			if tt.wantErr {
				assert.ErrorContains(t, err, "invalid log level")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestServeCommandFlags(t *testing.T) {
	cmd := findCommand(t, newApp(), "serve")
	require.Len(t, cmd.Flags, 1)
	assert.Equal(t, "addr", cmd.Flags[0].Names()[0])
}

func findCommand(t *testing.T, app *cli.App, name string) *cli.Command {
	t.Helper()
	for _, cmd := range app.Commands {
		if cmd.Name == name {
			return cmd
		}
	}
	t.Fatalf("command %q not found", name)
	return nil
}

func TestMain(m *testing.M) {
	os.Unsetenv("MEMLANE_CONFIG")
	os.Exit(m.Run())
}

func TestSeedCommand(t *testing.T) {
	dbDir := isolate(t)

	out, err := runApp(t, dbDir, "seed", "--user", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Seeded 10 items (10 enriched, 0 rejected")

	src := filepath.Join(t.TempDir(), "seed.txt")
	require.NoError(t, os.WriteFile(src, []byte("First line about the weather today\n\nSecond line about dinner\n"), 0o600))
	out, err = runApp(t, dbDir, "seed", "--user", "4", "--src", src)
	require.NoError(t, err)
	assert.Contains(t, out, "Seeded 2 items")

	out, err = runApp(t, dbDir, "search", "--user", "4", "dinner")
	require.NoError(t, err)
	assert.Contains(t, out, "[")
	assert.Contains(t, out, "Second line about dinner")
}
