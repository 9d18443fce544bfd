package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/sissim/internal/report"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestRootPrintsReport(t *testing.T) {
	out, _, err := execute(t, "--no-plot")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3+1+91+1)
	assert.Equal(t, report.Title, lines[0])
	assert.Equal(t, "vs. "+version, lines[1])
	assert.Equal(t, "", lines[2])
	assert.Equal(t, report.Header, lines[3])
	assert.True(t, strings.HasPrefix(lines[4], " 0.0     58498.4         1.6         1.6"))
	assert.True(t, strings.HasPrefix(lines[94], "90.0"))
	assert.Equal(t, report.Done, lines[95])
}

func TestRootStaticChartAndSummary(t *testing.T) {
	out, _, err := execute(t, "--no-show", "--summary", "--final-time", "30")
	require.NoError(t, err)

	assert.Contains(t, out, "undefined errors: 0")
	assert.Contains(t, out, "susceptible")
	assert.Contains(t, out, "x: days 0 to 30")
}

func TestRootExportsImages(t *testing.T) {
	dir := t.TempDir()
	png := filepath.Join(dir, "sis.png")
	svg := filepath.Join(dir, "sis.svg")

	_, _, err := execute(t, "--no-plot", "--final-time", "10", "--png", png, "--svg", svg)
	require.NoError(t, err)

	data, err := os.ReadFile(png)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))

	data, err = os.ReadFile(svg)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("<svg")))
}

func TestRootRejectsMislabeledImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sis.svg")

	_, _, err := execute(t, "--no-plot", "--final-time", "10", "--png", path)
	require.Error(t, err)
	assert.NoFileExists(t, path)
}

var errClosedPipe = errors.New("closed pipe")

// failingWriter accepts writes until one contains marker.
type failingWriter struct {
	bytes.Buffer
	marker string
}

func (f *failingWriter) Write(p []byte) (int, error) {
	if bytes.Contains(p, []byte(f.marker)) {
		return 0, errClosedPipe
	}
	return f.Buffer.Write(p)
}

func TestRootReturnsWriteErrors(t *testing.T) {
	cmd := newRootCmd()
	out := &failingWriter{marker: report.Done}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--no-plot", "--summary", "--final-time", "5"})

	err := cmd.ExecuteContext(context.Background())
	require.ErrorIs(t, err, errClosedPipe)
	assert.Contains(t, out.String(), report.Header)
	assert.NotContains(t, out.String(), "undefined errors")
}

func TestRootRejectsInvalidParameters(t *testing.T) {
	_, stderr, err := execute(t, "--no-plot", "--population", "0")
	require.Error(t, err)
	assert.Contains(t, stderr, "population")

	_, _, err = execute(t, "--no-plot", "--integrator", "leapfrog")
	assert.Error(t, err)

	_, _, err = execute(t, "--no-plot", "--preset", "nope")
	assert.Error(t, err)
}

func TestSaveListExport(t *testing.T) {
	dir := t.TempDir()

	_, stderr, err := execute(t, "--no-plot", "--final-time", "5", "--save", "--data", dir)
	require.NoError(t, err)
	require.Contains(t, stderr, "run id: ")
	runID := strings.TrimSpace(stderr[strings.Index(stderr, "run id: ")+len("run id: "):])
	runID = strings.Fields(runID)[0]

	out, _, err := execute(t, "list", "--data", dir)
	require.NoError(t, err)
	assert.Contains(t, out, runID)

	out, _, err = execute(t, "export-csv", runID, "--data", dir)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "time,susceptible,infected,analytic,rel_error\n"))

	out, _, err = execute(t, "export-json", runID, "--data", dir)
	require.NoError(t, err)
	assert.Contains(t, out, `"id": "`+runID+`"`)

	out, _, err = execute(t, "plot", runID, "--data", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "infected")

	_, _, err = execute(t, "plot", "sis_0", "--data", dir)
	assert.Error(t, err)
}

func TestListEmpty(t *testing.T) {
	out, _, err := execute(t, "list", "--data", filepath.Join(t.TempDir(), "none"))
	require.NoError(t, err)
	assert.Equal(t, "no runs found\n", out)
}

func TestConfigCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sis.yaml")
	require.NoError(t, os.WriteFile(path, []byte("model:\n  population: 1000\n  initial_infected: 5\n"), 0644))

	out, _, err := execute(t, "config", "--config", path, "--growth-rate", "0.3")
	require.NoError(t, err)
	assert.Contains(t, out, "population: 1000")
	assert.Contains(t, out, "growth_rate: 0.3")
	assert.Contains(t, out, "integrator: rk45")
}

func TestPresetsCommand(t *testing.T) {
	out, _, err := execute(t, "presets")
	require.NoError(t, err)
	for _, name := range []string{"hubei", "die-out", "threshold", "fast"} {
		assert.Contains(t, out, name)
	}
}

func TestCompareCommand(t *testing.T) {
	out, _, err := execute(t, "compare", "rk4", "rk45", "--final-time", "20")
	require.NoError(t, err)
	assert.Contains(t, out, "integrator")
	assert.Contains(t, out, "rk45")
	assert.NotContains(t, out, "euler")
}

func TestSweepCommand(t *testing.T) {
	out, _, err := execute(t, "sweep", "--steps", "6", "--max", "0.25", "--horizon", "200")
	require.NoError(t, err)
	assert.Contains(t, out, "growth rate")
	assert.Contains(t, out, "first endemic growth rate")
}

func TestScenarioCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scenario.yaml")
	body := "name: pair\ndescription: two runs\nsteps:\n  - name: short\n    final_time: 10\n    save: true\n  - preset: die-out\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	out, stderr, err := execute(t, "scenario", path, "--data", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "pair: two runs")
	assert.Contains(t, out, "short")
	assert.Contains(t, stderr, "run id: sis_")
}
