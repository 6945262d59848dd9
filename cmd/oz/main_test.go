package main

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/oz/internal/errors"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var oe *errors.OzError
	require.True(t, stderrors.As(err, &oe), "expected *OzError, got %T", err)
	assert.Equal(t, code, oe.Code)
}

func TestRunGolden(t *testing.T) {
	out, _, err := execute(t, "run", "testdata/counter.yaml", "--config", "testdata/oz.json")
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "run_counter", []byte(out))
}

func TestRunJSON(t *testing.T) {
	out, _, err := execute(t, "run", "testdata/counter.yaml", "--config", "testdata/oz.json", "--format", "json")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.NotEmpty(t, lines)

	var first, last map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &last))

	assert.Equal(t, "scenario", first["event"])
	assert.Equal(t, "counter", first["name"])
	assert.Equal(t, "done", last["event"])
	assert.EqualValues(t, 8, last["steps"])
	assert.EqualValues(t, 6, last["changes"])
}

func TestRunErrors(t *testing.T) {
	t.Run("missing scenario", func(t *testing.T) {
		_, _, err := execute(t, "run", "testdata/nope.yaml", "--config", "testdata/oz.json")
		requireCode(t, err, "E201")
	})

	t.Run("unknown format", func(t *testing.T) {
		_, _, err := execute(t, "run", "testdata/counter.yaml", "--format", "xml")
		requireCode(t, err, "E301")
	})

	t.Run("unknown op", func(t *testing.T) {
		_, _, err := execute(t, "run", "testdata/broken.yaml", "--config", "testdata/oz.json")
		requireCode(t, err, "E203")
	})

	t.Run("missing config", func(t *testing.T) {
		_, _, err := execute(t, "run", "testdata/counter.yaml", "--config", "testdata/missing.json")
		requireCode(t, err, "E101")
	})

	t.Run("bad log level", func(t *testing.T) {
		_, _, err := execute(t, "run", "testdata/counter.yaml", "--config", "testdata/oz.json", "--log-level", "loud")
		requireCode(t, err, "E103")
	})

	t.Run("missing argument", func(t *testing.T) {
		_, _, err := execute(t, "run")
		require.Error(t, err)
	})
}

func TestRunDebugLogging(t *testing.T) {
	_, errOut, err := execute(t, "run", "testdata/counter.yaml",
		"--config", "testdata/oz.json", "--log-level", "debug", "--log-format", "json")
	require.NoError(t, err)
	assert.Contains(t, errOut, `"msg":"scenario finished"`)
}

func TestVersion(t *testing.T) {
	out, _, err := execute(t, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, "dev\n", out)

	out, _, err = execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Version:    dev")
	assert.Contains(t, out, "OS/Arch:")
}

func TestInspect(t *testing.T) {
	out, errOut, err := execute(t, "inspect", "testdata/counter.yaml",
		"--config", "testdata/oz.json", "--addr", "127.0.0.1:0", "--for", "100ms")
	require.NoError(t, err)

	assert.Contains(t, out, "done: 8 steps, 6 changes")
	assert.Contains(t, errOut, "inspecting counter at http://127.0.0.1:0/debug/reactive/stats")
}
