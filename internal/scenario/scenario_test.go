package scenario

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ozerrors "github.com/vango-dev/oz/internal/errors"
)

const counterYAML = `name: counter
document:
  count: 1
  step: 2
  total: {$sum: [count, step]}
watchers:
  - name: total
    path: total
steps:
  - op: set
    path: count
    value: 5
  - op: bogus
`

func codeOf(t *testing.T, err error) string {
	t.Helper()
	var oe *ozerrors.OzError
	require.ErrorAs(t, err, &oe)
	return oe.Code
}

func TestParseRecordsPositions(t *testing.T) {
	s, err := Parse([]byte(`name: positions
document: {a: 1}
watchers:
  - path: a
steps:
  - op: set
    path: a
    value: 2
  - op: read
    path: .
`), "positions.yaml")
	require.NoError(t, err)

	assert.Equal(t, "positions.yaml", s.File())
	require.Len(t, s.Watchers, 1)
	assert.Equal(t, 4, s.Watchers[0].Line)
	assert.Equal(t, "a", s.Watchers[0].Label())

	require.Len(t, s.Steps, 2)
	assert.Equal(t, 6, s.Steps[0].Line)
	assert.Equal(t, 5, s.Steps[0].Column)
	assert.Equal(t, 9, s.Steps[1].Line)
	assert.Equal(t, 2, s.Steps[0].Value)
}

func TestParseRejectsUnknownOp(t *testing.T) {
	_, err := Parse([]byte(counterYAML), "counter.yaml")
	require.Error(t, err)
	assert.Equal(t, "E203", codeOf(t, err))

	var oe *ozerrors.OzError
	require.ErrorAs(t, err, &oe)
	require.NotNil(t, oe.Location)
	assert.Equal(t, 13, oe.Location.Line)
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte("name: x\ndocument: {a: 1}\nstep:\n  - op: set\n"), "typo.yaml")
	require.Error(t, err)
	assert.Equal(t, "E202", codeOf(t, err))
}

func TestParseRequiresDocument(t *testing.T) {
	_, err := Parse([]byte("name: x\nsteps: []\n"), "empty.yaml")
	assert.Equal(t, "E202", codeOf(t, err))

	_, err = Parse(nil, "nothing.yaml")
	assert.Equal(t, "E202", codeOf(t, err))
}

func TestParseRequiresWatcherPath(t *testing.T) {
	_, err := Parse([]byte("name: x\ndocument: {a: 1}\nwatchers:\n  - name: w\n"), "w.yaml")
	assert.Equal(t, "E206", codeOf(t, err))
}

func TestParseJSON(t *testing.T) {
	s, err := Parse([]byte(`{
  "name": "json",
  "document": {"items": [1, 2]},
  "watchers": [{"path": "items", "deep": true}],
  "steps": [{"op": "push", "path": "items", "items": [3]}]
}`), "json.json")
	require.NoError(t, err)

	assert.Equal(t, "json", s.Name)
	require.Len(t, s.Steps, 1)
	assert.Equal(t, OpPush, s.Steps[0].Op)
	assert.Equal(t, []any{3}, s.Steps[0].Items)
	assert.True(t, s.Watchers[0].Deep)
	assert.Equal(t, 5, s.Steps[0].Line)
}

func TestLoad(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Equal(t, "E201", codeOf(t, err))

	path := filepath.Join(t.TempDir(), "ok.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: ok\ndocument: [1]\n"), 0644))
	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, s.File())
}
