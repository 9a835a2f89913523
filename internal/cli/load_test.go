package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const peopleNT = `# a small social graph
<http://ex/alice> <http://ex/knows> <http://ex/bob> .
<http://ex/alice> <http://ex/name> "alice" .
<http://ex/bob> <http://ex/knows> _:friend .
_:friend <http://ex/name> "carol" .
`

func runLoadCmd(t *testing.T, opts *RootOptions, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	out := &strings.Builder{}
	cmd.SetOut(out)
	cmd.SetErr(&strings.Builder{})

	flags := []string{"load", "--format", "text", "--backend", opts.Backend, "--db", opts.Database}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestLoad_ImportsTriples(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "people.nt")
	require.NoError(t, os.WriteFile(path, []byte(peopleNT), 0644))

	opts := &RootOptions{Format: "text", Backend: "sqlite", Database: filepath.Join(dir, "graph.db")}
	out, err := runLoadCmd(t, opts, path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "status> put("), out)
	assert.Contains(t, out, "http://ex/alice")
	assert.Contains(t, out, "urn:ahghee:bnode:")

	out, _, err = runExecCmd(t, opts, "", `get "http://ex/alice" | follow any[1:2]`)
	require.NoError(t, err)
	assert.Contains(t, out, "status> get(http://ex/alice).done")
	assert.Contains(t, out, "carol")
}

func TestLoad_BlankNodesScopedPerFile(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.nt")
	b := filepath.Join(dir, "b.nt")
	require.NoError(t, os.WriteFile(a, []byte(`_:x <http://ex/name> "from a" .`+"\n"), 0644))
	require.NoError(t, os.WriteFile(b, []byte(`_:x <http://ex/name> "from b" .`+"\n"), 0644))

	opts := &RootOptions{Format: "text", Backend: "sqlite", Database: filepath.Join(dir, "graph.db")}
	out, err := runLoadCmd(t, opts, a, b)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.NotEqual(t, lines[0][:strings.Index(lines[0], ".done")], lines[1][:strings.Index(lines[1], ".done")])
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.nt")
	require.NoError(t, os.WriteFile(bad, []byte("<http://ex/a> <http://ex/p>\n"), 0644))
	opts := &RootOptions{Format: "text", Backend: "memory", Database: filepath.Join(dir, "unused")}

	tests := []struct {
		name    string
		path    string
		wantErr string
	}{
		{"missing file", filepath.Join(dir, "nope.nt"), "failed to open"},
		{"malformed triples", bad, "failed to load"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runLoadCmd(t, opts, tt.path)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_RequiresFile(t *testing.T) {
	_, err := runLoadCmd(t, &RootOptions{Backend: "memory"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 1 arg")
}
