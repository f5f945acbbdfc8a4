package cli_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/oracle-t2t/lineage/internal/cli"
	"github.com/stretchr/testify/require"
)

func TestResolveCommandRendersTextTableForSQLDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "obj1.sql"), []byte("SELECT a.id FROM stg_table a"), 0o644))

	root := cli.NewRootCmd()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs([]string{"resolve", "--sql-dir", dir, "--output", "text"})

	require.NoError(t, root.Execute())
	require.Contains(t, buf.String(), "=== OBJ1 ===")
}

func TestResolveCommandRendersJSONForSQLDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "obj1.sql"), []byte("SELECT a.id FROM stg_table a"), 0o644))

	root := cli.NewRootCmd()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs([]string{"resolve", "--sql-dir", dir, "--output", "json"})

	require.NoError(t, root.Execute())
	require.Contains(t, buf.String(), `"object_name": "OBJ1"`)
	require.Contains(t, buf.String(), `"run_id":`)
}

func TestVersionCommandPrintsVersion(t *testing.T) {
	root := cli.NewRootCmd()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	require.Contains(t, buf.String(), "t2tlineage v")
}

func TestResolveCommandErrorsOnMissingSQLDir(t *testing.T) {
	root := cli.NewRootCmd()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs([]string{"resolve", "--sql-dir", filepath.Join(t.TempDir(), "does-not-exist")})

	require.Error(t, root.Execute())
}
