package pipeline_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/oracle-t2t/lineage/internal/cli/pipeline"
	"github.com/oracle-t2t/lineage/internal/lineage/mapping"
	"github.com/oracle-t2t/lineage/internal/lineage/model"
	"github.com/stretchr/testify/require"
)

func TestLoadDataModelParsesTablesBlock(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dm.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tables:\n  stg_customer:\n    - cust_id\n    - cust_name\n"), 0o644))

	dm, err := pipeline.LoadDataModel(path)
	require.NoError(t, err)
	require.True(t, dm.HasColumn("stg_customer", "CUST_ID"))
}

func TestLoadDataModelEmptyPathReturnsNil(t *testing.T) {
	dm, err := pipeline.LoadDataModel("")
	require.NoError(t, err)
	require.Nil(t, dm)
}

func TestLoadMappingRowsUppercasesIdentifiers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mapping.yaml")
	yamlText := "rows:\n  - object_name: obj1\n    destination_table: dw_customer\n    destination_field: customer_id\n    source_table: a\n    source_field: cust_id\n"
	require.NoError(t, os.WriteFile(path, []byte(yamlText), 0o644))

	rows, err := pipeline.LoadMappingRows(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "OBJ1", rows[0].ObjectName)
	require.Equal(t, "A", rows[0].SourceTable)
	require.Equal(t, "CUST_ID", rows[0].SourceColumn)
}

func TestLoadSQLFilesReadsOnlySQLExtension(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "obj1.sql"), []byte("SELECT 1 FROM dual"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore me"), 0o644))

	files, err := pipeline.LoadSQLFiles(dir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.Equal(t, "OBJ1", files[0].ObjectName)
}

func TestResolveFileRunsFullPipeline(t *testing.T) {
	dm := model.NewDataModel(map[string][]string{"stg_customer": {"cust_id"}})
	sqlFile := pipeline.SQLFile{ObjectName: "OBJ1", Path: "obj1.sql", Text: "SELECT a.cust_id FROM stg_customer a"}
	rows := []mapping.Row{
		{ObjectName: "OBJ1", DestTable: "DW_CUSTOMER", DestField: "CUSTOMER_ID", SourceTable: "A", SourceColumn: "CUST_ID"},
	}

	result := pipeline.ResolveFile(sqlFile, rows, dm, 0)
	require.NoError(t, result.ParseError)
	require.Len(t, result.Edges, 1)
	require.Equal(t, model.SourcePhysical, result.Edges[0].SourceType)
}

func TestResolveFileReportsParseErrorAndSkipsFile(t *testing.T) {
	sqlFile := pipeline.SQLFile{ObjectName: "BAD", Path: "bad.sql", Text: "DROP TABLE foo"}
	result := pipeline.ResolveFile(sqlFile, nil, nil, 0)
	require.Error(t, result.ParseError)
	require.Empty(t, result.Edges)
}
