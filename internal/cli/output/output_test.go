package output_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/oracle-t2t/lineage/internal/cli/output"
	"github.com/oracle-t2t/lineage/internal/lineage/mapping"
	"github.com/oracle-t2t/lineage/internal/lineage/model"
	"github.com/stretchr/testify/require"
)

func sampleResult() output.Result {
	edges := []model.LineageEdge{
		{
			ObjectName: "OBJ1", RowType: model.RowMapping,
			DestTable: "DW_CUSTOMER", DestField: "CUSTOMER_ID",
			SourceType: model.SourcePhysical, SourceTable: "STG_CUSTOMER", SourceField: "CUST_ID",
			DMMatch: true, TracePath: []string{"STG_CUSTOMER.CUST_ID"},
		},
	}
	stats := map[string]*mapping.Stats{
		"OBJ1": {ObjectName: "OBJ1", MappingRows: 1, PhysicalCount: 1},
	}
	return output.Result{
		ObjectName: "OBJ1",
		Edges:      edges,
		Stats:      output.StatsFromMapping(stats),
	}
}

func TestWriteJSONIncludesRunIDEdgesAndStats(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, output.WriteJSON(&buf, "run-123", []output.Result{sampleResult()}))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Equal(t, "run-123", decoded["run_id"])

	results, ok := decoded["results"].([]interface{})
	require.True(t, ok)
	require.Len(t, results, 1)

	result := results[0].(map[string]interface{})
	require.Equal(t, "OBJ1", result["object_name"])

	edges, ok := result["edges"].([]interface{})
	require.True(t, ok)
	require.Len(t, edges, 1)

	edge := edges[0].(map[string]interface{})
	require.Equal(t, "PHYSICAL", edge["source_type"])
	require.Equal(t, "DW_CUSTOMER", edge["dest_table"])
}

func TestWriteJSONOmitsErroredResultEdges(t *testing.T) {
	var buf bytes.Buffer
	errResult := output.Result{ObjectName: "BAD", Error: "parsing BAD: syntax error"}
	require.NoError(t, output.WriteJSON(&buf, "run-456", []output.Result{errResult}))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	results := decoded["results"].([]interface{})
	result := results[0].(map[string]interface{})
	require.Equal(t, "parsing BAD: syntax error", result["error"])

	edges, ok := result["edges"].([]interface{})
	require.True(t, ok)
	require.Empty(t, edges)
}

func TestWriteTextRendersObjectHeaderAndSourceColumn(t *testing.T) {
	var buf bytes.Buffer
	output.WriteText(&buf, []output.Result{sampleResult()})

	text := buf.String()
	require.Contains(t, text, "=== OBJ1 ===")
	require.Contains(t, text, "STG_CUSTOMER.CUST_ID")
	require.Contains(t, text, "DW_CUSTOMER.CUSTOMER_ID")
}

func TestWriteTextRendersErrorInsteadOfTable(t *testing.T) {
	var buf bytes.Buffer
	output.WriteText(&buf, []output.Result{{ObjectName: "BAD", Error: "boom"}})

	text := buf.String()
	require.Contains(t, text, "=== BAD ===")
	require.Contains(t, text, "error: boom")
}

func TestWriteTextRendersWarnings(t *testing.T) {
	var buf bytes.Buffer
	r := sampleResult()
	r.Warnings = []string{"unresolved rate exceeds 20% for object OBJ1"}
	output.WriteText(&buf, []output.Result{r})

	text := buf.String()
	require.Contains(t, text, "warnings:")
	require.Contains(t, text, "unresolved rate exceeds 20% for object OBJ1")
}
