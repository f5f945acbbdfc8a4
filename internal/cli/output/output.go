// Package output renders pipeline results as either a text table
// (github.com/jedib0t/go-pretty/v6/table) or JSON, matching the teacher's
// two-mode CLI output pattern.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/oracle-t2t/lineage/internal/lineage/mapping"
	"github.com/oracle-t2t/lineage/internal/lineage/model"
)

// Mode selects the output renderer.
type Mode string

const (
	ModeText Mode = "text"
	ModeJSON Mode = "json"
)

// edgeJSON is the JSON wire shape for one LineageEdge; exported field names
// give consumers (spreadsheet writer, HTML viewer per spec §6) a stable,
// documented contract independent of the internal struct's field order.
type edgeJSON struct {
	ObjectName     string   `json:"object_name"`
	RowType        string   `json:"row_type"`
	DestTable      string   `json:"dest_table,omitempty"`
	DestField      string   `json:"dest_field,omitempty"`
	SourceType     string   `json:"source_type"`
	SourceTable    string   `json:"source_table,omitempty"`
	SourceField    string   `json:"source_field,omitempty"`
	ConstantValue  string   `json:"constant_value,omitempty"`
	ExpressionText string   `json:"expression_text,omitempty"`
	DMMatch        bool     `json:"dm_match"`
	TracePath      []string `json:"trace_path,omitempty"`
	SourceAlias    string   `json:"source_alias,omitempty"`
	OriginalRef    string   `json:"original_ref,omitempty"`
	JoinSeq        int      `json:"join_seq,omitempty"`
	JoinKind       string   `json:"join_kind,omitempty"`
	JoinRole       string   `json:"join_role,omitempty"`
	JoinSide       string   `json:"join_side,omitempty"`
	Transform      string   `json:"transform,omitempty"`
	Confidence     string   `json:"confidence,omitempty"`
}

// Result is one file's edges, stats, and warnings, keyed for JSON output.
type Result struct {
	ObjectName string                `json:"object_name"`
	Edges      []model.LineageEdge   `json:"-"`
	Stats      map[string]*statsJSON `json:"stats"`
	Warnings   []string              `json:"warnings,omitempty"`
	Error      string                `json:"error,omitempty"`
}

type statsJSON struct {
	MappingRows     int `json:"mapping_rows"`
	JoinRows        int `json:"join_rows"`
	PhysicalCount   int `json:"physical_count"`
	ConstantCount   int `json:"constant_count"`
	UnresolvedCount int `json:"unresolved_count"`
}

// StatsFromMapping converts the Mapping Driver's per-object statistics into
// the JSON-serializable shape this package renders.
func StatsFromMapping(stats map[string]*mapping.Stats) map[string]*statsJSON {
	out := make(map[string]*statsJSON, len(stats))
	for name, st := range stats {
		out[name] = &statsJSON{
			MappingRows: st.MappingRows, JoinRows: st.JoinRows,
			PhysicalCount: st.PhysicalCount, ConstantCount: st.ConstantCount,
			UnresolvedCount: st.UnresolvedCount,
		}
	}
	return out
}

// jsonPayload is the top-level JSON document: a run ID (so a batch of files
// processed together, or a re-run against the same file, can be told apart
// in downstream tooling) plus one entry per resolved file.
type jsonPayload struct {
	RunID   string `json:"run_id"`
	Results []struct {
		Result
		Edges []edgeJSON `json:"edges"`
	} `json:"results"`
}

// WriteJSON encodes results as an indented JSON document tagged with runID.
func WriteJSON(w io.Writer, runID string, results []Result) error {
	payload := jsonPayload{RunID: runID}
	payload.Results = make([]struct {
		Result
		Edges []edgeJSON `json:"edges"`
	}, 0, len(results))

	for _, r := range results {
		edges := make([]edgeJSON, 0, len(r.Edges))
		for _, e := range r.Edges {
			edges = append(edges, toEdgeJSON(e))
		}
		payload.Results = append(payload.Results, struct {
			Result
			Edges []edgeJSON `json:"edges"`
		}{Result: r, Edges: edges})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

func toEdgeJSON(e model.LineageEdge) edgeJSON {
	return edgeJSON{
		ObjectName: e.ObjectName, RowType: string(e.RowType),
		DestTable: e.DestTable, DestField: e.DestField,
		SourceType: string(e.SourceType), SourceTable: e.SourceTable, SourceField: e.SourceField,
		ConstantValue: e.ConstantValue, ExpressionText: e.ExpressionText,
		DMMatch: e.DMMatch, TracePath: e.TracePath,
		SourceAlias: e.SourceAlias, OriginalRef: e.OriginalRef,
		JoinSeq: e.JoinSeq, JoinKind: e.JoinKind,
		JoinRole: string(e.JoinRole), JoinSide: string(e.JoinSide),
		Transform: string(e.Transform), Confidence: string(e.Confidence),
	}
}

// WriteText renders one table per file's edges, plus a warnings block.
func WriteText(w io.Writer, results []Result) {
	for _, r := range results {
		fmt.Fprintf(w, "=== %s ===\n", r.ObjectName)
		if r.Error != "" {
			fmt.Fprintf(w, "  error: %s\n\n", r.Error)
			continue
		}

		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.AppendHeader(table.Row{"ROW", "DEST", "SOURCE", "KIND", "DM", "TRACE"})
		for _, e := range r.Edges {
			dest := e.DestTable + "." + e.DestField
			var source string
			switch e.SourceType {
			case model.SourcePhysical:
				source = e.SourceTable + "." + e.SourceField
			case model.SourceConstant:
				source = e.ConstantValue
			default:
				source = "<unresolved>"
			}
			if e.RowType == model.RowJoin {
				dest = string(e.JoinRole) + "/" + string(e.JoinSide)
			}
			t.AppendRow(table.Row{
				e.RowType, dest, source, e.SourceType,
				dmMark(e.DMMatch), strings.Join(e.TracePath, ">"),
			})
		}
		t.Render()

		if len(r.Warnings) > 0 {
			fmt.Fprintln(w, "warnings:")
			for _, warn := range r.Warnings {
				fmt.Fprintf(w, "  - %s\n", warn)
			}
		}
		fmt.Fprintln(w)
	}
}

func dmMark(matched bool) string {
	if matched {
		return "Y"
	}
	return "N"
}
