package pipeline

import (
	"fmt"
	"strings"

	"github.com/oracle-t2t/lineage/internal/lineage/mapping"
	"github.com/oracle-t2t/lineage/internal/lineage/model"
	"github.com/oracle-t2t/lineage/internal/lineage/scope"
	"github.com/oracle-t2t/lineage/internal/normalize"
	"github.com/oracle-t2t/lineage/internal/sqlparse"
)

// FileResult is everything a single SQL file's run through the pipeline
// produces: the resolved edges, per-object statistics, and any diagnostic
// warnings from normalization, parsing, or scope building.
type FileResult struct {
	ObjectName string
	Edges      []model.LineageEdge
	Stats      map[string]*mapping.Stats
	Warnings   []string
	ParseError error
}

// ResolveFile runs one SQL file's full pipeline: normalize, parse, build the
// scope tree, then resolve every mapping row targeting this object plus
// every join in the statement. A parse failure skips resolution for this
// file only (spec §7's "Parse errors... the file is skipped").
func ResolveFile(sqlFile SQLFile, rows []mapping.Row, dm *model.DataModel, maxDepth int) FileResult {
	res := FileResult{ObjectName: sqlFile.ObjectName}

	normalized := normalize.Normalize(sqlFile.Text)
	stmt, err := sqlparse.Parse(normalized)
	if err != nil {
		res.ParseError = fmt.Errorf("parsing %s: %w", sqlFile.Path, err)
		return res
	}

	builder := scope.NewBuilder(dm)
	root := builder.Build(stmt)
	res.Warnings = append(res.Warnings, builder.Warnings...)

	objectRows := rowsForObject(rows, sqlFile.ObjectName)
	driver := mapping.NewDriverWithDepth(dm, maxDepth)
	edges, stats := driver.Run(objectRows, root)

	res.Edges = edges
	res.Stats = stats
	for _, st := range stats {
		res.Warnings = append(res.Warnings, st.Warnings...)
	}
	return res
}

func rowsForObject(rows []mapping.Row, objectName string) []mapping.Row {
	out := make([]mapping.Row, 0, len(rows))
	for _, r := range rows {
		if strings.EqualFold(r.ObjectName, objectName) {
			out = append(out, r)
		}
	}
	return out
}
