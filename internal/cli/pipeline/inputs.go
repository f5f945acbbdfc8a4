package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/oracle-t2t/lineage/internal/lineage/mapping"
	"github.com/oracle-t2t/lineage/internal/lineage/model"
	"gopkg.in/yaml.v3"
)

// dataModelFile is the on-disk shape of the data-model contract (spec §6):
// table-name -> set<column-name>, case-insensitive.
type dataModelFile struct {
	Tables map[string][]string `yaml:"tables"`
}

// LoadDataModel reads a YAML data-model file. An empty path returns a nil
// DataModel, which the resolver treats as "no data model available".
func LoadDataModel(path string) (*model.DataModel, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading data model %s: %w", path, err)
	}
	var dmf dataModelFile
	if err := yaml.Unmarshal(raw, &dmf); err != nil {
		return nil, fmt.Errorf("parsing data model %s: %w", path, err)
	}
	return model.NewDataModel(dmf.Tables), nil
}

// mappingRowFile is one row of the mapping contract (spec §6). Only the
// snake_case keys in the yaml tags below are read; other spellings of the
// same column (Target Table, target_column, dest_field, ...) are not
// recognised and leave the field empty.
type mappingRowFile struct {
	ObjectName        string `yaml:"object_name"`
	DestinationTable  string `yaml:"destination_table"`
	DestinationField  string `yaml:"destination_field"`
	SourceTable       string `yaml:"source_table"`
	SourceField       string `yaml:"source_field"`
	DerivedExpression string `yaml:"derived_expression"`
	Notes             string `yaml:"notes"`
}

type mappingFile struct {
	Rows []mappingRowFile `yaml:"rows"`
}

// LoadMappingRows reads a YAML mapping-contract file and converts each row
// into a mapping.Row the Mapping Driver consumes.
func LoadMappingRows(path string) ([]mapping.Row, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading mapping file %s: %w", path, err)
	}
	var mf mappingFile
	if err := yaml.Unmarshal(raw, &mf); err != nil {
		return nil, fmt.Errorf("parsing mapping file %s: %w", path, err)
	}

	rows := make([]mapping.Row, 0, len(mf.Rows))
	for _, r := range mf.Rows {
		rows = append(rows, mapping.Row{
			ObjectName:   strings.ToUpper(r.ObjectName),
			DestTable:    strings.ToUpper(r.DestinationTable),
			DestField:    strings.ToUpper(r.DestinationField),
			SourceTable:  strings.ToUpper(r.SourceTable),
			SourceColumn: strings.ToUpper(r.SourceField),
			Expression:   r.DerivedExpression,
		})
	}
	return rows, nil
}

// SQLFile pairs a SQL file's object name (its basename without extension,
// upper-cased per spec §6's normalization rule) with its contents.
type SQLFile struct {
	ObjectName string
	Path       string
	Text       string
}

// LoadSQLFiles reads every *.sql file directly under dir.
func LoadSQLFiles(dir string) ([]SQLFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading sql directory %s: %w", dir, err)
	}
	var files []SQLFile
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".sql") {
			continue
		}
		full := filepath.Join(dir, e.Name())
		raw, err := os.ReadFile(full)
		if err != nil {
			return nil, fmt.Errorf("reading sql file %s: %w", full, err)
		}
		name := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		files = append(files, SQLFile{
			ObjectName: strings.ToUpper(name),
			Path:       full,
			Text:       string(raw),
		})
	}
	return files, nil
}
