package edgetable

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"
)

// Format identifies how an edge table is stored.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatTSV      Format = "tsv"
	FormatXLSX     Format = "xlsx"
	FormatPostgres Format = "postgres"
)

// SourceConfig locates an edge table.
type SourceConfig struct {
	// Location is a file path or a postgres:// connection URL.
	Location string `json:"location" yaml:"location" validate:"required"`
	// Format overrides detection from Location.
	Format Format `json:"format,omitempty" yaml:"format,omitempty" validate:"omitempty,oneof=csv tsv xlsx postgres"`
	// Table is the PostgreSQL table (optionally schema-qualified) to read.
	Table string `json:"table,omitempty" yaml:"table,omitempty"`
	// Sheet is the XLSX worksheet; the first sheet when empty.
	Sheet string `json:"sheet,omitempty" yaml:"sheet,omitempty"`
}

// DetectFormat infers the storage format from a location.
func DetectFormat(location string) Format {
	lower := strings.ToLower(location)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return FormatPostgres
	}
	switch filepath.Ext(lower) {
	case ".xlsx", ".xlsm":
		return FormatXLSX
	case ".tsv", ".tab":
		return FormatTSV
	default:
		return FormatCSV
	}
}

// Source reads one edge table.
type Source interface {
	// Read returns the table projected onto cols. A *SchemaError is
	// returned when a named column is absent; any other error means the
	// table could not be read.
	Read(ctx context.Context, cols Columns) (*Table, error)
	// Close releases the underlying file or connection.
	Close() error
}

// Open returns the Source for cfg without reading any rows.
func Open(ctx context.Context, cfg SourceConfig) (Source, error) {
	format := cfg.Format
	if format == "" {
		format = DetectFormat(cfg.Location)
	}

	switch format {
	case FormatCSV:
		return openDelimited(cfg.Location, ',')
	case FormatTSV:
		return openDelimited(cfg.Location, '\t')
	case FormatXLSX:
		return openXLSX(cfg.Location, cfg.Sheet)
	case FormatPostgres:
		return openPostgres(ctx, cfg.Location, cfg.Table)
	default:
		return nil, fmt.Errorf("unsupported edge table format %q", format)
	}
}

// parseRow converts one record into a Row using the header positions in idx.
func parseRow(record []string, idx [4]int) (Row, error) {
	for _, p := range idx {
		if p >= len(record) {
			return Row{}, fmt.Errorf("record has %d fields, need column %d", len(record), p+1)
		}
	}

	node1 := strings.TrimSpace(record[idx[0]])
	node2 := strings.TrimSpace(record[idx[1]])
	if node1 == "" || node2 == "" {
		return Row{}, fmt.Errorf("empty node identifier")
	}

	weight, err := parseNumber(record[idx[2]])
	if err != nil {
		return Row{}, fmt.Errorf("similarity %q: %w", record[idx[2]], err)
	}
	support, err := parseNumber(record[idx[3]])
	if err != nil {
		return Row{}, fmt.Errorf("support %q: %w", record[idx[3]], err)
	}

	return Row{Node1: node1, Node2: node2, Weight: weight, Support: support}, nil
}

func parseNumber(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if err := finite(v); err != nil {
		return 0, err
	}
	return v, nil
}

// finite rejects NaN and infinities, which no weight or support may hold.
func finite(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("non-finite value %v", v)
	}
	return nil
}
