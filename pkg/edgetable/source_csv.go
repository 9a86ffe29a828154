package edgetable

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/exp/mmap"
)

// delimitedSource reads a CSV or TSV file through a read-only memory map.
type delimitedSource struct {
	path  string
	comma rune
	r     *mmap.ReaderAt
}

func openDelimited(path string, comma rune) (*delimitedSource, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, unreadable(path, err)
	}
	if info.IsDir() {
		return nil, unreadable(path, errors.New("is a directory"))
	}

	r, err := mmap.Open(path)
	if err != nil {
		return nil, unreadable(path, err)
	}
	return &delimitedSource{path: path, comma: comma, r: r}, nil
}

// Read parses the whole file. The header row names the columns; every data
// row must have the header's field count.
func (s *delimitedSource) Read(ctx context.Context, cols Columns) (*Table, error) {
	if s.r.Len() == 0 {
		return nil, unreadable(s.path, errors.New("empty file"))
	}

	reader := csv.NewReader(io.NewSectionReader(s.r, 0, int64(s.r.Len())))
	reader.Comma = s.comma
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		return nil, unreadable(s.path, fmt.Errorf("header: %w", err))
	}
	header = append([]string(nil), header...)
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	idx, err := columnIndex(s.path, header, cols)
	if err != nil {
		return nil, err
	}

	table := &Table{Columns: cols, Rows: make([]Row, 0, 1024)}
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, unreadable(s.path, err)
		}
		if line%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		row, err := parseRow(record, idx)
		if err != nil {
			return nil, unreadable(s.path, fmt.Errorf("line %d: %w", line, err))
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

func (s *delimitedSource) Close() error {
	return s.r.Close()
}
