package edgetable

import (
	"context"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// xlsxSource reads one worksheet of an Excel workbook. The first row of the
// sheet is the header.
type xlsxSource struct {
	path  string
	sheet string
	f     *excelize.File
}

func openXLSX(path, sheet string) (*xlsxSource, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, unreadable(path, err)
	}

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			f.Close()
			return nil, unreadable(path, errors.New("workbook has no sheets"))
		}
		sheet = sheets[0]
	}

	return &xlsxSource{path: path, sheet: sheet, f: f}, nil
}

func (s *xlsxSource) Read(ctx context.Context, cols Columns) (*Table, error) {
	location := fmt.Sprintf("%s[%s]", s.path, s.sheet)

	rows, err := s.f.Rows(s.sheet)
	if err != nil {
		return nil, unreadable(location, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Error(); err != nil {
			return nil, unreadable(location, err)
		}
		return nil, unreadable(location, errors.New("empty sheet"))
	}
	header, err := rows.Columns()
	if err != nil {
		return nil, unreadable(location, fmt.Errorf("header: %w", err))
	}

	idx, err := columnIndex(location, header, cols)
	if err != nil {
		return nil, err
	}

	table := &Table{Columns: cols, Rows: make([]Row, 0, 1024)}
	line := 1
	for rows.Next() {
		line++
		record, err := rows.Columns()
		if err != nil {
			return nil, unreadable(location, fmt.Errorf("row %d: %w", line, err))
		}
		// excelize reports blank rows as empty records
		if len(record) == 0 {
			continue
		}
		if line%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		row, err := parseRow(record, idx)
		if err != nil {
			return nil, unreadable(location, fmt.Errorf("row %d: %w", line, err))
		}
		table.Rows = append(table.Rows, row)
	}
	if err := rows.Error(); err != nil {
		return nil, unreadable(location, err)
	}

	return table, nil
}

func (s *xlsxSource) Close() error {
	return s.f.Close()
}
