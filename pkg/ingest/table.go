package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

var ErrMissingColumn = errors.New("missing column")

var (
	nameHeaderHints = []string{"이름", "성명", "Name"}
	wardHeaderHints = []string{"병동", "부서", "Ward"}
)

// Columns selects the name and ward columns by header text. Empty fields are
// inferred from the header.
type Columns struct {
	Name string
	Ward string
}

// InferColumns picks the first header containing a name hint and the first
// containing a ward hint, falling back to column 0 when nothing matches
func InferColumns(header []string) (nameIdx, wardIdx int) {
	return findHint(header, nameHeaderHints), findHint(header, wardHeaderHints)
}

func findHint(header []string, hints []string) int {
	for i, h := range header {
		for _, hint := range hints {
			if strings.Contains(h, hint) {
				return i
			}
		}
	}
	return 0
}

// Indices resolves the columns against a header row
func (c Columns) Indices(header []string) (nameIdx, wardIdx int, err error) {
	nameIdx, wardIdx = InferColumns(header)

	if c.Name != "" {
		if nameIdx, err = indexOf(header, c.Name); err != nil {
			return 0, 0, err
		}
	}
	if c.Ward != "" {
		if wardIdx, err = indexOf(header, c.Ward); err != nil {
			return 0, 0, err
		}
	}

	if len(header) == 0 {
		return 0, 0, fmt.Errorf("%w: header row is empty", ErrMissingColumn)
	}

	return nameIdx, wardIdx, nil
}

func indexOf(header []string, col string) (int, error) {
	for i, h := range header {
		if strings.TrimSpace(h) == strings.TrimSpace(col) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrMissingColumn, col)
}

// FromTable extracts rows from a header plus data rows
func FromTable(header []string, records [][]string, cols Columns) ([]Row, error) {
	nameIdx, wardIdx, err := cols.Indices(header)
	if err != nil {
		return nil, err
	}

	rows := make([]Row, 0, len(records))
	for i, rec := range records {
		row := Row{Line: i + 2, Name: cell(rec, nameIdx), Ward: cell(rec, wardIdx)}
		if row.Name == "" && row.Ward == "" && isBlank(rec) {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func cell(rec []string, idx int) string {
	if idx < 0 || idx >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[idx])
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// ReadCSV reads a CSV table whose first record is the header
func ReadCSV(r io.Reader, cols Columns) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csv is empty")
	}

	header := records[0]
	// Spreadsheet exports often prefix a UTF-8 BOM
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	return FromTable(header, records[1:], cols)
}

// ReadXLSX reads a workbook sheet whose first row is the header. An empty
// sheet name reads the first sheet.
func ReadXLSX(r io.Reader, sheet string, cols Columns) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	records, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheet)
	}

	return FromTable(records[0], records[1:], cols)
}
