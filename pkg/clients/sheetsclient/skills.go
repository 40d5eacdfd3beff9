package sheetsclient

import (
	"context"
	"fmt"
	"strings"
)

// ReadTable reads a tab as a header row plus data rows of plain strings.
// An empty tab name reads the first tab. Ragged rows are padded to the header
// width so callers can index columns directly.
func (c *Client) ReadTable(ctx context.Context, spreadsheetID, tab string) ([]string, [][]string, error) {
	if tab == "" {
		titles, err := c.SheetTitles(ctx, spreadsheetID)
		if err != nil {
			return nil, nil, err
		}
		if len(titles) == 0 {
			return nil, nil, fmt.Errorf("spreadsheet has no tabs")
		}
		tab = titles[0]
	}

	values, err := c.GetValues(ctx, spreadsheetID, tab)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read tab %q: %w", tab, err)
	}

	if len(values) == 0 {
		return nil, nil, fmt.Errorf("tab %q is empty", tab)
	}

	header, rows := ToTable(values)
	return header, rows, nil
}

// ToTable converts raw API values to strings
func ToTable(values [][]interface{}) ([]string, [][]string) {
	if len(values) == 0 {
		return nil, nil
	}

	header := make([]string, len(values[0]))
	for i, v := range values[0] {
		header[i] = cellString(v)
	}

	rows := make([][]string, 0, len(values)-1)
	for _, raw := range values[1:] {
		width := len(header)
		if len(raw) > width {
			width = len(raw)
		}
		row := make([]string, width)
		for i, v := range raw {
			row[i] = cellString(v)
		}
		rows = append(rows, row)
	}

	return header, rows
}

func cellString(v interface{}) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(v))
}
