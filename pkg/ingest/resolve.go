// Package ingest turns tabular skill records (CSV, XLSX or Google Sheets)
// into (nurse, ward) pairs for the skill accumulator.
package ingest

import (
	"strings"

	"github.com/jakechorley/ward-rota/pkg/core/model"
	"github.com/jakechorley/ward-rota/pkg/core/skills"
)

// Row is one record of a source table. Line is 1-based and counts the header.
type Row struct {
	Line int    `json:"line,omitempty"`
	Name string `json:"name" validate:"required"`
	Ward string `json:"ward" validate:"required"`
}

// Unmatched reasons
const (
	ReasonBlank   = "blank name or ward"
	ReasonNoMatch = "no roster nurse matches"
)

// UnmatchedRow is a row that produced no pair
type UnmatchedRow struct {
	Row    Row    `json:"row"`
	Reason string `json:"reason"`
}

// Result of resolving rows against a roster
type Result struct {
	Matched   int            `json:"matched"`
	Pairs     []skills.Pair  `json:"pairs"`
	Unmatched []UnmatchedRow `json:"unmatched"`
}

// Resolve matches each row's name cell against the roster. The first roster
// name (in roster order) contained in the cell wins, so "Kim RN" resolves to
// "Kim". Zero matches is not an error.
func Resolve(roster []string, rows []Row) Result {
	res := Result{Pairs: []skills.Pair{}, Unmatched: []UnmatchedRow{}}

	for _, row := range rows {
		name := strings.TrimSpace(row.Name)
		ward := strings.TrimSpace(row.Ward)
		if name == "" || ward == "" {
			res.Unmatched = append(res.Unmatched, UnmatchedRow{Row: row, Reason: ReasonBlank})
			continue
		}

		nurse, ok := matchNurse(roster, name)
		if !ok {
			res.Unmatched = append(res.Unmatched, UnmatchedRow{Row: row, Reason: ReasonNoMatch})
			continue
		}

		res.Pairs = append(res.Pairs, skills.Pair{Nurse: nurse, Ward: model.Ward(ward)})
		res.Matched++
	}

	return res
}

func matchNurse(roster []string, fragment string) (string, bool) {
	for _, nurse := range roster {
		// An empty name would match every fragment
		if nurse == "" {
			continue
		}
		if strings.Contains(fragment, nurse) {
			return nurse, true
		}
	}
	return "", false
}

// Recorder is the accumulator write surface for imported records
type Recorder interface {
	RecordIngested(pairs []skills.Pair) error
}

// Apply records every resolved pair as ingested in one batch: all of them
// or none
func Apply(recorder Recorder, res Result) error {
	if len(res.Pairs) == 0 {
		return nil
	}
	return recorder.RecordIngested(res.Pairs)
}
