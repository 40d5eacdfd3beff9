package commands

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jakechorley/ward-rota/pkg/core/model"
	"github.com/jakechorley/ward-rota/pkg/core/recommend"
	"github.com/jakechorley/ward-rota/pkg/core/rotation"
)

// palette holds the ANSI codes used for tables; the zero value prints plain text
type palette struct {
	reset  string
	green  string
	yellow string
	red    string
	dim    string
}

var ansi = palette{
	reset:  "\033[0m",
	green:  "\033[32m",
	yellow: "\033[33m",
	red:    "\033[31m",
	dim:    "\033[2m",
}

// paint pads s to width before wrapping it in color so escape codes don't
// skew column alignment
func (p palette) paint(color, s string, width int) string {
	padded := fmt.Sprintf("%-*s", width, s)
	if color == "" {
		return padded
	}
	return color + padded + p.reset
}

func columnWidth(min int, values ...string) int {
	width := min
	for _, v := range values {
		if l := len([]rune(v)); l > width {
			width = l
		}
	}
	return width + 2
}

// renderSchedule prints the nurse x period matrix. Newly acquired wards are
// green, veteran wards dim.
func renderSchedule(w io.Writer, schedule rotation.Schedule, periodStarts []time.Time, p palette) {
	if len(schedule) == 0 {
		fmt.Fprintln(w, "No schedule entries.")
		return
	}

	periods := schedule.Periods()
	var nurses []string
	cells := make(map[string][]rotation.Entry)
	labels := make([]string, periods)
	wardNames := make([]string, 0, len(schedule))
	for _, e := range schedule {
		if _, ok := cells[e.Nurse]; !ok {
			nurses = append(nurses, e.Nurse)
			cells[e.Nurse] = make([]rotation.Entry, periods)
		}
		cells[e.Nurse][e.PeriodIndex] = e
		labels[e.PeriodIndex] = e.PeriodLabel()
		wardNames = append(wardNames, string(e.Ward))
	}

	nameWidth := columnWidth(10, nurses...)
	colWidth := columnWidth(8, append(wardNames, labels...)...)

	fmt.Fprintf(w, "%-*s", nameWidth, "Week")
	for _, l := range labels {
		fmt.Fprintf(w, "%-*s", colWidth, l)
	}
	fmt.Fprintln(w)

	if len(periodStarts) > 0 {
		fmt.Fprintf(w, "%-*s", nameWidth, "Starts")
		for i := 0; i < periods; i++ {
			start := ""
			if i < len(periodStarts) {
				start = periodStarts[i].Format("Jan 02")
			}
			fmt.Fprintf(w, "%-*s", colWidth, start)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, strings.Repeat("-", nameWidth+colWidth*periods))

	for _, nurse := range nurses {
		fmt.Fprintf(w, "%-*s", nameWidth, nurse)
		for _, e := range cells[nurse] {
			color := p.green
			if e.Status == model.StatusVeteran {
				color = p.dim
			}
			if e.Ward == "" {
				color = ""
			}
			fmt.Fprint(w, p.paint(color, string(e.Ward), colWidth))
		}
		fmt.Fprintln(w)
	}
}

// renderCoverage prints the coverage matrix with per-ward ratios underneath
func renderCoverage(w io.Writer, cov recommend.Coverage, p palette) {
	if len(cov.Rows) == 0 || len(cov.Wards) == 0 {
		fmt.Fprintln(w, "Nothing to cover.")
		return
	}

	nurses := make([]string, len(cov.Rows))
	for i, row := range cov.Rows {
		nurses[i] = row.Nurse
	}
	wardNames := make([]string, len(cov.Wards))
	for i, ward := range cov.Wards {
		wardNames[i] = string(ward)
	}

	nameWidth := columnWidth(10, nurses...)
	colWidth := columnWidth(5, wardNames...)

	fmt.Fprintf(w, "%-*s", nameWidth, "")
	for _, ward := range wardNames {
		fmt.Fprintf(w, "%-*s", colWidth, ward)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("-", nameWidth+colWidth*len(wardNames)))

	for _, row := range cov.Rows {
		fmt.Fprintf(w, "%-*s", nameWidth, row.Nurse)
		for _, cell := range row.Cells {
			switch cell.Tier {
			case model.TierVeteran:
				fmt.Fprint(w, p.paint(p.green, "V", colWidth))
			case model.TierAcquired:
				fmt.Fprint(w, p.paint(p.yellow, "A", colWidth))
			default:
				fmt.Fprint(w, p.paint(p.dim, "-", colWidth))
			}
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, strings.Repeat("-", nameWidth+colWidth*len(wardNames)))
	fmt.Fprintf(w, "%-*s", nameWidth, "Qualified")
	for _, ward := range cov.Wards {
		ratio := cov.WardRatio(ward)
		color := ""
		if ratio == 0 {
			color = p.red
		}
		fmt.Fprint(w, p.paint(color, fmt.Sprintf("%.0f%%", ratio*100), colWidth))
	}
	fmt.Fprintln(w)
}

func renderRecommendations(w io.Writer, ward model.Ward, recs []recommend.Recommendation, p palette) {
	if len(recs) == 0 {
		fmt.Fprintf(w, "No qualified staff for %s.\n", ward)
		return
	}

	fmt.Fprintf(w, "Qualified staff for %s:\n\n", ward)
	for i, r := range recs {
		color := p.yellow
		if r.Tier == model.TierVeteran {
			color = p.green
		}
		fmt.Fprintf(w, "  %2d. %-20s %s %3d  %s\n", i+1, r.Nurse, p.paint(color, string(r.Tier), 9), r.Score, describeEvidence(r.Evidence))
	}
}

func describeEvidence(e recommend.Evidence) string {
	switch e.Source {
	case recommend.SourceSchedule:
		if e.PeriodIndex != nil {
			return fmt.Sprintf("scheduled in period %d", *e.PeriodIndex)
		}
		return "scheduled"
	case recommend.SourceIngested:
		return "imported record"
	case recommend.SourceBaseHistory:
		return "prior history"
	default:
		return e.Source
	}
}
