package sheet

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/dbassess/dbassess/internal/status"
)

// ErrNoSheet is returned when the workbook has no sheet at the requested index.
var ErrNoSheet = errors.New("sheet not found")

// versionKey is the mapping key written into the version field.
const versionKey = "version"

// Engine is a document-processing session. Close must always be called and
// releases whatever the session holds (temp files, child processes).
type Engine interface {
	Open(path string) (Workbook, error)
	Close() error
}

// Workbook is an open spreadsheet document.
type Workbook interface {
	Sheet(index int) (Sheet, error)
	SaveAs(path string) error
	Close() error
}

// Sheet reads and writes cells by 0-based (row, col).
type Sheet interface {
	Cell(row, col int) (Cell, error)
	SetNumber(row, col int, v float64) error
	SetText(row, col int, v string) error
}

// Write records one value written next to a label.
type Write struct {
	Row, Col int
	Label    string
	Numeric  bool
}

// Report summarizes a Fill run.
type Report struct {
	Version  bool
	Writes   []Write
	Warnings []string
}

// Matched returns the distinct labels that were found in the mapping.
func (r *Report) Matched() []string {
	seen := make(map[string]bool)
	var out []string
	for _, w := range r.Writes {
		if !seen[w.Label] {
			seen[w.Label] = true
			out = append(out, w.Label)
		}
	}
	return out
}

// Fill writes mapping values next to the label cells of s.
//
// The region is scanned row-major. Cells that are not text are skipped.
// A label that occurs more than once gets written every time, so when two
// labels share a target cell the later one in scan order wins. Values that do
// not parse as numbers are written as text and reported as warnings. Only
// errors from the sheet itself are returned.
func Fill(s Sheet, m status.Mapping, layout Layout, log *slog.Logger) (*Report, error) {
	if log == nil {
		log = slog.Default()
	}
	report := &Report{}

	if v, ok := m.Lookup(versionKey); ok {
		if err := s.SetText(layout.VersionRow, layout.VersionCol, v.String()); err != nil {
			return report, fmt.Errorf("writing version: %w", err)
		}
		report.Version = true
	}

	for row := 0; row < layout.Rows; row++ {
		for col := 0; col < layout.Cols; col++ {
			cell, err := s.Cell(row, col)
			if err != nil {
				return report, fmt.Errorf("reading cell (%d,%d): %w", row, col, err)
			}
			if cell.Kind != CellText {
				continue
			}

			label := ParseLabel(cell.Text)
			v, ok := m.Lookup(label)
			if !ok {
				continue
			}

			w := Write{Row: row, Col: col + 1, Label: label}
			if f, err := v.Float64(); err == nil {
				err = s.SetNumber(row, col+1, f)
				if err != nil {
					return report, fmt.Errorf("writing %s: %w", label, err)
				}
				w.Numeric = true
			} else {
				if err := s.SetText(row, col+1, v.String()); err != nil {
					return report, fmt.Errorf("writing %s: %w", label, err)
				}
				msg := fmt.Sprintf("%s: %v, written as text", label, err)
				report.Warnings = append(report.Warnings, msg)
				log.Warn("non-numeric value", "label", label, "value", v.String(), "row", row, "col", col+1)
			}
			report.Writes = append(report.Writes, w)
		}
	}

	return report, nil
}

// Populate opens template through engine, fills the selected sheet and saves
// the result under out. The template itself is never modified.
func Populate(engine Engine, template, out string, m status.Mapping, layout Layout, log *slog.Logger) (*Report, error) {
	if log == nil {
		log = slog.Default()
	}

	wb, err := engine.Open(template)
	if err != nil {
		return nil, fmt.Errorf("opening template %s: %w", template, err)
	}
	defer wb.Close()
	log.Info("spreadsheet open", "template", template)

	s, err := wb.Sheet(layout.SheetIndex)
	if err != nil {
		return nil, err
	}

	report, err := Fill(s, m, layout, log)
	if err != nil {
		return report, err
	}
	log.Debug("sheet filled", "writes", len(report.Writes), "warnings", len(report.Warnings))

	log.Info("saving new document", "path", out)
	if err := wb.SaveAs(out); err != nil {
		return report, fmt.Errorf("saving %s: %w", out, err)
	}
	return report, nil
}

// Label is a label cell found in a sheet.
type Label struct {
	Row, Col int
	Name     string
}

// Labels lists every text cell in the layout region with its parsed label.
func Labels(s Sheet, layout Layout) ([]Label, error) {
	var labels []Label
	for row := 0; row < layout.Rows; row++ {
		for col := 0; col < layout.Cols; col++ {
			cell, err := s.Cell(row, col)
			if err != nil {
				return nil, err
			}
			if cell.Kind == CellText {
				labels = append(labels, Label{Row: row, Col: col, Name: ParseLabel(cell.Text)})
			}
		}
	}
	return labels, nil
}
