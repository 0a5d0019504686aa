// Package sheet fills a spreadsheet template with status values by finding
// label cells and writing the matching value into the cell to their right.
package sheet

import (
	"strings"
	"time"
	"unicode"
)

// CellKind tags the content of a Cell.
type CellKind int

const (
	CellEmpty CellKind = iota
	CellText
	CellNumber
	CellDate
)

func (k CellKind) String() string {
	switch k {
	case CellText:
		return "text"
	case CellNumber:
		return "number"
	case CellDate:
		return "date"
	default:
		return "empty"
	}
}

// Cell is the content of one spreadsheet cell.
type Cell struct {
	Kind   CellKind
	Text   string
	Number float64
	Date   time.Time
}

// Empty, Text, Number and Date build the matching Cell variant.
func Empty() Cell           { return Cell{Kind: CellEmpty} }
func Text(s string) Cell    { return Cell{Kind: CellText, Text: s} }
func Number(f float64) Cell { return Cell{Kind: CellNumber, Number: f} }
func Date(t time.Time) Cell { return Cell{Kind: CellDate, Date: t} }

// ParseLabel lower-cases text and drops everything from the first whitespace
// run on, which template authors use for free-text comments.
func ParseLabel(text string) string {
	label := strings.ToLower(text)
	if idx := strings.IndexFunc(label, unicode.IsSpace); idx >= 0 {
		label = label[:idx]
	}
	return label
}

// Column indices, so layouts can say ColD instead of 3.
const (
	ColA = iota
	ColB
	ColC
	ColD
	ColE
	ColF
	ColG
	ColH
	ColI
	ColJ
	ColK
	ColL
	ColM
	ColN
	ColO
	ColP
	ColQ
	ColR
	ColS
	ColT
	ColU
	ColV
	ColW
	ColX
	ColY
	ColZ
)

// Layout describes where the populator looks and writes.
type Layout struct {
	// SheetIndex selects the sheet, 0 is the first one.
	SheetIndex int

	// Rows and Cols bound the scanned region starting at (0, 0).
	Rows int
	Cols int

	// VersionRow and VersionCol locate the server version field.
	VersionRow int
	VersionCol int
}

// DefaultLayout matches the stock assessment template.
func DefaultLayout() Layout {
	return Layout{
		SheetIndex: 0,
		Rows:       80,
		Cols:       80,
		VersionRow: 0,
		VersionCol: ColD,
	}
}
