package sheet

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// XLSXEngine opens Office Open XML workbooks in process.
type XLSXEngine struct{}

// Open opens an .xlsx workbook.
func (XLSXEngine) Open(path string) (Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	return &xlsxWorkbook{f: f}, nil
}

// Close is a no-op: the engine holds nothing between documents.
func (XLSXEngine) Close() error { return nil }

type xlsxWorkbook struct {
	f *excelize.File
}

func (w *xlsxWorkbook) Sheet(index int) (Sheet, error) {
	names := w.f.GetSheetList()
	if index < 0 || index >= len(names) {
		return nil, fmt.Errorf("%w: index %d, workbook has %d sheets", ErrNoSheet, index, len(names))
	}
	return &xlsxSheet{f: w.f, name: names[index]}, nil
}

func (w *xlsxWorkbook) SaveAs(path string) error {
	return w.f.SaveAs(path)
}

func (w *xlsxWorkbook) Close() error {
	return w.f.Close()
}

type xlsxSheet struct {
	f    *excelize.File
	name string
}

func cellName(row, col int) (string, error) {
	return excelize.CoordinatesToCellName(col+1, row+1)
}

func (s *xlsxSheet) Cell(row, col int) (Cell, error) {
	ref, err := cellName(row, col)
	if err != nil {
		return Cell{}, err
	}
	typ, err := s.f.GetCellType(s.name, ref)
	if err != nil {
		return Cell{}, err
	}
	raw, err := s.f.GetCellValue(s.name, ref, excelize.Options{RawCellValue: true})
	if err != nil {
		return Cell{}, err
	}
	if raw == "" {
		return Empty(), nil
	}

	switch typ {
	case excelize.CellTypeInlineString, excelize.CellTypeSharedString, excelize.CellTypeFormula:
		return Text(raw), nil
	case excelize.CellTypeBool:
		if raw == "1" || strings.EqualFold(raw, "true") {
			return Number(1), nil
		}
		return Number(0), nil
	case excelize.CellTypeDate:
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return Date(t), nil
		}
		return Date(time.Time{}), nil
	case excelize.CellTypeError:
		return Empty(), nil
	default:
		// Numbers carry no type attribute in most writers.
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return Number(f), nil
		}
		return Text(raw), nil
	}
}

func (s *xlsxSheet) SetNumber(row, col int, v float64) error {
	ref, err := cellName(row, col)
	if err != nil {
		return err
	}
	return s.f.SetCellFloat(s.name, ref, v, -1, 64)
}

func (s *xlsxSheet) SetText(row, col int, v string) error {
	ref, err := cellName(row, col)
	if err != nil {
		return err
	}
	return s.f.SetCellStr(s.name, ref, v)
}

var xlsxExtensions = map[string]bool{
	".xlsx": true,
	".xlsm": true,
	".xltx": true,
	".xltm": true,
}

// IsNative reports whether path can be handled without an office suite.
func IsNative(path string) bool {
	return xlsxExtensions[strings.ToLower(filepath.Ext(path))]
}
