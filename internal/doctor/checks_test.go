package doctor

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/dbassess/dbassess/internal/sheet"
)

func writeXLSX(t *testing.T, path string, cells map[string]string) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for ref, v := range cells {
		if err := f.SetCellValue("Sheet1", ref, v); err != nil {
			t.Fatal(err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
}

func TestTemplateCheck_Missing(t *testing.T) {
	ctx := &CheckContext{Template: filepath.Join(t.TempDir(), "missing.xlsx"), Layout: sheet.DefaultLayout()}

	result := NewTemplateCheck().Run(ctx)
	if result.Status != StatusError {
		t.Errorf("expected Error for missing template, got %s", result.Status)
	}
	if result.FixHint == "" {
		t.Error("expected a fix hint")
	}
}

func TestTemplateCheck_Labels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "template.xlsx")
	writeXLSX(t, path, map[string]string{"B2": "max_connections", "B3": "uptime seconds since start"})

	ctx := &CheckContext{Template: path, Layout: sheet.DefaultLayout()}
	result := NewTemplateCheck().Run(ctx)
	if result.Status != StatusOK {
		t.Fatalf("expected OK, got %s: %s", result.Status, result.Message)
	}
	if result.Message != "2 label cells found" {
		t.Errorf("unexpected message: %s", result.Message)
	}
}

func TestTemplateCheck_NoLabels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "template.xlsx")
	writeXLSX(t, path, map[string]string{"ZZ200": "far away"})

	ctx := &CheckContext{Template: path, Layout: sheet.DefaultLayout()}
	result := NewTemplateCheck().Run(ctx)
	if result.Status != StatusWarning {
		t.Errorf("expected Warning, got %s: %s", result.Status, result.Message)
	}
}

func TestOfficeCheck(t *testing.T) {
	check := NewOfficeCheck()

	ctx := &CheckContext{Template: "t.xlsx", Output: "o.xlsx"}
	if r := check.Run(ctx); r.Status != StatusOK {
		t.Errorf("xlsx only should not need office, got %s", r.Status)
	}

	ctx = &CheckContext{
		Template: "t.ods",
		LookPath: func(string) (string, error) { return "", errors.New("not found") },
	}
	if r := check.Run(ctx); r.Status != StatusError {
		t.Errorf("expected Error when soffice is missing, got %s", r.Status)
	}

	var looked string
	ctx = &CheckContext{
		Template:     "t.xlsx",
		Output:       "o.ods",
		OfficeBinary: "libreoffice",
		LookPath: func(file string) (string, error) {
			looked = file
			return "/usr/bin/" + file, nil
		},
	}
	r := check.Run(ctx)
	if r.Status != StatusOK || looked != "libreoffice" {
		t.Errorf("expected OK using libreoffice, got %s (looked up %q)", r.Status, looked)
	}
	if !strings.Contains(r.Message, "/usr/bin/libreoffice") {
		t.Errorf("unexpected message: %s", r.Message)
	}
}

func TestSourceCheck(t *testing.T) {
	check := NewSourceCheck()
	dir := t.TempDir()

	dump := filepath.Join(dir, "dump.txt")
	if err := os.WriteFile(dump, []byte("| max_connections | 151 |\n| uptime | 9 |\n"), 0600); err != nil {
		t.Fatal(err)
	}
	empty := filepath.Join(dir, "empty.txt")
	if err := os.WriteFile(empty, nil, 0600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		source string
		want   Status
	}{
		{"", StatusWarning},
		{"mysql://root@db", StatusOK},
		{"mysql://root:pw@db:3307", StatusOK},
		{"oracle://root@db", StatusError},
		{dump, StatusOK},
		{empty, StatusWarning},
		{filepath.Join(dir, "missing.txt"), StatusError},
	}
	for _, tt := range tests {
		r := check.Run(&CheckContext{Source: tt.source})
		if r.Status != tt.want {
			t.Errorf("source %q: expected %s, got %s (%s)", tt.source, tt.want, r.Status, r.Message)
		}
	}

	r := check.Run(&CheckContext{Source: "mysql://root@db"})
	if len(r.Details) != 1 || r.Details[0] != "password will be prompted" {
		t.Errorf("expected prompt detail, got %v", r.Details)
	}
}

func TestRun(t *testing.T) {
	ctx := &CheckContext{
		Template: filepath.Join(t.TempDir(), "missing.xlsx"),
		Source:   "mysql://root:pw@db",
		Layout:   sheet.DefaultLayout(),
	}
	report := Run(ctx, DefaultChecks()...)
	if len(report.Results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(report.Results))
	}
	if !report.HasErrors() {
		t.Error("missing template should be an error")
	}
	if report.Count(StatusOK) != 2 {
		t.Errorf("expected 2 OK results, got %d", report.Count(StatusOK))
	}
}
