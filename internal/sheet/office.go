package sheet

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const (
	// DefaultOfficeBinary is looked up in PATH.
	DefaultOfficeBinary = "soffice"

	defaultConvertTimeout = 2 * time.Minute
)

// runFunc runs an external command and returns its combined output.
type runFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRun(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// OfficeEngine handles OpenDocument and legacy formats by converting them
// through a headless office suite. Each conversion runs in its own process
// that exits when done; the session owns a private work directory (and a
// throwaway office profile inside it) that Close removes.
type OfficeEngine struct {
	Binary  string
	Timeout time.Duration

	dir   string
	run   runFunc
	inner XLSXEngine
}

// NewOfficeEngine starts a session. binary defaults to DefaultOfficeBinary.
func NewOfficeEngine(binary string) (*OfficeEngine, error) {
	if binary == "" {
		binary = DefaultOfficeBinary
	}
	dir, err := os.MkdirTemp("", "dbassess-office-")
	if err != nil {
		return nil, fmt.Errorf("creating office work dir: %w", err)
	}
	return &OfficeEngine{
		Binary:  binary,
		Timeout: defaultConvertTimeout,
		dir:     dir,
		run:     execRun,
	}, nil
}

// Open converts path to xlsx when needed and opens the result.
func (e *OfficeEngine) Open(path string) (Workbook, error) {
	src := path
	if !IsNative(path) {
		if _, err := os.Stat(path); err != nil {
			return nil, err
		}
		converted, err := e.convert(path, "xlsx", e.dir)
		if err != nil {
			return nil, err
		}
		src = converted
	}
	wb, err := e.inner.Open(src)
	if err != nil {
		return nil, err
	}
	return &officeWorkbook{xlsxWorkbook: wb.(*xlsxWorkbook), engine: e}, nil
}

// Close removes the work directory.
func (e *OfficeEngine) Close() error {
	if e.dir == "" {
		return nil
	}
	err := os.RemoveAll(e.dir)
	e.dir = ""
	return err
}

// WorkDir returns the session's private directory.
func (e *OfficeEngine) WorkDir() string { return e.dir }

// convert runs the office suite on src and returns the path it wrote. The
// suite names its output <stem>.<format> in outdir, whatever the case of the
// extension the caller asked for.
func (e *OfficeEngine) convert(src, format, outdir string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), e.Timeout)
	defer cancel()

	args := []string{
		"-env:UserInstallation=file://" + filepath.ToSlash(filepath.Join(e.dir, "profile")),
		"--headless", "--norestore", "--nologo", "--nodefault",
		"--convert-to", format,
		"--outdir", outdir,
		src,
	}
	out, err := e.run(ctx, e.Binary, args...)
	if err != nil {
		return "", fmt.Errorf("%s --convert-to %s %s: %w: %s", e.Binary, format, src, err, strings.TrimSpace(string(out)))
	}

	want := filepath.Join(outdir, stem(src)+"."+format)
	if _, err := os.Stat(want); err != nil {
		return "", fmt.Errorf("%s produced no %s: %s", e.Binary, want, strings.TrimSpace(string(out)))
	}
	return want, nil
}

type officeWorkbook struct {
	*xlsxWorkbook
	engine *OfficeEngine
}

// SaveAs writes xlsx directly and converts every other extension.
func (w *officeWorkbook) SaveAs(path string) error {
	if IsNative(path) {
		return w.xlsxWorkbook.SaveAs(path)
	}
	tmp := filepath.Join(w.engine.dir, "out", stem(path)+".xlsx")
	if err := os.MkdirAll(filepath.Dir(tmp), 0o755); err != nil {
		return err
	}
	if err := w.xlsxWorkbook.SaveAs(tmp); err != nil {
		return err
	}
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	written, err := w.engine.convert(tmp, format, filepath.Dir(path))
	if err != nil {
		return err
	}
	if written != path {
		if err := os.Rename(written, path); err != nil {
			return fmt.Errorf("renaming %s to %s: %w", written, path, err)
		}
	}
	return nil
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// NewEngine picks the engine able to read template and write out.
func NewEngine(template, out, officeBinary string) (Engine, error) {
	if !NeedsOffice(template, out) {
		return XLSXEngine{}, nil
	}
	return NewOfficeEngine(officeBinary)
}

// NeedsOffice reports whether any of paths requires an office suite.
func NeedsOffice(paths ...string) bool {
	for _, p := range paths {
		if !IsNative(p) {
			return true
		}
	}
	return false
}
