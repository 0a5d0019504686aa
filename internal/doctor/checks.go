package doctor

import (
	"fmt"
	"os"

	"github.com/dbassess/dbassess/internal/sheet"
	"github.com/dbassess/dbassess/internal/status"
)

// TemplateCheck verifies that the template opens and contains labels inside
// the scanned grid.
type TemplateCheck struct {
	BaseCheck
}

// NewTemplateCheck creates a new template check.
func NewTemplateCheck() *TemplateCheck {
	return &TemplateCheck{
		BaseCheck: BaseCheck{
			CheckName:        "template",
			CheckDescription: "Check the assessment template opens and has label cells",
			CheckCategory:    CategoryTemplate,
		},
	}
}

// Run opens the template and counts its labels.
func (c *TemplateCheck) Run(ctx *CheckContext) *CheckResult {
	if _, err := os.Stat(ctx.Template); err != nil {
		return &CheckResult{
			Name:    c.Name(),
			Status:  StatusError,
			Message: fmt.Sprintf("Template %s not found", ctx.Template),
			FixHint: "Pass --template or set template in dbassess.toml",
		}
	}

	engine, err := sheet.NewEngine(ctx.Template, ctx.Template, ctx.OfficeBinary)
	if err != nil {
		return &CheckResult{Name: c.Name(), Status: StatusError, Message: err.Error()}
	}
	defer engine.Close()

	wb, err := engine.Open(ctx.Template)
	if err != nil {
		return &CheckResult{
			Name:    c.Name(),
			Status:  StatusError,
			Message: fmt.Sprintf("Cannot open %s: %v", ctx.Template, err),
		}
	}
	defer wb.Close()

	s, err := wb.Sheet(ctx.Layout.SheetIndex)
	if err != nil {
		return &CheckResult{Name: c.Name(), Status: StatusError, Message: err.Error()}
	}
	labels, err := sheet.Labels(s, ctx.Layout)
	if err != nil {
		return &CheckResult{Name: c.Name(), Status: StatusError, Message: err.Error()}
	}

	if len(labels) == 0 {
		return &CheckResult{
			Name:    c.Name(),
			Status:  StatusWarning,
			Message: fmt.Sprintf("No label cells in the %dx%d grid", ctx.Layout.Rows, ctx.Layout.Cols),
			FixHint: "Check layout.sheet, layout.rows and layout.cols",
		}
	}
	return &CheckResult{
		Name:    c.Name(),
		Status:  StatusOK,
		Message: fmt.Sprintf("%d label cells found", len(labels)),
	}
}

// OfficeCheck verifies an office suite is available when a non-xlsx
// document is involved.
type OfficeCheck struct {
	BaseCheck
}

// NewOfficeCheck creates a new office suite check.
func NewOfficeCheck() *OfficeCheck {
	return &OfficeCheck{
		BaseCheck: BaseCheck{
			CheckName:        "office-suite",
			CheckDescription: "Check soffice is installed when converting documents",
			CheckCategory:    CategoryTooling,
		},
	}
}

// Run looks up the office binary.
func (c *OfficeCheck) Run(ctx *CheckContext) *CheckResult {
	paths := []string{ctx.Template}
	if ctx.Output != "" {
		paths = append(paths, ctx.Output)
	}
	if !sheet.NeedsOffice(paths...) {
		return &CheckResult{
			Name:    c.Name(),
			Status:  StatusOK,
			Message: "Not needed for xlsx documents",
		}
	}

	bin := ctx.OfficeBinary
	if bin == "" {
		bin = sheet.DefaultOfficeBinary
	}
	path, err := ctx.lookPath(bin)
	if err != nil {
		return &CheckResult{
			Name:    c.Name(),
			Status:  StatusError,
			Message: fmt.Sprintf("%s not found in PATH", bin),
			FixHint: "Install libreoffice (rpm|apt package libreoffice-calc) or use .xlsx documents",
		}
	}
	return &CheckResult{
		Name:    c.Name(),
		Status:  StatusOK,
		Message: fmt.Sprintf("Using %s", path),
	}
}

// SourceCheck verifies the status source can be parsed. It never connects.
type SourceCheck struct {
	BaseCheck
}

// NewSourceCheck creates a new source check.
func NewSourceCheck() *SourceCheck {
	return &SourceCheck{
		BaseCheck: BaseCheck{
			CheckName:        "source",
			CheckDescription: "Check the status source is a valid descriptor or readable dump",
			CheckCategory:    CategorySource,
		},
	}
}

// Run validates ctx.Source.
func (c *SourceCheck) Run(ctx *CheckContext) *CheckResult {
	if ctx.Source == "" {
		return &CheckResult{
			Name:    c.Name(),
			Status:  StatusWarning,
			Message: "No source given",
			FixHint: "Pass --source mysql://user@host or --source dump.txt",
		}
	}

	if status.IsDescriptor(ctx.Source) {
		d, err := status.ParseDescriptor(ctx.Source)
		if err != nil {
			return &CheckResult{Name: c.Name(), Status: StatusError, Message: err.Error()}
		}
		res := &CheckResult{
			Name:    c.Name(),
			Status:  StatusOK,
			Message: fmt.Sprintf("Will query %s", d),
		}
		if !d.HasPassword {
			res.Details = append(res.Details, "password will be prompted")
		}
		return res
	}

	m, err := status.LoadDump(ctx.Source)
	if err != nil {
		return &CheckResult{Name: c.Name(), Status: StatusError, Message: err.Error()}
	}
	if m.Len() == 0 {
		return &CheckResult{
			Name:    c.Name(),
			Status:  StatusWarning,
			Message: fmt.Sprintf("Dump %s has no entries", ctx.Source),
		}
	}
	return &CheckResult{
		Name:    c.Name(),
		Status:  StatusOK,
		Message: fmt.Sprintf("Dump %s has %d entries", ctx.Source, m.Len()),
	}
}
