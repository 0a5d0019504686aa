// Package doctor runs preflight checks before an assessment run.
package doctor

import (
	"os/exec"

	"github.com/dbassess/dbassess/internal/sheet"
)

// Status is the outcome of a check.
type Status int

const (
	StatusOK Status = iota
	StatusWarning
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusWarning:
		return "Warning"
	default:
		return "Error"
	}
}

// Category groups checks in the report.
type Category string

const (
	CategoryTemplate Category = "template"
	CategorySource   Category = "source"
	CategoryTooling  Category = "tooling"
)

// CheckContext carries what the checks inspect.
type CheckContext struct {
	Template     string
	Output       string
	Source       string
	OfficeBinary string
	Layout       sheet.Layout

	// LookPath resolves binaries; nil means exec.LookPath.
	LookPath func(file string) (string, error)
}

func (ctx *CheckContext) lookPath(file string) (string, error) {
	if ctx.LookPath != nil {
		return ctx.LookPath(file)
	}
	return exec.LookPath(file)
}

// CheckResult is the outcome of a single check.
type CheckResult struct {
	Name    string
	Status  Status
	Message string
	Details []string
	FixHint string
}

// Check is a single preflight check.
type Check interface {
	Name() string
	Description() string
	Category() Category
	Run(ctx *CheckContext) *CheckResult
}

// BaseCheck implements the descriptive half of Check.
type BaseCheck struct {
	CheckName        string
	CheckDescription string
	CheckCategory    Category
}

func (b *BaseCheck) Name() string        { return b.CheckName }
func (b *BaseCheck) Description() string { return b.CheckDescription }
func (b *BaseCheck) Category() Category  { return b.CheckCategory }

// Report collects check results.
type Report struct {
	Results []*CheckResult
}

// HasErrors reports whether any check failed.
func (r *Report) HasErrors() bool {
	for _, res := range r.Results {
		if res.Status == StatusError {
			return true
		}
	}
	return false
}

// Count returns how many results have status s.
func (r *Report) Count(s Status) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == s {
			n++
		}
	}
	return n
}

// DefaultChecks returns the checks run by `dbassess doctor`.
func DefaultChecks() []Check {
	return []Check{
		NewOfficeCheck(),
		NewTemplateCheck(),
		NewSourceCheck(),
	}
}

// Run executes checks in order.
func Run(ctx *CheckContext, checks ...Check) *Report {
	report := &Report{}
	for _, c := range checks {
		report.Results = append(report.Results, c.Run(ctx))
	}
	return report
}
