package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dbassess/dbassess/internal/doctor"
	"github.com/dbassess/dbassess/internal/style"
)

var (
	doctorSource   string
	doctorOut      string
	doctorTemplate string
)

var doctorCmd = &cobra.Command{
	Use:     "doctor",
	GroupID: GroupMaintenance,
	Short:   "Check template, tooling and source before a run",
	Long: `Run preflight checks for populate without touching the server.

Checks that the template opens and has label cells in the scanned grid,
that soffice is available when .ods documents are involved, and that the
source parses as a connection string or readable dump.

Examples:
  dbassess doctor
  dbassess doctor --source mysql://root@db01 --out db01.ods`,
	RunE: runDoctor,
}

func init() {
	doctorCmd.Flags().StringVar(&doctorSource, "source", "", "Connection string or dump file to validate")
	doctorCmd.Flags().StringVar(&doctorOut, "out", "", "Planned output path")
	doctorCmd.Flags().StringVar(&doctorTemplate, "template", "", "Template spreadsheet (default from config)")
}

func runDoctor(cmd *cobra.Command, args []string) error {
	layout, err := cfg.SheetLayout()
	if err != nil {
		return err
	}
	template := doctorTemplate
	if template == "" {
		template = cfg.Template
	}

	ctx := &doctor.CheckContext{
		Template:     template,
		Output:       doctorOut,
		Source:       doctorSource,
		OfficeBinary: cfg.OfficeBinary,
		Layout:       layout,
	}
	report := doctor.Run(ctx, doctor.DefaultChecks()...)

	out := cmd.OutOrStdout()
	for _, r := range report.Results {
		fmt.Fprintf(out, "%s %-14s %s\n", statusMark(r.Status), r.Name, r.Message)
		for _, d := range r.Details {
			fmt.Fprintf(out, "    %s\n", style.Dim.Render(d))
		}
		if r.Status != doctor.StatusOK && r.FixHint != "" {
			fmt.Fprintf(out, "    %s %s\n", style.Dim.Render("→"), r.FixHint)
		}
	}

	if report.HasErrors() {
		return fmt.Errorf("%d check(s) failed", report.Count(doctor.StatusError))
	}
	return nil
}

func statusMark(s doctor.Status) string {
	switch s {
	case doctor.StatusOK:
		return style.Success.Render("✓")
	case doctor.StatusWarning:
		return style.Warning.Render("⚠")
	default:
		return style.Error.Render("✗")
	}
}
