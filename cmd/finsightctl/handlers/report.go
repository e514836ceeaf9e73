package handlers

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/finsight-ai/finsightctl/internal/gitops"
)

// Colors matching the FinSight console palette.
var (
	reportColorGreen  = lipgloss.Color("#22c55e")
	reportColorRed    = lipgloss.Color("#ef4444")
	reportColorYellow = lipgloss.Color("#eab308")
	reportColorBlue   = lipgloss.Color("#3b82f6")
	reportColorDim    = lipgloss.Color("#6b7280")
	reportColorWhite  = lipgloss.Color("#f9fafb")
)

// Report rendering styles.
var (
	reportTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(reportColorWhite)

	reportSectionStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(reportColorBlue)

	reportDimStyle = lipgloss.NewStyle().
			Foreground(reportColorDim)

	reportGreenStyle = lipgloss.NewStyle().
				Foreground(reportColorGreen)

	reportRedStyle = lipgloss.NewStyle().
			Foreground(reportColorRed)

	reportYellowStyle = lipgloss.NewStyle().
				Foreground(reportColorYellow)
)

// isInteractiveTTY returns true when stdout is attached to a terminal.
func isInteractiveTTY() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// printReport renders the verification report, styled on a terminal and
// plain otherwise.
func printReport(clusterName string, report *gitops.Report) {
	if report == nil {
		return
	}
	if isInteractiveTTY() {
		fmt.Print(renderReport(clusterName, report))
		return
	}
	printReportPlain(report)
}

// renderReport produces the styled verification report.
func renderReport(clusterName string, report *gitops.Report) string {
	var b strings.Builder

	title := "Verification Report"
	if clusterName != "" {
		title += ": " + clusterName
	}

	b.WriteString("\n")
	b.WriteString(reportTitleStyle.Render("  " + title))
	b.WriteString("\n")
	b.WriteString(reportDimStyle.Render("  " + strings.Repeat("═", len(title))))
	b.WriteString("\n\n")

	for _, check := range report.Results {
		b.WriteString(fmt.Sprintf("  %s  %s", checkMark(check.Status), check.Name))
		if check.Status != gitops.CheckPassed && check.Detail != "" {
			b.WriteString(reportDimStyle.Render("  (" + check.Detail + ")"))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(reportSectionStyle.Render("  Summary"))
	b.WriteString("\n")
	b.WriteString(reportDimStyle.Render("  " + strings.Repeat("─", 35)))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("    Passed:   %d\n", report.Passed()))
	b.WriteString(fmt.Sprintf("    Failed:   %d\n", report.Failed()))
	b.WriteString(fmt.Sprintf("    Warnings: %d\n", report.Warnings()))

	b.WriteString("\n")
	if report.Clean() {
		b.WriteString(reportGreenStyle.Render("  All verification checks passed."))
	} else {
		b.WriteString(reportRedStyle.Render("  Some checks did not pass. Findings are advisory; nothing was changed."))
	}
	b.WriteString("\n")

	return b.String()
}

// checkMark returns the styled indicator for one check result.
func checkMark(status gitops.CheckStatus) string {
	switch status {
	case gitops.CheckPassed:
		return reportGreenStyle.Render("✓")
	case gitops.CheckFailed:
		return reportRedStyle.Render("✗")
	default:
		return reportYellowStyle.Render("!")
	}
}

// printReportPlain prints the report without styling, for pipes and logs.
func printReportPlain(report *gitops.Report) {
	fmt.Println()
	for _, check := range report.Results {
		if check.Status == gitops.CheckPassed || check.Detail == "" {
			fmt.Printf("  [%s] %s\n", check.Status, check.Name)
			continue
		}
		fmt.Printf("  [%s] %s: %s\n", check.Status, check.Name, check.Detail)
	}
	fmt.Printf("\n  %d passed, %d failed, %d warnings\n",
		report.Passed(), report.Failed(), report.Warnings())
}
