package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/tav/pkg/schedule"
	"github.com/matzehuels/tav/pkg/suite"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleHighlight for emphasized values.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleNumber for numeric values.
	StyleNumber = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleSuccess for success messages.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)

	// StyleError for failures.
	StyleError = lipgloss.NewStyle().Foreground(colorRed)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

// =============================================================================
// Status Output
// =============================================================================

// printSuccess prints a success message.
func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + msg)
}

// printError prints an error message.
func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconError.Render(iconError) + " " + msg)
}

// printWarning prints a warning message.
func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(msg))
}

// printInfo prints an info/status message.
func printInfo(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + msg)
}

// printDetail prints a detail line (indented).
func printDetail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println("  " + StyleDim.Render(msg))
}

// =============================================================================
// Status Rendering
// =============================================================================

// statusStyle returns the style for a scheduler status.
func statusStyle(s schedule.Status) lipgloss.Style {
	switch s {
	case schedule.StatusSuccess, schedule.StatusDone:
		return StyleSuccess
	case schedule.StatusFailure, schedule.StatusError:
		return StyleError
	case schedule.StatusInstalling, schedule.StatusRunning:
		return StyleHighlight
	default:
		return StyleDim
	}
}

func outcomeStyle(o schedule.Outcome) lipgloss.Style {
	switch o {
	case schedule.Passed:
		return StyleSuccess
	case schedule.Failed, schedule.Errored:
		return StyleError
	default:
		return StyleDim
	}
}

// =============================================================================
// Summary
// =============================================================================

// printSummary prints the per-iteration table and the overall counts.
func printSummary(res *suite.Result) {
	if len(res.Records) > 0 {
		rows := make([][]string, 0, len(res.Records))
		for _, r := range res.Records {
			rows = append(rows, []string{
				r.Folder,
				r.Test,
				r.Packages.String(),
				outcomeStyle(r.Outcome).Render(r.Outcome.String()),
				r.Duration.Round(time.Millisecond).String(),
			})
		}
		t := table.New().
			Border(lipgloss.RoundedBorder()).
			BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
			Headers("Folder", "Test", "Packages", "Outcome", "Time").
			Rows(rows...)
		fmt.Println(t.Render())
	}

	passed, failed, errored := res.Counts()
	parts := []string{
		StyleSuccess.Render(fmt.Sprintf("%d passed", passed)),
	}
	if failed > 0 {
		parts = append(parts, StyleError.Render(fmt.Sprintf("%d failed", failed)))
	}
	if errored > 0 {
		parts = append(parts, StyleError.Render(fmt.Sprintf("%d errored", errored)))
	}
	line := strings.Join(parts, StyleDim.Render(" · ")) +
		StyleDim.Render(fmt.Sprintf(" in %s", res.Duration.Round(time.Millisecond)))

	if res.OK() {
		printSuccess("%s", line)
		return
	}
	printError("%s", line)
	for _, r := range res.Records {
		if r.Outcome == schedule.Passed {
			continue
		}
		printDetail("%s %s %s %s", r.Folder, iconArrow, r.Test, r.Packages)
		if r.Err != "" {
			printDetail("%s", r.Err)
		}
		for _, l := range lastLines(r.Output, 10) {
			printDetail("│ %s", l)
		}
	}
}

func lastLines(s string, n int) []string {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines
}
