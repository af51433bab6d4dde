package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - selection, warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - commands, endpoints
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - labels
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Styles
// =============================================================================

var (
	// StyleHighlight for tooltip titles and the detail network.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleSelected marks the selected column in the explorer.
	StyleSelected = lipgloss.NewStyle().Foreground(colorYellow).Bold(true)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleLabel    = lipgloss.NewStyle().Foreground(colorGray).Width(12)
	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)
	styleCommand  = lipgloss.NewStyle().Foreground(colorBlue)
	styleMethod   = lipgloss.NewStyle().Foreground(colorGray).Width(7)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

// out receives all user-facing command output.
var out io.Writer = os.Stdout

func writeLine(s string) { fmt.Fprintln(out, s) }

// =============================================================================
// Status Output
// =============================================================================

func printSuccess(format string, args ...any) {
	writeLine(styleIconSuccess.Render(iconSuccess) + " " + fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	writeLine(styleIconError.Render(iconError) + " " + fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	writeLine(styleIconWarning.Render(iconWarning) + " " + styleIconWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	writeLine(styleIconInfo.Render(iconInfo) + " " + fmt.Sprintf(format, args...))
}

// printDetail prints an indented, dim line below a status message.
func printDetail(format string, args ...any) {
	writeLine("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

func printNewline() { writeLine("") }

// printFile reports a written file.
func printFile(path string) {
	writeLine("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// printKeyValue prints a labeled value.
func printKeyValue(key, value string) {
	writeLine(styleLabel.Render(key) + " " + StyleValue.Render(value))
}

// printNextStep suggests a follow-up command.
func printNextStep(description, cmd string) {
	writeLine(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

// =============================================================================
// Domain Output
// =============================================================================

// printStats summarizes a rendered motif view: how many networks it holds,
// how many display columns remain after folding and how many graphlet
// panels were drawn.
func printStats(columns, display, panels int, cached bool) {
	var parts []string
	if columns > 0 {
		parts = append(parts, plural(columns, "network"))
	}
	if display > 0 && display != columns {
		parts = append(parts, fmt.Sprintf("folded to %d columns", display))
	}
	if panels > 0 {
		parts = append(parts, plural(panels, "panel"))
	}
	if cached {
		parts = append(parts, styleCached.Render("cached"))
	} else {
		parts = append(parts, styleComputed.Render("fresh"))
	}
	writeLine("  " + strings.Join(parts, StyleDim.Render(" · ")))
}

// endpoint is one route announced by the serve command.
type endpoint struct {
	method, path, desc string
}

// printEndpoints lists the routes of a server listening on addr.
func printEndpoints(addr string, eps []endpoint) {
	printSuccess("Serving on %s", addr)
	for _, ep := range eps {
		writeLine("  " + styleMethod.Render(ep.method) + styleCommand.Render(ep.path) + "  " + StyleDim.Render(ep.desc))
	}
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
