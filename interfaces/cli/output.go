package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"braingraph/application/views"
	pkgerrors "braingraph/pkg/errors"
)

// Terminal palette
var (
	brand  = color.New(color.FgHiMagenta, color.Bold)
	subtle = color.New(color.FgHiBlack)
	warn   = color.New(color.FgYellow)
	info   = color.New(color.FgCyan)
	good   = color.New(color.FgGreen)
	bad    = color.New(color.FgRed)
)

func disableColor() {
	color.NoColor = true
}

// printTable writes an aligned table. Rows shorter than headers are padded.
func printTable(w io.Writer, headers []string, rows [][]string) {
	if len(rows) == 0 {
		subtle.Fprintln(w, "  (none)")
		return
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var header, sep strings.Builder
	header.WriteString("  ")
	sep.WriteString("  ")
	for i, h := range headers {
		fmt.Fprintf(&header, "%-*s  ", widths[i], strings.ToUpper(h))
		sep.WriteString(strings.Repeat("─", widths[i]) + "  ")
	}
	subtle.Fprintln(w, strings.TrimRight(header.String(), " "))
	subtle.Fprintln(w, strings.TrimRight(sep.String(), " "))

	for _, row := range rows {
		var line strings.Builder
		line.WriteString("  ")
		for i := range headers {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			fmt.Fprintf(&line, "%-*s  ", widths[i], cell)
		}
		fmt.Fprintln(w, strings.TrimRight(line.String(), " "))
	}
}

// printField writes one "label: value" line
func printField(w io.Writer, label string, value interface{}) {
	fmt.Fprintf(w, "  %s %v\n", subtle.Sprintf("%-12s", label+":"), value)
}

func statusColor(status views.Status) *color.Color {
	switch status {
	case views.StatusReady:
		return good
	case views.StatusError:
		return bad
	default:
		return warn
	}
}

func printError(w io.Writer, err error) {
	var appErr *pkgerrors.AppError
	if errors.As(err, &appErr) {
		fmt.Fprintf(w, "%s %s\n", bad.Sprint("error:"), appErr.Message)
		if appErr.Retryable {
			subtle.Fprintln(w, "  the backend may recover, retry shortly")
		}
		return
	}
	fmt.Fprintf(w, "%s %v\n", bad.Sprint("error:"), err)
}
