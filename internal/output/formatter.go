// Package output provides user-facing stdout formatting for the certman CLI.
//
// User-visible messages (colored status lines, tables, JSON) go through
// this package; diagnostic output belongs in the logger package, which
// writes to stderr.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

var (
	successColor = color.New(color.FgGreen)
	errorColor   = color.New(color.FgRed)
	warnColor    = color.New(color.FgYellow)
	infoColor    = color.New(color.FgCyan)
)

// writer is the destination for all output (replaceable for testing).
var writer io.Writer = os.Stdout

// SetWriter sets the output destination. Useful for testing.
func SetWriter(w io.Writer) {
	writer = w
}

// ResetWriter restores the default stdout destination.
func ResetWriter() {
	writer = os.Stdout
}

// JSON outputs data as indented JSON.
func JSON(data interface{}) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// Table outputs data as a formatted table with aligned columns.
func Table(headers []string, rows [][]string) {
	if len(headers) == 0 {
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

	line := make([]string, len(headers))
	for i, h := range headers {
		line[i] = fmt.Sprintf("%-*s", widths[i], h)
	}
	fmt.Fprintln(writer, strings.Join(line, "  "))

	for i, w := range widths {
		line[i] = strings.Repeat("-", w)
	}
	fmt.Fprintln(writer, strings.Join(line, "  "))

	for _, row := range rows {
		for i := range headers {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			line[i] = fmt.Sprintf("%-*s", widths[i], cell)
		}
		fmt.Fprintln(writer, strings.Join(line, "  "))
	}
}

// Success prints a success message.
func Success(format string, args ...interface{}) {
	_, _ = successColor.Fprintf(writer, "✓ "+format+"\n", args...)
}

// Error prints an error message.
func Error(format string, args ...interface{}) {
	_, _ = errorColor.Fprintf(writer, "✗ "+format+"\n", args...)
}

// Warn prints a warning message.
func Warn(format string, args ...interface{}) {
	_, _ = warnColor.Fprintf(writer, "! "+format+"\n", args...)
}

// Info prints an info message.
func Info(format string, args ...interface{}) {
	_, _ = infoColor.Fprintf(writer, "→ "+format+"\n", args...)
}

// Print prints a plain message.
func Print(format string, args ...interface{}) {
	fmt.Fprintf(writer, format+"\n", args...)
}
