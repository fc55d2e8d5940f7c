// Package output provides styled terminal output for the CLI commands.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pterm/pterm"
)

// Mode represents the output mode.
type Mode int

const (
	// ModePlain is the styled text mode.
	ModePlain Mode = iota
	// ModeJSON emits machine-readable output only.
	ModeJSON
	// ModeQuiet suppresses everything but errors.
	ModeQuiet
)

// Printer wraps pterm for styled output. Styled methods are no-ops outside
// plain mode so JSON consumers never see decoration.
type Printer struct {
	mode   Mode
	writer io.Writer
}

// NewPrinter creates a Printer for the given output mode.
func NewPrinter(mode Mode) *Printer {
	return &Printer{mode: mode, writer: os.Stdout}
}

// NewPrinterWithWriter creates a Printer with a custom writer (for testing).
func NewPrinterWithWriter(mode Mode, w io.Writer) *Printer {
	return &Printer{mode: mode, writer: w}
}

func (p *Printer) active() bool {
	return p.mode == ModePlain
}

// Header prints a large styled header.
func (p *Printer) Header(text string) {
	if !p.active() {
		return
	}
	pterm.DefaultHeader.
		WithWriter(p.writer).
		WithBackgroundStyle(pterm.NewStyle(pterm.BgCyan)).
		WithTextStyle(pterm.NewStyle(pterm.FgBlack, pterm.Bold)).
		Println(text)
}

// Info prints an informational message.
func (p *Printer) Info(format string, args ...interface{}) {
	if !p.active() {
		return
	}
	pterm.Info.WithWriter(p.writer).Printfln(format, args...)
}

// Success prints a success message.
func (p *Printer) Success(format string, args ...interface{}) {
	if !p.active() {
		return
	}
	pterm.Success.WithWriter(p.writer).Printfln(format, args...)
}

// Warning prints a warning message.
func (p *Printer) Warning(format string, args ...interface{}) {
	if !p.active() {
		return
	}
	pterm.Warning.WithWriter(p.writer).Printfln(format, args...)
}

// Error prints an error message. Visible in every mode.
func (p *Printer) Error(format string, args ...interface{}) {
	if p.mode == ModeJSON {
		return
	}
	pterm.Error.WithWriter(p.writer).Printfln(format, args...)
}

// Table prints a table with headers and rows.
func (p *Printer) Table(headers []string, rows [][]string) {
	if !p.active() {
		return
	}
	data := pterm.TableData{headers}
	data = append(data, rows...)
	pterm.DefaultTable.
		WithWriter(p.writer).
		WithHasHeader().
		WithData(data).
		Render() //nolint:errcheck
}

// KeyValue prints key-value pairs in a formatted way.
func (p *Printer) KeyValue(pairs [][]string) {
	if !p.active() {
		return
	}
	for _, pair := range pairs {
		if len(pair) == 2 {
			fmt.Fprintf(p.writer, "  %s  %s\n",
				pterm.LightCyan(pair[0]+":"),
				pair[1])
		}
	}
}

// Println prints a plain line.
func (p *Printer) Println(text string) {
	if !p.active() {
		return
	}
	fmt.Fprintln(p.writer, text)
}

// Printf prints a plain formatted line.
func (p *Printer) Printf(format string, args ...interface{}) {
	if !p.active() {
		return
	}
	fmt.Fprintf(p.writer, format, args...)
}

// JSON prints raw machine-readable output, regardless of mode helpers.
func (p *Printer) JSON(data string) {
	if p.mode != ModeJSON {
		return
	}
	fmt.Fprintln(p.writer, data)
}

// StatusIcon returns a colored icon for a pending-reply status.
func StatusIcon(status string) string {
	switch status {
	case "completed":
		return pterm.Green("✔")
	case "open":
		return pterm.Cyan("●")
	case "expired":
		return pterm.Yellow("⊘")
	case "cancelled":
		return pterm.Gray("○")
	default:
		return pterm.Gray("?")
	}
}

// Divider prints a horizontal rule.
func (p *Printer) Divider() {
	if !p.active() {
		return
	}
	fmt.Fprintln(p.writer, pterm.Gray(strings.Repeat("─", 50)))
}
