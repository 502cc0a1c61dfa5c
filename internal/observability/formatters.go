// Package observability provides formatted terminal output for upload results.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/resume-upload/internal/files"
	"github.com/jonathan/resume-upload/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// labelWidth aligns field labels inside the parsed resume box
	labelWidth = 10
)

// Printer handles formatted output for the CLI
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(title, boxWidth-4))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %s │\n", pad(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// pad truncates or right-pads s to exactly width runes.
func pad(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n > width {
		runes := []rune(s)
		return string(runes[:width-3]) + "..."
	}
	return s + strings.Repeat(" ", width-n)
}

// PrintSelectedFile echoes the file chosen for upload.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintSelectedFile(file *types.SelectedFile) {
	if file == nil {
		return
	}
	fmt.Fprintf(p.out, "Selected File: %s\n", file.Name)
}

// PrintFileInfo outputs the local preflight summary of a file.
func (p *Printer) PrintFileInfo(info *files.Info) {
	if info == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-*s %s\n", labelWidth, "Name:", info.Name))
	sb.WriteString(fmt.Sprintf("%-*s %s\n", labelWidth, "Type:", info.MimeType))
	sb.WriteString(fmt.Sprintf("%-*s %d bytes\n", labelWidth, "Size:", info.Size))
	if info.IsPDF {
		sb.WriteString(fmt.Sprintf("%-*s %d", labelWidth, "Pages:", info.PageCount))
	} else {
		sb.WriteString(fmt.Sprintf("%-*s %s", labelWidth, "Pages:", "not a PDF"))
	}

	p.printBox("FILE DETAILS", sb.String())
}

// PrintResult outputs whichever variant result holds. Empty prints nothing.
func (p *Printer) PrintResult(result types.UploadResult) {
	switch result.Kind {
	case types.ResultError:
		p.printBox("UPLOAD FAILED", result.Message)
	case types.ResultSuccess:
		if result.Resume == nil {
			p.printBox("UPLOAD RECEIVED", result.Acknowledgement)
			return
		}
		p.PrintExtractedText(result.Resume)
		p.PrintParsedResume(result.Resume)
	}
}

// PrintParsedResume outputs the structured fields of a parsed resume.
func (p *Printer) PrintParsedResume(resume *types.ParsedResume) {
	if resume == nil {
		return
	}

	fields := []struct {
		label string
		value string
	}{
		{"Name:", resume.Name},
		{"Email:", resume.Email},
		{"Phone:", resume.Phone},
		{"GitHub:", resume.GitHub},
		{"LinkedIn:", resume.LinkedIn},
		{"Skills:", resume.SkillsText},
	}

	var sb strings.Builder
	for i, f := range fields {
		sb.WriteString(fmt.Sprintf("%-*s %s", labelWidth, f.label, f.value))
		if i < len(fields)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("PARSED RESUME DATA", sb.String())
}

// PrintExtractedText outputs the raw text under a header. Lines are not truncated.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintExtractedText(resume *types.ParsedResume) {
	if resume == nil || resume.ExtractedText == "" {
		return
	}

	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad("EXTRACTED RAW TEXT", boxWidth-4))
	fmt.Fprintf(p.out, "└%s┘\n", border)
	fmt.Fprintln(p.out, strings.TrimRight(resume.ExtractedText, "\n"))
	fmt.Fprintln(p.out)
}
