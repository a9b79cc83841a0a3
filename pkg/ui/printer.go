package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/zen-systems/askcmd/pkg/config"
	"github.com/zen-systems/askcmd/pkg/executor"
	"github.com/zen-systems/askcmd/pkg/safety"
	"github.com/zen-systems/askcmd/pkg/shellctx"
)

// Printer writes human-readable progress and results.
type Printer struct {
	out    io.Writer
	styles Styles
}

// NewPrinter returns a Printer writing to w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{out: w, styles: NewStyles(w)}
}

func (p *Printer) println(s string) {
	fmt.Fprintln(p.out, s)
}

// Status prints a dim progress line.
func (p *Printer) Status(msg string) {
	p.println(p.styles.Dim.Render(msg))
}

// Fallback notes that the fallback adapter replaced the requested one.
func (p *Printer) Fallback(name config.AdapterName) {
	p.println(p.styles.Warning.Render(fmt.Sprintf("Falling back to %s adapter", name)))
}

// Context prints the gathered context bundle.
func (p *Printer) Context(b shellctx.Bundle) {
	p.println(p.styles.Heading.Render("Context:"))
	p.println(p.styles.Label.Render("Current directory: ") + b.Cwd)
	p.println(p.styles.Label.Render("Files:"))
	p.println(orNone(b.Files))
	p.println(p.styles.Label.Render("Git status:"))
	p.println(orNone(b.Git))
	p.println(p.styles.Label.Render("System: ") + b.System)
}

// Prompt prints the assembled prompt.
func (p *Printer) Prompt(prompt string) {
	p.println("")
	p.println(p.styles.Heading.Render("Full Prompt Being Sent:"))
	p.println(prompt)
}

// AdapterInUse names the adapter and model that will answer.
func (p *Printer) AdapterInUse(name, model string) {
	p.println("")
	p.println(p.styles.Dim.Render(fmt.Sprintf("Using %s adapter (%s)...", name, model)))
}

// Suggestion prints the generated command.
func (p *Printer) Suggestion(command string) {
	p.println("")
	p.println(p.styles.Label.Render("AI Suggests:"))
	p.println(p.styles.Command.Render(command))
}

// Warnings lists destructive patterns found in the command.
func (p *Printer) Warnings(findings []safety.Finding) {
	for _, f := range findings {
		p.println(p.styles.Warning.Render(fmt.Sprintf("%s Warning: %s (%s)", markWarning, f.Name, f.Reason)))
	}
}

// Executing announces the command about to run.
func (p *Printer) Executing(command string) {
	p.println(p.styles.Label.Render("Executing: ") + p.styles.Command.Render(command))
}

// Success reports a zero exit status.
func (p *Printer) Success() {
	p.println(p.styles.Success.Render(markSuccess + " Command executed successfully"))
}

// Failure reports a non-zero exit status with the captured stderr.
func (p *Printer) Failure(res *executor.Result) {
	p.println(p.styles.Error.Render(fmt.Sprintf("Error: Command failed with exit code %d", res.ExitCode)))
	p.println(p.styles.Error.Render("Error output:"))
	p.println(res.Stderr)
}

// Aborted reports that the user declined execution.
func (p *Printer) Aborted() {
	p.println(p.styles.Warning.Render("Aborted"))
}

// Error prints a top-level failure.
func (p *Printer) Error(err error) {
	p.println(p.styles.Error.Render("Error: " + err.Error()))
}

// ModelRow is one line of the models table.
type ModelRow struct {
	Adapter  config.AdapterName
	Model    string
	BaseURL  string
	Aliases  []string
	Ready    bool
	Default  bool
	Fallback bool
}

// Models prints the configured adapters as a table.
func (p *Printer) Models(rows []ModelRow) {
	t := table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(false).
		BorderColumn(false).
		Headers("ADAPTER", "MODEL", "BASE URL", "STATUS", "ROLE", "ALIASES").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return p.styles.TableHdr
			}
			return p.styles.Cell
		})

	for _, r := range rows {
		status := "no key"
		if r.Ready {
			status = "ready"
		}
		t.Row(string(r.Adapter), r.Model, orDash(r.BaseURL), status, role(r), orDash(strings.Join(r.Aliases, ",")))
	}
	p.println(t.Render())
}

func role(r ModelRow) string {
	var roles []string
	if r.Default {
		roles = append(roles, "default")
	}
	if r.Fallback {
		roles = append(roles, "fallback")
	}
	if len(roles) == 0 {
		return "-"
	}
	return strings.Join(roles, ",")
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(none)"
	}
	return strings.TrimRight(s, "\n")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
