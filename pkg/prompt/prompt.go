package prompt

import (
	"strings"

	"github.com/zen-systems/askcmd/pkg/shellctx"
)

// Placeholders substituted for empty context fields.
const (
	NoFiles       = "No files found"
	NoGit         = "No git repository found"
	UnknownSystem = "Unknown system"
)

// Build creates the prompt asking the model for exactly one shell command.
// Context values and the request are interpolated verbatim.
func Build(request string, ctx shellctx.Bundle) string {
	var sb strings.Builder

	sb.WriteString("You are an expert shell command generator. Given the following context:\n\n")

	sb.WriteString("Current directory: ")
	sb.WriteString(ctx.Cwd)
	sb.WriteString("\n")

	sb.WriteString("Files in directory:\n")
	sb.WriteString(orDefault(ctx.Files, NoFiles))
	sb.WriteString("\n")

	sb.WriteString("Git status:\n")
	sb.WriteString(orDefault(ctx.Git, NoGit))
	sb.WriteString("\n")

	sb.WriteString("System: ")
	sb.WriteString(orDefault(ctx.System, UnknownSystem))
	sb.WriteString("\n\n")

	sb.WriteString("The user requests: ")
	sb.WriteString(request)
	sb.WriteString("\n\n")

	sb.WriteString("Provide exactly one shell command that would accomplish this task.\n")
	sb.WriteString("The command should:\n")
	sb.WriteString("- Be valid for the current system context\n")
	sb.WriteString("- Be efficient and safe\n")
	sb.WriteString("- Work on the current operating system\n")
	sb.WriteString("- Include any necessary flags\n\n")

	sb.WriteString("Output ONLY the command itself, without:\n")
	sb.WriteString("- Any explanation\n")
	sb.WriteString("- Additional text\n")
	sb.WriteString("- Code blocks\n")
	sb.WriteString("- Markdown formatting\n\n")

	sb.WriteString("Command:\n")

	return sb.String()
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
