// Package safety flags generated commands that match well-known destructive
// patterns so the user can look twice before confirming.
package safety

import (
	"regexp"
)

// Finding names one destructive pattern matched by a command.
type Finding struct {
	Name   string
	Reason string
}

type pattern struct {
	name   string
	reason string
	re     *regexp.Regexp
}

var patterns = []pattern{
	// File deletion
	{name: "rm -rf", reason: "recursively deletes files without prompting", re: regexp.MustCompile(`\brm\s+(-[a-zA-Z]*[rR][a-zA-Z]*f|-[a-zA-Z]*f[a-zA-Z]*[rR]|--recursive\s+--force|--force\s+--recursive)\b`)},
	{name: "rm -r", reason: "recursively deletes files", re: regexp.MustCompile(`\brm\s+(-[a-zA-Z]*[rR]\b|--recursive\b)`)},
	{name: "find -delete", reason: "deletes every matched file", re: regexp.MustCompile(`\bfind\b.*\s-delete\b`)},

	// Git
	{name: "git reset --hard", reason: "discards uncommitted changes", re: regexp.MustCompile(`\bgit\s+reset\s+--hard\b`)},
	{name: "git clean", reason: "deletes untracked files", re: regexp.MustCompile(`\bgit\s+clean\s+-[a-zA-Z]*[fd]`)},
	{name: "git push --force", reason: "rewrites remote history", re: regexp.MustCompile(`\bgit\s+push\b.*\s(-f|--force)\b`)},

	// Permissions
	{name: "chmod -R", reason: "changes permissions recursively", re: regexp.MustCompile(`\bchmod\s+-[a-zA-Z]*R\b`)},
	{name: "chown -R", reason: "changes ownership recursively", re: regexp.MustCompile(`\bchown\s+-[a-zA-Z]*R\b`)},
	{name: "chmod 777", reason: "makes files world-writable", re: regexp.MustCompile(`\bchmod\s+777\b`)},

	// Disks
	{name: "mkfs", reason: "formats a filesystem", re: regexp.MustCompile(`\bmkfs(\.\w+)?\b`)},
	{name: "dd to device", reason: "overwrites a block device", re: regexp.MustCompile(`\bdd\b.*\bof=/dev/`)},
	{name: "write to device", reason: "overwrites a block device", re: regexp.MustCompile(`>\s*/dev/(sd|hd|nvme|vd|xvd|disk)`)},

	// System
	{name: "shutdown", reason: "powers off or restarts the machine", re: regexp.MustCompile(`\b(shutdown|reboot|halt|poweroff)\b`)},
	{name: "kill -9", reason: "force-kills processes", re: regexp.MustCompile(`\b(kill\s+-9|killall|pkill)\b`)},
	{name: "fork bomb", reason: "exhausts process table", re: regexp.MustCompile(`:\(\)\s*\{\s*:\|:&\s*\};:`)},

	// Remote code
	{name: "pipe to shell", reason: "runs downloaded code", re: regexp.MustCompile(`\b(curl|wget)\b[^|]*\|\s*(sudo\s+)?(ba|z)?sh\b`)},

	// Databases and clusters
	{name: "DROP", reason: "drops a database object", re: regexp.MustCompile(`(?i)\bDROP\s+(TABLE|DATABASE|SCHEMA)\b`)},
	{name: "kubectl delete", reason: "deletes cluster resources", re: regexp.MustCompile(`\bkubectl\s+delete\b`)},
	{name: "docker prune", reason: "removes docker data", re: regexp.MustCompile(`\bdocker\s+(system|volume|image)\s+prune\b`)},
}

// Check returns the destructive patterns matched by command, most specific
// first. A nil result means nothing matched.
func Check(command string) []Finding {
	var findings []Finding
	seen := make(map[string]bool)
	for _, p := range patterns {
		if !p.re.MatchString(command) {
			continue
		}
		// "rm -rf" already covers "rm -r".
		if p.name == "rm -r" && seen["rm -rf"] {
			continue
		}
		seen[p.name] = true
		findings = append(findings, Finding{Name: p.name, Reason: p.reason})
	}
	return findings
}

// IsDestructive reports whether command matches any destructive pattern.
func IsDestructive(command string) bool {
	return len(Check(command)) > 0
}
