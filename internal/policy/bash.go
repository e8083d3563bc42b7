// Package policy decides whether a tool invocation may run.
//
// The gate is advisory. It matches raw git write subcommands with
// word-bounded regular expressions and does not parse shell syntax, so an
// obfuscated command can slip through.
package policy

import (
	"regexp"
	"strings"
)

// DenyReason is returned for every blocked git write command.
const DenyReason = "Blocked raw git write command. Use GitButler `but` commands instead."

// BashTool is the tool name whose command argument is gated.
const BashTool = "Bash"

// Verdict is the outcome of evaluating one command.
type Verdict struct {
	Allow  bool
	Reason string
	// Pattern is the git subcommand that matched, for diagnostics.
	Pattern string
}

type gitWritePattern struct {
	subcommand string
	re         *regexp.Regexp
}

// disallowedGitWrites is checked in order; the first match wins.
var disallowedGitWrites = compileGitWrites(
	"add",
	"commit",
	"checkout",
	"switch",
	"merge",
	"rebase",
	"cherry-pick",
	"stash",
	"reset",
)

func compileGitWrites(subcommands ...string) []gitWritePattern {
	patterns := make([]gitWritePattern, 0, len(subcommands))
	for _, sub := range subcommands {
		patterns = append(patterns, gitWritePattern{
			subcommand: sub,
			re:         regexp.MustCompile(`(?i)(^|\s)git\s+` + regexp.QuoteMeta(sub) + `(\s|$)`),
		})
	}
	return patterns
}

// EvaluateBashCommand reports whether command may run. Empty commands and
// commands matching no git write pattern are allowed.
func EvaluateBashCommand(command string) Verdict {
	command = strings.TrimSpace(command)
	if command == "" {
		return Verdict{Allow: true}
	}

	for _, p := range disallowedGitWrites {
		if p.re.MatchString(command) {
			return Verdict{Allow: false, Reason: DenyReason, Pattern: p.subcommand}
		}
	}
	return Verdict{Allow: true}
}

// Subcommands lists the denied git subcommands in evaluation order.
func Subcommands() []string {
	subs := make([]string, len(disallowedGitWrites))
	for i, p := range disallowedGitWrites {
		subs[i] = p.subcommand
	}
	return subs
}
