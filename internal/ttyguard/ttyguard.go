// Package ttyguard keeps terminal capability queries out of machine-readable
// output. Import it for its side effect before anything touches lipgloss.
//
// Lipgloss and termenv detect the background colour by writing OSC/DSR
// queries to stdout. In a PTY capture those bytes land in front of JSON or
// CSV output. Setting CI=1 early makes termenv skip the query.
package ttyguard

import (
	"os"
	"slices"
	"strings"
)

func init() {
	if os.Getenv("CI") != "" {
		return
	}
	if !suppress(os.Args, os.Getenv("AIDSCOPE_PLAIN") == "1") {
		return
	}
	_ = os.Setenv("CI", "1")
}

// plainCommands never draw the dashboard.
var plainCommands = []string{"paint", "export", "fixtures", "version", "completion", "help"}

func suppress(args []string, envPlain bool) bool {
	if envPlain {
		return true
	}
	for i, arg := range args {
		if i == 0 {
			continue
		}
		switch {
		case arg == "--json", arg == "--csv", arg == "--help", arg == "-h":
			return true
		case strings.HasPrefix(arg, "-"):
			continue
		case slices.Contains(plainCommands, arg):
			return true
		}
	}
	return false
}
