// Package version reports the build version of aidscope.
package version

import (
	"runtime/debug"
	"strings"
)

// Version is the current application version. It is a var so it can be set
// at build time:
//
//	go build -ldflags "-X github.com/vanderheijden86/aidscope/pkg/version.Version=v1.2.3"
var Version = "v0.1.0"

// Commit returns the VCS revision recorded in the binary, shortened, or ""
// when the build carries none.
func Commit() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	var rev string
	dirty := false
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if len(rev) > 12 {
		rev = rev[:12]
	}
	if rev != "" && dirty {
		rev += "-dirty"
	}
	return rev
}

// String returns "aidscope v0.1.0 (abc123)".
func String() string {
	var sb strings.Builder
	sb.WriteString("aidscope ")
	sb.WriteString(Version)
	if c := Commit(); c != "" {
		sb.WriteString(" (" + c + ")")
	}
	return sb.String()
}
