// Package version reports which jslice build produced a slice.
package version

import (
	"runtime"
	"runtime/debug"
)

// Set with -ldflags "-X jslice/internal/version.Version=1.0.0 ...". An
// unset Commit falls back to the VCS stamp of the build.
var (
	Version   = "0.4.0"
	Commit    = "unknown"
	BuildDate = "unknown"
)

var readBuildInfo = debug.ReadBuildInfo

// Revision returns the commit jslice was built from, or "unknown".
func Revision() string {
	if Commit != "unknown" && Commit != "" {
		return Commit
	}
	info, ok := readBuildInfo()
	if !ok {
		return "unknown"
	}
	rev, dirty := "", false
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if rev == "" {
		return "unknown"
	}
	if dirty {
		rev += "-dirty"
	}
	return rev
}

// Info is the short form: the version plus a 7-character commit.
func Info() string {
	if rev := Revision(); rev != "unknown" && len(rev) > 7 {
		return Version + " (" + rev[:7] + ")"
	}
	return Version
}

// Full is what `jslice version` prints.
func Full() string {
	return "jslice version " + Version + "\n" +
		"Commit: " + Revision() + "\n" +
		"Built: " + BuildDate + "\n" +
		"Go: " + runtime.Version()
}

// ManifestTag is the generator recorded in jslice.toml.
func ManifestTag() string {
	return "jslice/" + Info()
}
