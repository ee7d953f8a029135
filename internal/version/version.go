// Package version holds build information set with -ldflags.
package version

// Version is the release version.
var Version = "0.1.0"

// Commit is the source revision, when known.
var Commit = ""

// String returns the version with the commit when one is set.
func String() string {
	if Commit == "" {
		return Version
	}
	return Version + " (" + Commit + ")"
}
