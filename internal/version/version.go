// Package version reports build metadata set with -ldflags "-X".
package version

//nolint:revive // Set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String formats the build as "v1.4.0 (abc1234, 2026-03-01)".
func String() string {
	return Version + " (" + Commit + ", " + Date + ")"
}
