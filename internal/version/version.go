// Package version holds the tool version, overridden at build time via
// -ldflags "-X flowtrace/internal/version.Version=...".
package version

// Version is the current flowtrace version.
var Version = "0.3.0-dev"
