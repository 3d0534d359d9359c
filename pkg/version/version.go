// Package version provides build-time version information for the oracle
// daemon, overridden at link time via -ldflags.
package version

import "fmt"

var (
	// Version is the daemon's semantic version, set at build time.
	Version = "dev"
	// Commit is the git commit the binary was built from, set at build time.
	Commit = "none"
	// Date is the build timestamp, set at build time.
	Date = "unknown"
)

// String returns the combined version/commit/date string used in --version
// output and the daemon's startup log line.
func String() string {
	return fmt.Sprintf("%s (commit=%s, built=%s)", Version, Commit, Date)
}

// AgentString returns the agent string advertised to the validator over
// the local publisher protocol.
func AgentString() string {
	return "oracled/" + Version
}
