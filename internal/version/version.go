package version

import "fmt"

// Overridden via ldflags.
var (
	// Version is the semantic version of the build.
	Version = "0.1.0"
	// Commit is the short git SHA, "none" for local builds.
	Commit = "none"
	// BuildTime is the UTC build timestamp.
	BuildTime = "unknown"
)

// Info is the build metadata of one binary.
type Info struct {
	Binary    string
	Version   string
	Commit    string
	BuildTime string
}

// Current returns the metadata of the running binary.
func Current(binary string) Info {
	return Info{
		Binary:    binary,
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
	}
}

// String renders e.g. "alarm-server 0.1.0 (commit abc123, built 2024-01-01T00:00:00Z)".
func (i Info) String() string {
	return fmt.Sprintf("%s %s (commit %s, built %s)", i.Binary, i.Version, i.Commit, i.BuildTime)
}

// Short returns only the semantic version, for log fields.
func Short() string {
	return Version
}
