package version

import (
	"fmt"
	"runtime"
)

// These variables are set via ldflags by GoReleaser
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Tool is the name written into report metadata.
const Tool = "widgetlint"

// Info returns formatted version information
func Info() string {
	return fmt.Sprintf("%s %s (%s) built on %s with %s",
		Tool, Version, Commit, Date, runtime.Version())
}

// Short returns just the version string
func Short() string {
	return Version
}
