// Package build exposes the version and build metadata of the running
// binary, surfaced by the CLI and the version endpoint.
package build

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	_ "embed"
)

//go:embed VERSION
var rawVersion []byte

// Populated by the linker on release builds. Version falls back to the
// embedded VERSION file for local and container builds.
var (
	Version   = ""
	Commit    = ""
	BuildTime = ""
	GoVersion = runtime.Version()
	Platform  = fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)
	StartTime = time.Now()
)

//nolint:gochecknoinits // resolves the version fallback once at startup.
func init() {
	if Version == "" {
		Version = strings.TrimSpace(string(rawVersion))
	}
}

// Info is the build metadata snapshot served to callers.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	BuildTime string `json:"build_time,omitempty"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
	Uptime    string `json:"uptime"`
}

func GetBuildInfo() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		Platform:  Platform,
		Uptime:    time.Since(StartTime).String(),
	}
}

// String renders the snapshot for terminal output, one field per line.
// Linker-provided fields are omitted when absent.
func (i Info) String() string {
	var sb strings.Builder

	sb.WriteString("Version: " + i.Version + "\n")

	if i.Commit != "" {
		sb.WriteString("Commit: " + i.Commit + "\n")
	}

	if i.BuildTime != "" {
		sb.WriteString("Build Time: " + i.BuildTime + "\n")
	}

	sb.WriteString("Go Version: " + i.GoVersion + "\n")
	sb.WriteString("Platform: " + i.Platform + "\n")
	sb.WriteString("Uptime: " + i.Uptime + "\n")

	return sb.String()
}
