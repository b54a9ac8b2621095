// SPDX-License-Identifier: MIT
//
// Package build exposes the name, version and commit stamped into the binary
// with linker flags, for example:
//
//	go build -ldflags "-X blockhost/pkg/build.buildName=blockhost \
//	  -X blockhost/pkg/build.buildTime=$(date -u +%FT%TZ) \
//	  -X blockhost/pkg/build.buildCommit=$(git rev-parse --short HEAD) \
//	  -X blockhost/pkg/build.buildVersion=0.1.0"
//
// A binary built without any of the flags is a development build and keeps
// the defaults. Setting only some of them is an error.
package build

import "fmt"

const (
	defaultName        = "blockhost"
	defaultDescription = "Run block-based DSP engines as per-sample modules"
	unknown            = "unknown"
)

type ldFlags struct {
	Name        string
	Description string
	Time        string
	Commit      string
	Version     string
}

// Populated by -ldflags.
var (
	buildName    string
	buildTime    string
	buildCommit  string
	buildVersion string
	buildFlags   = defaultFlags()
)

func defaultFlags() *ldFlags {
	return &ldFlags{
		Name:        defaultName,
		Description: defaultDescription,
		Time:        unknown,
		Commit:      unknown,
		Version:     "dev",
	}
}

// Initialize copies the linker flags into the build information. It must run
// before GetBuildFlags is used.
func Initialize() error {
	if buildName == "" && buildTime == "" && buildCommit == "" && buildVersion == "" {
		return nil
	}

	if buildName == "" {
		return fmt.Errorf("BuildName is required")
	}
	if buildTime == "" {
		return fmt.Errorf("BuildTime is required")
	}
	if buildCommit == "" {
		return fmt.Errorf("BuildCommit is required")
	}
	if buildVersion == "" {
		return fmt.Errorf("BuildVersion is required")
	}

	buildFlags.Name = buildName
	buildFlags.Time = buildTime
	buildFlags.Commit = buildCommit
	buildFlags.Version = buildVersion

	return nil
}

// GetBuildFlags returns the current build information.
func GetBuildFlags() *ldFlags {
	return buildFlags
}

// IsRelease reports whether the binary was built with linker flags.
func (f *ldFlags) IsRelease() bool {
	return f.Commit != unknown
}

// String formats the version line shown by --version.
func (f *ldFlags) String() string {
	if !f.IsRelease() {
		return f.Version + " (development build)"
	}
	return fmt.Sprintf("%s (commit %s, built %s)", f.Version, f.Commit, f.Time)
}
