// SPDX-License-Identifier: MIT
//
// Package build carries build-time metadata (name, version, commit, build
// time) injected with -ldflags. Development builds without ldflags fall back
// to "dev" placeholders instead of failing, so the engine can always report
// what it is.
package build

type Flags struct {
	Name        string
	Description string
	Time        string
	Commit      string
	Version     string
}

// Populated by -ldflags at compile time, e.g.
//
//	go build -ldflags "-X beatviz/pkg/build.buildVersion=0.3.0"
var (
	buildName    string
	buildTime    string
	buildCommit  string
	buildVersion string
)

var flags = &Flags{
	Name:        "beatviz",
	Description: "Audio-synchronized visual effects engine",
	Time:        "unknown",
	Commit:      "unknown",
	Version:     "dev",
}

// Initialize copies any ldflags-provided values over the development
// defaults. Safe to call more than once.
func Initialize() {
	if buildName != "" {
		flags.Name = buildName
	}
	if buildTime != "" {
		flags.Time = buildTime
	}
	if buildCommit != "" {
		flags.Commit = buildCommit
	}
	if buildVersion != "" {
		flags.Version = buildVersion
	}
}

// Get returns the current build information.
func Get() *Flags {
	return flags
}
