// Package version reports build information for the pslint binary.
package version

import (
	"runtime"
	"runtime/debug"
	"slices"
)

var version = "dev"

// gitleaksModule is the secret scanner PSAvoidHardcodedSecrets links.
const gitleaksModule = "github.com/zricethezav/gitleaks/v8"

// Version returns the current version string with the secret scanner suffix.
func Version() string {
	if gl := GitleaksVersion(); gl != "" {
		return version + " (gitleaks " + gl + ")"
	}
	return version
}

// RawVersion returns the semantic version string without any suffix.
func RawVersion() string {
	return version
}

// GitleaksVersion returns the linked gitleaks version from build info.
func GitleaksVersion() string {
	gl, _ := readBuildInfo()
	return gl
}

// GoVersion returns the Go toolchain version used for the build.
func GoVersion() string {
	return runtime.Version()
}

// readBuildInfo reads debug.ReadBuildInfo once and extracts both
// the gitleaks dependency version and the VCS revision.
func readBuildInfo() (string, string) {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "", ""
	}
	var glVersion, commit string
	if idx := slices.IndexFunc(info.Deps, func(dep *debug.Module) bool {
		return dep.Path == gitleaksModule
	}); idx >= 0 {
		glVersion = info.Deps[idx].Version
	}
	if idx := slices.IndexFunc(info.Settings, func(s debug.BuildSetting) bool {
		return s.Key == "vcs.revision"
	}); idx >= 0 {
		commit = info.Settings[idx].Value
		commit = commit[:min(len(commit), 12)]
	}
	return glVersion, commit
}

// Info holds structured version information for machine-readable output.
type Info struct {
	Version         string   `json:"version"`
	GitleaksVersion string   `json:"gitleaksVersion,omitempty"`
	Platform        Platform `json:"platform"`
	GoVersion       string   `json:"goVersion"`
	GitCommit       string   `json:"gitCommit,omitempty"`
}

// Platform describes the OS and architecture.
type Platform struct {
	OS   string `json:"os"`
	Arch string `json:"arch"`
}

// GetInfo returns structured version information.
func GetInfo() Info {
	glVersion, commit := readBuildInfo()
	return Info{
		Version:         RawVersion(),
		GitleaksVersion: glVersion,
		Platform: Platform{
			OS:   runtime.GOOS,
			Arch: runtime.GOARCH,
		},
		GoVersion: GoVersion(),
		GitCommit: commit,
	}
}
