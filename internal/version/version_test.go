package version

import (
	"runtime"
	"strings"
	"testing"
)

func TestVersion(t *testing.T) {
	v := Version()
	if !strings.HasPrefix(v, RawVersion()) {
		t.Errorf("Version() = %q, want prefix %q", v, RawVersion())
	}
	if gl := GitleaksVersion(); gl != "" && !strings.Contains(v, "gitleaks "+gl) {
		t.Errorf("Version() = %q, want gitleaks %s suffix", v, gl)
	}
}

func TestGetInfo(t *testing.T) {
	info := GetInfo()
	if info.Version != RawVersion() {
		t.Errorf("Version = %q, want %q", info.Version, RawVersion())
	}
	if info.Platform.OS != runtime.GOOS || info.Platform.Arch != runtime.GOARCH {
		t.Errorf("Platform = %+v, want %s/%s", info.Platform, runtime.GOOS, runtime.GOARCH)
	}
	if info.GoVersion != runtime.Version() {
		t.Errorf("GoVersion = %q, want %q", info.GoVersion, runtime.Version())
	}
	if len(info.GitCommit) > 12 {
		t.Errorf("GitCommit %q longer than 12 characters", info.GitCommit)
	}
}
