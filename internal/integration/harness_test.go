package integration

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"

	"github.com/wharflab/pslint/internal/reporter"
	"github.com/wharflab/pslint/internal/testutil"
)

type lintCase struct {
	name     string
	target   string // Path under testdata (file, directory or glob)
	args     []string
	env      []string
	wantExit int
	snapExt  string // Raw snapshot extension for non-JSON formats ("txt", "md", "sarif")
	check    func(t *testing.T, out reporter.JSONOutput, stderr string)
}

type runResult struct {
	stdout   string
	stderr   string
	exitCode int
}

// runPslint runs the built binary with args and returns its output with
// absolute working-directory paths made relative.
func runPslint(t *testing.T, env []string, args ...string) runResult {
	t.Helper()

	cmd := exec.Command(binaryPath, args...)
	cmd.Env = append(os.Environ(), "GOCOVERDIR="+coverageDir, "NO_COLOR=1")
	cmd.Env = append(cmd.Env, env...)
	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	exitCode := 0
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			t.Fatalf("command failed to start: %v", err)
		}
		exitCode = exitErr.ExitCode()
	}
	return runResult{
		stdout:   normalizeOutput(stdoutBuf.String()),
		stderr:   normalizeOutput(stderrBuf.String()),
		exitCode: exitCode,
	}
}

// normalizeOutput makes output comparable across machines and platforms.
func normalizeOutput(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	if wd, err := os.Getwd(); err == nil {
		s = strings.ReplaceAll(s, filepath.ToSlash(wd)+"/", "")
		s = strings.ReplaceAll(s, wd+string(filepath.Separator), "")
	}
	return s
}

func runLintCase(t *testing.T, tc lintCase) {
	t.Helper()

	args := make([]string, 0, 2+len(tc.args))
	args = append(args, "lint")
	args = append(args, tc.args...)
	args = append(args, filepath.Join("testdata", tc.target))

	res := runPslint(t, tc.env, args...)
	if res.exitCode != tc.wantExit {
		t.Errorf("expected exit code %d, got %d\nstdout: %s\nstderr: %s", tc.wantExit, res.exitCode, res.stdout, res.stderr)
	}

	if tc.snapExt != "" {
		testutil.MatchRawSnapshot(t, tc.snapExt, res.stdout)
		return
	}

	var out reporter.JSONOutput
	if err := json.Unmarshal([]byte(res.stdout), &out); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, res.stdout)
	}
	snaps.WithConfig(snaps.JSON(snaps.JSONConfig{SortKeys: true, Indent: "  "})).
		MatchStandaloneJSON(t, res.stdout)

	if tc.check != nil {
		tc.check(t, out, res.stderr)
	}
}

// ruleCount counts diagnostics from one rule across all files.
func ruleCount(out reporter.JSONOutput, name string) int {
	n := 0
	for _, f := range out.Files {
		for _, d := range f.Diagnostics {
			if d.RuleName == name {
				n++
			}
		}
	}
	return n
}
