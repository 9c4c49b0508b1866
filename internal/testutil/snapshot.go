package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/gkampitakis/ciinfo"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// MatchRawSnapshot compares content against a standalone snapshot file,
// writing raw bytes without any formatting transformation.
//
// go-snaps' MatchStandaloneSnapshot passes content through pretty.Sprint
// whose tabwriter expands tab bytes into spaces, which breaks reporter
// output that aligns with tabs. This helper keeps exact bytes.
//
// Follows go-snaps' naming convention for standalone snapshots:
//
//	__snapshots__/<TestName>_1.snap.<ext>
//
// Like go-snaps, a missing snapshot is created outside CI and fails in CI.
// Set UPDATE_SNAPS=true to update existing snapshot files.
func MatchRawSnapshot(tb testing.TB, ext, content string) {
	tb.Helper()

	_, callerFile, _, ok := runtime.Caller(1)
	if !ok {
		tb.Fatal("testutil.MatchRawSnapshot: unable to determine caller")
	}

	name := strings.ReplaceAll(tb.Name(), "/", "_")
	snapFile := filepath.Join(filepath.Dir(callerFile), "__snapshots__", name+"_1.snap."+ext)

	prev, err := os.ReadFile(snapFile)
	missing := os.IsNotExist(err)
	if os.Getenv("UPDATE_SNAPS") == "true" || (missing && !ciinfo.IsCI) {
		writeSnapshot(tb, snapFile, content)
		return
	}
	if err != nil {
		tb.Fatalf("snapshot not found: %s\nRun with UPDATE_SNAPS=true to create", snapFile)
	}
	if string(prev) != content {
		dmp := diffmatchpatch.New()
		diffs := dmp.DiffMain(string(prev), content, true)
		diffs = dmp.DiffCleanupSemanticLossless(diffs)
		patches := dmp.PatchMake(string(prev), diffs)
		tb.Errorf("snapshot mismatch: %s\n%s", snapFile, dmp.PatchToText(patches))
	}
}

func writeSnapshot(tb testing.TB, path, content string) {
	tb.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		tb.Fatalf("mkdir snapshot dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil { //nolint:gosec // test-only snapshot
		tb.Fatalf("write snapshot: %v", err)
	}
}
