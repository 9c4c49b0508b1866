package integration

import (
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"testing"
)

var fixedSummaryRE = regexp.MustCompile(`(?m)^Fixed (\d+) issues? in \d+ files?$`)

type fixCase struct {
	name        string
	input       string // Input script content
	config      string // Optional .pslint.toml content
	args        []string
	want        string // Expected script content after fixing
	wantApplied int    // Expected number of fixes applied
}

func TestFix(t *testing.T) {
	t.Parallel()
	cases := []fixCase{
		{
			name:        "trailing-whitespace",
			input:       "Get-Item .   \r\n$x = 1\t\n",
			want:        "Get-Item .\r\n$x = 1\n",
			wantApplied: 2,
		},
		{
			name:        "fix-rule-filter",
			input:       "Get-Item .   \n",
			args:        []string{"--fix-rule", "PSUseConsistentIndentation"},
			want:        "Get-Item .   \n",
			wantApplied: 0,
		},
		{
			name:  "fix-mode-never",
			input: "Get-Item .   \n",
			config: `[rules.PSAvoidTrailingWhitespace]
fix = "never"
`,
			want:        "Get-Item .   \n",
			wantApplied: 0,
		},
		{
			name:  "fix-mode-explicit-with-rule",
			input: "Get-Item .   \n",
			config: `[rules.PSAvoidTrailingWhitespace]
fix = "explicit"
`,
			args:        []string{"--fix-rule", trailingWhitespace},
			want:        "Get-Item .\n",
			wantApplied: 1,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			dir := t.TempDir()
			script := filepath.Join(dir, "Fix.ps1")
			if err := os.WriteFile(script, []byte(tc.input), 0o644); err != nil {
				t.Fatal(err)
			}
			if tc.config != "" {
				if err := os.WriteFile(filepath.Join(dir, ".pslint.toml"), []byte(tc.config), 0o644); err != nil {
					t.Fatal(err)
				}
			}

			args := append([]string{"lint", "--fix", "--format", "json", "--fail-level", "none"}, tc.args...)
			args = append(args, selectRules(trailingWhitespace)...)
			res := runPslint(t, nil, append(args, script)...)
			if res.exitCode != 0 {
				t.Fatalf("exit code = %d\nstderr: %s", res.exitCode, res.stderr)
			}

			applied := 0
			if m := fixedSummaryRE.FindStringSubmatch(res.stderr); m != nil {
				applied, _ = strconv.Atoi(m[1])
			}
			if applied != tc.wantApplied {
				t.Errorf("applied = %d, want %d\nstderr: %s", applied, tc.wantApplied, res.stderr)
			}

			got, err := os.ReadFile(script)
			if err != nil {
				t.Fatal(err)
			}
			if string(got) != tc.want {
				t.Errorf("content = %q, want %q", got, tc.want)
			}
		})
	}
}
