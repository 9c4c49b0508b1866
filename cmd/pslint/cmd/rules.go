package cmd

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/urfave/cli/v3"

	"github.com/wharflab/pslint/internal/rules"
)

// ruleInfo is the machine-readable form of a rule listing.
type ruleInfo struct {
	Name             string `json:"name"`
	CommonName       string `json:"commonName"`
	Description      string `json:"description"`
	Severity         string `json:"severity"`
	Category         string `json:"category,omitempty"`
	EnabledByDefault bool   `json:"enabledByDefault"`
	DocURL           string `json:"docUrl,omitempty"`
}

func rulesCommand() *cli.Command {
	return &cli.Command{
		Name:  "rules",
		Usage: "List available rules",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output the rule list as JSON",
			},
			&cli.StringFlag{
				Name:  "category",
				Usage: "Only list rules in this category",
			},
		},
		Action: runRules,
	}
}

func runRules(_ context.Context, cmd *cli.Command) error {
	infos := listRules(rules.DefaultRegistry(), cmd.String("category"))
	w := cmd.Root().Writer

	if cmd.Bool("json") {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(infos)
	}

	header := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("RULE", "SEVERITY", "CATEGORY", "DEFAULT", "SUMMARY").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		})
	for _, info := range infos {
		t.Row(info.Name, info.Severity, info.Category, strconv.FormatBool(info.EnabledByDefault), info.CommonName)
	}
	_, err := lipgloss.Fprintln(w, t)
	return err
}

// listRules returns registered rules sorted by name, optionally limited to
// one category.
func listRules(registry *rules.Registry, category string) []ruleInfo {
	var infos []ruleInfo
	for _, r := range registry.All() {
		meta := r.Metadata()
		if category != "" && !strings.EqualFold(meta.Category, category) {
			continue
		}
		infos = append(infos, ruleInfo{
			Name:             meta.Name,
			CommonName:       meta.CommonName,
			Description:      meta.Description,
			Severity:         meta.Severity.String(),
			Category:         meta.Category,
			EnabledByDefault: meta.EnabledByDefault,
			DocURL:           meta.DocURL,
		})
	}
	return infos
}
