package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/pthm/widgetlint/internal/engine"
	"github.com/pthm/widgetlint/internal/llm"
	"github.com/pthm/widgetlint/internal/rules"
	"github.com/spf13/cobra"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the rules widgetlint runs",
	Long: `List every registered rule in execution order with its category,
default severity and description. Rules disabled by the active profile
or config file are marked.`,
	Args: cobra.NoArgs,
	RunE: runRules,
}

func init() {
	RootCmd.AddCommand(rulesCmd)
}

type ruleInfo struct {
	ID          string         `json:"id"`
	Category    rules.Category `json:"category"`
	Severity    rules.Severity `json:"severity"`
	Description string         `json:"description"`
	RequiresAI  bool           `json:"requires_ai"`
	Enabled     bool           `json:"enabled"`
}

func runRules(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	e, err := engine.New(cfg, engine.WithReviewer(llm.FromEnv()))
	if err != nil {
		return err
	}

	reg := e.Registry()
	var infos []ruleInfo
	for _, r := range reg.All() {
		rc := r.Config()
		infos = append(infos, ruleInfo{
			ID:          r.Name(),
			Category:    rc.Category,
			Severity:    rc.Severity,
			Description: r.Description(),
			RequiresAI:  rc.RequiresAI,
			Enabled:     reg.Enabled(r.Name()),
		})
	}

	w := cmd.OutOrStdout()
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(infos)
	}

	s := GetUI().Styles
	var category rules.Category
	for _, info := range infos {
		if info.Category != category {
			category = info.Category
			fmt.Fprintln(w)
			fmt.Fprintln(w, s.Header.Render(string(category)))
		}
		line := fmt.Sprintf("  %-32s %-8s %s", info.ID, info.Severity, info.Description)
		switch {
		case !info.Enabled:
			line += s.Subheader.Render(" (disabled)")
		case info.RequiresAI:
			line += s.Subheader.Render(" (--deep)")
		}
		fmt.Fprintln(w, line)
	}
	return nil
}
