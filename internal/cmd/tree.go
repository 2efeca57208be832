package cmd

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pthm/widgetlint/internal/engine"
	"github.com/pthm/widgetlint/internal/ui"
	"github.com/spf13/cobra"
)

var treeInteractive bool

var treeCmd = &cobra.Command{
	Use:   "tree <snapshot>",
	Short: "Show the widget tree of a snapshot",
	Long: `Prints the widget hierarchy of a snapshot. With --interactive the tree
opens in a browser that attaches each finding to the widget it names.

Controls:
  ↑/k, ↓/j    Navigate up/down
  ←/h, →/l    Collapse/expand nodes
  Enter/Space Toggle expand/collapse
  i           Toggle findings
  s           Toggle suppressed and hidden widgets
  q           Quit

Examples:
  widgetlint tree snapshot.json
  widgetlint tree --interactive --mode dark snapshot.json`,
	Args: cobra.ExactArgs(1),
	RunE: runTree,
}

func init() {
	treeCmd.Flags().BoolVarP(&treeInteractive, "interactive", "i", false, "Open the interactive tree browser")
	treeCmd.Flags().StringVar(&modeFlag, "mode", "", "Appearance mode override (light, dark)")
	RootCmd.AddCommand(treeCmd)
}

func runTree(cmd *cobra.Command, args []string) error {
	u := GetUI()

	if treeInteractive && !u.IsInteractive() {
		return errors.New("tree --interactive requires an interactive terminal (TTY)")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	doc, tree, err := loadTree(args[0], modeFlag, cfg)
	if err != nil {
		return err
	}

	if !treeInteractive {
		tree.PrintTree(u.Writer)
		return nil
	}

	spinner := u.StartSimpleSpinner(u.ErrWriter, "Analyzing widget tree...")
	e, err := engine.New(cfg)
	if err != nil {
		spinner.Stop()
		return err
	}
	mode, _ := doc.Mode(modeFlag)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	rep, err := e.Analyze(ctx, engine.Input{
		Tree:         tree,
		TabOrder:     doc.TabOrder,
		Interactions: doc.Interactions,
		Mode:         mode,
	})
	spinner.Stop()
	if err != nil {
		return err
	}

	p := tea.NewProgram(ui.NewTreeModel(tree, rep.Violations()), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running tree browser: %w", err)
	}
	return nil
}
