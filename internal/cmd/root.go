package cmd

import (
	"fmt"

	"github.com/pthm/widgetlint/internal/config"
	"github.com/pthm/widgetlint/internal/snapshot"
	"github.com/pthm/widgetlint/internal/ui"
	"github.com/pthm/widgetlint/internal/widget"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose    bool
	format     string
	profile    string
	configPath string
)

// RootCmd is the widgetlint command tree.
var RootCmd = &cobra.Command{
	Use:   "widgetlint",
	Short: "Layout, contrast and accessibility analysis for GUI widget trees",
	Long: `widgetlint analyzes a snapshot of a desktop GUI's widget tree and
reports layout defects, WCAG contrast failures, accessibility gaps,
usability problems and visual inconsistencies, with per-category scores.

Snapshots are JSON or YAML documents written by a toolkit extractor.
Run "widgetlint schema" for the accepted format.`,
	SilenceUsage: true,
}

func init() {
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	RootCmd.PersistentFlags().StringVarP(&format, "format", "f", "terminal", "Output format (terminal, json, markdown, html)")
	RootCmd.PersistentFlags().StringVarP(&profile, "profile", "p", config.DefaultProfile, "Built-in threshold profile")
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML file overlaid on the profile")
}

// GetUI returns a UI bound to the root command's output streams.
func GetUI() *ui.UI {
	return ui.New(RootCmd.OutOrStdout(), RootCmd.ErrOrStderr(), format, verbose)
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromFile(configPath, profile)
	}
	return config.Load(profile)
}

// loadTree reads a snapshot and builds its widget tree for the given mode
// override ("" keeps the snapshot's own mode).
func loadTree(path, modeFlag string, cfg *config.Config) (*snapshot.Document, *widget.Tree, error) {
	doc, err := snapshot.Load(path)
	if err != nil {
		return nil, nil, err
	}
	mode, err := doc.Mode(modeFlag)
	if err != nil {
		return nil, nil, err
	}
	tree, err := widget.NewTree(doc.Resolve(mode), widget.Options{
		ContainerTypes: cfg.Structure.ContainerTypes,
		MaxDepth:       cfg.Structure.MaxTreeDepth,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("invalid widget tree: %w", err)
	}
	return doc, tree, nil
}
