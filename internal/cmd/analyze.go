package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pthm/widgetlint/internal/engine"
	"github.com/pthm/widgetlint/internal/llm"
	"github.com/pthm/widgetlint/internal/report"
	"github.com/pthm/widgetlint/internal/reporter"
	"github.com/pthm/widgetlint/internal/rules"
	"github.com/pthm/widgetlint/internal/ui"
	"github.com/spf13/cobra"
)

var (
	modeFlag   string
	deep       bool
	failOn     string
	outputPath string
	watch      bool
)

// watchDebounce collapses the burst of events an editor save produces.
var watchDebounce = 300 * time.Millisecond

var analyzeCmd = &cobra.Command{
	Use:     "analyze <snapshot>",
	Aliases: []string{"lint"},
	Short:   "Analyze a widget-tree snapshot",
	Long: `Run every layout, contrast, accessibility, UX, consistency and
structural rule over a snapshot and report the findings with scores.

Examples:
  widgetlint analyze snapshot.json
  widgetlint analyze --mode dark --profile strict snapshot.yaml
  widgetlint analyze --format json --output report.json snapshot.json
  widgetlint analyze --fail-on high snapshot.json
  widgetlint analyze --watch snapshot.json`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&modeFlag, "mode", "", "Appearance mode override (light, dark)")
	analyzeCmd.Flags().BoolVar(&deep, "deep", false, "Add a model-backed UX review (ANTHROPIC_API_KEY or the claude CLI)")
	analyzeCmd.Flags().StringVar(&failOn, "fail-on", "", "Exit non-zero when a finding is at or above this severity")
	analyzeCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the report to a file instead of stdout")
	analyzeCmd.Flags().BoolVarP(&watch, "watch", "w", false, "Re-analyze whenever the snapshot changes")
	RootCmd.AddCommand(analyzeCmd)
}

// FailOnError reports that findings reached the --fail-on severity.
type FailOnError struct {
	Severity rules.Severity
	Count    int
}

func (e *FailOnError) Error() string {
	return fmt.Sprintf("%d finding(s) at or above %s severity", e.Count, e.Severity)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	u := GetUI()

	threshold, err := parseFailOn()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if watch {
		return watchSnapshot(ctx, u, args[0], threshold)
	}

	rep, err := analyzeOnce(ctx, u, args[0])
	if err != nil {
		return err
	}
	if err := writeReport(u, rep); err != nil {
		return err
	}
	return checkFailOn(rep, threshold)
}

func parseFailOn() (*rules.Severity, error) {
	if failOn == "" {
		return nil, nil
	}
	sev, err := rules.ParseSeverity(failOn)
	if err != nil {
		return nil, fmt.Errorf("--fail-on: %w", err)
	}
	return &sev, nil
}

func analyzeOnce(ctx context.Context, u *ui.UI, path string) (rep *report.Report, err error) {
	progress := u.StartProgress()
	defer func() {
		if progress != nil {
			progress.Done(0, err)
		}
	}()

	// Stage 1: Load configuration
	progress.SetStage(ui.StageLoadConfig)
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	opts := []engine.Option{engine.WithProgress(progress)}
	if deep {
		opts = append(opts, engine.WithReviewer(llm.FromEnv()))
	}
	e, err := engine.New(cfg, opts...)
	if err != nil {
		return nil, err
	}

	// Stage 2: Read snapshot
	progress.SetStage(ui.StageReadSnapshot)
	progress.SetOperation(path)
	doc, tree, err := loadTree(path, modeFlag, cfg)
	if err != nil {
		return nil, err
	}
	mode, err := doc.Mode(modeFlag)
	if err != nil {
		return nil, err
	}
	u.Verbosef("Analyzing %s: %d widgets, %s mode, profile %s", path, tree.NodeCount(), mode, cfg.Name)

	// Stage 3: Run rules
	plan := e.Plan()
	progress.SetStage(ui.StageRunRules)
	progress.SetPlan(plan)
	rep, err = e.Analyze(ctx, engine.Input{
		Tree:         tree,
		TabOrder:     doc.TabOrder,
		Interactions: doc.Interactions,
		Mode:         mode,
	})
	if err != nil {
		return nil, err
	}

	// Stop progress before anything else is written
	progress.Done(len(rep.Diagnostics), nil)
	progress = nil

	// The terminal reporter prints diagnostics inline.
	if u.IsMachine() || outputPath != "" {
		for _, d := range rep.Diagnostics {
			if d.RuleID != "" {
				u.Warnf("rule %s: %s", d.RuleID, d.Message)
			} else {
				u.Warnf("%s", d.Message)
			}
		}
	}
	u.Verbosef("Ran %d rules, %d findings", len(plan), rep.Total())
	return rep, nil
}

func writeReport(u *ui.UI, rep *report.Report) (err error) {
	w, styles := u.Writer, u.Styles
	if outputPath != "" {
		var f *os.File
		f, err = os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("failed to create output: %w", err)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("failed to write output: %w", cerr)
			}
		}()
		w, styles = f, ui.NewStyles(false)
	}

	r, err := reporter.New(format, w, styles)
	if err != nil {
		return err
	}
	if err := r.Report(rep); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	if outputPath != "" {
		u.Verbosef("Report written to %s", outputPath)
	}
	return nil
}

func checkFailOn(rep *report.Report, threshold *rules.Severity) error {
	if threshold == nil {
		return nil
	}
	count := 0
	for _, v := range rep.Violations() {
		if v.Severity >= *threshold {
			count++
		}
	}
	if count > 0 {
		return &FailOnError{Severity: *threshold, Count: count}
	}
	return nil
}

// watchSnapshot analyzes path once, then again after every change until ctx
// is cancelled. The parent directory is watched so editors that replace the
// file on save are still seen.
func watchSnapshot(ctx context.Context, u *ui.UI, path string, threshold *rules.Severity) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch init failed: %w", err)
	}
	defer watcher.Close()

	target, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch failed: %w", err)
	}

	trigger := func() {
		rep, err := analyzeOnce(ctx, u, path)
		if err != nil {
			u.Warnf("%v", err)
			return
		}
		if err := writeReport(u, rep); err != nil {
			u.Warnf("%v", err)
			return
		}
		if err := checkFailOn(rep, threshold); err != nil {
			u.Warnf("%v", err)
		}
	}

	trigger()
	fmt.Fprintln(u.ErrWriter, u.Styles.Subheader.Render(fmt.Sprintf("Watching %s for changes (Ctrl+C to stop)", path)))

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				timer.Reset(watchDebounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			trigger()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			u.Warnf("watch error: %v", err)
		}
	}
}
