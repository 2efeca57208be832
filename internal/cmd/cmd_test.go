package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pthm/widgetlint/internal/config"
	"github.com/pthm/widgetlint/internal/rules"
	"github.com/pthm/widgetlint/internal/ui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var formSnapshot = filepath.Join("testdata", "form.json")

// execute runs the root command with fresh flag values and returns stdout
// and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	verbose, format, profile, configPath = false, "terminal", config.DefaultProfile, ""
	modeFlag, deep, failOn, outputPath, watch = "", false, "", "", false
	treeInteractive = false

	var out, errOut bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetErr(&errOut)
	RootCmd.SetArgs(args)
	t.Cleanup(func() {
		RootCmd.SetOut(nil)
		RootCmd.SetErr(nil)
		RootCmd.SetArgs(nil)
	})

	err := RootCmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestAnalyze_Terminal(t *testing.T) {
	out, _, err := execute(t, "analyze", formSnapshot)
	require.NoError(t, err)

	assert.Contains(t, out, "Layout (")
	assert.Contains(t, out, "[overlap_detection]")
	assert.Contains(t, out, "[insufficient_contrast]")
	assert.Contains(t, out, "[missing_label]")
	assert.Contains(t, out, "Overall ")
}

func TestAnalyze_JSON(t *testing.T) {
	out, _, err := execute(t, "lint", "--format", "json", formSnapshot)
	require.NoError(t, err)

	var rep struct {
		Metadata struct {
			AppearanceMode string `json:"appearance_mode"`
			ScoringPolicy  string `json:"scoring_policy"`
		} `json:"metadata"`
		Layout       []rules.Violation `json:"layout_violations"`
		Interactions []json.RawMessage `json:"interaction_results"`
		Summary      struct {
			Interaction float64 `json:"interaction_score"`
		} `json:"summary_score"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, "light", rep.Metadata.AppearanceMode)
	assert.Equal(t, "v2", rep.Metadata.ScoringPolicy)
	assert.NotEmpty(t, rep.Layout)
	assert.Len(t, rep.Interactions, 2)
	assert.Equal(t, 50.0, rep.Summary.Interaction)
}

func TestAnalyze_ModeOverride(t *testing.T) {
	out, _, err := execute(t, "analyze", "-f", "json", "--mode", "dark", formSnapshot)
	require.NoError(t, err)
	assert.Contains(t, out, `"appearance_mode": "dark"`)

	_, _, err = execute(t, "analyze", "--mode", "sepia", formSnapshot)
	assert.Error(t, err)
}

func TestAnalyze_FailOn(t *testing.T) {
	_, _, err := execute(t, "analyze", "--fail-on", "critical", formSnapshot)
	var failErr *FailOnError
	require.True(t, errors.As(err, &failErr), "overlap is critical")
	assert.Equal(t, rules.Critical, failErr.Severity)
	assert.GreaterOrEqual(t, failErr.Count, 1)

	_, _, err = execute(t, "analyze", "--fail-on", "extreme", formSnapshot)
	assert.ErrorContains(t, err, "--fail-on")
}

func TestAnalyze_ConfigOverlay(t *testing.T) {
	out, _, err := execute(t, "analyze", "--config", filepath.Join("testdata", "overlay.yaml"), formSnapshot)
	require.NoError(t, err)
	assert.NotContains(t, out, "[overlap_detection]")
}

func TestAnalyze_Output(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "report.md")
	out, _, err := execute(t, "analyze", "-f", "markdown", "-o", dest, formSnapshot)
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# Widget analysis report"))
}

func TestAnalyze_Errors(t *testing.T) {
	_, _, err := execute(t, "analyze", filepath.Join("testdata", "missing.json"))
	assert.ErrorContains(t, err, "failed to read snapshot")

	_, _, err = execute(t, "analyze", "-f", "pdf", formSnapshot)
	assert.ErrorContains(t, err, "unknown format")

	_, _, err = execute(t, "analyze", "--profile", "lenient", formSnapshot)
	assert.ErrorContains(t, err, "unknown profile")

	_, _, err = execute(t, "analyze")
	assert.Error(t, err)
}

func TestAnalyze_Verbose(t *testing.T) {
	_, errOut, err := execute(t, "analyze", "-v", formSnapshot)
	require.NoError(t, err)
	assert.Contains(t, errOut, "5 widgets, light mode, profile default")
}

func TestTree_Print(t *testing.T) {
	out, _, err := execute(t, "tree", formSnapshot)
	require.NoError(t, err)
	assert.Contains(t, out, "root")
	assert.Contains(t, out, "cancel")

	_, _, err = execute(t, "tree", "--interactive", formSnapshot)
	assert.ErrorContains(t, err, "interactive terminal")
}

func TestRules(t *testing.T) {
	out, _, err := execute(t, "rules")
	require.NoError(t, err)
	assert.Contains(t, out, "overlap_detection")
	assert.Contains(t, out, "llm-ux-review")
	assert.Contains(t, out, "(--deep)")

	out, _, err = execute(t, "rules", "-f", "json", "-c", filepath.Join("testdata", "overlay.yaml"))
	require.NoError(t, err)
	var infos []ruleInfo
	require.NoError(t, json.Unmarshal([]byte(out), &infos))
	for _, info := range infos {
		if info.ID == "overlap_detection" {
			assert.False(t, info.Enabled)
			return
		}
	}
	t.Fatal("overlap_detection not listed")
}

func TestSchemaAndVersion(t *testing.T) {
	out, _, err := execute(t, "schema")
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(out)))

	out, _, err = execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "widgetlint "))
}

// syncBuffer lets the watch loop write while the test reads.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWatchSnapshot(t *testing.T) {
	_, _, _ = execute(t, "version") // reset flags
	format = "json"
	prev := watchDebounce
	watchDebounce = 20 * time.Millisecond
	t.Cleanup(func() { watchDebounce = prev })

	data, err := os.ReadFile(formSnapshot)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "snap.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	var out, errOut syncBuffer
	u := ui.New(&out, &errOut, format, false)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- watchSnapshot(ctx, u, path, nil) }()

	reports := func() int { return strings.Count(out.String(), `"report_id"`) }
	require.Eventually(t, func() bool { return reports() == 1 }, 5*time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool { return strings.Contains(errOut.String(), "Watching") }, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(path, data, 0o644))
	require.Eventually(t, func() bool { return reports() >= 2 }, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}
