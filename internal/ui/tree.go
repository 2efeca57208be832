package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pthm/widgetlint/internal/rules"
	"github.com/pthm/widgetlint/internal/widget"
)

// TreeNode is one displayable row in the widget browser: either a widget or
// one finding attached to it.
type TreeNode struct {
	Widget    *widget.Node
	Violation *rules.Violation
	Depth     int
	Expanded  bool
	Children  []*TreeNode
	Parent    *TreeNode
}

// TreeModel is the bubbletea model for browsing a widget tree and the
// findings on each widget.
type TreeModel struct {
	tree       *widget.Tree
	byWidget   map[string][]rules.Violation
	nodes      []*TreeNode // Flattened list of visible rows
	roots      []*TreeNode
	cursor     int
	viewport   viewport.Model
	ready      bool
	width      int
	height     int
	showIssues bool // Toggle findings rows
	showHidden bool // Toggle suppressed and hidden widgets
	keys       treeKeyMap
	styles     treeStyles
}

type treeKeyMap struct {
	Up           key.Binding
	Down         key.Binding
	Left         key.Binding
	Right        key.Binding
	Toggle       key.Binding
	ToggleIssues key.Binding
	ToggleHidden key.Binding
	Quit         key.Binding
}

type treeStyles struct {
	selected  lipgloss.Style
	widget    lipgloss.Style
	container lipgloss.Style
	inactive  lipgloss.Style
	critical  lipgloss.Style
	high      lipgloss.Style
	medium    lipgloss.Style
	low       lipgloss.Style
	tree      lipgloss.Style
	dim       lipgloss.Style
	statusBar lipgloss.Style
	helpBar   lipgloss.Style
}

func defaultTreeKeyMap() treeKeyMap {
	return treeKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "collapse"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "expand"),
		),
		Toggle: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter/space", "toggle"),
		),
		ToggleIssues: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "toggle issues"),
		),
		ToggleHidden: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "toggle suppressed"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func defaultTreeStyles() treeStyles {
	return treeStyles{
		selected:  lipgloss.NewStyle().Background(lipgloss.Color("237")).Bold(true),
		widget:    lipgloss.NewStyle().Foreground(lipgloss.Color("15")),
		container: lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true),
		inactive:  lipgloss.NewStyle().Foreground(lipgloss.Color("242")).Strikethrough(true),
		critical:  lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		high:      lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
		medium:    lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		low:       lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		tree:      lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		dim:       lipgloss.NewStyle().Foreground(lipgloss.Color("242")),
		statusBar: lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Background(lipgloss.Color("236")).Padding(0, 1),
		helpBar:   lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Background(lipgloss.Color("235")).Padding(0, 0),
	}
}

// NewTreeModel creates a browser over tree. Violations are attached to the
// widget they name; findings for unknown widgets are ignored.
func NewTreeModel(tree *widget.Tree, violations []rules.Violation) TreeModel {
	m := TreeModel{
		tree:       tree,
		byWidget:   make(map[string][]rules.Violation),
		showIssues: true,
		keys:       defaultTreeKeyMap(),
		styles:     defaultTreeStyles(),
	}
	for _, v := range violations {
		m.byWidget[v.WidgetID] = append(m.byWidget[v.WidgetID], v)
	}

	m.buildNodes()
	return m
}

func (m *TreeModel) buildNodes() {
	m.roots = nil
	if m.tree != nil && m.tree.Root != nil {
		m.roots = []*TreeNode{m.buildWidgetNode(m.tree.Root, nil, 0)}
	}
	m.updateVisibleNodes()
}

func (m *TreeModel) buildWidgetNode(n *widget.Node, parent *TreeNode, depth int) *TreeNode {
	node := &TreeNode{
		Widget:   n,
		Depth:    depth,
		Expanded: depth < 3,
		Parent:   parent,
	}

	if m.showIssues {
		vs := m.byWidget[n.ID]
		for i := range vs {
			node.Children = append(node.Children, &TreeNode{
				Violation: &vs[i],
				Depth:     depth + 1,
				Parent:    node,
			})
		}
	}

	for _, c := range n.Children {
		if !m.showHidden && !m.tree.Active(c) {
			continue
		}
		node.Children = append(node.Children, m.buildWidgetNode(c, node, depth+1))
	}

	return node
}

func (m *TreeModel) updateVisibleNodes() {
	m.nodes = nil
	for _, node := range m.roots {
		m.collectVisible(node)
	}

	if m.cursor >= len(m.nodes) {
		m.cursor = len(m.nodes) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *TreeModel) collectVisible(node *TreeNode) {
	m.nodes = append(m.nodes, node)

	if node.Expanded {
		for _, child := range node.Children {
			m.collectVisible(child)
		}
	}
}

// Init initializes the model
func (m TreeModel) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m TreeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}

		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.nodes)-1 {
				m.cursor++
			}

		case key.Matches(msg, m.keys.Left):
			if len(m.nodes) > 0 {
				m.nodes[m.cursor].Expanded = false
				m.updateVisibleNodes()
			}

		case key.Matches(msg, m.keys.Right), key.Matches(msg, m.keys.Toggle):
			if len(m.nodes) > 0 {
				m.nodes[m.cursor].Expanded = !m.nodes[m.cursor].Expanded
				m.updateVisibleNodes()
			}

		case key.Matches(msg, m.keys.ToggleIssues):
			m.showIssues = !m.showIssues
			m.buildNodes()

		case key.Matches(msg, m.keys.ToggleHidden):
			m.showHidden = !m.showHidden
			m.buildNodes()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-4)
			m.viewport.YPosition = 2
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 4
		}
	}

	return m, nil
}

// View renders the tree
func (m TreeModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	footerHeight := 4
	treeHeight := m.height - footerHeight
	if treeHeight < 5 {
		treeHeight = 5
	}

	var sb strings.Builder

	lines := strings.Split(strings.TrimSuffix(m.renderTree(), "\n"), "\n")

	// Scroll to keep cursor visible
	startIdx := 0
	if m.cursor >= treeHeight {
		startIdx = m.cursor - treeHeight + 1
	}
	endIdx := min(startIdx+treeHeight, len(lines))

	if startIdx < len(lines) {
		sb.WriteString(strings.Join(lines[startIdx:endIdx], "\n"))
	}
	for i := max(endIdx-startIdx, 0); i < treeHeight; i++ {
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	detail := ""
	if len(m.nodes) > 0 && m.cursor < len(m.nodes) {
		detail = m.DetailLine(m.nodes[m.cursor])
	}
	sb.WriteString(m.styles.statusBar.Width(m.width).Render(detail))
	sb.WriteString("\n")

	help := fmt.Sprintf(" ↑↓ navigate  ←→ collapse/expand  i issues(%s)  s suppressed(%s)  q quit",
		boolToOnOff(m.showIssues),
		boolToOnOff(m.showHidden),
	)
	sb.WriteString(m.styles.helpBar.Width(m.width).Render(help))

	return sb.String()
}

func (m *TreeModel) renderTree() string {
	var sb strings.Builder
	for i, node := range m.nodes {
		sb.WriteString(m.renderNode(node, i == m.cursor))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m *TreeModel) renderNode(node *TreeNode, selected bool) string {
	var sb strings.Builder

	sb.WriteString(m.styles.tree.Render(strings.Repeat("  ", node.Depth)))

	if node.Parent != nil {
		connector := "└─ "
		siblings := node.Parent.Children
		if siblings[len(siblings)-1] != node {
			connector = "├─ "
		}
		sb.WriteString(m.styles.tree.Render(connector))
	}

	if len(node.Children) > 0 {
		if node.Expanded {
			sb.WriteString(m.styles.dim.Render("▼ "))
		} else {
			sb.WriteString(m.styles.dim.Render("▶ "))
		}
	} else {
		sb.WriteString("  ")
	}

	var content string
	if v := node.Violation; v != nil {
		content = m.severityStyle(v.Severity).Render(fmt.Sprintf("%s %s", v.Severity, v.RuleID))
	} else {
		w := node.Widget
		style := m.styles.widget
		switch {
		case !m.tree.Active(w):
			style = m.styles.inactive
		case m.tree.IsContainer(w):
			style = m.styles.container
		}
		content = style.Render(w.ID) + m.styles.dim.Render(" "+w.Type)
		if n := len(m.byWidget[w.ID]); n > 0 && !m.showIssues {
			content += m.styles.dim.Render(fmt.Sprintf(" [%d issues]", n))
		}
	}

	if selected {
		content = m.styles.selected.Render(content)
	}
	sb.WriteString(content)

	return sb.String()
}

func (m *TreeModel) severityStyle(s rules.Severity) lipgloss.Style {
	switch s {
	case rules.Critical:
		return m.styles.critical
	case rules.High:
		return m.styles.high
	case rules.Medium:
		return m.styles.medium
	default:
		return m.styles.low
	}
}

// DetailLine describes the row under the cursor in the status bar.
func (m *TreeModel) DetailLine(node *TreeNode) string {
	if v := node.Violation; v != nil {
		line := fmt.Sprintf(" %s: %s", v.RuleID, v.Description)
		if v.RelatedWidgetID != "" {
			line += "  Related: " + v.RelatedWidgetID
		}
		return line
	}
	w := node.Widget
	line := fmt.Sprintf(" %s  %s  %dx%d at (%d,%d)  Issues: %d",
		w.ID, w.Type, w.Width, w.Height, w.AbsX, w.AbsY, len(m.byWidget[w.ID]))
	if w.LayoutManager != widget.LayoutNone {
		line += "  Layout: " + string(w.LayoutManager)
	}
	if !m.tree.Active(w) {
		line += "  (inactive)"
	}
	return line
}

// Rows returns the currently visible rows, top to bottom.
func (m TreeModel) Rows() []*TreeNode {
	return m.nodes
}

func boolToOnOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
