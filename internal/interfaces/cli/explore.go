package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/ctree-dev/ctree/internal/application/services"
	"github.com/ctree-dev/ctree/internal/core/tree"
)

// NewExploreCommand creates the explore command
func NewExploreCommand(container *CLIContainer) *cobra.Command {
	return &cobra.Command{
		Use:   "explore",
		Short: "Browse a loaded configuration tree interactively",
		Long: `Load the configuration tree and open a terminal browser over its branches.

Keys:
  up/k, down/j          move the cursor
  enter/right/l         open the selected branch
  backspace/left/h      go back to the parent branch
  q, ctrl+c             quit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := prepare(cmd, container)
			if err != nil {
				return err
			}

			t, err := container.TreeService.Load(cmd.Context(), services.LoadRequest{Path: opts.Path, Env: opts.Env})
			if err != nil {
				return err
			}

			program := tea.NewProgram(newExploreModel(t), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			if _, err := program.Run(); err != nil {
				return fmt.Errorf("explorer failed: %w", err)
			}
			return nil
		},
	}
}

// level is a mapping that can list its direct children
type level interface {
	tree.Mapping
	RareKeys() []string
}

// exploreEntry is one row of the current branch
type exploreEntry struct {
	Key    string
	Branch bool
	Value  any
}

// exploreModel holds the state for the Bubble Tea explorer
type exploreModel struct {
	root    *tree.Tree
	path    []string
	cursors []int
	cursor  int
	entries []exploreEntry
	height  int
}

func newExploreModel(t *tree.Tree) exploreModel {
	m := exploreModel{root: t}
	m.entries = m.load()
	return m
}

// current returns the mapping the explorer is looking at
func (m exploreModel) current() level {
	if len(m.path) == 0 {
		return m.root
	}
	return m.root.Branch(strings.Join(m.path, m.root.Separator()))
}

func (m exploreModel) load() []exploreEntry {
	cur := m.current()
	keys := cur.RareKeys()
	entries := make([]exploreEntry, 0, len(keys))
	for _, k := range keys {
		v, err := cur.Get(k)
		if err != nil {
			continue
		}
		_, branch := v.(*tree.BranchProxy)
		entries = append(entries, exploreEntry{Key: k, Branch: branch, Value: v})
	}
	return entries
}

// Init implements the Bubble Tea init method
func (m exploreModel) Init() tea.Cmd {
	return nil
}

// Update implements the Bubble Tea update method
func (m exploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit

		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}

		case "down", "j":
			if m.cursor < len(m.entries)-1 {
				m.cursor++
			}

		case "enter", "right", "l":
			if m.cursor < len(m.entries) && m.entries[m.cursor].Branch {
				m.path = append(m.path[:len(m.path):len(m.path)], m.entries[m.cursor].Key)
				m.cursors = append(m.cursors[:len(m.cursors):len(m.cursors)], m.cursor)
				m.cursor = 0
				m.entries = m.load()
			}

		case "backspace", "left", "h":
			if n := len(m.path); n > 0 {
				m.path = m.path[:n-1]
				m.cursor = m.cursors[n-1]
				m.cursors = m.cursors[:n-1]
				m.entries = m.load()
			}
		}
	}

	return m, nil
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	branchStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Reverse(true)
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// View implements the Bubble Tea view method
func (m exploreModel) View() string {
	location := "<root>"
	if len(m.path) > 0 {
		location = strings.Join(m.path, m.root.Separator())
	}
	header := titleStyle.Render("ctree") + "  " + location

	var rows []string
	if len(m.entries) == 0 {
		rows = append(rows, helpStyle.Render("(empty)"))
	}
	for i, e := range m.entries {
		row := e.Key + " = " + preview(e.Value)
		if e.Branch {
			row = branchStyle.Render(e.Key + "/")
		}
		if i == m.cursor {
			row = selectedStyle.Render(row)
		}
		rows = append(rows, row)
	}

	footer := helpStyle.Render("↑/↓ move • enter open • backspace back • q quit")
	return lipgloss.JoinVertical(lipgloss.Left, header, "", strings.Join(rows, "\n"), "", footer)
}

// preview renders a leaf value on a single line
func preview(v any) string {
	s := fmt.Sprintf("%v", v)
	if str, ok := v.(string); ok {
		s = fmt.Sprintf("%q", str)
	}
	if len(s) > 60 {
		s = s[:57] + "..."
	}
	return s
}
