package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/valuechain/pkg/chain"
	"github.com/matzehuels/valuechain/pkg/color"
	"github.com/matzehuels/valuechain/pkg/edit"
	"github.com/matzehuels/valuechain/pkg/render/nodelink"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	fieldLabelStyle   = lipgloss.NewStyle().Foreground(colorGray).Width(13)
	errorStyle        = lipgloss.NewStyle().Foreground(colorRed)
)

// =============================================================================
// NodeListModel - Interactive node selection
// =============================================================================

// NodeListModel is the bubbletea model for picking the node to edit.
type NodeListModel struct {
	Nodes    []chain.Node
	Cursor   int
	Selected *chain.Node
	Height   int
	Offset   int
}

// NewNodeListModel creates a new node list model.
func NewNodeListModel(nodes []chain.Node) NodeListModel {
	return NodeListModel{Nodes: nodes, Height: 15}
}

func (m NodeListModel) Init() tea.Cmd {
	return nil
}

func (m NodeListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Nodes)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Nodes) == 0 {
				return m, tea.Quit
			}
			n := m.Nodes[m.Cursor]
			m.Selected = &n
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
	}
	return m, nil
}

func (m NodeListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Node"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Nodes))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		n := m.Nodes[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		fill := nodelink.FillColor(n)
		rows = append(rows, []string{cursor, n.Data.Label, n.Type.DisplayName(), swatch(fill, fill), n.ID})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Label", "Type", "Color", "ID").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if m.Offset+row == m.Cursor && col != 3 {
				return listSelectedStyle
			}
			if col == 4 {
				return listDimStyle
			}
			return listNormalStyle
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Nodes))))

	return b.String()
}

// =============================================================================
// EditModel - Node edit panel
// =============================================================================

// EditAction is how the edit panel was closed.
type EditAction int

const (
	EditCancel EditAction = iota
	EditCommit
	EditDelete
)

const (
	fieldLabel = iota
	fieldDescription
	fieldColor
	fieldCount
)

var fieldNames = [fieldCount]string{"Label", "Description", "Color"}

// EditModel is the bubbletea model for the node edit panel. Keystrokes
// are written through to the [edit.Session]; the graph is only touched
// after the program exits, according to Action.
type EditModel struct {
	Session *edit.Session
	Action  EditAction

	inputs [fieldCount]string
	focus  int
	preset int
	err    error
}

// NewEditModel creates an edit panel over s.
func NewEditModel(s *edit.Session) EditModel {
	m := EditModel{Session: s, preset: -1}
	m.inputs[fieldLabel] = s.Label()
	m.inputs[fieldDescription] = s.Description()
	m.inputs[fieldColor] = s.Color()
	if name, ok := color.PresetName(s.Color()); ok {
		m.inputs[fieldColor] = name
	}
	return m
}

func (m EditModel) Init() tea.Cmd {
	return nil
}

func (m EditModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "ctrl+c", "esc":
		m.Action = EditCancel
		return m, tea.Quit
	case "enter":
		if m.err != nil {
			return m, nil
		}
		m.Action = EditCommit
		return m, tea.Quit
	case "ctrl+d":
		m.Action = EditDelete
		return m, tea.Quit
	case "tab", "down":
		m.focus = (m.focus + 1) % fieldCount
	case "shift+tab", "up":
		m.focus = (m.focus + fieldCount - 1) % fieldCount
	case "ctrl+p":
		m.focus = fieldColor
		m.preset = (m.preset + 1) % len(color.Presets)
		m.inputs[fieldColor] = color.Presets[m.preset].Name
		m.apply()
	case "alt+enter":
		if m.focus == fieldDescription {
			m.inputs[fieldDescription] += "\n"
			m.apply()
		}
	case "backspace":
		r := []rune(m.inputs[m.focus])
		if len(r) > 0 {
			m.inputs[m.focus] = string(r[:len(r)-1])
			m.apply()
		}
	default:
		if key.Type == tea.KeyRunes || key.Type == tea.KeySpace {
			m.inputs[m.focus] += string(key.Runes)
			m.apply()
		}
	}
	return m, nil
}

// apply writes the focused input to the session.
func (m *EditModel) apply() {
	v := m.inputs[m.focus]
	switch m.focus {
	case fieldLabel:
		m.err = m.Session.SetLabel(v)
	case fieldDescription:
		m.err = m.Session.SetDescription(v)
	case fieldColor:
		m.err = m.Session.SetColor(v)
	}
}

func (m EditModel) View() string {
	var b strings.Builder
	n := m.Session.Node()

	b.WriteString(StyleTitle.Render("Edit " + n.Type.DisplayName()))
	b.WriteString(" " + StyleDim.Render(n.ID))
	b.WriteString("\n\n")

	for i := range fieldCount {
		value := m.inputs[i]
		if i == fieldDescription {
			value = strings.ReplaceAll(value, "\n", StyleDim.Render("⏎"))
		}
		cursor := "  "
		style := listNormalStyle
		if i == m.focus {
			cursor = "▸ "
			style = listSelectedStyle
			value += "▏"
		}
		b.WriteString(cursor + fieldLabelStyle.Render(fieldNames[i]) + style.Render(value))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	fill := nodelink.FillColor(chain.Node{Type: n.Type, Data: m.Session.Data()})
	b.WriteString("  " + swatch(fill, m.Session.Label()))
	if c := m.Session.Color(); c != "" && !color.Valid(c) {
		b.WriteString(" " + StyleWarning.Render("not a color, drawn in the type default"))
	}
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString("\n  " + errorStyle.Render(m.err.Error()) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("tab next field  ctrl+p preset  alt+⏎ newline  ⏎ save  esc cancel  ctrl+d delete"))
	return b.String()
}
