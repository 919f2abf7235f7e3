package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/memslab/lasermill/pkg/sequence"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// PlanBrowserModel - Interactive pass schedule browser
// =============================================================================

// planEntry holds the planned schedule and generated sequence for one
// polygon of the layout.
type planEntry struct {
	Polygon  int
	Vertices int
	Plan     sequence.Plan
	Sequence sequence.PolygonHoleSequence
}

// PlanBrowserModel is the bubbletea model for browsing per-polygon
// spacing plans. The left column lists polygons, the table shows the
// pass schedule of the selected one.
type PlanBrowserModel struct {
	Entries []planEntry
	Cursor  int
}

// newPlanBrowserModel creates a new plan browser model.
func newPlanBrowserModel(entries []planEntry) PlanBrowserModel {
	return PlanBrowserModel{Entries: entries}
}

func (m PlanBrowserModel) Init() tea.Cmd {
	return nil
}

func (m PlanBrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.Entries)-1 {
				m.Cursor++
			}
		}
	}
	return m, nil
}

func (m PlanBrowserModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Hole Spacing Plans"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  q quit"))
	b.WriteString("\n\n")

	for i, e := range m.Entries {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		line := fmt.Sprintf("%sPolygon %d  %s", cursor, e.Polygon,
			listDimStyle.Render(fmt.Sprintf("%d vertices, %d passes, %d holes",
				e.Vertices, e.Plan.NumPasses(), e.Sequence.NumHoles())))

		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.passTable())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Entries))))

	return b.String()
}

// =============================================================================
// SequenceAnimModel - Machining order animation
// =============================================================================

// animTickMsg drives the animation clock.
type animTickMsg time.Time

// animTick emits the next animation frame.
func animTick() tea.Cmd {
	return tea.Tick(40*time.Millisecond, func(t time.Time) tea.Msg {
		return animTickMsg(t)
	})
}

// SequenceAnimModel is the bubbletea model that replays the assembled
// machining order hole by hole, so the pass staggering and the policy's
// polygon ordering can be watched before a run.
type SequenceAnimModel struct {
	Holes       []sequence.Hole
	NumPolygons int
	Policy      string

	// Pos is the number of holes machined so far.
	Pos  int
	Step int
	Done bool
}

// newSequenceAnimModel creates an animation over an assembled sequence.
// The step is sized so the replay takes a few seconds regardless of
// hole count.
func newSequenceAnimModel(assembled sequence.LayoutHoleSequence, numPolygons int) SequenceAnimModel {
	step := len(assembled.Holes) / 200
	if step < 1 {
		step = 1
	}
	return SequenceAnimModel{
		Holes:       assembled.Holes,
		NumPolygons: numPolygons,
		Policy:      string(assembled.Policy),
		Step:        step,
	}
}

func (m SequenceAnimModel) Init() tea.Cmd {
	return animTick()
}

func (m SequenceAnimModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	case animTickMsg:
		if m.Done {
			return m, nil
		}
		m.Pos += m.Step
		if m.Pos >= len(m.Holes) {
			m.Pos = len(m.Holes)
			m.Done = true
			return m, nil
		}
		return m, animTick()
	}
	return m, nil
}

func (m SequenceAnimModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Machining Order"))
	b.WriteString("  ")
	b.WriteString(listDimStyle.Render(m.Policy))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("q quit"))
	b.WriteString("\n\n")

	b.WriteString(m.progressBar(40))
	b.WriteString("\n\n")

	if m.Pos > 0 && m.Pos <= len(m.Holes) {
		h := m.Holes[m.Pos-1]
		b.WriteString(fmt.Sprintf("  %s  polygon %s  pass %s\n",
			StyleValue.Render(fmt.Sprintf("hole %d/%d", m.Pos, len(m.Holes))),
			StyleNumber.Render(fmt.Sprintf("%d/%d", h.Polygon+1, m.NumPolygons)),
			StyleNumber.Render(fmt.Sprintf("%d", h.Pass+1))))
	}

	if m.Done {
		b.WriteString("\n")
		b.WriteString(StyleSuccess.Render("  done"))
		b.WriteString("\n")
	}

	return b.String()
}

// progressBar renders the machining progress as a fixed-width bar.
func (m SequenceAnimModel) progressBar(width int) string {
	if len(m.Holes) == 0 {
		return ""
	}
	filled := m.Pos * width / len(m.Holes)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	pct := 100 * m.Pos / len(m.Holes)
	return "  " + StyleHighlight.Render(bar) + listDimStyle.Render(fmt.Sprintf(" %3d%%", pct))
}

// passTable renders the pass schedule of the selected polygon.
func (m PlanBrowserModel) passTable() string {
	if len(m.Entries) == 0 {
		return listDimStyle.Render("  no polygons")
	}
	e := m.Entries[m.Cursor]

	rows := [][]string{}
	for _, p := range e.Sequence.Passes {
		rows = append(rows, []string{
			fmt.Sprintf("%d", p.Index+1),
			fmt.Sprintf("%g", p.Spacing),
			fmt.Sprintf("%d", len(p.Holes)),
			fmt.Sprintf("%.2f", p.StaggerPhase),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Pass", "Spacing", "Holes", "Phase").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 0 {
				return lipgloss.NewStyle().Foreground(colorCyan)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})

	return t.Render()
}
