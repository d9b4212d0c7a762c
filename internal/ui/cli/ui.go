package cli

import (
	"fmt"
	"strings"
	"time"

	coreapp "propinfo/internal/core/app"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			MarginLeft(2).
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true).
			Render

	docStyle = lipgloss.NewStyle().Margin(1, 2)

	detailStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#64748B")).
			Padding(0, 1)
)

type item struct {
	title, desc string
}

func (i item) Title() string       { return i.title }
func (i item) Description() string { return i.desc }
func (i item) FilterValue() string { return i.title + i.desc }

type model struct {
	propertyList list.Model
	report       *coreapp.ClassReport
	class        string
	showDetails  bool
	lastUpdate   time.Time
	err          error
}

// reportMsg carries a freshly described class into the model.
type reportMsg struct {
	report *coreapp.ClassReport
	err    error
}

func initialModel(class string) model {
	propertyList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	propertyList.Title = "Properties"
	propertyList.SetShowStatusBar(false)
	propertyList.SetFilteringEnabled(true)

	return model{
		propertyList: propertyList,
		class:        class,
		lastUpdate:   time.Now(),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.propertyList.FilterState() != list.Filtering {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "enter":
				m.showDetails = !m.showDetails
				return m, nil
			case "esc":
				if m.showDetails {
					m.showDetails = false
					return m, nil
				}
			}
		}
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		height := msg.Height - v - 10
		if height < 5 {
			height = 5
		}
		m.propertyList.SetSize(msg.Width-h, height)
	case reportMsg:
		m.lastUpdate = time.Now()
		m.err = msg.err
		if msg.err != nil {
			return m, nil
		}
		m.report = msg.report
		items := make([]list.Item, 0, len(msg.report.Properties))
		for _, p := range msg.report.Properties {
			desc := fmt.Sprintf("%s  %s", typeText(p), accessFlags(p))
			if p.ShortDescription != "" {
				desc += "  " + p.ShortDescription
			}
			items = append(items, item{title: p.Name, desc: desc})
		}
		cmd := m.propertyList.SetItems(items)
		return m, cmd
	}

	var cmd tea.Cmd
	m.propertyList, cmd = m.propertyList.Update(msg)
	return m, cmd
}

func (m model) selected() (coreapp.PropertyReport, bool) {
	if m.report == nil || len(m.report.Properties) == 0 {
		return coreapp.PropertyReport{}, false
	}
	it, ok := m.propertyList.SelectedItem().(item)
	if !ok {
		return coreapp.PropertyReport{}, false
	}
	for _, p := range m.report.Properties {
		if p.Name == it.title {
			return p, true
		}
	}
	return coreapp.PropertyReport{}, false
}

func (m model) View() string {
	count := 0
	if m.report != nil {
		count = len(m.report.Properties)
	}
	status := statusStyle.Render(fmt.Sprintf("Last update: %s | %d properties",
		m.lastUpdate.Format("15:04:05"), count))
	header := fmt.Sprintf("%s\n%s\n", titleStyle(m.class), status)
	help := statusStyle.Render("enter: details | /: filter | q: quit")

	body := m.propertyList.View()
	if m.err != nil {
		body = errorStyle.Render(m.err.Error()) + "\n\n" + body
	}
	if m.showDetails {
		if p, ok := m.selected(); ok {
			body += "\n" + detailStyle.Render(renderDetails(p))
		}
	}
	return docStyle.Render(header + "\n" + help + "\n\n" + body)
}

func renderDetails(p coreapp.PropertyReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", nameStyle.Render(p.Name))
	fmt.Fprintf(&b, "type:          %s\n", typeText(p))
	fmt.Fprintf(&b, "readable:      %s\n", tristateText(p.Readable))
	fmt.Fprintf(&b, "writable:      %s\n", tristateText(p.Writable))
	fmt.Fprintf(&b, "initializable: %s", tristateText(p.Initializable))
	if p.ShortDescription != "" {
		fmt.Fprintf(&b, "\n\n%s", p.ShortDescription)
	}
	if p.LongDescription != "" {
		fmt.Fprintf(&b, "\n\n%s", p.LongDescription)
	}
	return b.String()
}

func tristateText(v *bool) string {
	if v == nil {
		return "unknown"
	}
	if *v {
		return "yes"
	}
	return "no"
}
